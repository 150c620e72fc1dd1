package wards

import (
	"testing"

	"github.com/townforge/towngen/internal/geom"
	"github.com/townforge/towngen/internal/model"
	"github.com/townforge/towngen/internal/rng"
)

func rowCity(n int, inner int) *model.City {
	arena := geom.NewArena()
	city := &model.City{Arena: arena, Center: geom.Point{}}
	for i := 0; i < n; i++ {
		x := float64(i) * 10
		ids := []geom.PointID{
			arena.Add(geom.Point{X: x, Y: 0}),
			arena.Add(geom.Point{X: x + 10, Y: 0}),
			arena.Add(geom.Point{X: x + 10, Y: 10}),
			arena.Add(geom.Point{X: x, Y: 10}),
		}
		c := model.NewCell(i, geom.NewPolygon(arena, ids), geom.Point{X: x + 5, Y: 5})
		c.WithinCity = i < inner
		city.Cells = append(city.Cells, c)
	}
	return city
}

func TestAssignExclusivity(t *testing.T) {
	city := rowCity(12, 8)

	Assign(city, rng.New(3), Options{Rules: DefaultRules()})

	for _, c := range city.Cells {
		if c.Ward != nil && c.Ward.Cell != c {
			t.Fatalf("ward back-reference broken on cell %d", c.ID)
		}
		if c.Waterbody && c.Ward != nil {
			t.Fatalf("water cell %d must not carry a ward", c.ID)
		}
	}
}

func TestAssignCathedralNearestInner(t *testing.T) {
	city := rowCity(8, 5)

	Assign(city, rng.New(3), Options{Rules: DefaultRules()})

	if city.Cells[0].Ward == nil || city.Cells[0].Ward.Kind != model.WardCathedral {
		t.Fatalf("cathedral should claim the inner cell nearest the center")
	}
}

func TestAssignAlleysAlternate(t *testing.T) {
	city := rowCity(10, 10)

	Assign(city, rng.New(3), Options{Rules: DefaultRules()})

	alleys := 0
	unassigned := 0
	for _, c := range city.Cells {
		if c.Ward == nil {
			unassigned++
			continue
		}
		if c.Ward.Kind == model.WardAlleys {
			alleys++
		}
	}
	if alleys == 0 {
		t.Fatalf("expected some alleys wards")
	}
	if unassigned == 0 {
		t.Fatalf("the every-other rule must leave gaps between alleys")
	}
}

func TestAssignHarbourNeedsCoast(t *testing.T) {
	city := rowCity(8, 4)
	// Make the outermost cell water, adjacent to the last inner cell.
	city.Cells[4].Waterbody = true
	city.Cells[4].WithinCity = false
	city.Cells[3].Neighbors = []*model.Cell{city.Cells[4]}

	Assign(city, rng.New(3), Options{HasCoast: true, Rules: DefaultRules()})

	if city.Cells[3].Ward == nil || city.Cells[3].Ward.Kind != model.WardHarbour {
		t.Fatalf("waterfront inner cell should become a harbour")
	}
	if !city.Cells[3].Landing {
		t.Fatalf("harbour cell should carry the landing flag")
	}

	// Without a coast the same town gets no harbours.
	dry := rowCity(8, 4)
	dry.Cells[3].Neighbors = []*model.Cell{dry.Cells[4]}
	Assign(dry, rng.New(3), Options{HasCoast: false, Rules: DefaultRules()})
	for _, c := range dry.Cells {
		if c.Ward != nil && c.Ward.Kind == model.WardHarbour {
			t.Fatalf("harbour assigned without a coast")
		}
	}
}

func TestAssignCastleSkipsCentralWhenPlaza(t *testing.T) {
	city := rowCity(8, 6)

	Assign(city, rng.New(3), Options{Citadel: true, Plaza: true, Rules: DefaultRules()})

	if city.Cells[0].Ward == nil || city.Cells[0].Ward.Kind != model.WardMarket {
		t.Fatalf("plaza should claim the central cell")
	}
	if city.Cells[1].Ward == nil || city.Cells[1].Ward.Kind != model.WardCastle {
		t.Fatalf("castle should take the first non-central inner cell")
	}
}
