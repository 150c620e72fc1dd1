package fortify

import (
	"testing"

	"github.com/townforge/towngen/internal/geom"
	"github.com/townforge/towngen/internal/model"
	"github.com/townforge/towngen/internal/rng"
)

// gridCity builds a 2x2 block of 10x10 cells sharing vertex handles,
// all within the city.
func gridCity(t *testing.T) (*model.City, []*model.Cell) {
	t.Helper()
	arena := geom.NewArena()

	ids := map[[2]int]geom.PointID{}
	at := func(ix, iy int) geom.PointID {
		key := [2]int{ix, iy}
		if id, ok := ids[key]; ok {
			return id
		}
		id := arena.Add(geom.Point{X: float64(ix) * 10, Y: float64(iy) * 10})
		ids[key] = id
		return id
	}

	cells := []*model.Cell{}
	n := 0
	for cy := 0; cy < 2; cy++ {
		for cx := 0; cx < 2; cx++ {
			ring := []geom.PointID{at(cx, cy), at(cx+1, cy), at(cx+1, cy+1), at(cx, cy+1)}
			c := model.NewCell(n, geom.NewPolygon(arena, ring), geom.Point{X: float64(cx)*10 + 5, Y: float64(cy)*10 + 5})
			c.WithinCity = true
			cells = append(cells, c)
			n++
		}
	}
	return &model.City{Arena: arena, Cells: cells}, cells
}

func TestBuildWallGatesAndTowers(t *testing.T) {
	city, cells := gridCity(t)

	wall, err := Build(city, cells, rng.New(9), Options{Kind: "wall"})
	if err != nil {
		t.Fatalf("wall build failed: %v", err)
	}
	if wall.Shape.Len() != 8 {
		t.Fatalf("2x2 grid circumference has 8 vertices, got %d", wall.Shape.Len())
	}
	if len(wall.Segments) != wall.Shape.Len() {
		t.Fatalf("one segment flag per wall edge, got %d for %d edges", len(wall.Segments), wall.Shape.Len())
	}
	if len(wall.Gates) == 0 {
		t.Fatalf("gate selection must never produce zero gates")
	}

	// Gates are vertices of the wall shape by reference.
	for _, g := range wall.Gates {
		if wall.Shape.IndexOf(g) < 0 {
			t.Fatalf("gate %d is not a wall shape vertex", g)
		}
	}

	// Towers are exactly the non-gate vertices (everything flanks an
	// enabled segment on a dry, citadel-free wall).
	if len(wall.Towers) != wall.Shape.Len()-len(wall.Gates) {
		t.Fatalf("towers = %d, want %d", len(wall.Towers), wall.Shape.Len()-len(wall.Gates))
	}
}

func TestBuildWallNoAdjacentGates(t *testing.T) {
	city, cells := gridCity(t)

	wall, err := Build(city, cells, rng.New(21), Options{Kind: "wall"})
	if err != nil {
		t.Fatalf("wall build failed: %v", err)
	}

	n := wall.Shape.Len()
	for _, g := range wall.Gates {
		gi := wall.Shape.IndexOf(g)
		prev := wall.Shape.Points[(gi-1+n)%n]
		next := wall.Shape.Points[(gi+1)%n]
		for _, other := range wall.Gates {
			if other == prev || other == next {
				t.Fatalf("gates %d and %d are ring-adjacent", g, other)
			}
		}
	}
}

func TestBorderRingHasNoTowers(t *testing.T) {
	city, cells := gridCity(t)

	border, err := Build(city, cells, rng.New(4), Options{Kind: "border"})
	if err != nil {
		t.Fatalf("border build failed: %v", err)
	}
	if len(border.Towers) != 0 {
		t.Fatalf("the border ring is not masonry, got %d towers", len(border.Towers))
	}
	for i, enabled := range border.Segments {
		if enabled {
			t.Fatalf("border segment %d should be disabled", i)
		}
	}
	if len(border.Gates) == 0 {
		t.Fatalf("border still anchors street routing and needs gates")
	}
}

func TestCitadelSegmentsDisabledOnSharedEdges(t *testing.T) {
	city, cells := gridCity(t)

	citadel, err := Build(city, cells[:1], rng.New(2), Options{Kind: "citadel"})
	if err != nil {
		t.Fatalf("citadel build failed: %v", err)
	}

	wall, err := Build(city, cells, rng.New(2), Options{Kind: "wall", Citadel: citadel})
	if err != nil {
		t.Fatalf("wall build failed: %v", err)
	}

	// Cell 0 is the top-left cell, so the wall edges it contributes are
	// shared with the citadel ring and must be disabled.
	n := wall.Shape.Len()
	for i := 0; i < n; i++ {
		a := wall.Shape.Points[i]
		b := wall.Shape.Points[(i+1)%n]
		shared := citadel.Shape.IndexOf(a) >= 0 && citadel.Shape.IndexOf(b) >= 0
		if shared && wall.Segments[i] {
			t.Fatalf("wall segment %d borders the citadel but is enabled", i)
		}
	}
}
