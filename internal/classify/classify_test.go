package classify

import (
	"testing"

	"github.com/townforge/towngen/internal/geom"
	"github.com/townforge/towngen/internal/model"
	"github.com/townforge/towngen/internal/topology"
)

// shoreCity is a land cell and a water cell sharing an edge, with a
// street running along the land cell's far edge.
func shoreCity() (*model.City, *model.Cell) {
	arena := geom.NewArena()
	tl := arena.Add(geom.Point{X: 0, Y: 0})
	tm := arena.Add(geom.Point{X: 10, Y: 0})
	tr := arena.Add(geom.Point{X: 20, Y: 0})
	bl := arena.Add(geom.Point{X: 0, Y: 10})
	bm := arena.Add(geom.Point{X: 10, Y: 10})
	br := arena.Add(geom.Point{X: 20, Y: 10})

	land := model.NewCell(0, geom.NewPolygon(arena, []geom.PointID{tl, tm, bm, bl}), geom.Point{X: 5, Y: 5})
	land.WithinCity = true
	water := model.NewCell(1, geom.NewPolygon(arena, []geom.PointID{tm, tr, br, bm}), geom.Point{X: 15, Y: 5})
	water.Waterbody = true

	city := &model.City{Arena: arena, Cells: []*model.Cell{land, water}}
	topology.LinkNeighbors(city)

	// A street along the land cell's left edge (bl -> tl).
	city.Streets = [][]geom.PointID{{bl, tl}}
	return city, land
}

func TestClassifyCoastBeatsRoad(t *testing.T) {
	city, land := shoreCity()
	// Put a street on the shared shore edge too: COAST must win.
	n := land.Shape.Len()
	for i := 0; i < n; i++ {
		a := land.Shape.Points[i]
		b := land.Shape.Points[(i+1)%n]
		city.Streets = append(city.Streets, []geom.PointID{a, b})
	}

	Classify(city)

	foundCoast := false
	for i := 0; i < n; i++ {
		if land.EdgeType(i) == model.EdgeCoast {
			foundCoast = true
		}
	}
	if !foundCoast {
		t.Fatalf("the land/water edge must classify as COAST even under a street")
	}
}

func TestClassifyRoadEdges(t *testing.T) {
	city, land := shoreCity()

	Classify(city)

	foundRoad := false
	n := land.Shape.Len()
	for i := 0; i < n; i++ {
		if land.EdgeType(i) == model.EdgeRoad {
			foundRoad = true
		}
	}
	if !foundRoad {
		t.Fatalf("the street edge should classify as ROAD")
	}
}

func TestEdgeInsetsByType(t *testing.T) {
	if model.EdgeWall.EdgeInset() <= model.EdgeRoad.EdgeInset() {
		t.Fatalf("walls need a wider margin than roads")
	}
	if model.EdgeHorizon.EdgeInset() != 0 {
		t.Fatalf("horizon edges need no margin")
	}
}
