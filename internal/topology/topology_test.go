package topology

import (
	"testing"

	"github.com/townforge/towngen/internal/geom"
	"github.com/townforge/towngen/internal/model"
)

// twoSharedSquares builds two 10x10 cells side by side sharing the two
// vertices of their common edge, the way the tessellator produces them.
func twoSharedSquares(arena *geom.Arena) (*model.Cell, *model.Cell) {
	tl := arena.Add(geom.Point{X: 0, Y: 0})
	tm := arena.Add(geom.Point{X: 10, Y: 0})
	tr := arena.Add(geom.Point{X: 20, Y: 0})
	bl := arena.Add(geom.Point{X: 0, Y: 10})
	bm := arena.Add(geom.Point{X: 10, Y: 10})
	br := arena.Add(geom.Point{X: 20, Y: 10})

	left := model.NewCell(0, geom.NewPolygon(arena, []geom.PointID{tl, tm, bm, bl}), geom.Point{X: 5, Y: 5})
	right := model.NewCell(1, geom.NewPolygon(arena, []geom.PointID{tm, tr, br, bm}), geom.Point{X: 15, Y: 5})
	return left, right
}

func TestLinkNeighborsSharedEdge(t *testing.T) {
	arena := geom.NewArena()
	left, right := twoSharedSquares(arena)
	city := &model.City{Arena: arena, Cells: []*model.Cell{left, right}}

	LinkNeighbors(city)

	if !left.HasNeighbor(right) || !right.HasNeighbor(left) {
		t.Fatalf("cells sharing a reversed edge must be neighbors")
	}
}

func TestLinkNeighborsVertexOnlyIsNotAdjacency(t *testing.T) {
	arena := geom.NewArena()
	shared := arena.Add(geom.Point{X: 10, Y: 10})
	a := model.NewCell(0, geom.NewPolygon(arena, []geom.PointID{
		arena.Add(geom.Point{X: 0, Y: 0}), arena.Add(geom.Point{X: 10, Y: 0}), shared, arena.Add(geom.Point{X: 0, Y: 10}),
	}), geom.Point{X: 5, Y: 5})
	b := model.NewCell(1, geom.NewPolygon(arena, []geom.PointID{
		shared, arena.Add(geom.Point{X: 20, Y: 10}), arena.Add(geom.Point{X: 20, Y: 20}), arena.Add(geom.Point{X: 10, Y: 20}),
	}), geom.Point{X: 15, Y: 15})
	city := &model.City{Arena: arena, Cells: []*model.Cell{a, b}}

	LinkNeighbors(city)

	if a.HasNeighbor(b) {
		t.Fatalf("a single shared vertex must not create adjacency")
	}
}

func TestOptimizeJunctionsMergesSlivers(t *testing.T) {
	arena := geom.NewArena()
	// A quad with two vertices 2 apart - inside the epsilon of 8.
	v0 := arena.Add(geom.Point{X: 0, Y: 0})
	v1 := arena.Add(geom.Point{X: 2, Y: 0})
	v2 := arena.Add(geom.Point{X: 30, Y: 0})
	v3 := arena.Add(geom.Point{X: 15, Y: 30})
	cell := model.NewCell(0, geom.NewPolygon(arena, []geom.PointID{v0, v1, v2, v3}), geom.Point{X: 15, Y: 10})
	cell.WithinCity = true

	// A neighbor also holding v1: the rewrite must reach it.
	other := model.NewCell(1, geom.NewPolygon(arena, []geom.PointID{
		v1, v0, arena.Add(geom.Point{X: 1, Y: -20}),
	}), geom.Point{X: 1, Y: -10})
	other.WithinCity = true

	city := &model.City{Arena: arena, Cells: []*model.Cell{cell, other}}
	OptimizeJunctions(city, 8)

	if cell.Shape.Len() != 3 {
		t.Fatalf("sliver vertex should be merged away, got %d vertices", cell.Shape.Len())
	}
	if other.Shape.IndexOf(v1) >= 0 {
		t.Fatalf("other cell should have been rewritten to drop the merged vertex")
	}
	if other.Shape.IndexOf(v0) < 0 {
		t.Fatalf("other cell should now reference the surviving vertex")
	}
}

func TestCircumferenceOfPairIsOuterRing(t *testing.T) {
	arena := geom.NewArena()
	left, right := twoSharedSquares(arena)

	ring := Circumference([]*model.Cell{left, right})
	if len(ring) != 6 {
		t.Fatalf("two joined squares have a 6-vertex outer ring, got %d", len(ring))
	}
	// The shared edge must not appear: consecutive ring vertices bm->tm
	// or tm->bm would mean the interior edge leaked through.
	for i := 0; i < len(ring); i++ {
		a, b := ring[i], ring[(i+1)%len(ring)]
		if left.Shape.IndexOf(a) >= 0 && left.Shape.IndexOf(b) >= 0 &&
			right.Shape.IndexOf(a) >= 0 && right.Shape.IndexOf(b) >= 0 {
			t.Fatalf("interior shared edge leaked into the circumference")
		}
	}
}

func TestBuildGraphSeversShore(t *testing.T) {
	arena := geom.NewArena()
	left, right := twoSharedSquares(arena)
	left.WithinCity = true
	right.Waterbody = true
	city := &model.City{Arena: arena, Cells: []*model.Cell{left, right}}

	LinkNeighbors(city)
	BuildGraph(city)

	if len(city.Shore) != 2 {
		t.Fatalf("the two shared land/water vertices are the shore, got %d", len(city.Shore))
	}
	for _, id := range city.Shore {
		if node, ok := city.Graph.Nodes[id]; ok && len(node.Edges) != 0 {
			t.Fatalf("shore vertex %d still has %d edges after unlink", id, len(node.Edges))
		}
	}
}

func TestBuildGraphInnerOuterSets(t *testing.T) {
	arena := geom.NewArena()
	left, right := twoSharedSquares(arena)
	left.WithinCity = true
	city := &model.City{Arena: arena, Cells: []*model.Cell{left, right}}

	LinkNeighbors(city)
	BuildGraph(city)

	for _, id := range left.Shape.Points {
		if !city.Graph.IsInner(id) {
			t.Fatalf("inner cell vertex %d missing from the inner set", id)
		}
	}
	for _, id := range right.Shape.Points {
		if !city.Graph.IsOuter(id) {
			t.Fatalf("outer cell vertex %d missing from the outer set", id)
		}
	}
	// Shared vertices sit in both sets - the gate property.
	sharedCount := 0
	for _, id := range left.Shape.Points {
		if right.Shape.IndexOf(id) >= 0 {
			if !city.Graph.IsInner(id) || !city.Graph.IsOuter(id) {
				t.Fatalf("shared vertex %d should be in both sets", id)
			}
			sharedCount++
		}
	}
	if sharedCount != 2 {
		t.Fatalf("expected 2 shared vertices, got %d", sharedCount)
	}
}
