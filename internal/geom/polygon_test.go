package geom

import (
	"math"
	"testing"
)

func square(a *Arena, x0, y0, side float64) *Polygon {
	ids := []PointID{
		a.Add(Point{x0, y0}),
		a.Add(Point{x0 + side, y0}),
		a.Add(Point{x0 + side, y0 + side}),
		a.Add(Point{x0, y0 + side}),
	}
	return NewPolygon(a, ids)
}

func TestSquareArea(t *testing.T) {
	a := NewArena()
	p := square(a, 0, 0, 10)
	if got := p.Area(); math.Abs(got-100) > 1e-9 {
		t.Fatalf("area = %v, want 100", got)
	}
}

func TestCentroid(t *testing.T) {
	a := NewArena()
	p := square(a, 0, 0, 10)
	c := p.Centroid()
	if math.Abs(c.X-5) > 1e-9 || math.Abs(c.Y-5) > 1e-9 {
		t.Fatalf("centroid = %+v, want (5,5)", c)
	}
}

func TestContains(t *testing.T) {
	a := NewArena()
	p := square(a, 0, 0, 10)
	if !p.Contains(Point{5, 5}) {
		t.Fatalf("expected centre to be contained")
	}
	if p.Contains(Point{20, 20}) {
		t.Fatalf("did not expect far point to be contained")
	}
}

func TestSharedVertexMutationPropagates(t *testing.T) {
	a := NewArena()
	shared := a.Add(Point{0, 0})
	p1 := NewPolygon(a, []PointID{shared, a.Add(Point{1, 0}), a.Add(Point{1, 1})})
	p2 := NewPolygon(a, []PointID{shared, a.Add(Point{-1, 0}), a.Add(Point{-1, -1})})

	a.Set(shared, Point{5, 5})

	if p1.At(0) != (Point{5, 5}) {
		t.Fatalf("p1 did not see the mutation")
	}
	if p2.At(0) != (Point{5, 5}) {
		t.Fatalf("p2 did not see the mutation")
	}
}

func TestIdentityVsCoordinateEquality(t *testing.T) {
	a := NewArena()
	idA := a.Add(Point{1, 1})
	idB := a.Add(Point{1, 1}) // same coordinate, different handle
	p := NewPolygon(a, []PointID{idA, a.Add(Point{2, 2}), a.Add(Point{3, 1})})

	if p.IndexOf(idB) != -1 {
		t.Fatalf("identity lookup should not match a different PointID at the same coordinate")
	}
	if idx := p.IndexOfCoord(Point{1, 1}, 1e-6); idx != 0 {
		t.Fatalf("coordinate lookup should match index 0, got %d", idx)
	}
}

func TestIsConvexVertexOnSquare(t *testing.T) {
	a := NewArena()
	p := square(a, 0, 0, 10)
	for i := 0; i < 4; i++ {
		if !p.IsConvexVertex(i) {
			t.Fatalf("vertex %d of a square should be convex", i)
		}
	}
}

func TestSmoothDoublesVertexCount(t *testing.T) {
	a := NewArena()
	p := square(a, 0, 0, 10)
	s := p.Smooth()
	if s.Len() != p.Len()*2 {
		t.Fatalf("smoothed len = %d, want %d", s.Len(), p.Len()*2)
	}
}

func TestShrinkReducesArea(t *testing.T) {
	a := NewArena()
	p := square(a, 0, 0, 10)
	shrunk := p.Shrink(2)
	if shrunk.Area() >= p.Area() {
		t.Fatalf("shrink should reduce area: before=%v after=%v", p.Area(), shrunk.Area())
	}
}

func TestSegmentIntersect(t *testing.T) {
	p, ok := SegmentIntersect(Point{0, 0}, Point{10, 10}, Point{0, 10}, Point{10, 0})
	if !ok {
		t.Fatalf("expected intersection")
	}
	if math.Abs(p.X-5) > 1e-9 || math.Abs(p.Y-5) > 1e-9 {
		t.Fatalf("intersection = %+v, want (5,5)", p)
	}

	_, ok2 := SegmentIntersect(Point{0, 0}, Point{1, 0}, Point{0, 5}, Point{1, 5})
	if ok2 {
		t.Fatalf("parallel, non-crossing segments should not intersect")
	}
}

func TestOrientedBoundingBoxOnSquare(t *testing.T) {
	a := NewArena()
	p := square(a, 0, 0, 10)
	obb := p.OrientedBoundingBox()
	if math.Abs(obb.HalfW*2-10) > 1e-6 || math.Abs(obb.HalfH*2-10) > 1e-6 {
		t.Fatalf("obb extents = %v x %v, want 10 x 10", obb.HalfW*2, obb.HalfH*2)
	}
}
