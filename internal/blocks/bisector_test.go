package blocks

import (
	"math"
	"testing"

	"github.com/townforge/towngen/internal/geom"
	"github.com/townforge/towngen/internal/rng"
)

func rect(a *geom.Arena, x0, y0, w, h float64) *geom.Polygon {
	ids := []geom.PointID{
		a.Add(geom.Point{X: x0, Y: y0}),
		a.Add(geom.Point{X: x0 + w, Y: y0}),
		a.Add(geom.Point{X: x0 + w, Y: y0 + h}),
		a.Add(geom.Point{X: x0, Y: y0 + h}),
	}
	return geom.NewPolygon(a, ids)
}

func TestPartitionTerminatesAndConservesArea(t *testing.T) {
	arena := geom.NewArena()
	poly := rect(arena, 0, 0, 100, 100)

	bi := &Bisector{
		Arena:    arena,
		Rng:      rng.New(7),
		MinArea:  100,
		Variance: 0.5,
		MinFront: 10,
	}
	pieces := bi.Partition(poly)

	if len(pieces) < 2 {
		t.Fatalf("expected a 100x100 region to split, got %d pieces", len(pieces))
	}
	total := 0.0
	for _, p := range pieces {
		a := p.Area()
		if a <= 0 {
			t.Fatalf("piece with non-positive area %v", a)
		}
		total += a
	}
	if math.Abs(total-10000) > 1 {
		t.Fatalf("pieces cover %v, want ~10000", total)
	}
	if len(bi.Cuts) == 0 {
		t.Fatalf("expected cut polylines to be recorded")
	}
}

func TestPartitionAtomicPolygonReturnedWhole(t *testing.T) {
	arena := geom.NewArena()
	poly := rect(arena, 0, 0, 5, 5)

	bi := &Bisector{
		Arena:    arena,
		Rng:      rng.New(3),
		MinArea:  100,
		Variance: 0.5,
		MinFront: 10,
	}
	pieces := bi.Partition(poly)

	if len(pieces) != 1 {
		t.Fatalf("a below-threshold region should come back whole, got %d pieces", len(pieces))
	}
	if pieces[0] != poly {
		t.Fatalf("atomic region should be returned unchanged")
	}
}

func TestPartitionDeterministic(t *testing.T) {
	run := func() []float64 {
		arena := geom.NewArena()
		bi := &Bisector{
			Arena:    arena,
			Rng:      rng.New(42),
			MinArea:  150,
			Variance: 0.6,
			MinFront: 12,
		}
		pieces := bi.Partition(rect(arena, 0, 0, 120, 80))
		areas := make([]float64, len(pieces))
		for i, p := range pieces {
			areas[i] = p.Area()
		}
		return areas
	}

	first, second := run(), run()
	if len(first) != len(second) {
		t.Fatalf("piece counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("piece %d area differs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestSplitRingSharesChordPoints(t *testing.T) {
	arena := geom.NewArena()
	poly := rect(arena, 0, 0, 10, 10)

	a, b := splitRing(arena, poly, 0, geom.Point{X: 5, Y: 0}, 2, geom.Point{X: 5, Y: 10}, nil)
	if a == nil || b == nil {
		t.Fatalf("straight split across a square should succeed")
	}
	if math.Abs(a.Area()-50) > 1e-9 || math.Abs(b.Area()-50) > 1e-9 {
		t.Fatalf("halves = %v / %v, want 50 / 50", a.Area(), b.Area())
	}

	shared := 0
	for _, id := range a.Points {
		if b.IndexOf(id) >= 0 {
			shared++
		}
	}
	if shared != 2 {
		t.Fatalf("halves share %d point references, want the 2 chord endpoints", shared)
	}
}
