package blocks

import (
	"math"

	"github.com/townforge/towngen/internal/geom"
	"github.com/townforge/towngen/internal/rng"
)

// maxCutAttempts bounds the retry loop when a cut produces badly
// unbalanced halves.
const maxCutAttempts = 10

// Bisector recursively partitions a ward-group's shrunk border into
// block polygons. Cut polylines are collected into Cuts - these are the
// alleys; they are not part of the returned block set.
type Bisector struct {
	Arena    *geom.Arena
	Rng      *rng.Rng
	MinArea  float64 // minSq from AlleyParams
	Variance float64 // sizeChaos
	MinFront float64 // minimum offset before an L-turn is allowed

	Cuts [][]geom.Point
}

// Partition splits poly until every piece is atomic. Degenerate pieces
// (under 3 vertices or near-zero area) are dropped rather than
// recursed on, matching the skip-don't-abort failure policy.
func (bi *Bisector) Partition(poly *geom.Polygon) []*geom.Polygon {
	out := []*geom.Polygon{}
	bi.partition(poly, 0, &out)
	return out
}

// maxDepth is a backstop well past the log2(area/minSq) bound the
// recursion normally terminates within.
const maxDepth = 24

func (bi *Bisector) partition(poly *geom.Polygon, depth int, out *[]*geom.Polygon) {
	if poly == nil || poly.Len() < 3 {
		return
	}
	area := poly.Area()
	if area < 1e-6 {
		return
	}
	threshold := bi.MinArea * math.Pow(bi.Variance, math.Abs(bi.Rng.N4()-1))
	if depth >= maxDepth || area < threshold {
		*out = append(*out, poly)
		return
	}

	for attempt := 0; attempt < maxCutAttempts; attempt++ {
		a, b, cut, ok := bi.tryCut(poly, attempt)
		if !ok {
			continue
		}
		a1, a2 := a.Area(), b.Area()
		if a1 < 1e-6 || a2 < 1e-6 {
			continue
		}
		larger := math.Max(a1, a2)
		if math.Abs(a1-a2) > 2*bi.Variance*larger {
			continue
		}
		bi.Cuts = append(bi.Cuts, cut)
		bi.partition(a, depth+1, out)
		bi.partition(b, depth+1, out)
		return
	}

	// Every attempt failed; keep the piece whole rather than abort.
	*out = append(*out, poly)
}

// tryCut attempts one bisection of poly. attempt 0 cuts across the
// minimum-area OBB's long axis; retries rotate the cut direction by
// (attempt/10)*2pi to force alternate directions.
func (bi *Bisector) tryCut(poly *geom.Polygon, attempt int) (*geom.Polygon, *geom.Polygon, []geom.Point, bool) {
	obb := poly.OrientedBoundingBox()
	angle := obb.Angle
	halfLong, halfShort := obb.HalfW, obb.HalfH
	if halfShort > halfLong {
		angle += math.Pi / 2
		halfLong, halfShort = halfShort, halfLong
	}
	if attempt > 0 {
		angle += float64(attempt) / 10 * 2 * math.Pi
	}
	axis := geom.Point{X: math.Cos(angle), Y: math.Sin(angle)}
	perp := axis.Rotate90()

	// Cut position along the long axis: centroid projection blended
	// with a bell sample, clamped to the middle 60%.
	centroid := poly.Centroid()
	proj := centroid.Sub(obb.Center).Dot(axis)/(2*halfLong) + 0.5
	ratio := (proj + bi.Rng.N3()) / 2
	ratio = math.Min(0.8, math.Max(0.2, ratio))
	origin := obb.Center.Add(axis.Scale((ratio - 0.5) * 2 * halfLong))

	crossings := lineCrossings(poly, origin, perp)
	if len(crossings) < 2 {
		return nil, nil, nil, false
	}
	entry, exit, ok := pickCrossingPair(poly, crossings)
	if !ok {
		return nil, nil, nil, false
	}

	// Near-perpendicular exit edge: cut straight. Otherwise turn the
	// ray part-way across into an L-shaped cut that follows the long
	// axis to a second boundary edge.
	exitDir := poly.At(exit.edge + 1).Sub(poly.At(exit.edge))
	c := perp.Cross(exitDir)
	if c*c > 0.99*perp.DistSq(geom.Point{})*exitDir.DistSq(geom.Point{}) {
		a, b := splitRing(bi.Arena, poly, entry.edge, entry.pt, exit.edge, exit.pt, nil)
		if a == nil {
			return nil, nil, nil, false
		}
		return a, b, []geom.Point{entry.pt, exit.pt}, true
	}

	rayDist := entry.pt.Dist(exit.pt)
	if rayDist < 1e-6 {
		return nil, nil, nil, false
	}
	offsetRatio := math.Min(0.5, bi.MinFront/rayDist)
	f := offsetRatio + (1-2*offsetRatio)*bi.Rng.N3()
	turn := entry.pt.Lerp(exit.pt, f)

	if second, okTurn := bi.turnTarget(poly, turn, axis, entry.edge, exit.edge); okTurn {
		a, b := splitRing(bi.Arena, poly, entry.edge, entry.pt, second.edge, second.pt, []geom.Point{turn})
		if a != nil {
			return a, b, []geom.Point{entry.pt, turn, second.pt}, true
		}
	}

	// L-turn failed; fall back to the straight chord.
	a, b := splitRing(bi.Arena, poly, entry.edge, entry.pt, exit.edge, exit.pt, nil)
	if a == nil {
		return nil, nil, nil, false
	}
	return a, b, []geom.Point{entry.pt, exit.pt}, true
}

// crossing is one intersection of the cut line with a polygon edge.
type crossing struct {
	edge int
	pt   geom.Point
	t    float64 // parameter along the cut line, for ordering
}

// lineCrossings intersects the infinite line (origin, dir) with every
// polygon edge, ordered by position along the line.
func lineCrossings(poly *geom.Polygon, origin, dir geom.Point) []crossing {
	out := []crossing{}
	n := poly.Len()
	for i := 0; i < n; i++ {
		a, b := poly.At(i), poly.At(i+1)
		edge := b.Sub(a)
		denom := dir.Cross(edge)
		if math.Abs(denom) < 1e-9 {
			continue
		}
		u := a.Sub(origin).Cross(dir) / denom
		if u < 0 || u >= 1 {
			continue
		}
		t := a.Sub(origin).Cross(edge) / denom
		out = append(out, crossing{edge: i, pt: a.Add(edge.Scale(u)), t: t})
	}
	for i := 1; i < len(out); i++ {
		j := i
		for j > 0 && out[j].t < out[j-1].t {
			out[j], out[j-1] = out[j-1], out[j]
			j--
		}
	}
	return out
}

// pickCrossingPair chooses two consecutive crossings whose midpoint is
// interior - for convex polygons the only pair, for concave ones the
// pair actually spanning material.
func pickCrossingPair(poly *geom.Polygon, crossings []crossing) (crossing, crossing, bool) {
	for i := 0; i+1 < len(crossings); i++ {
		a, b := crossings[i], crossings[i+1]
		if a.edge == b.edge {
			continue
		}
		mid := a.pt.Lerp(b.pt, 0.5)
		if poly.Contains(mid) {
			return a, b, true
		}
	}
	return crossing{}, crossing{}, false
}

// turnTarget fires a ray from turn along +-axis and returns the first
// boundary hit on an edge other than the entry/exit edges. The nearer
// of the two directions wins.
func (bi *Bisector) turnTarget(poly *geom.Polygon, turn, axis geom.Point, entryEdge, exitEdge int) (crossing, bool) {
	best := crossing{}
	bestDist := math.Inf(1)
	found := false
	for _, dir := range []geom.Point{axis, axis.Scale(-1)} {
		n := poly.Len()
		for i := 0; i < n; i++ {
			if i == entryEdge || i == exitEdge {
				continue
			}
			a, b := poly.At(i), poly.At(i+1)
			edge := b.Sub(a)
			denom := dir.Cross(edge)
			if math.Abs(denom) < 1e-9 {
				continue
			}
			u := a.Sub(turn).Cross(dir) / denom
			t := a.Sub(turn).Cross(edge) / denom
			if u < 0 || u >= 1 || t <= 1e-9 {
				continue
			}
			if t < bestDist {
				bestDist = t
				best = crossing{edge: i, pt: a.Add(edge.Scale(u))}
				found = true
			}
		}
	}
	return best, found
}

// splitRing cuts poly into two rings along the polyline
// entryPt -> mid... -> exitPt, where entryPt lies on edge entryEdge and
// exitPt on edge exitEdge. The polyline's points are allocated fresh in
// the arena and shared between both halves, preserving the shared-
// vertex invariant across the new alley.
func splitRing(arena *geom.Arena, poly *geom.Polygon, entryEdge int, entryPt geom.Point, exitEdge int, exitPt geom.Point, mid []geom.Point) (*geom.Polygon, *geom.Polygon) {
	if entryEdge == exitEdge {
		return nil, nil
	}
	n := poly.Len()
	entryID := arena.Add(entryPt)
	exitID := arena.Add(exitPt)
	midIDs := make([]geom.PointID, len(mid))
	for i, m := range mid {
		midIDs[i] = arena.Add(m)
	}

	// Side A: entry point, boundary from entryEdge+1 around to
	// exitEdge, exit point, then the polyline walked back.
	a := []geom.PointID{entryID}
	for i := (entryEdge + 1) % n; ; i = (i + 1) % n {
		a = append(a, poly.Points[i])
		if i == exitEdge {
			break
		}
	}
	a = append(a, exitID)
	for i := len(midIDs) - 1; i >= 0; i-- {
		a = append(a, midIDs[i])
	}

	// Side B: the complementary boundary walk plus the polyline forward.
	b := []geom.PointID{exitID}
	for i := (exitEdge + 1) % n; ; i = (i + 1) % n {
		b = append(b, poly.Points[i])
		if i == entryEdge {
			break
		}
	}
	b = append(b, entryID)
	b = append(b, midIDs...)

	if len(a) < 3 || len(b) < 3 {
		return nil, nil
	}
	return geom.NewPolygon(arena, a), geom.NewPolygon(arena, b)
}
