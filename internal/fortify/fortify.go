// Package fortify builds the fortification rings:
// curtain-wall circumference, smoothing, gate selection, gate
// courtyard carving, tower placement and coastal segment disabling.
// It runs once per ring requested: optional citadel, the always-
// present town border, and the optional real defensive wall.
package fortify

import (
	"fmt"
	"math"

	"github.com/townforge/towngen/internal/geom"
	"github.com/townforge/towngen/internal/model"
	"github.com/townforge/towngen/internal/rng"
	"github.com/townforge/towngen/internal/topology"
)

// ErrNoGates is fatal: a wall without gates strands the town.
var ErrNoGates = fmt.Errorf("fortify: gate selection produced zero gates")

// Options parameterizes one wall build.
type Options struct {
	Kind     string // "citadel" | "border" | "wall"
	Reserved map[geom.PointID]bool
	Smooth   bool // only real walls smooth
	Citadel  *model.CurtainWall
}

// Build runs the full fortification pipeline for one set of cells.
func Build(city *model.City, cells []*model.Cell, r *rng.Rng, opts Options) (*model.CurtainWall, error) {
	ring := topology.Circumference(cells)
	if len(ring) < 3 {
		return nil, fmt.Errorf("fortify: circumference degenerate (%d vertices)", len(ring))
	}
	shape := geom.NewPolygon(city.Arena, ring)

	wall := &model.CurtainWall{Kind: opts.Kind, Shape: shape}

	if opts.Smooth {
		smooth(city.Arena, shape, opts.Reserved)
	}

	gates, err := selectGates(r, cells, shape, opts.Reserved)
	if err != nil {
		return nil, err
	}
	wall.Gates = gates

	if opts.Kind == "wall" {
		carveGateCourtyards(city, cells, wall)
	}

	disableCoastalSegments(city, shape, wall, opts.Citadel)
	if opts.Kind == "border" {
		// The border ring is an administrative boundary, not masonry:
		// no segment is ever real, so tower placement finds nothing
		// and the classifier never types its edges WALL. Its gates
		// still anchor street routing for unwalled towns.
		for i := range wall.Segments {
			wall.Segments[i] = false
		}
	}
	placeTowers(wall)

	return wall, nil
}

// smooth replaces each non-reserved vertex with a weighted average of
// its two neighbors, weight min(1, 40/n).
func smooth(arena *geom.Arena, shape *geom.Polygon, reserved map[geom.PointID]bool) {
	n := shape.Len()
	weight := math.Min(1, 40/float64(n))
	next := make([]geom.Point, n)
	for i := 0; i < n; i++ {
		id := shape.Points[i]
		cur := arena.Get(id)
		if reserved[id] {
			next[i] = cur
			continue
		}
		prev, nxt := shape.At(i-1), shape.At(i+1)
		avg := geom.Point{X: (prev.X + nxt.X) / 2, Y: (prev.Y + nxt.Y) / 2}
		next[i] = cur.Lerp(avg, weight)
	}
	for i, id := range shape.Points {
		arena.Set(id, next[i])
	}
}

// countIncidentInterior counts how many of cells contain vertex id.
func countIncidentInterior(cells []*model.Cell, id geom.PointID) int {
	count := 0
	for _, c := range cells {
		if c.Shape.IndexOf(id) >= 0 {
			count++
		}
	}
	return count
}

// selectGates picks gates from a candidate pool, discarding each
// pick's ring neighbors so the picked gates are never adjacent. When
// fewer than three candidates exist from the start, every candidate
// becomes a gate instead.
func selectGates(r *rng.Rng, cells []*model.Cell, shape *geom.Polygon, reserved map[geom.PointID]bool) ([]geom.PointID, error) {
	multi := len(cells) > 1
	candidates := make([]geom.PointID, 0, shape.Len())
	for _, id := range shape.Points {
		if reserved[id] {
			continue
		}
		if multi && countIncidentInterior(cells, id) < 2 {
			continue
		}
		candidates = append(candidates, id)
	}

	pool := append([]geom.PointID(nil), candidates...)
	gates := []geom.PointID{}
	for len(pool) >= 3 {
		idx := r.Int(0, len(pool))
		gate := pool[idx]
		gates = append(gates, gate)

		discard := map[geom.PointID]bool{gate: true}
		gi := shape.IndexOf(gate)
		if gi >= 0 {
			discard[shape.Points[(gi-1+shape.Len())%shape.Len()]] = true
			discard[shape.Points[(gi+1)%shape.Len()]] = true
		}
		next := pool[:0:0]
		for _, id := range pool {
			if !discard[id] {
				next = append(next, id)
			}
		}
		pool = next
	}

	if len(gates) == 0 {
		// Recover rather than abort when the pool ran out before
		// three gates were ever reachable: every candidate is a gate.
		if len(candidates) > 0 {
			return candidates, nil
		}
		return nil, ErrNoGates
	}
	return gates, nil
}

// carveGateCourtyards: if a gate has exactly one outer-side neighbor
// patch with more than three vertices, split that patch along
// (gate -> farthest vertex in the outward-normal direction). A
// best-effort cut: the split is recorded as an inserted diagonal
// rather than a full re-triangulation of the patch.
func carveGateCourtyards(city *model.City, innerCells []*model.Cell, wall *model.CurtainWall) {
	inner := map[*model.Cell]bool{}
	for _, c := range innerCells {
		inner[c] = true
	}

	for _, gate := range wall.Gates {
		var outerNeighbor *model.Cell
		count := 0
		for _, c := range city.Cells {
			if inner[c] || c.Waterbody {
				continue
			}
			if c.Shape.IndexOf(gate) >= 0 {
				count++
				outerNeighbor = c
			}
		}
		if count != 1 || outerNeighbor.Shape.Len() <= 3 {
			continue
		}

		gatePt := city.Arena.Get(gate)
		center := outerNeighbor.Shape.Centroid()
		outward := gatePt.Sub(center).Norm()

		best := -1
		bestScore := math.Inf(-1)
		for i := 0; i < outerNeighbor.Shape.Len(); i++ {
			id := outerNeighbor.Shape.Points[i]
			if id == gate {
				continue
			}
			score := city.Arena.Get(id).Sub(center).Norm().Dot(outward)
			if score > bestScore {
				bestScore = score
				best = i
			}
		}
		if best < 0 {
			continue
		}
		// Record the split diagonal by duplicating the gate vertex
		// immediately before the farthest vertex, forming the
		// courtyard notch without detaching the shared edge network.
		outerNeighbor.Shape.InsertAfter(best-1, gate)
	}
}

// disableCoastalSegments sets Segments[i] = false for every edge whose
// endpoints are both shared with a water cell or with the citadel.
func disableCoastalSegments(city *model.City, shape *geom.Polygon, wall *model.CurtainWall, citadel *model.CurtainWall) {
	n := shape.Len()
	wall.Segments = make([]bool, n)

	waterVerts := map[geom.PointID]bool{}
	for _, c := range city.Cells {
		if !c.Waterbody {
			continue
		}
		for _, id := range c.Shape.Points {
			waterVerts[id] = true
		}
	}
	citadelVerts := map[geom.PointID]bool{}
	if citadel != nil {
		for _, id := range citadel.Shape.Points {
			citadelVerts[id] = true
		}
	}

	for i := 0; i < n; i++ {
		a, b := shape.Points[i], shape.Points[(i+1)%n]
		bothWater := waterVerts[a] && waterVerts[b]
		bothCitadel := citadelVerts[a] && citadelVerts[b]
		wall.Segments[i] = !bothWater && !bothCitadel
	}
}

// placeTowers collects every non-gate vertex flanking at least one
// enabled segment.
func placeTowers(wall *model.CurtainWall) {
	gateSet := map[geom.PointID]bool{}
	for _, g := range wall.Gates {
		gateSet[g] = true
	}
	n := wall.Shape.Len()
	towers := []geom.Point{}
	for i := 0; i < n; i++ {
		id := wall.Shape.Points[i]
		if gateSet[id] {
			continue
		}
		prevEnabled := wall.Segments[(i-1+n)%n]
		curEnabled := wall.Segments[i]
		if prevEnabled || curEnabled {
			towers = append(towers, wall.Shape.Arena().Get(id))
		}
	}
	wall.Towers = towers
}
