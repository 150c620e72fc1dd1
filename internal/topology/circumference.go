package topology

import (
	"github.com/townforge/towngen/internal/geom"
	"github.com/townforge/towngen/internal/model"
)

// Circumference returns the ordered boundary ring of a set of cells:
// a directed edge survives iff no cell in the set owns its reverse.
// Because every surviving edge is a pair of shared PointIDs, the
// result polygon shares vertices with the underlying patches exactly
// wall and ward-group construction depend on.
func Circumference(cells []*model.Cell) []geom.PointID {
	type edgeKey struct{ a, b geom.PointID }
	owned := map[edgeKey]bool{}
	for _, c := range cells {
		c.Shape.ForSegment(func(a, b geom.PointID) {
			owned[edgeKey{a, b}] = true
		})
	}

	survivors := map[geom.PointID]geom.PointID{} // a -> b
	for _, c := range cells {
		c.Shape.ForSegment(func(a, b geom.PointID) {
			if !owned[edgeKey{b, a}] {
				survivors[a] = b
			}
		})
	}
	return chain(survivors)
}

// chain stitches a -> b edges into one maximal ordered ring. The
// lowest surviving PointID starts the walk so the ring's rotation is
// the same on every run with the same seed.
func chain(edges map[geom.PointID]geom.PointID) []geom.PointID {
	if len(edges) == 0 {
		return nil
	}
	start := geom.PointID(0)
	first := true
	for a := range edges {
		if first || a < start {
			start = a
			first = false
		}
	}
	out := []geom.PointID{start}
	cur := start
	seen := map[geom.PointID]bool{start: true}
	for {
		next, ok := edges[cur]
		if !ok || next == start {
			break
		}
		if seen[next] {
			break
		}
		out = append(out, next)
		seen[next] = true
		cur = next
	}
	return out
}
