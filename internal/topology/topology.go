// Package topology links the tessellated cells into a shared-vertex
// graph: neighbor linking by reverse-edge matching, junction
// optimization, and the A* pathfinding graph with inner/outer
// exclusion sets.
package topology

import (
	"sort"

	"github.com/townforge/towngen/internal/geom"
	"github.com/townforge/towngen/internal/model"
)

// JunctionEpsilon is the default approximate-junction merge distance.
const JunctionEpsilon = 8.0

// Build links neighbors, merges nearby junctions, and constructs the
// pathfinding graph with inner/outer bitmaps. eps overrides
// JunctionEpsilon when > 0.
func Build(city *model.City, eps float64) {
	if eps <= 0 {
		eps = JunctionEpsilon
	}
	LinkNeighbors(city)
	OptimizeJunctions(city, eps)
	BuildGraph(city)
}

// LinkNeighbors links every pair of cells whose shapes share a
// reversed directed edge: cell A's edge (v0->v1) and cell B's edge
// (v1->v0) are the same physical boundary.
func LinkNeighbors(city *model.City) {
	type edgeKey struct{ a, b geom.PointID }
	owners := map[edgeKey]*model.Cell{}
	for _, c := range city.Cells {
		c.Shape.ForSegment(func(a, b geom.PointID) {
			owners[edgeKey{a, b}] = c
		})
	}
	for _, c := range city.Cells {
		c.Shape.ForSegment(func(a, b geom.PointID) {
			if owner, ok := owners[edgeKey{b, a}]; ok && owner != c && !c.HasNeighbor(owner) {
				c.Neighbors = append(c.Neighbors, owner)
				owner.Neighbors = append(owner.Neighbors, c)
			}
		})
	}
}

// OptimizeJunctions walks every interior cell's vertices and merges
// adjacent vertices closer than eps into one shared reference,
// rewriting every cell that held the discarded point. This collapses
// slivers left by Lloyd relaxation and coast carving without
// detaching any cell from its neighbors.
func OptimizeJunctions(city *model.City, eps float64) {
	arena := city.Arena
	ownersOf := func(id geom.PointID) []*model.Cell {
		out := []*model.Cell{}
		for _, c := range city.Cells {
			if c.Shape.IndexOf(id) >= 0 {
				out = append(out, c)
			}
		}
		return out
	}

	for _, cell := range city.Cells {
		if !cell.WithinCity {
			continue
		}
		i := 0
		for i < cell.Shape.Len() && cell.Shape.Len() >= 3 {
			n := cell.Shape.Len()
			v0 := cell.Shape.Points[i%n]
			v1 := cell.Shape.Points[(i+1)%n]
			if v0 == v1 {
				i++
				continue
			}
			p0, p1 := arena.Get(v0), arena.Get(v1)
			if p0.Dist(p1) < eps {
				mid := p0.Lerp(p1, 0.5)
				arena.Set(v0, mid)
				for _, owner := range ownersOf(v1) {
					replaceVertex(owner, v1, v0)
				}
			}
			i++
		}
		dedupeInPlace(cell.Shape)
	}
}

func replaceVertex(c *model.Cell, from, to geom.PointID) {
	for idx, id := range c.Shape.Points {
		if id == from {
			c.Shape.Points[idx] = to
		}
	}
}

// dedupeInPlace drops consecutive duplicate/degenerate vertices left
// behind by a junction merge.
func dedupeInPlace(p *geom.Polygon) {
	out := make([]geom.PointID, 0, p.Len())
	n := p.Len()
	for i := 0; i < n; i++ {
		cur := p.Points[i]
		if len(out) > 0 && out[len(out)-1] == cur {
			continue
		}
		out = append(out, cur)
	}
	if len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	p.Points = out
}

// BuildGraph constructs one Node per cell vertex (water cells
// contribute none), links adjacent polygon vertices by Euclidean
// distance, marks the inner/outer exclusion sets, then severs every
// shore vertex so no path can follow a land/water "bridge".
func BuildGraph(city *model.City) {
	g := model.NewGraph(city.Arena.Len())
	city.Graph = g

	shore := map[geom.PointID]bool{}

	for _, cell := range city.Cells {
		if cell.Waterbody {
			continue
		}
		cell.Shape.ForSegment(func(a, b geom.PointID) {
			weight := city.Arena.Get(a).Dist(city.Arena.Get(b))
			g.Link(a, b, weight)
		})
		for _, id := range cell.Shape.Points {
			if cell.WithinCity {
				g.MarkInner(id)
			} else {
				g.MarkOuter(id)
			}
		}
		for _, nb := range cell.Neighbors {
			if nb.Waterbody {
				for _, id := range cell.Shape.Points {
					if nb.Shape.IndexOf(id) >= 0 {
						shore[id] = true
					}
				}
			}
		}
	}

	for id := range shore {
		g.UnlinkAll(id)
	}
	city.Shore = keys(shore)
}

// keys returns the map's keys in ascending PointID order, so shore
// iteration downstream (canal start selection) is seed-stable.
func keys(m map[geom.PointID]bool) []geom.PointID {
	out := make([]geom.PointID, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
