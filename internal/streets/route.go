package streets

import (
	"github.com/townforge/towngen/internal/geom"
	"github.com/townforge/towngen/internal/model"
)

// Route builds the street network: for every gate, an A* street to
// the plaza excluding the outer node set, plus (for border gates) a
// road to a pseudo-horizon vertex excluding the inner node set. The
// raw paths are then tidied into de-duplicated directed segments and
// chained into maximal arteries, which are finally smoothed in place
// so patch boundaries flex with the final street geometry.
func Route(city *model.City) {
	plaza := plazaCell(city)
	if plaza == nil {
		return
	}

	gates := wallGates(city)

	rawStreets := [][]geom.PointID{}
	rawRoads := [][]geom.PointID{}

	for _, gate := range gates {
		p := nearestVertex(city, plaza.Shape.Points, gate)
		path := AStar(city, gate, p, city.Graph.IsOuter)
		if len(path) > 1 {
			rawStreets = append(rawStreets, path)
		}

		if city.Border != nil && containsGate(city.Border.Gates, gate) {
			h := pseudoHorizon(city, gate)
			if h != 0 {
				road := AStar(city, h, gate, city.Graph.IsInner)
				if len(road) > 1 {
					rawRoads = append(rawRoads, road)
				}
			}
		}
	}

	city.Streets = rawStreets
	city.Roads = rawRoads

	plazaEdges := edgeSet(plaza.Shape)
	segments := tidy(append(append([][]geom.PointID{}, rawStreets...), rawRoads...), plazaEdges)
	city.Arteries = chain(segments)

	for _, artery := range city.Arteries {
		geom.SmoothPolyline(city.Arena, artery, 3)
	}
}

func wallGates(city *model.City) []geom.PointID {
	if city.Wall != nil {
		return city.Wall.Gates
	}
	if city.Border != nil {
		return city.Border.Gates
	}
	return nil
}

func containsGate(gates []geom.PointID, id geom.PointID) bool {
	for _, g := range gates {
		if g == id {
			return true
		}
	}
	return false
}

// plazaCell returns the inner, dry cell nearest the town center - the
// central quadrilateral cell created by the optional plaza override
// in the Tessellator, independent of ward assignment (which has not
// yet run at this pipeline stage).
func plazaCell(city *model.City) *model.Cell {
	var best *model.Cell
	bestD := -1.0
	for _, c := range city.Cells {
		if c.Waterbody || !c.WithinCity {
			continue
		}
		d := c.Seed.DistSq(city.Center)
		if best == nil || d < bestD {
			best = c
			bestD = d
		}
	}
	return best
}

func nearestVertex(city *model.City, candidates []geom.PointID, from geom.PointID) geom.PointID {
	fromPt := city.Arena.Get(from)
	best := candidates[0]
	bestD := city.Arena.Get(best).DistSq(fromPt)
	for _, id := range candidates[1:] {
		d := city.Arena.Get(id).DistSq(fromPt)
		if d < bestD {
			bestD = d
			best = id
		}
	}
	return best
}

// pseudoHorizon returns the existing node closest to
// center + (g-center).normalized*1000. Ties break on the lower
// PointID so the pick is seed-stable.
func pseudoHorizon(city *model.City, gate geom.PointID) geom.PointID {
	g := city.Arena.Get(gate)
	target := city.Center.Add(g.Sub(city.Center).Norm().Scale(1000))
	var best geom.PointID
	bestD := -1.0
	found := false
	for id := range city.Graph.Nodes {
		d := city.Arena.Get(id).DistSq(target)
		if !found || d < bestD || (d == bestD && id < best) {
			bestD = d
			best = id
			found = true
		}
	}
	return best
}

func edgeSet(p *geom.Polygon) map[[2]geom.PointID]bool {
	out := map[[2]geom.PointID]bool{}
	p.ForSegment(func(a, b geom.PointID) {
		out[[2]geom.PointID{a, b}] = true
		out[[2]geom.PointID{b, a}] = true
	})
	return out
}

// tidy cuts every path into directed unit segments, skips segments
// lying along a plaza edge, and de-duplicates.
func tidy(paths [][]geom.PointID, plazaEdges map[[2]geom.PointID]bool) [][2]geom.PointID {
	seen := map[[2]geom.PointID]bool{}
	out := [][2]geom.PointID{}
	for _, path := range paths {
		for i := 0; i+1 < len(path); i++ {
			a, b := path[i], path[i+1]
			if plazaEdges[[2]geom.PointID{a, b}] {
				continue
			}
			key := [2]geom.PointID{a, b}
			rev := [2]geom.PointID{b, a}
			if seen[key] || seen[rev] {
				continue
			}
			seen[key] = true
			out = append(out, key)
		}
	}
	return out
}

// chain attaches segments end-to-end into maximal arteries: a segment
// joins a path whose front matches its end or whose back matches its
// start.
func chain(segments [][2]geom.PointID) [][]geom.PointID {
	paths := make([][]geom.PointID, 0, len(segments))
	for _, s := range segments {
		paths = append(paths, []geom.PointID{s[0], s[1]})
	}

	changed := true
	for changed {
		changed = false
		for i := 0; i < len(paths); i++ {
			if paths[i] == nil {
				continue
			}
			for j := 0; j < len(paths); j++ {
				if i == j || paths[j] == nil {
					continue
				}
				a, b := paths[i], paths[j]
				if a[len(a)-1] == b[0] {
					paths[i] = append(append([]geom.PointID{}, a...), b[1:]...)
					paths[j] = nil
					changed = true
				} else if b[len(b)-1] == a[0] {
					paths[i] = append(append([]geom.PointID{}, b...), a[1:]...)
					paths[j] = nil
					changed = true
				}
			}
		}
	}

	out := make([][]geom.PointID, 0, len(paths))
	for _, p := range paths {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}
