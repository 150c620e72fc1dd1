package classify

import (
	"sort"

	"github.com/townforge/towngen/internal/geom"
	"github.com/townforge/towngen/internal/model"
)

// sortedEdgeKeys orders a node's neighbors by PointID so the greedy
// canal walk is seed-stable.
func sortedEdgeKeys(edges map[geom.PointID]float64) []geom.PointID {
	out := make([]geom.PointID, 0, len(edges))
	for nb := range edges {
		out = append(out, nb)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// BuildCanal carves a river: find a shore vertex
// nearest the center, find a non-shore outer-boundary vertex
// maximizing alignment with the inland direction, walk from one to
// the other by greedy distance-to-target over incident patch
// vertices, smooth twice, then locate bridges against every artery
// segment (a true segment-segment intersection test, not an
// axis-aligned approximation).
func BuildCanal(city *model.City, width float64) *model.Canal {
	if len(city.Shore) == 0 {
		return nil
	}

	start := nearestTo(city, city.Shore, city.Center)
	inlandDir := city.Arena.Get(start).Sub(city.Center).Norm()

	target := geom.PointID(0)
	bestScore := -1.0
	for _, cell := range city.Cells {
		if cell.Waterbody {
			continue
		}
		for i := 0; i < cell.Shape.Len(); i++ {
			id := cell.Shape.Points[i]
			if isShore(city, id) {
				continue
			}
			if !cell.WithinCity && city.Graph.IsOuter(id) {
				p := city.Arena.Get(id)
				toCandidate := p.Sub(city.Arena.Get(start))
				score := 0.5*toCandidate.Norm().Dot(inlandDir) + 0.01*toCandidate.Length()
				if score > bestScore {
					bestScore = score
					target = id
				}
			}
		}
	}
	if bestScore < 0 {
		return nil
	}

	course := walk(city, start, target)
	if len(course) < 2 {
		return nil
	}

	geom.SmoothPolyline(city.Arena, course, 3)
	geom.SmoothPolyline(city.Arena, course, 3)

	canal := &model.Canal{Course: course, Width: width}
	canal.Bridges = findBridges(city, course)
	return canal
}

func isShore(city *model.City, id geom.PointID) bool {
	for _, s := range city.Shore {
		if s == id {
			return true
		}
	}
	return false
}

func nearestTo(city *model.City, ids []geom.PointID, target geom.Point) geom.PointID {
	best := ids[0]
	bestD := city.Arena.Get(best).DistSq(target)
	for _, id := range ids[1:] {
		d := city.Arena.Get(id).DistSq(target)
		if d < bestD {
			bestD = d
			best = id
		}
	}
	return best
}

// walk greedily follows incident patch vertices from start toward
// target, always stepping to whichever neighbor reduces remaining
// distance the most.
func walk(city *model.City, start, target geom.PointID) []geom.PointID {
	course := []geom.PointID{start}
	cur := start
	visited := map[geom.PointID]bool{start: true}
	targetPt := city.Arena.Get(target)

	for steps := 0; steps < city.Arena.Len(); steps++ {
		if cur == target {
			break
		}
		node, ok := city.Graph.Nodes[cur]
		if !ok {
			break
		}
		best := geom.PointID(0)
		bestDist := city.Arena.Get(cur).Dist(targetPt)
		found := false
		for _, nb := range sortedEdgeKeys(node.Edges) {
			if visited[nb] {
				continue
			}
			d := city.Arena.Get(nb).Dist(targetPt)
			if d < bestDist {
				bestDist = d
				best = nb
				found = true
			}
		}
		if !found {
			break
		}
		course = append(course, best)
		visited[best] = true
		cur = best
	}
	return course
}

// findBridges intersects every canal segment with every artery
// segment.
func findBridges(city *model.City, course []geom.PointID) []geom.Point {
	bridges := []geom.Point{}
	for i := 0; i+1 < len(course); i++ {
		a, b := city.Arena.Get(course[i]), city.Arena.Get(course[i+1])
		for _, artery := range city.Arteries {
			for j := 0; j+1 < len(artery); j++ {
				c, d := city.Arena.Get(artery[j]), city.Arena.Get(artery[j+1])
				if pt, ok := geom.SegmentIntersect(a, b, c, d); ok {
					bridges = append(bridges, pt)
				}
			}
		}
	}
	return bridges
}
