// Package classify types every cell edge
// (COAST/WALL/CANAL/ROAD/HORIZON/NONE) and carves the canal (river).
package classify

import (
	"github.com/townforge/towngen/internal/geom"
	"github.com/townforge/towngen/internal/model"
)

// Classify assigns an EdgeType to every edge of every cell, in
// priority order: coast beats wall beats canal beats road beats
// horizon.
func Classify(city *model.City) {
	wallEdges := wallEdgeSet(city)
	canalEdges := canalEdgeSet(city)
	roadEdges := roadEdgeSet(city)

	minX, minY, maxX, maxY := cityBounds(city)

	for _, cell := range city.Cells {
		n := cell.Shape.Len()
		for i := 0; i < n; i++ {
			a, b := cell.Shape.Points[i], cell.Shape.Points[(i+1)%n]

			nb := neighborAcross(cell, a, b)
			switch {
			case nb != nil && nb.Waterbody:
				cell.SetEdgeType(i, model.EdgeCoast)
			case wallEdges[edgeKey{a, b}] || wallEdges[edgeKey{b, a}]:
				cell.SetEdgeType(i, model.EdgeWall)
			case canalEdges[edgeKey{a, b}] || canalEdges[edgeKey{b, a}]:
				cell.SetEdgeType(i, model.EdgeCanal)
			case roadEdges[edgeKey{a, b}] || roadEdges[edgeKey{b, a}]:
				cell.SetEdgeType(i, model.EdgeRoad)
			case nb == nil && !cell.WithinCity && onBounds(city.Arena, a, b, minX, minY, maxX, maxY):
				cell.SetEdgeType(i, model.EdgeHorizon)
			default:
				cell.SetEdgeType(i, model.EdgeNone)
			}
		}
	}
}

type edgeKey struct{ a, b geom.PointID }

// neighborAcross returns the neighbor cell that owns the reverse of
// edge (a,b), or nil for an edge lacking a neighbor.
func neighborAcross(cell *model.Cell, a, b geom.PointID) *model.Cell {
	for _, nb := range cell.Neighbors {
		if nb.Shape.IndexOf(b) >= 0 && nb.Shape.IndexOf(a) >= 0 {
			idx := nb.Shape.IndexOf(b)
			if nb.Shape.Points[(idx+1)%nb.Shape.Len()] == a {
				return nb
			}
		}
	}
	return nil
}

func wallEdgeSet(city *model.City) map[edgeKey]bool {
	out := map[edgeKey]bool{}
	for _, w := range []*model.CurtainWall{city.Citadel, city.Border, city.Wall} {
		if w == nil {
			continue
		}
		n := w.Shape.Len()
		for i := 0; i < n; i++ {
			if i < len(w.Segments) && !w.Segments[i] {
				continue
			}
			out[edgeKey{w.Shape.Points[i], w.Shape.Points[(i+1)%n]}] = true
		}
	}
	return out
}

func canalEdgeSet(city *model.City) map[edgeKey]bool {
	out := map[edgeKey]bool{}
	for _, canal := range city.Canals {
		for i := 0; i+1 < len(canal.Course); i++ {
			out[edgeKey{canal.Course[i], canal.Course[i+1]}] = true
		}
	}
	return out
}

func roadEdgeSet(city *model.City) map[edgeKey]bool {
	out := map[edgeKey]bool{}
	add := func(paths [][]geom.PointID) {
		for _, path := range paths {
			for i := 0; i+1 < len(path); i++ {
				out[edgeKey{path[i], path[i+1]}] = true
			}
		}
	}
	add(city.Arteries)
	add(city.Streets)
	add(city.Roads)
	return out
}

func cityBounds(city *model.City) (minX, minY, maxX, maxY float64) {
	first := true
	for _, cell := range city.Cells {
		for _, id := range cell.Shape.Points {
			p := city.Arena.Get(id)
			if first {
				minX, maxX, minY, maxY = p.X, p.X, p.Y, p.Y
				first = false
				continue
			}
			if p.X < minX {
				minX = p.X
			}
			if p.X > maxX {
				maxX = p.X
			}
			if p.Y < minY {
				minY = p.Y
			}
			if p.Y > maxY {
				maxY = p.Y
			}
		}
	}
	return
}

func onBounds(arena *geom.Arena, a, b geom.PointID, minX, minY, maxX, maxY float64) bool {
	const eps = 1e-3
	onEdge := func(id geom.PointID) bool {
		p := arena.Get(id)
		return p.X <= minX+eps || p.X >= maxX-eps || p.Y <= minY+eps || p.Y >= maxY-eps
	}
	return onEdge(a) && onEdge(b)
}
