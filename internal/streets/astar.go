// Package streets routes the street network: A* arteries from every
// gate to the plaza (or to a pseudo-horizon vertex for roads),
// tidy-up into directed de-duplicated segments, chaining into maximal
// arteries, and smoothing.
package streets

import (
	"container/heap"
	"sort"

	"github.com/townforge/towngen/internal/geom"
	"github.com/townforge/towngen/internal/model"
)

// pqItem is one entry of the A* open set.
type pqItem struct {
	id       geom.PointID
	priority float64
	index    int
}

type priorityQueue []*pqItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].priority < pq[j].priority }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i]; pq[i].index, pq[j].index = i, j }
func (pq *priorityQueue) Push(x interface{}) {
	item := x.(*pqItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// AStar finds the shortest path from start to goal over g, excluding
// any vertex for which exclude(id) is true (other than start/goal
// themselves). Returns nil if no path exists.
func AStar(city *model.City, start, goal geom.PointID, exclude func(geom.PointID) bool) []geom.PointID {
	g := city.Graph
	goalPt := city.Arena.Get(goal)
	heuristic := func(id geom.PointID) float64 {
		return city.Arena.Get(id).Dist(goalPt)
	}

	dist := map[geom.PointID]float64{start: 0}
	parent := map[geom.PointID]geom.PointID{}
	visited := map[geom.PointID]bool{}

	pq := &priorityQueue{{id: start, priority: heuristic(start)}}
	heap.Init(pq)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(*pqItem)
		if visited[cur.id] {
			continue
		}
		visited[cur.id] = true
		if cur.id == goal {
			return reconstruct(parent, start, goal)
		}
		node, ok := g.Nodes[cur.id]
		if !ok {
			continue
		}
		for _, nb := range sortedNeighbors(node) {
			if nb != goal && nb != start && exclude(nb) {
				continue
			}
			nd := dist[cur.id] + node.Edges[nb]
			if existing, ok := dist[nb]; !ok || nd < existing {
				dist[nb] = nd
				parent[nb] = cur.id
				heap.Push(pq, &pqItem{id: nb, priority: nd + heuristic(nb)})
			}
		}
	}
	return nil
}

// sortedNeighbors expands edges in ascending PointID order so equal-
// cost ties resolve the same way on every run.
func sortedNeighbors(node *model.Node) []geom.PointID {
	out := make([]geom.PointID, 0, len(node.Edges))
	for nb := range node.Edges {
		out = append(out, nb)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func reconstruct(parent map[geom.PointID]geom.PointID, start, goal geom.PointID) []geom.PointID {
	path := []geom.PointID{goal}
	cur := goal
	for cur != start {
		p, ok := parent[cur]
		if !ok {
			return nil
		}
		path = append([]geom.PointID{p}, path...)
		cur = p
	}
	return path
}
