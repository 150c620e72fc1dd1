package voronoi

import (
	"math"

	"github.com/townforge/towngen/internal/geom"
	"github.com/townforge/towngen/internal/model"
	"github.com/townforge/towngen/internal/rng"
)

// carveCoast runs the coastline pass: a fractal-noise
// modulated half-plane marks cells as water, then only the largest
// connected water component survives. cfg.Coast == CoastForbid skips
// entirely; CoastRandom flips a coin first.
func carveCoast(arena *geom.Arena, r *rng.Rng, res *Result, mode Coast) {
	switch mode {
	case CoastForbid:
		return
	case CoastRandom:
		if !r.Bool(0.5) {
			return
		}
	case CoastForce:
		// always carve
	}

	b := res.Radius
	theta := math.Floor(20*r.Float()) / 10 * math.Pi
	f := 20 + r.Float()*40
	lateral := 0.3 * b * (2*r.N3() - 1)
	radius := b * (0.2 + math.Abs(r.N4()-1))

	sinT, cosT := math.Sin(theta), math.Cos(theta)
	rotate := func(p geom.Point) geom.Point {
		dx, dy := p.X-res.Center.X, p.Y-res.Center.Y
		return geom.Point{
			X: dx*cosT + dy*sinT,
			Y: -dx*sinT + dy*cosT,
		}
	}

	coastCenter := geom.Point{X: radius + f, Y: lateral}

	waterCount := 0
	for _, cell := range res.Cells {
		c := rotate(cell.Seed)
		dx, dy := c.X-coastCenter.X, c.Y-coastCenter.Y
		dist := math.Hypot(dx, dy)
		u := dist - radius
		if dist > radius {
			u = math.Abs(dy) - radius
		}
		n := fractalNoise(c.X/50, c.Y/50, 6) * radius * math.Sqrt(radius/b)
		if u+n < 0 {
			cell.Waterbody = true
			waterCount++
		}
	}
	if waterCount == 0 {
		return
	}

	keepLargestWaterComponent(res.Cells)

	// WithinCity is decided later by the build pipeline (the nCells
	// closest dry cells); carving only marks water. The river decision
	// must stay at this exact RNG position for seed stability.
	res.River = r.Bool(0.67)
}

// keepLargestWaterComponent finds connected components of Waterbody
// cells (two cells are adjacent when they share any vertex) and clears the
// flag on every cell not in the largest one.
func keepLargestWaterComponent(cells []*model.Cell) {
	adjacency := buildVertexAdjacency(cells)

	visited := map[*model.Cell]bool{}
	var best []*model.Cell
	for _, c := range cells {
		if !c.Waterbody || visited[c] {
			continue
		}
		comp := []*model.Cell{}
		queue := []*model.Cell{c}
		visited[c] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			comp = append(comp, cur)
			for _, nb := range adjacency[cur] {
				if nb.Waterbody && !visited[nb] {
					visited[nb] = true
					queue = append(queue, nb)
				}
			}
		}
		if len(comp) > len(best) {
			best = comp
		}
	}

	inBest := map[*model.Cell]bool{}
	for _, c := range best {
		inBest[c] = true
	}
	for _, c := range cells {
		if c.Waterbody && !inBest[c] {
			c.Waterbody = false
		}
	}
}

// buildVertexAdjacency links cells that share at least one vertex -
// a cheap over-approximation of edge-adjacency, adequate for picking
// the single largest water blob before topology.Build computes the
// precise shared-edge neighbor graph.
func buildVertexAdjacency(cells []*model.Cell) map[*model.Cell][]*model.Cell {
	owners := map[geom.PointID][]*model.Cell{}
	for _, c := range cells {
		for _, id := range c.Shape.Points {
			owners[id] = append(owners[id], c)
		}
	}
	out := map[*model.Cell][]*model.Cell{}
	seen := map[[2]*model.Cell]bool{}
	for _, group := range owners {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				a, b := group[i], group[j]
				if a == b {
					continue
				}
				key := [2]*model.Cell{a, b}
				if seen[key] {
					continue
				}
				seen[key] = true
				out[a] = append(out[a], b)
				out[b] = append(out[b], a)
			}
		}
	}
	return out
}

// fractalNoise is a six-octave value-noise approximation: deterministic
// in its inputs (x, y), not in the Rng, so coast edges stay continuous
// across neighboring cells instead of jittering independently.
func fractalNoise(x, y float64, octaves int) float64 {
	total, amplitude, frequency, norm := 0.0, 1.0, 1.0, 0.0
	for o := 0; o < octaves; o++ {
		total += amplitude * valueNoise(x*frequency, y*frequency)
		norm += amplitude
		amplitude *= 0.5
		frequency *= 2
	}
	return total / norm
}

// valueNoise is a hashed-lattice value noise with bilinear interpolation.
func valueNoise(x, y float64) float64 {
	x0, y0 := math.Floor(x), math.Floor(y)
	fx, fy := x-x0, y-y0
	h := func(ix, iy float64) float64 {
		n := math.Sin(ix*127.1+iy*311.7) * 43758.5453
		return 2*(n-math.Floor(n)) - 1
	}
	v00, v10 := h(x0, y0), h(x0+1, y0)
	v01, v11 := h(x0, y0+1), h(x0+1, y0+1)
	sx := fx * fx * (3 - 2*fx)
	sy := fy * fy * (3 - 2*fy)
	top := v00 + sx*(v10-v00)
	bot := v01 + sx*(v11-v01)
	return top + sy*(bot-top)
}
