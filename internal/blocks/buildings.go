package blocks

import (
	"math"

	"github.com/townforge/towngen/internal/geom"
	"github.com/townforge/towngen/internal/model"
	"github.com/townforge/towngen/internal/rng"
)

// maxGridDim caps the building grid at 8x8 regardless of lot size.
const maxGridDim = 8

// extendProb is the chance growth continues once the region already
// touches all four grid boundaries.
const extendProb = 0.5

// buildingGrid is one lot's local growth lattice: jittered grid-line
// positions along each OBB axis plus the filled-cell mask.
type buildingGrid struct {
	cols, rows int
	xs, ys     []float64 // cols+1 / rows+1 line positions in [0, W] / [0, H]
	filled     [][]bool  // [row][col]
}

// growBuilding grows an L/T/U-ish connected footprint on the lot's
// rect and collapses it into a single outline polygon. Returns nil for
// lots too small to host even one grid cell.
func growBuilding(arena *geom.Arena, rect geom.OBB, params model.AlleyParams, r *rng.Rng) *geom.Polygon {
	threshold := params.MinSq / 4 * params.ShapeFactor
	cellSize := math.Sqrt(threshold)
	if cellSize < 1e-6 {
		return nil
	}

	w, h := rect.HalfW*2, rect.HalfH*2
	cols := clampDim(int(w / cellSize))
	rows := clampDim(int(h / cellSize))

	grid := &buildingGrid{cols: cols, rows: rows}
	grid.xs = gridLines(cols, w, r)
	grid.ys = gridLines(rows, h, r)
	grid.filled = make([][]bool, rows)
	for i := range grid.filled {
		grid.filled[i] = make([]bool, cols)
	}

	switch pick := r.Float(); {
	case pick < 0.4:
		growFrontPlan(grid, r)
	case pick < 0.6:
		growDefaultPlan(grid, r)
		mirrorHorizontal(grid)
	default:
		growDefaultPlan(grid, r)
	}

	outline := collapseOutline(grid)
	if len(outline) < 3 {
		return nil
	}

	ax := geom.Point{X: math.Cos(rect.Angle), Y: math.Sin(rect.Angle)}
	ay := ax.Rotate90()
	ids := make([]geom.PointID, len(outline))
	for i, c := range outline {
		local := geom.Point{X: grid.xs[c[0]] - rect.HalfW, Y: grid.ys[c[1]] - rect.HalfH}
		world := rect.Center.Add(ax.Scale(local.X)).Add(ay.Scale(local.Y))
		ids[i] = arena.Add(world)
	}
	poly := geom.NewPolygon(arena, ids)
	dropCollinear(poly)
	if poly.Len() < 3 {
		return nil
	}
	return poly
}

func clampDim(n int) int {
	if n < 1 {
		return 1
	}
	if n > maxGridDim {
		return maxGridDim
	}
	return n
}

// gridLines returns n+1 line positions spanning [0, extent], interior
// lines jittered by a bell sample of up to half the cell pitch.
func gridLines(n int, extent float64, r *rng.Rng) []float64 {
	lines := make([]float64, n+1)
	pitch := extent / float64(n)
	for i := 0; i <= n; i++ {
		lines[i] = float64(i) * pitch
		if i > 0 && i < n {
			lines[i] += (r.N3() - 0.5) * pitch
		}
	}
	return lines
}

// growDefaultPlan seeds a random cell, grows until the region touches
// all four boundaries, then keeps extending with probability
// extendProb per step.
func growDefaultPlan(g *buildingGrid, r *rng.Rng) {
	g.filled[r.Int(0, g.rows)][r.Int(0, g.cols)] = true
	for steps := 0; steps < g.rows*g.cols*4; steps++ {
		if g.touchesAllBoundaries() && !r.Bool(extendProb) {
			return
		}
		if !g.fillRandomAdjacent(r) {
			return
		}
	}
}

// growFrontPlan prefills the entire front row, fills randomly until
// the back row is reached, then continues 50/50 per step.
func growFrontPlan(g *buildingGrid, r *rng.Rng) {
	for c := 0; c < g.cols; c++ {
		g.filled[0][c] = true
	}
	for steps := 0; steps < g.rows*g.cols*4; steps++ {
		if g.touchesBackRow() && !r.Bool(0.5) {
			return
		}
		if !g.fillRandomAdjacent(r) {
			return
		}
	}
}

// mirrorHorizontal ORs the mask with its left-right reflection,
// turning a default-plan footprint symmetric.
func mirrorHorizontal(g *buildingGrid) {
	for row := 0; row < g.rows; row++ {
		for col := 0; col < g.cols; col++ {
			if g.filled[row][col] {
				g.filled[row][g.cols-1-col] = true
			}
		}
	}
}

func (g *buildingGrid) touchesAllBoundaries() bool {
	top, bottom, left, right := false, false, false, false
	for row := 0; row < g.rows; row++ {
		for col := 0; col < g.cols; col++ {
			if !g.filled[row][col] {
				continue
			}
			if row == 0 {
				top = true
			}
			if row == g.rows-1 {
				bottom = true
			}
			if col == 0 {
				left = true
			}
			if col == g.cols-1 {
				right = true
			}
		}
	}
	return top && bottom && left && right
}

func (g *buildingGrid) touchesBackRow() bool {
	for col := 0; col < g.cols; col++ {
		if g.filled[g.rows-1][col] {
			return true
		}
	}
	return false
}

// fillRandomAdjacent fills one random empty cell adjacent to the
// region, returning false when the grid is saturated.
func (g *buildingGrid) fillRandomAdjacent(r *rng.Rng) bool {
	type cell struct{ row, col int }
	candidates := []cell{}
	for row := 0; row < g.rows; row++ {
		for col := 0; col < g.cols; col++ {
			if g.filled[row][col] || !g.adjacentFilled(row, col) {
				continue
			}
			candidates = append(candidates, cell{row, col})
		}
	}
	if len(candidates) == 0 {
		return false
	}
	pick := candidates[r.Int(0, len(candidates))]
	g.filled[pick.row][pick.col] = true
	return true
}

func (g *buildingGrid) adjacentFilled(row, col int) bool {
	if row > 0 && g.filled[row-1][col] {
		return true
	}
	if row < g.rows-1 && g.filled[row+1][col] {
		return true
	}
	if col > 0 && g.filled[row][col-1] {
		return true
	}
	if col < g.cols-1 && g.filled[row][col+1] {
		return true
	}
	return false
}

// corner is a lattice corner (col, row); gridEdge a directed edge
// between two corners.
type corner [2]int

type gridEdge struct{ a, b corner }

func sortEdges(edges []gridEdge) {
	less := func(x, y gridEdge) bool {
		if x.a != y.a {
			return x.a[1] < y.a[1] || (x.a[1] == y.a[1] && x.a[0] < y.a[0])
		}
		return x.b[1] < y.b[1] || (x.b[1] == y.b[1] && x.b[0] < y.b[0])
	}
	for i := 1; i < len(edges); i++ {
		j := i
		for j > 0 && less(edges[j], edges[j-1]) {
			edges[j], edges[j-1] = edges[j-1], edges[j]
			j--
		}
	}
}

// collapseOutline cancels each filled cell's directed boundary edges
// against their reverses and chains the survivors into the region's
// outline, expressed as lattice corner indices (col, row). Corners
// where the outline runs straight through are dropped.
func collapseOutline(g *buildingGrid) [][2]int {
	count := map[gridEdge]int{}
	addEdge := func(a, b corner) {
		rev := gridEdge{b, a}
		if count[rev] > 0 {
			count[rev]--
			if count[rev] == 0 {
				delete(count, rev)
			}
			return
		}
		count[gridEdge{a, b}]++
	}

	for row := 0; row < g.rows; row++ {
		for col := 0; col < g.cols; col++ {
			if !g.filled[row][col] {
				continue
			}
			c00 := corner{col, row}
			c10 := corner{col + 1, row}
			c11 := corner{col + 1, row + 1}
			c01 := corner{col, row + 1}
			addEdge(c00, c10)
			addEdge(c10, c11)
			addEdge(c11, c01)
			addEdge(c01, c00)
		}
	}

	survivors := make([]gridEdge, 0, len(count))
	for e := range count {
		survivors = append(survivors, e)
	}
	// Sorted so pinch corners (two outgoing survivors after a mirror
	// OR) resolve identically on every run.
	sortEdges(survivors)

	next := map[corner]corner{}
	start := corner{math.MaxInt32, math.MaxInt32}
	for _, e := range survivors {
		if _, taken := next[e.a]; !taken {
			next[e.a] = e.b
		}
		if e.a[1] < start[1] || (e.a[1] == start[1] && e.a[0] < start[0]) {
			start = e.a
		}
	}
	if len(next) == 0 {
		return nil
	}

	out := [][2]int{{start[0], start[1]}}
	cur := start
	for {
		n, ok := next[cur]
		if !ok || n == start {
			break
		}
		out = append(out, [2]int{n[0], n[1]})
		cur = n
		if len(out) > len(next) {
			break
		}
	}
	corners := make([][2]int, 0, len(out))
	m := len(out)
	for i := 0; i < m; i++ {
		p, c, nx := out[(i-1+m)%m], out[i], out[(i+1)%m]
		d1x, d1y := c[0]-p[0], c[1]-p[1]
		d2x, d2y := nx[0]-c[0], nx[1]-c[1]
		if d1x*d2y-d1y*d2x == 0 && d1x*d2x+d1y*d2y > 0 {
			continue
		}
		corners = append(corners, c)
	}
	return corners
}

// dropCollinear removes vertices whose incident edges are nearly
// parallel (normalized dot > 0.999).
func dropCollinear(p *geom.Polygon) {
	for i := 0; i < p.Len() && p.Len() > 3; {
		prev, cur, next := p.At(i-1), p.At(i), p.At(i+1)
		d1 := cur.Sub(prev).Norm()
		d2 := next.Sub(cur).Norm()
		if d1.Dot(d2) > 0.999 {
			p.RemoveAt(i)
			continue
		}
		i++
	}
}
