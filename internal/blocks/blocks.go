package blocks

import (
	"math"

	"github.com/townforge/towngen/internal/geom"
	"github.com/townforge/towngen/internal/model"
	"github.com/townforge/towngen/internal/rng"
	"github.com/townforge/towngen/internal/townlog"
)

// perimeterEps is the point-to-segment tolerance for deciding whether
// a lot vertex lies on its block's border.
const perimeterEps = 0.25

// BuildAll runs the whole block engine over every ward-group: sample
// AlleyParams, shrink the border by per-edge insets, bisect into
// blocks, subdivide into lots, grow buildings, spawn trees, and attach
// the resulting geometry to the group's core ward only. Degenerate
// units are skipped with a warning, never aborted on.
func BuildAll(city *model.City, r *rng.Rng, log *townlog.Logger) {
	for _, g := range city.Groups {
		Parameterize(g, r)
		buildGroup(city, g, r, log)
	}
}

func buildGroup(city *model.City, g *model.WardGroup, r *rng.Rng, log *townlog.Logger) {
	if g.Border == nil || g.Border.Len() < 3 {
		log.Warn("blocks: group of %d %s cells has a degenerate border, skipping", len(g.Cells), g.Kind)
		return
	}

	shrunk := g.Border.ShrinkEdges(borderInsets(g))
	if shrunk == nil || shrunk.Len() < 3 {
		log.Warn("blocks: %s group border collapsed under inset, skipping", g.Kind)
		return
	}

	bi := &Bisector{
		Arena:    city.Arena,
		Rng:      r,
		MinArea:  g.Params.MinSq,
		Variance: g.Params.SizeChaos,
		MinFront: g.Params.MinFront,
	}
	pieces := bi.Partition(shrunk)
	g.Cuts = bi.Cuts

	for _, piece := range pieces {
		block := buildBlock(city.Arena, g, piece, r, log)
		if block != nil {
			g.Blocks = append(g.Blocks, block)
		}
	}

	attachGeometry(g)
}

// borderInsets derives one inset per border edge from the edge's
// classification on the underlying cell, falling back to the group's
// sampled alley inset for unclassified edges.
func borderInsets(g *model.WardGroup) []float64 {
	n := g.Border.Len()
	insets := make([]float64, n)
	for i := 0; i < n; i++ {
		a := g.Border.Points[i]
		b := g.Border.Points[(i+1)%n]
		insets[i] = g.Params.Inset
		if t, ok := edgeTypeOf(g.Cells, a, b); ok && t != model.EdgeNone {
			insets[i] = t.EdgeInset()
		}
	}
	return insets
}

// edgeTypeOf finds the cell in the group owning directed edge (a,b)
// and returns that edge's classification.
func edgeTypeOf(cells []*model.Cell, a, b geom.PointID) (model.EdgeType, bool) {
	for _, c := range cells {
		n := c.Shape.Len()
		for i := 0; i < n; i++ {
			if c.Shape.Points[i] == a && c.Shape.Points[(i+1)%n] == b {
				return c.EdgeType(i), true
			}
		}
	}
	return model.EdgeNone, false
}

// buildBlock runs the per-block steps: frontage lots, LIRA
// rects, perimeter/courtyard filtering, building growth, front
// indentation and courtyard trees.
func buildBlock(arena *geom.Arena, g *model.WardGroup, shape *geom.Polygon, r *rng.Rng, log *townlog.Logger) *model.Block {
	if shape.Len() < 3 || shape.Area() < 1 {
		log.Warn("blocks: dropping degenerate block (%d vertices, area %.2f)", shape.Len(), shape.Area())
		return nil
	}
	block := &model.Block{Shape: shape, Centroid: shape.Centroid()}

	block.Lots = subdivideLots(arena, shape, g.Params.MinFront)
	if len(block.Lots) == 0 {
		return block
	}

	perimeter, courtyard := filterLots(shape, block.Lots)
	block.Courtyard = courtyard

	for _, lot := range perimeter {
		rect := lira(lot)
		if rect.HalfW < 0.5 || rect.HalfH < 0.5 {
			continue
		}
		block.Rects = append(block.Rects, rect)
		building := growBuilding(arena, rect, g.Params, r)
		if building == nil {
			continue
		}
		indentFront(arena, building, lot, block.Centroid, r)
		block.Buildings = append(block.Buildings, building)
	}

	spawnTrees(block, g, r)
	return block
}

// subdivideLots slices the block along its longest edge (the frontage)
// into n quadrilaterals by interpolating the frontage against the edge
// two positions around the ring.
func subdivideLots(arena *geom.Arena, shape *geom.Polygon, minFront float64) []*geom.Polygon {
	nv := shape.Len()
	front := 0
	frontLen := 0.0
	for i := 0; i < nv; i++ {
		l := shape.At(i).Dist(shape.At(i + 1))
		if l > frontLen {
			frontLen = l
			front = i
		}
	}
	if frontLen < 1e-6 {
		return nil
	}
	n := int(frontLen / minFront)
	if n < 2 {
		n = 2
	}

	back := (front + 2) % nv
	f0, f1 := shape.At(front), shape.At(front+1)
	b0, b1 := shape.At(back), shape.At(back+1)

	lots := make([]*geom.Polygon, 0, n)
	for k := 0; k < n; k++ {
		t0 := float64(k) / float64(n)
		t1 := float64(k+1) / float64(n)
		ids := []geom.PointID{
			arena.Add(f0.Lerp(f1, t0)),
			arena.Add(f0.Lerp(f1, t1)),
			arena.Add(b1.Lerp(b0, t1)),
			arena.Add(b1.Lerp(b0, t0)),
		}
		lot := geom.NewPolygon(arena, ids)
		if lot.Area() > 1e-6 {
			lots = append(lots, lot)
		}
	}
	return lots
}

// filterLots splits lots into perimeter lots (any vertex on the block
// border) and the courtyard (the rest).
func filterLots(block *geom.Polygon, lots []*geom.Polygon) (perimeter, courtyard []*geom.Polygon) {
	for _, lot := range lots {
		onBorder := false
		for i := 0; i < lot.Len() && !onBorder; i++ {
			v := lot.At(i)
			block.ForEdge(func(a, b geom.Point) {
				if pointSegmentDist(v, a, b) <= perimeterEps {
					onBorder = true
				}
			})
		}
		if onBorder {
			perimeter = append(perimeter, lot)
		} else {
			courtyard = append(courtyard, lot)
		}
	}
	return perimeter, courtyard
}

func pointSegmentDist(p, a, b geom.Point) float64 {
	ab := b.Sub(a)
	l2 := ab.DistSq(geom.Point{})
	if l2 == 0 {
		return p.Dist(a)
	}
	t := p.Sub(a).Dot(ab) / l2
	t = math.Max(0, math.Min(1, t))
	return p.Dist(a.Add(ab.Scale(t)))
}

// lira is the largest-inscribed-rectangle approximation: the lot's OBB
// shrunk 10% toward its centroid.
func lira(lot *geom.Polygon) geom.OBB {
	obb := lot.OrientedBoundingBox()
	obb.HalfW *= 0.9
	obb.HalfH *= 0.9
	return obb
}

// indentFront translates a perimeter building toward the block
// centroid by min(sqrt(lotArea)/3, 1.2)*U, pulling facades off the
// street line by an uneven amount.
func indentFront(arena *geom.Arena, building *geom.Polygon, lot *geom.Polygon, blockCentroid geom.Point, r *rng.Rng) {
	dir := blockCentroid.Sub(lot.Centroid()).Norm()
	dist := math.Min(math.Sqrt(lot.Area())/3, 1.2) * r.Float()
	off := dir.Scale(dist)
	for _, id := range building.Points {
		arena.Set(id, arena.Get(id).Add(off))
	}
}

// spawnTrees grid-samples each courtyard lot with density proportional
// to the group's greenery (a tenth of it for sprawl groups), keeping
// samples strictly inside.
func spawnTrees(block *model.Block, g *model.WardGroup, r *rng.Rng) {
	density := 0.05 * g.Params.Greenery
	if !g.Urban {
		density *= 0.1
	}
	if density <= 0 {
		return
	}
	step := 1 / math.Sqrt(density)

	for _, yard := range block.Courtyard {
		minX, minY, maxX, maxY := bounds(yard)
		for y := minY; y <= maxY; y += step {
			for x := minX; x <= maxX; x += step {
				pt := geom.Point{
					X: x + (r.Float()-0.5)*step*0.5,
					Y: y + (r.Float()-0.5)*step*0.5,
				}
				if yard.Contains(pt) {
					block.Trees = append(block.Trees, pt)
				}
			}
		}
	}
}

func bounds(p *geom.Polygon) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for i := 0; i < p.Len(); i++ {
		v := p.At(i)
		minX, maxX = math.Min(minX, v.X), math.Max(maxX, v.X)
		minY, maxY = math.Min(minY, v.Y), math.Max(maxY, v.Y)
	}
	return
}

// attachGeometry copies every block's buildings into the core cell's
// ward geometry. Non-core cells in the group keep empty geometry -
// the core is the group's single emitter.
func attachGeometry(g *model.WardGroup) {
	core := g.Core
	if core == nil || core.Ward == nil {
		return
	}
	for _, b := range g.Blocks {
		core.Ward.Geometry = append(core.Ward.Geometry, b.Buildings...)
	}
}
