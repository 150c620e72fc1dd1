// Package voronoi implements the tessellation stage: spiral seeding, optional plaza override, boundary seeds, Lloyd
// relaxation, bounded Voronoi construction and coastline carving.
//
// The half-plane cell construction (VoronoiCells/Repair, in impl.go)
// follows unixpickle/voronoi-glass. Tessellate adds the spiral/plaza/
// boundary seeding, Lloyd relaxation and coastline carving, then
// lowers the result into the shared-vertex geom.Arena instead of
// leaving it as a bag of raw model2d.Coord pairs.
package voronoi

import (
	"fmt"
	"math"

	"github.com/unixpickle/model3d/model2d"

	"github.com/townforge/towngen/internal/geom"
	"github.com/townforge/towngen/internal/model"
	"github.com/townforge/towngen/internal/rng"
)

// ErrUnderflow is fatal: even after bounded spiral growth the
// tessellator could not produce a usable set of regions.
var ErrUnderflow = fmt.Errorf("voronoi: unable to produce enough usable regions")

// Coast selects whether Tessellate carves a coastline.
type Coast int

const (
	CoastRandom Coast = iota
	CoastForce
	CoastForbid
)

// Config is Tessellate's input, a subset of GenConfig translated by
// the caller so this package stays decoupled from the root config
// type (it lives below towngen in the import graph).
type Config struct {
	NCells int
	Plaza  bool
	Coast  Coast
}

// Result is Tessellate's output: the populated cell list plus the
// town-scale constants later stages need (center, spiral radius b,
// and - when carved - the water polygon and a river flag).
type Result struct {
	Cells  []*model.Cell
	Center geom.Point
	Radius float64
	Water  *geom.Polygon
	River  bool
}

// maxSpiralGrowthRounds bounds the spiral-seed retry loop.
const maxSpiralGrowthRounds = 6

// Tessellate runs the full seeding-to-regions pipeline plus optional
// coast carving, returning cells ready for topology.Build to link.
func Tessellate(arena *geom.Arena, r *rng.Rng, cfg Config) (*Result, error) {
	n := cfg.NCells
	if n <= 0 {
		n = 15
	}

	var result *Result
	var err error
	for round := 0; round < maxSpiralGrowthRounds; round++ {
		result, err = tessellateOnce(arena, r, n, cfg)
		if err == nil && len(result.Cells) >= n {
			return result, nil
		}
		n = n + n/2 + 1
	}
	if result != nil && len(result.Cells) > 0 {
		return result, nil
	}
	return nil, ErrUnderflow
}

func tessellateOnce(arena *geom.Arena, r *rng.Rng, n int, cfg Config) (*Result, error) {
	spiralN := 8 * n
	alpha := r.Angle()

	seeds := make([]model2d.Coord, spiralN)
	maxRadius := 0.0
	for i := 0; i < spiralN; i++ {
		theta := alpha + math.Sqrt(float64(i))*5
		radius := 0.0
		if i != 0 {
			radius = 10 + float64(i)*(2+r.Float())
		}
		seeds[i] = model2d.Coord{X: radius * math.Cos(theta), Y: radius * math.Sin(theta)}
		if radius > maxRadius {
			maxRadius = radius
		}
	}

	if cfg.Plaza && spiralN >= 4 {
		r.Save()
		plusSeeds := plazaSeeds(r)
		r.Restore()
		copy(seeds[1:5], plusSeeds)
	}

	b := maxRadius
	if b <= 0 {
		b = 10
	}

	boundary := make([]model2d.Coord, 6)
	for i := 0; i < 6; i++ {
		theta := float64(i) * math.Pi / 3
		boundary[i] = model2d.Coord{X: 2 * b * math.Cos(theta), Y: 2 * b * math.Sin(theta)}
	}

	minX, minY := math.Inf(1), math.Inf(1)
	for _, s := range seeds {
		minX, minY = math.Min(minX, s.X), math.Min(minY, s.Y)
	}
	for _, s := range boundary {
		minX, minY = math.Min(minX, s.X), math.Min(minY, s.Y)
	}
	shift := model2d.Coord{X: -minX + 2 * b, Y: -minY + 2 * b}
	for i := range seeds {
		seeds[i] = seeds[i].Add(shift)
	}
	for i := range boundary {
		boundary[i] = boundary[i].Add(shift)
	}
	center := model2d.Coord{X: 0, Y: 0}.Add(shift)

	lloydRelax(seeds, boundary, 3)

	all := append(append([]model2d.Coord{}, seeds...), boundary...)
	lo := model2d.Coord{X: -4 * b, Y: -4 * b}.Add(shift)
	hi := model2d.Coord{X: 4 * b, Y: 4 * b}.Add(shift)
	diagram := VoronoiCells(lo, hi, all)
	diagram.Repair(1e-8)

	pointOf := map[model2d.Coord]geom.PointID{}
	lookup := func(c model2d.Coord) geom.PointID {
		id, ok := pointOf[c]
		if ok {
			return id
		}
		id = arena.Add(geom.Point{X: c.X, Y: c.Y})
		pointOf[c] = id
		return id
	}

	ranked := make([]rankedCell, 0, len(seeds))
	for i := 0; i < len(seeds); i++ {
		vcell := diagram[i]
		if len(vcell.Edges) < 3 {
			continue
		}
		ids := make([]geom.PointID, 0, len(vcell.Edges))
		for _, e := range vcell.Edges {
			ids = append(ids, lookup(e[0]))
		}
		shape := geom.NewPolygon(arena, ids)
		seedPt := geom.Point{X: vcell.Center.X, Y: vcell.Center.Y}
		ranked = append(ranked, rankedCell{cell: model.NewCell(i, shape, seedPt), dist: seedPt.Dist(geom.Point{X: center.X, Y: center.Y})})
	}

	sortByDistance(ranked)

	cut := 1.5 * b
	cells := make([]*model.Cell, 0, len(ranked))
	for i, rk := range ranked {
		if rk.dist > cut {
			continue
		}
		rk.cell.ID = i
		cells = append(cells, rk.cell)
	}

	result := &Result{
		Cells:  cells,
		Center: geom.Point{X: center.X, Y: center.Y},
		Radius: b,
	}

	carveCoast(arena, r, result, cfg.Coast)
	return result, nil
}

// rankedCell pairs a built Cell with its distance to the town center,
// for the sort+cutoff step that discards far regions.
type rankedCell struct {
	cell *model.Cell
	dist float64
}

func sortByDistance(s []rankedCell) {
	for i := 1; i < len(s); i++ {
		j := i
		for j > 0 && s[j].dist < s[j-1].dist {
			s[j], s[j-1] = s[j-1], s[j]
			j--
		}
	}
}

// plazaSeeds builds the plus-pattern override for seeds 1-4: radii
// f in [8,16] and h in [f, 2f] around the origin, so the central
// region comes out quadrilateral.
func plazaSeeds(r *rng.Rng) []model2d.Coord {
	f := 8 + r.Float()*8
	h := f + r.Float()*f
	return []model2d.Coord{
		{X: 0, Y: -f},
		{X: h, Y: 0},
		{X: 0, Y: f},
		{X: -h, Y: 0},
	}
}

// lloydRelax runs rounds of Lloyd relaxation on spiralSeeds only,
// moving each seed to its cell's centroid. boundary seeds participate
// in the diagram but are never moved.
func lloydRelax(spiralSeeds, boundary []model2d.Coord, rounds int) {
	for round := 0; round < rounds; round++ {
		all := append(append([]model2d.Coord{}, spiralSeeds...), boundary...)
		diagram := VoronoiCells(
			model2d.Coord{X: -1e6, Y: -1e6}, model2d.Coord{X: 1e6, Y: 1e6}, all,
		)
		diagram.Repair(1e-8)
		for i := range spiralSeeds {
			c := diagram[i]
			if len(c.Edges) < 3 {
				continue
			}
			spiralSeeds[i] = polygonCentroid(c.Edges)
		}
	}
}

func polygonCentroid(edges []*model2d.Segment) model2d.Coord {
	var area, cx, cy float64
	for _, e := range edges {
		a, b := e[0], e[1]
		cross := a.X*b.Y - b.X*a.Y
		area += cross
		cx += (a.X + b.X) * cross
		cy += (a.Y + b.Y) * cross
	}
	if area == 0 {
		var sx, sy float64
		for _, e := range edges {
			sx += e[0].X
			sy += e[0].Y
		}
		n := float64(len(edges))
		return model2d.Coord{X: sx / n, Y: sy / n}
	}
	f := 1 / (3 * area)
	return model2d.Coord{X: cx * f, Y: cy * f}
}
