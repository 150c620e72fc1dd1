// Package wards assigns functional classifications to cells:
// castle/market/cathedral/park/harbour/alley/farm/slum placement
// rules, applied in order while iterating cells sorted by distance to
// the town center.
package wards

import (
	"math"
	"sort"

	"github.com/townforge/towngen/internal/geom"
	"github.com/townforge/towngen/internal/model"
	"github.com/townforge/towngen/internal/rng"
)

// Rules parameterizes the assignment pass - mirrors the root
// package's GenConfig.Wards field (kept decoupled here to avoid an
// import cycle).
type Rules struct {
	ParkProbabilityNearGate float64
	ExtraParkDivisor        int
	SlumAreaFactor          float64
}

// DefaultRules returns the stock placement constants.
func DefaultRules() Rules {
	return Rules{ParkProbabilityNearGate: 0.2, ExtraParkDivisor: 20, SlumAreaFactor: 0.5}
}

// Options bundles the feature flags ward assignment needs from the
// build configuration.
type Options struct {
	Citadel    bool
	Plaza      bool
	HasCoast   bool
	HasRiver   bool
	WantsSlums bool
	Rules      Rules

	// NCells is the requested inner cell count. The harbour quota,
	// extra-park count and slum budget are all derived from it - not
	// from the (2-4x larger) number of surviving cells, which includes
	// everything out to the radius cutoff. Zero falls back to the
	// surviving count.
	NCells int

	// CastleCell is the cell the build pipeline already wrapped the
	// citadel wall around (fortification runs before ward assignment).
	// When set, the castle rule uses it instead of re-deriving the
	// first inner cell.
	CastleCell *model.Cell
}

// Assign runs the placement rule list in order over city.Cells
// sorted by distance to the town center.
func Assign(city *model.City, r *rng.Rng, opts Options) {
	ordered := append([]*model.Cell{}, city.Cells...)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Seed.DistSq(city.Center) < ordered[j].Seed.DistSq(city.Center)
	})

	n := opts.NCells
	if n <= 0 {
		n = len(ordered)
	}

	if opts.Citadel {
		if opts.CastleCell != nil {
			setWard(opts.CastleCell, model.WardCastle)
		} else {
			central := nearestToCenter(ordered, city.Center)
			for _, c := range ordered {
				if !c.WithinCity || c.Waterbody || c.Ward != nil {
					continue
				}
				if opts.Plaza && c == central {
					continue
				}
				setWard(c, model.WardCastle)
				break
			}
		}
	}

	if opts.Plaza {
		plaza := nearestToCenter(ordered, city.Center)
		if plaza != nil && plaza.Ward == nil {
			setWard(plaza, model.WardMarket)
		}
	}

	assignCathedral(ordered, city.Center)

	assignParks(city, ordered, r, opts, n)

	maxDocks := 0
	if opts.HasCoast {
		maxDocks = int(math.Sqrt(float64(n)/2)) + boolInt(opts.HasRiver)*2
	}
	assignHarbours(ordered, &maxDocks)

	assignAlleys(ordered)

	assignFarms(ordered, city.Center, r)

	if opts.WantsSlums {
		assignSlums(ordered, r, opts.Rules.SlumAreaFactor, city.Center, n)
	}
}

func setWard(c *model.Cell, kind model.WardKind) {
	c.Ward = &model.Ward{Kind: kind, Cell: c}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nearestToCenter(cells []*model.Cell, center geom.Point) *model.Cell {
	var best *model.Cell
	bestD := math.Inf(1)
	for _, c := range cells {
		if c.Waterbody {
			continue
		}
		d := c.Seed.DistSq(center)
		if d < bestD {
			bestD = d
			best = c
		}
	}
	return best
}

func assignCathedral(ordered []*model.Cell, center geom.Point) {
	var best *model.Cell
	bestD := math.Inf(1)
	for _, c := range ordered {
		if c.Ward != nil || !c.WithinCity || c.Waterbody {
			continue
		}
		d := c.Seed.DistSq(center)
		if d < bestD {
			bestD = d
			best = c
		}
	}
	if best != nil {
		setWard(best, model.WardCathedral)
	}
}

func assignParks(city *model.City, ordered []*model.Cell, r *rng.Rng, opts Options, nCells int) {
	if city.Citadel != nil && len(city.Citadel.Gates) > 0 && r.Bool(opts.Rules.ParkProbabilityNearGate) {
		gate := city.Citadel.Gates[0]
		for _, c := range ordered {
			if c.Ward != nil || c.Waterbody {
				continue
			}
			if c.Shape.IndexOf(gate) >= 0 {
				setWard(c, model.WardPark)
				break
			}
		}
	}

	extra := (nCells - 10) / opts.Rules.ExtraParkDivisor
	placed := 0
	for _, c := range ordered {
		if placed >= extra {
			break
		}
		if c.Ward != nil || !c.WithinCity || c.Waterbody {
			continue
		}
		if r.Bool(0.5) {
			setWard(c, model.WardPark)
			placed++
		}
	}
}

func assignHarbours(ordered []*model.Cell, maxDocks *int) {
	if *maxDocks <= 0 {
		return
	}
	for _, c := range ordered {
		if *maxDocks <= 0 {
			break
		}
		if c.Ward != nil || !c.WithinCity || c.Waterbody {
			continue
		}
		for _, nb := range c.Neighbors {
			if nb.Waterbody {
				setWard(c, model.WardHarbour)
				c.Landing = true
				*maxDocks--
				break
			}
		}
	}
}

func assignAlleys(ordered []*model.Cell) {
	skip := false
	for _, c := range ordered {
		if c.Ward != nil || !c.WithinCity || c.Waterbody {
			continue
		}
		skip = !skip
		if skip {
			continue
		}
		setWard(c, model.WardAlleys)
	}
}

// assignFarms gates outer cells on a two-frequency sine-wave radial
// pattern: random amplitudes and phases make the farmland reach
// unevenly around the town.
func assignFarms(ordered []*model.Cell, center geom.Point, r *rng.Rng) {
	a := 0.1 + r.Float()*0.3
	b := 0.1 + r.Float()*0.3
	c := r.Angle()
	d := r.Angle()

	rMax := 0.0
	for _, cell := range ordered {
		if cell.WithinCity {
			continue
		}
		dist := cell.Seed.Dist(center)
		if dist > rMax {
			rMax = dist
		}
	}
	if rMax == 0 {
		return
	}

	for _, cell := range ordered {
		if cell.Ward != nil || cell.WithinCity || cell.Waterbody {
			continue
		}
		theta := math.Atan2(cell.Seed.Y-center.Y, cell.Seed.X-center.X)
		limit := (a*math.Sin(theta+c) + b*math.Sin(2*theta+d) + 1) * rMax
		if cell.Seed.Dist(center) < limit {
			setWard(cell, model.WardFarm)
		}
	}
}

// assignSlums scores every remaining outer non-farm non-horizon cell
// with >=2 city neighbors as cityNeighbors^2/distanceScore, then
// weighted-samples without replacement until the area budget
// floor(nCells*(1+U^3)*0.5) is exhausted.
func assignSlums(ordered []*model.Cell, r *rng.Rng, areaFactor float64, center geom.Point, nCells int) {
	type scored struct {
		cell  *model.Cell
		score float64
	}
	candidates := []scored{}
	for _, c := range ordered {
		if c.Ward != nil || c.WithinCity || c.Waterbody {
			continue
		}
		onHorizon := false
		for i := 0; i < c.Shape.Len(); i++ {
			if c.EdgeType(i) == model.EdgeHorizon {
				onHorizon = true
				break
			}
		}
		if onHorizon {
			continue
		}
		cityNeighbors := 0
		for _, nb := range c.Neighbors {
			if nb.WithinCity {
				cityNeighbors++
			}
		}
		if cityNeighbors < 2 {
			continue
		}
		distScore := c.Seed.Dist(center) + 1
		score := float64(cityNeighbors*cityNeighbors) / distScore
		candidates = append(candidates, scored{cell: c, score: score})
	}

	budget := int(float64(nCells) * (1 + math.Pow(r.Float(), 3)) * areaFactor)
	for placed := 0; placed < budget && len(candidates) > 0; placed++ {
		total := 0.0
		for _, cand := range candidates {
			total += cand.score
		}
		pick := r.Float() * total
		idx := len(candidates) - 1
		for i, cand := range candidates {
			pick -= cand.score
			if pick <= 0 {
				idx = i
				break
			}
		}
		setWard(candidates[idx].cell, model.WardSlum)
		candidates = append(candidates[:idx], candidates[idx+1:]...)
	}
}
