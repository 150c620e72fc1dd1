// Package towngen turns (nCells, seed, feature flags) into a complete
// medieval town plan: Voronoi districts over a shared-vertex topology,
// a curtain wall with gates and towers, an A*-routed street network,
// ward assignment and recursively-bisected building footprints.
//
// Build composes eight stages in fixed order - tessellation, topology,
// fortification, street routing, canal carving, edge classification,
// ward assignment, block generation - each mutating the one City in
// place. A seeded run is a pure function of its inputs.
package towngen

import (
	"github.com/pkg/errors"

	"github.com/townforge/towngen/internal/blocks"
	"github.com/townforge/towngen/internal/classify"
	"github.com/townforge/towngen/internal/emit"
	"github.com/townforge/towngen/internal/fortify"
	"github.com/townforge/towngen/internal/geom"
	"github.com/townforge/towngen/internal/model"
	"github.com/townforge/towngen/internal/rng"
	"github.com/townforge/towngen/internal/streets"
	"github.com/townforge/towngen/internal/topology"
	"github.com/townforge/towngen/internal/townlog"
	"github.com/townforge/towngen/internal/voronoi"
	"github.com/townforge/towngen/internal/wards"
)

// canalWidth is the carved river's nominal width.
const canalWidth = 3.0

// Town is one built result: the mutable City model plus the flattened
// Output the serializer consumes, and the seed actually used (echoed
// by the CLI for reproducibility).
type Town struct {
	City   *model.City
	Output *emit.Output
	Config GenConfig
	Seed   int64
}

// Build runs the whole pipeline. All fatal conditions return wrapped
// errors identifying the failing stage; recoverable degeneracies are
// logged through log and skipped.
func Build(cfg GenConfig, log *townlog.Logger) (*Town, error) {
	if log == nil {
		log = townlog.Default()
	}

	n := cfg.cellCount()
	if n <= 3 {
		return nil, ErrInvalidCellCount
	}
	if n > 200 {
		return nil, errors.Errorf("towngen: cells must be <= 200, got %d", n)
	}

	r := rng.New(cfg.Seed)
	seed := r.Seed()
	arena := geom.NewArena()

	res, err := voronoi.Tessellate(arena, r, voronoi.Config{
		NCells: n,
		Plaza:  cfg.Plaza,
		Coast:  voronoi.Coast(cfg.Coast),
	})
	if err != nil {
		if err == voronoi.ErrUnderflow {
			return nil, errors.Wrap(ErrVoronoiUnderflow, "tessellate")
		}
		return nil, errors.Wrap(err, "tessellate")
	}

	city := &model.City{
		Arena:  arena,
		Cells:  res.Cells,
		Center: res.Center,
		Radius: res.Radius,
	}
	markInnerCity(city, n)

	topology.Build(city, cfg.Fortification.JunctionEpsilon)
	city.Water = waterPolygon(city)

	var castleCell *model.Cell
	if cfg.Citadel {
		castleCell = pickCastleCell(city, cfg.Plaza)
		if castleCell != nil {
			citadel, err := fortify.Build(city, []*model.Cell{castleCell}, r, fortify.Options{Kind: "citadel"})
			if err == fortify.ErrNoGates {
				err = ErrNoGates
			}
			if err != nil {
				return nil, errors.Wrap(err, "fortify citadel")
			}
			city.Citadel = citadel
		}
	}

	walled := city.CellsWithin(func(c *model.Cell) bool { return c.WithinCity })
	if len(walled) == 0 {
		return nil, errors.Wrap(ErrVoronoiUnderflow, "no inner cells survived")
	}

	border, err := fortify.Build(city, walled, r, fortify.Options{Kind: "border"})
	if err == fortify.ErrNoGates {
		err = ErrNoGates
	}
	if err != nil {
		return nil, errors.Wrap(err, "fortify border")
	}
	city.Border = border

	if cfg.wallsNeeded(n) {
		reserved := map[geom.PointID]bool{}
		if city.Citadel != nil {
			for _, id := range city.Citadel.Shape.Points {
				reserved[id] = true
			}
		}
		wall, err := fortify.Build(city, walled, r, fortify.Options{
			Kind:     "wall",
			Smooth:   true,
			Reserved: reserved,
			Citadel:  city.Citadel,
		})
		if err == fortify.ErrNoGates {
			err = ErrNoGates
		}
		if err != nil {
			return nil, errors.Wrap(err, "fortify wall")
		}
		city.Wall = wall
		for _, c := range walled {
			c.WithinWalls = true
		}
	}

	streets.Route(city)

	hasWater := city.Water != nil
	if res.River && hasWater {
		if canal := classify.BuildCanal(city, canalWidth); canal != nil {
			city.Canals = append(city.Canals, canal)
		} else {
			log.Warn("canal: river requested but no viable course found")
		}
	}

	classify.Classify(city)

	wards.Assign(city, r, wards.Options{
		Citadel:    cfg.Citadel,
		Plaza:      cfg.Plaza,
		HasCoast:   hasWater,
		HasRiver:   len(city.Canals) > 0,
		WantsSlums: cfg.Slums,
		NCells:     n,
		Rules: wards.Rules{
			ParkProbabilityNearGate: cfg.Wards.ParkProbabilityNearGate,
			ExtraParkDivisor:        cfg.Wards.ExtraParkDivisor,
			SlumAreaFactor:          cfg.Wards.SlumAreaFactor,
		},
		CastleCell: castleCell,
	})

	if cfg.Plaza && !hasMarket(city) {
		return nil, errors.Wrap(ErrNoPlaza, "wards")
	}

	wards.BuildGeometry(city, r)

	blocks.Group(city, r)
	blocks.BuildAll(city, r, log)

	return &Town{
		City:   city,
		Output: emit.Collect(city),
		Config: cfg,
		Seed:   seed,
	}, nil
}

// markInnerCity flags the n cells nearest the center (the tessellator
// returns cells distance-sorted) as the inner city; water never
// qualifies, preserving waterbody => !withinCity.
func markInnerCity(city *model.City, n int) {
	marked := 0
	for _, c := range city.Cells {
		if marked >= n {
			break
		}
		if c.Waterbody {
			continue
		}
		c.WithinCity = true
		marked++
	}
}

// pickCastleCell returns the first inner cell, skipping the central
// cell when a plaza is requested (the market claims that one).
func pickCastleCell(city *model.City, plaza bool) *model.Cell {
	var central *model.Cell
	if plaza {
		bestD := -1.0
		for _, c := range city.Cells {
			if c.Waterbody {
				continue
			}
			d := c.Seed.DistSq(city.Center)
			if central == nil || d < bestD {
				central = c
				bestD = d
			}
		}
	}
	for _, c := range city.Cells {
		if !c.WithinCity || c.Waterbody || c == central {
			continue
		}
		return c
	}
	return nil
}

// waterPolygon merges the water cells into one polygon via the shared
// circumference walk, or nil when the town is landlocked.
func waterPolygon(city *model.City) *geom.Polygon {
	water := city.CellsWithin(func(c *model.Cell) bool { return c.Waterbody })
	if len(water) == 0 {
		return nil
	}
	ring := topology.Circumference(water)
	if len(ring) < 3 {
		return nil
	}
	return geom.NewPolygon(city.Arena, ring)
}

func hasMarket(city *model.City) bool {
	for _, c := range city.Cells {
		if c.Ward != nil && c.Ward.Kind == model.WardMarket {
			return true
		}
	}
	return false
}
