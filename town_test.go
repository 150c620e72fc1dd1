package towngen

import (
	"fmt"
	"io"
	"testing"

	"github.com/townforge/towngen/internal/model"
	"github.com/townforge/towngen/internal/townlog"
)

func quietLog() *townlog.Logger {
	return townlog.New(io.Discard, townlog.LevelError)
}

func buildOrFatal(t *testing.T, cfg GenConfig) *Town {
	t.Helper()
	town, err := Build(cfg, quietLog())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	return town
}

func TestBuildRejectsTinyTowns(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NCells = 3
	if _, err := Build(cfg, quietLog()); err == nil {
		t.Fatalf("3 cells must be rejected")
	}
}

// A small landlocked town has no water, no defensive
// wall, no towers, but still gates and at least one street.
func TestSmallLandlockedTown(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NCells = 15
	cfg.Seed = 1
	cfg.Coast = CoastForbid

	town := buildOrFatal(t, cfg)

	for _, c := range town.City.Cells {
		if c.Waterbody {
			t.Fatalf("coast=forbid must produce no water cells")
		}
	}
	if town.City.Wall != nil {
		t.Fatalf("15 cells never need a defensive wall")
	}
	towers := 0
	for _, w := range town.Output.Walls {
		towers += len(w.Towers)
	}
	if towers != 0 {
		t.Fatalf("unwalled town has %d towers, want 0", towers)
	}
	if town.City.Border == nil || len(town.City.Border.Gates) == 0 {
		t.Fatalf("the border ring must carry at least one gate")
	}
	if len(town.City.Streets) == 0 {
		t.Fatalf("every gate routes a street to the plaza")
	}
}

// Two runs with identical parameters produce identical models.
func TestBuildDeterminism(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NCells = 20
	cfg.Seed = 77
	cfg.Coast = CoastForce
	cfg.Slums = true

	a := buildOrFatal(t, cfg)
	b := buildOrFatal(t, cfg)

	if len(a.City.Cells) != len(b.City.Cells) {
		t.Fatalf("cell counts differ: %d vs %d", len(a.City.Cells), len(b.City.Cells))
	}
	for i := range a.City.Cells {
		ca, cb := a.City.Cells[i], b.City.Cells[i]
		if ca.Waterbody != cb.Waterbody || ca.WithinCity != cb.WithinCity {
			t.Fatalf("cell %d flags differ between runs", i)
		}
		sa := fmt.Sprintf("%v", ca.Shape.Coords())
		sb := fmt.Sprintf("%v", cb.Shape.Coords())
		if sa != sb {
			t.Fatalf("cell %d geometry differs between runs", i)
		}
	}
	if fmt.Sprintf("%v", a.Output.Arteries) != fmt.Sprintf("%v", b.Output.Arteries) {
		t.Fatalf("arteries differ between runs")
	}
	if len(a.Output.Geometry) != len(b.Output.Geometry) {
		t.Fatalf("geometry counts differ: %d vs %d", len(a.Output.Geometry), len(b.Output.Geometry))
	}
}

// A plaza town assigns the market to the central cell.
func TestPlazaClaimsCentralCell(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NCells = 30
	cfg.Seed = 100
	cfg.Coast = CoastForbid
	cfg.Plaza = true

	town := buildOrFatal(t, cfg)

	var market *model.Cell
	for _, c := range town.City.Cells {
		if c.Ward != nil && c.Ward.Kind == model.WardMarket {
			if market != nil {
				t.Fatalf("two market cells")
			}
			market = c
		}
	}
	if market == nil {
		t.Fatalf("plaza requested but no market cell assigned")
	}

	bestD := -1.0
	var nearest *model.Cell
	for _, c := range town.City.Cells {
		if c.Waterbody {
			continue
		}
		d := c.Seed.DistSq(town.City.Center)
		if nearest == nil || d < bestD {
			nearest = c
			bestD = d
		}
	}
	if market != nearest {
		t.Fatalf("the market should sit on the cell nearest the center")
	}
}

// A citadel wall encloses exactly one patch
// and the castle sits on it.
func TestCitadelEnclosesCastle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NCells = 60
	cfg.Seed = 7
	cfg.Coast = CoastForbid
	cfg.Citadel = true

	town := buildOrFatal(t, cfg)

	if town.City.Citadel == nil {
		t.Fatalf("citadel requested but not built")
	}
	castles := 0
	for _, c := range town.City.Cells {
		if c.Ward != nil && c.Ward.Kind == model.WardCastle {
			castles++
			// The citadel ring is the castle patch's own circumference,
			// so every castle shape vertex lies on it.
			for _, id := range c.Shape.Points {
				if town.City.Citadel.Shape.IndexOf(id) < 0 {
					t.Fatalf("castle vertex %d not on the citadel ring", id)
				}
			}
		}
	}
	if castles != 1 {
		t.Fatalf("want exactly one castle, got %d", castles)
	}
}

// Gates are shared references - wall shape vertices that
// sit in both pathfinding exclusion sets.
func TestGatesAreSharedReferences(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NCells = 20
	cfg.Seed = 13
	cfg.Coast = CoastForbid

	town := buildOrFatal(t, cfg)

	wall := town.City.Wall
	if wall == nil {
		wall = town.City.Border
	}
	if wall == nil || len(wall.Gates) == 0 {
		t.Fatalf("no wall ring with gates")
	}
	for _, g := range wall.Gates {
		if wall.Shape.IndexOf(g) < 0 {
			t.Fatalf("gate %d is not a vertex of the wall shape", g)
		}
		if !town.City.Graph.IsInner(g) || !town.City.Graph.IsOuter(g) {
			t.Fatalf("gate %d must belong to both inner and outer node sets", g)
		}
	}
}

// Within a ward-group only the core patch emits geometry,
// and it emits exactly the group's buildings.
func TestGroupCoreIsSoleEmitter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NCells = 40
	cfg.Seed = 23
	cfg.Coast = CoastForbid

	town := buildOrFatal(t, cfg)

	if len(town.City.Groups) == 0 {
		t.Fatalf("a 40-cell town should form ward-groups")
	}
	for _, g := range town.City.Groups {
		built := 0
		for _, b := range g.Blocks {
			built += len(b.Buildings)
		}
		for _, c := range g.Cells {
			if c == g.Core {
				if len(c.Ward.Geometry) != built {
					t.Fatalf("core emits %d polygons, group built %d", len(c.Ward.Geometry), built)
				}
				continue
			}
			if len(c.Ward.Geometry) != 0 {
				t.Fatalf("non-core cell %d emits geometry", c.ID)
			}
		}
	}
}

// Every cell carries at most one ward, and the ward points back at
// its own cell.
func TestWardExclusivity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NCells = 30
	cfg.Seed = 5
	cfg.Slums = true

	town := buildOrFatal(t, cfg)

	for _, c := range town.City.Cells {
		if c.Ward == nil {
			continue
		}
		if c.Ward.Cell != c {
			t.Fatalf("ward of cell %d points at a different cell", c.ID)
		}
		if c.Waterbody {
			t.Fatalf("water cell %d has a ward", c.ID)
		}
	}
}

func TestSeedEchoed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NCells = 15
	cfg.Seed = 12345
	cfg.Coast = CoastForbid

	town := buildOrFatal(t, cfg)
	if town.Seed != 12345 {
		t.Fatalf("seed %d echoed as %d", 12345, town.Seed)
	}
}
