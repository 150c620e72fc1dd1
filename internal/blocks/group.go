// Package blocks turns ward-groups into built-up city fabric: same-
// ward-type adjacency grouping, per-group AlleyParams sampling, the
// recursive OBB-driven Bisector, frontage-based lot subdivision, LIRA
// rectangle approximation, grid-grown building footprints and
// courtyard tree spawning.
package blocks

import (
	"github.com/townforge/towngen/internal/geom"
	"github.com/townforge/towngen/internal/model"
	"github.com/townforge/towngen/internal/rng"
	"github.com/townforge/towngen/internal/topology"
)

// Group partitions every groupable ward cell (see
// model.WardKind.Groupable) into adjacency-connected WardGroups,
// stopping extension early with probability (|group|-3)/|group| per
// iteration so groups typically land in the 1-6 cell range.
func Group(city *model.City, r *rng.Rng) []*model.WardGroup {
	assigned := map[*model.Cell]bool{}
	groups := []*model.WardGroup{}

	for _, start := range city.Cells {
		if start.Ward == nil || !start.Ward.Kind.Groupable() || assigned[start] {
			continue
		}
		kind := start.Ward.Kind
		cells := []*model.Cell{start}
		assigned[start] = true

		for {
			if len(cells) >= 3 && r.Bool(float64(len(cells)-3)/float64(len(cells))) {
				break
			}
			next := extendCandidate(cells, kind, assigned)
			if next == nil {
				break
			}
			cells = append(cells, next)
			assigned[next] = true
		}

		group := &model.WardGroup{Kind: kind, Cells: cells}
		for _, c := range cells {
			c.Group = group
		}
		group.Core = cells[0]
		groups = append(groups, group)
	}

	for _, g := range groups {
		buildBorder(city, g)
	}

	city.Groups = groups
	return groups
}

// extendCandidate returns an unassigned same-kind neighbor of any cell
// already in the group, or nil when none remain.
func extendCandidate(cells []*model.Cell, kind model.WardKind, assigned map[*model.Cell]bool) *model.Cell {
	for _, c := range cells {
		for _, nb := range c.Neighbors {
			if assigned[nb] || nb.Ward == nil || nb.Ward.Kind != kind {
				continue
			}
			return nb
		}
	}
	return nil
}

// buildBorder computes the group's circumference polygon (shared
// references) and whether it is urban: every border vertex interior
// to the walled area.
func buildBorder(city *model.City, g *model.WardGroup) {
	ring := topology.Circumference(g.Cells)
	if len(ring) < 3 {
		return
	}
	arena := g.Cells[0].Shape.Arena()
	g.Border = geom.NewPolygon(arena, ring)

	urban := true
	for _, id := range ring {
		if !borderVertexInner(city.Cells, id) {
			urban = false
			break
		}
	}
	g.Urban = urban
}

// borderVertexInner reports whether id is "inner": any incident patch
// has WithinWalls, or every incident land patch is WithinCity. Border
// vertices sit on out-of-group patches too, so the test walks every
// cell in the city, not just the group's own.
func borderVertexInner(cells []*model.Cell, id geom.PointID) bool {
	anyWalled := false
	allCity := true
	found := false
	for _, c := range cells {
		if c.Shape.IndexOf(id) < 0 {
			continue
		}
		found = true
		if c.WithinWalls {
			anyWalled = true
		}
		if !c.Waterbody && !c.WithinCity {
			allCity = false
		}
	}
	if !found {
		return false
	}
	return anyWalled || allCity
}
