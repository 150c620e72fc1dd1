// Package emit implements the geometry emitter: it walks wards in
// creation order and flattens their geometry, then
// gathers the auxiliary sets (streets, arteries, roads, walls, towers,
// gates, water polygon) the external serializer consumes. Debug-only
// outputs (raw patches, OBBs, bisector cuts) ride along on the same
// struct for internal/debugrender.
package emit

import (
	"github.com/townforge/towngen/internal/geom"
	"github.com/townforge/towngen/internal/model"
)

// CellOut is the per-cell slice of the output model.
type CellOut struct {
	Shape       *geom.Polygon
	Ward        string
	WithinCity  bool
	WithinWalls bool
	Waterbody   bool
	Landing     bool
}

// WallOut is one curtain-wall ring resolved for the consumer.
type WallOut struct {
	Kind     string
	Shape    *geom.Polygon
	Segments []bool
	Towers   []geom.Point
	Gates    []geom.Point
}

// Debug carries the debug-only outputs.
type Debug struct {
	Patches []*geom.Polygon
	OBBs    []geom.OBB
	Cuts    [][]geom.Point
}

// Output is the flat model handed to the external serializer.
type Output struct {
	Water *geom.Polygon
	Shore []geom.Point

	Cells []CellOut

	Streets  [][]geom.Point
	Roads    [][]geom.Point
	Arteries [][]geom.Point

	Walls []WallOut

	Geometry []*geom.Polygon
	Trees    []geom.Point

	Debug Debug
}

// Collect assembles the Output from a built city. Ward geometry is
// flattened in ward creation order - the city's cell order, which is
// the distance-sorted order wards were assigned in.
func Collect(city *model.City) *Output {
	out := &Output{Water: city.Water}

	for _, id := range city.Shore {
		out.Shore = append(out.Shore, city.Arena.Get(id))
	}

	for _, cell := range city.Cells {
		co := CellOut{
			Shape:       cell.Shape,
			Ward:        model.WardNone.String(),
			WithinCity:  cell.WithinCity,
			WithinWalls: cell.WithinWalls,
			Waterbody:   cell.Waterbody,
			Landing:     cell.Landing,
		}
		if cell.Ward != nil {
			co.Ward = cell.Ward.Kind.String()
		}
		out.Cells = append(out.Cells, co)
		out.Debug.Patches = append(out.Debug.Patches, cell.Shape)

		if cell.Ward != nil {
			out.Geometry = append(out.Geometry, cell.Ward.Geometry...)
		}
	}

	out.Streets = resolvePaths(city, city.Streets)
	out.Roads = resolvePaths(city, city.Roads)
	out.Arteries = resolvePaths(city, city.Arteries)

	for _, w := range []*model.CurtainWall{city.Citadel, city.Border, city.Wall} {
		if w == nil {
			continue
		}
		wo := WallOut{Kind: w.Kind, Shape: w.Shape, Segments: w.Segments, Towers: w.Towers}
		for _, g := range w.Gates {
			wo.Gates = append(wo.Gates, city.Arena.Get(g))
		}
		out.Walls = append(out.Walls, wo)
	}

	for _, g := range city.Groups {
		out.Debug.Cuts = append(out.Debug.Cuts, g.Cuts...)
		for _, b := range g.Blocks {
			out.Trees = append(out.Trees, b.Trees...)
			out.Debug.OBBs = append(out.Debug.OBBs, b.Rects...)
		}
	}

	return out
}

func resolvePaths(city *model.City, paths [][]geom.PointID) [][]geom.Point {
	out := make([][]geom.Point, 0, len(paths))
	for _, p := range paths {
		out = append(out, city.Arena.Coords(p))
	}
	return out
}
