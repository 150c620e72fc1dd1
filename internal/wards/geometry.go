package wards

import (
	"math"

	"github.com/townforge/towngen/internal/geom"
	"github.com/townforge/towngen/internal/model"
	"github.com/townforge/towngen/internal/rng"
)

// BuildGeometry fills in each special ward's Geometry beyond its bare
// outline - the castle keep, cathedral cross, market centerpiece,
// harbour piers and farm cottages. Alleys/Park/Slum wards are
// populated later by internal/blocks, once they've been grouped and
// bisected.
func BuildGeometry(city *model.City, r *rng.Rng) {
	for _, cell := range city.Cells {
		if cell.Ward == nil {
			continue
		}
		switch cell.Ward.Kind {
		case model.WardCastle:
			cell.Ward.Geometry = append(cell.Ward.Geometry, keepFootprint(cell))
		case model.WardCathedral:
			cell.Ward.Geometry = append(cell.Ward.Geometry, crossFootprint(cell))
		case model.WardMarket:
			cell.Ward.Geometry = append(cell.Ward.Geometry, centerpiece(cell))
		case model.WardHarbour:
			cell.Ward.Geometry = append(cell.Ward.Geometry, piers(cell)...)
		case model.WardFarm:
			cell.Ward.Geometry = append(cell.Ward.Geometry, cottages(cell, r)...)
		}
	}
}

// keepFootprint is a small fixed-ratio square centered on the ward's
// OBB.
func keepFootprint(cell *model.Cell) *geom.Polygon {
	return ratioBox(cell, 0.4)
}

// crossFootprint builds a cross shape from the ward's OBB, aligned to
// the box's orientation.
func crossFootprint(cell *model.Cell) *geom.Polygon {
	obb := cell.Shape.OrientedBoundingBox()
	arena := cell.Shape.Arena()
	armW, armH := obb.HalfW*0.25, obb.HalfH*0.8
	barW, barH := obb.HalfW*0.8, obb.HalfH*0.25
	ax, ay := obbAxes(obb)
	// A 12-point plus/cross outline: the vertical bar's corners then
	// the horizontal bar's corners, stepped around the shape.
	pts := []geom.Point{
		obb.Center.Add(ax.Scale(-armW)).Add(ay.Scale(-armH)),
		obb.Center.Add(ax.Scale(armW)).Add(ay.Scale(-armH)),
		obb.Center.Add(ax.Scale(armW)).Add(ay.Scale(-barH)),
		obb.Center.Add(ax.Scale(barW)).Add(ay.Scale(-barH)),
		obb.Center.Add(ax.Scale(barW)).Add(ay.Scale(barH)),
		obb.Center.Add(ax.Scale(armW)).Add(ay.Scale(barH)),
		obb.Center.Add(ax.Scale(armW)).Add(ay.Scale(armH)),
		obb.Center.Add(ax.Scale(-armW)).Add(ay.Scale(armH)),
		obb.Center.Add(ax.Scale(-armW)).Add(ay.Scale(barH)),
		obb.Center.Add(ax.Scale(-barW)).Add(ay.Scale(barH)),
		obb.Center.Add(ax.Scale(-barW)).Add(ay.Scale(-barH)),
		obb.Center.Add(ax.Scale(-armW)).Add(ay.Scale(-barH)),
	}
	ids := make([]geom.PointID, len(pts))
	for i, p := range pts {
		ids[i] = arena.Add(p)
	}
	return geom.NewPolygon(arena, ids)
}

// centerpiece is a small fountain/statue footprint centered on the
// ward's OBB.
func centerpiece(cell *model.Cell) *geom.Polygon {
	return ratioBox(cell, 0.15)
}

// piers extends a narrow rectangle from the harbour ward's centroid
// toward the first water cell in its neighbor list.
func piers(cell *model.Cell) []*geom.Polygon {
	var waterDir geom.Point
	found := false
	center := cell.Shape.Centroid()
	for _, nb := range cell.Neighbors {
		if nb.Waterbody {
			waterDir = nb.Shape.Centroid().Sub(center).Norm()
			found = true
			break
		}
	}
	if !found {
		return nil
	}
	arena := cell.Shape.Arena()
	obb := cell.Shape.OrientedBoundingBox()
	length := (obb.HalfW + obb.HalfH)
	side := waterDir.Rotate90().Scale(0.6)
	a := arena.Add(center.Add(side))
	b := arena.Add(center.Add(side).Add(waterDir.Scale(length)))
	c := arena.Add(center.Sub(side).Add(waterDir.Scale(length)))
	d := arena.Add(center.Sub(side))
	return []*geom.Polygon{geom.NewPolygon(arena, []geom.PointID{a, b, c, d})}
}

// cottages scatters a handful of small farmhouse footprints across the
// farm cell.
func cottages(cell *model.Cell, r *rng.Rng) []*geom.Polygon {
	obb := cell.Shape.OrientedBoundingBox()
	arena := cell.Shape.Arena()
	count := 1 + r.Int(0, 3)
	out := make([]*geom.Polygon, 0, count)
	ax, ay := obbAxes(obb)
	for i := 0; i < count; i++ {
		u := (r.Float()*2 - 1) * obb.HalfW * 0.6
		v := (r.Float()*2 - 1) * obb.HalfH * 0.6
		center := obb.Center.Add(ax.Scale(u)).Add(ay.Scale(v))
		if !cell.Shape.Contains(center) {
			continue
		}
		size := 2.0
		pts := []geom.Point{
			center.Add(ax.Scale(-size)).Add(ay.Scale(-size)),
			center.Add(ax.Scale(size)).Add(ay.Scale(-size)),
			center.Add(ax.Scale(size)).Add(ay.Scale(size)),
			center.Add(ax.Scale(-size)).Add(ay.Scale(size)),
		}
		ids := make([]geom.PointID, len(pts))
		for j, p := range pts {
			ids[j] = arena.Add(p)
		}
		out = append(out, geom.NewPolygon(arena, ids))
	}
	return out
}

// ratioBox returns a square centered on the cell's OBB and aligned to
// it, sized as a fraction of its smaller half-extent.
func ratioBox(cell *model.Cell, ratio float64) *geom.Polygon {
	obb := cell.Shape.OrientedBoundingBox()
	half := obb.HalfW
	if obb.HalfH < half {
		half = obb.HalfH
	}
	half *= ratio
	arena := cell.Shape.Arena()
	ax, ay := obbAxes(obb)
	w, h := ax.Scale(half), ay.Scale(half)
	pts := []geom.Point{
		obb.Center.Sub(w).Sub(h),
		obb.Center.Add(w).Sub(h),
		obb.Center.Add(w).Add(h),
		obb.Center.Sub(w).Add(h),
	}
	ids := make([]geom.PointID, len(pts))
	for i, p := range pts {
		ids[i] = arena.Add(p)
	}
	return geom.NewPolygon(arena, ids)
}

// obbAxes returns the box's unit axes from its angle.
func obbAxes(obb geom.OBB) (geom.Point, geom.Point) {
	ax := geom.Point{X: math.Cos(obb.Angle), Y: math.Sin(obb.Angle)}
	return ax, ax.Rotate90()
}
