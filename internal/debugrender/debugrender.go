// Package debugrender rasterizes a built town to a PNG for
// eyeballing. It draws the
// emit.Output's debug sets (patches, OBBs, bisector cuts) alongside
// the regular layers, and is only ever reached from cmd/towngen's
// -png flag; the real serializer consumes emit.Output directly.
package debugrender

import (
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/colornames"

	"github.com/townforge/towngen/internal/emit"
	"github.com/townforge/towngen/internal/geom"
)

// ColourScheme maps town layers to render colors.
type ColourScheme struct {
	Background color.Color
	Water      color.Color
	Patch      color.Color
	Road       color.Color
	Wall       color.Color
	Tower      color.Color
	Gate       color.Color
	Building   color.Color
	Tree       color.Color
	Cut        color.Color
}

// DefaultScheme is a plain parchment-and-ink look.
func DefaultScheme() *ColourScheme {
	return &ColourScheme{
		Background: colornames.Wheat,
		Water:      colornames.Steelblue,
		Patch:      colornames.Tan,
		Road:       colornames.Sienna,
		Wall:       colornames.Dimgray,
		Tower:      colornames.Darkslategray,
		Gate:       colornames.Darkred,
		Building:   colornames.Saddlebrown,
		Tree:       colornames.Forestgreen,
		Cut:        colornames.Rosybrown,
	}
}

// Save renders out to a PNG at fpath, scaled to fit the given pixel
// width.
func Save(out *emit.Output, fpath string, widthPx int, scheme *ColourScheme) error {
	if scheme == nil {
		scheme = DefaultScheme()
	}
	minX, minY, maxX, maxY := outputBounds(out)
	spanX, spanY := maxX-minX, maxY-minY
	if spanX <= 0 || spanY <= 0 {
		spanX, spanY = 1, 1
	}
	scale := float64(widthPx) / spanX
	heightPx := int(math.Ceil(spanY * scale))

	dc := gg.NewContext(widthPx, heightPx)
	dc.SetColor(scheme.Background)
	dc.Clear()

	tx := func(p geom.Point) (float64, float64) {
		return (p.X - minX) * scale, (p.Y - minY) * scale
	}

	if out.Water != nil {
		fillPolygon(dc, out.Water.Coords(), tx, scheme.Water)
	}

	for _, c := range out.Cells {
		if c.Waterbody {
			continue
		}
		strokePolygon(dc, c.Shape.Coords(), tx, scheme.Patch, 1)
	}

	for _, artery := range out.Arteries {
		strokePath(dc, artery, tx, scheme.Road, 2)
	}
	for _, road := range out.Roads {
		strokePath(dc, road, tx, scheme.Road, 1.5)
	}

	for _, obb := range out.Debug.OBBs {
		corners := obb.Corners()
		strokePolygon(dc, corners[:], tx, scheme.Cut, 0.5)
	}
	for _, cut := range out.Debug.Cuts {
		strokePath(dc, cut, tx, scheme.Cut, 0.8)
	}

	for _, poly := range out.Geometry {
		fillPolygon(dc, poly.Coords(), tx, scheme.Building)
	}

	for _, tree := range out.Trees {
		x, y := tx(tree)
		dc.SetColor(scheme.Tree)
		dc.DrawCircle(x, y, 1.2)
		dc.Fill()
	}

	for _, wall := range out.Walls {
		drawWall(dc, wall, tx, scheme)
	}

	return dc.SavePNG(fpath)
}

func drawWall(dc *gg.Context, wall emit.WallOut, tx func(geom.Point) (float64, float64), scheme *ColourScheme) {
	coords := wall.Shape.Coords()
	n := len(coords)
	for i := 0; i < n; i++ {
		if i < len(wall.Segments) && !wall.Segments[i] {
			continue
		}
		x0, y0 := tx(coords[i])
		x1, y1 := tx(coords[(i+1)%n])
		dc.SetColor(scheme.Wall)
		dc.SetLineWidth(3)
		dc.DrawLine(x0, y0, x1, y1)
		dc.Stroke()
	}
	for _, tower := range wall.Towers {
		x, y := tx(tower)
		dc.SetColor(scheme.Tower)
		dc.DrawCircle(x, y, 3)
		dc.Fill()
	}
	for _, gate := range wall.Gates {
		x, y := tx(gate)
		dc.SetColor(scheme.Gate)
		dc.DrawCircle(x, y, 3)
		dc.Fill()
	}
}

func fillPolygon(dc *gg.Context, coords []geom.Point, tx func(geom.Point) (float64, float64), col color.Color) {
	if len(coords) < 3 {
		return
	}
	dc.NewSubPath()
	for _, p := range coords {
		x, y := tx(p)
		dc.LineTo(x, y)
	}
	dc.ClosePath()
	dc.SetColor(col)
	dc.Fill()
}

func strokePolygon(dc *gg.Context, coords []geom.Point, tx func(geom.Point) (float64, float64), col color.Color, width float64) {
	if len(coords) < 2 {
		return
	}
	dc.NewSubPath()
	for _, p := range coords {
		x, y := tx(p)
		dc.LineTo(x, y)
	}
	dc.ClosePath()
	dc.SetColor(col)
	dc.SetLineWidth(width)
	dc.Stroke()
}

func strokePath(dc *gg.Context, path []geom.Point, tx func(geom.Point) (float64, float64), col color.Color, width float64) {
	if len(path) < 2 {
		return
	}
	dc.NewSubPath()
	for _, p := range path {
		x, y := tx(p)
		dc.LineTo(x, y)
	}
	dc.SetColor(col)
	dc.SetLineWidth(width)
	dc.Stroke()
}

func outputBounds(out *emit.Output) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	expand := func(p geom.Point) {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	for _, c := range out.Cells {
		for _, p := range c.Shape.Coords() {
			expand(p)
		}
	}
	if math.IsInf(minX, 1) {
		return 0, 0, 1, 1
	}
	return
}
