package geom

import "math"

// Polygon is a closed, possibly non-convex ring of points, addressed
// by handle into a shared Arena. The last point is implicitly joined
// back to the first - callers never duplicate the closing vertex.
type Polygon struct {
	Points []PointID
	arena  *Arena
}

// NewPolygon wraps an existing point list. The arena must be the one
// that owns every id in points.
func NewPolygon(arena *Arena, points []PointID) *Polygon {
	return &Polygon{Points: points, arena: arena}
}

// Arena returns the backing point store.
func (p *Polygon) Arena() *Arena { return p.arena }

// Len returns the vertex count.
func (p *Polygon) Len() int { return len(p.Points) }

// At resolves vertex i (wrapping) to its current coordinate.
func (p *Polygon) At(i int) Point {
	return p.arena.Get(p.idAt(i))
}

func (p *Polygon) idAt(i int) PointID {
	n := len(p.Points)
	return p.Points[((i%n)+n)%n]
}

// Coords materializes the polygon's current coordinates.
func (p *Polygon) Coords() []Point {
	return p.arena.Coords(p.Points)
}

// ForEdge calls fn once per edge (including the closing edge) with
// the edge's endpoint coordinates.
func (p *Polygon) ForEdge(fn func(a, b Point)) {
	n := len(p.Points)
	for i := 0; i < n; i++ {
		fn(p.At(i), p.At(i+1))
	}
}

// ForSegment calls fn once per edge with the endpoint PointIDs, so the
// caller can mutate shared vertices in place.
func (p *Polygon) ForSegment(fn func(a, b PointID)) {
	n := len(p.Points)
	for i := 0; i < n; i++ {
		fn(p.idAt(i), p.idAt(i+1))
	}
}

// Square returns the signed area (shoelace formula); positive for
// counter-clockwise winding.
func (p *Polygon) Square() float64 {
	area := 0.0
	p.ForEdge(func(a, b Point) {
		area += a.X*b.Y - b.X*a.Y
	})
	return area / 2
}

// Area is the unsigned magnitude of Square.
func (p *Polygon) Area() float64 {
	a := p.Square()
	if a < 0 {
		return -a
	}
	return a
}

// Perimeter sums every edge length.
func (p *Polygon) Perimeter() float64 {
	total := 0.0
	p.ForEdge(func(a, b Point) { total += a.Dist(b) })
	return total
}

// Centroid returns the area-weighted centroid. Degenerate (zero-area)
// polygons fall back to the vertex average.
func (p *Polygon) Centroid() Point {
	sq := p.Square()
	if sq == 0 {
		return p.vertexAverage()
	}
	cx, cy := 0.0, 0.0
	p.ForEdge(func(a, b Point) {
		cross := a.X*b.Y - b.X*a.Y
		cx += (a.X + b.X) * cross
		cy += (a.Y + b.Y) * cross
	})
	f := 1 / (6 * sq)
	return Point{cx * f, cy * f}
}

func (p *Polygon) vertexAverage() Point {
	sx, sy := 0.0, 0.0
	for i := 0; i < len(p.Points); i++ {
		pt := p.At(i)
		sx += pt.X
		sy += pt.Y
	}
	n := float64(len(p.Points))
	return Point{sx / n, sy / n}
}

// IsClockwise reports the polygon's winding order.
func (p *Polygon) IsClockwise() bool { return p.Square() < 0 }

// Contains uses a standard ray-cast test; the polygon is assumed
// closed (>= 3 vertices).
func (p *Polygon) Contains(pt Point) bool {
	if len(p.Points) < 3 {
		return false
	}
	inside := false
	n := len(p.Points)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := p.At(i), p.At(j)
		if (a.Y > pt.Y) != (b.Y > pt.Y) {
			xint := (b.X-a.X)*(pt.Y-a.Y)/(b.Y-a.Y) + a.X
			if pt.X < xint {
				inside = !inside
			}
		}
	}
	return inside
}

// IndexOf returns the first index holding id, by identity (PointID
// equality), or -1. This is the "same vertex" flavor of equality -
// two different PointIDs at the same coordinate do not match.
func (p *Polygon) IndexOf(id PointID) int {
	for i, v := range p.Points {
		if v == id {
			return i
		}
	}
	return -1
}

// IndexOfCoord returns the first index whose resolved coordinate is
// within eps of pt - the "same place" flavor of equality, used when
// stitching together independently-built polygons that happen to
// share a boundary.
func (p *Polygon) IndexOfCoord(pt Point, eps float64) int {
	for i := range p.Points {
		if p.At(i).DistSq(pt) <= eps*eps {
			return i
		}
	}
	return -1
}

// InsertAfter splices id into the ring immediately after index i.
func (p *Polygon) InsertAfter(i int, id PointID) {
	n := len(p.Points)
	idx := ((i % n) + n) % n
	out := make([]PointID, 0, n+1)
	out = append(out, p.Points[:idx+1]...)
	out = append(out, id)
	out = append(out, p.Points[idx+1:]...)
	p.Points = out
}

// RemoveAt deletes the vertex at index i. Grounded on
// unixpickle/essentials.UnorderedDelete's swap-to-back technique, but
// order-preserving since polygon winding matters downstream.
func (p *Polygon) RemoveAt(i int) {
	n := len(p.Points)
	idx := ((i % n) + n) % n
	p.Points = append(p.Points[:idx], p.Points[idx+1:]...)
}

// IsConvexVertex reports whether the interior angle at vertex i is
// convex, given the polygon's own winding direction.
func (p *Polygon) IsConvexVertex(i int) bool {
	prev, cur, next := p.At(i-1), p.At(i), p.At(i+1)
	cross := cur.Sub(prev).Cross(next.Sub(cur))
	if p.IsClockwise() {
		return cross <= 0
	}
	return cross >= 0
}

// Smooth applies Chaikin corner-cutting once: every edge is replaced
// by two points at 1/4 and 3/4 along it, producing a rounder ring of
// twice the vertex count. New points are allocated fresh in the
// arena; original handles (and anything else referencing them) are
// left untouched, so callers that need continuity should only smooth
// a polygon nobody else has linked into yet.
func (p *Polygon) Smooth() *Polygon {
	n := len(p.Points)
	out := make([]PointID, 0, n*2)
	for i := 0; i < n; i++ {
		a, b := p.At(i), p.At(i+1)
		out = append(out, p.arena.Add(a.Lerp(b, 0.25)))
		out = append(out, p.arena.Add(a.Lerp(b, 0.75)))
	}
	return &Polygon{Points: out, arena: p.arena}
}

// SmoothInPlace mutates each shared vertex toward the average of
// itself and its two neighbours - the (prev + 3*cur + next)/5 formula -
// without duplicating or re-linking points. Streets are relaxed by
// SmoothPolyline instead, which pins the endpoints.
func (p *Polygon) SmoothInPlace(strength float64) {
	n := len(p.Points)
	next := make([]Point, n)
	for i := 0; i < n; i++ {
		prev, cur, nxt := p.At(i-1), p.At(i), p.At(i+1)
		avg := Point{
			X: (prev.X + 3*cur.X + nxt.X) / 5,
			Y: (prev.Y + 3*cur.Y + nxt.Y) / 5,
		}
		next[i] = cur.Lerp(avg, strength)
	}
	for i, id := range p.Points {
		p.arena.Set(id, next[i])
	}
}

// SmoothPolyline relaxes an open path's interior vertices in place
// with the (prev + f*cur + next)/(f+2) formula, leaving both endpoints
// untouched - endpoints are gates or shore vertices whose identity
// other structures depend on. Mutates the shared points, so every
// patch boundary holding them flexes with the path.
func SmoothPolyline(arena *Arena, ids []PointID, f float64) {
	if len(ids) < 3 {
		return
	}
	next := make([]Point, len(ids))
	for i := 1; i < len(ids)-1; i++ {
		prev := arena.Get(ids[i-1])
		cur := arena.Get(ids[i])
		nxt := arena.Get(ids[i+1])
		next[i] = Point{
			X: (prev.X + f*cur.X + nxt.X) / (f + 2),
			Y: (prev.Y + f*cur.Y + nxt.Y) / (f + 2),
		}
	}
	for i := 1; i < len(ids)-1; i++ {
		arena.Set(ids[i], next[i])
	}
}

// Shrink pulls every vertex a fixed distance toward the centroid,
// stopping at the centroid for vertices closer than dist.
func (p *Polygon) Shrink(dist float64) *Polygon {
	c := p.Centroid()
	out := make([]PointID, len(p.Points))
	for i := range p.Points {
		pt := p.At(i)
		dir := c.Sub(pt)
		l := dir.Length()
		if l > dist {
			dir = dir.Scale(dist / l)
		} else {
			dir = c.Sub(pt)
		}
		out[i] = p.arena.Add(pt.Add(dir))
	}
	return &Polygon{Points: out, arena: p.arena}
}

// Buffer offsets every edge outward (positive dist) or inward
// (negative) along its normal and re-intersects consecutive edges -
// a simple per-edge-translate buffer, adequate for the convex-ish
// lots this pipeline produces; it is not a general Minkowski offset.
func (p *Polygon) Buffer(dist float64) *Polygon {
	n := len(p.Points)
	if n < 3 {
		return p
	}
	lines := make([][2]Point, n)
	for i := 0; i < n; i++ {
		a, b := p.At(i), p.At(i+1)
		normal := b.Sub(a).Rotate90().Norm()
		if !p.IsClockwise() {
			normal = normal.Scale(-1)
		}
		off := normal.Scale(dist)
		lines[i] = [2]Point{a.Add(off), b.Add(off)}
	}
	out := make([]PointID, n)
	for i := 0; i < n; i++ {
		prevLine := lines[(i-1+n)%n]
		curLine := lines[i]
		pt, ok := lineIntersection(prevLine[0], prevLine[1], curLine[0], curLine[1])
		if !ok {
			pt = curLine[0]
		}
		out[i] = p.arena.Add(pt)
	}
	return &Polygon{Points: out, arena: p.arena}
}

// ShrinkEdges offsets each edge i inward by insets[i] and re-intersects
// consecutive edges - the per-edge inset flavor of Buffer, used by the
// block engine to leave room for streets, walls and water margins
// according to each edge's classification. insets must have Len()
// entries; a nil result means the polygon collapsed.
func (p *Polygon) ShrinkEdges(insets []float64) *Polygon {
	n := len(p.Points)
	if n < 3 || len(insets) != n {
		return p
	}
	inwardSign := 1.0
	if p.IsClockwise() {
		inwardSign = -1
	}
	lines := make([][2]Point, n)
	for i := 0; i < n; i++ {
		a, b := p.At(i), p.At(i+1)
		normal := b.Sub(a).Rotate90().Norm().Scale(-inwardSign)
		off := normal.Scale(-insets[i])
		lines[i] = [2]Point{a.Add(off), b.Add(off)}
	}
	out := make([]PointID, 0, n)
	for i := 0; i < n; i++ {
		prevLine := lines[(i-1+n)%n]
		curLine := lines[i]
		pt, ok := lineIntersection(prevLine[0], prevLine[1], curLine[0], curLine[1])
		if !ok {
			pt = curLine[0]
		}
		out = append(out, p.arena.Add(pt))
	}
	result := &Polygon{Points: out, arena: p.arena}
	if result.Area() <= 0 || result.Area() > p.Area() {
		return nil
	}
	return result
}

// lineIntersection finds the intersection of infinite lines (a0,a1)
// and (b0,b1); ok is false for parallel lines.
func lineIntersection(a0, a1, b0, b1 Point) (Point, bool) {
	d1 := a1.Sub(a0)
	d2 := b1.Sub(b0)
	denom := d1.Cross(d2)
	if math.Abs(denom) < 1e-9 {
		return Point{}, false
	}
	t := b0.Sub(a0).Cross(d2) / denom
	return a0.Add(d1.Scale(t)), true
}

// SegmentIntersect reports whether segments (a,b) and (c,d) cross, and
// the crossing point when they do. Used for bridge detection where a
// canal/river segment is tested against every artery segment.
func SegmentIntersect(a, b, c, d Point) (Point, bool) {
	d1 := b.Sub(a)
	d2 := d.Sub(c)
	denom := d1.Cross(d2)
	if math.Abs(denom) < 1e-9 {
		return Point{}, false
	}
	t := c.Sub(a).Cross(d2) / denom
	u := c.Sub(a).Cross(d1) / denom
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return Point{}, false
	}
	return a.Add(d1.Scale(t)), true
}

// OBB is an oriented bounding box: a center, half-extents along two
// perpendicular axes, and the angle (radians) of the first axis.
type OBB struct {
	Center   Point
	HalfW    float64
	HalfH    float64
	Angle    float64
}

// Corners returns the box's four corners, starting at
// center - w*axis0 - h*axis1 and proceeding counter-clockwise.
func (o OBB) Corners() [4]Point {
	ax := Point{math.Cos(o.Angle), math.Sin(o.Angle)}
	ay := ax.Rotate90()
	w, h := ax.Scale(o.HalfW), ay.Scale(o.HalfH)
	return [4]Point{
		o.Center.Sub(w).Sub(h),
		o.Center.Add(w).Sub(h),
		o.Center.Add(w).Add(h),
		o.Center.Sub(w).Add(h),
	}
}

// OrientedBoundingBox computes a minimum-area OBB using rotating
// calipers over the convex hull edges - the standard approach for
// the near-convex ward/block polygons this pipeline bisects.
func (p *Polygon) OrientedBoundingBox() OBB {
	hull := convexHull(p.Coords())
	if len(hull) < 2 {
		c := p.Centroid()
		return OBB{Center: c, HalfW: 1, HalfH: 1}
	}
	best := OBB{HalfW: math.Inf(1), HalfH: math.Inf(1)}
	bestArea := math.Inf(1)
	n := len(hull)
	for i := 0; i < n; i++ {
		edge := hull[(i+1)%n].Sub(hull[i])
		angle := math.Atan2(edge.Y, edge.X)
		cosA, sinA := math.Cos(-angle), math.Sin(-angle)
		minX, minY := math.Inf(1), math.Inf(1)
		maxX, maxY := math.Inf(-1), math.Inf(-1)
		for _, v := range hull {
			rx := v.X*cosA - v.Y*sinA
			ry := v.X*sinA + v.Y*cosA
			minX, maxX = math.Min(minX, rx), math.Max(maxX, rx)
			minY, maxY = math.Min(minY, ry), math.Max(maxY, ry)
		}
		w, h := (maxX-minX)/2, (maxY-minY)/2
		area := w * h * 4
		if area < bestArea {
			bestArea = area
			cx := (minX + maxX) / 2
			cy := (minY + maxY) / 2
			cosB, sinB := math.Cos(angle), math.Sin(angle)
			center := Point{cx*cosB - cy*sinB, cx*sinB + cy*cosB}
			best = OBB{Center: center, HalfW: w, HalfH: h, Angle: angle}
		}
	}
	return best
}

// convexHull computes the hull via the monotone chain algorithm.
func convexHull(pts []Point) []Point {
	if len(pts) < 3 {
		return pts
	}
	sorted := append([]Point(nil), pts...)
	sortPoints(sorted)
	cross := func(o, a, b Point) float64 {
		return a.Sub(o).Cross(b.Sub(o))
	}
	lower := make([]Point, 0, len(sorted))
	for _, p := range sorted {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}
	upper := make([]Point, 0, len(sorted))
	for i := len(sorted) - 1; i >= 0; i-- {
		p := sorted[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}
	return append(lower[:len(lower)-1], upper[:len(upper)-1]...)
}

func sortPoints(pts []Point) {
	// insertion sort is fine: hulls here are small (lot/ward vertex counts).
	for i := 1; i < len(pts); i++ {
		j := i
		for j > 0 && less(pts[j], pts[j-1]) {
			pts[j], pts[j-1] = pts[j-1], pts[j]
			j--
		}
	}
}

func less(a, b Point) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}
