package geom

// Arena owns every Point in a town by value and hands out stable
// PointID handles. Every Polygon, wall segment and street in the
// pipeline references points through an Arena rather than copying
// coordinates, so merging two junctions or smoothing a street is a
// single Arena.Set call that every owning Polygon observes.
type Arena struct {
	points []Point
}

// NewArena returns an empty point arena.
func NewArena() *Arena {
	// index 0 is reserved so PointID's zero value means "unset".
	return &Arena{points: make([]Point, 1, 256)}
}

// Add stores p and returns its handle.
func (a *Arena) Add(p Point) PointID {
	a.points = append(a.points, p)
	return PointID(len(a.points) - 1)
}

// Get dereferences id to its current coordinate.
func (a *Arena) Get(id PointID) Point {
	return a.points[id]
}

// Set overwrites the coordinate id refers to; every Polygon holding id
// sees the new value on its next Get.
func (a *Arena) Set(id PointID, p Point) {
	a.points[id] = p
}

// Len returns the number of live point slots, including index 0.
func (a *Arena) Len() int {
	return len(a.points)
}

// Coords resolves a slice of handles into a slice of Points, in order.
func (a *Arena) Coords(ids []PointID) []Point {
	out := make([]Point, len(ids))
	for i, id := range ids {
		out[i] = a.points[id]
	}
	return out
}

// Nearest performs a brute-force nearest-point search within eps,
// returning (0, false) if nothing qualifies. The town sizes this
// pipeline targets (low thousands of points) make a linear scan
// preferable to standing up a kd-tree. No pipeline stage calls it:
// junction optimization compares ring neighbours directly and Voronoi
// repair uses model2d's coordinate tree.
func (a *Arena) Nearest(p Point, eps float64) (PointID, bool) {
	best := PointID(0)
	bestD := eps * eps
	found := false
	for i := 1; i < len(a.points); i++ {
		d := a.points[i].DistSq(p)
		if d <= bestD {
			best = PointID(i)
			bestD = d
			found = true
		}
	}
	return best, found
}
