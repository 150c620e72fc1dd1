package towngen

import "fmt"

var (
	// ErrInvalidCellCount is fatal: a town needs more than 3 cells.
	ErrInvalidCellCount = fmt.Errorf("towngen: cells must be > 3")

	// ErrVoronoiUnderflow is fatal: the tessellator could not produce
	// enough usable regions even after bounded spiral growth.
	ErrVoronoiUnderflow = fmt.Errorf("towngen: voronoi produced no usable regions")

	// ErrNoGates is fatal: curtain wall gate selection must never
	// produce zero gates.
	ErrNoGates = fmt.Errorf("towngen: curtain wall produced zero gates")

	// ErrNoPlaza is fatal: a town built with Plaza requested must end
	// up with exactly one market cell.
	ErrNoPlaza = fmt.Errorf("towngen: plaza requested but no market cell assigned")
)
