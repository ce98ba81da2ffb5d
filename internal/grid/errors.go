package grid

import "errors"

// Sentinel errors returned by cell and container operations. Callers
// should match with errors.Is since call sites wrap these with context.
var (
	// ErrInvalidLayer means a cell was constructed against something
	// that is not a usable raster layer.
	ErrInvalidLayer = errors.New("grid: invalid layer")

	// ErrUnboundCell means a cell's layer was accessed before binding.
	// Construction binds the layer, so hitting this indicates a
	// partially-constructed cell.
	ErrUnboundCell = errors.New("grid: cell is not bound to a layer")

	// ErrCapacityExceeded means an agent could not be added because the
	// cell is at its capacity ceiling. The add is rejected whole; the
	// container is never truncated.
	ErrCapacityExceeded = errors.New("grid: cell agent capacity exceeded")

	// ErrNotPresent means a removal referenced an agent the container
	// does not track.
	ErrNotPresent = errors.New("grid: agent not present on cell")
)
