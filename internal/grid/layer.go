package grid

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/terralab/patchgrid/internal/mesh"
	"github.com/terralab/patchgrid/internal/monitoring"
)

// logf is the component-scoped diagnostic logger for this package.
var logf = monitoring.Tagf("Layer")

// Indices is a discrete grid coordinate, row-major. It is the cell's
// unique key within its layer and never changes after construction.
type Indices struct {
	Row int
	Col int
}

// Position is a continuous coordinate in the layer's projection. It is
// independent of Indices and optional on a cell.
type Position struct {
	X float64
	Y float64
}

// DynamicFunc recomputes a dynamic variable for one cell. The layer
// calls it on demand and stores the result on the cell before any
// read of that variable returns.
type DynamicFunc func(c *Cell) any

// LayerParams configures a new layer.
type LayerParams struct {
	// LayerID identifies the layer; a UUID is generated when empty.
	LayerID string
	// Kind selects which registered cell attributes and capacity
	// defaults apply to this layer's cells.
	Kind string
	// Rows and Cols are the grid dimensions; both must be positive.
	Rows int
	Cols int
	// OriginX, OriginY anchor the top-left corner of the raster.
	OriginX float64
	OriginY float64
	// CellWidth and CellHeight are the projected cell extents;
	// both default to 1 when zero.
	CellWidth  float64
	CellHeight float64
	// MaxAgentsPerCell overrides the kind-level capacity default when
	// positive. Zero falls back to the registered default.
	MaxAgentsPerCell int
	// Links is the shared relation registry; a private one is created
	// when nil.
	Links *mesh.Registry
}

// Layer is a raster layer: a row-major arena of cells plus the
// coordinate transform and dynamic-variable table they resolve
// against. Cells are materialized once at construction, one per index
// pair, and live exactly as long as the layer.
type Layer struct {
	LayerID string
	Kind    string

	rows, cols           int
	originX, originY     float64
	cellW, cellH         float64
	maxAgents            int
	cells                []*Cell // len = rows * cols
	dynamic              map[string]DynamicFunc
	links                *mesh.Registry

	// mu guards the attrs map of every cell on this layer and the
	// dynamic table, so a snapshot flusher can read attributes while
	// a simulation goroutine writes them. Dynamic functions and
	// exposed getters run outside the lock and may call Get and Set
	// themselves.
	mu sync.RWMutex
}

// NewLayer materializes a layer and its full cell arena.
func NewLayer(p LayerParams) (*Layer, error) {
	if p.Rows <= 0 || p.Cols <= 0 {
		return nil, fmt.Errorf("layer dimensions %dx%d: %w", p.Rows, p.Cols, ErrInvalidLayer)
	}
	if p.CellWidth == 0 {
		p.CellWidth = 1
	}
	if p.CellHeight == 0 {
		p.CellHeight = 1
	}
	if p.LayerID == "" {
		p.LayerID = uuid.New().String()
	}
	if p.Links == nil {
		p.Links = mesh.NewRegistry()
	}
	maxAgents := p.MaxAgentsPerCell
	if maxAgents <= 0 {
		maxAgents = kindCapacity(p.Kind)
	}

	l := &Layer{
		LayerID:   p.LayerID,
		Kind:      p.Kind,
		rows:      p.Rows,
		cols:      p.Cols,
		originX:   p.OriginX,
		originY:   p.OriginY,
		cellW:     p.CellWidth,
		cellH:     p.CellHeight,
		maxAgents: maxAgents,
		dynamic:   make(map[string]DynamicFunc),
		links:     p.Links,
	}

	l.cells = make([]*Cell, p.Rows*p.Cols)
	for row := 0; row < p.Rows; row++ {
		for col := 0; col < p.Cols; col++ {
			cell, err := NewCell(l, Indices{Row: row, Col: col}, nil)
			if err != nil {
				return nil, fmt.Errorf("materialize cell (%d,%d): %w", row, col, err)
			}
			l.cells[l.Idx(row, col)] = cell
		}
	}

	logf("materialized layer=%s kind=%q cells=%d (%dx%d)",
		l.LayerID, l.Kind, len(l.cells), l.rows, l.cols)
	return l, nil
}

// Dims returns the grid dimensions as (rows, cols).
func (l *Layer) Dims() (int, int) { return l.rows, l.cols }

// Idx returns the arena index for (row, col): idx = row*cols + col.
func (l *Layer) Idx(row, col int) int { return row*l.cols + col }

// InBounds reports whether (row, col) lies inside the grid.
func (l *Layer) InBounds(row, col int) bool {
	return row >= 0 && row < l.rows && col >= 0 && col < l.cols
}

// CellAt returns the cell at (row, col), or false when out of bounds.
func (l *Layer) CellAt(row, col int) (*Cell, bool) {
	if !l.InBounds(row, col) {
		return nil, false
	}
	return l.cells[l.Idx(row, col)], true
}

// Transform converts grid indices to the projected coordinate of the
// cell center. Rows grow downward from the origin, raster-style.
func (l *Layer) Transform(row, col int) (x, y float64) {
	x = l.originX + (float64(col)+0.5)*l.cellW
	y = l.originY - (float64(row)+0.5)*l.cellH
	return x, y
}

// Links returns the relation registry shared by this layer's cells.
func (l *Layer) Links() *mesh.Registry { return l.links }

// MaxAgentsPerCell returns the capacity ceiling applied to this
// layer's cells, or 0 when unbounded.
func (l *Layer) MaxAgentsPerCell() int { return l.maxAgents }

// RegisterDynamic installs fn as the recomputation for a dynamic
// variable. Re-registering a name replaces the previous function.
func (l *Layer) RegisterDynamic(name string, fn DynamicFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if fn == nil {
		delete(l.dynamic, name)
		return
	}
	l.dynamic[name] = fn
}

// IsDynamic reports whether name is a registered dynamic variable.
func (l *Layer) IsDynamic(name string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.dynamic[name]
	return ok
}

// DynamicNames returns the registered dynamic variable names, sorted.
func (l *Layer) DynamicNames() []string {
	l.mu.RLock()
	names := make([]string, 0, len(l.dynamic))
	for name := range l.dynamic {
		names = append(names, name)
	}
	l.mu.RUnlock()
	sort.Strings(names)
	return names
}

// refreshDynamic recomputes a dynamic variable for one cell and stores
// the fresh value on it. Reads of dynamic variables go through here
// first, so they never observe a value older than the refresh. The
// function is looked up under the read lock but invoked outside it,
// so it is free to read and write cell attributes.
func (l *Layer) refreshDynamic(name string, c *Cell) {
	l.mu.RLock()
	fn, ok := l.dynamic[name]
	l.mu.RUnlock()
	if !ok {
		return
	}
	c.Set(name, fn(c))
}

// Apply visits every cell in row-major order.
func (l *Layer) Apply(fn func(c *Cell)) {
	for _, c := range l.cells {
		fn(c)
	}
}

// Raster extracts the named attribute across all cells as a row-major
// float64 slice: the layer-level field view of a cell attribute.
// Exposed attributes, dynamic variables and plain stored attributes
// all work; cells with the attribute unset contribute 0. An attribute
// unknown on every cell is an error rather than an all-zero raster.
func (l *Layer) Raster(name string) ([]float64, error) {
	out := make([]float64, len(l.cells))
	found := false
	for i, c := range l.cells {
		v := c.Get(name, nil)
		if v == nil {
			out[i] = 0
			continue
		}
		f, ok := asFloat(v)
		if !ok {
			return nil, fmt.Errorf("raster %q: cell (%d,%d) has non-numeric value %T",
				name, c.indices.Row, c.indices.Col, v)
		}
		out[i] = f
		found = true
	}
	if !found {
		return nil, fmt.Errorf("raster %q: attribute not set on any cell of layer %s", name, l.LayerID)
	}
	return out, nil
}

// ApplyRaster stores row-major values as attribute `name` on every
// cell. Used by snapshot restore and bulk initialization.
func (l *Layer) ApplyRaster(name string, vals []float64) error {
	if len(vals) != len(l.cells) {
		return fmt.Errorf("apply raster %q: got %d values for %d cells", name, len(vals), len(l.cells))
	}
	for i, c := range l.cells {
		c.Set(name, vals[i])
	}
	return nil
}

// asFloat widens the numeric types cells commonly store.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
