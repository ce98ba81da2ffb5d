package grid

import (
	"fmt"

	"github.com/terralab/patchgrid/internal/mesh"
)

// Cell is one discrete unit of a raster layer. It is bound to exactly
// one layer for its whole life, carries the agents located on it, and
// participates in named relations as a mesh.Node.
type Cell struct {
	indices Indices
	pos     *Position
	layer   *Layer
	nodeID  string

	agents *AgentContainer
	attrs  map[string]any // generic key-value attribute storage
}

// NewCell binds a cell to its owning layer. The layer must be a fully
// constructed raster layer; anything else fails with ErrInvalidLayer.
// Layers materialize their own cells, so calling this directly is
// only needed when building custom layer implementations or tests.
func NewCell(layer *Layer, idx Indices, pos *Position) (*Cell, error) {
	if layer == nil || layer.rows <= 0 || layer.cols <= 0 {
		return nil, fmt.Errorf("bind cell %v: %w", idx, ErrInvalidLayer)
	}
	c := &Cell{
		indices: idx,
		pos:     pos,
		layer:   layer,
		nodeID:  fmt.Sprintf("%s:%d,%d", layer.LayerID, idx.Row, idx.Col),
		attrs:   make(map[string]any),
	}
	c.agents = newAgentContainer(c, layer.maxAgents)
	return c, nil
}

func (c *Cell) String() string {
	return fmt.Sprintf("<Cell %d,%d of layer %s>", c.indices.Row, c.indices.Col, c.layerID())
}

func (c *Cell) layerID() string {
	if c.layer == nil {
		return "?"
	}
	return c.layer.LayerID
}

// Indices returns the cell's discrete grid coordinate.
func (c *Cell) Indices() Indices { return c.indices }

// Position returns the optional continuous coordinate.
func (c *Cell) Position() (Position, bool) {
	if c.pos == nil {
		return Position{}, false
	}
	return *c.pos, true
}

// Layer returns the owning layer. A cell that somehow escaped binding
// (a partially-constructed value) fails with ErrUnboundCell instead of
// handing back a nil layer.
func (c *Cell) Layer() (*Layer, error) {
	if c.layer == nil {
		return nil, fmt.Errorf("cell %v: %w", c.indices, ErrUnboundCell)
	}
	return c.layer, nil
}

// Agents returns the container tracking this cell's occupants.
func (c *Cell) Agents() *AgentContainer { return c.agents }

// Coordinate derives the projected center coordinate of this cell from
// its indices via the layer transform. Nothing is cached here.
func (c *Cell) Coordinate() (x, y float64, err error) {
	layer, err := c.Layer()
	if err != nil {
		return 0, 0, err
	}
	x, y = layer.Transform(c.indices.Row, c.indices.Col)
	return x, y, nil
}

// Set stores a generic attribute value on the cell. Attribute reads
// and writes on cells of one layer may run from multiple goroutines,
// e.g. a snapshot flusher persisting while a simulation step mutates.
func (c *Cell) Set(name string, v any) {
	if c.layer != nil {
		c.layer.mu.Lock()
		defer c.layer.mu.Unlock()
	}
	c.attrs[name] = v
}

// storedAttr reads the attrs map under the layer lock when bound.
func (c *Cell) storedAttr(name string) (any, bool) {
	if c.layer != nil {
		c.layer.mu.RLock()
		defer c.layer.mu.RUnlock()
	}
	v, ok := c.attrs[name]
	return v, ok
}

// Get resolves an attribute by name. Resolution order: if the layer
// registers `name` as a dynamic variable it is refreshed for this cell
// first, so the read never returns a stale value; then a registered
// exposed property of the layer's cell kind; then the cell's stored
// attributes. A missing attribute returns def, never an error;
// "unset" is a normal value here, not a failure.
func (c *Cell) Get(name string, def any) any {
	if c.layer != nil && c.layer.IsDynamic(name) {
		c.layer.refreshDynamic(name, c)
	}
	if c.layer != nil {
		if get, ok := exposedGetter(c.layer.Kind, name); ok {
			return get(c)
		}
	}
	if v, ok := c.storedAttr(name); ok {
		return v
	}
	return def
}

// GetFrom resolves an attribute on a linked node instead of this cell:
// the first cell (by node ID) related to this one under link name
// `target`. Returns def when no such neighbor exists or the attribute
// is unset there.
func (c *Cell) GetFrom(target, name string, def any) any {
	if c.layer == nil {
		return def
	}
	for _, node := range c.layer.links.Linked(target, c) {
		if other, ok := node.(*Cell); ok {
			return other.Get(name, def)
		}
	}
	return def
}

// ExposedAttributeNames returns the raster-exposed attribute names of
// this cell's kind.
func (c *Cell) ExposedAttributeNames() []string {
	if c.layer == nil {
		return nil
	}
	return ExposedAttributeNames(c.layer.Kind)
}

// Neighboring resolves this cell's neighborhood on the owning layer.
// An unbound cell has no neighbors.
func (c *Cell) Neighboring(opt NeighborOptions) []*Cell {
	if c.layer == nil {
		return nil
	}
	return c.layer.NeighborsByIndices(c.indices, opt)
}

// NodeID implements mesh.Node: layerID:row,col is unique per model
// because indices are unique within a layer.
func (c *Cell) NodeID() string { return c.nodeID }

// LinkTo records a named relation from this cell to another node in
// the layer's shared registry.
func (c *Cell) LinkTo(name string, other mesh.Node) error {
	layer, err := c.Layer()
	if err != nil {
		return err
	}
	layer.links.Link(name, c, other)
	return nil
}

// Unlink removes a named relation from this cell to another node.
func (c *Cell) Unlink(name string, other mesh.Node) error {
	layer, err := c.Layer()
	if err != nil {
		return err
	}
	return layer.links.Unlink(name, c, other)
}

// Linked returns the nodes related to this cell under `name`.
func (c *Cell) Linked(name string) []mesh.Node {
	if c.layer == nil {
		return nil
	}
	return c.layer.links.Linked(name, c)
}

// HasLink reports whether this cell relates to other under `name`.
func (c *Cell) HasLink(name string, other mesh.Node) bool {
	if c.layer == nil {
		return false
	}
	return c.layer.links.HasLink(name, c, other)
}
