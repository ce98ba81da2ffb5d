// Package mesh provides named relations between simulation nodes.
// Any entity with a stable identifier can participate: grid cells,
// agents, or non-spatial objects. The registry stores the relations;
// node types only need to implement Node.
package mesh

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrLinkNotFound is returned when unlinking a relation that does not exist.
var ErrLinkNotFound = errors.New("mesh: link not found")

// Node is anything that can take part in a named relation.
// NodeID must be stable and unique across the owning model.
type Node interface {
	NodeID() string
}

// Registry stores named, directed relations between nodes.
// A relation is identified by (name, source, destination); linking the
// same triple twice is a no-op.
type Registry struct {
	mu sync.RWMutex
	// links[name][srcID][dstID] = destination node
	links map[string]map[string]map[string]Node
}

// NewRegistry returns an empty relation registry.
func NewRegistry() *Registry {
	return &Registry{links: make(map[string]map[string]map[string]Node)}
}

// Link records a relation `name` from a to b. Idempotent.
func (r *Registry) Link(name string, a, b Node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bySrc := r.links[name]
	if bySrc == nil {
		bySrc = make(map[string]map[string]Node)
		r.links[name] = bySrc
	}
	dsts := bySrc[a.NodeID()]
	if dsts == nil {
		dsts = make(map[string]Node)
		bySrc[a.NodeID()] = dsts
	}
	dsts[b.NodeID()] = b
}

// Unlink removes the relation `name` from a to b. Removing a relation
// that was never recorded returns ErrLinkNotFound.
func (r *Registry) Unlink(name string, a, b Node) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	dsts := r.links[name][a.NodeID()]
	if _, ok := dsts[b.NodeID()]; !ok {
		return fmt.Errorf("unlink %q %s->%s: %w", name, a.NodeID(), b.NodeID(), ErrLinkNotFound)
	}
	delete(dsts, b.NodeID())
	if len(dsts) == 0 {
		delete(r.links[name], a.NodeID())
	}
	return nil
}

// HasLink reports whether the relation `name` from a to b exists.
func (r *Registry) HasLink(name string, a, b Node) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.links[name][a.NodeID()][b.NodeID()]
	return ok
}

// Linked returns the nodes related to a under `name`, sorted by node ID
// so repeated calls are deterministic.
func (r *Registry) Linked(name string, a Node) []Node {
	r.mu.RLock()
	defer r.mu.RUnlock()
	dsts := r.links[name][a.NodeID()]
	if len(dsts) == 0 {
		return nil
	}
	ids := make([]string, 0, len(dsts))
	for id := range dsts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]Node, len(ids))
	for i, id := range ids {
		out[i] = dsts[id]
	}
	return out
}

// LinkNames returns all relation names with at least one recorded link,
// sorted alphabetically.
func (r *Registry) LinkNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var names []string
	for name, bySrc := range r.links {
		if len(bySrc) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
