package grid

import (
	"fmt"
	"sort"
	"sync"
)

// AttributeGetter computes an exposed attribute value for a cell.
// Getters must be pure reads; they run on every attribute access and
// on every raster extraction.
type AttributeGetter func(c *Cell) any

// attrRegistry marks which computed cell properties are visible as
// layer-level raster fields. Marking is structural and happens once
// per cell kind at init time; values never influence membership.
type attrRegistry struct {
	mu      sync.RWMutex
	getters map[string]map[string]AttributeGetter // kind -> name -> getter
	maxCap  map[string]int                        // kind -> default agent capacity
}

var registry = &attrRegistry{
	getters: make(map[string]map[string]AttributeGetter),
	maxCap:  make(map[string]int),
}

// RegisterAttribute marks `name` as an exposed attribute of cell kind
// `kind`, backed by the given getter. Call it at init time, once per
// attribute; duplicate registration panics because it indicates two
// definitions fighting over the same layer field.
func RegisterAttribute(kind, name string, get AttributeGetter) {
	if get == nil {
		panic(fmt.Sprintf("grid: nil getter for attribute %q of kind %q", name, kind))
	}
	registry.mu.Lock()
	defer registry.mu.Unlock()
	byName := registry.getters[kind]
	if byName == nil {
		byName = make(map[string]AttributeGetter)
		registry.getters[kind] = byName
	}
	if _, dup := byName[name]; dup {
		panic(fmt.Sprintf("grid: attribute %q already registered for kind %q", name, kind))
	}
	byName[name] = get
}

// RegisterCapacity sets the default per-cell agent capacity for a cell
// kind. Zero or negative means unbounded. Layers may override it.
func RegisterCapacity(kind string, max int) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.maxCap[kind] = max
}

// ExposedAttributeNames returns the attribute names registered for
// exactly this kind, sorted. Kinds do not inherit each other's
// registrations. The result is a copy; repeated calls are stable.
func ExposedAttributeNames(kind string) []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	byName := registry.getters[kind]
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// exposedGetter looks up the getter backing an exposed attribute.
func exposedGetter(kind, name string) (AttributeGetter, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	get, ok := registry.getters[kind][name]
	return get, ok
}

// kindCapacity returns the registered capacity default for a kind,
// or zero (unbounded) when none was registered.
func kindCapacity(kind string) int {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	return registry.maxCap[kind]
}
