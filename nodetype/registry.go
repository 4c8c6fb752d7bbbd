package nodetype

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/c360/flowcore/errors"
)

// Registry is a thread-safe in-memory node-type catalog. It implements both
// Repository and Versioned: every mutation bumps the catalog version so cache
// layers can discard stale schemas.
type Registry struct {
	mu         sync.RWMutex
	types      map[string]*Description
	generation uint64
}

// NewRegistry creates a new empty node-type registry
func NewRegistry() *Registry {
	return &Registry{
		types: make(map[string]*Description),
	}
}

// Register adds a node-type description to the catalog.
// Returns an error if the description is malformed or the normalized name is
// already registered.
func (r *Registry) Register(desc *Description) error {
	if desc == nil {
		return errors.WrapStructural(
			errors.ErrInvalidRegistration, "Registry", "Register", "description validation")
	}
	if desc.Name == "" {
		return errors.WrapStructural(
			errors.ErrInvalidRegistration, "Registry", "Register", "type name validation")
	}
	if desc.Outputs < 0 {
		return errors.WrapStructural(
			errors.ErrInvalidRegistration, "Registry", "Register", "output cardinality validation")
	}
	if len(desc.OutputNames) > 0 && len(desc.OutputNames) != desc.Outputs {
		msg := fmt.Errorf("type %q declares %d outputs but %d output names",
			desc.Name, desc.Outputs, len(desc.OutputNames))
		return errors.WrapStructural(msg, "Registry", "Register", "output names validation")
	}

	name := Normalize(desc.Name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[name]; exists {
		msg := fmt.Errorf("node type %q is already registered", name)
		return errors.WrapStructural(msg, "Registry", "Register", "duplicate type check")
	}

	r.types[name] = desc
	r.generation++
	return nil
}

// MustRegister registers a description and panics on error. Intended for
// static catalogs assembled at startup.
func (r *Registry) MustRegister(desc *Description) {
	if err := r.Register(desc); err != nil {
		panic(err)
	}
}

// GetNodeType implements Repository. The type name is normalized before lookup.
func (r *Registry) GetNodeType(typeName string) (*Description, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	desc, exists := r.types[Normalize(typeName)]
	return desc, exists
}

// Remove deletes a node type from the catalog. Returns true if it existed.
func (r *Registry) Remove(typeName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := Normalize(typeName)
	if _, exists := r.types[name]; !exists {
		return false
	}
	delete(r.types, name)
	r.generation++
	return true
}

// Types returns all registered normalized type names, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered node types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}

// CatalogVersion implements Versioned. The version changes on every
// Register/Remove, so cached schemas from earlier generations are never
// served silently.
func (r *Registry) CatalogVersion() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return "gen-" + strconv.FormatUint(r.generation, 10)
}
