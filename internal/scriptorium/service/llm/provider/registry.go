package provider

import (
	"fmt"
	"sync"

	"github.com/kiosk404/scrivener/internal/scriptorium/service/llm/provider/spi"
)

// Registry is a thread-safe registry mapping provider kinds to binding factories.
type Registry struct {
	mu       sync.RWMutex
	registry map[string]spi.BindingFactory
}

// NewRegistry creates a new instance of the Registry.
func NewRegistry() *Registry {
	return &Registry{
		registry: make(map[string]spi.BindingFactory),
	}
}

// Register adds a binding factory to the registry.
// Returns an error if a factory with the same kind is already registered.
func (r *Registry) Register(kind string, factory spi.BindingFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.registry[kind]; ok {
		return fmt.Errorf("provider kind %s is already registered", kind)
	}

	r.registry[kind] = factory
	return nil
}

// MustRegister adds a binding factory to the registry.
// Panics if a factory with the same kind is already registered.
func (r *Registry) MustRegister(kind string, factory spi.BindingFactory) {
	if err := r.Register(kind, factory); err != nil {
		panic(err)
	}
}

// Get returns the binding factory for the given kind.
// Returns an error if the kind is not registered.
func (r *Registry) Get(kind string) (spi.BindingFactory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	factory, ok := r.registry[kind]
	if !ok {
		return nil, fmt.Errorf("provider kind %s is not registered", kind)
	}
	return factory, nil
}

// List returns all registered provider kinds.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.registry))
	for kind := range r.registry {
		kinds = append(kinds, kind)
	}
	return kinds
}

// Merge combines another registry into this one.
// Returns an error if any of the kinds in the other registry are already registered.
func (r *Registry) Merge(other *Registry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for kind, factory := range other.registry {
		if _, ok := r.registry[kind]; ok {
			return fmt.Errorf("provider kind %s is already registered", kind)
		}
		r.registry[kind] = factory
	}
	return nil
}

// Len returns the number of registered kinds.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.registry)
}
