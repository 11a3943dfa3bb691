package adapter

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/leapstack-labs/multiquery/pkg/core"
)

// Factory creates an unconnected adapter. A nil logger means discard.
type Factory func(*slog.Logger) Adapter

// Registry maps dialects to adapter factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[core.Dialect]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[core.Dialect]Factory)}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry adapters register into.
func Default() *Registry {
	return defaultRegistry
}

// Register adds an adapter factory to the default registry.
// Called by adapter implementations in their init() functions.
func Register(d core.Dialect, factory Factory) {
	defaultRegistry.Register(d, factory)
}

// IsRegistered checks if a dialect has an adapter in the default registry.
func IsRegistered(d core.Dialect) bool {
	return defaultRegistry.IsRegistered(d)
}

// ListAdapters returns all dialects in the default registry (sorted).
func ListAdapters() []string {
	return defaultRegistry.List()
}

// Register adds or replaces the factory for a dialect.
func (r *Registry) Register(d core.Dialect, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[d] = factory
}

// Get retrieves the factory for a dialect.
func (r *Registry) Get(d core.Dialect) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[d]
	return f, ok
}

// IsRegistered checks if a dialect has a factory.
func (r *Registry) IsRegistered(d core.Dialect) bool {
	_, ok := r.Get(d)
	return ok
}

// List returns all registered dialect names (sorted).
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for d := range r.factories {
		names = append(names, d.String())
	}
	sort.Strings(names)
	return names
}

// Schemes returns the URI prefixes whose dialect has a registered adapter.
func (r *Registry) Schemes() []string {
	var out []string
	for _, prefix := range core.SupportedSchemes() {
		d, err := core.DialectFromURI(prefix)
		if err == nil && r.IsRegistered(d) {
			out = append(out, prefix)
		}
	}
	return out
}

// Resolve returns a fresh, unconnected adapter for the target. The dialect is
// derived from the URI when the target does not carry one yet.
func (r *Registry) Resolve(t core.Target, logger *slog.Logger) (Adapter, error) {
	d := t.Dialect
	if d == "" {
		var err error
		if d, err = core.DialectFromURI(t.URI); err != nil {
			return nil, withTarget(err, t.Name, r.Schemes())
		}
	}

	factory, ok := r.Get(d)
	if !ok {
		return nil, &core.UnsupportedBackendError{
			Target:    t.Name,
			Scheme:    d.String(),
			Supported: r.Schemes(),
		}
	}

	a := factory(logger)
	if a == nil {
		return nil, fmt.Errorf("adapter factory for %s returned nil", d)
	}
	return a, nil
}

func withTarget(err error, name string, supported []string) error {
	var ube *core.UnsupportedBackendError
	if errors.As(err, &ube) {
		ube.Target = name
		ube.Supported = supported
	}
	return err
}
