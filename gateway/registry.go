package gateway

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ThreeDotsLabs/watermill"

	nferrors "github.com/drblury/netflight/internal/errors"
)

// Config provides the values the registry needs to pick and build a
// provider. Builders may type-assert it to richer interfaces.
type Config interface {
	// GetProvider names the provider to build. Empty selects the only
	// registered one.
	GetProvider() string
	// GetEvents returns the per-kind settings string.
	GetEvents() string
}

// Builder creates a backend from config. Provider packages register one from
// their init function.
type Builder func(ctx context.Context, cfg Config, logger watermill.LoggerAdapter) (Gateway, error)

// Registry maintains a mapping of provider names to their builders.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// DefaultRegistry is the process-wide provider registry.
var DefaultRegistry = NewRegistry()

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]Builder)}
}

// Register adds a provider builder. Registering the same name twice replaces
// the earlier builder.
func (r *Registry) Register(name string, builder Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[name] = builder
}

// Unregister removes a provider.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.builders, name)
}

// Names returns the registered provider names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has returns true if a provider is registered with the given name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.builders[name]
	return ok
}

// Discover selects a provider and builds its binding. The provider named by
// cfg wins; without a name exactly one provider must be registered.
func (r *Registry) Discover(ctx context.Context, cfg Config, logger watermill.LoggerAdapter) (*Binding, error) {
	name, builder, err := r.selectBuilder(cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	g, err := builder(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("build provider %q: %w", name, err)
	}
	if g == nil {
		return nil, fmt.Errorf("build provider %q: %w", name, nferrors.ErrProviderRequired)
	}
	return NewBinding(name, g), nil
}

func (r *Registry) selectBuilder(cfg Config) (string, Builder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if cfg != nil {
		if name := cfg.GetProvider(); name != "" {
			builder, ok := r.builders[name]
			if !ok {
				return "", nil, fmt.Errorf("%w: %q", nferrors.ErrUnknownProvider, name)
			}
			return name, builder, nil
		}
	}

	switch len(r.builders) {
	case 0:
		return "", nil, nferrors.ErrNoProvider
	case 1:
		for name, builder := range r.builders {
			return name, builder, nil
		}
	}

	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return "", nil, fmt.Errorf("%w: %v", nferrors.ErrAmbiguousProvider, names)
}

// Register adds a provider builder to the default registry.
func Register(name string, builder Builder) {
	DefaultRegistry.Register(name, builder)
}
