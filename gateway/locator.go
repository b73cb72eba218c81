package gateway

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	nferrors "github.com/drblury/netflight/internal/errors"
	"github.com/drblury/netflight/internal/logging"
)

// Discoverer produces the binding a locator caches. It runs at most once per
// locator.
type Discoverer func(ctx context.Context) (*Binding, error)

// Locator resolves the process binding lazily. Lookups before boot return the
// stub without caching it; the first lookup after boot runs discovery exactly
// once and caches the result, falling back to the stub on any failure. A
// cached concrete binding is never replaced.
type Locator struct {
	resolved atomic.Pointer[Binding]
	mu       sync.Mutex

	discover Discoverer
	booted   func() bool
}

// Option configures a Locator.
type Option func(*Locator)

// WithDiscoverer replaces registry based discovery.
func WithDiscoverer(d Discoverer) Option {
	return func(l *Locator) {
		if d != nil {
			l.discover = d
		}
	}
}

// WithRegistry discovers through r using cfg.
func WithRegistry(r *Registry, cfg Config) Option {
	return func(l *Locator) {
		if r != nil {
			l.discover = registryDiscoverer(r, func() Config { return cfg })
		}
	}
}

// WithBootCheck replaces the process boot flag.
func WithBootCheck(booted func() bool) Option {
	return func(l *Locator) {
		if booted != nil {
			l.booted = booted
		}
	}
}

// NewLocator creates a locator. Without options it discovers through
// DefaultRegistry with the config passed to Boot and waits for MarkBooted.
func NewLocator(opts ...Option) *Locator {
	l := &Locator{
		discover: registryDiscoverer(DefaultRegistry, bootConfig),
		booted:   Booted,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func registryDiscoverer(r *Registry, cfg func() Config) Discoverer {
	return func(ctx context.Context) (*Binding, error) {
		return r.Discover(ctx, cfg(), logging.NewWatermillAdapter(serviceLogger()))
	}
}

// Lookup returns the binding to publish through. It never fails and never
// blocks once a binding is cached.
func (l *Locator) Lookup() *Binding {
	if b := l.resolved.Load(); b != nil {
		return b
	}
	if !l.booted() {
		return StubBinding
	}
	return l.resolve()
}

func (l *Locator) resolve() *Binding {
	l.mu.Lock()
	defer l.mu.Unlock()

	if b := l.resolved.Load(); b != nil {
		return b
	}
	b := l.runDiscovery()
	l.resolved.Store(b)
	return b
}

func (l *Locator) runDiscovery() (b *Binding) {
	log := serviceLogger()
	defer func() {
		if r := recover(); r != nil {
			log.Error("Gateway discovery panicked, using stub", fmt.Errorf("%v", r), nil)
			b = StubBinding
		}
	}()

	found, err := l.discover(context.Background())
	if err != nil {
		log.Error("Gateway discovery failed, using stub", err, nil)
		return StubBinding
	}
	if found == nil || found.IsStub() {
		log.Info("No gateway provider bound, using stub", nil)
		return StubBinding
	}
	log.Info("Gateway provider bound", logging.LogFields{"provider": found.Name()})
	return found
}

// Install binds b directly, bypassing discovery. It upgrades an unresolved or
// stub locator and returns ErrDowngrade once a concrete binding is cached.
// Installing the stub is a no-op.
func (l *Locator) Install(b *Binding) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	current := l.resolved.Load()
	if current != nil && !current.IsStub() {
		return fmt.Errorf("%w: %q is bound", nferrors.ErrDowngrade, current.Name())
	}
	if b.IsStub() {
		return nil
	}
	l.resolved.Store(b)
	return nil
}

// Resolved returns the cached binding, if any.
func (l *Locator) Resolved() (*Binding, bool) {
	b := l.resolved.Load()
	return b, b != nil
}

var (
	defaultOnce    sync.Once
	defaultLocator atomic.Pointer[Locator]

	booted  atomic.Bool
	bootCfg atomic.Pointer[configHolder]
)

type configHolder struct{ cfg Config }

// Default returns the process locator, creating it on first use.
func Default() *Locator {
	defaultOnce.Do(func() {
		defaultLocator.Store(NewLocator())
	})
	return defaultLocator.Load()
}

// Lookup is Default().Lookup().
func Lookup() *Binding {
	return Default().Lookup()
}

// ResetDefault replaces the process locator. It exists for tests and for
// hosts that need to rebind after reconfiguration.
func ResetDefault(opts ...Option) *Locator {
	defaultOnce.Do(func() {})
	l := NewLocator(opts...)
	defaultLocator.Store(l)
	return l
}

// MarkBooted signals that the host finished initializing and discovery may
// run.
func MarkBooted() { booted.Store(true) }

// Booted reports whether MarkBooted was called.
func Booted() bool { return booted.Load() }

// Boot records the provider config and marks the process booted.
func Boot(cfg Config) {
	bootCfg.Store(&configHolder{cfg: cfg})
	MarkBooted()
}

func bootConfig() Config {
	if h := bootCfg.Load(); h != nil {
		return h.cfg
	}
	return nil
}
