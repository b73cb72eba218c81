package recorder

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/drblury/netflight/gateway"
	"github.com/drblury/netflight/internal/config"
)

// Setting holds the per-kind enabled flag and duration threshold.
type Setting = config.EventSetting

// Clock returns the ticks elapsed since the recorder origin.
type Clock func() gateway.Ticks

type kindState struct {
	enabled   atomic.Bool
	threshold atomic.Int64

	committed atomic.Uint64
	failed    atomic.Uint64
	bytes     atomic.Uint64
}

// Recorder is the built-in backend. It implements gateway.Gateway with one
// publisher per kind and fans committed events out to its sinks.
type Recorder struct {
	name   string
	origin time.Time
	clock  Clock
	logger watermill.LoggerAdapter

	states     []kindState
	publishers []*kindPublisher

	sinksMu sync.RWMutex
	sinks   []Sink

	recent *Memory

	sinkFailures atomic.Uint64
	closers      []func() error
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithName sets the provider name attached to published events.
func WithName(name string) Option {
	return func(r *Recorder) {
		if name != "" {
			r.name = name
		}
	}
}

// WithClock replaces the monotonic clock.
func WithClock(c Clock) Option {
	return func(r *Recorder) {
		if c != nil {
			r.clock = c
		}
	}
}

// WithLogger sets the logger used for sink failures.
func WithLogger(logger watermill.LoggerAdapter) Option {
	return func(r *Recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithSink appends sinks.
func WithSink(sinks ...Sink) Option {
	return func(r *Recorder) {
		for _, s := range sinks {
			if s != nil {
				r.sinks = append(r.sinks, s)
			}
		}
	}
}

// WithRecent attaches m as a sink and exposes it through Recent.
func WithRecent(m *Memory) Option {
	return func(r *Recorder) {
		if m != nil {
			r.recent = m
			r.sinks = append(r.sinks, m)
		}
	}
}

// WithSettings applies initial settings.
func WithSettings(settings map[gateway.Kind]Setting) Option {
	return func(r *Recorder) { r.Apply(settings) }
}

// WithCloser registers a function run by Close, in reverse order of
// registration.
func WithCloser(fn func() error) Option {
	return func(r *Recorder) {
		if fn != nil {
			r.closers = append(r.closers, fn)
		}
	}
}

// New creates a recorder with every kind disabled.
func New(opts ...Option) *Recorder {
	kinds := gateway.Kinds()
	r := &Recorder{
		name:       ProviderName,
		origin:     time.Now(),
		logger:     watermill.NopLogger{},
		states:     make([]kindState, len(kinds)),
		publishers: make([]*kindPublisher, len(kinds)),
	}
	origin := r.origin
	r.clock = func() gateway.Ticks { return gateway.Ticks(time.Since(origin)) }

	for _, k := range kinds {
		r.publishers[k] = &kindPublisher{rec: r, kind: k, state: &r.states[k]}
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the provider name.
func (r *Recorder) Name() string { return r.name }

// Recent returns the memory sink set with WithRecent, or nil.
func (r *Recorder) Recent() *Memory { return r.recent }

// Origin is the wall-clock time tick 0 corresponds to.
func (r *Recorder) Origin() time.Time { return r.origin }

// Configure replaces the setting of one kind. Unknown kinds are ignored.
func (r *Recorder) Configure(kind gateway.Kind, s Setting) {
	if !kind.Valid() {
		return
	}
	st := &r.states[kind]
	st.threshold.Store(int64(s.Threshold))
	st.enabled.Store(s.Enabled)
}

// Apply configures every kind present in settings.
func (r *Recorder) Apply(settings map[gateway.Kind]Setting) {
	for k, s := range settings {
		r.Configure(k, s)
	}
}

// Settings returns the current setting of every kind.
func (r *Recorder) Settings() map[gateway.Kind]Setting {
	out := make(map[gateway.Kind]Setting, len(r.states))
	for _, k := range gateway.Kinds() {
		st := &r.states[k]
		out[k] = Setting{
			Enabled:   st.enabled.Load(),
			Threshold: time.Duration(st.threshold.Load()),
		}
	}
	return out
}

// AddSink attaches a sink at runtime.
func (r *Recorder) AddSink(s Sink) {
	if s == nil {
		return
	}
	r.sinksMu.Lock()
	defer r.sinksMu.Unlock()
	r.sinks = append(r.sinks, s)
}

// SocketRead implements gateway.Gateway.
func (r *Recorder) SocketRead() gateway.Publisher { return r.publishers[gateway.SocketRead] }

// SocketWrite implements gateway.Gateway.
func (r *Recorder) SocketWrite() gateway.Publisher { return r.publishers[gateway.SocketWrite] }

// DatagramSend implements gateway.Gateway.
func (r *Recorder) DatagramSend() gateway.Publisher { return r.publishers[gateway.DatagramSend] }

// DatagramReceive implements gateway.Gateway.
func (r *Recorder) DatagramReceive() gateway.Publisher {
	return r.publishers[gateway.DatagramReceive]
}

// Publisher returns the publisher for kind, nil for unknown kinds.
func (r *Recorder) Publisher(kind gateway.Kind) gateway.Publisher {
	if !kind.Valid() {
		return nil
	}
	return r.publishers[kind]
}

func (r *Recorder) record(kind gateway.Kind, ev gateway.Event) {
	st := &r.states[kind]
	st.committed.Add(1)
	if ev.Failed() {
		st.failed.Add(1)
	}
	st.bytes.Add(uint64(ev.Bytes))

	rec := Record{
		Kind:     kind,
		Event:    ev,
		Time:     r.origin.Add(time.Duration(ev.Start)),
		Provider: r.name,
	}

	r.sinksMu.RLock()
	sinks := r.sinks
	r.sinksMu.RUnlock()

	for _, s := range sinks {
		r.deliver(s, rec)
	}
}

func (r *Recorder) deliver(s Sink, rec Record) {
	defer func() {
		if p := recover(); p != nil {
			r.sinkFailures.Add(1)
			r.logger.Error("Sink panicked", nil, watermill.LogFields{
				"kind":  rec.Kind.String(),
				"panic": p,
			})
		}
	}()
	if err := s.Record(rec); err != nil {
		r.sinkFailures.Add(1)
		r.logger.Error("Sink failed to record event", err, watermill.LogFields{
			"kind": rec.Kind.String(),
		})
	}
}

// Close closes every sink that has a Close method, then runs the registered
// closers. All errors are returned joined.
func (r *Recorder) Close() error {
	r.sinksMu.Lock()
	sinks := r.sinks
	r.sinks = nil
	closers := r.closers
	r.closers = nil
	r.sinksMu.Unlock()

	var errs []error
	for _, s := range sinks {
		if c, ok := s.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
