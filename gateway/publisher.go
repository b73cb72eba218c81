package gateway

// Publisher is the per-kind capability a backend hands out. Implementations
// are shared by every goroutine performing I/O and must be safe for
// concurrent use.
//
// Enabled is called on every instrumented operation and must not allocate,
// block or perform I/O. When it returns false no other method is called for
// that operation.
type Publisher interface {
	Enabled() bool
	// Timestamp returns a monotonic, non-decreasing tick count.
	Timestamp() Ticks
	// ShouldCommit is the second-stage filter applied once the operation
	// finished and its duration is known.
	ShouldCommit(duration Ticks) bool
	// Commit records one event synchronously on the calling goroutine.
	// Panics are recovered by the gateway.
	Commit(ev Event)
}

// Gateway is implemented by backends. Each method returns the publisher for
// one kind; nil means the kind is not supported and maps to Stub.
type Gateway interface {
	SocketRead() Publisher
	SocketWrite() Publisher
	DatagramSend() Publisher
	DatagramReceive() Publisher
}

type stubPublisher struct{}

func (stubPublisher) Enabled() bool           { return false }
func (stubPublisher) Timestamp() Ticks        { return 0 }
func (stubPublisher) ShouldCommit(Ticks) bool { return false }
func (stubPublisher) Commit(Event)            {}
func (stubPublisher) String() string          { return "stub" }
func (stubPublisher) isStub() bool            { return true }

// Stub is the publisher used when no backend is bound. It is never enabled.
var Stub Publisher = stubPublisher{}

// IsStub reports whether p is the stub publisher.
func IsStub(p Publisher) bool {
	s, ok := p.(interface{ isStub() bool })
	return ok && s.isStub()
}

// Binding maps every kind to its publisher. A binding is immutable once built.
type Binding struct {
	name       string
	stub       bool
	publishers [kindCount]Publisher
}

// StubBinding is the binding every locator falls back to.
var StubBinding = newStubBinding()

func newStubBinding() *Binding {
	b := &Binding{name: "stub", stub: true}
	for i := range b.publishers {
		b.publishers[i] = Stub
	}
	return b
}

// NewBinding snapshots the publishers of g. A nil gateway yields the stub
// binding.
func NewBinding(name string, g Gateway) *Binding {
	if g == nil {
		return StubBinding
	}
	b := &Binding{name: name}
	b.publishers[SocketRead] = orStub(g.SocketRead())
	b.publishers[SocketWrite] = orStub(g.SocketWrite())
	b.publishers[DatagramSend] = orStub(g.DatagramSend())
	b.publishers[DatagramReceive] = orStub(g.DatagramReceive())
	return b
}

func orStub(p Publisher) Publisher {
	if p == nil {
		return Stub
	}
	return p
}

// Name returns the provider name the binding was built from.
func (b *Binding) Name() string { return b.name }

// IsStub reports whether the binding is the no-op fallback.
func (b *Binding) IsStub() bool { return b == nil || b.stub }

// Publisher returns the publisher for kind. Unknown kinds map to Stub.
func (b *Binding) Publisher(kind Kind) Publisher {
	if b == nil || kind >= kindCount {
		return Stub
	}
	return b.publishers[kind]
}

func (b *Binding) SocketRead() Publisher      { return b.Publisher(SocketRead) }
func (b *Binding) SocketWrite() Publisher     { return b.Publisher(SocketWrite) }
func (b *Binding) DatagramSend() Publisher    { return b.Publisher(DatagramSend) }
func (b *Binding) DatagramReceive() Publisher { return b.Publisher(DatagramReceive) }
