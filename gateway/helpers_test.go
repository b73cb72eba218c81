package gateway

import (
	"sync"
	"sync/atomic"
)

// countingPublisher records every call made to it.
type countingPublisher struct {
	enabled   bool
	threshold Ticks
	clock     atomic.Int64
	step      Ticks

	enabledCalls   atomic.Int64
	timestampCalls atomic.Int64
	shouldCalls    atomic.Int64

	mu     sync.Mutex
	events []Event
	panics bool
}

func newCountingPublisher(enabled bool, threshold Ticks) *countingPublisher {
	return &countingPublisher{enabled: enabled, threshold: threshold, step: 1}
}

func (p *countingPublisher) Enabled() bool {
	p.enabledCalls.Add(1)
	return p.enabled
}

func (p *countingPublisher) Timestamp() Ticks {
	p.timestampCalls.Add(1)
	return Ticks(p.clock.Add(int64(p.step)))
}

func (p *countingPublisher) ShouldCommit(d Ticks) bool {
	p.shouldCalls.Add(1)
	return p.enabled && d >= p.threshold
}

func (p *countingPublisher) Commit(ev Event) {
	if p.panics {
		panic("sink exploded")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *countingPublisher) committed() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.events...)
}

// fakeGateway hands out one publisher per kind.
type fakeGateway struct {
	read, write, send, receive Publisher
}

func (g fakeGateway) SocketRead() Publisher      { return g.read }
func (g fakeGateway) SocketWrite() Publisher     { return g.write }
func (g fakeGateway) DatagramSend() Publisher    { return g.send }
func (g fakeGateway) DatagramReceive() Publisher { return g.receive }

func allKindsGateway(p Publisher) fakeGateway {
	return fakeGateway{read: p, write: p, send: p, receive: p}
}

type stubConfig struct {
	provider string
	events   string
}

func (c stubConfig) GetProvider() string { return c.provider }
func (c stubConfig) GetEvents() string   { return c.events }
