package gateway

import (
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/drblury/netflight/internal/logging"
)

// Outcome is the classified result of one I/O operation.
type Outcome struct {
	bytes       int64
	endOfStream bool
	err         error
}

// Completed is a successful transfer of n bytes.
func Completed(n int) Outcome {
	return Outcome{bytes: clampBytes(n)}
}

// EndOfStream is a read that hit the end of the stream after n bytes.
func EndOfStream(n int) Outcome {
	return Outcome{bytes: clampBytes(n), endOfStream: true}
}

// Failed is an operation that returned err. Failed operations always report
// zero bytes.
func Failed(err error) Outcome {
	return Outcome{err: err}
}

func clampBytes(n int) int64 {
	if n < 0 {
		return 0
	}
	return int64(n)
}

// Bytes returns the transferred byte count.
func (o Outcome) Bytes() int64 { return o.bytes }

// Err returns the failure, nil on success.
func (o Outcome) Err() error { return o.err }

// Probe carries the state of one instrumented operation from submission to
// completion. The zero Probe is inactive and every method on it is a no-op.
type Probe struct {
	pub     Publisher
	start   Ticks
	timeout time.Duration
}

// Begin starts measuring an operation. When p is disabled the returned probe
// is inactive and the clock is never read.
func Begin(p Publisher) Probe {
	if p == nil || !p.Enabled() {
		return Probe{}
	}
	return Probe{pub: p, start: p.Timestamp()}
}

// Active reports whether the probe will consult its publisher on Finish.
func (p Probe) Active() bool { return p.pub != nil }

// Start returns the timestamp captured by Begin.
func (p Probe) Start() Ticks { return p.start }

// WithTimeout attaches the read deadline remaining at start.
func (p Probe) WithTimeout(d time.Duration) Probe {
	if d > 0 {
		p.timeout = d
	}
	return p
}

// Finish completes the measurement against a known remote address.
func (p Probe) Finish(addr net.Addr, o Outcome) {
	if p.pub == nil {
		return
	}
	duration, ok := p.filter()
	if !ok {
		return
	}
	p.commit(duration, addr, o)
}

// FinishResolve is Finish for callers whose remote address is only worth
// computing once the event passed the threshold. A resolve error skips the
// commit.
func (p Probe) FinishResolve(resolve func() (net.Addr, error), o Outcome) {
	if p.pub == nil {
		return
	}
	duration, ok := p.filter()
	if !ok {
		return
	}
	addr, err := resolve()
	if err != nil {
		return
	}
	p.commit(duration, addr, o)
}

func (p Probe) filter() (Ticks, bool) {
	duration := p.pub.Timestamp() - p.start
	if duration < 0 {
		duration = 0
	}
	return duration, p.pub.ShouldCommit(duration)
}

func (p Probe) commit(duration Ticks, addr net.Addr, o Outcome) {
	ep, ok := Describe(addr)
	if !ok {
		return
	}
	ev := Event{
		Start:       p.start,
		Duration:    duration,
		Host:        ep.Host,
		Address:     ep.Address,
		Port:        ep.Port,
		Bytes:       o.bytes,
		EndOfStream: o.endOfStream,
		Timeout:     p.timeout,
	}
	if o.err != nil {
		ev.Bytes = 0
		ev.EndOfStream = false
		ev.Err = o.err.Error()
	}
	safeCommit(p.pub, ev)
}

var commitFailures atomic.Uint64

// CommitFailures returns how many commits panicked since process start.
func CommitFailures() uint64 { return commitFailures.Load() }

func safeCommit(pub Publisher, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			commitFailures.Add(1)
			commitLogger().Error("Event commit panicked", fmt.Errorf("%v", r), logging.LogFields{
				"publisher": fmt.Sprintf("%T", pub),
				"address":   ev.Address,
			})
		}
	}()
	pub.Commit(ev)
}
