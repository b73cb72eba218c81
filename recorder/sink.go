package recorder

import (
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/drblury/netflight/gateway"
	"github.com/drblury/netflight/internal/cloudevents"
)

// Record is one committed event as seen by sinks.
type Record struct {
	Kind  gateway.Kind
	Event gateway.Event
	// Time is the wall-clock start of the operation.
	Time     time.Time
	Provider string
}

// Duration returns the operation duration.
func (r Record) Duration() time.Duration { return time.Duration(r.Event.Duration) }

// Endpoint formats the remote endpoint as host/address:port. The host part
// is omitted when empty and the port when 0.
func (r Record) Endpoint() string {
	ep := r.Event.Address
	if r.Event.Port != 0 {
		ep = net.JoinHostPort(ep, strconv.Itoa(r.Event.Port))
	}
	if r.Event.Host != "" {
		ep = r.Event.Host + "/" + ep
	}
	return ep
}

// Data returns the event as a flat map usable by every envelope encoding.
func (r Record) Data() map[string]any {
	data := map[string]any{
		"kind":       r.Kind.String(),
		"start":      cloudevents.FormatTime(r.Time),
		"durationNs": int64(r.Event.Duration),
		"address":    r.Event.Address,
		"port":       r.Event.Port,
		"bytes":      r.Event.Bytes,
	}
	if r.Event.Host != "" {
		data["host"] = r.Event.Host
	}
	if r.Kind.IsRead() {
		data["endOfStream"] = r.Event.EndOfStream
	}
	if r.Event.Timeout > 0 {
		data["timeoutNs"] = int64(r.Event.Timeout)
	}
	if r.Event.Err != "" {
		data["error"] = r.Event.Err
	}
	return data
}

// Sink receives committed events. Record is called synchronously on the
// goroutine that performed the I/O and must be safe for concurrent use.
type Sink interface {
	Record(Record) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Record) error

// Record implements Sink.
func (f SinkFunc) Record(r Record) error { return f(r) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(Record) error { return nil })

// LogSink writes every event as an info entry.
type LogSink struct {
	logger watermill.LoggerAdapter
}

// NewLogSink creates a LogSink. A nil logger discards.
func NewLogSink(logger watermill.LoggerAdapter) *LogSink {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &LogSink{logger: logger}
}

// Record implements Sink.
func (l *LogSink) Record(r Record) error {
	fields := watermill.LogFields{
		"kind":     r.Kind.String(),
		"endpoint": r.Endpoint(),
		"bytes":    r.Event.Bytes,
		"duration": r.Duration().String(),
	}
	if r.Kind.IsRead() && r.Event.EndOfStream {
		fields["end_of_stream"] = true
	}
	if r.Event.Err != "" {
		fields["error"] = r.Event.Err
	}
	l.logger.Info("Network event", fields)
	return nil
}

// Memory keeps the most recent events in a ring buffer.
type Memory struct {
	mu    sync.Mutex
	buf   []Record
	next  int
	full  bool
	total uint64
}

// DefaultMemoryCapacity is used when NewMemory is given a capacity below 1.
const DefaultMemoryCapacity = 128

// NewMemory creates a Memory sink holding at most capacity events.
func NewMemory(capacity int) *Memory {
	if capacity < 1 {
		capacity = DefaultMemoryCapacity
	}
	return &Memory{buf: make([]Record, capacity)}
}

// Record implements Sink.
func (m *Memory) Record(r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buf[m.next] = r
	m.next++
	if m.next == len(m.buf) {
		m.next = 0
		m.full = true
	}
	m.total++
	return nil
}

// Records returns the retained events, oldest first.
func (m *Memory) Records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.full {
		return append([]Record(nil), m.buf[:m.next]...)
	}
	out := make([]Record, 0, len(m.buf))
	out = append(out, m.buf[m.next:]...)
	return append(out, m.buf[:m.next]...)
}

// Total returns the number of events ever recorded.
func (m *Memory) Total() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total
}

// Reset drops every retained event.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.buf)
	m.next, m.full, m.total = 0, false, 0
}
