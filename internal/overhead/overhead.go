// Package overhead measures the cost the instrumentation adds to a write on
// a connection that does no work of its own.
package overhead

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/drblury/netflight/gateway"
	nferrors "github.com/drblury/netflight/internal/errors"
	"github.com/drblury/netflight/netio"
	"github.com/drblury/netflight/recorder"
)

// Scenario is one backend configuration to measure.
type Scenario struct {
	Name    string
	Locator *gateway.Locator
}

// Scenario names in the order Scenarios returns them.
const (
	Absent   = "backend-absent"
	Disabled = "kind-disabled"
	Filtered = "filtered-by-threshold"
	Emitted  = "emitted"
)

// FilterThreshold is the threshold of the Filtered scenario; no write on a
// DiscardConn takes that long.
const FilterThreshold = time.Second

// Scenarios returns the four configurations: no backend, a backend with the
// socket-write kind disabled, enabled but below the threshold, and enabled
// with every event committed to a discarding sink.
func Scenarios() []Scenario {
	return []Scenario{
		{Name: Absent, Locator: locatorFor(nil)},
		{Name: Disabled, Locator: locatorFor(recorder.New())},
		{Name: Filtered, Locator: locatorFor(recorder.New(
			recorder.WithSettings(map[gateway.Kind]recorder.Setting{
				gateway.SocketWrite: {Enabled: true, Threshold: FilterThreshold},
			}),
		))},
		{Name: Emitted, Locator: locatorFor(recorder.New(
			recorder.WithSink(recorder.Discard),
			recorder.WithSettings(map[gateway.Kind]recorder.Setting{
				gateway.SocketWrite: {Enabled: true},
			}),
		))},
	}
}

func locatorFor(rec *recorder.Recorder) *gateway.Locator {
	return gateway.NewLocator(
		gateway.WithBootCheck(func() bool { return true }),
		gateway.WithDiscoverer(func(context.Context) (*gateway.Binding, error) {
			if rec == nil {
				return nil, nferrors.ErrNoProvider
			}
			return gateway.NewBinding(rec.Name(), rec), nil
		}),
	)
}

// Benchmark returns a benchmark writing payload once per iteration through
// a wrapped DiscardConn.
func Benchmark(s Scenario, payload []byte) func(b *testing.B) {
	return func(b *testing.B) {
		conn := netio.Wrap(NewDiscardConn(), netio.WithBinder(s.Locator))
		b.ReportAllocs()
		b.SetBytes(int64(len(payload)))
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := conn.Write(payload); err != nil {
				b.Fatal(err)
			}
		}
	}
}

// DiscardConn is a net.Conn whose writes succeed immediately and whose reads
// return end of stream.
type DiscardConn struct {
	local, remote net.Addr
}

// NewDiscardConn creates a DiscardConn connected to 192.0.2.1:9.
func NewDiscardConn() *DiscardConn {
	return &DiscardConn{
		local:  &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 40000},
		remote: &net.TCPAddr{IP: net.IPv4(192, 0, 2, 1), Port: 9},
	}
}

func (c *DiscardConn) Read([]byte) (int, error)         { return 0, io.EOF }
func (c *DiscardConn) Write(b []byte) (int, error)      { return len(b), nil }
func (c *DiscardConn) Close() error                     { return nil }
func (c *DiscardConn) LocalAddr() net.Addr              { return c.local }
func (c *DiscardConn) RemoteAddr() net.Addr             { return c.remote }
func (c *DiscardConn) SetDeadline(time.Time) error      { return nil }
func (c *DiscardConn) SetReadDeadline(time.Time) error  { return nil }
func (c *DiscardConn) SetWriteDeadline(time.Time) error { return nil }
