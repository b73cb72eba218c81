package netio

import (
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/drblury/netflight/gateway"
	"github.com/drblury/netflight/recorder"
)

// staticBinder always returns the same binding.
type staticBinder struct{ b *gateway.Binding }

func (s staticBinder) Lookup() *gateway.Binding { return s.b }

// newRecording returns a binder over a recorder whose every kind is enabled
// with threshold 0, and the memory sink collecting its events.
func newRecording(t *testing.T) (Binder, *recorder.Recorder, *recorder.Memory) {
	t.Helper()
	mem := recorder.NewMemory(64)
	settings := make(map[gateway.Kind]recorder.Setting)
	for _, k := range gateway.Kinds() {
		settings[k] = recorder.Setting{Enabled: true}
	}
	rec := recorder.New(recorder.WithRecent(mem), recorder.WithSettings(settings))
	return staticBinder{b: gateway.NewBinding(rec.Name(), rec)}, rec, mem
}

func disabledBinder() Binder {
	return staticBinder{b: gateway.NewBinding(recorder.ProviderName, recorder.New())}
}

// countingPublisher counts every call made to it.
type countingPublisher struct {
	enabled bool
	calls   atomic.Int64
	other   atomic.Int64

	mu     sync.Mutex
	events []gateway.Event
}

func (p *countingPublisher) Enabled() bool {
	p.calls.Add(1)
	return p.enabled
}

func (p *countingPublisher) Timestamp() gateway.Ticks {
	p.other.Add(1)
	return gateway.Ticks(time.Now().UnixNano())
}

func (p *countingPublisher) ShouldCommit(gateway.Ticks) bool {
	p.other.Add(1)
	return p.enabled
}

func (p *countingPublisher) Commit(ev gateway.Event) {
	p.other.Add(1)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *countingPublisher) committed() []gateway.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]gateway.Event(nil), p.events...)
}

type singleKindGateway struct{ pub gateway.Publisher }

func (g singleKindGateway) SocketRead() gateway.Publisher      { return g.pub }
func (g singleKindGateway) SocketWrite() gateway.Publisher     { return g.pub }
func (g singleKindGateway) DatagramSend() gateway.Publisher    { return g.pub }
func (g singleKindGateway) DatagramReceive() gateway.Publisher { return g.pub }

// tcpPair returns both ends of a loopback TCP connection.
func tcpPair(t *testing.T) (client, server net.Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			close(accepted)
			return
		}
		accepted <- c
	}()

	client, err = net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	server, ok := <-accepted
	require.True(t, ok)

	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return client, server
}

// fakeConn returns fixed results from Read and Write.
type fakeConn struct {
	net.Conn
	n      int
	err    error
	remote net.Addr
}

func (f *fakeConn) Read([]byte) (int, error)  { return f.n, f.err }
func (f *fakeConn) Write([]byte) (int, error) { return f.n, f.err }
func (f *fakeConn) LocalAddr() net.Addr       { return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 1} }
func (f *fakeConn) RemoteAddr() net.Addr      { return f.remote }
