package netio

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/drblury/netflight/gateway"
)

// Binder yields the binding consulted on every operation.
// *gateway.Locator implements it.
type Binder interface {
	Lookup() *gateway.Binding
}

type defaultBinder struct{}

func (defaultBinder) Lookup() *gateway.Binding { return gateway.Lookup() }

type options struct {
	binder Binder
	dialer *net.Dialer
	lc     *net.ListenConfig
	names  namer
}

// Option configures wrapped connections.
type Option func(*options)

// WithBinder replaces the process locator. The binding is still looked up
// per operation, so a backend bound after the connection was created is
// picked up.
func WithBinder(b Binder) Option {
	return func(o *options) {
		if b != nil {
			o.binder = b
		}
	}
}

// WithDialer sets the dialer used by Dial and DialContext.
func WithDialer(d *net.Dialer) Option {
	return func(o *options) {
		if d != nil {
			o.dialer = d
		}
	}
}

// WithListenConfig sets the config used by Listen and ListenPacket.
func WithListenConfig(lc *net.ListenConfig) Option {
	return func(o *options) {
		if lc != nil {
			o.lc = lc
		}
	}
}

// WithReverseLookup reports the reverse resolved name of IP peers as the
// event host. The lookup runs only for events that are committed. A nil
// resolver uses net.DefaultResolver.
func WithReverseLookup(r *net.Resolver) Option {
	return func(o *options) {
		if r == nil {
			r = net.DefaultResolver
		}
		o.names = namer{resolver: r}
	}
}

// reverseLookupTimeout bounds one reverse lookup.
const reverseLookupTimeout = time.Second

// namer finishes probes, optionally naming IP peers first.
type namer struct {
	resolver *net.Resolver
}

func (nm namer) finish(probe gateway.Probe, addr net.Addr, o gateway.Outcome) {
	if nm.resolver == nil {
		probe.Finish(addr, o)
		return
	}
	probe.FinishResolve(func() (net.Addr, error) { return nm.name(addr) }, o)
}

// name resolves IP addresses into a named InetAddr. Other addresses are
// returned as they are.
func (nm namer) name(addr net.Addr) (net.Addr, error) {
	if nm.resolver == nil {
		return addr, nil
	}
	switch addr.(type) {
	case *net.TCPAddr, *net.UDPAddr, *net.IPAddr:
	default:
		return addr, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), reverseLookupTimeout)
	defer cancel()
	return gateway.ResolveInetAddr(ctx, nm.resolver, addr)
}

func newOptions(opts []Option) options {
	o := options{binder: defaultBinder{}, dialer: &net.Dialer{}, lc: &net.ListenConfig{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// kindsFor picks the read and write kinds for a connection on network.
func kindsFor(network string) (read, write gateway.Kind) {
	if isPacketNetwork(network) {
		return gateway.DatagramReceive, gateway.DatagramSend
	}
	return gateway.SocketRead, gateway.SocketWrite
}

func isPacketNetwork(network string) bool {
	switch network {
	case "udp", "udp4", "udp6", "unixgram", "ip", "ip4", "ip6":
		return true
	}
	return strings.HasPrefix(network, "ip:") || strings.HasPrefix(network, "ip4:") || strings.HasPrefix(network, "ip6:")
}

func connNetwork(c net.Conn) string {
	if a := c.LocalAddr(); a != nil {
		return a.Network()
	}
	if a := c.RemoteAddr(); a != nil {
		return a.Network()
	}
	return ""
}
