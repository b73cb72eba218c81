package netio

import (
	"context"
	"net"
)

// Listener wraps every accepted connection with Wrap.
type Listener struct {
	net.Listener
	opts []Option
}

// WrapListener instruments the connections accepted by l.
func WrapListener(l net.Listener, opts ...Option) *Listener {
	return &Listener{Listener: l, opts: opts}
}

// Accept implements net.Listener.
func (l *Listener) Accept() (net.Conn, error) {
	c, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	return Wrap(c, l.opts...), nil
}

// Dial connects to address and wraps the connection.
func Dial(network, address string, opts ...Option) (*Conn, error) {
	return DialContext(context.Background(), network, address, opts...)
}

// DialContext connects to address using ctx and wraps the connection.
func DialContext(ctx context.Context, network, address string, opts ...Option) (*Conn, error) {
	o := newOptions(opts)
	c, err := o.dialer.DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}
	return Wrap(c, opts...), nil
}

// Listen announces on the local address and wraps accepted connections.
func Listen(network, address string, opts ...Option) (*Listener, error) {
	o := newOptions(opts)
	l, err := o.lc.Listen(context.Background(), network, address)
	if err != nil {
		return nil, err
	}
	return WrapListener(l, opts...), nil
}

// ListenPacket announces on the local address and wraps the packet
// connection.
func ListenPacket(network, address string, opts ...Option) (*PacketConn, error) {
	o := newOptions(opts)
	c, err := o.lc.ListenPacket(context.Background(), network, address)
	if err != nil {
		return nil, err
	}
	return WrapPacketConn(c, opts...), nil
}
