package netio

import (
	"net"
	"time"

	"github.com/drblury/netflight/gateway"
)

// unknownPeer stands in for the source of a receive that failed before a
// datagram arrived.
var unknownPeer net.Addr = &gateway.InetAddr{}

// PacketConn is an instrumented net.PacketConn. ReadFrom is reported as
// datagram-receive and WriteTo as datagram-send.
type PacketConn struct {
	net.PacketConn

	binder Binder
	readDL deadline
	names  namer
}

// WrapPacketConn instruments c. Wrapping an already wrapped PacketConn
// returns it unchanged.
func WrapPacketConn(c net.PacketConn, opts ...Option) *PacketConn {
	if wc, ok := c.(*PacketConn); ok {
		return wc
	}
	o := newOptions(opts)
	return &PacketConn{PacketConn: c, binder: o.binder, names: o.names}
}

// Unwrap returns the underlying connection.
func (c *PacketConn) Unwrap() net.PacketConn { return c.PacketConn }

// ReadFrom implements net.PacketConn.
func (c *PacketConn) ReadFrom(b []byte) (int, net.Addr, error) {
	probe := gateway.Begin(c.binder.Lookup().DatagramReceive())
	if !probe.Active() {
		return c.PacketConn.ReadFrom(b)
	}
	probe = probe.WithTimeout(c.readDL.remaining())

	n, addr, err := c.PacketConn.ReadFrom(b)
	peer := addr
	if err != nil && peer == nil {
		peer = unknownPeer
	}
	c.names.finish(probe, peer, readOutcome(n, err))
	return n, addr, err
}

// WriteTo implements net.PacketConn.
func (c *PacketConn) WriteTo(b []byte, addr net.Addr) (int, error) {
	probe := gateway.Begin(c.binder.Lookup().DatagramSend())
	if !probe.Active() {
		return c.PacketConn.WriteTo(b, addr)
	}

	n, err := c.PacketConn.WriteTo(b, addr)
	c.names.finish(probe, addr, writeOutcome(n, err))
	return n, err
}

// SetDeadline implements net.PacketConn.
func (c *PacketConn) SetDeadline(t time.Time) error {
	if err := c.PacketConn.SetDeadline(t); err != nil {
		return err
	}
	c.readDL.set(t)
	return nil
}

// SetReadDeadline implements net.PacketConn.
func (c *PacketConn) SetReadDeadline(t time.Time) error {
	if err := c.PacketConn.SetReadDeadline(t); err != nil {
		return err
	}
	c.readDL.set(t)
	return nil
}
