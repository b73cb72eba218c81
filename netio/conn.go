package netio

import (
	"net"
	"time"

	"github.com/drblury/netflight/gateway"
)

// Conn is an instrumented net.Conn. Reads are reported as socket-read and
// writes as socket-write, or datagram-receive and datagram-send when the
// connection runs over a packet network.
type Conn struct {
	net.Conn

	binder    Binder
	readKind  gateway.Kind
	writeKind gateway.Kind
	readDL    deadline
	names     namer
}

// Wrap instruments c. Wrapping an already wrapped Conn returns it unchanged.
func Wrap(c net.Conn, opts ...Option) *Conn {
	if wc, ok := c.(*Conn); ok {
		return wc
	}
	o := newOptions(opts)
	read, write := kindsFor(connNetwork(c))
	return &Conn{Conn: c, binder: o.binder, readKind: read, writeKind: write, names: o.names}
}

// Unwrap returns the underlying connection.
func (c *Conn) Unwrap() net.Conn { return c.Conn }

// Read implements net.Conn.
func (c *Conn) Read(b []byte) (int, error) {
	probe := gateway.Begin(c.binder.Lookup().Publisher(c.readKind))
	if !probe.Active() {
		return c.Conn.Read(b)
	}
	probe = probe.WithTimeout(c.readDL.remaining())

	n, err := c.Conn.Read(b)
	c.names.finish(probe, c.Conn.RemoteAddr(), readOutcome(n, err))
	return n, err
}

// Write implements net.Conn.
func (c *Conn) Write(b []byte) (int, error) {
	probe := gateway.Begin(c.binder.Lookup().Publisher(c.writeKind))
	if !probe.Active() {
		return c.Conn.Write(b)
	}

	n, err := c.Conn.Write(b)
	c.names.finish(probe, c.Conn.RemoteAddr(), writeOutcome(n, err))
	return n, err
}

// SetDeadline implements net.Conn.
func (c *Conn) SetDeadline(t time.Time) error {
	if err := c.Conn.SetDeadline(t); err != nil {
		return err
	}
	c.readDL.set(t)
	return nil
}

// SetReadDeadline implements net.Conn.
func (c *Conn) SetReadDeadline(t time.Time) error {
	if err := c.Conn.SetReadDeadline(t); err != nil {
		return err
	}
	c.readDL.set(t)
	return nil
}
