package netio

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/drblury/netflight/gateway"
)

// CompletionHandler receives the result of an asynchronous operation.
// Exactly one of its methods is called, exactly once, on the completion
// goroutine.
type CompletionHandler interface {
	Completed(n int, attachment any)
	Failed(err error, attachment any)
}

// CompletionFuncs adapts two functions to CompletionHandler. Nil functions
// are skipped.
type CompletionFuncs struct {
	OnCompleted func(n int, attachment any)
	OnFailed    func(err error, attachment any)
}

// Completed implements CompletionHandler.
func (f CompletionFuncs) Completed(n int, attachment any) {
	if f.OnCompleted != nil {
		f.OnCompleted(n, attachment)
	}
}

// Failed implements CompletionHandler.
func (f CompletionFuncs) Failed(err error, attachment any) {
	if f.OnFailed != nil {
		f.OnFailed(err, attachment)
	}
}

// Future is resolved once the handler of an asynchronous operation returned.
type Future struct {
	done chan struct{}
	n    int
	err  error
}

func newFuture() *Future { return &Future{done: make(chan struct{})} }

// Done is closed when the operation completed and its handler returned.
func (f *Future) Done() <-chan struct{} { return f.done }

// Result returns the outcome. It must only be called after Done is closed.
func (f *Future) Result() (int, error) { return f.n, f.err }

// Wait blocks until the operation completed or ctx is done.
func (f *Future) Wait(ctx context.Context) (int, error) {
	select {
	case <-f.done:
		return f.n, f.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// opQueue orders the operations of one direction. Each submission waits for
// the previous one to finish before it touches the connection.
type opQueue struct {
	mu   sync.Mutex
	tail chan struct{}
}

// enqueue returns the channel to wait on, nil for the first submission, and
// the channel to close once the operation finished.
func (q *opQueue) enqueue() (prev <-chan struct{}, done chan struct{}) {
	done = make(chan struct{})
	q.mu.Lock()
	defer q.mu.Unlock()
	prev, q.tail = q.tail, done
	return prev, done
}

// AsyncConn performs completion-based reads and writes on a connection. At
// most one read and one write run at a time and each direction runs its
// operations in submission order. AsyncConn manages the deadlines of the
// connection and callers must not set them directly.
type AsyncConn struct {
	conn      net.Conn
	binder    Binder
	readKind  gateway.Kind
	writeKind gateway.Kind

	names  namer
	reads  opQueue
	writes opQueue
}

// NewAsyncConn wraps c.
func NewAsyncConn(c net.Conn, opts ...Option) *AsyncConn {
	if wc, ok := c.(*Conn); ok {
		c = wc.Unwrap()
	}
	o := newOptions(opts)
	read, write := kindsFor(connNetwork(c))
	return &AsyncConn{conn: c, binder: o.binder, readKind: read, writeKind: write, names: o.names}
}

// Conn returns the underlying connection.
func (a *AsyncConn) Conn() net.Conn { return a.conn }

// Close closes the underlying connection, failing pending operations.
func (a *AsyncConn) Close() error { return a.conn.Close() }

// ReadAsync reads into buf. The start of the operation is measured at
// submission and the deadline of ctx is reported as the read timeout.
// Cancelling ctx interrupts the read and fails it with ctx.Err().
func (a *AsyncConn) ReadAsync(ctx context.Context, buf []byte, attachment any, handler CompletionHandler) *Future {
	probe := gateway.Begin(a.binder.Lookup().Publisher(a.readKind))
	if probe.Active() {
		if dl, ok := ctx.Deadline(); ok {
			probe = probe.WithTimeout(time.Until(dl))
		}
	}
	f := newFuture()
	prev, done := a.reads.enqueue()
	go a.run(ctx, prev, done, a.conn.SetReadDeadline, func() (int, error) {
		return a.conn.Read(buf)
	}, readOutcome, probe, f, attachment, handler)
	return f
}

// WriteAsync writes buf. Cancellation behaves as for ReadAsync.
func (a *AsyncConn) WriteAsync(ctx context.Context, buf []byte, attachment any, handler CompletionHandler) *Future {
	probe := gateway.Begin(a.binder.Lookup().Publisher(a.writeKind))
	f := newFuture()
	prev, done := a.writes.enqueue()
	go a.run(ctx, prev, done, a.conn.SetWriteDeadline, func() (int, error) {
		return a.conn.Write(buf)
	}, writeOutcome, probe, f, attachment, handler)
	return f
}

var pastDeadline = time.Unix(1, 0)

func (a *AsyncConn) run(
	ctx context.Context,
	prev <-chan struct{},
	done chan struct{},
	setDeadline func(time.Time) error,
	op func() (int, error),
	classify func(int, error) gateway.Outcome,
	probe gateway.Probe,
	f *Future,
	attachment any,
	handler CompletionHandler,
) {
	defer close(f.done)

	if prev != nil {
		<-prev
	}
	n, err := a.perform(ctx, setDeadline, op)
	close(done)

	probe.FinishResolve(a.remoteAddr, classify(n, err))

	f.n, f.err = n, err
	if handler == nil {
		return
	}
	if err != nil {
		handler.Failed(err, attachment)
		return
	}
	handler.Completed(n, attachment)
}

func (a *AsyncConn) perform(ctx context.Context, setDeadline func(time.Time) error, op func() (int, error)) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	_ = setDeadline(time.Time{})

	interrupted := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		_ = setDeadline(pastDeadline)
		close(interrupted)
	})
	n, err := op()
	if !stop() {
		<-interrupted
		// clear the interrupt for the next operation
		_ = setDeadline(time.Time{})
		if err != nil {
			err = ctx.Err()
		}
	}
	return n, err
}

func (a *AsyncConn) remoteAddr() (net.Addr, error) {
	if addr := a.conn.RemoteAddr(); addr != nil {
		return a.names.name(addr)
	}
	return nil, net.ErrClosed
}
