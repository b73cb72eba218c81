package gateway

import "time"

// Ticks is an opaque monotonic timestamp produced by Publisher.Timestamp. Only
// differences between two values from the same publisher are meaningful.
type Ticks int64

// Event is the record handed to Publisher.Commit once per completed operation
// that passed both filters. It is passed by value and never retained.
type Event struct {
	Start    Ticks
	Duration Ticks

	// Host is the remote host name, empty when unknown.
	Host string
	// Address is the numeric address literal, or "[path]" for Unix sockets.
	Address string
	// Port is 0 when not applicable.
	Port int

	// Bytes transferred. Always 0 for failed operations.
	Bytes int64
	// EndOfStream is set by read kinds when the peer closed the stream.
	EndOfStream bool
	// Timeout is the read deadline remaining when the operation started, 0 if
	// none was set.
	Timeout time.Duration

	// Err describes the failure, empty on success.
	Err string
}

// Failed reports whether the event describes a failed operation.
func (e Event) Failed() bool { return e.Err != "" }
