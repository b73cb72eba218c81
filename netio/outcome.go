package netio

import (
	"errors"
	"io"
	"sync/atomic"
	"time"

	"github.com/drblury/netflight/gateway"
)

func readOutcome(n int, err error) gateway.Outcome {
	switch {
	case err == nil:
		return gateway.Completed(n)
	case errors.Is(err, io.EOF):
		return gateway.EndOfStream(n)
	default:
		return gateway.Failed(err)
	}
}

func writeOutcome(n int, err error) gateway.Outcome {
	if err != nil {
		return gateway.Failed(err)
	}
	return gateway.Completed(n)
}

// deadline tracks a read deadline so events can report the timeout that was
// in force when the operation started.
type deadline struct {
	at atomic.Int64
}

func (d *deadline) set(t time.Time) {
	if t.IsZero() {
		d.at.Store(0)
		return
	}
	d.at.Store(t.UnixNano())
}

func (d *deadline) remaining() time.Duration {
	at := d.at.Load()
	if at == 0 {
		return 0
	}
	return time.Until(time.Unix(0, at))
}
