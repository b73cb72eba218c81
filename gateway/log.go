package gateway

import (
	"sync/atomic"
	"time"

	"github.com/drblury/netflight/internal/logging"
)

// commitLogInterval bounds how often commit panics are logged.
const commitLogInterval = 10 * time.Second

type loggers struct {
	service logging.ServiceLogger
	commit  logging.ServiceLogger
}

var currentLoggers atomic.Pointer[loggers]

func init() {
	SetLogger(nil)
}

// SetLogger replaces the gateway logger. Nil restores the default, which
// discards everything.
func SetLogger(log logging.ServiceLogger) {
	if log == nil {
		log = logging.NewDiscardServiceLogger()
	}
	log = log.With(logging.LogFields{"component": "netflight.gateway"})
	currentLoggers.Store(&loggers{
		service: log,
		commit:  logging.NewThrottledLogger(log, commitLogInterval),
	})
}

func serviceLogger() logging.ServiceLogger { return currentLoggers.Load().service }

func commitLogger() logging.ServiceLogger { return currentLoggers.Load().commit }
