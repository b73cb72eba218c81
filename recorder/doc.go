// Package recorder is the built-in event backend. It keeps a per-kind
// setting (enabled flag and duration threshold) in atomics so the gateway
// fast path stays lock-free, stamps operations with a monotonic clock and
// fans committed events out to sinks: watermill publishers, Prometheus
// collectors, OpenTelemetry spans, the logger and an in-memory ring.
//
// Importing the package registers the recorder as the "recorder" provider:
//
//	import _ "github.com/drblury/netflight/recorder"
//
//	gateway.Boot(cfg)
package recorder
