// Package netflight reports socket reads and writes and datagram sends and
// receives to a pluggable telemetry backend at near zero cost when nothing
// is listening.
//
// Instrumented connections come from Wrap, WrapPacketConn, Dial, Listen and
// ListenPacket; NewAsyncConn adds completion based reads and writes. Every
// operation asks the process Locator for the current Binding and hands the
// outcome to the Publisher of its Kind. Until the host calls Boot (or starts
// a Service) the locator returns the stub binding, which is never enabled, so
// an instrumented operation costs one interface call.
//
// # Backends
//
// A backend implements Gateway and registers a Builder with
// RegisterProvider. The built-in recorder provider filters events per kind
// with an enabled flag and a duration threshold and fans committed events out
// to its sinks: an in-memory ring of recent events, the service logger,
// Prometheus collectors, OpenTelemetry spans and a Watermill publisher.
//
// # Sinks
//
// Committed events can leave the process as CloudEvents through one of 10
// message sinks:
//   - channel: In-memory Go channels for testing
//   - io: Newline delimited file output
//   - kafka: Partitioned by event kind
//   - rabbitmq: AMQP durable exchange
//   - nats: Core NATS subjects
//   - jetstream: Persisted NATS stream with deduplication
//   - http: POST to a collector
//   - aws: SNS topics or SQS queues, with LocalStack support
//   - sqlite: Local event table, in a file or in memory
//   - postgres: Event table in a qualified schema
//
// # Configuration
//
// Config is read from YAML with LoadConfig or from the environment with
// ConfigFromEnv. The events setting takes a comma separated list of
// "kind#option=value" entries, for example
// "socket-write#enabled=true,socket-write#threshold=20 ms"; "*" addresses
// every kind.
package netflight
