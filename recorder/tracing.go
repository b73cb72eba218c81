package recorder

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name used for spans.
const TracerName = "github.com/drblury/netflight/recorder"

// TracingSink turns every committed event into a span whose start and end
// match the measured operation.
type TracingSink struct {
	tracer trace.Tracer
}

// NewTracingSink creates a TracingSink. A nil provider uses the global one.
func NewTracingSink(provider trace.TracerProvider) *TracingSink {
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	return &TracingSink{tracer: provider.Tracer(TracerName)}
}

// Record implements Sink.
func (t *TracingSink) Record(r Record) error {
	_, span := t.tracer.Start(
		context.Background(),
		r.Kind.String(),
		trace.WithTimestamp(r.Time),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("network.peer.address", r.Event.Address),
			attribute.Int("network.peer.port", r.Event.Port),
			attribute.Int64("netflight.bytes", r.Event.Bytes),
		),
	)
	if r.Event.Host != "" {
		span.SetAttributes(attribute.String("server.address", r.Event.Host))
	}
	if r.Kind.IsRead() {
		span.SetAttributes(attribute.Bool("netflight.end_of_stream", r.Event.EndOfStream))
	}
	if r.Event.Timeout > 0 {
		span.SetAttributes(attribute.Int64("netflight.timeout_ns", int64(r.Event.Timeout)))
	}
	if r.Event.Failed() {
		span.SetStatus(codes.Error, r.Event.Err)
	}
	span.End(trace.WithTimestamp(r.Time.Add(r.Duration())))
	return nil
}
