package recorder

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/drblury/netflight/gateway"
	"github.com/drblury/netflight/internal/config"
	"github.com/drblury/netflight/sink"
)

// ProviderName is the name the recorder registers under.
const ProviderName = "recorder"

// Config is the full configuration understood by Build. A gateway.Config
// that does not implement it yields a recorder without sinks.
type Config interface {
	gateway.Config
	sink.Config

	GetEncoding() string
	GetLogEvents() bool
	GetRecentCapacity() int
	GetMetricsEnabled() bool
	GetTracingEnabled() bool
}

func init() {
	gateway.Register(ProviderName, Build)
}

// Build implements gateway.Builder.
func Build(ctx context.Context, cfg gateway.Config, logger watermill.LoggerAdapter) (gateway.Gateway, error) {
	return NewFromConfig(ctx, cfg, logger)
}

// NewFromConfig creates a recorder with the settings and sinks described by
// cfg.
func NewFromConfig(ctx context.Context, cfg gateway.Config, logger watermill.LoggerAdapter) (*Recorder, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	var events string
	if cfg != nil {
		events = cfg.GetEvents()
	}
	settings, err := config.ParseSettings(events)
	if err != nil {
		return nil, fmt.Errorf("events: %w", err)
	}

	opts := []Option{WithLogger(logger), WithSettings(settings)}

	if full, ok := cfg.(Config); ok {
		sinkOpts, err := sinkOptions(ctx, full, logger)
		if err != nil {
			return nil, err
		}
		opts = append(opts, sinkOpts...)
	}

	rec := New(opts...)
	logger.Info("Recorder created", watermill.LogFields{
		"events": config.FormatSettings(settings),
	})
	return rec, nil
}

func sinkOptions(ctx context.Context, cfg Config, logger watermill.LoggerAdapter) ([]Option, error) {
	var opts []Option

	if cfg.GetMetricsEnabled() {
		m := NewMetrics(nil)
		if err := m.Register(); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		opts = append(opts, WithSink(m))
	}
	if cfg.GetTracingEnabled() {
		opts = append(opts, WithSink(NewTracingSink(nil)))
	}
	if cfg.GetLogEvents() {
		opts = append(opts, WithSink(NewLogSink(logger)))
	}
	if n := cfg.GetRecentCapacity(); n > 0 {
		opts = append(opts, WithRecent(NewMemory(n)))
	}

	if cfg.GetSinkSystem() != "" {
		pub, err := sink.Build(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		ms, err := NewMessageSink(pub, MessageSinkConfig{
			Topic:    sink.Topic(cfg),
			Encoding: cfg.GetEncoding(),
			Logger:   logger,
		})
		if err != nil {
			_ = pub.Close()
			return nil, err
		}
		opts = append(opts, WithSink(ms))
	}

	return opts, nil
}
