// Package jetstream provides a NATS JetStream sink. Events are persisted in a
// stream whose subjects are "<stream>.<topic>".
package jetstream

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/nats-io/nats.go"

	"github.com/drblury/netflight/sink"
)

// SinkName is the name used to register this sink.
const SinkName = "jetstream"

const (
	// DefaultStreamName is the stream used when none is configured.
	DefaultStreamName = "NETFLIGHT"

	// DefaultMaxAge bounds how long events stay in the stream.
	DefaultMaxAge = 7 * 24 * time.Hour
)

// JetStream is the subset of nats.JetStreamContext the sink uses.
type JetStream interface {
	PublishMsg(m *nats.Msg, opts ...nats.PubOpt) (*nats.PubAck, error)
	AddStream(cfg *nats.StreamConfig, opts ...nats.JSOpt) (*nats.StreamInfo, error)
	UpdateStream(cfg *nats.StreamConfig, opts ...nats.JSOpt) (*nats.StreamInfo, error)
}

// Connect allows overriding the connection for testing. The returned close
// function is called once when the publisher is closed.
var Connect = func(url string) (JetStream, func(), error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}
	return js, nc.Close, nil
}

func init() {
	sink.RegisterWithCapabilities(SinkName, Build, sink.JetStreamCapabilities)
}

// Build creates a JetStream publisher.
func Build(ctx context.Context, cfg sink.Config, logger watermill.LoggerAdapter) (message.Publisher, error) {
	return New(Config{URL: cfg.GetNATSURL()}, logger)
}

// Capabilities returns the capabilities of this sink.
func Capabilities() sink.Capabilities {
	return sink.JetStreamCapabilities
}

// Config holds JetStream-specific configuration.
type Config struct {
	// URL is the NATS server URL.
	URL string

	// StreamName defaults to DefaultStreamName.
	StreamName string

	// Replicas is the number of stream replicas (for clustering).
	Replicas int

	// MaxAge defaults to DefaultMaxAge.
	MaxAge time.Duration

	// RetentionPolicy: "limits" (default), "interest", or "workqueue"
	RetentionPolicy string
}

func (c Config) withDefaults() Config {
	if c.StreamName == "" {
		c.StreamName = DefaultStreamName
	}
	if c.Replicas <= 0 {
		c.Replicas = 1
	}
	if c.MaxAge <= 0 {
		c.MaxAge = DefaultMaxAge
	}
	return c
}

// Publisher publishes events to a JetStream stream.
type Publisher struct {
	js     JetStream
	close  func()
	config Config
	logger watermill.LoggerAdapter

	closedMu sync.RWMutex
	closed   bool
}

// New connects to NATS and makes sure the stream exists.
func New(cfg Config, logger watermill.LoggerAdapter) (*Publisher, error) {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	js, closeFn, err := Connect(cfg.URL)
	if err != nil {
		return nil, err
	}

	p := &Publisher{js: js, close: closeFn, config: cfg, logger: logger}
	p.ensureStream()
	return p, nil
}

func (p *Publisher) ensureStream() {
	streamCfg := &nats.StreamConfig{
		Name:     p.config.StreamName,
		Subjects: []string{p.config.StreamName + ".>"},
		MaxAge:   p.config.MaxAge,
		Replicas: p.config.Replicas,
	}

	switch p.config.RetentionPolicy {
	case "interest":
		streamCfg.Retention = nats.InterestPolicy
	case "workqueue":
		streamCfg.Retention = nats.WorkQueuePolicy
	default:
		streamCfg.Retention = nats.LimitsPolicy
	}

	if _, err := p.js.AddStream(streamCfg); err != nil {
		if _, err := p.js.UpdateStream(streamCfg); err != nil {
			p.logger.Info("JetStream stream exists", watermill.LogFields{
				"stream": p.config.StreamName,
			})
		}
	}
}

// Publish publishes messages to the stream, stopping at the first failure.
func (p *Publisher) Publish(topic string, messages ...*message.Message) error {
	p.closedMu.RLock()
	defer p.closedMu.RUnlock()
	if p.closed {
		return fmt.Errorf("publisher is closed")
	}

	subject := p.Subject(topic)
	for _, msg := range messages {
		headers := nats.Header{}
		for k, v := range msg.Metadata {
			headers.Set(k, v)
		}
		headers.Set(nats.MsgIdHdr, msg.UUID)

		if _, err := p.js.PublishMsg(&nats.Msg{
			Subject: subject,
			Data:    msg.Payload,
			Header:  headers,
		}); err != nil {
			return fmt.Errorf("failed to publish to JetStream: %w", err)
		}
	}
	return nil
}

// Subject returns the stream subject for topic.
func (p *Publisher) Subject(topic string) string {
	return p.config.StreamName + "." + topic
}

// Close closes the NATS connection. It is safe to call more than once.
func (p *Publisher) Close() error {
	p.closedMu.Lock()
	defer p.closedMu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if p.close != nil {
		p.close()
	}
	return nil
}
