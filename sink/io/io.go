// Package io provides a sink that appends events as JSON lines to a file or
// to standard output.
package io

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/drblury/netflight/internal/jsoncodec"
	"github.com/drblury/netflight/sink"
)

// SinkName is the name used to register this sink.
const SinkName = "io"

// DefaultFilePath is the default file path if none is specified.
const DefaultFilePath = "netflight-events.log"

// Stdout selects standard output instead of a file.
const Stdout = "-"

// PublisherFactory allows overriding the publisher creation for testing.
var PublisherFactory = func(filePath string, logger watermill.LoggerAdapter) (message.Publisher, error) {
	return NewPublisher(filePath, logger), nil
}

func init() {
	sink.RegisterWithCapabilities(SinkName, Build, sink.IOCapabilities)
}

// Build creates a new I/O sink.
func Build(ctx context.Context, cfg sink.Config, logger watermill.LoggerAdapter) (message.Publisher, error) {
	filePath := cfg.GetIOFile()
	if filePath == "" {
		filePath = DefaultFilePath
	}
	return PublisherFactory(filePath, logger)
}

// Capabilities returns the capabilities of this sink.
func Capabilities() sink.Capabilities {
	return sink.IOCapabilities
}

// StoredMessage is one line written by the sink.
type StoredMessage struct {
	UUID     string            `json:"uuid"`
	Topic    string            `json:"topic"`
	Metadata map[string]string `json:"metadata"`
	Payload  []byte            `json:"payload"`
}

// Publisher appends messages to a file.
type Publisher struct {
	open   func() (io.WriteCloser, error)
	logger watermill.LoggerAdapter

	mu     sync.Mutex
	buf    []byte
	closed bool
}

// NewPublisher creates a publisher for filePath. Stdout writes to standard
// output.
func NewPublisher(filePath string, logger watermill.LoggerAdapter) *Publisher {
	open := func() (io.WriteCloser, error) {
		return os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	}
	if filePath == Stdout {
		open = func() (io.WriteCloser, error) { return nopCloser{os.Stdout}, nil }
	}
	return NewWriterPublisher(open, logger)
}

// NewWriterPublisher creates a publisher that obtains its destination from
// open on every Publish call and closes it afterwards.
func NewWriterPublisher(open func() (io.WriteCloser, error), logger watermill.LoggerAdapter) *Publisher {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &Publisher{open: open, logger: logger}
}

var errClosed = errors.New("io sink: publisher closed")

// Publish writes one JSON line per message.
func (p *Publisher) Publish(topic string, messages ...*message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return errClosed
	}

	p.buf = p.buf[:0]
	for _, msg := range messages {
		var err error
		p.buf, err = jsoncodec.AppendLine(p.buf, StoredMessage{
			UUID:     msg.UUID,
			Topic:    topic,
			Metadata: msg.Metadata,
			Payload:  msg.Payload,
		})
		if err != nil {
			return err
		}
	}

	w, err := p.open()
	if err != nil {
		p.logger.Error("Failed to open event log", err, nil)
		return err
	}
	_, writeErr := w.Write(p.buf)
	closeErr := w.Close()
	return errors.Join(writeErr, closeErr)
}

// Close marks the publisher closed.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
