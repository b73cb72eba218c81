package recorder

import (
	"fmt"
	"strings"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/drblury/netflight/internal/cloudevents"
	nferrors "github.com/drblury/netflight/internal/errors"
	"github.com/drblury/netflight/internal/metadata"
)

// Envelope encodings.
const (
	EncodingJSON     = "json"
	EncodingProtobuf = "protobuf"
)

// Content types of the published message payload.
const (
	ContentTypeCloudEventsJSON     = "application/cloudevents+json"
	ContentTypeCloudEventsProtobuf = "application/cloudevents+protobuf"
)

// DefaultSource is the CloudEvents source attribute used when none is set.
const DefaultSource = "netflight"

// EventTypePrefix prefixes the kind name to form the CloudEvents type.
const EventTypePrefix = "io.netflight."

// EventType returns the CloudEvents type for a record kind.
func EventType(r Record) string { return EventTypePrefix + r.Kind.String() }

// MessageSinkConfig configures a MessageSink.
type MessageSinkConfig struct {
	Topic string
	// Source defaults to DefaultSource.
	Source string
	// Encoding is EncodingJSON (default) or EncodingProtobuf.
	Encoding string
	Logger   watermill.LoggerAdapter
}

// MessageSink wraps every event in a CloudEvents envelope and publishes it
// through a watermill publisher.
type MessageSink struct {
	publisher message.Publisher
	topic     string
	source    string
	encode    func(cloudevents.Event) ([]byte, string, error)
	logger    watermill.LoggerAdapter
}

// NewMessageSink creates a MessageSink publishing to cfg.Topic.
func NewMessageSink(pub message.Publisher, cfg MessageSinkConfig) (*MessageSink, error) {
	if pub == nil {
		return nil, nferrors.ErrPublisherRequired
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		return nil, nferrors.ErrTopicRequired
	}
	encode, err := encoder(cfg.Encoding)
	if err != nil {
		return nil, err
	}
	if cfg.Source == "" {
		cfg.Source = DefaultSource
	}
	if cfg.Logger == nil {
		cfg.Logger = watermill.NopLogger{}
	}
	return &MessageSink{
		publisher: pub,
		topic:     cfg.Topic,
		source:    cfg.Source,
		encode:    encode,
		logger:    cfg.Logger,
	}, nil
}

func encoder(encoding string) (func(cloudevents.Event) ([]byte, string, error), error) {
	switch strings.ToLower(encoding) {
	case "", EncodingJSON:
		return func(e cloudevents.Event) ([]byte, string, error) {
			b, err := e.MarshalJSON()
			return b, ContentTypeCloudEventsJSON, err
		}, nil
	case EncodingProtobuf:
		return func(e cloudevents.Event) ([]byte, string, error) {
			b, err := e.MarshalProto()
			return b, ContentTypeCloudEventsProtobuf, err
		}, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
}

// Envelope builds the CloudEvents envelope for r.
func (s *MessageSink) Envelope(r Record) cloudevents.Event {
	return cloudevents.New(EventType(r), s.source, r.Time, r.Data()).
		WithSubject(r.Endpoint()).
		WithDataContentType(cloudevents.ContentTypeJSON).
		WithExtension(cloudevents.ExtKind, r.Kind.String()).
		WithExtension(cloudevents.ExtProvider, r.Provider)
}

// Record implements Sink.
func (s *MessageSink) Record(r Record) error {
	evt := s.Envelope(r)
	payload, contentType, err := s.encode(evt)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	msg := message.NewMessage(evt.ID, payload)
	metadata.New(
		metadata.KeyEventID, evt.ID,
		metadata.KeyEventType, evt.Type,
		metadata.KeySource, evt.Source,
		metadata.KeyContentType, contentType,
		metadata.KeyKind, r.Kind.String(),
	).With(metadata.KeyProvider, r.Provider).Apply(msg)

	if err := s.publisher.Publish(s.topic, msg); err != nil {
		return fmt.Errorf("publish to %q: %w", s.topic, err)
	}
	s.logger.Trace("Published network event", watermill.LogFields{
		"topic":      s.topic,
		"message_id": evt.ID,
	})
	return nil
}

// Close closes the underlying publisher.
func (s *MessageSink) Close() error { return s.publisher.Close() }
