// Package kafka provides a Kafka sink.
package kafka

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/drblury/netflight/internal/metadata"
	"github.com/drblury/netflight/sink"
)

// SinkName is the name used to register this sink.
const SinkName = "kafka"

// PublisherFactory allows overriding the publisher creation for testing.
var PublisherFactory = func(cfg kafka.PublisherConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
	return kafka.NewPublisher(cfg, logger)
}

func init() {
	sink.RegisterWithCapabilities(SinkName, Build, sink.KafkaCapabilities)
}

// Build creates a Kafka publisher. Events are keyed by kind so every kind
// stays ordered within its partition.
func Build(ctx context.Context, cfg sink.Config, logger watermill.LoggerAdapter) (message.Publisher, error) {
	saramaCfg := kafka.DefaultSaramaSyncPublisherConfig()
	if clientID := cfg.GetKafkaClientID(); clientID != "" {
		saramaCfg.ClientID = clientID
	}

	return PublisherFactory(
		kafka.PublisherConfig{
			Brokers:               cfg.GetKafkaBrokers(),
			Marshaler:             kafka.NewWithPartitioningMarshaler(PartitionKey),
			OverwriteSaramaConfig: saramaCfg,
		},
		logger,
	)
}

// PartitionKey keys a message by its event kind.
func PartitionKey(topic string, msg *message.Message) (string, error) {
	return msg.Metadata.Get(metadata.KeyKind), nil
}

// Capabilities returns the capabilities of this sink.
func Capabilities() sink.Capabilities {
	return sink.KafkaCapabilities
}
