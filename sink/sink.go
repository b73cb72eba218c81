// Package sink defines the named, pluggable destinations committed network
// events are published to. Each sink lives in its own sub-package and
// registers itself with the sink registry from init; import sink/sinks to
// register all of them.
package sink

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// DefaultTopic is used when the config names no topic.
const DefaultTopic = "netflight.events"

// Builder creates the publisher for a sink from config.
type Builder func(ctx context.Context, cfg Config, logger watermill.LoggerAdapter) (message.Publisher, error)

// Config provides the configuration values needed by sinks. Sinks only read
// the keys relevant to them.
type Config interface {
	// GetSinkSystem returns the sink name.
	GetSinkSystem() string
	// GetSinkTopic returns the topic events are published to.
	GetSinkTopic() string

	// Kafka
	GetKafkaBrokers() []string
	GetKafkaClientID() string

	// RabbitMQ
	GetRabbitMQURL() string

	// NATS and JetStream
	GetNATSURL() string

	// HTTP
	GetHTTPPublisherURL() string

	// IO
	GetIOFile() string

	// SQL event stores
	GetSQLiteFile() string
	GetPostgresURL() string

	// AWS
	GetAWSRegion() string
	GetAWSAccountID() string
	GetAWSAccessKeyID() string
	GetAWSSecretAccessKey() string
	GetAWSEndpoint() string
	GetAWSMode() string
}

// Topic returns the configured topic or DefaultTopic.
func Topic(cfg Config) string {
	if cfg != nil && cfg.GetSinkTopic() != "" {
		return cfg.GetSinkTopic()
	}
	return DefaultTopic
}
