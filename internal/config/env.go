package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DefaultEnvPrefix is the prefix FromEnv uses when given an empty one.
const DefaultEnvPrefix = "NETFLIGHT"

// FromEnv builds a Config from environment variables named PREFIX_FIELD, for
// example NETFLIGHT_EVENTS or NETFLIGHT_KAFKA_BROKERS. Lists are comma
// separated. Unset variables leave the zero value.
func FromEnv(prefix string) (*Config, error) {
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	env := envReader{prefix: strings.TrimSuffix(prefix, "_") + "_"}

	cfg := &Config{
		Provider:         env.str("PROVIDER"),
		Events:           env.str("EVENTS"),
		SinkSystem:       env.str("SINK"),
		SinkTopic:        env.str("TOPIC"),
		Encoding:         env.str("ENCODING"),
		KafkaBrokers:     env.list("KAFKA_BROKERS"),
		KafkaClientID:    env.str("KAFKA_CLIENT_ID"),
		RabbitMQURL:      env.str("RABBITMQ_URL"),
		NATSURL:          env.str("NATS_URL"),
		HTTPPublisherURL: env.str("HTTP_PUBLISHER_URL"),
		IOFile:           env.str("IO_FILE"),
		SQLiteFile:       env.str("SQLITE_FILE"),
		PostgresURL:      env.str("POSTGRES_URL"),

		AWSRegion:          env.str("AWS_REGION"),
		AWSAccountID:       env.str("AWS_ACCOUNT_ID"),
		AWSAccessKeyID:     env.str("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: env.str("AWS_SECRET_ACCESS_KEY"),
		AWSEndpoint:        env.str("AWS_ENDPOINT"),
		AWSMode:            env.str("AWS_MODE"),

		LogEvents:      env.boolean("LOG_EVENTS"),
		RecentCapacity: env.integer("RECENT_CAPACITY"),

		MetricsEnabled: env.boolean("METRICS_ENABLED"),
		MetricsPort:    env.integer("METRICS_PORT"),
		TracingEnabled: env.boolean("TRACING_ENABLED"),

		StatusEnabled:            env.boolean("STATUS_ENABLED"),
		StatusPort:               env.integer("STATUS_PORT"),
		StatusCORSAllowedOrigins: env.list("STATUS_CORS_ALLOWED_ORIGINS"),
	}

	if err := errors.Join(env.errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

type envReader struct {
	prefix string
	errs   []error
}

func (e *envReader) lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(e.prefix + name)
	return strings.TrimSpace(v), ok
}

func (e *envReader) str(name string) string {
	v, _ := e.lookup(name)
	return v
}

func (e *envReader) list(name string) []string {
	v, ok := e.lookup(name)
	if !ok || v == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (e *envReader) boolean(name string) bool {
	v, ok := e.lookup(name)
	if !ok || v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s%s: %w", e.prefix, name, err))
	}
	return b
}

func (e *envReader) integer(name string) int {
	v, ok := e.lookup(name)
	if !ok || v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s%s: %w", e.prefix, name, err))
	}
	return n
}
