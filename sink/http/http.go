// Package http provides a sink that POSTs every event to a collector URL.
// The topic is appended to the configured base URL.
package http

import (
	"context"
	nethttp "net/http"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-http/v2/pkg/http"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/drblury/netflight/sink"
)

// SinkName is the name used to register this sink.
const SinkName = "http"

// PublisherFactory allows overriding the publisher creation for testing.
var PublisherFactory = func(config http.PublisherConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
	return http.NewPublisher(config, logger)
}

func init() {
	sink.RegisterWithCapabilities(SinkName, Build, sink.HTTPCapabilities)
}

// Build creates an HTTP publisher.
func Build(ctx context.Context, cfg sink.Config, logger watermill.LoggerAdapter) (message.Publisher, error) {
	return PublisherFactory(
		http.PublisherConfig{
			MarshalMessageFunc: MarshalFunc(cfg.GetHTTPPublisherURL()),
		},
		logger,
	)
}

// MarshalFunc builds requests against baseURL+topic.
func MarshalFunc(baseURL string) http.MarshalMessageFunc {
	return func(topic string, msg *message.Message) (*nethttp.Request, error) {
		return http.DefaultMarshalMessageFunc(baseURL+topic, msg)
	}
}

// Capabilities returns the capabilities of this sink.
func Capabilities() sink.Capabilities {
	return sink.HTTPCapabilities
}
