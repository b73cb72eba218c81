// Package channel provides an in-process sink backed by a Watermill Go
// channel. Consumers in the same process subscribe through PubSub.
package channel

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/drblury/netflight/sink"
)

// SinkName is the name used to register this sink.
const SinkName = "channel"

// Factory allows overriding the channel creation for testing.
var Factory = func(cfg gochannel.Config, logger watermill.LoggerAdapter) *gochannel.GoChannel {
	return gochannel.NewGoChannel(cfg, logger)
}

var (
	sharedMu sync.Mutex
	shared   *gochannel.GoChannel
)

func init() {
	sink.RegisterWithCapabilities(SinkName, Build, sink.ChannelCapabilities)
}

// Build returns the process-wide Go channel publisher.
func Build(ctx context.Context, cfg sink.Config, logger watermill.LoggerAdapter) (message.Publisher, error) {
	return pubSub(logger), nil
}

// PubSub returns the Go channel events are published to, so in-process
// consumers can subscribe to it.
func PubSub() *gochannel.GoChannel {
	return pubSub(watermill.NopLogger{})
}

func pubSub(logger watermill.LoggerAdapter) *gochannel.GoChannel {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if shared == nil {
		shared = Factory(gochannel.Config{OutputChannelBuffer: 256}, logger)
	}
	return shared
}

// Reset closes and forgets the shared channel.
func Reset() error {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if shared == nil {
		return nil
	}
	err := shared.Close()
	shared = nil
	return err
}

// Capabilities returns the capabilities of this sink.
func Capabilities() sink.Capabilities {
	return sink.ChannelCapabilities
}
