package http

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-http/v2/pkg/http"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drblury/netflight/sink"
	"github.com/drblury/netflight/sink/sinktest"
)

func TestRegistered(t *testing.T) {
	assert.True(t, sink.DefaultRegistry.Has(SinkName))
	assert.Equal(t, sink.HTTPCapabilities, Capabilities())
}

func TestBuild(t *testing.T) {
	t.Run("uses marshal func with base url", func(t *testing.T) {
		original := PublisherFactory
		defer func() { PublisherFactory = original }()

		mockPub := &sinktest.Publisher{}
		PublisherFactory = func(cfg http.PublisherConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
			require.NotNil(t, cfg.MarshalMessageFunc)
			req, err := cfg.MarshalMessageFunc("events", message.NewMessage("1", []byte("x")))
			require.NoError(t, err)
			assert.Equal(t, "http://collector:8080/ingest/events", req.URL.String())
			return mockPub, nil
		}

		pub, err := Build(context.Background(), &sinktest.Config{HTTPURL: "http://collector:8080/ingest/"}, watermill.NopLogger{})
		require.NoError(t, err)
		assert.Same(t, mockPub, pub)
	})

	t.Run("returns factory error", func(t *testing.T) {
		original := PublisherFactory
		defer func() { PublisherFactory = original }()

		PublisherFactory = func(cfg http.PublisherConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
			return nil, errors.New("bad config")
		}

		_, err := Build(context.Background(), &sinktest.Config{}, watermill.NopLogger{})
		assert.EqualError(t, err, "bad config")
	})
}

func TestMarshalFunc(t *testing.T) {
	msg := message.NewMessage("abc", []byte(`{"kind":"socket-read"}`))
	msg.Metadata.Set("nf_kind", "socket-read")

	req, err := MarshalFunc("http://localhost/")("netflight.events", msg)
	require.NoError(t, err)

	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "http://localhost/netflight.events", req.URL.String())
	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"socket-read"}`, string(body))
	assert.Equal(t, "abc", req.Header.Get(http.HeaderUUID))
}
