package jetstream

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drblury/netflight/sink"
	"github.com/drblury/netflight/sink/sinktest"
)

type fakeJetStream struct {
	mu        sync.Mutex
	addErr    error
	updateErr error
	pubErr    error
	streams   []*nats.StreamConfig
	updated   int
	published []*nats.Msg
}

func (f *fakeJetStream) PublishMsg(m *nats.Msg, opts ...nats.PubOpt) (*nats.PubAck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pubErr != nil {
		return nil, f.pubErr
	}
	f.published = append(f.published, m)
	return &nats.PubAck{Stream: DefaultStreamName, Sequence: uint64(len(f.published))}, nil
}

func (f *fakeJetStream) AddStream(cfg *nats.StreamConfig, opts ...nats.JSOpt) (*nats.StreamInfo, error) {
	f.streams = append(f.streams, cfg)
	return &nats.StreamInfo{Config: *cfg}, f.addErr
}

func (f *fakeJetStream) UpdateStream(cfg *nats.StreamConfig, opts ...nats.JSOpt) (*nats.StreamInfo, error) {
	f.updated++
	return &nats.StreamInfo{Config: *cfg}, f.updateErr
}

func withFakeConnect(t *testing.T, js *fakeJetStream) *int {
	t.Helper()
	original := Connect
	t.Cleanup(func() { Connect = original })

	closes := 0
	Connect = func(url string) (JetStream, func(), error) {
		return js, func() { closes++ }, nil
	}
	return &closes
}

func TestRegistered(t *testing.T) {
	assert.True(t, sink.DefaultRegistry.Has(SinkName))
	assert.Equal(t, sink.JetStreamCapabilities, Capabilities())
}

func TestConfigWithDefaults(t *testing.T) {
	result := Config{Replicas: -1}.withDefaults()
	assert.Equal(t, DefaultStreamName, result.StreamName)
	assert.Equal(t, 1, result.Replicas)
	assert.Equal(t, DefaultMaxAge, result.MaxAge)

	custom := Config{StreamName: "EDGE", Replicas: 3, RetentionPolicy: "workqueue"}.withDefaults()
	assert.Equal(t, "EDGE", custom.StreamName)
	assert.Equal(t, 3, custom.Replicas)
}

func TestNewEnsuresStream(t *testing.T) {
	js := &fakeJetStream{}
	withFakeConnect(t, js)

	_, err := New(Config{RetentionPolicy: "interest"}, nil)
	require.NoError(t, err)

	require.Len(t, js.streams, 1)
	assert.Equal(t, DefaultStreamName, js.streams[0].Name)
	assert.Equal(t, []string{"NETFLIGHT.>"}, js.streams[0].Subjects)
	assert.Equal(t, nats.InterestPolicy, js.streams[0].Retention)
	assert.Zero(t, js.updated)
}

func TestNewUpdatesExistingStream(t *testing.T) {
	js := &fakeJetStream{addErr: errors.New("stream name already in use"), updateErr: errors.New("no change")}
	withFakeConnect(t, js)

	_, err := New(Config{}, watermill.NopLogger{})
	require.NoError(t, err)
	assert.Equal(t, 1, js.updated)
}

func TestConnectFailure(t *testing.T) {
	original := Connect
	defer func() { Connect = original }()
	Connect = func(url string) (JetStream, func(), error) {
		return nil, nil, errors.New("no servers available")
	}

	_, err := Build(context.Background(), &sinktest.Config{NATSURL: "nats://localhost:4222"}, watermill.NopLogger{})
	assert.EqualError(t, err, "no servers available")
}

func TestPublish(t *testing.T) {
	js := &fakeJetStream{}
	closes := withFakeConnect(t, js)

	pub, err := Build(context.Background(), &sinktest.Config{}, watermill.NopLogger{})
	require.NoError(t, err)

	msg := message.NewMessage("01HZX", []byte("payload"))
	msg.Metadata.Set("nf_kind", "socket-write")
	require.NoError(t, pub.Publish("events", msg))

	require.Len(t, js.published, 1)
	got := js.published[0]
	assert.Equal(t, "NETFLIGHT.events", got.Subject)
	assert.Equal(t, []byte("payload"), got.Data)
	assert.Equal(t, "socket-write", got.Header.Get("nf_kind"))
	assert.Equal(t, "01HZX", got.Header.Get(nats.MsgIdHdr))

	require.NoError(t, pub.Close())
	require.NoError(t, pub.Close())
	assert.Equal(t, 1, *closes)
	assert.Error(t, pub.Publish("events", msg))
}

func TestPublishError(t *testing.T) {
	js := &fakeJetStream{pubErr: errors.New("timeout")}
	withFakeConnect(t, js)

	pub, err := New(Config{}, nil)
	require.NoError(t, err)

	err = pub.Publish("events", message.NewMessage("1", nil))
	assert.ErrorContains(t, err, "failed to publish to JetStream")
}
