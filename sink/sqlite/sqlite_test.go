package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drblury/netflight/sink"
	"github.com/drblury/netflight/sink/sinktest"
	"github.com/drblury/netflight/sink/sqlstore"
)

func TestRegistered(t *testing.T) {
	assert.True(t, sink.DefaultRegistry.Has(SinkName))
	assert.Equal(t, sink.SQLiteCapabilities, Capabilities())
}

func TestConfigWithDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, DefaultFilePath, cfg.FilePath)
	assert.Equal(t, DefaultTable, cfg.Table)

	cfg = Config{FilePath: ":memory:", Table: "probes"}.withDefaults()
	assert.Equal(t, ":memory:", cfg.FilePath)
	assert.Equal(t, "probes", cfg.Table)
}

func TestBuildStoresEventsInFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")
	pub, err := Build(context.Background(), &sinktest.Config{SQLiteFile: path}, watermill.NopLogger{})
	require.NoError(t, err)

	msg := message.NewMessage("01J00000000000000000000001", []byte(`{"kind":"socket-read"}`))
	require.NoError(t, pub.Publish("netflight.events", msg))
	require.NoError(t, pub.Close())

	reopened, err := New(context.Background(), Config{FilePath: path}, nil)
	require.NoError(t, err)
	defer reopened.Close()

	events, err := reopened.Recent(context.Background(), "netflight.events", 5)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, msg.UUID, events[0].UUID)
}

func TestNewInMemory(t *testing.T) {
	pub, err := New(context.Background(), Config{FilePath: ":memory:"}, nil)
	require.NoError(t, err)
	defer pub.Close()
	assert.Equal(t, DefaultTable, pub.Table())
	assert.IsType(t, &sqlstore.Publisher{}, pub)
}

func TestOpenErrorIsReturned(t *testing.T) {
	original := Open
	defer func() { Open = original }()

	boom := errors.New("disk full")
	Open = func(string) (*sql.DB, error) { return nil, boom }

	_, err := Build(context.Background(), &sinktest.Config{}, watermill.NopLogger{})
	assert.ErrorIs(t, err, boom)
}
