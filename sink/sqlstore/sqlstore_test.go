package sqlstore

import (
	"context"
	"database/sql"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	return db
}

func newSQLitePublisher(t *testing.T) *Publisher {
	t.Helper()
	pub, err := New(context.Background(), openMemory(t), SQLite, "events", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pub.Close() })
	return pub
}

func TestPublishAndRead(t *testing.T) {
	pub := newSQLitePublisher(t)
	ctx := context.Background()

	first := message.NewMessage("01J0000000000000000000000A", []byte(`{"bytes":14}`))
	first.Metadata.Set("nf_kind", "socket-write")
	second := message.NewMessage("01J0000000000000000000000B", []byte(`{"bytes":3}`))
	require.NoError(t, pub.Publish("edge", first, second))
	require.NoError(t, pub.Publish("core", message.NewMessage("01J0000000000000000000000C", []byte(`{}`))))

	n, err := pub.Count(ctx, "edge")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	events, err := pub.Recent(ctx, "edge", 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "01J0000000000000000000000B", events[0].UUID)
	assert.Equal(t, "01J0000000000000000000000A", events[1].UUID)
	assert.Equal(t, `{"bytes":14}`, string(events[1].Payload))
	assert.Equal(t, "socket-write", events[1].Metadata["nf_kind"])
	assert.Equal(t, "edge", events[1].Topic)
	assert.False(t, events[1].CreatedAt.IsZero())

	limited, err := pub.Recent(ctx, "edge", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	none, err := pub.Recent(ctx, "edge", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPublishIsAtomic(t *testing.T) {
	pub := newSQLitePublisher(t)

	dup := message.NewMessage("dup", []byte(`{}`))
	err := pub.Publish("edge", message.NewMessage("ok", []byte(`{}`)), dup, dup)
	require.Error(t, err)

	n, err := pub.Count(context.Background(), "edge")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPublishAfterClose(t *testing.T) {
	pub := newSQLitePublisher(t)
	require.NoError(t, pub.Close())
	require.NoError(t, pub.Close())
	assert.ErrorIs(t, pub.Publish("edge", message.NewMessage("x", nil)), ErrClosed)
}

func TestNewValidatesArguments(t *testing.T) {
	_, err := New(context.Background(), nil, SQLite, "events", nil)
	assert.ErrorContains(t, err, "database is required")

	db := openMemory(t)
	defer db.Close()
	for _, table := range []string{"", "events; DROP TABLE x", "1events", "a.b.c"} {
		_, err := New(context.Background(), db, SQLite, table, nil)
		assert.ErrorContains(t, err, "invalid table name", table)
	}
}

func TestPostgresDialect(t *testing.T) {
	assert.Equal(t, "$3", Postgres.Placeholder(3))
	stmts := Postgres.Schema("netflight.events")
	require.Len(t, stmts, 3)
	assert.Equal(t, "CREATE SCHEMA IF NOT EXISTS netflight", stmts[0])
	assert.Contains(t, stmts[1], "JSONB")
	assert.Contains(t, stmts[2], "idx_netflight_events_topic")

	assert.Len(t, Postgres.Schema("events"), 2)
	assert.Equal(t, "?", SQLite.Placeholder(5))
}
