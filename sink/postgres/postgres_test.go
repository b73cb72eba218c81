package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drblury/netflight/sink"
	"github.com/drblury/netflight/sink/sinktest"
)

func TestRegister(t *testing.T) {
	assert.True(t, sink.DefaultRegistry.Has(SinkName))
	assert.Equal(t, sink.PostgresCapabilities, Capabilities())

	capsAlias := sink.GetCapabilities("postgresql")
	assert.Equal(t, "postgres", capsAlias.Name)
}

func TestConfigWithDefaults(t *testing.T) {
	t.Run("empty config gets defaults", func(t *testing.T) {
		result := Config{}.withDefaults()
		assert.Equal(t, DefaultTable, result.Table)
		assert.Equal(t, 10, result.MaxOpenConns)
		assert.Equal(t, 5, result.MaxIdleConns)
	})

	t.Run("custom values preserved", func(t *testing.T) {
		cfg := Config{
			ConnectionString: "postgres://localhost:5432/test",
			Table:            "telemetry.events",
			MaxOpenConns:     20,
			MaxIdleConns:     2,
		}
		assert.Equal(t, cfg, cfg.withDefaults())
	})
}

func TestBuildRequiresConnectionString(t *testing.T) {
	_, err := Build(context.Background(), &sinktest.Config{}, watermill.NopLogger{})
	assert.ErrorContains(t, err, "connection string is required")
}

func TestBuildPassesConfigToOpen(t *testing.T) {
	original := Open
	defer func() { Open = original }()

	boom := errors.New("connection refused")
	var got Config
	Open = func(_ context.Context, cfg Config) (*sql.DB, error) {
		got = cfg
		return nil, boom
	}

	_, err := Build(context.Background(), &sinktest.Config{PostgresURL: "postgres://db/events"}, watermill.NopLogger{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "postgres://db/events", got.ConnectionString)
	assert.Equal(t, DefaultTable, got.Table)
}

func TestSchemaFailureClosesDatabase(t *testing.T) {
	original := Open
	defer func() { Open = original }()

	// SQLite has no CREATE SCHEMA, so initializing the table fails.
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	Open = func(context.Context, Config) (*sql.DB, error) { return db, nil }

	_, err = New(context.Background(), Config{ConnectionString: "postgres://db/events"}, nil)
	require.ErrorContains(t, err, "failed to initialize postgres schema")
	assert.Error(t, db.Ping())
}
