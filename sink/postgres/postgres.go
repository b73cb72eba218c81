// Package postgres provides a sink that stores events in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/drblury/netflight/sink"
	"github.com/drblury/netflight/sink/sqlstore"
)

// SinkName is the name used to register this sink.
const SinkName = "postgres"

// DefaultTable is the schema qualified table events are appended to.
const DefaultTable = "netflight.events"

// Open connects to the database. Tests may replace it.
var Open = func(ctx context.Context, cfg Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	return db, nil
}

func init() {
	sink.RegisterWithCapabilities(SinkName, Build, sink.PostgresCapabilities)
	sink.RegisterWithCapabilities("postgresql", Build, sink.PostgresCapabilities) // Alias
}

// Build creates a new PostgreSQL sink.
func Build(ctx context.Context, cfg sink.Config, logger watermill.LoggerAdapter) (message.Publisher, error) {
	pub, err := New(ctx, Config{ConnectionString: cfg.GetPostgresURL()}, logger)
	if err != nil {
		return nil, err
	}
	return pub, nil
}

// Capabilities returns the capabilities of this sink.
func Capabilities() sink.Capabilities {
	return sink.PostgresCapabilities
}

// Config holds PostgreSQL-specific configuration.
type Config struct {
	// ConnectionString is the PostgreSQL connection string.
	ConnectionString string
	// Table defaults to DefaultTable.
	Table string
	// MaxOpenConns sets the maximum number of open connections to the database.
	MaxOpenConns int
	// MaxIdleConns sets the maximum number of idle connections.
	MaxIdleConns int
}

func (c Config) withDefaults() Config {
	if c.Table == "" {
		c.Table = DefaultTable
	}
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 10
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 5
	}
	return c
}

// New connects to PostgreSQL and returns a publisher storing events there.
func New(ctx context.Context, cfg Config, logger watermill.LoggerAdapter) (*sqlstore.Publisher, error) {
	if cfg.ConnectionString == "" {
		return nil, errors.New("PostgreSQL connection string is required")
	}
	cfg = cfg.withDefaults()

	db, err := Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	pub, err := sqlstore.New(ctx, db, sqlstore.Postgres, cfg.Table, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return pub, nil
}
