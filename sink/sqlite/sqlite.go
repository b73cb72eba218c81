// Package sqlite provides a sink that stores events in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/drblury/netflight/sink"
	"github.com/drblury/netflight/sink/sqlstore"
)

// SinkName is the name used to register this sink.
const SinkName = "sqlite"

const (
	// DefaultFilePath is used when the config names no database file.
	DefaultFilePath = "netflight-events.db"
	// DefaultTable is the table events are appended to.
	DefaultTable = "events"
)

// Open opens the database at path. Tests may replace it.
var Open = func(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return db, nil
}

func init() {
	sink.RegisterWithCapabilities(SinkName, Build, sink.SQLiteCapabilities)
}

// Build creates a new SQLite sink.
func Build(ctx context.Context, cfg sink.Config, logger watermill.LoggerAdapter) (message.Publisher, error) {
	pub, err := New(ctx, Config{FilePath: cfg.GetSQLiteFile()}, logger)
	if err != nil {
		return nil, err
	}
	return pub, nil
}

// Capabilities returns the capabilities of this sink.
func Capabilities() sink.Capabilities {
	return sink.SQLiteCapabilities
}

// Config holds SQLite-specific configuration.
type Config struct {
	// FilePath is the path to the database file. Use ":memory:" for an
	// in-memory database.
	FilePath string
	// Table defaults to DefaultTable.
	Table string
}

func (c Config) withDefaults() Config {
	if c.FilePath == "" {
		c.FilePath = DefaultFilePath
	}
	if c.Table == "" {
		c.Table = DefaultTable
	}
	return c
}

// New opens the database described by cfg and returns a publisher storing
// events in it.
func New(ctx context.Context, cfg Config, logger watermill.LoggerAdapter) (*sqlstore.Publisher, error) {
	cfg = cfg.withDefaults()

	db, err := Open(cfg.FilePath)
	if err != nil {
		return nil, err
	}
	pub, err := sqlstore.New(ctx, db, sqlstore.SQLite, cfg.Table, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return pub, nil
}
