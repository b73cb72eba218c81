// Package sqlstore appends published events to a SQL table. The sqlite and
// postgres sinks wrap it with their driver and dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/drblury/netflight/internal/jsoncodec"
)

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("sqlstore: publisher closed")

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Dialect adapts the statements to one database.
type Dialect struct {
	Name string
	// Schema returns the statements creating table and its indexes.
	Schema func(table string) []string
	// Placeholder returns the n-th bind parameter, starting at 1.
	Placeholder func(n int) string
}

// SQLite stores metadata as TEXT and binds with "?".
var SQLite = Dialect{
	Name: "sqlite",
	Schema: func(table string) []string {
		return []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				uuid TEXT NOT NULL UNIQUE,
				topic TEXT NOT NULL,
				payload BLOB NOT NULL,
				metadata TEXT,
				created_at TIMESTAMP NOT NULL
			)`, table),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_topic ON %s(topic, id)`, indexSuffix(table), table),
		}
	},
	Placeholder: func(int) string { return "?" },
}

// Postgres stores metadata as JSONB, binds with "$n" and creates the schema
// of a qualified table name.
var Postgres = Dialect{
	Name: "postgres",
	Schema: func(table string) []string {
		var stmts []string
		if schema, _, ok := strings.Cut(table, "."); ok {
			stmts = append(stmts, fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, schema))
		}
		return append(stmts,
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				id BIGSERIAL PRIMARY KEY,
				uuid TEXT NOT NULL UNIQUE,
				topic TEXT NOT NULL,
				payload BYTEA NOT NULL,
				metadata JSONB DEFAULT '{}',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, table),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_topic ON %s(topic, id)`, indexSuffix(table), table),
		)
	},
	Placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
}

func indexSuffix(table string) string {
	return strings.ReplaceAll(table, ".", "_")
}

// StoredEvent is one row of the events table.
type StoredEvent struct {
	ID        int64
	UUID      string
	Topic     string
	Payload   []byte
	Metadata  map[string]string
	CreatedAt time.Time
}

// Publisher implements message.Publisher on top of a table. The publisher
// owns db and closes it on Close.
type Publisher struct {
	db      *sql.DB
	dialect Dialect
	table   string
	logger  watermill.LoggerAdapter

	insert string

	mu     sync.RWMutex
	closed bool
}

// New creates the table if needed and returns a publisher appending to it.
func New(ctx context.Context, db *sql.DB, dialect Dialect, table string, logger watermill.LoggerAdapter) (*Publisher, error) {
	if db == nil {
		return nil, errors.New("sqlstore: database is required")
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("sqlstore: invalid table name %q", table)
	}
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	for _, stmt := range dialect.Schema(table) {
		// #nosec G201 - table name is validated above
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("failed to initialize %s schema: %w", dialect.Name, err)
		}
	}

	p := dialect.Placeholder
	return &Publisher{
		db:      db,
		dialect: dialect,
		table:   table,
		logger:  logger,
		insert: fmt.Sprintf(`INSERT INTO %s (uuid, topic, payload, metadata, created_at) VALUES (%s, %s, %s, %s, %s)`,
			table, p(1), p(2), p(3), p(4), p(5)),
	}, nil
}

// Table returns the table events are appended to.
func (p *Publisher) Table() string { return p.table }

// Publish inserts messages in one transaction.
func (p *Publisher) Publish(topic string, messages ...*message.Message) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	tx, err := p.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			p.logger.Error("failed to rollback transaction", err, nil)
		}
	}()

	stmt, err := tx.Prepare(p.insert)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, msg := range messages {
		metadata, err := jsoncodec.Marshal(msg.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
		if _, err := stmt.Exec(msg.UUID, topic, msg.Payload, string(metadata), time.Now().UTC()); err != nil {
			return fmt.Errorf("failed to insert event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Count returns the number of events stored for topic.
func (p *Publisher) Count(ctx context.Context, topic string) (int, error) {
	var n int
	// #nosec G201 - table name is validated in New
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE topic = %s`, p.table, p.dialect.Placeholder(1))
	if err := p.db.QueryRowContext(ctx, query, topic).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return n, nil
}

// Recent returns up to limit events of topic, newest first.
func (p *Publisher) Recent(ctx context.Context, topic string, limit int) ([]StoredEvent, error) {
	if limit <= 0 {
		return nil, nil
	}
	// #nosec G201 - table name is validated in New
	query := fmt.Sprintf(`SELECT id, uuid, topic, payload, metadata, created_at FROM %s WHERE topic = %s ORDER BY id DESC LIMIT %s`,
		p.table, p.dialect.Placeholder(1), p.dialect.Placeholder(2))
	rows, err := p.db.QueryContext(ctx, query, topic, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []StoredEvent
	for rows.Next() {
		var (
			ev       StoredEvent
			metadata sql.NullString
		)
		if err := rows.Scan(&ev.ID, &ev.UUID, &ev.Topic, &ev.Payload, &metadata, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if metadata.Valid && metadata.String != "" {
			if err := jsoncodec.Unmarshal([]byte(metadata.String), &ev.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode metadata of %s: %w", ev.UUID, err)
			}
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Close closes the database. Closing twice is a no-op.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.db.Close()
}
