// Package store is the bun backed persistence layer for profiles, events,
// applications and tags. SQLite and PostgreSQL are supported.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"ocall/internal/models"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
	_ "modernc.org/sqlite"
)

const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"

	defaultMaxOpenConns    = 25
	defaultConnMaxLifetime = 5 * time.Minute
	defaultConnMaxIdleTime = time.Minute
)

type Options struct {
	Type         string
	DSN          string
	MaxOpenConns int
}

type Store struct {
	db  *bun.DB
	now func() time.Time
}

// sqlOpenFunc allows tests to override database opening behavior.
var sqlOpenFunc = sql.Open

// Open connects to the database, tunes the pool and applies the schema.
func Open(ctx context.Context, opts Options) (*Store, error) {
	driverName, dialect, err := driverFor(opts.Type)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	sqlDB, err := sqlOpenFunc(driverName, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	maxOpen := opts.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = defaultMaxOpenConns
	}
	// Every connection to an in-memory sqlite database sees its own empty
	// database, so pin the pool to one connection.
	if opts.Type == TypeSQLite && isMemoryDSN(opts.DSN) {
		maxOpen = 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxOpen)
	sqlDB.SetConnMaxLifetime(defaultConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(defaultConnMaxIdleTime)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	log.Printf("store: opened driver=%s max_open=%d dur=%s", driverName, maxOpen, time.Since(start).Truncate(time.Millisecond))

	s := &Store{db: bun.NewDB(sqlDB, dialect), now: func() time.Time { return time.Now().UTC() }}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

func driverFor(dbType string) (string, schema.Dialect, error) {
	switch dbType {
	case TypeSQLite:
		return "sqlite", sqlitedialect.New(), nil
	case TypePostgres:
		// The pgx stdlib registers driver name "pgx".
		return "pgx", pgdialect.New(), nil
	default:
		return "", nil, fmt.Errorf("unsupported database type: %q", dbType)
	}
}

func isMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// Migrate creates any missing tables and indexes. It is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	start := time.Now()
	tables := []any{
		(*models.Profile)(nil),
		(*models.Tag)(nil),
		(*models.Event)(nil),
		(*models.EventTag)(nil),
		(*models.Application)(nil),
	}
	for _, m := range tables {
		if _, err := s.db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", m, err)
		}
	}

	indexes := []struct {
		model  any
		name   string
		column string
	}{
		{(*models.Event)(nil), "events_producer_id_idx", "producer_id"},
		{(*models.Event)(nil), "events_event_time_idx", "event_time"},
		{(*models.Application)(nil), "applications_event_id_idx", "event_id"},
		{(*models.Application)(nil), "applications_performer_id_idx", "performer_id"},
		{(*models.EventTag)(nil), "event_tags_tag_id_idx", "tag_id"},
	}
	for _, idx := range indexes {
		if _, err := s.db.NewCreateIndex().Model(idx.model).Index(idx.name).Column(idx.column).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create index %s: %w", idx.name, err)
		}
	}
	log.Printf("store: migrations completed dur=%s", time.Since(start).Truncate(time.Millisecond))
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
