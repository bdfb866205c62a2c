// Package storage implements the gateway's storage writer (spec.md §4.10,
// §6, C10): a shared, bounded Postgres connection pool and the three
// table inserts (sensor_readings, tag_readings, air_readings).
//
// Grounded on the teacher's `internal/repository` package (`dbConnection.go`,
// `migration.go`): same `sqlx.Open` + `SetMaxOpenConns` + golang-migrate
// bootstrap shape, adapted from the teacher's sqlite3/mysql backends to
// Postgres, since this spec's `macaddr`/`timestamptz` column types require
// it (the teacher's two backends support neither type).
package storage

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
)

// maxOpenConns is the gateway's bounded connection-pool size (spec.md §5:
// "Database pool is shared and synchronized internally (max connections
// = 5)").
const maxOpenConns = 5

// Store wraps the shared connection pool and exposes the insert and query
// operations the gateway needs.
type Store struct {
	db *sqlx.DB
}

// Open connects to Postgres at dsn, applies embedded migrations, and
// bounds the pool to maxOpenConns.
func Open(dsn string) (*Store, error) {
	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("storage: ping: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)

	if err := migrate(db.DB); err != nil {
		return nil, fmt.Errorf("storage: migrate: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying *sqlx.DB for callers (e.g. the admin API's
// health check) that only need a ping, not a domain-specific query.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// NewForTesting wraps an already-open *sqlx.DB as a Store, bypassing Open's
// migration step. It exists for tests in other packages (e.g. adminapi)
// that need a Store backed by a DSN they control without running the real
// migration against it.
func NewForTesting(db *sqlx.DB) *Store {
	return &Store{db: db}
}
