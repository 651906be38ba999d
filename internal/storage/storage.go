// Package storage persists run history: one record per processed file with
// its counters, decisions and outcome. The audit trail is what lets someone
// reconstruct which rows and columns a cleaned dataset lost without re-running
// the analysis.
//
// The package follows the same abstraction pattern as metrics: a narrow
// interface, a no-op default, and concrete backends (SQLite for local runs,
// Postgres for shared infrastructure) isolated in subpackages.
package storage

import (
	"context"
	"strings"

	"dq/internal/storage/postgres"
	"dq/internal/storage/sqlite"
	"dq/pkg/audit"
)

// Store persists audit runs.
type Store interface {
	SaveRun(ctx context.Context, r audit.Run) error
	Close() error
}

// Config selects a backend by DSN. An empty DSN yields a no-op store, so
// auditing is always safe to call and strictly optional.
type Config struct {
	DSN   string
	Table string
}

// New dispatches on the DSN scheme: postgres:// or postgresql:// selects the
// Postgres backend, anything else is treated as a SQLite path/DSN.
func New(ctx context.Context, cfg Config) (Store, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nopStore{}, nil
	}
	table := cfg.Table
	if table == "" {
		table = "dq_runs"
	}
	if strings.HasPrefix(cfg.DSN, "postgres://") || strings.HasPrefix(cfg.DSN, "postgresql://") {
		return postgres.NewStore(ctx, postgres.Config{DSN: cfg.DSN, Table: table})
	}
	return sqlite.NewStore(ctx, sqlite.Config{DSN: cfg.DSN, Table: table})
}

type nopStore struct{}

func (nopStore) SaveRun(ctx context.Context, r audit.Run) error { return nil }
func (nopStore) Close() error                                   { return nil }
