// Package sqlite implements a SQLite-backed audit store using database/sql.
// Inserts run inside implicit transactions; SQLite has no bulk-load API, but
// run records arrive one per file, so throughput is not a concern here.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	// SQLite driver; replace with your preferred driver if desired.
	_ "modernc.org/sqlite" // alternative: github.com/mattn/go-sqlite3

	"dq/pkg/audit"
)

// Config holds SQLite store configuration.
type Config struct {
	// DSN is passed directly to database/sql; for example:
	//
	//	"file:dq.db?cache=shared&_fk=1"
	//	"dq.db"
	DSN   string
	Table string
}

// Store is a SQLite-backed audit store.
type Store struct {
	db  *sql.DB
	cfg Config
}

// NewStore opens a SQLite connection using the provided DSN and creates the
// run table if it does not exist.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	if cfg.Table == "" {
		cfg.Table = "dq_runs"
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	// Ping with a short deadline to fail fast on invalid DSNs.
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	s := &Store{db: db, cfg: cfg}
	if err := s.ensureTable(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureTable(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job TEXT NOT NULL,
		path TEXT NOT NULL,
		task TEXT NOT NULL,
		outcome TEXT NOT NULL,
		rows_seen INTEGER NOT NULL,
		malformed INTEGER NOT NULL,
		invalid INTEGER NOT NULL,
		duplicates INTEGER NOT NULL,
		decisions TEXT,
		output_path TEXT,
		started_at TEXT NOT NULL,
		duration_ms INTEGER NOT NULL
	)`, ident(s.cfg.Table))
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("sqlite: create table %s: %w", s.cfg.Table, err)
	}
	return nil
}

// SaveRun inserts one run record.
func (s *Store) SaveRun(ctx context.Context, r audit.Run) error {
	q := fmt.Sprintf(`INSERT INTO %s
		(job, path, task, outcome, rows_seen, malformed, invalid, duplicates,
		 decisions, output_path, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, ident(s.cfg.Table))
	_, err := s.db.ExecContext(ctx, q,
		r.Job, r.Path, r.Task, r.Outcome, r.Rows, r.Malformed, r.Invalid,
		r.Duplicates, r.DecisionsJSON, r.OutputPath,
		r.StartedAt.UTC().Format(time.RFC3339), r.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert run: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// ident quotes a table identifier. Dots are preserved so callers may use
// schema-qualified names with attached databases.
func ident(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}
