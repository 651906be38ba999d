// Package postgres implements a Postgres-backed audit store using pgx v5.
// It is the backend of choice when several machines scrub datasets against a
// shared run-history table.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"dq/pkg/audit"
)

// Config holds Postgres store configuration.
type Config struct {
	// DSN is the connection string for pgxpool (e.g., postgresql://...).
	DSN string
	// Table is the target table name, optionally schema-qualified
	// (e.g., "public.dq_runs").
	Table string
}

// Store is a Postgres-backed audit store.
type Store struct {
	pool *pgxpool.Pool
	cfg  Config
}

// NewStore connects a pool and creates the run table if it does not exist.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("postgres: DSN must not be empty")
	}
	if cfg.Table == "" {
		cfg.Table = "dq_runs"
	}
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	s := &Store{pool: pool, cfg: cfg}
	if err := s.ensureTable(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureTable(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		job TEXT NOT NULL,
		path TEXT NOT NULL,
		task TEXT NOT NULL,
		outcome TEXT NOT NULL,
		rows_seen BIGINT NOT NULL,
		malformed BIGINT NOT NULL,
		invalid BIGINT NOT NULL,
		duplicates BIGINT NOT NULL,
		decisions JSONB,
		output_path TEXT,
		started_at TIMESTAMPTZ NOT NULL,
		duration_ms BIGINT NOT NULL
	)`, pgFQN(s.cfg.Table))
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("postgres: create table %s: %w", s.cfg.Table, err)
	}
	return nil
}

// SaveRun inserts one run record.
func (s *Store) SaveRun(ctx context.Context, r audit.Run) error {
	q := fmt.Sprintf(`INSERT INTO %s
		(job, path, task, outcome, rows_seen, malformed, invalid, duplicates,
		 decisions, output_path, started_at, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, '')::jsonb, $10, $11, $12)`,
		pgFQN(s.cfg.Table))
	_, err := s.pool.Exec(ctx, q,
		r.Job, r.Path, r.Task, r.Outcome, r.Rows, r.Malformed, r.Invalid,
		r.Duplicates, r.DecisionsJSON, r.OutputPath, r.StartedAt.UTC(),
		r.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("postgres: insert run: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// pgIdent quotes a single identifier.
func pgIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// pgFQN quotes a possibly schema-qualified name part by part.
func pgFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = pgIdent(p)
	}
	return strings.Join(parts, ".")
}
