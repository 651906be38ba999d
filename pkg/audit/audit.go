// Package audit defines the run-history record shared by the storage
// backends. It lives outside internal/storage so the backend subpackages and
// the dispatcher can both depend on it without a cycle.
package audit

import "time"

// Run is one audit record: a single file processed by the engine.
type Run struct {
	Job        string
	Path       string
	Task       string
	Outcome    string
	Rows       int64
	Malformed  int64
	Invalid    int64
	Duplicates int64
	// DecisionsJSON is the serialized decision set; empty for no-action runs.
	DecisionsJSON string
	// OutputPath is set when a rewrite was applied.
	OutputPath string
	StartedAt  time.Time
	Duration   time.Duration
}
