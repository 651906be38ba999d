package engine

import (
	"fmt"

	"dq/internal/parser/csv"
)

// Tracker verifies that the rewrite pass sees the same absolute index space
// the analysis pass recorded decisions in: indices must be strictly
// increasing and contiguous across the whole pass. The two passes may use
// different batch sizes; only the file's own row counter matters, never the
// in-chunk position.
type Tracker struct {
	next int64
}

// Observe checks one batch against the expected position and advances the
// tracker. A gap or overlap means the source violated its contract (or the
// file changed between passes) and aborts the rewrite rather than dropping
// the wrong rows.
func (t *Tracker) Observe(b csv.Batch) error {
	if b.Start != t.next {
		return fmt.Errorf("row index discontinuity: batch starts at %d, expected %d", b.Start, t.next)
	}
	t.next += int64(len(b.Rows))
	return nil
}

// Rows returns the number of rows observed so far.
func (t *Tracker) Rows() int64 { return t.next }
