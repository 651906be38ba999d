// Package accumulate implements the mergeable per-column statistics that the
// analysis pass builds up chunk by chunk: value frequencies, null/infinite
// counts, finite extrema, a label cross-tabulation, and a duplicate-row scan.
//
// Every aggregate in this package satisfies the same contract: absorbing two
// disjoint row ranges separately and merging gives the same counters as
// absorbing the whole range in one pass. That property is what keeps chunked
// (and parallel) accumulation memory-bounded without changing results.
package accumulate

import (
	"fmt"
	"math"

	"dq/internal/parser/csv"
)

// ColumnStats is the running aggregate for one column. Counts only ever
// increase while absorbing; Finalize freezes them into a ColumnSnapshot.
//
// The value counter tracks every non-null cell under its literal text,
// infinite literals included, so "the most frequent value" can be a string
// like "TCP" or "inf". Extrema and the running sum cover only cells that
// parse to a finite number.
type ColumnStats struct {
	Name string

	values *Counter
	nulls  int64
	infs   int64

	finiteCount int64
	textCount   int64
	sum         float64
	min         float64
	max         float64
}

func newColumnStats(name string) *ColumnStats {
	return &ColumnStats{
		Name:   name,
		values: NewCounter(),
		min:    math.Inf(1),
		max:    math.Inf(-1),
	}
}

func (c *ColumnStats) absorb(cell string, cls *Classifier) {
	kind, f := cls.Classify(cell)
	if kind == KindNull {
		c.nulls++
		return
	}
	c.values.Add(cell, 1)
	switch kind {
	case KindInfinite:
		c.infs++
	case KindNumeric:
		c.finiteCount++
		c.sum += f
		if f < c.min {
			c.min = f
		}
		if f > c.max {
			c.max = f
		}
	default:
		c.textCount++
	}
}

func (c *ColumnStats) merge(o *ColumnStats) {
	c.values.Merge(o.values)
	c.nulls += o.nulls
	c.infs += o.infs
	c.finiteCount += o.finiteCount
	c.textCount += o.textCount
	c.sum += o.sum
	if o.min < c.min {
		c.min = o.min
	}
	if o.max > c.max {
		c.max = o.max
	}
}

// TableStats accumulates ColumnStats for every column of a fixed header.
type TableStats struct {
	header    []string
	columns   []*ColumnStats
	rows      int64
	cls       *Classifier
	finalized bool
}

// NewTableStats returns an empty accumulator for the given header.
func NewTableStats(header []string, cls *Classifier) *TableStats {
	t := &TableStats{
		header:  append([]string(nil), header...),
		columns: make([]*ColumnStats, len(header)),
		cls:     cls,
	}
	for i, h := range header {
		t.columns[i] = newColumnStats(h)
	}
	return t
}

// Absorb folds one batch into the accumulator. The batch header must match
// the accumulator's header; a mismatch is a schema error, not a row error.
// Absorb after Finalize is a programming error and panics.
func (t *TableStats) Absorb(b csv.Batch) error {
	if t.finalized {
		panic("accumulate: Absorb after Finalize")
	}
	if len(b.Header) != len(t.header) {
		return fmt.Errorf("accumulate: batch has %d columns, accumulator has %d", len(b.Header), len(t.header))
	}
	for _, row := range b.Rows {
		for i, cell := range row {
			t.columns[i].absorb(cell, t.cls)
		}
	}
	t.rows += int64(len(b.Rows))
	return nil
}

// Merge folds another accumulator for the same header into t. Counters add
// commutatively; t's first-encountered value order wins for values both sides
// have seen. Merging a finalized accumulator (either side) panics.
func (t *TableStats) Merge(o *TableStats) error {
	if t.finalized || o.finalized {
		panic("accumulate: Merge after Finalize")
	}
	if !headerEqual(t.header, o.header) {
		return fmt.Errorf("accumulate: merge of mismatched headers")
	}
	for i := range t.columns {
		t.columns[i].merge(o.columns[i])
	}
	t.rows += o.rows
	return nil
}

// Finalize freezes the accumulator into an immutable Snapshot. The
// accumulator itself must not be used afterwards.
func (t *TableStats) Finalize() *Snapshot {
	t.finalized = true
	snap := &Snapshot{
		Header:  append([]string(nil), t.header...),
		Rows:    t.rows,
		Columns: make([]ColumnSnapshot, len(t.columns)),
		index:   make(map[string]int, len(t.columns)),
	}
	for i, c := range t.columns {
		cs := ColumnSnapshot{
			Name:        c.Name,
			Values:      c.values.Items(),
			Total:       c.values.Total(),
			Nulls:       c.nulls,
			Infs:        c.infs,
			FiniteCount: c.finiteCount,
			TextCount:   c.textCount,
			Sum:         c.sum,
		}
		if c.finiteCount > 0 {
			cs.Min, cs.Max = c.min, c.max
		}
		snap.Columns[i] = cs
		snap.index[c.Name] = i
	}
	return snap
}

// Snapshot is the frozen result of the analysis pass. Policy evaluators are
// pure functions over it.
type Snapshot struct {
	Header  []string
	Rows    int64 // rows seen, nulls included
	Columns []ColumnSnapshot
	index   map[string]int
}

// ColumnSnapshot is one column's frozen statistics.
//
// Invariant: Total == sum over Values == rows seen minus Nulls.
type ColumnSnapshot struct {
	Name        string
	Values      []ValueCount // first-encountered order
	Total       int64        // non-null cells
	Nulls       int64
	Infs        int64
	FiniteCount int64
	TextCount   int64
	Sum         float64
	Min, Max    float64 // valid only when FiniteCount > 0
}

// Column returns the snapshot for name, ok=false if the column is unknown.
func (s *Snapshot) Column(name string) (ColumnSnapshot, bool) {
	i, ok := s.index[name]
	if !ok {
		return ColumnSnapshot{}, false
	}
	return s.Columns[i], true
}

// Dominance returns the column's most frequent value, its count, and the
// dominance ratio count/Total. Ties break toward the first-encountered value.
// ok is false when the column has no non-null values.
func (c ColumnSnapshot) Dominance() (value string, count int64, ratio float64, ok bool) {
	if c.Total == 0 {
		return "", 0, 0, false
	}
	for _, vc := range c.Values {
		if vc.Count > count {
			value, count = vc.Value, vc.Count
		}
	}
	return value, count, float64(count) / float64(c.Total), true
}

// Mean returns the mean of the finite numeric subset, ok=false when the
// column has no finite values.
func (c ColumnSnapshot) Mean() (float64, bool) {
	if c.FiniteCount == 0 {
		return 0, false
	}
	return c.Sum / float64(c.FiniteCount), true
}

// Mixed reports whether the column holds both finite numeric and textual
// values, which usually signals an encoding or extraction problem upstream.
func (c ColumnSnapshot) Mixed() bool {
	return c.FiniteCount > 0 && c.TextCount > 0
}

// Constant reports whether the column never takes a second distinct non-null
// value.
func (c ColumnSnapshot) Constant() bool {
	return len(c.Values) <= 1
}

func headerEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
