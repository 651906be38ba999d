package accumulate

import (
	"strings"

	"dq/internal/parser/csv"
)

// CrossTab records (column, value, label) co-occurrence counts plus the
// global label distribution, fed from the same batch stream as the column
// accumulator. Its only purpose is the per-label breakdown attached to
// dominance and violation reports; nothing else in the engine looks at
// labels.
//
// Memory grows with the number of distinct (column, value) pairs, the same
// bound the value counters already accept.
type CrossTab struct {
	labelIdx  int
	labelName string
	labels    *Counter
	cells     []map[string]*Counter // per column: value -> label counts
	cls       *Classifier
	finalized bool
}

// NewCrossTab returns a cross-tabulator for the given header. labelColumn is
// matched ASCII-case-insensitively; if the header has no label column the
// tabulator is inert and Absorb is a no-op.
func NewCrossTab(header []string, labelColumn string, cls *Classifier) *CrossTab {
	ct := &CrossTab{
		labelIdx: FindLabel(header, labelColumn),
		labels:   NewCounter(),
		cells:    make([]map[string]*Counter, len(header)),
		cls:      cls,
	}
	if ct.labelIdx >= 0 {
		ct.labelName = header[ct.labelIdx]
	}
	return ct
}

// FindLabel returns the index of the label column in header, matched
// case-insensitively, or -1.
func FindLabel(header []string, labelColumn string) int {
	if labelColumn == "" {
		return -1
	}
	for i, h := range header {
		if strings.EqualFold(h, labelColumn) {
			return i
		}
	}
	return -1
}

// Enabled reports whether a label column was found.
func (ct *CrossTab) Enabled() bool { return ct.labelIdx >= 0 }

// LabelColumn returns the matched header name ("" when disabled).
func (ct *CrossTab) LabelColumn() string { return ct.labelName }

// Absorb folds one batch into the tabulation. Null cells and null labels are
// skipped; the label column itself is not cross-tabulated against itself.
func (ct *CrossTab) Absorb(b csv.Batch) {
	if ct.finalized {
		panic("accumulate: CrossTab Absorb after Finalize")
	}
	if ct.labelIdx < 0 {
		return
	}
	for _, row := range b.Rows {
		label := row[ct.labelIdx]
		if ct.cls.IsNull(label) {
			continue
		}
		ct.labels.Add(label, 1)
		for i, cell := range row {
			if i == ct.labelIdx || ct.cls.IsNull(cell) {
				continue
			}
			m := ct.cells[i]
			if m == nil {
				m = make(map[string]*Counter)
				ct.cells[i] = m
			}
			cc := m[cell]
			if cc == nil {
				cc = NewCounter()
				m[cell] = cc
			}
			cc.Add(label, 1)
		}
	}
}

// Merge folds another CrossTab built over the same header into ct.
func (ct *CrossTab) Merge(o *CrossTab) {
	if ct.finalized || o.finalized {
		panic("accumulate: CrossTab Merge after Finalize")
	}
	if ct.labelIdx < 0 || o.labelIdx < 0 {
		return
	}
	ct.labels.Merge(o.labels)
	for i, om := range o.cells {
		if om == nil {
			continue
		}
		m := ct.cells[i]
		if m == nil {
			m = make(map[string]*Counter)
			ct.cells[i] = m
		}
		for v, oc := range om {
			cc := m[v]
			if cc == nil {
				cc = NewCounter()
				m[v] = cc
			}
			cc.Merge(oc)
		}
	}
}

// Finalize freezes the tabulation.
func (ct *CrossTab) Finalize() *CrossSnapshot {
	ct.finalized = true
	return &CrossSnapshot{
		LabelColumn: ct.labelName,
		Labels:      ct.labels,
		cells:       ct.cells,
	}
}

// CrossSnapshot is the frozen cross-tabulation.
type CrossSnapshot struct {
	LabelColumn string
	// Labels is the global label distribution (first-encountered order).
	Labels *Counter
	cells  []map[string]*Counter
}

// LabelsFor returns the label counts observed alongside value in the column
// at header index col, or nil if the pair was never seen.
func (s *CrossSnapshot) LabelsFor(col int, value string) *Counter {
	if s == nil || col < 0 || col >= len(s.cells) || s.cells[col] == nil {
		return nil
	}
	return s.cells[col][value]
}
