package accumulate

import (
	"errors"
	"math"
	"strconv"
)

// Kind classifies a single cell.
type Kind int

const (
	// KindNull covers empty cells, configured null literals, and values that
	// parse to NaN.
	KindNull Kind = iota
	// KindInfinite covers values that parse to ±Inf.
	KindInfinite
	// KindNumeric covers finite parseable numbers.
	KindNumeric
	// KindText covers everything else. A failed numeric parse is not an
	// error; the literal text is a category of its own.
	KindText
)

// Classifier decides what a raw cell is. Classification is lazy and lossless:
// the engine stores cells as text and only here, per policy need, attempts a
// numeric reading.
type Classifier struct {
	nulls map[string]struct{}
}

// NewClassifier builds a Classifier treating the empty string plus the given
// literals as null.
func NewClassifier(nullLiterals []string) *Classifier {
	m := make(map[string]struct{}, len(nullLiterals)+1)
	m[""] = struct{}{}
	for _, s := range nullLiterals {
		m[s] = struct{}{}
	}
	return &Classifier{nulls: m}
}

// Classify returns the cell's kind and, for KindNumeric, its finite value.
func (c *Classifier) Classify(cell string) (Kind, float64) {
	if _, ok := c.nulls[cell]; ok {
		return KindNull, 0
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		// Overflow literals like "1e309" come back as ±Inf with ErrRange;
		// they are infinite values, not text.
		if errors.Is(err, strconv.ErrRange) && math.IsInf(f, 0) {
			return KindInfinite, 0
		}
		return KindText, 0
	}
	switch {
	case math.IsInf(f, 0):
		return KindInfinite, 0
	case math.IsNaN(f):
		return KindNull, 0
	default:
		return KindNumeric, f
	}
}

// Numeric reports the finite numeric value of cell, with ok=false for null,
// infinite, NaN, or unparseable cells. Policy code uses this for fail-closed
// rule checks.
func (c *Classifier) Numeric(cell string) (float64, bool) {
	k, f := c.Classify(cell)
	return f, k == KindNumeric
}

// IsNull reports whether cell is a configured null literal (or empty).
func (c *Classifier) IsNull(cell string) bool {
	_, ok := c.nulls[cell]
	return ok
}
