package policy

import (
	"math"
	"sort"
	"strconv"

	"dq/internal/accumulate"
)

// ImputePlan is the per-column substitution map for infinite values.
type ImputePlan struct {
	// Medians maps column name to the median of its finite subset. Only
	// columns with at least one infinite cell appear.
	Medians map[string]float64
	// Columns lists the keys of Medians in header order.
	Columns []string
	// Undefined lists columns that contain infinite values but no finite
	// ones, so no median exists. They are reported and left untouched; a
	// guessed default would be silent data invention.
	Undefined []string
}

// Empty reports whether the plan substitutes nothing.
func (p ImputePlan) Empty() bool { return len(p.Medians) == 0 }

// BuildImputePlan computes the substitution value for every column holding
// infinite cells: the median of the column's finite numeric values, nulls and
// infinities excluded.
//
// The median is computed as a weighted median over the column's distinct
// value counts, so it needs no second scan of the file. Even totals average
// the two middle values, matching the conventional definition.
func BuildImputePlan(snap *accumulate.Snapshot) ImputePlan {
	plan := ImputePlan{Medians: make(map[string]float64)}
	for _, col := range snap.Columns {
		if col.Infs == 0 {
			continue
		}
		m, ok := finiteMedian(col.Values)
		if !ok {
			plan.Undefined = append(plan.Undefined, col.Name)
			continue
		}
		plan.Medians[col.Name] = m
		plan.Columns = append(plan.Columns, col.Name)
	}
	return plan
}

// FormatValue renders a substitution value the way the rewrite pass writes
// it into cells.
func FormatValue(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

type weighted struct {
	v float64
	n int64
}

// finiteMedian computes the weighted median over the finite numeric subset
// of a frozen value counter. ok is false when no value parses finite.
func finiteMedian(values []accumulate.ValueCount) (float64, bool) {
	var (
		ws    []weighted
		total int64
	)
	for _, vc := range values {
		f, err := strconv.ParseFloat(vc.Value, 64)
		if err != nil || !isFinite(f) {
			continue
		}
		ws = append(ws, weighted{v: f, n: vc.Count})
		total += vc.Count
	}
	if total == 0 {
		return 0, false
	}
	sort.Slice(ws, func(i, j int) bool { return ws[i].v < ws[j].v })

	// Walk the cumulative counts to the middle. For an even total the median
	// is the mean of elements total/2-1 and total/2 (0-based).
	if total%2 == 1 {
		return nthValue(ws, total/2), true
	}
	lo := nthValue(ws, total/2-1)
	hi := nthValue(ws, total/2)
	return (lo + hi) / 2, true
}

func nthValue(ws []weighted, n int64) float64 {
	var cum int64
	for _, w := range ws {
		cum += w.n
		if n < cum {
			return w.v
		}
	}
	return ws[len(ws)-1].v
}

func isFinite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}
