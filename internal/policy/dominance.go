package policy

import (
	"dq/internal/accumulate"
	"dq/internal/config"
)

// BucketColumn is one column assigned to a dominance bucket.
type BucketColumn struct {
	Name     string
	TopValue string
	TopCount int64
	Total    int64
	Ratio    float64
}

// Bucket is one dominance range with the columns that fall into it, in
// header order.
type Bucket struct {
	Range   config.BucketRange
	Columns []BucketColumn
}

// BucketDominance assigns every column with a dominance ratio inside one of
// the configured ranges to that bucket. Ranges are checked in declaration
// order and a column lands in at most one. Columns below every range (by the
// default edges, anything under 0.50) are omitted entirely: the report is
// about dominant values, not all columns.
//
// The function is pure over the snapshot; re-running it always yields the
// same assignment, including the tie-break for the top value, which the
// snapshot fixes to first-encountered order.
func BucketDominance(snap *accumulate.Snapshot, ranges []config.BucketRange) []Bucket {
	out := make([]Bucket, len(ranges))
	for i, r := range ranges {
		out[i].Range = r
	}
	for _, col := range snap.Columns {
		value, count, ratio, ok := col.Dominance()
		if !ok {
			continue
		}
		for i, r := range ranges {
			if ratio >= r.Low && ratio < r.High {
				out[i].Columns = append(out[i].Columns, BucketColumn{
					Name:     col.Name,
					TopValue: value,
					TopCount: count,
					Total:    col.Total,
					Ratio:    ratio,
				})
				break
			}
		}
	}
	return out
}

// ConstantColumns returns the names of columns that never take a second
// distinct non-null value. These are a degenerate dominance case (ratio
// exactly 1.0) worth surfacing on their own: a constant feature carries no
// signal for a classifier.
func ConstantColumns(snap *accumulate.Snapshot) []string {
	var out []string
	for _, col := range snap.Columns {
		if col.Total > 0 && col.Constant() {
			out = append(out, col.Name)
		}
	}
	return out
}
