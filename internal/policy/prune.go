package policy

import (
	"dq/internal/accumulate"
)

// PruneVerdict is the prune decision for one column.
type PruneVerdict struct {
	Name  string
	Nulls int64
	Infs  int64
	Rows  int64
	// Ratio is (Nulls+Infs)/Rows.
	Ratio float64
	// Drop is true when Ratio is strictly above the threshold. A column
	// exactly at the threshold is kept.
	Drop bool
}

// PruneColumns evaluates every column against the null+infinite ratio
// threshold and returns a verdict per column that has at least one null or
// infinite cell, in header order. Columns with a clean bill are omitted.
func PruneColumns(snap *accumulate.Snapshot, threshold float64) []PruneVerdict {
	var out []PruneVerdict
	for _, col := range snap.Columns {
		bad := col.Nulls + col.Infs
		if bad == 0 || snap.Rows == 0 {
			continue
		}
		ratio := float64(bad) / float64(snap.Rows)
		out = append(out, PruneVerdict{
			Name:  col.Name,
			Nulls: col.Nulls,
			Infs:  col.Infs,
			Rows:  snap.Rows,
			Ratio: ratio,
			Drop:  ratio > threshold,
		})
	}
	return out
}

// DropSet extracts the names of columns flagged for removal.
func DropSet(verdicts []PruneVerdict) []string {
	var out []string
	for _, v := range verdicts {
		if v.Drop {
			out = append(out, v.Name)
		}
	}
	return out
}
