package accumulate

import (
	"sort"

	"github.com/zeebo/xxh3"

	"dq/internal/parser/csv"
)

// DupScan detects duplicate rows during the analysis pass. Rows are keyed by
// an xxh3 hash over their cells (NUL-separated, so "a","bc" and "ab","c"
// hash differently); the first occurrence is the keeper and every later
// occurrence is recorded as a drop candidate by absolute index.
//
// The scan keeps one 8-byte hash plus an index per distinct row, which is the
// accepted memory cost of exact-match deduplication without a sort pass.
type DupScan struct {
	seen      map[uint64]int64 // hash -> first absolute index
	dups      []int64
	buf       []byte
	finalized bool
}

// NewDupScan returns an empty duplicate scanner.
func NewDupScan() *DupScan {
	return &DupScan{seen: make(map[uint64]int64)}
}

// Absorb hashes every row of the batch.
func (d *DupScan) Absorb(b csv.Batch) {
	if d.finalized {
		panic("accumulate: DupScan Absorb after Finalize")
	}
	for i, row := range b.Rows {
		abs := b.Start + int64(i)
		h := d.hashRow(row)
		if first, ok := d.seen[h]; ok {
			if abs < first {
				// Possible when batches merge out of order: the earlier row
				// becomes the keeper and the previous keeper the duplicate.
				d.seen[h] = abs
				d.dups = append(d.dups, first)
			} else {
				d.dups = append(d.dups, abs)
			}
			continue
		}
		d.seen[h] = abs
	}
}

func (d *DupScan) hashRow(row []string) uint64 {
	d.buf = d.buf[:0]
	for i, cell := range row {
		if i > 0 {
			d.buf = append(d.buf, 0)
		}
		d.buf = append(d.buf, cell...)
	}
	return xxh3.Hash(d.buf)
}

// Merge folds another scan over a disjoint row range into d, keeping the
// lowest absolute index per row hash as the keeper.
func (d *DupScan) Merge(o *DupScan) {
	if d.finalized || o.finalized {
		panic("accumulate: DupScan Merge after Finalize")
	}
	d.dups = append(d.dups, o.dups...)
	for h, idx := range o.seen {
		first, ok := d.seen[h]
		switch {
		case !ok:
			d.seen[h] = idx
		case idx < first:
			d.seen[h] = idx
			d.dups = append(d.dups, first)
		default:
			d.dups = append(d.dups, idx)
		}
	}
}

// Finalize freezes the scan into a report of duplicate indices, sorted
// ascending.
func (d *DupScan) Finalize() *DupReport {
	d.finalized = true
	sort.Slice(d.dups, func(i, j int) bool { return d.dups[i] < d.dups[j] })
	return &DupReport{
		Distinct:   int64(len(d.seen)),
		Duplicates: d.dups,
	}
}

// DupReport is the frozen duplicate-scan result.
type DupReport struct {
	// Distinct is the number of distinct rows seen.
	Distinct int64
	// Duplicates are the absolute indices of rows that repeat an earlier row,
	// sorted ascending. Dropping exactly these indices keeps the first
	// occurrence of every row.
	Duplicates []int64
}
