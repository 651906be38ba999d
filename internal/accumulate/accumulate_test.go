package accumulate

import (
	"testing"

	"dq/internal/parser/csv"
)

var testNulls = []string{"NaN", "nan", "NULL", "null", "None", "-"}

func batchOf(header []string, start int64, rows ...[]string) csv.Batch {
	return csv.Batch{Header: header, Start: start, Rows: rows}
}

func TestTableStatsCounts(t *testing.T) {
	header := []string{"proto", "bytes"}
	cls := NewClassifier(testNulls)
	ts := NewTableStats(header, cls)

	err := ts.Absorb(batchOf(header, 0,
		[]string{"TCP", "100"},
		[]string{"UDP", "inf"},
		[]string{"TCP", ""},
		[]string{"TCP", "-5.5"},
		[]string{"NaN", "nan"},
	))
	if err != nil {
		t.Fatalf("absorb: %v", err)
	}
	snap := ts.Finalize()

	if snap.Rows != 5 {
		t.Fatalf("Rows = %d, want 5", snap.Rows)
	}

	proto, ok := snap.Column("proto")
	if !ok {
		t.Fatalf("column proto missing")
	}
	if proto.Nulls != 1 || proto.Total != 4 {
		t.Errorf("proto nulls=%d total=%d, want 1 and 4", proto.Nulls, proto.Total)
	}
	if v, n, ratio, ok := proto.Dominance(); !ok || v != "TCP" || n != 3 || ratio != 0.75 {
		t.Errorf("proto dominance = %q %d %v %v, want TCP 3 0.75 true", v, n, ratio, ok)
	}

	bytes, _ := snap.Column("bytes")
	if bytes.Nulls != 2 {
		t.Errorf("bytes nulls = %d, want 2 (empty cell and nan)", bytes.Nulls)
	}
	if bytes.Infs != 1 {
		t.Errorf("bytes infs = %d, want 1", bytes.Infs)
	}
	if bytes.FiniteCount != 2 {
		t.Errorf("bytes finite = %d, want 2", bytes.FiniteCount)
	}
	if bytes.Min != -5.5 || bytes.Max != 100 {
		t.Errorf("bytes extrema = [%v, %v], want [-5.5, 100]", bytes.Min, bytes.Max)
	}
	if m, ok := bytes.Mean(); !ok || m != 47.25 {
		t.Errorf("bytes mean = %v %v, want 47.25 true", m, ok)
	}

	// Invariant: Total == rows - Nulls, for every column.
	for _, c := range snap.Columns {
		if c.Total != snap.Rows-c.Nulls {
			t.Errorf("column %s: Total %d != Rows %d - Nulls %d", c.Name, c.Total, snap.Rows, c.Nulls)
		}
	}
}

// Absorbing a stream split at any point and merging must equal absorbing it
// whole. This is the property chunked and parallel accumulation rely on.
func TestTableStatsMergeEquivalence(t *testing.T) {
	header := []string{"a", "b"}
	rows := [][]string{
		{"x", "1"},
		{"y", "inf"},
		{"x", ""},
		{"z", "3"},
		{"x", "nan"},
		{"y", "2"},
	}
	cls := NewClassifier(testNulls)

	whole := NewTableStats(header, cls)
	if err := whole.Absorb(batchOf(header, 0, rows...)); err != nil {
		t.Fatalf("absorb whole: %v", err)
	}
	want := whole.Finalize()

	for split := 0; split <= len(rows); split++ {
		left := NewTableStats(header, cls)
		right := NewTableStats(header, cls)
		if err := left.Absorb(batchOf(header, 0, rows[:split]...)); err != nil {
			t.Fatalf("split %d: absorb left: %v", split, err)
		}
		if err := right.Absorb(batchOf(header, int64(split), rows[split:]...)); err != nil {
			t.Fatalf("split %d: absorb right: %v", split, err)
		}
		if err := left.Merge(right); err != nil {
			t.Fatalf("split %d: merge: %v", split, err)
		}
		got := left.Finalize()

		if got.Rows != want.Rows {
			t.Errorf("split %d: Rows = %d, want %d", split, got.Rows, want.Rows)
		}
		for i, wc := range want.Columns {
			gc := got.Columns[i]
			if gc.Nulls != wc.Nulls || gc.Infs != wc.Infs || gc.Total != wc.Total ||
				gc.FiniteCount != wc.FiniteCount || gc.Sum != wc.Sum ||
				gc.Min != wc.Min || gc.Max != wc.Max {
				t.Errorf("split %d column %s: got %+v, want %+v", split, wc.Name, gc, wc)
			}
			for _, vc := range wc.Values {
				if gotN := counterGet(gc.Values, vc.Value); gotN != vc.Count {
					t.Errorf("split %d column %s value %q: count %d, want %d", split, wc.Name, vc.Value, gotN, vc.Count)
				}
			}
		}
	}
}

func counterGet(items []ValueCount, v string) int64 {
	for _, it := range items {
		if it.Value == v {
			return it.Count
		}
	}
	return 0
}

func TestAbsorbAfterFinalizePanics(t *testing.T) {
	header := []string{"a"}
	ts := NewTableStats(header, NewClassifier(nil))
	ts.Finalize()

	defer func() {
		if recover() == nil {
			t.Fatalf("Absorb after Finalize did not panic")
		}
	}()
	ts.Absorb(batchOf(header, 0, []string{"x"}))
}

func TestDominanceTieBreaksFirstEncountered(t *testing.T) {
	header := []string{"c"}
	ts := NewTableStats(header, NewClassifier(nil))
	ts.Absorb(batchOf(header, 0,
		[]string{"b"},
		[]string{"a"},
		[]string{"b"},
		[]string{"a"},
	))
	snap := ts.Finalize()

	v, n, ratio, ok := snap.Columns[0].Dominance()
	if !ok || v != "b" || n != 2 || ratio != 0.5 {
		t.Fatalf("dominance = %q %d %v %v, want first-encountered b 2 0.5 true", v, n, ratio, ok)
	}
}

func TestConstantAndMixed(t *testing.T) {
	header := []string{"flag", "mixed", "empty"}
	ts := NewTableStats(header, NewClassifier(testNulls))
	ts.Absorb(batchOf(header, 0,
		[]string{"1", "5", ""},
		[]string{"1", "abc", ""},
		[]string{"", "7", ""},
	))
	snap := ts.Finalize()

	if c, _ := snap.Column("flag"); !c.Constant() {
		t.Errorf("flag not constant")
	}
	if c, _ := snap.Column("empty"); !c.Constant() {
		t.Errorf("all-null column not constant")
	}
	c, _ := snap.Column("mixed")
	if !c.Mixed() {
		t.Errorf("mixed column not flagged as mixed")
	}
	if c.Constant() {
		t.Errorf("mixed column flagged constant")
	}
}
