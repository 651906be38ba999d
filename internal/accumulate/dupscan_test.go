package accumulate

import (
	"reflect"
	"testing"
)

func TestDupScanKeepsFirst(t *testing.T) {
	header := []string{"a", "b"}
	d := NewDupScan()
	d.Absorb(batchOf(header, 0,
		[]string{"1", "x"},
		[]string{"2", "y"},
		[]string{"1", "x"},
		[]string{"2", "y"},
		[]string{"1", "x"},
	))
	rep := d.Finalize()

	if rep.Distinct != 2 {
		t.Errorf("Distinct = %d, want 2", rep.Distinct)
	}
	if want := []int64{2, 3, 4}; !reflect.DeepEqual(rep.Duplicates, want) {
		t.Errorf("Duplicates = %v, want %v", rep.Duplicates, want)
	}
}

func TestDupScanCellBoundaries(t *testing.T) {
	// "a","bc" and "ab","c" concatenate identically; the separator must keep
	// them distinct.
	header := []string{"x", "y"}
	d := NewDupScan()
	d.Absorb(batchOf(header, 0,
		[]string{"a", "bc"},
		[]string{"ab", "c"},
	))
	rep := d.Finalize()
	if len(rep.Duplicates) != 0 {
		t.Fatalf("Duplicates = %v, want none", rep.Duplicates)
	}
}

func TestDupScanMergeKeeperIsLowestIndex(t *testing.T) {
	header := []string{"a"}

	// The later range is merged into the earlier one and vice versa; both
	// orders must keep index 0 as the keeper.
	for _, swap := range []bool{false, true} {
		lo := NewDupScan()
		lo.Absorb(batchOf(header, 0, []string{"v"}, []string{"w"}))
		hi := NewDupScan()
		hi.Absorb(batchOf(header, 2, []string{"v"}, []string{"v"}))

		var rep *DupReport
		if swap {
			hi.Merge(lo)
			rep = hi.Finalize()
		} else {
			lo.Merge(hi)
			rep = lo.Finalize()
		}

		want := []int64{2, 3}
		if !reflect.DeepEqual(rep.Duplicates, want) {
			t.Errorf("swap=%v: Duplicates = %v, want %v", swap, rep.Duplicates, want)
		}
		if rep.Distinct != 2 {
			t.Errorf("swap=%v: Distinct = %d, want 2", swap, rep.Distinct)
		}
	}
}
