package csv_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	pcsv "dq/internal/parser/csv"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.csv")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func collect(t *testing.T, src *pcsv.Source, batchSize int) (batches []pcsv.Batch, errs []error) {
	t.Helper()
	err := src.Scan(context.Background(), batchSize, func(b pcsv.Batch) error {
		batches = append(batches, b)
		return nil
	}, func(line int, err error) {
		errs = append(errs, err)
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	return batches, errs
}

func TestScanBatching(t *testing.T) {
	path := writeFile(t, "a,b\n1,x\n2,y\n3,z\n4,w\n5,v\n")
	src := pcsv.NewSource(path, pcsv.Options{Comma: ',', TrimSpace: true})

	batches, errs := collect(t, src, 2)
	if len(errs) != 0 {
		t.Fatalf("row errors: %v", errs)
	}
	if len(batches) != 3 {
		t.Fatalf("len(batches) = %d, want 3", len(batches))
	}

	wantStarts := []int64{0, 2, 4}
	wantLens := []int{2, 2, 1}
	for i, b := range batches {
		if b.Start != wantStarts[i] {
			t.Errorf("batch %d Start = %d, want %d", i, b.Start, wantStarts[i])
		}
		if len(b.Rows) != wantLens[i] {
			t.Errorf("batch %d len = %d, want %d", i, len(b.Rows), wantLens[i])
		}
		if len(b.Header) != 2 || b.Header[0] != "a" {
			t.Errorf("batch %d header = %v", i, b.Header)
		}
	}
	if got := batches[2].Rows[0][0]; got != "5" {
		t.Errorf("last row first cell = %q, want %q", got, "5")
	}
}

func TestScanMalformedRowsSkipStable(t *testing.T) {
	// Line 3 has a missing field, line 5 an extra one. Both are skipped and
	// must not consume an absolute index, whatever the batch size.
	body := "a,b\n1,x\nbroken\n2,y\n3,z,extra\n4,w\n"
	path := writeFile(t, body)

	for _, batchSize := range []int{1, 2, 3, 100} {
		src := pcsv.NewSource(path, pcsv.Options{Comma: ','})
		var rows [][]string
		var starts []int64
		var malformed []int
		err := src.Scan(context.Background(), batchSize, func(b pcsv.Batch) error {
			for i, r := range b.Rows {
				rows = append(rows, r)
				starts = append(starts, b.Start+int64(i))
			}
			return nil
		}, func(line int, err error) {
			var mre *pcsv.MalformedRowError
			if !errors.As(err, &mre) {
				t.Fatalf("batchSize %d: error type %T, want *MalformedRowError", batchSize, err)
			}
			malformed = append(malformed, mre.Line)
		})
		if err != nil {
			t.Fatalf("batchSize %d: scan: %v", batchSize, err)
		}

		if len(rows) != 3 {
			t.Fatalf("batchSize %d: %d rows, want 3", batchSize, len(rows))
		}
		for i, want := range []int64{0, 1, 2} {
			if starts[i] != want {
				t.Errorf("batchSize %d: row %d abs = %d, want %d", batchSize, i, starts[i], want)
			}
		}
		if len(malformed) != 2 || malformed[0] != 3 || malformed[1] != 5 {
			t.Errorf("batchSize %d: malformed lines = %v, want [3 5]", batchSize, malformed)
		}
	}
}

func TestScanRestartable(t *testing.T) {
	path := writeFile(t, "a,b\n1,x\n2,y\n")
	src := pcsv.NewSource(path, pcsv.Options{Comma: ','})

	first, _ := collect(t, src, 10)
	second, _ := collect(t, src, 10)

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("scan counts: %d and %d batches, want 1 and 1", len(first), len(second))
	}
	if first[0].Rows[1][1] != second[0].Rows[1][1] {
		t.Fatalf("second scan differs from first")
	}
}

func TestScanHeaderChangeBetweenPasses(t *testing.T) {
	path := writeFile(t, "a,b\n1,x\n")
	src := pcsv.NewSource(path, pcsv.Options{Comma: ','})
	collect(t, src, 10)

	if err := os.WriteFile(path, []byte("a,c\n1,x\n"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	err := src.Scan(context.Background(), 10, func(pcsv.Batch) error { return nil }, nil)
	var se *pcsv.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *SchemaError", err)
	}
}

func TestScanBOMAndQuotes(t *testing.T) {
	path := writeFile(t, "\uFEFFname,note\n\"a,b\",\"line\"\n")
	src := pcsv.NewSource(path, pcsv.Options{Comma: ','})

	batches, errs := collect(t, src, 10)
	if len(errs) != 0 {
		t.Fatalf("row errors: %v", errs)
	}
	if got := batches[0].Header[0]; got != "name" {
		t.Fatalf("header[0] = %q, want %q (BOM not stripped)", got, "name")
	}
	if got := batches[0].Rows[0][0]; got != "a,b" {
		t.Fatalf("quoted cell = %q, want %q", got, "a,b")
	}
}

func TestScanHeaderOnlyFile(t *testing.T) {
	path := writeFile(t, "a,b\n")
	src := pcsv.NewSource(path, pcsv.Options{Comma: ','})

	batches, errs := collect(t, src, 10)
	if len(batches) != 0 || len(errs) != 0 {
		t.Fatalf("batches=%d errs=%d, want 0 and 0", len(batches), len(errs))
	}
	if h := src.Header(); len(h) != 2 {
		t.Fatalf("Header() = %v, want 2 columns", h)
	}
}

func TestScanMissingFile(t *testing.T) {
	src := pcsv.NewSource(filepath.Join(t.TempDir(), "absent.csv"), pcsv.Options{})
	err := src.Scan(context.Background(), 10, func(pcsv.Batch) error { return nil }, nil)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want os.ErrNotExist", err)
	}
}

func TestScanCancellation(t *testing.T) {
	path := writeFile(t, "a\n1\n2\n3\n4\n")
	src := pcsv.NewSource(path, pcsv.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	seen := 0
	err := src.Scan(ctx, 1, func(b pcsv.Batch) error {
		seen++
		cancel()
		return nil
	}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if seen != 1 {
		t.Fatalf("delivered %d batches after cancel, want 1", seen)
	}
}

func TestScanFnErrorAborts(t *testing.T) {
	path := writeFile(t, "a\n1\n2\n")
	src := pcsv.NewSource(path, pcsv.Options{})

	boom := errors.New("boom")
	err := src.Scan(context.Background(), 1, func(pcsv.Batch) error { return boom }, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}
