package engine

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"dq/internal/accumulate"
	"dq/internal/datasource/file"
	"dq/internal/metrics"
	parsercsv "dq/internal/parser/csv"
	"dq/internal/policy"
)

// RewriteResult summarizes pass 2.
type RewriteResult struct {
	OutputPath     string
	RowsWritten    int64
	RowsDropped    int64
	CellsImputed   int64
	ColumnsDropped []string
	Malformed      []RowIssue
}

// OutputPath derives the rewrite destination from the input path and the
// decision suffix: "flows.csv" + "_cleaned" -> "flows_cleaned.csv", in the
// same directory as the input.
func OutputPath(inputPath, suffix string) string {
	dir := filepath.Dir(inputPath)
	ext := filepath.Ext(inputPath)
	base := strings.TrimSuffix(filepath.Base(inputPath), ext)
	return filepath.Join(dir, base+suffix+ext)
}

// Apply runs the rewrite pass for a pending analysis and flips its outcome to
// applied. Calling Apply on a no-action or already-applied analysis is an
// error: the decision to mutate data must be deliberate and happen once.
//
// The output is written incrementally, one batch at a time; a crash mid-way
// leaves a truncated but valid prefix, which the caller accepts by calling
// Apply at all.
func (e *Engine) Apply(ctx context.Context, a *Analysis) (res *RewriteResult, err error) {
	started := time.Now()
	defer func() { metrics.RecordPass(e.cfg.Job, "rewrite", err, time.Since(started)) }()

	if a.Outcome != OutcomePending {
		return nil, fmt.Errorf("apply %s: outcome is %q, want %q", a.Path, a.Outcome, OutcomePending)
	}

	res, err = e.rewrite(ctx, a.Decisions)
	if err != nil {
		return nil, err
	}
	a.Outcome = OutcomeApplied
	a.Rewrite = res

	metrics.RecordRows(e.cfg.Job, "written", res.RowsWritten)
	metrics.RecordRows(e.cfg.Job, "dropped", res.RowsDropped)
	metrics.RecordRows(e.cfg.Job, "imputed_cells", res.CellsImputed)

	log.Printf("rewrite %s -> %s: written=%d dropped=%d imputed=%d cols_dropped=%d",
		a.Path, res.OutputPath, res.RowsWritten, res.RowsDropped, res.CellsImputed, len(res.ColumnsDropped))
	return res, nil
}

func (e *Engine) rewrite(ctx context.Context, dec DecisionSet) (*RewriteResult, error) {
	outPath := OutputPath(e.src.Path(), dec.Suffix)
	dst, err := file.NewLocal(outPath).Create(ctx)
	if err != nil {
		return nil, err
	}
	defer dst.Close()

	w := csv.NewWriter(dst)
	cls := accumulate.NewClassifier(e.cfg.NullLiterals)

	dropCols := make(map[string]struct{}, len(dec.DropColumns))
	for _, c := range dec.DropColumns {
		dropCols[c] = struct{}{}
	}
	dropRows := make(map[int64]struct{}, len(dec.DropRows))
	for _, r := range dec.DropRows {
		dropRows[r] = struct{}{}
	}

	res := &RewriteResult{OutputPath: outPath}
	var (
		tracker     Tracker
		keep        []int          // source column indices kept, in order
		substitute  map[int]string // source column index -> formatted median
		wroteHeader bool
		out         []string
	)

	err = e.src.Scan(ctx, e.cfg.ChunkSize, func(b parsercsv.Batch) error {
		if err := tracker.Observe(b); err != nil {
			return fmt.Errorf("rewrite %s: %w", e.src.Path(), err)
		}

		// The first batch establishes the output schema and the header row;
		// later batches only append.
		if !wroteHeader {
			substitute = make(map[int]string, len(dec.Impute))
			hdr := make([]string, 0, len(b.Header))
			for i, h := range b.Header {
				if _, drop := dropCols[h]; drop {
					res.ColumnsDropped = append(res.ColumnsDropped, h)
					continue
				}
				if m, ok := dec.Impute[h]; ok {
					substitute[i] = policy.FormatValue(m)
				}
				keep = append(keep, i)
				hdr = append(hdr, h)
			}
			if err := w.Write(hdr); err != nil {
				return fmt.Errorf("write header: %w", err)
			}
			out = make([]string, len(keep))
			wroteHeader = true
		}

		for i, row := range b.Rows {
			abs := b.Start + int64(i)
			if _, drop := dropRows[abs]; drop {
				res.RowsDropped++
				continue
			}
			for j, src := range keep {
				cell := row[src]
				if repl, ok := substitute[src]; ok {
					if k, _ := cls.Classify(cell); k == accumulate.KindInfinite {
						cell = repl
						res.CellsImputed++
					}
				}
				out[j] = cell
			}
			if err := w.Write(out); err != nil {
				return fmt.Errorf("write row %d: %w", abs, err)
			}
			res.RowsWritten++
		}

		// Batch-granular durability: flush so a crash never leaves a torn row.
		w.Flush()
		return w.Error()
	}, func(line int, rowErr error) {
		res.Malformed = append(res.Malformed, RowIssue{Line: line, Msg: rowErr.Error()})
	})
	if err != nil {
		return nil, err
	}

	// A file with no data rows still gets its header echoed through.
	if !wroteHeader {
		hdr := make([]string, 0, len(e.src.Header()))
		for _, h := range e.src.Header() {
			if _, drop := dropCols[h]; drop {
				res.ColumnsDropped = append(res.ColumnsDropped, h)
				continue
			}
			hdr = append(hdr, h)
		}
		if err := w.Write(hdr); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush %s: %w", outPath, err)
	}
	if err := dst.Close(); err != nil {
		return nil, fmt.Errorf("close %s: %w", outPath, err)
	}
	return res, nil
}
