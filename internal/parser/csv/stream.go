// Package csv implements the chunked, restartable row source used by both
// engine passes. It reads a delimited file into bounded-size batches so that
// files much larger than memory can be scanned with a fixed footprint.
//
// Restartable means the same Source can run any number of full scans; each
// Scan re-opens the file. It does not support mid-stream rewind. Batch sizes
// may differ between scans: a batch carries the absolute index of its first
// row, and malformed rows never consume an index, so row identity is stable
// across scans regardless of chunking.
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"dq/internal/config"
	"dq/internal/datasource/file"
)

const utf8BOM = "\uFEFF"

// Batch is one bounded slice of data rows sharing the file's header.
type Batch struct {
	// Header is the trimmed, BOM-stripped header row, identical for every
	// batch of a scan.
	Header []string
	// Start is the absolute 0-based index of Rows[0] within the logical file
	// (header excluded, malformed rows excluded).
	Start int64
	// Rows are the data rows, each with exactly len(Header) fields.
	Rows [][]string
}

// Options are the parser tuning knobs. They are resolved once from the
// free-form config options so datasets with odd quoting or padding can be
// read without code changes.
type Options struct {
	Comma      rune
	TrimSpace  bool
	LazyQuotes bool
}

// OptionsFrom resolves parser Options from a config options bag.
// Recognized keys: comma (string), trim_space (bool), lazy_quotes (bool).
func OptionsFrom(o config.Options) Options {
	return Options{
		Comma:      o.Rune("comma", ','),
		TrimSpace:  o.Bool("trim_space", true),
		LazyQuotes: o.Bool("lazy_quotes", false),
	}
}

// Source reads one delimited file. It remembers the header of its first scan
// and fails a later scan with *SchemaError if the header no longer matches,
// which guards against the file changing between the analysis and rewrite
// passes.
type Source struct {
	path   string
	opt    Options
	header []string
}

// NewSource returns a Source bound to path. No I/O happens until Scan.
func NewSource(path string, opt Options) *Source {
	if opt.Comma == 0 {
		opt.Comma = ','
	}
	return &Source{path: path, opt: opt}
}

// Path returns the bound file path.
func (s *Source) Path() string { return s.path }

// Header returns the header captured by the most recent scan, or nil before
// the first scan.
func (s *Source) Header() []string { return s.header }

// Scan runs one full pass over the file, delivering batches of at most
// batchSize rows to fn in file order. Recoverable row problems (wrong field
// count, quoting errors) are passed to onErr as *MalformedRowError and the
// row is skipped; onErr may be nil. Scan returns the first fatal error: an
// unreadable file, a header mismatch against a previous scan, a cancelled
// context, or a non-nil error from fn (which aborts the pass).
//
// Cancellation is checked at batch boundaries, so a cancelled scan abandons
// the file mid-way without any promise about how much of it fn has seen.
func (s *Source) Scan(ctx context.Context, batchSize int, fn func(Batch) error, onErr func(line int, err error)) error {
	if batchSize <= 0 {
		return fmt.Errorf("scan %s: batch size must be positive, got %d", s.path, batchSize)
	}

	rc, err := file.NewLocal(s.path).Open(ctx)
	if err != nil {
		return err
	}
	defer rc.Close()

	cr := csv.NewReader(rc)
	cr.Comma = s.opt.Comma
	cr.ReuseRecord = true
	cr.LazyQuotes = s.opt.LazyQuotes
	cr.FieldsPerRecord = -1 // width enforced below so short rows are recoverable

	line := 0
	read := func() ([]string, error) { line++; return cr.Read() }

	// Header row is mandatory.
	hdr, err := read()
	if err != nil {
		return fmt.Errorf("scan %s: read header: %w", s.path, err)
	}
	header := make([]string, len(hdr))
	for i, h := range hdr {
		if s.opt.TrimSpace {
			h = strings.TrimSpace(h)
		}
		header[i] = h
	}
	header = StripHeaderBOM(header)

	if s.header != nil && !equalHeader(s.header, header) {
		return &SchemaError{Path: s.path, Want: s.header, Got: header}
	}
	s.header = header

	var (
		abs   int64
		start int64
		rows  = make([][]string, 0, batchSize)
	)

	flush := func() error {
		if len(rows) == 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		b := Batch{Header: header, Start: start, Rows: rows}
		if err := fn(b); err != nil {
			return err
		}
		rows = make([][]string, 0, batchSize)
		start = abs
		return nil
	}

	for {
		rec, err := read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// encoding/csv recovers at the next line for quote errors.
			if onErr != nil {
				onErr(line, &MalformedRowError{Line: line, Err: err})
			}
			continue
		}
		if len(rec) != len(header) {
			if onErr != nil {
				onErr(line, &MalformedRowError{Line: line, Fields: len(rec), Want: len(header)})
			}
			continue
		}

		// cr reuses its record slice, so cells must be copied out.
		row := make([]string, len(rec))
		for i, cell := range rec {
			if s.opt.TrimSpace {
				cell = strings.TrimSpace(cell)
			}
			row[i] = cell
		}
		rows = append(rows, row)
		abs++

		if len(rows) == batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}

// ReadHeader runs a minimal scan that stops after the header row. It is used
// by callers that need the schema without paying for a full pass.
func (s *Source) ReadHeader(ctx context.Context) ([]string, error) {
	rc, err := file.NewLocal(s.path).Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	cr := csv.NewReader(rc)
	cr.Comma = s.opt.Comma
	cr.LazyQuotes = s.opt.LazyQuotes
	cr.FieldsPerRecord = -1

	hdr, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("scan %s: read header: %w", s.path, err)
	}
	out := make([]string, len(hdr))
	for i, h := range hdr {
		if s.opt.TrimSpace {
			h = strings.TrimSpace(h)
		}
		out[i] = h
	}
	return StripHeaderBOM(out), nil
}

func equalHeader(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
