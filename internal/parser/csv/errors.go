package csv

import "fmt"

// SchemaError reports a header disagreement between two scans of the same
// source. It is fatal for the current file: decisions computed against one
// header cannot be applied against another.
type SchemaError struct {
	Path string
	Want []string
	Got  []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: header changed between passes: want %d columns, got %d", e.Path, len(e.Want), len(e.Got))
}

// MalformedRowError reports a data row whose field count disagrees with the
// header, or that the underlying reader could not parse. Malformed rows are
// recoverable: they are reported via the scan's error callback and skipped
// without consuming an absolute row index, so both passes skip them
// identically regardless of batch size.
type MalformedRowError struct {
	// Line is the 1-based physical line within the file (header included).
	Line   int
	Fields int
	Want   int
	Err    error
}

func (e *MalformedRowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: %d fields, want %d", e.Line, e.Fields, e.Want)
}

func (e *MalformedRowError) Unwrap() error { return e.Err }
