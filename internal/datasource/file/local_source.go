// Package file implements local filesystem access for the engine: opening
// inputs for the scan passes, creating rewrite destinations, and discovering
// candidate files in a folder.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Local is a filesystem data source bound to a single path.
type Local struct{ path string }

// NewLocal returns a new Local data source bound to the provided filesystem
// path. The returned value is safe for concurrent use by multiple goroutines
// as long as the underlying path location is valid for concurrent reads.
func NewLocal(path string) *Local { return &Local{path: path} }

// Path returns the bound filesystem path.
func (l *Local) Path() string { return l.path }

// Open opens the configured path for reading and returns an io.ReadCloser.
//
// If the context is already canceled or its deadline exceeded at the time of
// the call, Open returns the context error immediately without touching the
// filesystem. Any filesystem error is wrapped with the path for context while
// still permitting errors.Is/As checks by callers (e.g.,
// errors.Is(err, os.ErrNotExist)).
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}

// Create truncates/creates the configured path for writing. It mirrors Open's
// cancellation and error-wrapping behavior. The caller owns the returned
// handle exclusively until it is closed; nothing else in the engine writes to
// a rewrite destination.
func (l *Local) Create(ctx context.Context) (io.WriteCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Create(l.path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", l.path, err)
	}
	return f, nil
}
