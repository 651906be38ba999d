// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from the data-quality engine.
//
// The package is intentionally minimal and opinionated:
//
//   - It exposes a narrow interface (Backend) focused on counters and timing
//     data.
//   - It provides a global, pluggable backend that defaults to a no-op
//     implementation, so metrics are always safe to call even when no real
//     backend is configured.
//   - Concrete metric systems are isolated in subpackages; the rest of the
//     codebase depends only on this interface and can swap between Prometheus
//     Pushgateway and Datadog without changes.
//
// The primary use case is instrumentation of the two engine passes (analyze,
// rewrite) and their row-level counters without coupling the engine to a
// specific metrics system.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
// It is intentionally generic so we can plug in Prometheus, Datadog, etc.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordPass measures one engine pass over one file:
// latency + success/failure, partitioned by pass ("analyze" or "rewrite").
func RecordPass(job, pass string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"pass":   pass,
		"status": status,
	}

	backend.IncCounter("dq_pass_total", 1, lbls)
	backend.ObserveHistogram("dq_pass_duration_seconds", d.Seconds(), lbls)
}

// RecordRows increments a row-level counter for the given job and kind.
//
// Typical kinds mirror the run summary fields, e.g.:
//   - "scanned"
//   - "malformed"
//   - "invalid"
//   - "duplicate"
//   - "written"
//   - "imputed_cells"
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("dq_rows_total", float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordFile counts one finished file with its outcome ("no_action",
// "pending", "applied", "failed").
func RecordFile(job, outcome string) {
	backend.IncCounter("dq_files_total", 1, Labels{
		"job":     job,
		"outcome": outcome,
	})
}
