// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// This package adapts the generic metrics.Backend interface to Prometheus by:
//
//   - Using client_golang CounterVec and SummaryVec collectors.
//   - Mapping the engine labels (job, pass, status, kind) onto Prometheus
//     labels.
//   - Pushing collected metrics to a Prometheus Pushgateway instance instead
//     of exposing an HTTP scrape endpoint, which fits one-shot batch runs.
//
// The package intentionally contains all Prometheus-specific dependencies so
// that the rest of the project remains decoupled from Prometheus and can swap
// to alternative backends (e.g. Datadog) without changes to the engine.
package prompush

import (
	"fmt"

	"dq/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	passCounter  *prometheus.CounterVec // "dq_pass_total"
	passDuration *prometheus.SummaryVec // "dq_pass_duration_seconds"

	rowCounter  *prometheus.CounterVec // "dq_rows_total"
	fileCounter *prometheus.CounterVec // "dq_files_total"
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName: the Pushgateway "job" name (often same as config job).
// gatewayURL: base URL of the Pushgateway server.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "dq"
	}

	reg := prometheus.NewRegistry()

	// job is the Pushgateway grouping key; pass/status/kind are dynamic labels.
	passCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dq_pass_total",
			Help: "Total number of engine passes, partitioned by pass and status.",
		},
		[]string{"pass", "status"},
	)
	passDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "dq_pass_duration_seconds",
			Help:       "Duration of engine passes in seconds, partitioned by pass and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"pass", "status"},
	)
	rowCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dq_rows_total",
			Help: "Row-level counts per kind (scanned, malformed, invalid, duplicate, written, imputed_cells).",
		},
		[]string{"kind"},
	)
	fileCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dq_files_total",
			Help: "Finished files per outcome (no_action, pending, applied, failed).",
		},
		[]string{"outcome"},
	)

	if err := reg.Register(passCounter); err != nil {
		return nil, fmt.Errorf("prompush: register pass counter: %w", err)
	}
	if err := reg.Register(passDuration); err != nil {
		return nil, fmt.Errorf("prompush: register pass summary: %w", err)
	}
	if err := reg.Register(rowCounter); err != nil {
		return nil, fmt.Errorf("prompush: register row counter: %w", err)
	}
	if err := reg.Register(fileCounter); err != nil {
		return nil, fmt.Errorf("prompush: register file counter: %w", err)
	}

	return &Backend{
		gatewayURL:   gatewayURL,
		jobName:      jobName,
		reg:          reg,
		passCounter:  passCounter,
		passDuration: passDuration,
		rowCounter:   rowCounter,
		fileCounter:  fileCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "dq_pass_total":
		if b.passCounter == nil {
			return
		}
		b.passCounter.WithLabelValues(labels["pass"], labels["status"]).Add(delta)

	case "dq_rows_total":
		if b.rowCounter == nil {
			return
		}
		b.rowCounter.WithLabelValues(labels["kind"]).Add(delta)

	case "dq_files_total":
		if b.fileCounter == nil {
			return
		}
		b.fileCounter.WithLabelValues(labels["outcome"]).Add(delta)

	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != "dq_pass_duration_seconds" || b.passDuration == nil {
		return
	}
	b.passDuration.WithLabelValues(labels["pass"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
