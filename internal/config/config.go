// Package config defines the canonical, JSON-serializable configuration model
// for the data-quality engine. It is intentionally small, explicit, and
// dependency-free so that configs can be loaded from disk (or other sources)
// and passed through the program without additional glue code.
//
// Design goals:
//
//  1. Stability: Changes to this package should be additive and backwards-
//     compatible whenever possible.
//  2. Clarity: Field names in Go mirror the JSON structure used in config
//     files.
//  3. Minimalism: No third-party config libraries; decoding is performed by the
//     standard library, with a light Options helper for typed access.
//
// Every threshold, keyword list and bucket edge the engine consults lives
// here and is threaded into component constructors. There is no package-level
// mutable state.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// BucketRange describes one dominance bucket. A column whose dominance ratio
// r satisfies Low <= r < High is assigned to the bucket. The default top
// bucket uses High=1.01 so that a ratio of exactly 1.0 still lands in it;
// this is deliberate, not an off-by-one.
type BucketRange struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Label string  `json:"label"`
}

// Suffixes are appended to the input file's base name when the rewrite pass
// produces an output file. Files already carrying one of these suffixes are
// skipped during folder traversal so outputs are never re-processed.
type Suffixes struct {
	Validated string `json:"validated"`
	Cleaned   string `json:"cleaned"`
	Imputed   string `json:"imputed"`
	Deduped   string `json:"deduped"`
	Report    string `json:"report"`
}

// AuditConfig selects the run-history store. An empty DSN disables auditing.
// DSNs starting with "postgres://" or "postgresql://" select the Postgres
// backend; anything else is treated as a SQLite path/DSN.
type AuditConfig struct {
	DSN   string `json:"dsn"`
	Table string `json:"table"`
}

// MetricsConfig selects an optional metrics backend. At most one of
// PushgatewayURL and StatsdAddr should be set.
type MetricsConfig struct {
	// PushgatewayURL enables the Prometheus Pushgateway backend, e.g.
	// "http://pushgateway:9091".
	PushgatewayURL string `json:"pushgateway_url"`
	// StatsdAddr enables the Datadog DogStatsD backend, e.g. "127.0.0.1:8125".
	StatsdAddr string `json:"statsd_addr"`
	// Namespace is an optional prefix for emitted metric names.
	Namespace string `json:"namespace"`
}

// Config is the top-level configuration for one engine run. Zero values are
// filled in by Default(); Load applies the same defaults after decoding.
type Config struct {
	// Job is the logical job name used for metrics and audit records.
	Job string `json:"job"`

	// ChunkSize is the maximum number of data rows per batch in both passes.
	ChunkSize int `json:"chunk_size"`

	// Workers controls pass-1 parallelism. 1 means a single sequential scan;
	// higher values split the file into disjoint row ranges that are
	// accumulated independently and merged.
	Workers int `json:"workers"`

	// DominanceRanges are the report buckets, checked in order. They must be
	// disjoint; columns below every Low edge are omitted from the report.
	DominanceRanges []BucketRange `json:"dominance_ranges"`

	// InfThreshold is the prune cutoff: a column is flagged for removal when
	// (nulls+infs)/rows is strictly greater than this value.
	InfThreshold float64 `json:"inf_threshold"`

	// NeverNegativeKeywords mark columns whose values must be >= 0. A column
	// is subject to the rule when its normalized name contains any of these
	// substrings and none of CanBeNegativeKeywords.
	NeverNegativeKeywords []string `json:"never_negative_keywords"`
	CanBeNegativeKeywords []string `json:"can_be_negative_keywords"`

	// PortColumns are checked against the [0, 65535] integer range.
	PortColumns []string `json:"port_columns"`

	// LabelColumn names the classification column, matched case-insensitively.
	LabelColumn string `json:"label_column"`

	// NullLiterals are cell texts treated as missing values, in addition to
	// the empty string.
	NullLiterals []string `json:"null_literals"`

	Suffixes Suffixes      `json:"suffixes"`
	Parser   Options       `json:"parser"`
	Audit    AuditConfig   `json:"audit"`
	Metrics  MetricsConfig `json:"metrics"`
}

// Default returns the engine defaults. The keyword lists and bucket edges
// match the profile used for network-flow captures: feature names like
// fwd_pkt_len_max or flow_duration are never negative, while skewness and
// covariance features legitimately are.
func Default() Config {
	return Config{
		Job:       "dq",
		ChunkSize: 100_000,
		Workers:   1,
		DominanceRanges: []BucketRange{
			{Low: 0.95, High: 1.01, Label: "95-100%"},
			{Low: 0.90, High: 0.95, Label: "90-95%"},
			{Low: 0.80, High: 0.90, Label: "80-90%"},
			{Low: 0.70, High: 0.80, Label: "70-80%"},
			{Low: 0.60, High: 0.70, Label: "60-70%"},
			{Low: 0.50, High: 0.60, Label: "50-60%"},
		},
		InfThreshold: 0.30,
		NeverNegativeKeywords: []string{
			"port", "duration", "count", "bytes", "size", "rate", "percentage",
			"variance", "std", "total", "max", "min", "median", "mode", "mean",
			"iat", "active", "idle", "bulk", "handshake", "subflow",
		},
		CanBeNegativeKeywords: []string{"skew", "cov", "delta"},
		PortColumns:           []string{"src_port", "dst_port"},
		LabelColumn:           "label",
		NullLiterals:          []string{"nan", "NaN", "NAN", "null", "NULL", "NA", "N/A"},
		Suffixes: Suffixes{
			Validated: "_validated",
			Cleaned:   "_cleaned",
			Imputed:   "_imputed",
			Deduped:   "_deduped",
			Report:    "_report.txt",
		},
		Parser: Options{},
	}
}

// Load decodes a JSON config file and overlays it on Default(). Only fields
// present in the file override the defaults; absent slices keep the default
// lists rather than becoming empty.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := Default()
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	cfg.applyFallbacks()
	return cfg, nil
}

// applyFallbacks restores defaults for fields that decoded to unusable zero
// values (e.g. "chunk_size": 0 in the file, or an empty suffix table).
func (c *Config) applyFallbacks() {
	def := Default()
	if c.ChunkSize <= 0 {
		c.ChunkSize = def.ChunkSize
	}
	if c.Workers <= 0 {
		c.Workers = def.Workers
	}
	if len(c.DominanceRanges) == 0 {
		c.DominanceRanges = def.DominanceRanges
	}
	if c.InfThreshold <= 0 {
		c.InfThreshold = def.InfThreshold
	}
	if c.LabelColumn == "" {
		c.LabelColumn = def.LabelColumn
	}
	if len(c.NullLiterals) == 0 {
		c.NullLiterals = def.NullLiterals
	}
	if c.Suffixes == (Suffixes{}) {
		c.Suffixes = def.Suffixes
	}
	if c.Parser == nil {
		c.Parser = Options{}
	}
}

// Options is a small helper to fetch typed values from arbitrary JSON maps
// without introducing third-party configuration libraries. It purposefully
// performs only minimal type coercion and returns provided defaults when a key
// is absent or of an unexpected type.
//
// Options is used for parser-specific configuration where the shape varies by
// input dataset (delimiter, quoting quirks, trimming).
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers are decoded as
// float64 by encoding/json, so this method accepts float64 and casts to int.
// If the value is neither float64 nor int, def is returned.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty. This is useful for single-character parser settings such as
// a CSV delimiter.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringSlice returns a []string for key when the value is an array of
// strings. Non-string elements are ignored. Returns nil when the key is
// missing or the value is not an array.
func (o Options) StringSlice(key string) []string {
	v, ok := o[key]
	if !ok {
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
