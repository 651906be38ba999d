// This file adds a lightweight linter/validator for Config values. It
// performs static checks over a decoded Config and returns a list of issues
// (errors and warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Config.
//
// Path is a dotted path into the config (e.g. "dominance_ranges[1].high").
// Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Validate performs static validation of a Config.
//
// It does not mutate the config. Instead it returns a slice of Issue values.
// Callers may decide whether to treat warnings as fatal or not.
func Validate(c Config) []Issue {
	var issues []Issue

	if strings.TrimSpace(c.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and audit records",
		})
	}
	if c.ChunkSize <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "chunk_size",
			Message:  fmt.Sprintf("chunk_size must be positive, got %d", c.ChunkSize),
		})
	}
	if c.Workers <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "workers",
			Message:  fmt.Sprintf("workers must be positive, got %d", c.Workers),
		})
	}
	if c.InfThreshold <= 0 || c.InfThreshold >= 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "inf_threshold",
			Message:  fmt.Sprintf("inf_threshold must be in (0,1), got %v", c.InfThreshold),
		})
	}
	if c.LabelColumn == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "label_column",
			Message:  "label_column is empty; per-label violation breakdowns will be unavailable",
		})
	}

	issues = append(issues, validateRanges(c.DominanceRanges)...)
	issues = append(issues, validateKeywords(c)...)
	issues = append(issues, validateMetrics(c.Metrics)...)

	return issues
}

// validateRanges checks the dominance buckets for ordering and overlap. The
// buckets are matched in declaration order, so an overlapping pair silently
// shadows the later one; that is reported as an error, not a warning.
func validateRanges(ranges []BucketRange) []Issue {
	var issues []Issue
	if len(ranges) == 0 {
		return []Issue{{
			Severity: SeverityError,
			Path:     "dominance_ranges",
			Message:  "at least one dominance bucket is required",
		}}
	}
	for i, r := range ranges {
		path := fmt.Sprintf("dominance_ranges[%d]", i)
		if r.Label == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".label",
				Message:  "bucket label must not be empty",
			})
		}
		if r.Low >= r.High {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  fmt.Sprintf("bucket low %v must be below high %v", r.Low, r.High),
			})
		}
		for j := 0; j < i; j++ {
			if r.Low < ranges[j].High && ranges[j].Low < r.High {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     path,
					Message:  fmt.Sprintf("bucket overlaps dominance_ranges[%d] (%q)", j, ranges[j].Label),
				})
			}
		}
	}
	return issues
}

// validateKeywords checks the rule keyword lists for duplicates across the
// never-negative and can-be-negative sets. A keyword in both sets is a
// warning: can-be-negative wins at evaluation time, which is usually what the
// author meant but worth flagging.
func validateKeywords(c Config) []Issue {
	var issues []Issue
	canBe := make(map[string]struct{}, len(c.CanBeNegativeKeywords))
	for _, kw := range c.CanBeNegativeKeywords {
		canBe[strings.ToLower(kw)] = struct{}{}
	}
	for _, kw := range c.NeverNegativeKeywords {
		if _, ok := canBe[strings.ToLower(kw)]; ok {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "never_negative_keywords",
				Message:  fmt.Sprintf("keyword %q also appears in can_be_negative_keywords; can-be-negative takes precedence", kw),
			})
		}
	}
	return issues
}

func validateMetrics(m MetricsConfig) []Issue {
	if m.PushgatewayURL != "" && m.StatsdAddr != "" {
		return []Issue{{
			Severity: SeverityError,
			Path:     "metrics",
			Message:  "pushgateway_url and statsd_addr are mutually exclusive",
		}}
	}
	return nil
}

// HasErrors reports whether any issue in the slice has error severity.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}
