package config

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string // substring of an error-severity issue; "" means no errors
	}{
		{
			name:   "default is clean",
			mutate: func(c *Config) {},
		},
		{
			name:    "empty job",
			mutate:  func(c *Config) { c.Job = "" },
			wantErr: "job must not be empty",
		},
		{
			name:    "zero chunk size",
			mutate:  func(c *Config) { c.ChunkSize = 0 },
			wantErr: "chunk_size must be positive",
		},
		{
			name:    "threshold out of range",
			mutate:  func(c *Config) { c.InfThreshold = 1.5 },
			wantErr: "inf_threshold must be in (0,1)",
		},
		{
			name: "inverted bucket",
			mutate: func(c *Config) {
				c.DominanceRanges = []BucketRange{{Low: 0.9, High: 0.8, Label: "bad"}}
			},
			wantErr: "must be below high",
		},
		{
			name: "overlapping buckets",
			mutate: func(c *Config) {
				c.DominanceRanges = []BucketRange{
					{Low: 0.5, High: 0.8, Label: "a"},
					{Low: 0.7, High: 0.9, Label: "b"},
				}
			},
			wantErr: "overlaps",
		},
		{
			name: "no buckets",
			mutate: func(c *Config) {
				c.DominanceRanges = nil
			},
			wantErr: "at least one dominance bucket",
		},
		{
			name: "both metrics backends",
			mutate: func(c *Config) {
				c.Metrics.PushgatewayURL = "http://gw:9091"
				c.Metrics.StatsdAddr = "127.0.0.1:8125"
			},
			wantErr: "mutually exclusive",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			issues := Validate(cfg)

			if tc.wantErr == "" {
				if HasErrors(issues) {
					t.Fatalf("unexpected errors: %v", issues)
				}
				return
			}
			found := false
			for _, iss := range issues {
				if iss.Severity == SeverityError && strings.Contains(iss.Message, tc.wantErr) {
					found = true
				}
			}
			if !found {
				t.Fatalf("no error containing %q in %v", tc.wantErr, issues)
			}
		})
	}
}

func TestValidateKeywordOverlapWarns(t *testing.T) {
	cfg := Default()
	cfg.NeverNegativeKeywords = append(cfg.NeverNegativeKeywords, "skew")

	issues := Validate(cfg)
	if HasErrors(issues) {
		t.Fatalf("keyword overlap should warn, not error: %v", issues)
	}
	found := false
	for _, iss := range issues {
		if iss.Severity == SeverityWarning && strings.Contains(iss.Message, "skew") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a warning about %q, got %v", "skew", issues)
	}
}
