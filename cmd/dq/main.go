// Command dq scans delimited network-traffic datasets for quality problems
// and rewrites them on request: dominance profiling, row validation, pruning
// of null/infinite-heavy columns, median imputation, and duplicate removal.
//
// The engine only ever proposes; applying a decision set requires either an
// interactive confirmation or the -yes flag. Reports are written next to the
// input regardless.
//
// Example:
//
//	dq -input=./captures -task=clean -yes -audit-dsn=dq.db
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"dq/internal/config"
	"dq/internal/datasource/file"
	"dq/internal/engine"
	"dq/internal/metrics"
	"dq/internal/metrics/datadog"
	"dq/internal/metrics/prompush"
	"dq/internal/report"
	"dq/internal/storage"
	"dq/pkg/audit"
)

func main() {
	var (
		inputPath string
		cfgPath   string
		taskName  string
		chunk     int
		workers   int
		parallel  int
		yes       bool
		validate  bool
		auditDSN  string
		pushURL   string
		statsd    string
	)

	flag.StringVar(&inputPath, "input", "", "input CSV file or folder (required)")
	flag.StringVar(&cfgPath, "config", "", "engine config JSON path (optional; defaults built in)")
	flag.StringVar(&taskName, "task", string(engine.TaskReport), "task: report, validate, clean, impute, dedupe")
	flag.IntVar(&chunk, "chunk", 0, "rows per batch (overrides config)")
	flag.IntVar(&workers, "workers", 0, "pass-1 accumulation workers per file (overrides config)")
	flag.IntVar(&parallel, "parallel", 1, "number of files processed concurrently")
	flag.BoolVar(&yes, "yes", false, "apply computed decisions without asking")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	flag.StringVar(&auditDSN, "audit-dsn", "", "audit store DSN (sqlite path or postgres:// URL; overrides config)")
	flag.StringVar(&pushURL, "pushgateway-url", "", "Prometheus Pushgateway base URL (overrides config)")
	flag.StringVar(&statsd, "statsd-addr", "", "Datadog DogStatsD address (overrides config)")
	flag.Parse()

	cfg := config.Default()
	if cfgPath != "" {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			fatalf("%v", err)
		}
	}
	if chunk > 0 {
		cfg.ChunkSize = chunk
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	if auditDSN != "" {
		cfg.Audit.DSN = auditDSN
	}
	if pushURL != "" {
		cfg.Metrics.PushgatewayURL = pushURL
	}
	if statsd != "" {
		cfg.Metrics.StatsdAddr = statsd
	}

	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		fatalf("configuration is invalid")
	}
	if validate {
		log.Printf("configuration is valid")
		return
	}

	task, ok := engine.ParseTask(taskName)
	if !ok {
		fatalf("unknown task %q", taskName)
	}
	if inputPath == "" {
		fatalf("-input is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	setupMetrics(cfg)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics flush: %v", err)
		}
	}()

	store, err := storage.New(ctx, storage.Config{DSN: cfg.Audit.DSN, Table: cfg.Audit.Table})
	if err != nil {
		fatalf("audit store: %v", err)
	}
	defer store.Close()

	paths, err := file.ListCSV(inputPath, outputSuffixes(cfg))
	if err != nil {
		fatalf("list inputs: %v", err)
	}
	if len(paths) == 0 {
		log.Printf("no candidate files under %s", inputPath)
		return
	}
	log.Printf("processing %d file(s), task=%s chunk=%d workers=%d", len(paths), task, cfg.ChunkSize, cfg.Workers)

	// Interactive confirmation serializes; stdin can't be shared between
	// concurrently pending files.
	if parallel > 1 && !yes && task != engine.TaskReport {
		log.Printf("interactive confirmation forces -parallel=1; use -yes to parallelize")
		parallel = 1
	}

	confirm := newConfirmer(yes)
	var failed int
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			if err := processFile(gctx, cfg, task, path, store, confirm); err != nil {
				// One broken file must not stop the batch.
				log.Printf("ERROR %s: %v", path, err)
				metrics.RecordFile(cfg.Job, "failed")
				mu.Lock()
				failed++
				mu.Unlock()
			}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		fatalf("aborted: %v", err)
	}
	if failed > 0 {
		fatalf("%d of %d file(s) failed", failed, len(paths))
	}
	log.Printf("all %d file(s) processed", len(paths))
}

// processFile runs the full analyze → report → confirm → apply sequence for
// one file and records the run in the audit store.
func processFile(ctx context.Context, cfg config.Config, task engine.Task, path string, store storage.Store, confirm func(prompt string) bool) error {
	started := time.Now()
	eng := engine.New(cfg, path)

	a, err := eng.Analyze(ctx, task)
	if err != nil {
		return err
	}

	if a.Outcome == engine.OutcomePending {
		prompt := describeDecisions(a)
		if confirm(prompt) {
			if _, err := eng.Apply(ctx, a); err != nil {
				return err
			}
		} else {
			log.Printf("%s: decisions not applied", path)
		}
	} else {
		log.Printf("%s: no action needed", path)
	}

	reportPath := strings.TrimSuffix(path, filepath.Ext(path)) + cfg.Suffixes.Report
	if err := os.WriteFile(reportPath, []byte(report.Render(a)), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	log.Printf("%s: report saved to %s", path, reportPath)

	metrics.RecordFile(cfg.Job, string(a.Outcome))
	return store.SaveRun(ctx, buildRun(cfg, a, started))
}

func buildRun(cfg config.Config, a *engine.Analysis, started time.Time) audit.Run {
	r := audit.Run{
		Job:        cfg.Job,
		Path:       a.Path,
		Task:       string(a.Task),
		Outcome:    string(a.Outcome),
		Rows:       a.Snapshot.Rows,
		Malformed:  int64(len(a.Malformed)),
		Invalid:    int64(len(a.RowReport.InvalidRows)),
		Duplicates: int64(len(a.Dups.Duplicates)),
		StartedAt:  started,
		Duration:   time.Since(started),
	}
	if !a.Decisions.Empty() {
		if raw, err := json.Marshal(a.Decisions); err == nil {
			r.DecisionsJSON = string(raw)
		}
	}
	if a.Rewrite != nil {
		r.OutputPath = a.Rewrite.OutputPath
	}
	return r
}

func describeDecisions(a *engine.Analysis) string {
	d := a.Decisions
	var parts []string
	if n := len(d.DropColumns); n > 0 {
		parts = append(parts, fmt.Sprintf("drop %d column(s) %v", n, d.DropColumns))
	}
	if n := len(d.DropRows); n > 0 {
		parts = append(parts, fmt.Sprintf("drop %d row(s)", n))
	}
	if n := len(d.Impute); n > 0 {
		parts = append(parts, fmt.Sprintf("impute inf cells in %d column(s)", n))
	}
	return fmt.Sprintf("%s: %s", a.Path, strings.Join(parts, ", "))
}

// newConfirmer returns the caller-level apply policy: always-yes, or an
// interactive y/n prompt on stdin.
func newConfirmer(yes bool) func(prompt string) bool {
	if yes {
		return func(string) bool { return true }
	}
	reader := bufio.NewReader(os.Stdin)
	var mu sync.Mutex
	return func(prompt string) bool {
		mu.Lock()
		defer mu.Unlock()
		fmt.Printf("%s. apply? (y/n): ", prompt)
		line, err := reader.ReadString('\n')
		if err != nil {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		}
		return false
	}
}

func setupMetrics(cfg config.Config) {
	switch {
	case cfg.Metrics.PushgatewayURL != "":
		b, err := prompush.NewBackend(cfg.Job, cfg.Metrics.PushgatewayURL)
		if err != nil {
			fatalf("pushgateway backend: %v", err)
		}
		metrics.SetBackend(b)
	case cfg.Metrics.StatsdAddr != "":
		b, err := datadog.NewBackend(datadog.Config{
			Addr:      cfg.Metrics.StatsdAddr,
			Namespace: cfg.Metrics.Namespace,
		})
		if err != nil {
			fatalf("datadog backend: %v", err)
		}
		metrics.SetBackend(b)
	}
}

// outputSuffixes lists the base-name suffixes the folder walk must skip so a
// second run never treats produced files as inputs.
func outputSuffixes(cfg config.Config) []string {
	return []string{
		cfg.Suffixes.Validated,
		cfg.Suffixes.Cleaned,
		cfg.Suffixes.Imputed,
		cfg.Suffixes.Deduped,
	}
}

func fatalf(format string, args ...any) {
	log.Printf(format, args...)
	os.Exit(1)
}
