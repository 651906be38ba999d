// Package engine runs the two-pass accumulate-decide-rewrite pipeline over
// one delimited file.
//
// Pass 1 streams the file in bounded batches and feeds the column
// accumulator, the label cross-tabulation, the row-rule checker and the
// duplicate scan. The finalized state is handed to the policy evaluators,
// whose findings become an immutable DecisionSet. Pass 2 re-streams the file
// and applies the decisions. The two passes are strictly sequential; pass 1
// itself can be parallelized across workers because every aggregate merges.
//
// Applying decisions is never automatic: Analyze returns a pending result and
// the caller decides whether to call Apply.
package engine

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"dq/internal/accumulate"
	"dq/internal/config"
	"dq/internal/metrics"
	"dq/internal/parser/csv"
	"dq/internal/policy"
)

// RowIssue records one malformed row that was skipped and reported during a
// pass. Line is the 1-based physical line in the file.
type RowIssue struct {
	Line int
	Msg  string
}

// Analysis is the frozen result of pass 1 plus the policy findings over it.
type Analysis struct {
	Path   string
	Task   Task
	Header []string

	Snapshot  *accumulate.Snapshot
	Cross     *accumulate.CrossSnapshot
	RowReport *policy.RowReport
	Dups      *accumulate.DupReport
	Malformed []RowIssue

	Buckets   []policy.Bucket
	Constants []string
	Prune     []policy.PruneVerdict
	Impute    policy.ImputePlan

	Decisions DecisionSet
	Outcome   Outcome

	// Rewrite is set by Apply.
	Rewrite *RewriteResult
}

// Engine processes one file. Independent files need no coordination, so
// callers may run one Engine per file in parallel.
type Engine struct {
	cfg config.Config
	src *csv.Source
}

// New builds an engine for path using the given configuration.
func New(cfg config.Config, path string) *Engine {
	return &Engine{
		cfg: cfg,
		src: csv.NewSource(path, csv.OptionsFrom(cfg.Parser)),
	}
}

// pass1 bundles the aggregates one worker feeds during the analysis pass.
type pass1 struct {
	stats *accumulate.TableStats
	cross *accumulate.CrossTab
	check *policy.RowChecker
	dups  *accumulate.DupScan
}

func (e *Engine) newPass1(header []string, cls *accumulate.Classifier) *pass1 {
	return &pass1{
		stats: accumulate.NewTableStats(header, cls),
		cross: accumulate.NewCrossTab(header, e.cfg.LabelColumn, cls),
		check: policy.NewRowChecker(header, e.cfg, cls),
		dups:  accumulate.NewDupScan(),
	}
}

func (p *pass1) absorb(b csv.Batch) error {
	if err := p.stats.Absorb(b); err != nil {
		return err
	}
	p.cross.Absorb(b)
	p.check.Absorb(b)
	p.dups.Absorb(b)
	return nil
}

func (p *pass1) merge(o *pass1) error {
	if err := p.stats.Merge(o.stats); err != nil {
		return err
	}
	p.cross.Merge(o.cross)
	p.check.Merge(o.check)
	p.dups.Merge(o.dups)
	return nil
}

// Analyze runs pass 1 and evaluates every policy. The returned Analysis is
// pending when the task produced a non-empty decision set, and no-action
// otherwise. Analyze never writes anything.
func (e *Engine) Analyze(ctx context.Context, task Task) (a *Analysis, err error) {
	started := time.Now()
	defer func() { metrics.RecordPass(e.cfg.Job, "analyze", err, time.Since(started)) }()

	header, err := e.src.ReadHeader(ctx)
	if err != nil {
		return nil, err
	}
	cls := accumulate.NewClassifier(e.cfg.NullLiterals)

	var issues []RowIssue
	onErr := func(line int, rowErr error) {
		issues = append(issues, RowIssue{Line: line, Msg: rowErr.Error()})
	}

	root := e.newPass1(header, cls)
	if e.cfg.Workers > 1 {
		err = e.scanParallel(ctx, root, cls, header, onErr)
	} else {
		err = e.src.Scan(ctx, e.cfg.ChunkSize, root.absorb, onErr)
	}
	if err != nil {
		return nil, err
	}

	a = &Analysis{
		Path:      e.src.Path(),
		Task:      task,
		Header:    header,
		Snapshot:  root.stats.Finalize(),
		Cross:     root.cross.Finalize(),
		RowReport: root.check.Finalize(),
		Dups:      root.dups.Finalize(),
		Malformed: issues,
	}
	a.Buckets = policy.BucketDominance(a.Snapshot, e.cfg.DominanceRanges)
	a.Constants = policy.ConstantColumns(a.Snapshot)
	a.Prune = policy.PruneColumns(a.Snapshot, e.cfg.InfThreshold)
	a.Impute = policy.BuildImputePlan(a.Snapshot)
	a.Decisions = e.decisionsFor(task, a)

	if a.Decisions.Empty() {
		a.Outcome = OutcomeNoAction
	} else {
		a.Outcome = OutcomePending
	}

	metrics.RecordRows(e.cfg.Job, "scanned", a.Snapshot.Rows)
	metrics.RecordRows(e.cfg.Job, "malformed", int64(len(a.Malformed)))
	metrics.RecordRows(e.cfg.Job, "invalid", int64(len(a.RowReport.InvalidRows)))
	metrics.RecordRows(e.cfg.Job, "duplicate", int64(len(a.Dups.Duplicates)))

	log.Printf("analyze %s: rows=%d malformed=%d invalid=%d duplicates=%d outcome=%s",
		a.Path, a.Snapshot.Rows, len(a.Malformed), len(a.RowReport.InvalidRows),
		len(a.Dups.Duplicates), a.Outcome)
	return a, nil
}

// scanParallel fans batches out to Workers aggregates and merges them in
// worker order. Batch assignment is round-robin over a single reader, so the
// merge result is deterministic for a given file and worker count; counters
// are identical to a sequential scan either way.
func (e *Engine) scanParallel(ctx context.Context, root *pass1, cls *accumulate.Classifier, header []string, onErr func(int, error)) error {
	workers := e.cfg.Workers
	states := make([]*pass1, workers)
	chans := make([]chan csv.Batch, workers)
	for i := range states {
		states[i] = e.newPass1(header, cls)
		chans[i] = make(chan csv.Batch, 1)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range states {
		g.Go(func() error {
			for b := range chans[i] {
				if err := states[i].absorb(b); err != nil {
					return err
				}
			}
			return nil
		})
	}

	g.Go(func() error {
		defer func() {
			for _, ch := range chans {
				close(ch)
			}
		}()
		next := 0
		return e.src.Scan(gctx, e.cfg.ChunkSize, func(b csv.Batch) error {
			select {
			case chans[next] <- b:
			case <-gctx.Done():
				return gctx.Err()
			}
			next = (next + 1) % len(chans)
			return nil
		}, onErr)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	for _, s := range states {
		if err := root.merge(s); err != nil {
			return err
		}
	}
	return nil
}

// decisionsFor assembles the decision set the task asked for. Findings of
// the other policies stay in the Analysis for the report but are not acted
// on.
func (e *Engine) decisionsFor(task Task, a *Analysis) DecisionSet {
	switch task {
	case TaskValidate:
		return DecisionSet{DropRows: a.RowReport.InvalidRows, Suffix: e.cfg.Suffixes.Validated}
	case TaskClean:
		return DecisionSet{DropColumns: policy.DropSet(a.Prune), Suffix: e.cfg.Suffixes.Cleaned}
	case TaskImpute:
		return DecisionSet{Impute: a.Impute.Medians, Suffix: e.cfg.Suffixes.Imputed}
	case TaskDedupe:
		return DecisionSet{DropRows: a.Dups.Duplicates, Suffix: e.cfg.Suffixes.Deduped}
	default:
		return DecisionSet{}
	}
}
