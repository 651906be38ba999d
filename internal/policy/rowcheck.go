package policy

import (
	"math"
	"sort"
	"strings"

	"dq/internal/accumulate"
	"dq/internal/config"
	"dq/internal/parser/csv"
)

// RuleKind names one of the independently-checkable row rules.
type RuleKind string

const (
	// RuleNeverNegative requires a value >= 0 on columns whose name matches a
	// never-negative keyword and no can-be-negative keyword.
	RuleNeverNegative RuleKind = "never_negative"
	// RulePortRange requires an integer in [0, 65535] on designated port
	// columns.
	RulePortRange RuleKind = "port_range"
	// RulePercentage requires a value in [0, 100] on columns whose name
	// contains "percentage".
	RulePercentage RuleKind = "percentage"
)

// unknownLabel stands in for rows without a usable label value in the
// per-label violation breakdown.
const unknownLabel = "Unknown"

// Violation is the frozen record of one (rule, column) pair's failures.
type Violation struct {
	Rule   RuleKind
	Column string
	// Rows are the absolute indices of violating rows, sorted ascending.
	// Indices may repeat across Violations (a row can break several rules);
	// the union is what the removal decision uses.
	Rows []int64
	// Labels breaks the violations down by the row's label value.
	Labels *accumulate.Counter
}

// colCheck is the precomputed hot-path form of one rule bound to one header
// index. ok is called only with a finite parsed value; anything that fails to
// parse is a violation before ok is consulted (fail-closed).
type colCheck struct {
	idx    int
	rule   RuleKind
	column string
	ok     func(f float64) bool
}

// RowChecker evaluates the row rules while the analysis pass streams batches.
// It is mergeable like the accumulators so pass 1 can be parallelized; the
// finalized report keys every violation on absolute row index, never on
// in-chunk position.
type RowChecker struct {
	checks    []colCheck
	labelIdx  int
	cls       *accumulate.Classifier
	active    map[string]*violationAcc // keyed rule+NUL+column
	order     []string
	finalized bool
}

type violationAcc struct {
	rule   RuleKind
	column string
	rows   []int64
	labels *accumulate.Counter
}

// NewRowChecker binds the configured rules to a concrete header. Keyword and
// port matching run against NormalizeName of each header cell; the label
// column is exempt from all rules.
func NewRowChecker(header []string, cfg config.Config, cls *accumulate.Classifier) *RowChecker {
	rc := &RowChecker{
		labelIdx: accumulate.FindLabel(header, cfg.LabelColumn),
		cls:      cls,
		active:   make(map[string]*violationAcc),
	}

	never := lowerAll(cfg.NeverNegativeKeywords)
	canBe := lowerAll(cfg.CanBeNegativeKeywords)
	ports := make(map[string]struct{}, len(cfg.PortColumns))
	for _, p := range cfg.PortColumns {
		ports[NormalizeName(p)] = struct{}{}
	}

	for i, h := range header {
		if i == rc.labelIdx {
			continue
		}
		name := NormalizeName(h)
		if containsAny(name, never) && !containsAny(name, canBe) {
			rc.checks = append(rc.checks, colCheck{
				idx: i, rule: RuleNeverNegative, column: h,
				ok: func(f float64) bool { return f >= 0 },
			})
		}
		if _, isPort := ports[name]; isPort {
			rc.checks = append(rc.checks, colCheck{
				idx: i, rule: RulePortRange, column: h,
				ok: func(f float64) bool { return f >= 0 && f <= 65535 && f == math.Trunc(f) },
			})
		}
		if strings.Contains(name, "percentage") {
			rc.checks = append(rc.checks, colCheck{
				idx: i, rule: RulePercentage, column: h,
				ok: func(f float64) bool { return f >= 0 && f <= 100 },
			})
		}
	}
	return rc
}

// Checked reports how many (rule, column) bindings are active. Zero means the
// header matched no rule and validation is a no-op.
func (rc *RowChecker) Checked() int { return len(rc.checks) }

// Absorb evaluates every row of the batch. A cell under a rule that does not
// parse to a finite number counts as a violation (fail-closed), never as a
// skip.
func (rc *RowChecker) Absorb(b csv.Batch) {
	if rc.finalized {
		panic("policy: RowChecker Absorb after Finalize")
	}
	for i, row := range b.Rows {
		abs := b.Start + int64(i)
		label := unknownLabel
		if rc.labelIdx >= 0 {
			if v := row[rc.labelIdx]; !rc.cls.IsNull(v) {
				label = v
			}
		}
		for _, ch := range rc.checks {
			f, numeric := rc.cls.Numeric(row[ch.idx])
			if numeric && ch.ok(f) {
				continue
			}
			rc.record(ch, abs, label)
		}
	}
}

func (rc *RowChecker) record(ch colCheck, abs int64, label string) {
	key := string(ch.rule) + "\x00" + ch.column
	acc := rc.active[key]
	if acc == nil {
		acc = &violationAcc{rule: ch.rule, column: ch.column, labels: accumulate.NewCounter()}
		rc.active[key] = acc
		rc.order = append(rc.order, key)
	}
	acc.rows = append(acc.rows, abs)
	acc.labels.Add(label, 1)
}

// Merge folds a checker built over a disjoint row range into rc.
func (rc *RowChecker) Merge(o *RowChecker) {
	if rc.finalized || o.finalized {
		panic("policy: RowChecker Merge after Finalize")
	}
	for _, key := range o.order {
		oacc := o.active[key]
		acc := rc.active[key]
		if acc == nil {
			acc = &violationAcc{rule: oacc.rule, column: oacc.column, labels: accumulate.NewCounter()}
			rc.active[key] = acc
			rc.order = append(rc.order, key)
		}
		acc.rows = append(acc.rows, oacc.rows...)
		acc.labels.Merge(oacc.labels)
	}
}

// Finalize freezes the checker into a RowReport. Violations are ordered by
// rule, then column name, so reports are reproducible regardless of how
// batches were assigned to workers.
func (rc *RowChecker) Finalize() *RowReport {
	rc.finalized = true
	rep := &RowReport{}
	union := make(map[int64]struct{})
	for _, key := range rc.order {
		acc := rc.active[key]
		sort.Slice(acc.rows, func(i, j int) bool { return acc.rows[i] < acc.rows[j] })
		rep.Violations = append(rep.Violations, Violation{
			Rule:   acc.rule,
			Column: acc.column,
			Rows:   acc.rows,
			Labels: acc.labels,
		})
		for _, r := range acc.rows {
			union[r] = struct{}{}
		}
	}
	sort.Slice(rep.Violations, func(i, j int) bool {
		if rep.Violations[i].Rule != rep.Violations[j].Rule {
			return rep.Violations[i].Rule < rep.Violations[j].Rule
		}
		return rep.Violations[i].Column < rep.Violations[j].Column
	})
	rep.InvalidRows = make([]int64, 0, len(union))
	for r := range union {
		rep.InvalidRows = append(rep.InvalidRows, r)
	}
	sort.Slice(rep.InvalidRows, func(i, j int) bool { return rep.InvalidRows[i] < rep.InvalidRows[j] })
	return rep
}

// RowReport is the frozen validation result.
type RowReport struct {
	// Violations hold the per-(rule, column) detail; row sets may overlap.
	Violations []Violation
	// InvalidRows is the de-duplicated union of all violating absolute
	// indices, sorted ascending. This is the removal set.
	InvalidRows []int64
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

func containsAny(name string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(name, kw) {
			return true
		}
	}
	return false
}
