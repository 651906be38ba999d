package engine

// Task selects which policy's findings become the decision set of a run. The
// analysis pass always computes everything; the task only controls what the
// rewrite pass would apply.
type Task string

const (
	// TaskReport computes statistics and renders the report; it never
	// produces decisions.
	TaskReport Task = "report"
	// TaskValidate drops rows violating the row rules.
	TaskValidate Task = "validate"
	// TaskClean drops columns over the null+infinite prune threshold.
	TaskClean Task = "clean"
	// TaskImpute replaces infinite cells with the column median.
	TaskImpute Task = "impute"
	// TaskDedupe drops exact duplicate rows, keeping first occurrences.
	TaskDedupe Task = "dedupe"
)

// ParseTask validates a task name from the CLI.
func ParseTask(s string) (Task, bool) {
	switch Task(s) {
	case TaskReport, TaskValidate, TaskClean, TaskImpute, TaskDedupe:
		return Task(s), true
	}
	return "", false
}

// Outcome is the engine's typed result state for one file.
type Outcome string

const (
	// OutcomeNoAction means the analysis produced an empty decision set;
	// there is nothing to rewrite.
	OutcomeNoAction Outcome = "no_action"
	// OutcomePending means decisions were computed and await the caller's
	// confirmation. The engine never mutates data on its own.
	OutcomePending Outcome = "pending"
	// OutcomeApplied means the rewrite pass ran and the output file exists.
	OutcomeApplied Outcome = "applied"
)

// DecisionSet is the immutable output of policy evaluation, consumed by the
// rewrite pass. It is computed once from fully-accumulated state and never
// changes during the rewrite.
type DecisionSet struct {
	// DropColumns are removed from the output by name; names absent from the
	// header are ignored rather than failing.
	DropColumns []string
	// DropRows are absolute row indices to omit, sorted ascending.
	DropRows []int64
	// Impute maps column names to the substitution value written over
	// infinite cells.
	Impute map[string]float64
	// Suffix is appended to the input base name for the output file.
	Suffix string
}

// Empty reports whether applying the decisions would change nothing.
func (d DecisionSet) Empty() bool {
	return len(d.DropColumns) == 0 && len(d.DropRows) == 0 && len(d.Impute) == 0
}
