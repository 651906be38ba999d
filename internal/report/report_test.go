package report

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dq/internal/config"
	"dq/internal/engine"
)

func analyze(t *testing.T, body string, task engine.Task) (*engine.Engine, *engine.Analysis) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flows.csv")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	eng := engine.New(config.Default(), path)
	a, err := eng.Analyze(context.Background(), task)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	return eng, a
}

func TestRenderSections(t *testing.T) {
	// proto: "TCP" dominates 6 of 8 (75%). bad: 4 infs of 8 rows, over the
	// prune threshold, with a defined median. src_port has one violation. The
	// last row duplicates the first.
	body := "proto,bad,src_port,label\n" +
		"TCP,1,80,BENIGN\n" +
		"TCP,inf,80,BENIGN\n" +
		"TCP,2,443,BENIGN\n" +
		"TCP,inf,22,DDoS\n" +
		"UDP,inf,53,DDoS\n" +
		"TCP,3,70000,DDoS\n" +
		"UDP,inf,443,BENIGN\n" +
		"TCP,1,80,BENIGN\n"
	_, a := analyze(t, body, engine.TaskReport)

	out := Render(a)

	for _, want := range []string{
		"Data Quality Report for flows.csv",
		"Rows: 8",
		"Global Label Distribution",
		"BENIGN: 5",
		"DDoS: 3",
		"Columns in 70-80% range:",
		"Column: proto",
		"Value 'TCP': 6 (75.00%)",
		"-> Labels: [BENIGN: 4, DDoS: 2]",
		"Null / Infinite Ratio per Column",
		"bad: 0 null, 4 inf of 8 rows (50.00%) -> REMOVE",
		"Row Rule Violations",
		"[port_range] src_port: 1 rows",
		"labels: [DDoS: 1]",
		"Median Imputation for Infinite Values",
		"bad: median 1.5",
		"Duplicate Rows",
		"1 duplicates of 7 distinct rows",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q\n----\n%s", want, out)
		}
	}
}

func TestRenderUndefinedMedian(t *testing.T) {
	body := "allinf,label\ninf,A\n-inf,A\ninf,B\n"
	_, a := analyze(t, body, engine.TaskImpute)

	out := Render(a)
	if !strings.Contains(out, "allinf: UNDEFINED") {
		t.Fatalf("undefined median not surfaced:\n%s", out)
	}
	if a.Outcome != engine.OutcomeNoAction {
		t.Fatalf("outcome = %s, want no_action when nothing can be imputed", a.Outcome)
	}
}

func TestRenderEmptyBucketsSayNone(t *testing.T) {
	body := "a,b,c,d,label\n1,2,3,4,X\n5,6,7,8,Y\n"
	_, a := analyze(t, body, engine.TaskReport)

	out := Render(a)
	if !strings.Contains(out, "Columns in 95-100% range:") {
		t.Fatalf("bucket heading missing:\n%s", out)
	}
	if !strings.Contains(out, "None") {
		t.Fatalf("empty bucket not marked None:\n%s", out)
	}
}

func TestRenderRewriteSection(t *testing.T) {
	body := "src_port,label\n80,A\n70000,B\n"
	eng, a := analyze(t, body, engine.TaskValidate)

	if _, err := eng.Apply(context.Background(), a); err != nil {
		t.Fatalf("apply: %v", err)
	}
	out := Render(a)
	if !strings.Contains(out, "Rewrite") || !strings.Contains(out, "rows written: 1, rows dropped: 1") {
		t.Fatalf("rewrite section missing or wrong:\n%s", out)
	}
}
