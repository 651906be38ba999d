// Package report renders an Analysis as human-readable text. It is a
// consumer of the engine's outputs, not part of the engine contract: nothing
// here feeds back into decisions.
//
// The layout follows the reports the classifier team reads: global label
// distribution first, then dominance buckets with per-value label breakdowns,
// then the prune/validation/imputation verdicts. Every dropped row or column
// shows up somewhere in the report; there is no silent data loss.
package report

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"dq/internal/accumulate"
	"dq/internal/engine"
)

// maxListedRows caps how many absolute row indices a violation section lists
// verbatim; the full count is always printed.
const maxListedRows = 20

// Render formats the analysis as text.
func Render(a *engine.Analysis) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Data Quality Report for %s\n", filepath.Base(a.Path))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	fmt.Fprintf(&b, "Rows: %s   Columns: %d   Task: %s   Outcome: %s\n\n",
		humanize.Comma(a.Snapshot.Rows), len(a.Header), a.Task, a.Outcome)

	renderLabels(&b, a)
	renderBuckets(&b, a)
	renderConstants(&b, a)
	renderMixed(&b, a)
	renderPrune(&b, a)
	renderRules(&b, a)
	renderImpute(&b, a)
	renderDups(&b, a)
	renderMalformed(&b, a)
	renderRewrite(&b, a)

	return b.String()
}

func section(b *strings.Builder, title string) {
	fmt.Fprintf(b, "%s:\n%s\n", title, strings.Repeat("-", 40))
}

func renderLabels(b *strings.Builder, a *engine.Analysis) {
	if a.Cross == nil || a.Cross.Labels.Len() == 0 {
		return
	}
	section(b, "Global Label Distribution")
	total := a.Cross.Labels.Total()
	for _, vc := range a.Cross.Labels.ItemsByCount() {
		fmt.Fprintf(b, "  %s: %s (%.2f%%)\n",
			vc.Value, humanize.Comma(vc.Count), percent(vc.Count, total))
	}
	b.WriteString("\n")
}

func renderBuckets(b *strings.Builder, a *engine.Analysis) {
	for _, bucket := range a.Buckets {
		fmt.Fprintf(b, "\nColumns in %s range:\n%s\n", bucket.Range.Label, strings.Repeat("-", 40))
		if len(bucket.Columns) == 0 {
			b.WriteString("  None\n")
			continue
		}
		for _, col := range bucket.Columns {
			fmt.Fprintf(b, "\nColumn: %s\n", col.Name)
			snap, _ := a.Snapshot.Column(col.Name)
			idx := columnIndex(a.Header, col.Name)
			// Values listed by descending count, like the source reports.
			items := valueItemsByCount(snap)
			for _, vc := range items {
				fmt.Fprintf(b, "  Value '%s': %s (%.2f%%)",
					vc.Value, humanize.Comma(vc.Count), percent(vc.Count, snap.Total))
				if lc := a.Cross.LabelsFor(idx, vc.Value); lc != nil {
					var parts []string
					for _, l := range lc.ItemsByCount() {
						parts = append(parts, fmt.Sprintf("%s: %s", l.Value, humanize.Comma(l.Count)))
					}
					fmt.Fprintf(b, " -> Labels: [%s]", strings.Join(parts, ", "))
				}
				b.WriteString("\n")
			}
		}
	}
	b.WriteString("\n")
}

func renderConstants(b *strings.Builder, a *engine.Analysis) {
	if len(a.Constants) == 0 {
		return
	}
	section(b, "Constant Columns")
	for _, c := range a.Constants {
		snap, _ := a.Snapshot.Column(c)
		v := ""
		if len(snap.Values) == 1 {
			v = snap.Values[0].Value
		}
		fmt.Fprintf(b, "  %s (always '%s')\n", c, v)
	}
	b.WriteString("\n")
}

func renderMixed(b *strings.Builder, a *engine.Analysis) {
	var any bool
	for _, col := range a.Snapshot.Columns {
		if !col.Mixed() {
			continue
		}
		if !any {
			section(b, "Mixed-Type Columns")
			any = true
		}
		fmt.Fprintf(b, "  %s: %s numeric, %s non-numeric values\n",
			col.Name, humanize.Comma(col.FiniteCount), humanize.Comma(col.TextCount))
	}
	if any {
		b.WriteString("\n")
	}
}

func renderPrune(b *strings.Builder, a *engine.Analysis) {
	if len(a.Prune) == 0 {
		return
	}
	section(b, "Null / Infinite Ratio per Column")
	for _, v := range a.Prune {
		verdict := "keep"
		if v.Drop {
			verdict = "REMOVE"
		}
		fmt.Fprintf(b, "  %s: %s null, %s inf of %s rows (%.2f%%) -> %s\n",
			v.Name, humanize.Comma(v.Nulls), humanize.Comma(v.Infs),
			humanize.Comma(v.Rows), v.Ratio*100, verdict)
	}
	b.WriteString("\n")
}

func renderRules(b *strings.Builder, a *engine.Analysis) {
	if len(a.RowReport.Violations) == 0 {
		return
	}
	section(b, "Row Rule Violations")
	for _, v := range a.RowReport.Violations {
		fmt.Fprintf(b, "  [%s] %s: %s rows\n", v.Rule, v.Column, humanize.Comma(int64(len(v.Rows))))
		if n := len(v.Rows); n <= maxListedRows {
			fmt.Fprintf(b, "    rows: %v\n", v.Rows)
		} else {
			fmt.Fprintf(b, "    rows: %v ... (%s more)\n",
				v.Rows[:maxListedRows], humanize.Comma(int64(n-maxListedRows)))
		}
		var parts []string
		for _, l := range v.Labels.ItemsByCount() {
			parts = append(parts, fmt.Sprintf("%s: %s", l.Value, humanize.Comma(l.Count)))
		}
		fmt.Fprintf(b, "    labels: [%s]\n", strings.Join(parts, ", "))
	}
	fmt.Fprintf(b, "  unique invalid rows: %s\n\n", humanize.Comma(int64(len(a.RowReport.InvalidRows))))
}

func renderImpute(b *strings.Builder, a *engine.Analysis) {
	if a.Impute.Empty() && len(a.Impute.Undefined) == 0 {
		return
	}
	section(b, "Median Imputation for Infinite Values")
	for _, c := range a.Impute.Columns {
		fmt.Fprintf(b, "  %s: median %v\n", c, a.Impute.Medians[c])
	}
	for _, c := range a.Impute.Undefined {
		fmt.Fprintf(b, "  %s: UNDEFINED (no finite values; column left untouched)\n", c)
	}
	b.WriteString("\n")
}

func renderDups(b *strings.Builder, a *engine.Analysis) {
	if len(a.Dups.Duplicates) == 0 {
		return
	}
	section(b, "Duplicate Rows")
	fmt.Fprintf(b, "  %s duplicates of %s distinct rows\n\n",
		humanize.Comma(int64(len(a.Dups.Duplicates))), humanize.Comma(a.Dups.Distinct))
}

func renderMalformed(b *strings.Builder, a *engine.Analysis) {
	if len(a.Malformed) == 0 {
		return
	}
	section(b, "Malformed Rows (skipped)")
	for _, m := range a.Malformed {
		fmt.Fprintf(b, "  %s\n", m.Msg)
	}
	b.WriteString("\n")
}

func renderRewrite(b *strings.Builder, a *engine.Analysis) {
	if a.Rewrite == nil {
		return
	}
	section(b, "Rewrite")
	r := a.Rewrite
	fmt.Fprintf(b, "  output: %s\n", r.OutputPath)
	fmt.Fprintf(b, "  rows written: %s, rows dropped: %s, cells imputed: %s\n",
		humanize.Comma(r.RowsWritten), humanize.Comma(r.RowsDropped), humanize.Comma(r.CellsImputed))
	if len(r.ColumnsDropped) > 0 {
		fmt.Fprintf(b, "  columns dropped: %s\n", strings.Join(r.ColumnsDropped, ", "))
	}
	b.WriteString("\n")
}

// valueItemsByCount returns the column's value counts sorted by descending
// count, first-encountered order breaking ties.
func valueItemsByCount(col accumulate.ColumnSnapshot) []accumulate.ValueCount {
	items := append([]accumulate.ValueCount(nil), col.Values...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Count > items[j].Count })
	return items
}

func percent(n, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}
