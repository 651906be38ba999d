package accumulate

import (
	"testing"
)

func TestCrossTab(t *testing.T) {
	header := []string{"proto", "Label"}
	cls := NewClassifier(testNulls)
	ct := NewCrossTab(header, "label", cls)

	if !ct.Enabled() {
		t.Fatalf("label column not matched case-insensitively")
	}
	if ct.LabelColumn() != "Label" {
		t.Fatalf("LabelColumn = %q, want header spelling %q", ct.LabelColumn(), "Label")
	}

	ct.Absorb(batchOf(header, 0,
		[]string{"TCP", "BENIGN"},
		[]string{"TCP", "DDoS"},
		[]string{"UDP", "BENIGN"},
		[]string{"TCP", ""},    // null label skipped entirely
		[]string{"", "BENIGN"}, // null cell skipped, label still counted
	))
	snap := ct.Finalize()

	if got := snap.Labels.Get("BENIGN"); got != 3 {
		t.Errorf("BENIGN = %d, want 3", got)
	}
	if got := snap.Labels.Get("DDoS"); got != 1 {
		t.Errorf("DDoS = %d, want 1", got)
	}

	tcp := snap.LabelsFor(0, "TCP")
	if tcp == nil {
		t.Fatalf("no labels for proto=TCP")
	}
	if tcp.Get("BENIGN") != 1 || tcp.Get("DDoS") != 1 {
		t.Errorf("TCP labels = %v/%v, want 1/1", tcp.Get("BENIGN"), tcp.Get("DDoS"))
	}
	if snap.LabelsFor(1, "BENIGN") != nil {
		t.Errorf("label column cross-tabulated against itself")
	}
	if snap.LabelsFor(0, "unseen") != nil {
		t.Errorf("unseen value has labels")
	}
}

func TestCrossTabMergeEquivalence(t *testing.T) {
	header := []string{"c", "label"}
	rows := [][]string{
		{"a", "X"},
		{"b", "Y"},
		{"a", "X"},
		{"a", "Y"},
	}
	cls := NewClassifier(testNulls)

	whole := NewCrossTab(header, "label", cls)
	whole.Absorb(batchOf(header, 0, rows...))
	want := whole.Finalize()

	left := NewCrossTab(header, "label", cls)
	right := NewCrossTab(header, "label", cls)
	left.Absorb(batchOf(header, 0, rows[:2]...))
	right.Absorb(batchOf(header, 2, rows[2:]...))
	left.Merge(right)
	got := left.Finalize()

	for _, lbl := range []string{"X", "Y"} {
		if got.Labels.Get(lbl) != want.Labels.Get(lbl) {
			t.Errorf("label %s: %d, want %d", lbl, got.Labels.Get(lbl), want.Labels.Get(lbl))
		}
	}
	wa := want.LabelsFor(0, "a")
	ga := got.LabelsFor(0, "a")
	if ga.Get("X") != wa.Get("X") || ga.Get("Y") != wa.Get("Y") {
		t.Errorf("value a labels: %d/%d, want %d/%d", ga.Get("X"), ga.Get("Y"), wa.Get("X"), wa.Get("Y"))
	}
}

func TestCrossTabNoLabelColumn(t *testing.T) {
	header := []string{"a", "b"}
	ct := NewCrossTab(header, "label", NewClassifier(nil))
	if ct.Enabled() {
		t.Fatalf("Enabled = true without a label column")
	}
	ct.Absorb(batchOf(header, 0, []string{"1", "2"}))
	snap := ct.Finalize()
	if snap.Labels.Len() != 0 {
		t.Fatalf("labels collected without a label column")
	}
}
