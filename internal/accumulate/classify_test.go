package accumulate

import "testing"

func TestClassify(t *testing.T) {
	cls := NewClassifier([]string{"NaN", "NULL", "-"})

	tests := []struct {
		cell string
		want Kind
	}{
		{"", KindNull},
		{"NULL", KindNull},
		{"-", KindNull},
		{"nan", KindNull}, // parses to NaN
		{"NaN", KindNull},
		{"inf", KindInfinite},
		{"-Inf", KindInfinite},
		{"+infinity", KindInfinite},
		{"1e309", KindInfinite}, // float64 overflow
		{"-1e309", KindInfinite},
		{"0", KindNumeric},
		{"-12.5", KindNumeric},
		{"1e3", KindNumeric},
		{"TCP", KindText},
		{"12abc", KindText},
		{"null", KindText}, // not in the configured literals
	}
	for _, tt := range tests {
		if got, _ := cls.Classify(tt.cell); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.cell, got, tt.want)
		}
	}
}

func TestNumericFailClosed(t *testing.T) {
	cls := NewClassifier([]string{"NaN"})

	for _, cell := range []string{"", "NaN", "inf", "-inf", "abc", "nan"} {
		if _, ok := cls.Numeric(cell); ok {
			t.Errorf("Numeric(%q) ok = true, want false", cell)
		}
	}
	f, ok := cls.Numeric("443")
	if !ok || f != 443 {
		t.Errorf("Numeric(443) = %v %v, want 443 true", f, ok)
	}
}
