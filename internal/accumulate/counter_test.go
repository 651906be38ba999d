package accumulate

import "testing"

func TestCounterTopTieBreak(t *testing.T) {
	c := NewCounter()
	c.Add("b", 1)
	c.Add("a", 1)
	c.Add("b", 1)
	c.Add("a", 1)

	v, n, ok := c.Top()
	if !ok || v != "b" || n != 2 {
		t.Fatalf("Top = %q %d %v, want b 2 true (first encountered)", v, n, ok)
	}
}

func TestCounterMergeOrder(t *testing.T) {
	left := NewCounter()
	left.Add("x", 2)
	left.Add("y", 1)

	right := NewCounter()
	right.Add("y", 3)
	right.Add("z", 1)

	left.Merge(right)

	if got := left.Get("y"); got != 4 {
		t.Errorf("y = %d, want 4", got)
	}
	items := left.Items()
	wantOrder := []string{"x", "y", "z"}
	for i, w := range wantOrder {
		if items[i].Value != w {
			t.Errorf("items[%d] = %q, want %q (receiver order first)", i, items[i].Value, w)
		}
	}
	if left.Total() != 7 {
		t.Errorf("Total = %d, want 7", left.Total())
	}
}

func TestCounterItemsByCount(t *testing.T) {
	c := NewCounter()
	c.Add("low", 1)
	c.Add("high", 5)
	c.Add("mid", 3)
	c.Add("alsoLow", 1)

	items := c.ItemsByCount()
	want := []ValueCount{
		{"high", 5},
		{"mid", 3},
		{"low", 1},
		{"alsoLow", 1},
	}
	for i, w := range want {
		if items[i] != w {
			t.Errorf("items[%d] = %+v, want %+v", i, items[i], w)
		}
	}
}

func TestCounterMergeNil(t *testing.T) {
	c := NewCounter()
	c.Add("x", 1)
	c.Merge(nil)
	if c.Total() != 1 {
		t.Fatalf("Total = %d after nil merge, want 1", c.Total())
	}
}
