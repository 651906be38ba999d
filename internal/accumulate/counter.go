package accumulate

// Counter counts string values while remembering first-encountered order.
// Insertion order is what makes "most frequent value" reporting reproducible:
// ties break toward the value seen first, never toward map iteration order.
type Counter struct {
	order  []string
	counts map[string]int64
}

// NewCounter returns an empty Counter.
func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int64)}
}

// Add increments v by delta.
func (c *Counter) Add(v string, delta int64) {
	if _, ok := c.counts[v]; !ok {
		c.order = append(c.order, v)
	}
	c.counts[v] += delta
}

// Get returns the count for v (zero if unseen).
func (c *Counter) Get(v string) int64 { return c.counts[v] }

// Len returns the number of distinct values.
func (c *Counter) Len() int { return len(c.order) }

// Total returns the sum of all counts.
func (c *Counter) Total() int64 {
	var n int64
	for _, v := range c.order {
		n += c.counts[v]
	}
	return n
}

// Top returns the most frequent value and its count. Ties break toward the
// first-encountered value. ok is false for an empty counter.
func (c *Counter) Top() (value string, count int64, ok bool) {
	for _, v := range c.order {
		if n := c.counts[v]; n > count {
			value, count, ok = v, n, true
		} else if !ok {
			// count 0 entries can exist only via Add(v, 0); still report one.
			value, ok = v, true
		}
	}
	return value, count, ok
}

// Merge folds other into c. Counts add; values unseen by c are appended in
// other's order. Merging disjoint halves of a stream therefore yields the
// same counts as one pass, with the receiver's encounter order winning.
func (c *Counter) Merge(other *Counter) {
	if other == nil {
		return
	}
	for _, v := range other.order {
		c.Add(v, other.counts[v])
	}
}

// ValueCount is one (value, count) pair of a frozen counter.
type ValueCount struct {
	Value string
	Count int64
}

// Items returns the (value, count) pairs in first-encountered order.
func (c *Counter) Items() []ValueCount {
	out := make([]ValueCount, len(c.order))
	for i, v := range c.order {
		out[i] = ValueCount{Value: v, Count: c.counts[v]}
	}
	return out
}

// ItemsByCount returns the pairs sorted by descending count, first-encountered
// order breaking ties. This matches how report sections list values.
func (c *Counter) ItemsByCount() []ValueCount {
	items := c.Items()
	// Stable insertion sort keeps encounter order among equal counts; value
	// sets per column are small enough that O(n²) is irrelevant here.
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && items[j].Count > items[j-1].Count; j-- {
			items[j], items[j-1] = items[j-1], items[j]
		}
	}
	return items
}
