package model

import (
	"sort"

	"github.com/nao1215/bizreport/internal/document"
)

// Bucket is one category of a breakdown and the number of records in it.
type Bucket struct {
	// Value is the category value as found in the data (or a placeholder).
	Value document.Value `json:"value"`

	// Count is the number of records in the category.
	Count int `json:"count"`
}

// Label returns the display text of the bucket value.
func (b Bucket) Label() string {
	return b.Value.String()
}

// Counter counts values while remembering the order in which each
// distinct value was first seen.
type Counter struct {
	order  []string
	counts map[string]int
	values map[string]document.Value
	total  int
}

// NewCounter creates an empty Counter.
func NewCounter() *Counter {
	return &Counter{
		order:  make([]string, 0),
		counts: make(map[string]int),
		values: make(map[string]document.Value),
	}
}

// Add counts one occurrence of v.
func (c *Counter) Add(v document.Value) {
	key := v.Key()
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
		c.values[key] = v
	}
	c.counts[key]++
	c.total++
}

// AddString counts one occurrence of a string label.
func (c *Counter) AddString(s string) {
	c.Add(document.NewString(s))
}

// Count returns the number of occurrences of v.
func (c *Counter) Count(v document.Value) int {
	return c.counts[v.Key()]
}

// Len returns the number of distinct values.
func (c *Counter) Len() int {
	return len(c.order)
}

// Total returns the number of values added.
func (c *Counter) Total() int {
	return c.total
}

// Buckets returns every distinct value in first-seen order.
func (c *Counter) Buckets() []Bucket {
	buckets := make([]Bucket, len(c.order))
	for i, key := range c.order {
		buckets[i] = Bucket{Value: c.values[key], Count: c.counts[key]}
	}
	return buckets
}

// MostCommon returns the n most frequent values, highest count first.
// Equal counts keep first-seen order. A negative n returns all values.
func (c *Counter) MostCommon(n int) []Bucket {
	buckets := c.Buckets()
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Count > buckets[j].Count
	})
	return head(buckets, n)
}

// Sorted returns the first n values in ascending value order as defined by
// document.Compare. A negative n returns all values.
func (c *Counter) Sorted(n int) []Bucket {
	buckets := c.Buckets()
	sort.SliceStable(buckets, func(i, j int) bool {
		return document.Compare(buckets[i].Value, buckets[j].Value) < 0
	})
	return head(buckets, n)
}

// Repeated returns every value seen more than once, in first-seen order.
func (c *Counter) Repeated() []Bucket {
	repeated := make([]Bucket, 0)
	for _, b := range c.Buckets() {
		if b.Count > 1 {
			repeated = append(repeated, b)
		}
	}
	return repeated
}

// head truncates buckets to n entries; a negative n keeps all.
func head(buckets []Bucket, n int) []Bucket {
	if n < 0 || n >= len(buckets) {
		return buckets
	}
	return buckets[:n]
}
