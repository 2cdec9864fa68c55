package model

import (
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nao1215/bizreport/internal/document"
)

// labels flattens buckets into "label:count" strings for comparison.
func labels(buckets []Bucket) []string {
	out := make([]string, len(buckets))
	for i, b := range buckets {
		out[i] = b.Label() + ":" + strconv.Itoa(b.Count)
	}
	return out
}

func TestCounter_Buckets(t *testing.T) {
	t.Parallel()

	c := NewCounter()
	for _, s := range []string{"Other", "Numeric", "Other", "Professional (prof-)"} {
		c.AddString(s)
	}

	want := []string{"Other:2", "Numeric:1", "Professional (prof-):1"}
	if diff := cmp.Diff(want, labels(c.Buckets())); diff != "" {
		t.Errorf("buckets mismatch (-want +got):\n%s", diff)
	}
	if c.Len() != 3 {
		t.Errorf("expected 3 distinct values, got %d", c.Len())
	}
	if c.Total() != 4 {
		t.Errorf("expected total 4, got %d", c.Total())
	}
}

func TestCounter_MostCommon(t *testing.T) {
	t.Parallel()

	t.Run("orders by count and keeps first-seen order on ties", func(t *testing.T) {
		t.Parallel()

		c := NewCounter()
		for _, s := range []string{"Cafe", "Retail", "Bakery", "Retail", "Bakery", "Gym"} {
			c.AddString(s)
		}

		want := []string{"Retail:2", "Bakery:2", "Cafe:1", "Gym:1"}
		if diff := cmp.Diff(want, labels(c.MostCommon(-1))); diff != "" {
			t.Errorf("most common mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("truncates to n", func(t *testing.T) {
		t.Parallel()

		c := NewCounter()
		for i := range 15 {
			for range i + 1 {
				c.AddString("cat-" + strconv.Itoa(i))
			}
		}

		top := c.MostCommon(10)
		if len(top) != 10 {
			t.Fatalf("expected 10 buckets, got %d", len(top))
		}
		if top[0].Label() != "cat-14" || top[0].Count != 15 {
			t.Errorf("expected cat-14:15 first, got %s:%d", top[0].Label(), top[0].Count)
		}
		for i := 1; i < len(top); i++ {
			if top[i-1].Count < top[i].Count {
				t.Errorf("buckets not descending at %d: %d < %d", i, top[i-1].Count, top[i].Count)
			}
		}
	})

	t.Run("zero returns nothing", func(t *testing.T) {
		t.Parallel()

		c := NewCounter()
		c.AddString("a")
		if got := c.MostCommon(0); len(got) != 0 {
			t.Errorf("expected no buckets, got %v", labels(got))
		}
	})
}

func TestCounter_SortedHandlesMixedKinds(t *testing.T) {
	t.Parallel()

	c := NewCounter()
	c.Add(document.NewNumber(5))
	c.AddString("Unknown")
	c.Add(document.NewNumber(2))
	c.Add(document.Null())
	c.Add(document.NewNumber(5))
	c.AddString("3")

	want := []string{"null:1", "2:1", "5:2", "3:1", "Unknown:1"}
	if diff := cmp.Diff(want, labels(c.Sorted(-1))); diff != "" {
		t.Errorf("sorted mismatch (-want +got):\n%s", diff)
	}
}

func TestCounter_Repeated(t *testing.T) {
	t.Parallel()

	c := NewCounter()
	for _, s := range []string{"B", "A", "B", "", "C", "", "A", "B"} {
		c.AddString(s)
	}

	want := []string{"B:3", "A:2", ":2"}
	if diff := cmp.Diff(want, labels(c.Repeated())); diff != "" {
		t.Errorf("repeated mismatch (-want +got):\n%s", diff)
	}
}

func TestCounter_NumbersShareBuckets(t *testing.T) {
	t.Parallel()

	root, err := document.Parse([]byte(`[3, 3.0, "3"]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c := NewCounter()
	for _, v := range root.Items() {
		c.Add(v)
	}

	if c.Len() != 2 {
		t.Errorf("expected 2 distinct values, got %d", c.Len())
	}
	if c.Count(document.NewNumber(3)) != 2 {
		t.Errorf("expected number 3 counted twice, got %d", c.Count(document.NewNumber(3)))
	}
}
