package crawler

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
)

// TestVisitedRegistry tests the visited URL set.
func TestVisitedRegistry(t *testing.T) {
	t.Parallel()

	t.Run("claim inserts once", func(t *testing.T) {
		t.Parallel()

		r := NewVisitedRegistry()
		if r.Contains("http://a.example") {
			t.Error("expected empty registry")
		}
		if !r.Claim("http://a.example") {
			t.Error("expected first claim to succeed")
		}
		if r.Claim("http://a.example") {
			t.Error("expected second claim to fail")
		}
		if !r.Contains("http://a.example") {
			t.Error("expected claimed URL to be contained")
		}
		if r.Len() != 1 {
			t.Errorf("expected length 1, got %d", r.Len())
		}
	})

	t.Run("URLs are sorted", func(t *testing.T) {
		t.Parallel()

		r := NewVisitedRegistry()
		for _, u := range []string{"c", "a", "b"} {
			r.Claim(u)
		}
		if got := r.URLs(); !slices.Equal(got, []string{"a", "b", "c"}) {
			t.Errorf("expected [a b c], got %v", got)
		}
	})

	t.Run("concurrent claims of one URL have a single winner", func(t *testing.T) {
		t.Parallel()

		r := NewVisitedRegistry()
		var winners atomic.Int32
		var wg sync.WaitGroup
		for range 64 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if r.Claim("http://race.example") {
					winners.Add(1)
				}
			}()
		}
		wg.Wait()

		if winners.Load() != 1 {
			t.Errorf("expected exactly one winner, got %d", winners.Load())
		}
		if r.Len() != 1 {
			t.Errorf("expected length 1, got %d", r.Len())
		}
	})
}

// TestWordCounter tests the concurrent word totals.
func TestWordCounter(t *testing.T) {
	t.Parallel()

	t.Run("add and get", func(t *testing.T) {
		t.Parallel()

		c := NewWordCounter()
		if !c.IsEmpty() {
			t.Error("expected empty counter")
		}

		c.Add("go", 2)
		c.Add("go", 3)
		c.Add("rust", 0)
		c.Add("zig", -1)

		if c.Get("go") != 5 {
			t.Errorf("expected go=5, got %d", c.Get("go"))
		}
		if c.Len() != 1 {
			t.Errorf("expected 1 distinct word, got %d", c.Len())
		}
		if c.Get("rust") != 0 {
			t.Errorf("expected rust=0, got %d", c.Get("rust"))
		}
	})

	t.Run("merge and snapshot", func(t *testing.T) {
		t.Parallel()

		c := NewWordCounter()
		c.Merge(map[string]int{"a": 1, "b": 2})
		c.Merge(map[string]int{"b": 3, "c": 4})

		snapshot := c.Snapshot()
		expected := map[string]int{"a": 1, "b": 5, "c": 4}
		if len(snapshot) != len(expected) {
			t.Fatalf("expected %v, got %v", expected, snapshot)
		}
		for word, n := range expected {
			if snapshot[word] != n {
				t.Errorf("expected %s=%d, got %d", word, n, snapshot[word])
			}
		}
	})

	t.Run("concurrent merges lose no updates", func(t *testing.T) {
		t.Parallel()

		const workers = 32
		const rounds = 100

		c := NewWordCounter()
		var wg sync.WaitGroup
		for i := range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range rounds {
					c.Merge(map[string]int{
						"shared":                 1,
						fmt.Sprintf("own%d", i): 2,
					})
				}
			}()
		}
		wg.Wait()

		if c.Get("shared") != workers*rounds {
			t.Errorf("expected shared=%d, got %d", workers*rounds, c.Get("shared"))
		}
		if c.Get("own0") != 2*rounds {
			t.Errorf("expected own0=%d, got %d", 2*rounds, c.Get("own0"))
		}
		if c.Len() != workers+1 {
			t.Errorf("expected %d distinct words, got %d", workers+1, c.Len())
		}
	})
}
