package crawler

import (
	"slices"
	"sync"
	"sync/atomic"
)

// VisitedRegistry is the set of URLs already claimed by some crawl task.
// It is safe for concurrent use without external locking.
//
// Design decision: We only expose Claim (insert-if-absent) for mutation.
// A separate "check, then insert" pair would let two tasks both decide to
// visit the same URL and count its words twice.
type VisitedRegistry struct {
	urls sync.Map // map[string]struct{}
	size atomic.Int64
}

// NewVisitedRegistry creates an empty registry.
func NewVisitedRegistry() *VisitedRegistry {
	return &VisitedRegistry{}
}

// Contains reports whether the URL has been claimed.
func (r *VisitedRegistry) Contains(url string) bool {
	_, ok := r.urls.Load(url)
	return ok
}

// Claim atomically marks the URL as visited.
// It returns true only for the single caller that inserted the URL.
func (r *VisitedRegistry) Claim(url string) bool {
	if _, loaded := r.urls.LoadOrStore(url, struct{}{}); loaded {
		return false
	}
	r.size.Add(1)
	return true
}

// Len returns the number of claimed URLs.
func (r *VisitedRegistry) Len() int {
	return int(r.size.Load())
}

// URLs returns the claimed URLs in lexical order.
func (r *VisitedRegistry) URLs() []string {
	urls := make([]string, 0, r.Len())
	r.urls.Range(func(key, _ any) bool {
		urls = append(urls, key.(string)) //nolint:forcetypeassert // only strings are stored
		return true
	})
	slices.Sort(urls)
	return urls
}

// WordCounter accumulates word totals across crawl tasks.
// It is safe for concurrent use without external locking.
//
// Each word maps to its own atomic counter, so concurrent merges of different
// pages only contend when they touch the same word, and never lose updates.
type WordCounter struct {
	counts sync.Map // map[string]*atomic.Int64
	words  atomic.Int64
}

// NewWordCounter creates an empty counter.
func NewWordCounter() *WordCounter {
	return &WordCounter{}
}

// Add adds n to the total for word, inserting the word if needed.
// Non-positive counts are ignored.
func (c *WordCounter) Add(word string, n int) {
	if n <= 0 {
		return
	}

	v, ok := c.counts.Load(word)
	if !ok {
		var loaded bool
		v, loaded = c.counts.LoadOrStore(word, new(atomic.Int64))
		if !loaded {
			c.words.Add(1)
		}
	}
	v.(*atomic.Int64).Add(int64(n)) //nolint:forcetypeassert // only *atomic.Int64 is stored
}

// Merge adds every count in page to the running totals.
func (c *WordCounter) Merge(page map[string]int) {
	for word, n := range page {
		c.Add(word, n)
	}
}

// Get returns the current total for word.
func (c *WordCounter) Get(word string) int {
	v, ok := c.counts.Load(word)
	if !ok {
		return 0
	}
	return int(v.(*atomic.Int64).Load()) //nolint:forcetypeassert // only *atomic.Int64 is stored
}

// Len returns the number of distinct words.
func (c *WordCounter) Len() int {
	return int(c.words.Load())
}

// IsEmpty reports whether no word has been counted.
func (c *WordCounter) IsEmpty() bool {
	return c.Len() == 0
}

// Snapshot copies the totals into a plain map.
// It is meant to be called once all writers have finished.
func (c *WordCounter) Snapshot() map[string]int {
	snapshot := make(map[string]int, c.Len())
	c.counts.Range(func(key, value any) bool {
		snapshot[key.(string)] = int(value.(*atomic.Int64).Load()) //nolint:forcetypeassert // fixed types
		return true
	})
	return snapshot
}
