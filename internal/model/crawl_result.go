package model

import "time"

// CrawlResult is the outcome of one crawl.
// It is produced once at the end of a crawl and not modified afterwards.
//
// Only WordCounts and URLsVisited are part of the serialized result; the
// remaining fields describe the run and are used for reports and history.
type CrawlResult struct {
	// WordCounts holds the most popular words, count descending.
	WordCounts WordCounts `json:"wordCounts"`

	// URLsVisited is the number of distinct URLs claimed during the crawl.
	// Pages that failed to load still count as visited.
	URLsVisited int `json:"urlsVisited"`

	// VisitedURLs lists every claimed URL in lexical order.
	VisitedURLs []string `json:"-"`

	// PagesFailed is the number of claimed URLs whose fetch or parse failed.
	PagesFailed int `json:"-"`

	// Elapsed is the wall time spent in the crawl.
	Elapsed time.Duration `json:"-"`
}

// NewCrawlResult creates a result with an empty word count list.
func NewCrawlResult() *CrawlResult {
	return &CrawlResult{
		WordCounts:  make(WordCounts, 0),
		VisitedURLs: make([]string, 0),
	}
}

// HasWords reports whether any word was counted.
func (r *CrawlResult) HasWords() bool {
	return len(r.WordCounts) > 0
}
