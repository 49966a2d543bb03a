package model

import "time"

// PageRecord is the stored summary of one successfully fetched page.
// Only aggregate numbers are kept; page bodies and per-page word counts
// are not persisted.
type PageRecord struct {
	// ID is the database row ID. Zero until stored.
	ID int64 `json:"id,omitempty"`

	// RunID is the crawl run this page belongs to.
	RunID int64 `json:"run_id,omitempty"`

	// URL is the page URL as it was claimed by the crawler.
	URL string `json:"url"`

	// Depth is the number of hops from the start page (start pages have depth 0).
	Depth int `json:"depth"`

	// Title is the page title, if any.
	Title string `json:"title,omitempty"`

	// Hash is the hex SHA3-256 digest of the page body.
	// Identical hashes across runs mean the page did not change.
	Hash string `json:"hash,omitempty"`

	// WordTotal is the number of counted words on the page.
	WordTotal int `json:"word_total"`

	// LinkCount is the number of links found on the page.
	LinkCount int `json:"link_count"`

	// CrawledAt is when the page was fetched.
	CrawledAt time.Time `json:"crawled_at"`
}

// RunRecord is the stored summary of one crawl run.
type RunRecord struct {
	// ID is the database row ID. Zero until stored.
	ID int64 `json:"id,omitempty"`

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// StartPages are the seed URLs.
	StartPages []string `json:"start_pages"`

	// MaxDepth, Parallelism and Timeout are the effective crawl settings.
	MaxDepth    int           `json:"max_depth"`
	Parallelism int           `json:"parallelism"`
	Timeout     time.Duration `json:"timeout"`

	// URLsVisited and PagesFailed are copied from the result.
	URLsVisited int `json:"urls_visited"`
	PagesFailed int `json:"pages_failed"`

	// WordCounts are the popular words of the run, count descending.
	WordCounts WordCounts `json:"word_counts"`

	// Error is the error that ended the run early, if any.
	Error string `json:"error,omitempty"`
}

// NewRunRecord builds a run record from a finished crawl.
func NewRunRecord(startPages []string, startedAt time.Time, result *CrawlResult) *RunRecord {
	run := &RunRecord{
		StartedAt:  startedAt,
		StartPages: append([]string(nil), startPages...),
		WordCounts: make(WordCounts, 0),
	}
	if result != nil {
		run.FinishedAt = startedAt.Add(result.Elapsed)
		run.URLsVisited = result.URLsVisited
		run.PagesFailed = result.PagesFailed
		run.WordCounts = append(run.WordCounts, result.WordCounts...)
	}
	return run
}

// Elapsed returns the duration of the run.
func (r *RunRecord) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
