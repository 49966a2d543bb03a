package model

import "time"

// RunState is the lifecycle state of a crawl run.
type RunState string

const (
	// RunStateRunning means the crawl has started and not finished.
	RunStateRunning RunState = "running"
	// RunStateCompleted means the crawl finished and produced a result.
	RunStateCompleted RunState = "completed"
	// RunStateFailed means the crawl could not produce a result.
	RunStateFailed RunState = "failed"
)

// CrawlStatus is the externally visible status of a crawl run.
type CrawlStatus struct {
	RunID       string    `json:"run_id"`
	State       RunState  `json:"state"`
	StartPages  []string  `json:"start_pages"`
	URLsVisited int       `json:"urls_visited"`
	Error       string    `json:"error,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}
