package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/wordcrawl/internal/model"
)

// Tracker moves one run through its states in a StatusStore.
type Tracker struct {
	store      StatusStore
	runID      string
	startPages []string
	now        func() time.Time
}

// NewTracker creates a Tracker with a fresh run ID.
func NewTracker(store StatusStore, startPages []string) *Tracker {
	return &Tracker{
		store:      store,
		runID:      NewRunID(),
		startPages: append([]string(nil), startPages...),
		now:        time.Now,
	}
}

// NewRunID returns a random run ID without dashes.
func NewRunID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// RunID returns the ID under which the status is stored.
func (t *Tracker) RunID() string {
	return t.runID
}

// Start records the run as running.
func (t *Tracker) Start(ctx context.Context) error {
	return t.set(ctx, model.RunStateRunning, 0, "")
}

// Complete records the run as completed with the number of visited URLs.
func (t *Tracker) Complete(ctx context.Context, result *model.CrawlResult) error {
	visited := 0
	if result != nil {
		visited = result.URLsVisited
	}
	return t.set(ctx, model.RunStateCompleted, visited, "")
}

// Fail records the run as failed. A partial result may be nil.
func (t *Tracker) Fail(ctx context.Context, result *model.CrawlResult, cause error) error {
	visited := 0
	if result != nil {
		visited = result.URLsVisited
	}
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return t.set(ctx, model.RunStateFailed, visited, msg)
}

func (t *Tracker) set(ctx context.Context, state model.RunState, visited int, errMsg string) error {
	return t.store.SetStatus(ctx, model.CrawlStatus{
		RunID:       t.runID,
		State:       state,
		StartPages:  t.startPages,
		URLsVisited: visited,
		Error:       errMsg,
		UpdatedAt:   t.now().UTC(),
	})
}
