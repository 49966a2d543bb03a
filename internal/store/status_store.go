package store

import (
	"context"

	"github.com/nao1215/wordcrawl/internal/model"
)

// StatusStore persists crawl run status.
type StatusStore interface {
	SetStatus(ctx context.Context, status model.CrawlStatus) error
	GetStatus(ctx context.Context, runID string) (model.CrawlStatus, bool, error)
	Close() error
}

// NopStatusStore discards every status. It is used when no Redis address
// is configured.
type NopStatusStore struct{}

// SetStatus does nothing.
func (NopStatusStore) SetStatus(context.Context, model.CrawlStatus) error { return nil }

// GetStatus never finds a status.
func (NopStatusStore) GetStatus(context.Context, string) (model.CrawlStatus, bool, error) {
	return model.CrawlStatus{}, false, nil
}

// Close does nothing.
func (NopStatusStore) Close() error { return nil }
