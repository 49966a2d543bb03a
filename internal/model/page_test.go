package model

import (
	"slices"
	"testing"
	"time"
)

// TestNewRunRecord tests building a run record from a crawl result.
func TestNewRunRecord(t *testing.T) {
	t.Parallel()

	startedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("copies result fields", func(t *testing.T) {
		t.Parallel()

		result := NewCrawlResult()
		result.URLsVisited = 4
		result.PagesFailed = 1
		result.Elapsed = 1500 * time.Millisecond
		result.WordCounts = WordCounts{{Word: "go", Count: 3}}

		seeds := []string{"https://a.example"}
		run := NewRunRecord(seeds, startedAt, result)

		if run.URLsVisited != 4 || run.PagesFailed != 1 {
			t.Errorf("unexpected counts: %+v", run)
		}
		if run.Elapsed() != 1500*time.Millisecond {
			t.Errorf("expected 1.5s elapsed, got %v", run.Elapsed())
		}
		if !slices.Equal(run.WordCounts, result.WordCounts) {
			t.Errorf("expected %v, got %v", result.WordCounts, run.WordCounts)
		}

		seeds[0] = "changed"
		if run.StartPages[0] != "https://a.example" {
			t.Error("expected start pages to be copied")
		}
	})

	t.Run("nil result", func(t *testing.T) {
		t.Parallel()

		run := NewRunRecord(nil, startedAt, nil)
		if run.Elapsed() != 0 {
			t.Errorf("expected zero elapsed, got %v", run.Elapsed())
		}
		if run.WordCounts == nil {
			t.Error("expected non-nil word counts")
		}
	})
}
