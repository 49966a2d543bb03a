package profiler

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/wordcrawl/internal/model"
)

// stepClock advances by step on every call to Now.
type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

// fakeCrawler returns a fixed result and error.
type fakeCrawler struct {
	result *model.CrawlResult
	err    error
	calls  int
}

func (f *fakeCrawler) Crawl(_ context.Context, _ []string) (*model.CrawlResult, error) {
	f.calls++
	return f.result, f.err
}

var testStart = time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

// TestRecord tests aggregation and validation of recorded durations.
func TestRecord(t *testing.T) {
	t.Parallel()

	t.Run("sums per key", func(t *testing.T) {
		t.Parallel()

		p := New()
		for _, d := range []time.Duration{time.Second, 2 * time.Second} {
			if err := p.Record("a", d); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if err := p.Record("b", time.Millisecond); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got := p.Snapshot()
		if got["a"] != 3*time.Second {
			t.Errorf("expected 3s for a, got %s", got["a"])
		}
		if got["b"] != time.Millisecond {
			t.Errorf("expected 1ms for b, got %s", got["b"])
		}
	})

	t.Run("rejects negative duration", func(t *testing.T) {
		t.Parallel()

		p := New()
		err := p.Record("a", -time.Nanosecond)
		if !errors.Is(err, ErrNegativeDuration) {
			t.Errorf("expected ErrNegativeDuration, got %v", err)
		}
		if len(p.Snapshot()) != 0 {
			t.Error("expected nothing to be recorded")
		}
	})

	t.Run("zero duration creates key", func(t *testing.T) {
		t.Parallel()

		p := New()
		if err := p.Record("a", 0); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := p.Snapshot()["a"]; !ok {
			t.Error("expected key to exist")
		}
	})

	t.Run("concurrent records", func(t *testing.T) {
		t.Parallel()

		p := New()
		var wg sync.WaitGroup
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = p.Record("a", time.Millisecond)
			}()
		}
		wg.Wait()

		if got := p.Snapshot()["a"]; got != 50*time.Millisecond {
			t.Errorf("expected 50ms, got %s", got)
		}
	})
}

// TestWrap tests the profiling decorator.
func TestWrap(t *testing.T) {
	t.Parallel()

	t.Run("records elapsed time under type key", func(t *testing.T) {
		t.Parallel()

		clock := &stepClock{now: testStart, step: 250 * time.Millisecond}
		p := New(WithClock(clock))
		want := model.NewCrawlResult()
		want.URLsVisited = 7
		inner := &fakeCrawler{result: want}

		c := p.Wrap(inner)
		for range 2 {
			got, err := c.Crawl(context.Background(), []string{"https://a.example/"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != want {
				t.Error("expected the wrapped result to be returned")
			}
		}

		if inner.calls != 2 {
			t.Errorf("expected 2 calls, got %d", inner.calls)
		}
		got := p.Snapshot()["*profiler.fakeCrawler#Crawl"]
		if got != 500*time.Millisecond {
			t.Errorf("expected 500ms, got %s (snapshot %v)", got, p.Snapshot())
		}
	})

	t.Run("records failing calls and returns error", func(t *testing.T) {
		t.Parallel()

		clock := &stepClock{now: testStart, step: time.Second}
		p := New(WithClock(clock))
		boom := errors.New("boom")

		_, err := p.Wrap(&fakeCrawler{err: boom}).Crawl(context.Background(), nil)
		if !errors.Is(err, boom) {
			t.Errorf("expected boom, got %v", err)
		}
		if got := p.Snapshot()["*profiler.fakeCrawler#Crawl"]; got != time.Second {
			t.Errorf("expected 1s, got %s", got)
		}
	})
}

// TestWriteData tests the text output layout.
func TestWriteData(t *testing.T) {
	t.Parallel()

	t.Run("sorted keys with duration parts", func(t *testing.T) {
		t.Parallel()

		p := New(WithClock(&stepClock{now: testStart}))
		_ = p.Record("b#run", 2*time.Minute+3*time.Second+45*time.Millisecond)
		_ = p.Record("a#Crawl", 1500*time.Millisecond)

		var buf bytes.Buffer
		if err := p.WriteData(&buf); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		expected := "Run at Thu, 01 May 2025 10:00:00 UTC\n" +
			"a#Crawl took 0m 1s 500ms\n" +
			"b#run took 2m 3s 45ms\n" +
			"\n"
		if buf.String() != expected {
			t.Errorf("expected %q, got %q", expected, buf.String())
		}
	})

	t.Run("no entries", func(t *testing.T) {
		t.Parallel()

		p := New(WithClock(&stepClock{now: testStart}))
		var buf bytes.Buffer
		if err := p.WriteData(&buf); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if buf.String() != "Run at Thu, 01 May 2025 10:00:00 UTC\n\n" {
			t.Errorf("unexpected output %q", buf.String())
		}
	})
}

// TestWriteFile tests that profile data is appended to the output file.
func TestWriteFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "profile.txt")
	p := New(WithClock(&stepClock{now: testStart}))
	_ = p.Record("a#Crawl", time.Second)

	for range 2 {
		if err := p.WriteFile(path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	data, err := os.ReadFile(path) //nolint:gosec // test file in temp dir
	if err != nil {
		t.Fatalf("failed to read profile: %v", err)
	}
	if n := strings.Count(string(data), "Run at "); n != 2 {
		t.Errorf("expected 2 appended runs, got %d:\n%s", n, data)
	}

	t.Run("missing directory", func(t *testing.T) {
		t.Parallel()

		err := p.WriteFile(filepath.Join(t.TempDir(), "missing", "profile.txt"))
		if err == nil {
			t.Error("expected error for missing directory")
		}
	})
}

// TestFormatDuration tests the minute, second and millisecond split.
func TestFormatDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0m 0s 0ms"},
		{999 * time.Microsecond, "0m 0s 0ms"},
		{59*time.Second + 999*time.Millisecond, "0m 59s 999ms"},
		{61 * time.Minute, "61m 0s 0ms"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			if got := formatDuration(tt.in); got != tt.want {
				t.Errorf("formatDuration(%s) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
