package profiler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/nao1215/wordcrawl/internal/crawler"
	"github.com/nao1215/wordcrawl/internal/model"
)

// ErrNegativeDuration is returned by Record for a negative duration.
var ErrNegativeDuration = errors.New("negative elapsed time")

// Profiler aggregates durations per key. It is safe for concurrent use.
//
// Design decision: We wrap the Crawler interface with an explicit decorator
// instead of intercepting calls dynamically because:
//  1. The set of profiled operations is small and known at compile time
//  2. The wrapped type stays visible in the key ("*crawler.Engine#Crawl")
//  3. Anything implementing crawler.Crawler can be profiled, including fakes
type Profiler struct {
	clock     crawler.Clock
	startTime time.Time

	mu   sync.Mutex
	data map[string]time.Duration
}

// Option configures a Profiler.
type Option func(*Profiler)

// WithClock sets the time source used for measurements and the start time.
func WithClock(c crawler.Clock) Option {
	return func(p *Profiler) {
		if c != nil {
			p.clock = c
		}
	}
}

// New creates a Profiler. The start time printed by WriteData is taken here.
func New(opts ...Option) *Profiler {
	p := &Profiler{
		clock: crawler.SystemClock(),
		data:  make(map[string]time.Duration),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.startTime = p.clock.Now()
	return p
}

// Record adds d to the total for key.
func (p *Profiler) Record(key string, d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("%w: %s for %s", ErrNegativeDuration, d, key)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.data[key] += d
	return nil
}

// Time runs fn and records its duration under key, whether or not fn fails.
// The error of fn is returned unchanged.
func (p *Profiler) Time(key string, fn func() error) error {
	start := p.clock.Now()
	defer func() {
		// A clock stepping backwards is recorded as zero.
		_ = p.Record(key, max(p.clock.Now().Sub(start), 0))
	}()
	return fn()
}

// Wrap returns a Crawler that records the duration of every Crawl call of c
// under "<type of c>#Crawl".
func (p *Profiler) Wrap(c crawler.Crawler) crawler.Crawler {
	return &profiledCrawler{
		profiler: p,
		delegate: c,
		key:      fmt.Sprintf("%T#Crawl", c),
	}
}

// Snapshot returns a copy of the recorded totals.
func (p *Profiler) Snapshot() map[string]time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[string]time.Duration, len(p.data))
	for k, v := range p.data {
		out[k] = v
	}
	return out
}

// WriteData writes the start time and one line per key, sorted by key,
// followed by a blank line.
func (p *Profiler) WriteData(w io.Writer) error {
	snapshot := p.Snapshot()
	keys := make([]string, 0, len(snapshot))
	for k := range snapshot {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var sb strings.Builder
	sb.WriteString("Run at ")
	sb.WriteString(p.startTime.Format(time.RFC1123))
	sb.WriteString("\n")
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s took %s\n", k, formatDuration(snapshot[k]))
	}
	sb.WriteString("\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteFile appends the profile data to path, creating it if needed.
func (p *Profiler) WriteFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return fmt.Errorf("failed to open profile output %s: %w", path, err)
	}

	if err := p.WriteData(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write profile data: %w", err)
	}
	return f.Close()
}

// formatDuration renders d as "<minutes>m <seconds>s <millis>ms".
func formatDuration(d time.Duration) string {
	minutes := int64(d / time.Minute)
	seconds := int64(d%time.Minute) / int64(time.Second)
	millis := int64(d%time.Second) / int64(time.Millisecond)
	return fmt.Sprintf("%dm %ds %dms", minutes, seconds, millis)
}

// profiledCrawler is the decorator returned by Wrap.
type profiledCrawler struct {
	profiler *Profiler
	delegate crawler.Crawler
	key      string
}

// Crawl calls the wrapped crawler and records the elapsed time.
func (c *profiledCrawler) Crawl(ctx context.Context, startingURLs []string) (*model.CrawlResult, error) {
	var result *model.CrawlResult
	err := c.profiler.Time(c.key, func() error {
		var err error
		result, err = c.delegate.Crawl(ctx, startingURLs)
		return err
	})
	return result, err
}
