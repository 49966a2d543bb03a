package crawler

import (
	"context"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/nao1215/wordcrawl/internal/model"
)

// Default engine settings, used when the corresponding option is not given.
const (
	// DefaultTimeout is the crawl deadline measured from the start of Crawl.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxDepth is the depth budget given to every seed.
	// Depth 1 visits only the seeds, depth 2 the seeds and their links, etc.
	DefaultMaxDepth = 10

	// DefaultPopularWordCount is the number of words kept in the result.
	DefaultPopularWordCount = 10
)

// Crawler is anything that can run a crawl from a list of seeds.
// Engine implements it; decorators such as the profiler wrap it.
type Crawler interface {
	Crawl(ctx context.Context, startingURLs []string) (*model.CrawlResult, error)
}

// PageVisit describes a page that was fetched and parsed successfully.
type PageVisit struct {
	URL       string
	Depth     int
	Title     string
	Hash      string
	WordTotal int
	LinkCount int
}

// Engine runs depth- and time-bounded concurrent crawls.
// An Engine is safe for repeated and concurrent calls to Crawl: every call
// allocates its own visited registry and word counter. Only the fetch-slot
// pool is shared between calls.
type Engine struct {
	// source fetches and parses pages.
	source PageSource

	// clock provides the time for the deadline computation and checks.
	clock Clock

	// timeout is added to the start time to get the crawl deadline.
	timeout time.Duration

	// maxDepth is the depth budget for every seed.
	maxDepth int

	// popularWordCount is the number of words kept in the result.
	popularWordCount int

	// parallelism is the maximum number of concurrent fetches.
	parallelism int

	// ignoredURLs are the raw patterns; ignore is compiled from them.
	ignoredURLs []string
	ignore      *IgnoreFilter

	// tieBreak orders words with equal counts.
	tieBreak TieBreak

	// visitHook is called after every successful fetch, possibly concurrently.
	visitHook func(PageVisit)

	logger *slog.Logger

	// slots bounds concurrent fetches. Tasks waiting for children do not hold a slot.
	slots *semaphore.Weighted
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithTimeout sets the crawl timeout. A negative timeout visits nothing.
func WithTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.timeout = d
	}
}

// WithMaxDepth sets the depth budget given to each seed.
func WithMaxDepth(depth int) EngineOption {
	return func(e *Engine) {
		e.maxDepth = depth
	}
}

// WithPopularWordCount sets how many words are kept in the result.
func WithPopularWordCount(n int) EngineOption {
	return func(e *Engine) {
		e.popularWordCount = n
	}
}

// WithParallelism sets the maximum number of concurrent page fetches.
func WithParallelism(n int) EngineOption {
	return func(e *Engine) {
		e.parallelism = n
	}
}

// WithIgnoredURLs sets regular expressions for URLs that must never be visited.
// Patterns must match the whole URL.
func WithIgnoredURLs(patterns []string) EngineOption {
	return func(e *Engine) {
		e.ignoredURLs = patterns
	}
}

// WithClock sets the time source.
func WithClock(c Clock) EngineOption {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithTieBreak sets the ordering of words with equal counts.
func WithTieBreak(tb TieBreak) EngineOption {
	return func(e *Engine) {
		e.tieBreak = tb
	}
}

// WithVisitHook registers a function called after each successful page fetch.
// The hook runs on the crawl task's goroutine and must be safe for concurrent use.
func WithVisitHook(hook func(PageVisit)) EngineOption {
	return func(e *Engine) {
		e.visitHook = hook
	}
}

// WithLogger sets the logger. A nil logger selects slog.Default().
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an Engine reading pages from source.
//
// Design decision: All configuration is validated here, so that a bad depth
// or a malformed pattern is reported to the caller before any page is fetched.
func NewEngine(source PageSource, opts ...EngineOption) (*Engine, error) {
	if source == nil {
		return nil, ErrNilPageSource
	}

	e := &Engine{
		source:           source,
		clock:            SystemClock(),
		timeout:          DefaultTimeout,
		maxDepth:         DefaultMaxDepth,
		popularWordCount: DefaultPopularWordCount,
		parallelism:      runtime.NumCPU(),
		tieBreak:         LongerThenLexical,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.maxDepth < 0 {
		return nil, ErrInvalidMaxDepth
	}
	if e.popularWordCount < 0 {
		return nil, ErrInvalidPopularWordCount
	}
	if e.parallelism <= 0 {
		return nil, ErrInvalidParallelism
	}

	ignore, err := NewIgnoreFilter(e.ignoredURLs)
	if err != nil {
		return nil, err
	}
	e.ignore = ignore

	if e.clock == nil {
		e.clock = SystemClock()
	}
	if e.tieBreak == nil {
		e.tieBreak = LongerThenLexical
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}

	e.slots = semaphore.NewWeighted(int64(e.parallelism))

	return e, nil
}

// Parallelism returns the maximum number of concurrent fetches.
func (e *Engine) Parallelism() int {
	return e.parallelism
}

// crawlJob is the immutable input of one crawl task.
type crawlJob struct {
	url            string
	remainingDepth int
	deadline       time.Time
}

// child returns the job for a link discovered on this job's page.
func (j crawlJob) child(url string) crawlJob {
	return crawlJob{
		url:            url,
		remainingDepth: j.remainingDepth - 1,
		deadline:       j.deadline,
	}
}

// crawlRun holds the state shared by all tasks of one Crawl call.
type crawlRun struct {
	visited  *VisitedRegistry
	counts   *WordCounter
	failures atomic.Int64
}

// Crawl visits the link graph reachable from startingURLs and returns the most
// popular words together with the number of distinct URLs visited.
//
// It blocks until every task, including all descendants, has finished.
// If ctx is cancelled, remaining tasks stop at their next entry check and the
// partial result is returned together with ctx.Err().
func (e *Engine) Crawl(ctx context.Context, startingURLs []string) (*model.CrawlResult, error) {
	start := e.clock.Now()
	deadline := start.Add(e.timeout)

	run := &crawlRun{
		visited: NewVisitedRegistry(),
		counts:  NewWordCounter(),
	}

	e.logger.Info("crawl started",
		"seeds", len(startingURLs),
		"maxDepth", e.maxDepth,
		"timeout", e.timeout,
		"parallelism", e.parallelism,
	)

	var g errgroup.Group
	for _, url := range startingURLs {
		root := crawlJob{
			url:            url,
			remainingDepth: e.maxDepth,
			deadline:       deadline,
		}
		g.Go(func() error {
			e.crawlTask(ctx, run, root)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // tasks never return errors

	result := model.NewCrawlResult()
	result.URLsVisited = run.visited.Len()
	result.VisitedURLs = run.visited.URLs()
	result.PagesFailed = int(run.failures.Load())
	result.Elapsed = e.clock.Now().Sub(start)
	if !run.counts.IsEmpty() {
		result.WordCounts = RankWith(run.counts.Snapshot(), e.popularWordCount, e.tieBreak)
	}

	e.logger.Info("crawl finished",
		"urlsVisited", result.URLsVisited,
		"pagesFailed", result.PagesFailed,
		"distinctWords", run.counts.Len(),
		"elapsed", result.Elapsed,
	)

	return result, ctx.Err()
}

// crawlTask is the recursive unit of work. The checks run in order and each
// one ends the task when it applies.
func (e *Engine) crawlTask(ctx context.Context, run *crawlRun, job crawlJob) {
	if run.visited.Contains(job.url) {
		return
	}
	if e.exhausted(ctx, job) {
		return
	}
	if e.ignore.Match(job.url) {
		return
	}
	if !run.visited.Claim(job.url) {
		return
	}

	page, err := e.fetch(ctx, job.url)
	if err != nil {
		// One page failing must not abort the rest of the crawl.
		run.failures.Add(1)
		e.logger.Debug("page skipped",
			"url", job.url,
			"error", err,
		)
		return
	}

	run.counts.Merge(page.WordCounts)
	e.notifyVisit(job, page)

	var g errgroup.Group
	for _, link := range page.Links {
		child := job.child(link)
		g.Go(func() error {
			e.crawlTask(ctx, run, child)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // tasks never return errors
}

// exhausted reports whether the job has run out of depth or time.
// The deadline itself is still in time; a negative timeout gives a deadline
// that has already passed.
func (e *Engine) exhausted(ctx context.Context, job crawlJob) bool {
	if job.remainingDepth <= 0 {
		return true
	}
	if e.clock.Now().After(job.deadline) {
		return true
	}
	return ctx.Err() != nil
}

// fetch parses the page while holding one fetch slot.
func (e *Engine) fetch(ctx context.Context, url string) (*PageResult, error) {
	if err := e.slots.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer e.slots.Release(1)

	return e.source.Parse(ctx, url)
}

// notifyVisit calls the visit hook, if any.
func (e *Engine) notifyVisit(job crawlJob, page *PageResult) {
	if e.visitHook == nil {
		return
	}

	total := 0
	for _, n := range page.WordCounts {
		total += n
	}

	e.visitHook(PageVisit{
		URL:       job.url,
		Depth:     e.maxDepth - job.remainingDepth,
		Title:     page.Title,
		Hash:      page.Hash,
		WordTotal: total,
		LinkCount: len(page.Links),
	})
}
