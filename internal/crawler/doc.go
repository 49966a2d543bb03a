// Package crawler provides the concurrent word-frequency crawler.
//
// # Architecture
//
// The package is designed around the Engine type, which runs a fork/join
// traversal of the link graph. Every URL is handled by a crawl task that
// decides whether to visit it, merges the page's word counts into a shared
// accumulator, and forks one child task per discovered link. A task waits for
// all of its children before it completes, so a seed's subtree is resolved
// before the seed's task returns, while sibling subtrees run concurrently.
//
// Design decision: We use one goroutine per task and a weighted semaphore for
// fetches rather than a fixed worker pool because:
//  1. A task waiting on its children must not occupy a worker, or a deep
//     graph would deadlock a bounded pool
//  2. Goroutines blocked in errgroup.Wait cost a few kilobytes, not a thread
//  3. The semaphore bounds exactly the expensive part (fetch and parse)
//
// # Components
//
//   - Engine: Entry point; owns configuration and the fetch-slot pool
//   - VisitedRegistry: Set of claimed URLs with an atomic claim operation
//   - WordCounter: Word totals with an atomic add-or-insert operation
//   - IgnoreFilter: Full-match regular expressions for URLs and words
//   - Rank: Pure function producing the top-N word list
//   - HTTPPageSource: Fetches http, https and file URLs and parses HTML
//
// # Termination
//
// Each task checks its remaining depth and the crawl deadline on entry.
// The check is cooperative: a fetch already in flight when the deadline passes
// is not interrupted, but no new fetch starts after it.
//
// # Usage
//
//	source := crawler.NewHTTPPageSource(httpClient)
//	engine, err := crawler.NewEngine(source,
//	    crawler.WithMaxDepth(3),
//	    crawler.WithTimeout(10*time.Second),
//	    crawler.WithPopularWordCount(5),
//	)
//	result, err := engine.Crawl(ctx, []string{"https://example.com/"})
package crawler
