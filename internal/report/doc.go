// Package report writes crawl results.
//
// This package contains writers for different output formats:
//   - JSONWriter: {"wordCounts": {...}, "urlsVisited": N}, for tool integration
//   - MarkdownWriter: run summary, word table and pie chart, for sharing
//   - SimpleWriter: aligned plain text for terminal display
//
// Design decision: We separate result writing from the result structure
// (which is in the model package) so new output formats can be added
// without touching the crawler.
package report
