// Package model defines the data structures shared across wordcrawl.
//
// This package contains the following main types:
//   - CrawlResult: The outcome of one crawl (popular words and visited count)
//   - WordCounts: An ordered word ranking that serializes as a JSON object
//   - CrawlStatus: The lifecycle status of a crawl run
//   - RunRecord, PageRecord: Stored summaries of runs and fetched pages
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The crawler, report, database and store packages all need
// these types, so centralizing them prevents import cycles.
package model
