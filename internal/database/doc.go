// Package database provides SQLite-based storage for wordcrawl run history.
//
// This package implements the CrawlDB, which stores:
//   - One row per crawl run with its settings, counts and popular words
//   - One row per fetched page with its title, content hash and word total
//
// Design decision: We use SQLite (via modernc.org/sqlite) because:
// 1. The database is a single file under the XDG data directory
// 2. The CGO-free driver keeps cross-compilation easy
// 3. WAL mode lets "wordcrawl history" read while a crawl writes
package database
