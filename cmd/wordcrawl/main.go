// Package main provides the entry point for the wordcrawl CLI.
//
// wordcrawl crawls web pages concurrently, up to a depth and a deadline,
// and reports the most frequent words together with the number of URLs
// visited.
//
// Usage:
//
//	wordcrawl crawl https://example.com/
//	wordcrawl crawl -c crawl.yaml
//	wordcrawl history
//
// See --help for all available options.
package main

// main is the entry point for wordcrawl.
func main() {
	Execute()
}
