// Package profiler records how long wrapped operations take and writes the
// aggregated timings as text.
//
// Timings are keyed by "<type>#<method>" and summed across calls, so a
// crawler wrapped once and called three times reports the total of the
// three calls. The output of WriteData looks like:
//
//	Run at Mon, 02 Jan 2006 15:04:05 UTC
//	*crawler.Engine#Crawl took 0m 3s 120ms
//	wordcrawl#run took 0m 3s 410ms
//
// Usage:
//
//	p := profiler.New()
//	c := p.Wrap(engine)
//	result, err := c.Crawl(ctx, seeds)
//	_ = p.WriteFile("profile.txt")
package profiler
