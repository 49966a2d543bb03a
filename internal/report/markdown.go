package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/wordcrawl/internal/model"
)

// maxListedURLs bounds the visited URL list in the Markdown report.
const maxListedURLs = 50

// MarkdownWriter outputs the crawl result as GitHub Flavored Markdown:
// a run summary table, the word ranking as a table and a mermaid pie chart,
// and the visited URLs.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
	info RunInfo
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, info RunInfo) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		info:       info,
	}
}

// Write outputs the result in Markdown format.
func (w *MarkdownWriter) Write(result *model.CrawlResult) (int, error) {
	if result == nil {
		result = model.NewCrawlResult()
	}

	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, result)
	w.writeWords(md, result)
	w.writeVisited(md, result)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the title and the run summary table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *model.CrawlResult) {
	md.H1("Crawl Report")
	md.PlainText("")

	rows := [][]string{
		{"Start Pages", formatStartPages(w.info.StartPages)},
	}
	if !w.info.StartedAt.IsZero() {
		rows = append(rows, []string{"Started", w.info.StartedAt.Format("2006-01-02 15:04:05 MST")})
	}
	if w.info.MaxDepth > 0 {
		rows = append(rows, []string{"Max Depth", strconv.Itoa(w.info.MaxDepth)})
	}
	if w.info.Parallelism > 0 {
		rows = append(rows, []string{"Parallelism", strconv.Itoa(w.info.Parallelism)})
	}
	rows = append(rows,
		[]string{"URLs Visited", strconv.Itoa(result.URLsVisited)},
		[]string{"Pages Failed", strconv.Itoa(result.PagesFailed)},
		[]string{"Elapsed", result.Elapsed.String()},
	)

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeWords writes the ranking table and its pie chart.
func (w *MarkdownWriter) writeWords(md *markdown.Markdown, result *model.CrawlResult) {
	md.H2("Popular Words")
	md.PlainText("")

	if !result.HasWords() {
		md.Note("No words were counted. The start pages may be unreachable, ignored, or outside the depth and time limits.")
		md.PlainText("")
		return
	}

	total := result.WordCounts.Total()
	rows := make([][]string, len(result.WordCounts))
	for i, wc := range result.WordCounts {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			"`" + wc.Word + "`",
			strconv.Itoa(wc.Count),
			fmt.Sprintf("%.1f%%", sharePercent(wc.Count, total)),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Rank", "Word", "Count", "Share"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writePieChart(md, result.WordCounts)
}

// writePieChart writes a mermaid pie chart of the ranked words.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, words model.WordCounts) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Word Distribution"),
		piechart.WithShowData(true),
	)

	for _, wc := range words {
		chart.LabelAndIntValue(wc.Word, uint64(wc.Count)) //nolint:gosec // counts are never negative
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeVisited lists visited URLs, up to maxListedURLs.
func (w *MarkdownWriter) writeVisited(md *markdown.Markdown, result *model.CrawlResult) {
	md.H2("Visited URLs")
	md.PlainText("")

	if len(result.VisitedURLs) == 0 {
		md.PlainText("No URLs were visited.")
		md.PlainText("")
		return
	}

	listed := result.VisitedURLs
	if len(listed) > maxListedURLs {
		listed = listed[:maxListedURLs]
	}
	md.BulletList(listed...)
	md.PlainText("")

	if rest := len(result.VisitedURLs) - len(listed); rest > 0 {
		md.PlainTextf("... and %d more.", rest)
		md.PlainText("")
	}

	if result.PagesFailed > 0 {
		md.Warningf("%d of %d visited URLs could not be fetched or parsed.", result.PagesFailed, result.URLsVisited)
		md.PlainText("")
	}
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [wordcrawl](https://github.com/nao1215/wordcrawl)*")
}

// formatStartPages renders start pages as inline code, comma separated.
func formatStartPages(pages []string) string {
	if len(pages) == 0 {
		return "-"
	}
	quoted := make([]string, len(pages))
	for i, p := range pages {
		quoted[i] = "`" + p + "`"
	}
	return strings.Join(quoted, ", ")
}
