package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/wordcrawl/internal/model"
)

// reportWidth is the width of the separator lines.
const reportWidth = 60

// SimpleWriter outputs a human-readable text result for terminal display.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter
	info RunInfo
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, info RunInfo) *SimpleWriter {
	return &SimpleWriter{
		baseWriter: newBaseWriter(output),
		info:       info,
	}
}

// Write outputs the result in human-readable format.
func (w *SimpleWriter) Write(result *model.CrawlResult) (int, error) {
	if result == nil {
		result = model.NewCrawlResult()
	}

	var sb strings.Builder

	w.writeHeader(&sb, result)
	w.writeWords(&sb, result)
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

// writeHeader writes the banner and run summary.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, result *model.CrawlResult) {
	sb.WriteString(strings.Repeat("=", reportWidth))
	sb.WriteString("\n")
	sb.WriteString("                    WORDCRAWL RESULT\n")
	sb.WriteString(strings.Repeat("=", reportWidth))
	sb.WriteString("\n\n")

	for _, page := range w.info.StartPages {
		fmt.Fprintf(sb, "Start Page:    %s\n", page)
	}
	if !w.info.StartedAt.IsZero() {
		fmt.Fprintf(sb, "Started:       %s\n", w.info.StartedAt.Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Fprintf(sb, "URLs Visited:  %d\n", result.URLsVisited)
	if result.PagesFailed > 0 {
		fmt.Fprintf(sb, "Pages Failed:  %d\n", result.PagesFailed)
	}
	fmt.Fprintf(sb, "Elapsed:       %s\n", result.Elapsed)
	sb.WriteString("\n")
}

// writeWords writes the word ranking with aligned columns.
func (w *SimpleWriter) writeWords(sb *strings.Builder, result *model.CrawlResult) {
	sb.WriteString(strings.Repeat("-", reportWidth))
	sb.WriteString("\n")
	sb.WriteString("POPULAR WORDS\n")
	sb.WriteString(strings.Repeat("-", reportWidth))
	sb.WriteString("\n\n")

	if !result.HasWords() {
		sb.WriteString("  No words counted\n\n")
		return
	}

	width := 0
	for _, wc := range result.WordCounts {
		width = max(width, len(wc.Word))
	}

	total := result.WordCounts.Total()
	for i, wc := range result.WordCounts {
		fmt.Fprintf(sb, "  %3d. %-*s %8d  %5.1f%%\n", i+1, width, wc.Word, wc.Count, sharePercent(wc.Count, total))
	}
	sb.WriteString("\n")
}

// writeFooter writes the closing line.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", reportWidth))
	sb.WriteString("\n")
}
