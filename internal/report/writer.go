package report

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/nao1215/wordcrawl/internal/model"
)

// Supported output formats.
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatText     = "text"
)

// ErrUnknownFormat is returned by New for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown report format")

// Writer defines the interface for crawl result output.
//
// Design decision: We use an interface so the CLI selects the format once
// and writes files or stdout through the same call.
type Writer interface {
	// Write outputs the result to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(result *model.CrawlResult) (int, error)
}

// RunInfo describes the run a result came from. The JSON format ignores it;
// the human-readable formats print it above the word ranking.
type RunInfo struct {
	StartPages  []string
	StartedAt   time.Time
	MaxDepth    int
	Parallelism int
}

// New returns the writer for format. info is used by the Markdown and text
// formats only.
func New(format string, output io.Writer, info RunInfo) (Writer, error) {
	switch format {
	case FormatJSON, "":
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output, info), nil
	case FormatText:
		return NewSimpleWriter(output, info), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// sharePercent returns count as a percentage of total, or 0 if total is 0.
func sharePercent(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) * 100 / float64(total)
}
