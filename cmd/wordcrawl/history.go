package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/wordcrawl/internal/config"
	"github.com/nao1215/wordcrawl/internal/database"
	"github.com/nao1215/wordcrawl/internal/model"
	"github.com/nao1215/wordcrawl/internal/report"
)

// defaultHistoryLimit is the number of runs listed by default.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
// This command shows crawl runs stored in the database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show past crawl runs",
		Long: `History lists the crawl runs recorded in the database, newest first.

With a run ID, it shows that run's result and the pages it fetched.
With --url, it lists every stored fetch of a URL so changes in the page
content hash can be spotted.

Examples:
  # List the 20 most recent runs
  wordcrawl history

  # Show run 5 as a Markdown report
  wordcrawl history 5 --format markdown

  # Show how a page changed across runs
  wordcrawl history --url https://example.com/

  # Delete run 5 and its pages
  wordcrawl history --delete 5`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "l", defaultHistoryLimit,
		"Maximum number of runs to list (0: all)")
	cmd.Flags().String("url", "",
		"Show the stored fetches of this URL")
	cmd.Flags().Int64("delete", 0,
		"Delete the run with this ID")
	cmd.Flags().StringP("format", "f", config.ReportFormatText,
		"Format of a single run: json, markdown or text")
	cmd.Flags().BoolP("json", "j", false,
		"Output run lists as JSON")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")

	return cmd
}

// historyOptions holds the parsed flags of the history command.
type historyOptions struct {
	runID  int64
	limit  int
	url    string
	delete int64
	format string
	json   bool
	dbDir  string
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	opts, err := parseHistoryOptions(cmd, args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	// Reading history must not create an empty database.
	db, err := database.Open(opts.dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(out, "No crawl history found.")
		fmt.Fprintln(out, "\nUse 'wordcrawl crawl <url>' to record a run.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()

	switch {
	case opts.delete != 0:
		return deleteRun(ctx, db, opts.delete, out)
	case opts.url != "":
		return showPageHistory(ctx, db, opts.url, opts.json, out)
	case opts.runID != 0:
		return showRun(ctx, db, opts.runID, opts.format, out)
	default:
		return listRuns(ctx, db, opts.limit, opts.json, out)
	}
}

// parseHistoryOptions reads the flags and the optional run ID argument.
func parseHistoryOptions(cmd *cobra.Command, args []string) (*historyOptions, error) {
	opts := &historyOptions{}
	var err error

	if len(args) == 1 {
		opts.runID, err = strconv.ParseInt(args[0], 10, 64)
		if err != nil || opts.runID <= 0 {
			return nil, fmt.Errorf("invalid run ID %q: must be a positive integer", args[0])
		}
	}

	if opts.limit, err = cmd.Flags().GetInt("limit"); err != nil {
		return nil, err
	}
	if opts.url, err = cmd.Flags().GetString("url"); err != nil {
		return nil, err
	}
	if opts.delete, err = cmd.Flags().GetInt64("delete"); err != nil {
		return nil, err
	}
	if opts.format, err = cmd.Flags().GetString("format"); err != nil {
		return nil, err
	}
	if opts.json, err = cmd.Flags().GetBool("json"); err != nil {
		return nil, err
	}
	if opts.dbDir, err = cmd.Flags().GetString("db-dir"); err != nil {
		return nil, err
	}

	if opts.limit < 0 {
		return nil, errors.New("invalid limit: must be non-negative")
	}
	if opts.delete < 0 {
		return nil, errors.New("invalid run ID to delete: must be positive")
	}

	return opts, nil
}

// listRuns prints the most recent runs.
func listRuns(ctx context.Context, db *database.CrawlDB, limit int, asJSON bool, out io.Writer) error {
	runs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if asJSON {
		if runs == nil {
			runs = []model.RunRecord{}
		}
		return writeJSON(out, runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No crawl runs found in the database.")
		return nil
	}

	fmt.Fprintf(out, "Crawl runs (%d):\n\n", len(runs))
	fmt.Fprintf(out, "  %-6s  %-20s  %-8s  %-6s  %-10s  %s\n", "ID", "Started", "Visited", "Failed", "Elapsed", "Top Word")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 76))

	for _, run := range runs {
		top := "-"
		if len(run.WordCounts) > 0 {
			top = fmt.Sprintf("%s (%d)", run.WordCounts[0].Word, run.WordCounts[0].Count)
		}
		status := ""
		if run.Error != "" {
			status = "  [interrupted]"
		}
		fmt.Fprintf(out, "  %-6d  %-20s  %-8d  %-6d  %-10s  %s%s\n",
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.URLsVisited,
			run.PagesFailed,
			run.Elapsed().Round(time.Millisecond).String(),
			top,
			status,
		)
	}
	fmt.Fprintln(out, "\nUse 'wordcrawl history <id>' to see a run in detail.")

	return nil
}

// showRun prints one run in the given report format, followed by its pages.
func showRun(ctx context.Context, db *database.CrawlDB, runID int64, format string, out io.Writer) error {
	run, err := db.GetRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}
	if run == nil {
		return fmt.Errorf("run %d not found (use 'wordcrawl history' to see available IDs)", runID)
	}

	pages, err := db.GetPages(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to get pages: %w", err)
	}

	w, err := report.New(format, out, report.RunInfo{
		StartPages:  run.StartPages,
		StartedAt:   run.StartedAt,
		MaxDepth:    run.MaxDepth,
		Parallelism: run.Parallelism,
	})
	if err != nil {
		return err
	}
	if _, err := w.Write(runResult(run, pages)); err != nil {
		return fmt.Errorf("failed to write run: %w", err)
	}

	// JSON output stays a single document.
	if format == report.FormatJSON || format == "" {
		return nil
	}

	if run.Error != "" {
		fmt.Fprintf(out, "\nThe run ended early: %s\n", run.Error)
	}
	if len(pages) == 0 {
		return nil
	}

	fmt.Fprintf(out, "\nFetched pages (%d):\n\n", len(pages))
	fmt.Fprintf(out, "  %-5s  %-7s  %-6s  %-12s  %s\n", "Depth", "Words", "Links", "Hash", "URL")
	for _, p := range pages {
		fmt.Fprintf(out, "  %-5d  %-7d  %-6d  %-12s  %s\n", p.Depth, p.WordTotal, p.LinkCount, shortHash(p.Hash), p.URL)
	}

	return nil
}

// runResult rebuilds a crawl result from a stored run. The visited URL list
// only holds the pages that were fetched successfully.
func runResult(run *model.RunRecord, pages []model.PageRecord) *model.CrawlResult {
	result := model.NewCrawlResult()
	result.WordCounts = append(result.WordCounts, run.WordCounts...)
	result.URLsVisited = run.URLsVisited
	result.PagesFailed = run.PagesFailed
	result.Elapsed = run.Elapsed()
	for _, p := range pages {
		result.VisitedURLs = append(result.VisitedURLs, p.URL)
	}
	return result
}

// showPageHistory prints every stored fetch of a URL, newest first, and
// marks fetches whose content differs from the previous one.
func showPageHistory(ctx context.Context, db *database.CrawlDB, url string, asJSON bool, out io.Writer) error {
	history, err := db.PageHistory(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to get page history: %w", err)
	}

	if asJSON {
		if history == nil {
			history = []model.PageRecord{}
		}
		return writeJSON(out, history)
	}

	if len(history) == 0 {
		fmt.Fprintf(out, "No stored fetches of %s\n", url)
		return nil
	}

	fmt.Fprintf(out, "Fetches of %s (%d):\n\n", url, len(history))
	fmt.Fprintf(out, "  %-6s  %-20s  %-7s  %-12s  %s\n", "Run", "Crawled", "Words", "Hash", "Content")
	for i, p := range history {
		change := "first fetch"
		if i+1 < len(history) {
			change = "unchanged"
			if p.Hash != history[i+1].Hash {
				change = "changed"
			}
		}
		fmt.Fprintf(out, "  %-6d  %-20s  %-7d  %-12s  %s\n",
			p.RunID,
			p.CrawledAt.Local().Format("2006-01-02 15:04:05"),
			p.WordTotal,
			shortHash(p.Hash),
			change,
		)
	}

	return nil
}

// deleteRun removes a run and its pages.
func deleteRun(ctx context.Context, db *database.CrawlDB, runID int64, out io.Writer) error {
	run, err := db.GetRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}
	if run == nil {
		return fmt.Errorf("run %d not found", runID)
	}
	if err := db.DeleteRun(ctx, runID); err != nil {
		return err
	}
	fmt.Fprintf(out, "Deleted run %d\n", runID)
	return nil
}

// shortHash returns the first 12 characters of a content hash.
func shortHash(hash string) string {
	if hash == "" {
		return "-"
	}
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

// writeJSON writes v as indented JSON.
func writeJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
