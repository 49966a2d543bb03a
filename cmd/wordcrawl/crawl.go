package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/wordcrawl/internal/config"
	"github.com/nao1215/wordcrawl/internal/crawler"
	"github.com/nao1215/wordcrawl/internal/database"
	wclog "github.com/nao1215/wordcrawl/internal/log"
	"github.com/nao1215/wordcrawl/internal/model"
	"github.com/nao1215/wordcrawl/internal/profiler"
	"github.com/nao1215/wordcrawl/internal/report"
	"github.com/nao1215/wordcrawl/internal/store"
	"github.com/nao1215/wordcrawl/internal/transport"
)

// runProfileKey is the profiler key of a whole crawl command run.
const runProfileKey = "wordcrawl#run"

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [start-url...]",
		Short: "Crawl web pages and count popular words",
		Long: `Crawl visits the start pages and the pages they link to, up to a maximum
depth and until the timeout expires, and counts the words on every page.

The result lists the most popular words and the number of URLs visited.
Timing data is printed after the result (or appended to --profile-output).

Settings are read from a configuration file (.wordcrawl.yaml in the current
directory, config.yaml in the XDG config directory, or --config). Flags
override file values; start URLs given as arguments replace the file's list.

Examples:
  # Crawl a site two links deep
  wordcrawl crawl --depth 2 https://example.com/

  # Use a configuration file and write the result to a file
  wordcrawl crawl -c crawl.yaml -o result.json

  # Markdown report with a word chart
  wordcrawl crawl --format markdown https://example.com/

  # Crawl through a SOCKS5 proxy, one page at a time
  wordcrawl crawl --proxy 127.0.0.1:9050 --sequential https://example.com/`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .wordcrawl.yaml in current directory or XDG config dir)")

	// Crawl behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Crawl deadline measured from the start of the crawl")
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum number of link hops from a start page")
	cmd.Flags().IntP("popular", "n", config.DefaultPopularWordCount,
		"Number of popular words in the result")
	cmd.Flags().IntP("parallelism", "p", 0,
		"Maximum concurrent page fetches (0: one per CPU)")
	cmd.Flags().Bool("sequential", false,
		"Fetch one page at a time")
	cmd.Flags().StringSlice("ignore-url", nil,
		"Regular expression of URLs never visited (repeatable)")
	cmd.Flags().StringSlice("ignore-word", nil,
		"Regular expression of words never counted (repeatable)")

	// HTTP flags
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address (e.g., 127.0.0.1:9050)")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().Duration("request-timeout", config.DefaultRequestTimeout,
		"Timeout of a single HTTP request")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum number of body bytes read per page")
	cmd.Flags().StringToString("header", nil,
		"HTTP header sent with every request (name=value, repeatable)")
	cmd.Flags().String("cookie", "",
		"Cookie sent with every request")

	// Output flags
	cmd.Flags().StringP("output", "o", "",
		"Write the result to this file instead of stdout")
	cmd.Flags().String("profile-output", "",
		"Append timing data to this file instead of stdout")
	cmd.Flags().StringP("format", "f", config.ReportFormatJSON,
		"Result format: json, markdown or text")

	// History and status flags
	cmd.Flags().Bool("no-db", false,
		"Do not record the run in the history database")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")
	cmd.Flags().String("redis-addr", "",
		"Publish run status to this Redis server (host:port)")
	cmd.Flags().Duration("status-ttl", config.DefaultStatusTTL,
		"Expiry of the published run status")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := wclog.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCrawl(ctx, cfg, logger, cmd.OutOrStdout())
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from the configuration file and cobra flags.
// File values override defaults, and flags that were set explicitly
// override file values.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicitly given file must exist; the default locations are optional.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.ApplyTo(cfg)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("depth") {
		if cfg.MaxDepth, err = flags.GetInt("depth"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("popular") {
		if cfg.PopularWordCount, err = flags.GetInt("popular"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("parallelism") {
		if cfg.Parallelism, err = flags.GetInt("parallelism"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("sequential") {
		sequential, err := flags.GetBool("sequential")
		if err != nil {
			return nil, err
		}
		cfg.ImplementationOverride = config.ImplementationParallel
		if sequential {
			cfg.ImplementationOverride = config.ImplementationSequential
		}
	}
	if flags.Changed("ignore-url") {
		if cfg.IgnoredURLs, err = flags.GetStringSlice("ignore-url"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("ignore-word") {
		if cfg.IgnoredWords, err = flags.GetStringSlice("ignore-word"); err != nil {
			return nil, err
		}
	}

	if flags.Changed("user-agent") {
		if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("cookie") {
		if cfg.Cookie, err = flags.GetString("cookie"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("header") {
		headers, err := flags.GetStringToString("header")
		if err != nil {
			return nil, err
		}
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			cfg.Headers[k] = v
		}
	}
	if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = flags.GetDuration("request-timeout"); err != nil {
		return nil, err
	}
	if cfg.MaxBodySize, err = flags.GetInt64("max-body-size"); err != nil {
		return nil, err
	}

	if flags.Changed("output") {
		if cfg.ResultPath, err = flags.GetString("output"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("profile-output") {
		if cfg.ProfileOutputPath, err = flags.GetString("profile-output"); err != nil {
			return nil, err
		}
	}
	if cfg.ReportFormat, err = flags.GetString("format"); err != nil {
		return nil, err
	}

	noDB, err := flags.GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB
	if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}
	if cfg.RedisAddr, err = flags.GetString("redis-addr"); err != nil {
		return nil, err
	}
	if cfg.StatusTTL, err = flags.GetDuration("status-ttl"); err != nil {
		return nil, err
	}

	if len(args) > 0 {
		cfg.StartPages = append([]string(nil), args...)
	}
	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// runCrawl executes one crawl and writes its result, profile, history and
// status. A crawl interrupted by ctx still writes its partial result before
// the interruption is returned.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout io.Writer) error {
	client, err := newTransportClient(ctx, cfg, logger)
	if err != nil {
		return err
	}

	ignoredWords, err := crawler.NewIgnoreFilter(cfg.IgnoredWords)
	if err != nil {
		return fmt.Errorf("invalid ignored word: %w", err)
	}

	source := crawler.NewHTTPPageSource(client.HTTPClient(),
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
		crawler.WithIgnoredWords(ignoredWords),
	)

	pages := &pageCollector{now: time.Now}
	engine, err := crawler.NewEngine(source,
		crawler.WithTimeout(cfg.Timeout),
		crawler.WithMaxDepth(cfg.MaxDepth),
		crawler.WithPopularWordCount(cfg.PopularWordCount),
		crawler.WithParallelism(cfg.EffectiveParallelism()),
		crawler.WithIgnoredURLs(cfg.IgnoredURLs),
		crawler.WithVisitHook(pages.add),
		crawler.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create crawler: %w", err)
	}

	prof := profiler.New()
	statusStore := openStatusStore(ctx, cfg, logger)
	defer closeStatusStore(statusStore, logger)

	tracker := store.NewTracker(statusStore, cfg.StartPages)
	if err := tracker.Start(ctx); err != nil {
		logger.Warn("failed to publish run status", "runID", tracker.RunID(), "error", err)
	}

	startedAt := time.Now()
	var result *model.CrawlResult
	var crawlErr error
	runErr := prof.Time(runProfileKey, func() error {
		result, crawlErr = prof.Wrap(engine).Crawl(ctx, cfg.StartPages)
		return writeResult(cfg, result, startedAt, engine.Parallelism(), stdout)
	})

	// The status and history are written even after an interruption, so they
	// must not inherit a cancelled ctx.
	bg := context.WithoutCancel(ctx)
	if crawlErr != nil || runErr != nil {
		if err := tracker.Fail(bg, result, errors.Join(crawlErr, runErr)); err != nil {
			logger.Warn("failed to publish run status", "runID", tracker.RunID(), "error", err)
		}
	} else if err := tracker.Complete(bg, result); err != nil {
		logger.Warn("failed to publish run status", "runID", tracker.RunID(), "error", err)
	}

	if err := writeProfile(cfg, prof, stdout); err != nil {
		logger.Error("failed to write profile data", "error", err)
	}

	if cfg.SaveToDB {
		run := model.NewRunRecord(cfg.StartPages, startedAt, result)
		run.MaxDepth = cfg.MaxDepth
		run.Parallelism = engine.Parallelism()
		run.Timeout = cfg.Timeout
		if crawlErr != nil {
			run.Error = crawlErr.Error()
		}
		if err := saveRun(bg, cfg.DBDir, run, pages.records(), logger); err != nil {
			logger.Error("failed to save run history", "error", err)
		}
	}

	if runErr != nil {
		return runErr
	}
	if crawlErr != nil {
		return fmt.Errorf("crawl interrupted: %w", crawlErr)
	}
	return nil
}

// newTransportClient builds the HTTP transport and verifies the proxy.
func newTransportClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*transport.Client, error) {
	opts := []transport.Option{
		transport.WithTimeout(cfg.RequestTimeout),
		transport.WithCookie(cfg.Cookie),
		transport.WithHeaders(cfg.Headers),
	}
	if cfg.ProxyAddress != "" {
		opts = append(opts, transport.WithProxy(cfg.ProxyAddress))
	}

	client, err := transport.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	if cfg.ProxyAddress != "" {
		if status := client.CheckProxy(ctx); status != transport.ProxyStatusOK {
			return nil, fmt.Errorf("proxy check failed: %w (make sure a SOCKS5 proxy is running at %s)",
				status, cfg.ProxyAddress)
		}
		logger.Info("proxy connection verified", "address", cfg.ProxyAddress)
	}

	return client, nil
}

// openStatusStore returns a Redis status store when an address is
// configured and reachable, and a no-op store otherwise.
func openStatusStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) store.StatusStore {
	if cfg.RedisAddr == "" {
		return store.NopStatusStore{}
	}

	s := store.NewRedisStatusStore(cfg.RedisAddr, store.DefaultKeyPrefix, cfg.StatusTTL)
	if err := s.Ping(ctx); err != nil {
		logger.Warn("run status will not be published", "addr", cfg.RedisAddr, "error", err)
		_ = s.Close()
		return store.NopStatusStore{}
	}
	return s
}

// closeStatusStore releases the status store connection.
func closeStatusStore(s store.StatusStore, logger *slog.Logger) {
	if err := s.Close(); err != nil {
		logger.Warn("failed to close status store", "error", err)
	}
}

// writeResult writes the result in the configured format to the result
// file or stdout.
func writeResult(cfg *config.Config, result *model.CrawlResult, startedAt time.Time, parallelism int, stdout io.Writer) error {
	output := stdout
	if cfg.ResultPath != "" {
		if err := ensureParentDir(cfg.ResultPath); err != nil {
			return err
		}
		f, err := os.OpenFile(cfg.ResultPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	w, err := report.New(cfg.ReportFormat, output, report.RunInfo{
		StartPages:  cfg.StartPages,
		StartedAt:   startedAt,
		MaxDepth:    cfg.MaxDepth,
		Parallelism: parallelism,
	})
	if err != nil {
		return err
	}

	if _, err := w.Write(result); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}

// writeProfile appends the timing data to the profile file, or writes it
// to stdout.
func writeProfile(cfg *config.Config, prof *profiler.Profiler, stdout io.Writer) error {
	if cfg.ProfileOutputPath != "" {
		if err := ensureParentDir(cfg.ProfileOutputPath); err != nil {
			return err
		}
		return prof.WriteFile(cfg.ProfileOutputPath)
	}
	return prof.WriteData(stdout)
}

// saveRun stores the run and its pages in the history database.
func saveRun(ctx context.Context, dbDir string, run *model.RunRecord, pages []model.PageRecord, logger *slog.Logger) error {
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	runID, err := db.SaveRun(ctx, run)
	if err != nil {
		return err
	}
	if err := db.SavePages(ctx, runID, pages); err != nil {
		return err
	}

	logger.Info("run saved to database", "runID", runID, "pages", len(pages), "path", db.Path())
	return nil
}

// pageCollector gathers page visits reported by the crawler. The crawler
// calls add from many goroutines.
type pageCollector struct {
	mu    sync.Mutex
	pages []model.PageRecord
	now   func() time.Time
}

// add records a visit.
func (c *pageCollector) add(v crawler.PageVisit) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages = append(c.pages, model.PageRecord{
		URL:       v.URL,
		Depth:     v.Depth,
		Title:     v.Title,
		Hash:      v.Hash,
		WordTotal: v.WordTotal,
		LinkCount: v.LinkCount,
		CrawledAt: c.now(),
	})
}

// records returns a copy of the collected pages.
func (c *pageCollector) records() []model.PageRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.PageRecord(nil), c.pages...)
}
