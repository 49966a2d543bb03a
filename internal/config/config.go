package config

import (
	"path/filepath"
	"runtime"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "wordcrawl"

	// DefaultTimeout is the overall crawl deadline. Pages whose task starts
	// after the deadline are not fetched.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxDepth bounds how many hops away from a start page the crawl goes.
	// A depth of 1 fetches only the start pages.
	DefaultMaxDepth = 10

	// DefaultPopularWordCount is the number of words reported in the result.
	DefaultPopularWordCount = 10

	// DefaultRequestTimeout bounds a single HTTP request.
	DefaultRequestTimeout = 10 * time.Second

	// DefaultUserAgent identifies wordcrawl in HTTP requests.
	DefaultUserAgent = "wordcrawl/1.0 (+https://github.com/nao1215/wordcrawl)"

	// DefaultMaxBodySize limits the response body read per page.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultStatusTTL is how long a published run status stays in Redis.
	DefaultStatusTTL = 24 * time.Hour
)

// Implementation names accepted by Config.ImplementationOverride.
const (
	// ImplementationParallel runs the crawl with Config.Parallelism fetch slots.
	ImplementationParallel = "parallel"

	// ImplementationSequential forces a single fetch slot.
	ImplementationSequential = "sequential"
)

// Report formats accepted by Config.ReportFormat.
const (
	ReportFormatJSON     = "json"
	ReportFormatMarkdown = "markdown"
	ReportFormatText     = "text"
)

// Config holds all configuration options for a crawl run.
// It is populated from the configuration file and CLI flags and passed
// through the application explicitly rather than through global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, OutputConfig). The number of options is manageable,
// and nesting would add complexity without significant benefit.
type Config struct {
	// StartPages are the seed URLs of the crawl.
	StartPages []string

	// Timeout is the crawl deadline measured from the start of the crawl.
	// A negative value is a deadline that has already passed, so nothing is visited.
	Timeout time.Duration

	// MaxDepth is the depth budget given to every start page.
	MaxDepth int

	// PopularWordCount is the number of words kept in the result.
	PopularWordCount int

	// Parallelism is the maximum number of concurrent page fetches.
	// Zero means one per CPU.
	Parallelism int

	// ImplementationOverride selects "parallel" or "sequential".
	// Empty means parallel.
	ImplementationOverride string

	// IgnoredURLs are regular expressions; a URL fully matching one is never visited.
	IgnoredURLs []string

	// IgnoredWords are regular expressions; a word fully matching one is never counted.
	IgnoredWords []string

	// ResultPath is the file the result is written to. Empty means stdout.
	ResultPath string

	// ProfileOutputPath is the file timing data is appended to. Empty means stdout.
	ProfileOutputPath string

	// ReportFormat is one of "json", "markdown" or "text".
	ReportFormat string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, FindConfigFile searches the default locations.
	ConfigFilePath string

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	ProxyAddress string

	// RequestTimeout bounds each HTTP request.
	RequestTimeout time.Duration

	// MaxBodySize is the maximum response body size in bytes to read.
	// Set to 0 to use the default (5MB).
	MaxBodySize int64

	// Headers are added to every HTTP request.
	Headers map[string]string

	// Cookie is sent with every HTTP request.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string

	// DBDir is the directory holding the SQLite run history.
	// Defaults to the XDG data directory (~/.local/share/wordcrawl on Linux).
	DBDir string

	// SaveToDB enables persisting runs and visited pages.
	SaveToDB bool

	// RedisAddr enables run status publication to Redis when set.
	RedisAddr string

	// StatusTTL is the expiry of published run statuses.
	StatusTTL time.Duration
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, depth).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:          DefaultTimeout,
		MaxDepth:         DefaultMaxDepth,
		PopularWordCount: DefaultPopularWordCount,
		ReportFormat:     ReportFormatJSON,
		UserAgent:        DefaultUserAgent,
		RequestTimeout:   DefaultRequestTimeout,
		MaxBodySize:      DefaultMaxBodySize,
		DBDir:            XDGDataDir(),
		SaveToDB:         true,
		StatusTTL:        DefaultStatusTTL,
	}
}

// XDGDataDir returns the XDG data directory for wordcrawl.
// On Linux: ~/.local/share/wordcrawl
// On macOS: ~/Library/Application Support/wordcrawl
// On Windows: %LOCALAPPDATA%\wordcrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for wordcrawl.
// On Linux: ~/.config/wordcrawl
// On macOS: ~/Library/Application Support/wordcrawl
// On Windows: %APPDATA%\wordcrawl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// EffectiveParallelism returns the number of fetch slots the crawl should use.
// A sequential override wins over Parallelism; zero Parallelism means one
// slot per CPU.
func (c *Config) EffectiveParallelism() int {
	if c.ImplementationOverride == ImplementationSequential {
		return 1
	}
	if c.Parallelism > 0 {
		return c.Parallelism
	}
	return runtime.NumCPU()
}

// Validate checks if the configuration is valid.
// It returns the first problem found as a sentinel error.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after the file and CLI flags are merged, before any
// page is fetched.
func (c *Config) Validate() error {
	if len(c.StartPages) == 0 {
		return ErrNoStartPages
	}

	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}

	if c.PopularWordCount < 0 {
		return ErrInvalidPopularWordCount
	}

	if c.Parallelism < 0 {
		return ErrInvalidParallelism
	}

	switch c.ImplementationOverride {
	case "", ImplementationParallel, ImplementationSequential:
	default:
		return ErrUnknownImplementation
	}

	switch c.ReportFormat {
	case ReportFormatJSON, ReportFormatMarkdown, ReportFormatText:
	default:
		return ErrUnknownReportFormat
	}

	if c.RequestTimeout <= 0 {
		return ErrInvalidRequestTimeout
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}
