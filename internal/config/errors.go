package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoStartPages is returned when neither the config file nor the command
	// line names a page to start from.
	ErrNoStartPages = errors.New("no start pages specified: pass URLs as arguments or set startPages")

	// ErrInvalidMaxDepth is returned when the maximum depth is negative.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be non-negative")

	// ErrInvalidPopularWordCount is returned when the popular word count is negative.
	ErrInvalidPopularWordCount = errors.New("invalid popular word count: must be non-negative")

	// ErrInvalidParallelism is returned when parallelism is negative.
	// Zero selects one fetch slot per CPU.
	ErrInvalidParallelism = errors.New("invalid parallelism: must be non-negative")

	// ErrUnknownImplementation is returned for an implementationOverride other
	// than "parallel" or "sequential".
	ErrUnknownImplementation = errors.New("unknown implementation override: use parallel or sequential")

	// ErrUnknownReportFormat is returned for a report format other than
	// json, markdown or text.
	ErrUnknownReportFormat = errors.New("unknown report format: use json, markdown or text")

	// ErrInvalidRequestTimeout is returned when the per-request timeout is not positive.
	ErrInvalidRequestTimeout = errors.New("invalid request timeout: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 to select the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)
