package crawler

import "errors"

// Configuration errors returned by NewEngine and NewHTTPPageSource.
// They are detected before any traversal starts.
var (
	// ErrNilPageSource is returned when no page source is supplied.
	ErrNilPageSource = errors.New("page source must not be nil")

	// ErrInvalidMaxDepth is returned when the depth budget is negative.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be non-negative")

	// ErrInvalidPopularWordCount is returned when the number of popular words is negative.
	ErrInvalidPopularWordCount = errors.New("invalid popular word count: must be non-negative")

	// ErrInvalidParallelism is returned when the parallelism degree is not positive.
	ErrInvalidParallelism = errors.New("invalid parallelism: must be positive")

	// ErrInvalidPattern is returned when an ignore pattern is not a valid regular expression.
	ErrInvalidPattern = errors.New("invalid pattern")
)

// Page access errors. A crawl task treats any of them as "no content, no links".
var (
	// ErrUnsupportedScheme is returned for URLs that are not http, https or file.
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")

	// ErrUnexpectedStatus is returned when the server answers with a non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrUnsupportedContentType is returned when the response is not text or HTML.
	ErrUnsupportedContentType = errors.New("unsupported content type")
)
