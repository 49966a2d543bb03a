package crawler

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"strings"

	"golang.org/x/crypto/sha3"
	"golang.org/x/net/html/charset"
)

// PageSource produces the words and outbound links of a page.
// Implementations must be safe for concurrent use.
type PageSource interface {
	Parse(ctx context.Context, pageURL string) (*PageResult, error)
}

// PageResult is what a PageSource returns for one page.
type PageResult struct {
	// WordCounts maps each word on the page to its number of occurrences.
	WordCounts map[string]int

	// Links are absolute URLs found on the page.
	Links []string

	// Title is the page title, if any.
	Title string

	// Hash is the hex SHA3-256 digest of the page body.
	Hash string
}

// PageSourceFunc adapts a function to the PageSource interface.
type PageSourceFunc func(ctx context.Context, pageURL string) (*PageResult, error)

// Parse calls f.
func (f PageSourceFunc) Parse(ctx context.Context, pageURL string) (*PageResult, error) {
	return f(ctx, pageURL)
}

// DefaultMaxBodySize limits how much of a page body is read.
const DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

// DefaultUserAgent is sent with every HTTP request.
const DefaultUserAgent = "wordcrawl/1.0 (+https://github.com/nao1215/wordcrawl)"

// HTTPPageSource fetches pages over HTTP(S) or from the local file system
// and parses them as HTML.
//
// Design decision: We require an external client because:
//  1. Proxy and header configuration is handled by the transport package
//  2. Tests can point the client at an httptest server
//  3. The request timeout lives on the client, not here
type HTTPPageSource struct {
	client       *http.Client
	userAgent    string
	maxBodySize  int64
	ignoredWords *IgnoreFilter
}

// SourceOption configures an HTTPPageSource.
type SourceOption func(*HTTPPageSource)

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) SourceOption {
	return func(s *HTTPPageSource) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithMaxBodySize sets the maximum number of body bytes read per page.
func WithMaxBodySize(size int64) SourceOption {
	return func(s *HTTPPageSource) {
		if size > 0 {
			s.maxBodySize = size
		}
	}
}

// WithIgnoredWords sets the filter for words that are never counted.
func WithIgnoredWords(filter *IgnoreFilter) SourceOption {
	return func(s *HTTPPageSource) {
		s.ignoredWords = filter
	}
}

// NewHTTPPageSource creates a page source using the given client.
// A nil client selects http.DefaultClient.
func NewHTTPPageSource(client *http.Client, opts ...SourceOption) *HTTPPageSource {
	if client == nil {
		client = http.DefaultClient
	}

	s := &HTTPPageSource{
		client:      client,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Parse fetches pageURL and extracts its words and links.
func (s *HTTPPageSource) Parse(ctx context.Context, pageURL string) (*PageResult, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", pageURL, err)
	}

	var (
		body        []byte
		contentType string
		baseURL     = pageURL
	)

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		body, contentType, baseURL, err = s.fetchHTTP(ctx, pageURL)
	case "file":
		body, err = s.readFile(u)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
	if err != nil {
		return nil, err
	}

	// Decode legacy encodings (Shift_JIS, windows-1252, ...) to UTF-8 using
	// the Content-Type header or <meta charset> in the document.
	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", pageURL, err)
	}

	// Relative links resolve against the page that was finally served.
	parser, err := NewParser(baseURL, s.ignoredWords)
	if err != nil {
		return nil, err
	}
	parsed, err := parser.Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}

	return &PageResult{
		WordCounts: parsed.WordCounts,
		Links:      parsed.Links,
		Title:      parsed.Title,
		Hash:       hashBody(body),
	}, nil
}

// fetchHTTP performs the GET request and returns the (size-limited) body,
// the Content-Type header and the URL of the response after redirects.
func (s *HTTPPageSource) fetchHTTP(ctx context.Context, pageURL string) ([]byte, string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", "", err
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.5")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", "", fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !isTextContent(contentType) {
		return nil, "", "", fmt.Errorf("%w: %s", ErrUnsupportedContentType, contentType)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBodySize))
	if err != nil {
		return nil, "", "", err
	}

	finalURL := pageURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return body, contentType, finalURL, nil
}

// readFile reads a file URL from disk.
func (s *HTTPPageSource) readFile(u *url.URL) ([]byte, error) {
	f, err := os.Open(u.Path) //nolint:gosec // Crawling local files is an explicit feature
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(io.LimitReader(f, s.maxBodySize))
}

// isTextContent reports whether a Content-Type can be parsed as HTML.
// A missing header is accepted; the parser will cope with whatever it gets.
func isTextContent(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "text/") || mediaType == "application/xhtml+xml"
}

// hashBody returns the hex SHA3-256 digest of body, or "" for an empty body.
func hashBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	sum := sha3.Sum256(body)
	return hex.EncodeToString(sum[:])
}
