package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strconv"
	"time"

	"golang.org/x/net/proxy"
)

// DefaultTimeout is the per-request timeout used when none is configured.
const DefaultTimeout = 10 * time.Second

// maxRedirects bounds how many redirects one request follows.
const maxRedirects = 10

// checkProxyTimeout bounds the SOCKS5 handshake performed by CheckProxy.
const checkProxyTimeout = 2 * time.Second

// SOCKS5 greeting constants.
const (
	socks5Version  = 0x05
	socks5AuthNone = 0x00
)

// Client creates HTTP clients for page fetching.
//
// Design decision: We don't connect to the proxy in the constructor because:
//  1. It separates object creation from network operations
//  2. Tests can build clients without a running proxy
//  3. CheckProxy gives the caller an explicit, reportable connectivity check
type Client struct {
	// proxyAddress is the SOCKS5 proxy in "host:port" format, or "".
	proxyAddress string

	// dialer routes connections through the proxy. Nil means direct.
	dialer proxy.ContextDialer

	timeout time.Duration
	cookie  string
	headers map[string]string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithProxy routes all connections through the SOCKS5 proxy at address.
// An empty address means direct connections.
func WithProxy(address string) Option {
	return func(c *Client) {
		c.proxyAddress = address
	}
}

// WithCookie sends the raw cookie string (e.g. "session=abc") with every request.
func WithCookie(cookie string) Option {
	return func(c *Client) {
		c.cookie = cookie
	}
}

// WithHeaders sets headers that are added to every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		c.headers = headers
	}
}

// NewClient creates a Client. It validates the proxy address format but
// does not contact the proxy; call CheckProxy for that.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(c)
	}

	if c.proxyAddress == "" {
		return c, nil
	}

	if !isValidProxyAddress(c.proxyAddress) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProxyAddress, c.proxyAddress)
	}

	// nil auth: the proxies we target accept unauthenticated clients.
	dialer, err := proxy.SOCKS5("tcp", c.proxyAddress, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}
	contextDialer, ok := dialer.(proxy.ContextDialer)
	if !ok {
		return nil, fmt.Errorf("SOCKS5 dialer for %s does not support contexts", c.proxyAddress)
	}
	c.dialer = contextDialer

	return c, nil
}

// isValidProxyAddress reports whether address is "host:port" with a
// non-empty host and a port between 1 and 65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}

// ProxyAddress returns the configured proxy address, or "" for direct connections.
func (c *Client) ProxyAddress() string {
	return c.proxyAddress
}

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// HTTPClient returns a new HTTP client with the configured timeout, proxy,
// headers and cookie. Every call returns a client with its own cookie jar.
func (c *Client) HTTPClient() *http.Client {
	base := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert // DefaultTransport is always *http.Transport
	if c.dialer != nil {
		base.Proxy = nil
		base.DialContext = c.dialer.DialContext
	}

	var rt http.RoundTripper = base
	if c.cookie != "" || len(c.headers) > 0 {
		rt = &headerInjectingTransport{
			base:    base,
			cookie:  c.cookie,
			headers: c.headers,
		}
	}

	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options

	return &http.Client{
		Transport: rt,
		Timeout:   c.timeout,
		Jar:       jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// CheckProxy verifies that the configured proxy speaks SOCKS5 and accepts
// unauthenticated clients. With no proxy configured it returns ProxyStatusOK.
func (c *Client) CheckProxy(ctx context.Context) ProxyStatus {
	if c.proxyAddress == "" {
		return ProxyStatusOK
	}

	ctx, cancel := context.WithTimeout(ctx, checkProxyTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.proxyAddress)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ProxyStatusTimeout
		}
		return ProxyStatusCannotConnect
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(checkProxyTimeout)); err != nil {
		return ProxyStatusCannotConnect
	}

	// Greeting: version, one method, "no authentication".
	if _, err := conn.Write([]byte{socks5Version, 0x01, socks5AuthNone}); err != nil {
		return ProxyStatusCannotConnect
	}

	reply := make([]byte, 2)
	if _, err := io.ReadFull(conn, reply); err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return ProxyStatusTimeout
		}
		return ProxyStatusWrongType
	}

	if reply[0] != socks5Version {
		return ProxyStatusWrongType
	}
	// 0xFF (no acceptable method) means the proxy wants credentials.
	if reply[1] != socks5AuthNone {
		return ProxyStatusWrongType
	}

	return ProxyStatusOK
}

// headerInjectingTransport wraps an http.RoundTripper to inject
// custom headers and cookies into every request, redirects included.
type headerInjectingTransport struct {
	base    http.RoundTripper
	cookie  string
	headers map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	if t.cookie != "" {
		if existing := clone.Header.Get("Cookie"); existing != "" {
			clone.Header.Set("Cookie", existing+"; "+t.cookie)
		} else {
			clone.Header.Set("Cookie", t.cookie)
		}
	}

	for key, value := range t.headers {
		clone.Header.Set(key, value)
	}

	return t.base.RoundTrip(clone)
}
