// Package transport builds the HTTP client used to fetch pages.
//
// The client applies the per-request timeout, follows a bounded number of
// redirects, keeps cookies across requests of one run, and injects the
// configured headers and cookie into every request. When a proxy address is
// set, all connections are routed through that SOCKS5 proxy.
//
// Usage:
//
//	client, err := transport.NewClient(
//	    transport.WithTimeout(10*time.Second),
//	    transport.WithProxy("127.0.0.1:1080"),
//	    transport.WithHeaders(map[string]string{"Accept-Language": "en"}),
//	)
//	if err != nil {
//	    return err
//	}
//	if status := client.CheckProxy(ctx); status != transport.ProxyStatusOK {
//	    return status.Error()
//	}
//	httpClient := client.HTTPClient()
package transport
