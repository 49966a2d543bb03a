package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

// TestHTTPPageSource tests fetching pages over HTTP and from disk.
func TestHTTPPageSource(t *testing.T) {
	t.Parallel()

	t.Run("fetches and parses HTML", func(t *testing.T) {
		t.Parallel()

		agents := make(chan string, 1)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			agents <- r.Header.Get("User-Agent")
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte(`<html><head><title>Home</title></head><body>
				<p>go go gopher</p><a href="/next#frag">next</a>
			</body></html>`)) //nolint:errcheck // test handler
		}))
		defer server.Close()

		source := NewHTTPPageSource(server.Client(), WithUserAgent("test-agent"))
		page, err := source.Parse(context.Background(), server.URL+"/")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if gotUA := <-agents; gotUA != "test-agent" {
			t.Errorf("expected User-Agent 'test-agent', got %q", gotUA)
		}
		if page.Title != "Home" {
			t.Errorf("expected title 'Home', got %q", page.Title)
		}
		if page.WordCounts["go"] != 2 || page.WordCounts["gopher"] != 1 {
			t.Errorf("unexpected counts: %v", page.WordCounts)
		}
		if !slices.Equal(page.Links, []string{server.URL + "/next"}) {
			t.Errorf("unexpected links: %v", page.Links)
		}
		if len(page.Hash) != 64 {
			t.Errorf("expected 64 hex chars hash, got %q", page.Hash)
		}
	})

	t.Run("non-2xx status", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		}))
		defer server.Close()

		source := NewHTTPPageSource(server.Client())
		_, err := source.Parse(context.Background(), server.URL)
		if !errors.Is(err, ErrUnexpectedStatus) {
			t.Errorf("expected ErrUnexpectedStatus, got %v", err)
		}
	})

	t.Run("binary content type", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte{0x89, 0x50, 0x4e, 0x47}) //nolint:errcheck // test handler
		}))
		defer server.Close()

		source := NewHTTPPageSource(server.Client())
		_, err := source.Parse(context.Background(), server.URL)
		if !errors.Is(err, ErrUnsupportedContentType) {
			t.Errorf("expected ErrUnsupportedContentType, got %v", err)
		}
	})

	t.Run("decodes legacy charset", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=windows-1252")
			// "café" in windows-1252
			w.Write([]byte("<p>caf\xe9 caf\xe9</p>")) //nolint:errcheck // test handler
		}))
		defer server.Close()

		source := NewHTTPPageSource(server.Client())
		page, err := source.Parse(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.WordCounts["café"] != 2 {
			t.Errorf("expected café=2, got %v", page.WordCounts)
		}
	})

	t.Run("truncates large bodies", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			w.Write([]byte("alpha beta gamma delta")) //nolint:errcheck // test handler
		}))
		defer server.Close()

		source := NewHTTPPageSource(server.Client(), WithMaxBodySize(10))
		page, err := source.Parse(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := page.WordCounts["delta"]; ok {
			t.Errorf("expected body to be truncated, got %v", page.WordCounts)
		}
		if page.WordCounts["alpha"] != 1 {
			t.Errorf("expected alpha=1, got %v", page.WordCounts)
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
		}))
		defer server.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		source := NewHTTPPageSource(server.Client())
		if _, err := source.Parse(ctx, server.URL); err == nil {
			t.Error("expected error for cancelled request")
		}
	})

	t.Run("reads file URLs", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "index.html")
		content := `<html><body>local words <a href="other.html">other</a></body></html>`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		source := NewHTTPPageSource(nil)
		page, err := source.Parse(context.Background(), "file://"+filepath.ToSlash(path))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if page.WordCounts["local"] != 1 {
			t.Errorf("expected local=1, got %v", page.WordCounts)
		}
		expectedLink := "file://" + filepath.ToSlash(filepath.Join(dir, "other.html"))
		if !slices.Equal(page.Links, []string{expectedLink}) {
			t.Errorf("expected %s, got %v", expectedLink, page.Links)
		}
	})

	t.Run("remote page cannot reach local files", func(t *testing.T) {
		t.Parallel()

		secret := filepath.Join(t.TempDir(), "secret.txt")
		if err := os.WriteFile(secret, []byte("topsecretpassword"), 0o600); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
		fileURL := "file://" + filepath.ToSlash(secret)

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(`<p>hello</p><a href="` + fileURL + `">x</a>`)) //nolint:errcheck // test handler
		}))
		defer server.Close()

		source := NewHTTPPageSource(server.Client())
		engine, err := NewEngine(source, WithMaxDepth(3), WithParallelism(2), WithTimeout(time.Minute))
		if err != nil {
			t.Fatalf("failed to create engine: %v", err)
		}

		result, err := engine.Crawl(context.Background(), []string{server.URL + "/"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if slices.Contains(result.VisitedURLs, fileURL) {
			t.Errorf("expected %s not to be visited, got %v", fileURL, result.VisitedURLs)
		}
		if result.WordCounts.Map()["topsecretpassword"] != 0 {
			t.Errorf("expected file contents not to be counted, got %v", result.WordCounts)
		}
		if result.URLsVisited != 1 {
			t.Errorf("expected 1 URL visited, got %d", result.URLsVisited)
		}
	})

	t.Run("resolves links against the redirected URL", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/docs/guide/", http.StatusFound)
		})
		mux.HandleFunc("/docs/guide/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(`<a href="intro.html">intro</a>`)) //nolint:errcheck // test handler
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		source := NewHTTPPageSource(server.Client())
		page, err := source.Parse(context.Background(), server.URL+"/old")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		expected := []string{server.URL + "/docs/guide/intro.html"}
		if !slices.Equal(page.Links, expected) {
			t.Errorf("expected %v, got %v", expected, page.Links)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		source := NewHTTPPageSource(nil)
		_, err := source.Parse(context.Background(), "file://"+filepath.ToSlash(filepath.Join(t.TempDir(), "none.html")))
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected os.ErrNotExist, got %v", err)
		}
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		t.Parallel()

		source := NewHTTPPageSource(nil)
		_, err := source.Parse(context.Background(), "ftp://example.com/file")
		if !errors.Is(err, ErrUnsupportedScheme) {
			t.Errorf("expected ErrUnsupportedScheme, got %v", err)
		}
	})
}

func TestIsTextContent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		contentType string
		want        bool
	}{
		{contentType: "", want: true},
		{contentType: "text/html", want: true},
		{contentType: "text/plain; charset=utf-8", want: true},
		{contentType: "application/xhtml+xml", want: true},
		{contentType: "application/json", want: false},
		{contentType: "image/png", want: false},
		{contentType: ";;invalid", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			t.Parallel()

			if got := isTextContent(tt.contentType); got != tt.want {
				t.Errorf("isTextContent(%q) = %v, want %v", tt.contentType, got, tt.want)
			}
		})
	}
}

func TestHashBody(t *testing.T) {
	t.Parallel()

	if hashBody(nil) != "" {
		t.Error("expected empty hash for empty body")
	}
	if hashBody([]byte("a")) == hashBody([]byte("b")) {
		t.Error("expected different hashes for different bodies")
	}
	if hashBody([]byte("a")) != hashBody([]byte("a")) {
		t.Error("expected stable hash")
	}
}
