package scrape

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/statline/statline/internal/platform/logging"
)

func testLogger() *logging.Logger {
	return logging.NewNop()
}

func testFetcherConfig() FetcherConfig {
	cfg := DefaultFetcherConfig()
	cfg.Timeout = 5 * time.Second
	cfg.MaxRetries = 3
	cfg.BackoffBase = time.Millisecond
	cfg.BackoffMax = 5 * time.Millisecond
	cfg.DelayMin = 0
	cfg.DelayMax = 0
	return cfg
}

func TestFetchSendsCurlSignature(t *testing.T) {
	var gotUA, gotEncoding string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotEncoding = r.Header.Get("Accept-Encoding")
		w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer server.Close()

	f := NewFetcher(testFetcherConfig(), testLogger())

	page, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if page.Body != "<html><body>ok</body></html>" {
		t.Fatalf("unexpected body: %q", page.Body)
	}
	if page.URL != server.URL || page.RetrievedAt.IsZero() {
		t.Fatalf("unexpected page metadata: %+v", page)
	}
	if gotUA != "curl/7.88.1" {
		t.Fatalf("unexpected user agent: %q", gotUA)
	}
	if gotEncoding == "" {
		t.Fatal("expected accept-encoding header")
	}
}

func TestFetchRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("recovered"))
	}))
	defer server.Close()

	f := NewFetcher(testFetcherConfig(), testLogger())

	page, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if page.Body != "recovered" {
		t.Fatalf("unexpected body: %q", page.Body)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("unexpected call count: %d", got)
	}
}

func TestFetchExhaustsRetryBudget(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	f := NewFetcher(testFetcherConfig(), testLogger())

	_, err := f.Fetch(context.Background(), server.URL)
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestFetchBlockFailsImmediately(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	f := NewFetcher(testFetcherConfig(), testLogger())

	_, err := f.Fetch(context.Background(), server.URL)
	if !errors.Is(err, ErrBlocked) {
		t.Fatalf("expected blocked error, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("block consumed retry budget: %d calls", got)
	}

	// The breaker is now open for the host; the next fetch is
	// rejected before any request goes out.
	_, err = f.Fetch(context.Background(), server.URL)
	if !errors.Is(err, ErrBlocked) {
		t.Fatalf("expected breaker rejection, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("breaker did not short-circuit: %d calls", got)
	}
}

func TestFetchHonorsCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte("slow"))
	}))
	defer server.Close()

	f := NewFetcher(testFetcherConfig(), testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := f.Fetch(ctx, server.URL)
	if err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestFetchRejectsInvalidURL(t *testing.T) {
	f := NewFetcher(testFetcherConfig(), testLogger())

	if _, err := f.Fetch(context.Background(), "not a url"); err == nil {
		t.Fatal("expected invalid url error")
	}
}

func TestFetchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte("<html></html>"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	f := NewFetcher(testFetcherConfig(), testLogger())

	page, err := f.FetchFile(path)
	if err != nil {
		t.Fatalf("fetch file: %v", err)
	}
	if page.Body != "<html></html>" {
		t.Fatalf("unexpected body: %q", page.Body)
	}

	if _, err := f.FetchFile(filepath.Join(t.TempDir(), "missing.html")); err == nil {
		t.Fatal("expected missing file error")
	}
}

func TestFetchBacksOffOnBodyReadFailure(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			// Advertise more bytes than are sent so the client's
			// body read fails mid-stream.
			w.Header().Set("Content-Length", "1024")
			w.Write([]byte("partial"))
			return
		}
		w.Write([]byte("recovered"))
	}))
	defer server.Close()

	cfg := testFetcherConfig()
	cfg.BackoffBase = 50 * time.Millisecond
	cfg.BackoffMax = 100 * time.Millisecond
	f := NewFetcher(cfg, testLogger())

	start := time.Now()
	page, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if page.Body != "recovered" {
		t.Fatalf("unexpected body: %q", page.Body)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("unexpected call count: %d", got)
	}
	if elapsed := time.Since(start); elapsed < cfg.BackoffBase {
		t.Fatalf("expected backoff wait of at least %v, took %v", cfg.BackoffBase, elapsed)
	}
}
