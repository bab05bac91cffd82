package scrape

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/go-resty/resty/v2"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/statline/statline/internal/platform/logging"
	"github.com/statline/statline/internal/platform/resilience"
)

var (
	// ErrNetwork marks a transport failure that survived the retry
	// budget.
	ErrNetwork = crerr.New("network failure")
	// ErrBlocked marks an anti-scraping rejection. Retrying a block
	// only amplifies suspicion, so it consumes no retry budget.
	ErrBlocked = crerr.New("blocked by host")
)

// FetcherConfig bounds the fetcher's patience.
type FetcherConfig struct {
	Timeout     time.Duration
	MaxRetries  int
	BackoffBase time.Duration
	BackoffMax  time.Duration
	// DelayMin and DelayMax bound the randomized pause before each
	// request to the same host.
	DelayMin time.Duration
	DelayMax time.Duration

	BreakerFailureThreshold int
	BreakerOpenTimeout      time.Duration
}

func DefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		Timeout:                 30 * time.Second,
		MaxRetries:              3,
		BackoffBase:             time.Second,
		BackoffMax:              15 * time.Second,
		DelayMin:                time.Second,
		DelayMax:                3 * time.Second,
		BreakerFailureThreshold: 5,
		BreakerOpenTimeout:      time.Minute,
	}
}

// Fetcher retrieves pages while presenting a command-line client
// signature. Reference sites fingerprint and reject default library
// clients, so the transport mimics curl and requests to one host are
// serialized with a jittered pause between them.
type Fetcher struct {
	client   *resty.Client
	cfg      FetcherConfig
	breakers *resilience.HostBreakers
	logger   *logging.Logger

	mu    sync.Mutex
	hosts map[string]*sync.Mutex
}

func NewFetcher(cfg FetcherConfig, logger *logging.Logger) *Fetcher {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", "curl/7.88.1").
		SetHeader("Accept", "*/*").
		SetHeader("Accept-Language", "en-US,en;q=0.5").
		SetHeader("Accept-Encoding", "gzip, deflate")

	transport := cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetTransport(otelhttp.NewTransport(transport))

	return &Fetcher{
		client:   client,
		cfg:      cfg,
		breakers: resilience.NewHostBreakers(cfg.BreakerFailureThreshold, cfg.BreakerOpenTimeout),
		logger:   logger,
		hosts:    make(map[string]*sync.Mutex),
	}
}

// Fetch retrieves one URL. Transient failures retry with exponential
// backoff; a block response fails immediately and trips the host's
// circuit breaker.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (Page, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Host == "" {
		return Page{}, fmt.Errorf("invalid url %q: %w", pageURL, err)
	}
	host := parsed.Host

	breaker := f.breakers.For(host)
	if err := breaker.Allow(); err != nil {
		return Page{}, crerr.Mark(fmt.Errorf("fetch %s: %w", pageURL, err), ErrBlocked)
	}

	// One in-flight request per host keeps the crawl pattern polite.
	lock := f.hostLock(host)
	lock.Lock()
	defer lock.Unlock()

	var lastErr error
	for attempt := 1; attempt <= f.cfg.MaxRetries; attempt++ {
		if err := sleepCtx(ctx, resilience.PolitenessDelay(f.cfg.DelayMin, f.cfg.DelayMax)); err != nil {
			return Page{}, err
		}

		resp, err := f.client.R().SetContext(ctx).SetDoNotParseResponse(true).Get(pageURL)
		if err != nil {
			if ctx.Err() != nil {
				return Page{}, ctx.Err()
			}
			lastErr = err
			breaker.RecordFailure()
			f.logger.WarnContext(ctx, "fetch attempt failed", "url", pageURL, "attempt", attempt, "error", err)
			if err := sleepCtx(ctx, resilience.Backoff(f.cfg.BackoffBase, f.cfg.BackoffMax, attempt)); err != nil {
				return Page{}, err
			}
			continue
		}

		body, readErr := readBody(resp)
		status := resp.StatusCode()

		switch {
		case isBlockStatus(status):
			breaker.Trip()
			return Page{}, crerr.Mark(fmt.Errorf("fetch %s: status %d", pageURL, status), ErrBlocked)
		case isRetryableStatus(status):
			lastErr = fmt.Errorf("status %d", status)
			breaker.RecordFailure()
			f.logger.WarnContext(ctx, "fetch got retryable status", "url", pageURL, "status", status, "attempt", attempt)
			if err := sleepCtx(ctx, resilience.Backoff(f.cfg.BackoffBase, f.cfg.BackoffMax, attempt)); err != nil {
				return Page{}, err
			}
			continue
		case status >= 400:
			breaker.RecordFailure()
			return Page{}, crerr.Mark(fmt.Errorf("fetch %s: status %d", pageURL, status), ErrNetwork)
		case readErr != nil:
			lastErr = readErr
			breaker.RecordFailure()
			f.logger.WarnContext(ctx, "fetch body read failed", "url", pageURL, "attempt", attempt, "error", readErr)
			if err := sleepCtx(ctx, resilience.Backoff(f.cfg.BackoffBase, f.cfg.BackoffMax, attempt)); err != nil {
				return Page{}, err
			}
			continue
		}

		breaker.RecordSuccess()
		return Page{URL: pageURL, Body: body, RetrievedAt: time.Now()}, nil
	}

	return Page{}, crerr.Mark(fmt.Errorf("fetch %s after %d attempts: %v", pageURL, f.cfg.MaxRetries, lastErr), ErrNetwork)
}

// FetchFile serves a page from disk, used for replaying saved pages.
func (f *Fetcher) FetchFile(path string) (Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Page{}, fmt.Errorf("read page file: %w", err)
	}
	return Page{URL: "file://" + path, Body: string(data), RetrievedAt: time.Now()}, nil
}

func (f *Fetcher) hostLock(host string) *sync.Mutex {
	f.mu.Lock()
	defer f.mu.Unlock()

	lock, ok := f.hosts[host]
	if !ok {
		lock = &sync.Mutex{}
		f.hosts[host] = lock
	}
	return lock
}

func isBlockStatus(status int) bool {
	return status == 403 || status == 429
}

func isRetryableStatus(status int) bool {
	switch status {
	case 408, 500, 502, 503, 504:
		return true
	}
	return false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// readBody drains the raw response and decompresses it when the host
// honored the gzip or deflate encodings we advertised.
func readBody(resp *resty.Response) (string, error) {
	raw := resp.RawBody()
	if raw == nil {
		return "", fmt.Errorf("empty response body")
	}
	defer raw.Close()

	data, err := io.ReadAll(raw)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}

	if len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b {
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err == nil {
			defer gz.Close()
			if out, err := io.ReadAll(gz); err == nil {
				return string(out), nil
			}
		}
	}
	if enc := resp.Header().Get("Content-Encoding"); enc == "deflate" {
		fl := flate.NewReader(bytes.NewReader(data))
		defer fl.Close()
		if out, err := io.ReadAll(fl); err == nil {
			return string(out), nil
		}
	}

	return string(data), nil
}
