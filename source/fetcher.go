package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 15 * time.Second

	// DefaultUserAgent mimics a desktop browser; several sources reject bare clients.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// DefaultAcceptLanguage prefers Korean content.
	DefaultAcceptLanguage = "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7"

	maxBodySize = 10 << 20
)

// Fetcher performs bounded HTTP GETs with configured headers.
// It is safe for concurrent use.
type Fetcher struct {
	client  *http.Client
	headers http.Header
	timeout time.Duration
	logger  *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient replaces the underlying client.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return WithHeader("User-Agent", ua)
}

// WithAcceptLanguage sets the Accept-Language header.
func WithAcceptLanguage(lang string) FetcherOption {
	return WithHeader("Accept-Language", lang)
}

// WithHeader sets an arbitrary request header. Empty values are ignored.
func WithHeader(key, value string) FetcherOption {
	return func(f *Fetcher) {
		if value != "" {
			f.headers.Set(key, value)
		}
	}
}

// WithFetcherLogger sets the logger.
func WithFetcherLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger.With("component", "fetcher")
		}
	}
}

// NewFetcher creates a fetcher with browser-like default headers.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:  &http.Client{},
		headers: make(http.Header),
		timeout: DefaultTimeout,
		logger:  slog.Default().With("component", "fetcher"),
	}
	f.headers.Set("User-Agent", DefaultUserAgent)
	f.headers.Set("Accept-Language", DefaultAcceptLanguage)
	f.headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,application/json;q=0.8,*/*;q=0.7")
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Get fetches url and returns the response body.
// Failures map onto ErrSourceUnavailable and ErrEmptyPayload.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	req.Header = f.headers.Clone()

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrSourceUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", ErrSourceUnavailable, err)
	}
	if len(body) == 0 {
		return nil, ErrEmptyPayload
	}

	f.logger.Debug("fetched", "url", url, "bytes", len(body), "elapsed", time.Since(start))
	return body, nil
}
