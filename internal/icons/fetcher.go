package icons

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/franz/steam-icon-janitor/internal/util"
)

const (
	// UserAgent identifies this application to the CDN
	UserAgent = "sij-SteamIconJanitor/1.0 (https://github.com/franz/steam-icon-janitor)"

	// DefaultTimeout bounds a single candidate request
	DefaultTimeout = 15 * time.Second

	// maxBodySize caps how much of a response is read
	maxBodySize = 8 << 20
)

// Fetcher retrieves the body of a URL. A non-success status is an error.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher is a Fetcher backed by net/http
type HTTPFetcher struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
}

// HTTPFetcherConfig holds HTTP fetcher settings
type HTTPFetcherConfig struct {
	Client    *http.Client
	UserAgent string
	Timeout   time.Duration
}

// NewHTTPFetcher creates a fetcher; nil cfg uses defaults
func NewHTTPFetcher(cfg *HTTPFetcherConfig) *HTTPFetcher {
	if cfg == nil {
		cfg = &HTTPFetcherConfig{}
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = UserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: cfg.Timeout}
	}

	return &HTTPFetcher{
		httpClient: cfg.Client,
		userAgent:  cfg.UserAgent,
		timeout:    cfg.Timeout,
	}
}

// Fetch performs a GET and returns the body of a 2xx response
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", url, err, util.ErrNetwork)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, fmt.Errorf("%s: status %d: %w", url, resp.StatusCode, util.ErrNetwork)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("%s: reading body: %v: %w", url, err, util.ErrNetwork)
	}
	if len(body) > maxBodySize {
		return nil, fmt.Errorf("%s: body exceeds %d bytes: %w", url, maxBodySize, util.ErrValidation)
	}
	return body, nil
}

// Probe sends a HEAD request and reports whether the host answered at all
func (f *HTTPFetcher) Probe(ctx context.Context, url string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s: %v: %w", url, err, util.ErrNetwork)
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}
