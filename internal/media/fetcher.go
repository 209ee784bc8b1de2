package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/goliatone/go-richtext/internal/logging"
	"github.com/goliatone/go-richtext/pkg/interfaces"
)

// FetcherConfig tunes the retrying HTTP client used for URL sources.
type FetcherConfig struct {
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	UserAgent    string
}

// DefaultFetcherConfig returns conservative retry settings.
func DefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		Timeout:      15 * time.Second,
		RetryMax:     2,
		RetryWaitMin: 200 * time.Millisecond,
		RetryWaitMax: 2 * time.Second,
		UserAgent:    "go-richtext",
	}
}

// HTTPFetcher downloads images over http(s), retrying transient failures.
type HTTPFetcher struct {
	client    *retryablehttp.Client
	userAgent string
}

var _ interfaces.ImageFetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher builds a fetcher. Retry attempts are reported through logger.
func NewHTTPFetcher(cfg FetcherConfig, logger interfaces.Logger) *HTTPFetcher {
	if logger == nil {
		logger = logging.NoOp()
	}
	cl := retryablehttp.NewClient()
	cl.RetryMax = max(cfg.RetryMax, 0)
	if cfg.RetryWaitMin > 0 {
		cl.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		cl.RetryWaitMax = cfg.RetryWaitMax
	}
	if cfg.Timeout > 0 {
		cl.HTTPClient.Timeout = cfg.Timeout
	}
	cl.Logger = logger
	return &HTTPFetcher{client: cl, userAgent: cfg.UserAgent}
}

// Fetch downloads rawURL, reading at most limit bytes. A response above the
// limit fails with ErrImageTooLarge; any other failure wraps ErrImageFetch.
// Partial payloads are discarded on error.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string, limit int64) (*interfaces.FetchedImage, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: unsupported url %q", ErrImageFetch, rawURL)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImageFetch, err)
	}
	req.Header.Set("Accept", "image/*")
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fetchError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrImageFetch, rawURL, resp.StatusCode)
	}
	if limit > 0 && resp.ContentLength > limit {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrImageTooLarge, resp.ContentLength, limit)
	}

	var body io.Reader = resp.Body
	if limit > 0 {
		body = io.LimitReader(resp.Body, limit+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fetchError(ctx, err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: response exceeds %d bytes", ErrImageTooLarge, limit)
	}

	return &interfaces.FetchedImage{
		URL:         rawURL,
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func fetchError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", ErrImageFetch, ctxErr)
	}
	return fmt.Errorf("%w: %w", ErrImageFetch, err)
}
