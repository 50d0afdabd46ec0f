package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"htmldocx/config"
)

const (
	defaultFetchTimeout = 10 * time.Second
	defaultMaxSize      = 20 << 20
	maxRedirects        = 10
)

// Fetcher retrieves remote image bytes.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FetcherFunc adapts ordinary function to Fetcher.
type FetcherFunc func(ctx context.Context, url string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

// HTTPFetcher downloads images with net/http. It follows redirects, never
// retries and treats any non 2xx status as failure.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	maxSize   int64
}

var errTooManyRedirects = errors.New("too many redirects")

// NewHTTPFetcher creates fetcher from configuration, cfg may be nil.
func NewHTTPFetcher(cfg *config.FetchConfig) *HTTPFetcher {
	f := &HTTPFetcher{
		client: &http.Client{
			Timeout: defaultFetchTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return errTooManyRedirects
				}
				return nil
			},
		},
		maxSize: defaultMaxSize,
	}
	if cfg != nil {
		if cfg.Timeout > 0 {
			f.client.Timeout = cfg.Timeout
		}
		if cfg.MaxSize > 0 {
			f.maxSize = cfg.MaxSize
		}
		f.userAgent = cfg.UserAgent
	}
	return f
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to create request: %w", err)
	}
	if len(f.userAgent) > 0 {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}
	if resp.ContentLength > f.maxSize {
		return nil, fmt.Errorf("image is too large: %d bytes", resp.ContentLength)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("unable to read response: %w", err)
	}
	if int64(len(data)) > f.maxSize {
		return nil, fmt.Errorf("image is larger than %d bytes", f.maxSize)
	}
	return data, nil
}
