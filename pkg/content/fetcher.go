package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/html/charset"
)

// StatusError reports an unexpected HTTP status from upstream
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d for URL %s", e.Code, e.URL)
}

// IsTransient reports whether err is the designated retryable upstream failure (HTTP 503)
func IsTransient(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusServiceUnavailable
}

// HTTPFetcher retrieves pages with a fixed browser identity, retrying on 503
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	maxBody   int64
	retry     RetryPolicy
}

// FetcherParams configures HTTPFetcher, zero values fall back to defaults
type FetcherParams struct {
	UserAgent     string
	Timeout       time.Duration // per attempt
	RetryAttempts int           // total attempts, including the first one
	RetryDelay    time.Duration
	MaxBodySize   int64
	Client        *http.Client
}

// NewHTTPFetcher makes a fetcher. Defaults are 3 attempts, 2s between attempts,
// 30s timeout per attempt and 10MB body limit.
func NewHTTPFetcher(p FetcherParams) *HTTPFetcher {
	if p.UserAgent == "" {
		p.UserAgent = DefaultUserAgent
	}
	if p.Timeout == 0 {
		p.Timeout = 30 * time.Second
	}
	if p.RetryAttempts == 0 {
		p.RetryAttempts = 3
	}
	if p.RetryDelay == 0 {
		p.RetryDelay = 2 * time.Second
	}
	if p.MaxBodySize == 0 {
		p.MaxBodySize = 10 << 20
	}
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: p.Timeout}
	}

	return &HTTPFetcher{
		client:    client,
		userAgent: p.UserAgent,
		maxBody:   p.MaxBodySize,
		retry: RetryPolicy{
			Attempts:  p.RetryAttempts,
			Delay:     p.RetryDelay,
			Retryable: IsTransient,
		},
	}
}

// Fetch returns the UTF-8 decoded body of urlStr. Only 503 responses are retried,
// any other failure is returned immediately.
func (f *HTTPFetcher) Fetch(ctx context.Context, urlStr string) ([]byte, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("invalid URL: %q", urlStr)
	}

	var body []byte
	err = f.retry.Do(ctx, "fetch "+urlStr, func() error {
		b, err := f.get(ctx, urlStr)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (f *HTTPFetcher) get(ctx context.Context, urlStr string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	addBrowserHeaders(req, f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch URL %s: %w", urlStr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &StatusError{URL: urlStr, Code: resp.StatusCode}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", urlStr, err)
	}

	// pages in legacy encodings are converted to utf-8, the declared charset wins
	r, err := charset.NewReader(bytes.NewReader(raw), resp.Header.Get("Content-Type"))
	if err != nil {
		return raw, nil //nolint:nilerr // unknown charset, keep bytes as is
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return raw, nil //nolint:nilerr // undecodable content, keep bytes as is
	}
	return decoded, nil
}
