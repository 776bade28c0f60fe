// Package http provides the HTTP implementations of hibid.Fetcher and
// hibid.URLValidator used against the live directory.
package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/auctiondir/hibid"
)

// Ensure Fetcher implements hibid.Fetcher at compile time.
var _ hibid.Fetcher = (*Fetcher)(nil)

// browserHeaders is the header set sent with every request. The upstream
// edge blocks requests that don't look like they came from a browser.
var browserHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/120.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9",
	"Connection":      "keep-alive",
}

// Fetcher retrieves server-rendered HTML over plain HTTP GETs.
// It never executes JavaScript and never retries.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to hibid.DefaultRequestTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// NewFetcher creates a new Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout: hibid.DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch issues a single GET against the URL and returns the raw body.
// Network failures, timeouts and non-2xx statuses are reported as
// EUNAVAILABLE with the status attached when one was received.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", hibid.Errorf(hibid.EINVALID, "build request for %s: %v", url, err)
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", hibid.Errorf(hibid.EUNAVAILABLE, "fetch %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", hibid.Errorf(hibid.EUNAVAILABLE, "fetch %s: HTTP %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		// A partial read is discarded, never returned as partial data.
		return "", hibid.Errorf(hibid.EUNAVAILABLE, "read body for %s: %v", url, err)
	}

	return string(body), nil
}
