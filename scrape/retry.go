package scrape

import (
	"context"
	"time"

	"github.com/auctiondir/hibid"
)

// DetailFunc is the signature for fetching one company's details.
type DetailFunc func(ctx context.Context, url string) (*hibid.DetailResult, error)

// DefaultRetryDelays returns the backoff delays for detail retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// DetailWithRetry fetches a company's details with backoff retries.
// Retries apply only to EUNAVAILABLE failures: a rejected URL, a parse
// fault or an empty page won't change on a second attempt. The fetcher
// itself never retries; this is caller policy layered on top.
func DetailWithRetry(ctx context.Context, url string, fetch DetailFunc, delays []time.Duration) (*hibid.DetailResult, error) {
	maxAttempts := len(delays) + 1 // 1 initial + N retries

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		result, err := fetch(ctx, url)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if hibid.ErrorCode(err) != hibid.EUNAVAILABLE {
			return nil, err
		}
		if attempt >= maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return nil, lastErr
}
