package hibid

import "context"

// Fetcher retrieves server-rendered HTML from approved URLs.
type Fetcher interface {
	// Fetch issues a single GET against the URL and returns the raw
	// response body. The context controls timeout and cancellation; an
	// exceeded deadline or a non-2xx status is reported as EUNAVAILABLE
	// with the status attached to the message. Fetch never retries;
	// retry policy belongs to callers.
	Fetch(ctx context.Context, url string) (html string, err error)
}
