package mock

import (
	"context"

	"github.com/auctiondir/hibid"
)

var _ hibid.URLValidator = (*URLValidator)(nil)

// URLValidator is a mock implementation of hibid.URLValidator.
type URLValidator struct {
	ValidateFn func(ctx context.Context, rawURL string) (*hibid.Verdict, error)
}

func (v *URLValidator) Validate(ctx context.Context, rawURL string) (*hibid.Verdict, error) {
	return v.ValidateFn(ctx, rawURL)
}
