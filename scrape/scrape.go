// Package scrape orchestrates the extraction pipeline: validate, fetch,
// extract via the Apollo state, and fall back to HTML parsing when the
// state yields nothing. It also provides bulk harvesting over the
// listing's profile URLs.
package scrape

import (
	"context"

	"github.com/auctiondir/hibid"
	"github.com/auctiondir/hibid/apollo"
	"github.com/auctiondir/hibid/goquery"
)

// Ensure Service implements hibid.CompanyService at compile time.
var _ hibid.CompanyService = (*Service)(nil)

// Service implements the two directory operations over a validator and a
// fetcher. Each call is independent and stateless; calls may run in
// parallel with no coordination.
//
// The fallback policy is fixed: the HTML strategy runs only when the
// state-based strategy reports not-found or no-data. A parse error or a
// fetch failure is terminal — a malformed state document signals a shape
// change worth surfacing, not something to mask with a weaker strategy.
type Service struct {
	validator hibid.URLValidator
	fetcher   hibid.Fetcher
}

// NewService creates a Service.
func NewService(validator hibid.URLValidator, fetcher hibid.Fetcher) *Service {
	return &Service{validator: validator, fetcher: fetcher}
}

// fallbackTrigger reports whether an extraction error permits advancing
// to the next strategy. Only absence triggers fallback.
func fallbackTrigger(err error) bool {
	code := hibid.ErrorCode(err)
	return code == hibid.ENOTFOUND || code == hibid.ENODATA
}

// ListCompanies fetches the company search page and extracts the listing.
func (s *Service) ListCompanies(ctx context.Context, page int) (*hibid.ListingResult, error) {
	if page < 1 || page > hibid.MaxPageNumber {
		return nil, hibid.Errorf(hibid.EINVALID, "page must be between 1 and %d", hibid.MaxPageNumber)
	}

	html, err := s.fetcher.Fetch(ctx, hibid.CompanySearchURL)
	if err != nil {
		return nil, err
	}

	state, err := apollo.Locate(html)
	if err == nil {
		records, total, aerr := apollo.Companies(state)
		if aerr == nil {
			return &hibid.ListingResult{
				Page:       page,
				PageSize:   len(records),
				TotalCount: total,
				Source:     hibid.SourceApolloState,
				Companies:  records,
			}, nil
		}
		if !fallbackTrigger(aerr) {
			return nil, aerr
		}
	} else if !fallbackTrigger(err) {
		return nil, err
	}

	records, err := goquery.ParseListing(html)
	if err != nil {
		if fallbackTrigger(err) {
			return nil, hibid.Errorf(hibid.ENODATA, "no company data found on the listing page")
		}
		return nil, err
	}

	return &hibid.ListingResult{
		Page:       page,
		PageSize:   len(records),
		TotalCount: len(records),
		Source:     hibid.SourceHTMLTable,
		Companies:  records,
	}, nil
}

// GetCompanyDetails validates the URL, fetches the profile page and
// extracts contact details. A rejected URL returns EINVALID carrying the
// rejection reason; no fetch is attempted.
func (s *Service) GetCompanyDetails(ctx context.Context, rawURL string) (*hibid.DetailResult, error) {
	verdict, err := s.validator.Validate(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if !verdict.OK {
		return nil, hibid.Errorf(hibid.EINVALID, "url rejected: %s", verdict.Reason)
	}

	html, err := s.fetcher.Fetch(ctx, verdict.URL)
	if err != nil {
		return nil, err
	}

	targetID := hibid.CompanyIDFromURL(verdict.URL)

	state, err := apollo.Locate(html)
	if err == nil {
		rec, derr := apollo.Detail(state, targetID)
		if derr == nil {
			rec.ProfileURL = verdict.URL
			return &hibid.DetailResult{Source: hibid.SourceApolloState, Company: *rec}, nil
		}
		if !fallbackTrigger(derr) {
			return nil, derr
		}
	} else if !fallbackTrigger(err) {
		return nil, err
	}

	rec, err := goquery.ParseDetail(html, verdict.URL)
	if err != nil {
		if fallbackTrigger(err) {
			return nil, hibid.Errorf(hibid.ENODATA, "no company data found on the profile page")
		}
		return nil, err
	}

	return &hibid.DetailResult{Source: hibid.SourceHTMLDetail, Company: *rec}, nil
}
