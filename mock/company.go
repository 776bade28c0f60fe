package mock

import (
	"context"

	"github.com/auctiondir/hibid"
)

var _ hibid.CompanyService = (*CompanyService)(nil)

// CompanyService is a mock implementation of hibid.CompanyService.
type CompanyService struct {
	ListCompaniesFn     func(ctx context.Context, page int) (*hibid.ListingResult, error)
	GetCompanyDetailsFn func(ctx context.Context, rawURL string) (*hibid.DetailResult, error)
}

func (s *CompanyService) ListCompanies(ctx context.Context, page int) (*hibid.ListingResult, error) {
	return s.ListCompaniesFn(ctx, page)
}

func (s *CompanyService) GetCompanyDetails(ctx context.Context, rawURL string) (*hibid.DetailResult, error) {
	return s.GetCompanyDetailsFn(ctx, rawURL)
}
