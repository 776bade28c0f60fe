package mock

import (
	"context"

	"github.com/auctiondir/hibid"
)

var _ hibid.CompanyStore = (*CompanyStore)(nil)

// CompanyStore is a mock implementation of hibid.CompanyStore.
type CompanyStore struct {
	UpsertCompanyFn   func(ctx context.Context, rec *hibid.CompanyRecord) error
	FindCompanyByIDFn func(ctx context.Context, id int) (*hibid.CompanyRecord, error)
	FindCompaniesFn   func(ctx context.Context, filter hibid.CompanyFilter) ([]*hibid.CompanyRecord, int, error)
}

func (s *CompanyStore) UpsertCompany(ctx context.Context, rec *hibid.CompanyRecord) error {
	return s.UpsertCompanyFn(ctx, rec)
}

func (s *CompanyStore) FindCompanyByID(ctx context.Context, id int) (*hibid.CompanyRecord, error) {
	return s.FindCompanyByIDFn(ctx, id)
}

func (s *CompanyStore) FindCompanies(ctx context.Context, filter hibid.CompanyFilter) ([]*hibid.CompanyRecord, int, error) {
	return s.FindCompaniesFn(ctx, filter)
}

var _ hibid.HarvestRunStore = (*HarvestRunStore)(nil)

// HarvestRunStore is a mock implementation of hibid.HarvestRunStore.
type HarvestRunStore struct {
	CreateHarvestRunFn func(ctx context.Context, run *hibid.HarvestRun) error
	FinishHarvestRunFn func(ctx context.Context, run *hibid.HarvestRun) error
}

func (s *HarvestRunStore) CreateHarvestRun(ctx context.Context, run *hibid.HarvestRun) error {
	return s.CreateHarvestRunFn(ctx, run)
}

func (s *HarvestRunStore) FinishHarvestRun(ctx context.Context, run *hibid.HarvestRun) error {
	return s.FinishHarvestRunFn(ctx, run)
}
