// Package slog provides logging decorators for hibid services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/auctiondir/hibid"
)

// Ensure LoggingCompanyService implements hibid.CompanyService.
var _ hibid.CompanyService = (*LoggingCompanyService)(nil)

// LoggingCompanyService wraps a CompanyService with operation logging.
// The wrapped service keeps returning structured errors to the caller;
// nothing is swallowed here.
type LoggingCompanyService struct {
	next   hibid.CompanyService
	logger *slog.Logger
}

// NewLoggingCompanyService creates a new LoggingCompanyService.
func NewLoggingCompanyService(next hibid.CompanyService, logger *slog.Logger) *LoggingCompanyService {
	return &LoggingCompanyService{next: next, logger: logger}
}

// ListCompanies delegates to the wrapped service and logs the operation.
func (s *LoggingCompanyService) ListCompanies(ctx context.Context, page int) (result *hibid.ListingResult, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"page", page,
			"duration", time.Since(begin),
		}
		if result != nil {
			attrs = append(attrs, "source", result.Source, "count", len(result.Companies))
		}
		if err != nil {
			attrs = append(attrs, "code", hibid.ErrorCode(err), "err", err)
		}
		s.logger.Info("list companies", attrs...)
	}(time.Now())
	return s.next.ListCompanies(ctx, page)
}

// GetCompanyDetails delegates to the wrapped service and logs the operation.
func (s *LoggingCompanyService) GetCompanyDetails(ctx context.Context, rawURL string) (result *hibid.DetailResult, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"url", rawURL,
			"duration", time.Since(begin),
		}
		if result != nil {
			attrs = append(attrs, "source", result.Source)
		}
		if err != nil {
			attrs = append(attrs, "code", hibid.ErrorCode(err), "err", err)
		}
		s.logger.Info("get company details", attrs...)
	}(time.Now())
	return s.next.GetCompanyDetails(ctx, rawURL)
}
