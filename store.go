package hibid

import (
	"context"
	"time"
)

// CompanyFilter represents a filter for FindCompanies.
type CompanyFilter struct {
	CompanyID *int    `json:"company_id"`
	City      *string `json:"city"`
	State     *string `json:"state"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// CompanyStore persists harvested company records. The extraction
// pipeline itself is stateless; the store is a sink used by bulk
// harvesting, never a cache consulted during extraction.
type CompanyStore interface {
	// UpsertCompany inserts a record or replaces the stored copy when
	// the company id already exists. Records without a company id are
	// rejected with EINVALID.
	UpsertCompany(ctx context.Context, rec *CompanyRecord) error

	// FindCompanyByID retrieves a stored record.
	// Returns ENOTFOUND if no record exists for the id.
	FindCompanyByID(ctx context.Context, id int) (*CompanyRecord, error)

	// FindCompanies retrieves stored records matching the filter along
	// with the total count of matches before offset/limit.
	FindCompanies(ctx context.Context, filter CompanyFilter) ([]*CompanyRecord, int, error)
}

// HarvestRun records one bulk collection pass over the directory.
type HarvestRun struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Total      int       `json:"total"`
	Saved      int       `json:"saved"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
}

// HarvestRunStore persists harvest run bookkeeping.
type HarvestRunStore interface {
	// CreateHarvestRun records the start of a run and assigns its ID.
	CreateHarvestRun(ctx context.Context, run *HarvestRun) error

	// FinishHarvestRun records the final counters for a run.
	// Returns ENOTFOUND if the run does not exist.
	FinishHarvestRun(ctx context.Context, run *HarvestRun) error
}
