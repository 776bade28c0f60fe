package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/auctiondir/hibid"
	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var (
	_ hibid.CompanyStore    = (*CompanyStore)(nil)
	_ hibid.HarvestRunStore = (*CompanyStore)(nil)
)

// CompanyStore implements hibid.CompanyStore and hibid.HarvestRunStore
// using SQLite.
type CompanyStore struct {
	db *DB
}

// NewCompanyStore creates a new CompanyStore.
func NewCompanyStore(db *DB) *CompanyStore {
	return &CompanyStore{db: db}
}

// snapshotHash computes an xxHash over the normalized record fields and
// returns it as a hex string. Two fetches of unchanged upstream content
// produce the same hash, which makes re-harvest diffs cheap.
func snapshotHash(rec *hibid.CompanyRecord) string {
	h := xxhash.New()
	for _, field := range []string{
		rec.Name, rec.Location, rec.Address, rec.City, rec.State,
		rec.PostalCode, rec.Country, rec.Phone, rec.Email, rec.Website,
		rec.Fax, rec.ProfileURL,
	} {
		_, _ = h.WriteString(field)
		_, _ = h.WriteString("\x00")
	}
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], h.Sum64())
	return hex.EncodeToString(b[:])
}

// UpsertCompany inserts a record or replaces the stored copy for the
// same company id. Records without a company id cannot be keyed and are
// rejected.
func (s *CompanyStore) UpsertCompany(ctx context.Context, rec *hibid.CompanyRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	if rec.CompanyID == nil {
		return hibid.Errorf(hibid.EINVALID, "company id required to store record")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO companies (
			company_id, name, location, address, city, state, postal_code,
			country, phone, email, website, fax, profile_url, snapshot_hash, fetched_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(company_id) DO UPDATE SET
			name = excluded.name,
			location = excluded.location,
			address = excluded.address,
			city = excluded.city,
			state = excluded.state,
			postal_code = excluded.postal_code,
			country = excluded.country,
			phone = excluded.phone,
			email = excluded.email,
			website = excluded.website,
			fax = excluded.fax,
			profile_url = excluded.profile_url,
			snapshot_hash = excluded.snapshot_hash,
			fetched_at = excluded.fetched_at
	`, *rec.CompanyID, rec.Name, rec.Location, rec.Address, rec.City, rec.State,
		rec.PostalCode, rec.Country, rec.Phone, rec.Email, rec.Website, rec.Fax,
		rec.ProfileURL, snapshotHash(rec), time.Now().UTC().Format(time.RFC3339))

	return err
}

// FindCompanyByID retrieves a stored record.
func (s *CompanyStore) FindCompanyByID(ctx context.Context, id int) (*hibid.CompanyRecord, error) {
	var rec hibid.CompanyRecord
	var companyID int

	err := s.db.QueryRowContext(ctx, `
		SELECT company_id, name, location, address, city, state, postal_code,
		       country, phone, email, website, fax, profile_url
		FROM companies
		WHERE company_id = ?
	`, id).Scan(&companyID, &rec.Name, &rec.Location, &rec.Address, &rec.City,
		&rec.State, &rec.PostalCode, &rec.Country, &rec.Phone, &rec.Email,
		&rec.Website, &rec.Fax, &rec.ProfileURL)

	if err == sql.ErrNoRows {
		return nil, hibid.Errorf(hibid.ENOTFOUND, "company %d not found", id)
	}
	if err != nil {
		return nil, err
	}

	rec.CompanyID = &companyID
	return &rec, nil
}

// FindCompanies retrieves stored records matching the filter along with
// the total count of matches before offset/limit.
func (s *CompanyStore) FindCompanies(ctx context.Context, filter hibid.CompanyFilter) ([]*hibid.CompanyRecord, int, error) {
	where, args := []string{"1 = 1"}, []any{}
	if filter.CompanyID != nil {
		where, args = append(where, "company_id = ?"), append(args, *filter.CompanyID)
	}
	if filter.City != nil {
		where, args = append(where, "city = ?"), append(args, *filter.City)
	}
	if filter.State != nil {
		where, args = append(where, "state = ?"), append(args, *filter.State)
	}

	query := `
		SELECT company_id, name, location, address, city, state, postal_code,
		       country, phone, email, website, fax, profile_url,
		       COUNT(*) OVER()
		FROM companies
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY name ASC
		` + formatLimitOffset(filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	records := []*hibid.CompanyRecord{}
	n := 0
	for rows.Next() {
		var rec hibid.CompanyRecord
		var companyID int
		if err := rows.Scan(&companyID, &rec.Name, &rec.Location, &rec.Address,
			&rec.City, &rec.State, &rec.PostalCode, &rec.Country, &rec.Phone,
			&rec.Email, &rec.Website, &rec.Fax, &rec.ProfileURL, &n); err != nil {
			return nil, 0, err
		}
		rec.CompanyID = &companyID
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return records, n, nil
}

// CreateHarvestRun records the start of a harvest run and assigns its ID.
func (s *CompanyStore) CreateHarvestRun(ctx context.Context, run *hibid.HarvestRun) error {
	run.ID = uuid.New().String()
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO harvest_runs (id, started_at, total)
		VALUES (?, ?, ?)
	`, run.ID, run.StartedAt.Format(time.RFC3339), run.Total)

	return err
}

// FinishHarvestRun records the final counters for a harvest run.
func (s *CompanyStore) FinishHarvestRun(ctx context.Context, run *hibid.HarvestRun) error {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE harvest_runs
		SET finished_at = ?, total = ?, saved = ?, failed = ?, skipped = ?
		WHERE id = ?
	`, run.FinishedAt.Format(time.RFC3339), run.Total, run.Saved, run.Failed,
		run.Skipped, run.ID)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return hibid.Errorf(hibid.ENOTFOUND, "harvest run %q not found", run.ID)
	}
	return nil
}

// formatLimitOffset returns a LIMIT/OFFSET clause for the given values.
// A zero limit means no limit.
func formatLimitOffset(limit, offset int) string {
	if limit > 0 && offset > 0 {
		return fmt.Sprintf("LIMIT %d OFFSET %d", limit, offset)
	} else if limit > 0 {
		return fmt.Sprintf("LIMIT %d", limit)
	} else if offset > 0 {
		return fmt.Sprintf("LIMIT -1 OFFSET %d", offset)
	}
	return ""
}
