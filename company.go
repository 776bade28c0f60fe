package hibid

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Source tags identifying which extraction strategy produced a result.
const (
	SourceApolloState = "apollo_state"
	SourceHTMLTable   = "html_table"
	SourceHTMLDetail  = "html_detail"
)

// CompanyRecord represents a single company from the HiBid directory.
//
// CompanyID is a pointer so that "no id found" stays distinguishable
// from "id is 0"; it is nil when the source carried no identifier.
// Detail-level fields (Phone, Email, Website, Fax) are only populated
// for records produced by GetCompanyDetails and default to "".
type CompanyRecord struct {
	CompanyID  *int   `json:"company_id"`
	Name       string `json:"name"`
	Location   string `json:"location"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
	Website    string `json:"website,omitempty"`
	Fax        string `json:"fax,omitempty"`
	ProfileURL string `json:"profile_url"`
}

// Validate returns an error if the record contains invalid fields.
func (r *CompanyRecord) Validate() error {
	if r.Name == "" {
		return Errorf(EINVALID, "company name required")
	}
	if r.CompanyID != nil && *r.CompanyID <= 0 {
		return Errorf(EINVALID, "company id must be positive")
	}
	return nil
}

// ListingResult is the outcome of a ListCompanies call. TotalCount is the
// upstream's reported directory size, carried through as a hint; it may
// far exceed len(Companies) since only one page is server-rendered.
// Companies preserve the order they were encountered in the source.
type ListingResult struct {
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalCount int             `json:"total_count"`
	Source     string          `json:"source"`
	Companies  []CompanyRecord `json:"companies"`
}

// DetailResult is the outcome of a GetCompanyDetails call.
type DetailResult struct {
	Source  string        `json:"source"`
	Company CompanyRecord `json:"company"`
}

// CompanyService extracts company records from the directory.
type CompanyService interface {
	// ListCompanies fetches the company search page and extracts the
	// server-rendered listing. page is 1-based; only page 1 carries
	// server-rendered data, later pages are an upstream limitation.
	ListCompanies(ctx context.Context, page int) (*ListingResult, error)

	// GetCompanyDetails fetches a company profile page and extracts
	// contact details. rawURL must pass URL validation; a rejected URL
	// returns EINVALID without any fetch being attempted.
	GetCompanyDetails(ctx context.Context, rawURL string) (*DetailResult, error)
}

var (
	slugInvalidRE  = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaceRE    = regexp.MustCompile(`\s+`)
	slugCollapseRE = regexp.MustCompile(`-+`)
)

// Slugify converts a company name into the URL slug form used by
// profile paths.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugInvalidRE.ReplaceAllString(slug, "")
	slug = slugSpaceRE.ReplaceAllString(slug, "-")
	slug = slugCollapseRE.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// ProfileURL builds the canonical profile URL for a company.
func ProfileURL(id int, name string) string {
	return BaseURL + CompanyPathPrefix + strconv.Itoa(id) + "/" + Slugify(name)
}

// CompanyIDFromPath extracts the numeric company id from a profile path
// like /company/12345/slug. Returns nil when the path carries no numeric
// id, never a zero-filled value.
func CompanyIDFromPath(path string) *int {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || parts[0] != "company" {
		return nil
	}
	id, err := strconv.Atoi(parts[1])
	if err != nil || id <= 0 {
		return nil
	}
	return &id
}

// CompanyIDFromURL extracts the numeric company id from a full profile URL.
func CompanyIDFromURL(rawURL string) *int {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	return CompanyIDFromPath(u.Path)
}

// Location builds the human-readable composite location string from its
// structured parts, skipping blanks.
func Location(city, state, country string) string {
	var parts []string
	for _, p := range []string{city, state, country} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
