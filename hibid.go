// Package hibid provides structured extraction of company contact records
// from the HiBid auction directory. It fetches server-rendered pages and
// extracts records from the embedded Apollo transfer state, falling back
// to direct HTML parsing when the state document is absent.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency or concern (e.g., http/, apollo/, sqlite/).
package hibid

import "time"

// Target site constants. The extraction engine only ever talks to the
// HiBid directory; the validator enforces this for caller-supplied URLs.
const (
	BaseURL           = "https://hibid.com"
	CompanySearchURL  = BaseURL + "/companysearch"
	CompanyPathPrefix = "/company/"

	// DefaultPageSize is the number of companies the SSR pre-renders.
	DefaultPageSize = 100

	// MaxPageNumber bounds the page parameter. Only page 1 is actually
	// server-rendered; the bound mirrors the upstream's advertised extent
	// (~3,025 companies at 100 per page).
	MaxPageNumber = 31

	// DefaultRequestTimeout bounds a single fetch.
	DefaultRequestTimeout = 15 * time.Second
)

// AllowedHosts is the exact set of hosts outbound requests may target.
// Matching is exact after case-folding; suffix matches are rejected.
var AllowedHosts = []string{"hibid.com", "www.hibid.com"}
