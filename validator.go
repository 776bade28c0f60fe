package hibid

import "context"

// ValidationReason is a machine-readable code explaining why a URL was
// rejected.
type ValidationReason string

// Rejection reason codes.
const (
	ReasonBadScheme      ValidationReason = "bad_scheme"
	ReasonHostNotAllowed ValidationReason = "host_not_allowed"
	ReasonBadPath        ValidationReason = "bad_path"
	ReasonDNSFailure     ValidationReason = "dns_failure"
	ReasonPrivateAddress ValidationReason = "private_address"
)

// Verdict is the outcome of validating a candidate URL. When OK is true,
// URL holds the normalized form (https, case-folded host, path only) that
// must be used for the subsequent fetch. When OK is false, Reason explains
// the rejection.
type Verdict struct {
	OK     bool
	URL    string
	Reason ValidationReason
}

// URLValidator approves or rejects a candidate URL before any fetch.
// Validation performs a DNS lookup as a deliberate side effect: a
// hostname that resolves to a non-public address is rejected even if it
// was safe in the past (DNS rebinding defense).
type URLValidator interface {
	// Validate checks a candidate URL, which may be absolute or a
	// profile path to be joined against the fixed base. A rejection is
	// reported through the Verdict; the error return is reserved for
	// context cancellation.
	Validate(ctx context.Context, rawURL string) (*Verdict, error)
}
