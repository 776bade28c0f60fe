package http

import (
	"context"
	"net"
	"net/netip"
	"net/url"
	"regexp"
	"strings"

	"github.com/auctiondir/hibid"
	"golang.org/x/net/idna"
)

// Ensure Validator implements hibid.URLValidator at compile time.
var _ hibid.URLValidator = (*Validator)(nil)

// profilePathRE is the only path shape the validator approves:
// /company/{id}/{slug}. The id may be alphanumeric for matching purposes;
// id extraction elsewhere only yields numeric ids.
var profilePathRE = regexp.MustCompile(`^/company/[0-9A-Za-z]+/[A-Za-z0-9._-]+/?$`)

// LookupFunc resolves a hostname to its addresses. It exists so tests
// can validate address-range checks without live DNS.
type LookupFunc func(ctx context.Context, host string) ([]netip.Addr, error)

// Validator approves outbound URLs before any request is issued. It
// enforces the exact two-host allowlist, the profile path shape, and
// resolves the host to confirm every address is public-routable. The
// DNS lookup happens on every call so a rebinding hostname is caught
// even if it validated cleanly before.
type Validator struct {
	lookup LookupFunc
	hosts  map[string]bool
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithLookup overrides the DNS lookup function. Used in tests.
func WithLookup(fn LookupFunc) ValidatorOption {
	return func(v *Validator) {
		v.lookup = fn
	}
}

// NewValidator creates a Validator for the fixed host allowlist.
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{
		lookup: func(ctx context.Context, host string) ([]netip.Addr, error) {
			return net.DefaultResolver.LookupNetIP(ctx, "ip", host)
		},
		hosts: make(map[string]bool),
	}
	for _, host := range hibid.AllowedHosts {
		v.hosts[host] = true
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks a candidate URL and returns a verdict. Relative
// profile paths are joined against the fixed base first. Approved URLs
// are re-emitted normalized: https scheme, case-folded host, path only
// (query and fragment stripped).
func (v *Validator) Validate(ctx context.Context, rawURL string) (*hibid.Verdict, error) {
	rawURL = strings.TrimSpace(rawURL)
	if strings.HasPrefix(rawURL, hibid.CompanyPathPrefix) {
		rawURL = hibid.BaseURL + rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return &hibid.Verdict{Reason: hibid.ReasonBadPath}, nil
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &hibid.Verdict{Reason: hibid.ReasonBadScheme}, nil
	}

	host, err := idna.Lookup.ToASCII(strings.ToLower(u.Hostname()))
	if err != nil || !v.hosts[host] {
		return &hibid.Verdict{Reason: hibid.ReasonHostNotAllowed}, nil
	}

	if strings.Contains(u.Path, "..") || !profilePathRE.MatchString(u.Path) {
		return &hibid.Verdict{Reason: hibid.ReasonBadPath}, nil
	}

	addrs, err := v.lookup(ctx, host)
	if err != nil || len(addrs) == 0 {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		// Resolution failure is a rejection, not a retry.
		return &hibid.Verdict{Reason: hibid.ReasonDNSFailure}, nil
	}
	for _, addr := range addrs {
		if !isPublic(addr.Unmap()) {
			return &hibid.Verdict{Reason: hibid.ReasonPrivateAddress}, nil
		}
	}

	return &hibid.Verdict{
		OK:  true,
		URL: "https://" + host + strings.TrimSuffix(u.Path, "/"),
	}, nil
}

// isPublic reports whether the address is public-routable. Loopback,
// link-local, private, multicast and unspecified ranges are all
// off-limits for outbound requests.
func isPublic(addr netip.Addr) bool {
	return !(addr.IsLoopback() ||
		addr.IsPrivate() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsMulticast() ||
		addr.IsUnspecified())
}
