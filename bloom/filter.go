// Package bloom provides probabilistic tracking of visited profile URLs
// during harvest runs.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// SeenFilter tracks profile URLs already handled in a harvest run. A
// false positive skips a profile that was never fetched; at the
// configured rate that is cheaper than refetching duplicates across a
// directory-sized walk.
type SeenFilter struct {
	f *bloom.BloomFilter
}

// NewSeenFilter creates a filter sized for n expected profile URLs with
// the given false positive rate.
func NewSeenFilter(n uint, fpRate float64) *SeenFilter {
	return &SeenFilter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Seen records the URL and reports whether it had already been recorded.
func (s *SeenFilter) Seen(url string) bool {
	return s.f.TestOrAddString(url)
}

// Count returns the approximate number of URLs recorded.
func (s *SeenFilter) Count() uint {
	return uint(s.f.ApproximatedSize())
}
