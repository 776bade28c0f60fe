package http_test

import (
	"context"
	"errors"
	"net/netip"
	"testing"

	"github.com/auctiondir/hibid"
	hibidhttp "github.com/auctiondir/hibid/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// publicLookup resolves every host to a public address.
func publicLookup(_ context.Context, _ string) ([]netip.Addr, error) {
	return []netip.Addr{netip.MustParseAddr("104.18.7.10")}, nil
}

func TestValidator_Validate(t *testing.T) {
	t.Parallel()

	t.Run("approves and normalizes a full profile URL", func(t *testing.T) {
		t.Parallel()

		v := hibidhttp.NewValidator(hibidhttp.WithLookup(publicLookup))

		verdict, err := v.Validate(context.Background(), "http://WWW.HiBid.com/company/133721/coin-auction?ref=abc#top")
		require.NoError(t, err)
		require.True(t, verdict.OK)
		assert.Equal(t, "https://www.hibid.com/company/133721/coin-auction", verdict.URL)
	})

	t.Run("joins relative profile paths against the base", func(t *testing.T) {
		t.Parallel()

		v := hibidhttp.NewValidator(hibidhttp.WithLookup(publicLookup))

		verdict, err := v.Validate(context.Background(), "/company/133721/coin-auction")
		require.NoError(t, err)
		require.True(t, verdict.OK)
		assert.Equal(t, "https://hibid.com/company/133721/coin-auction", verdict.URL)
	})

	t.Run("rejects non-http schemes", func(t *testing.T) {
		t.Parallel()

		v := hibidhttp.NewValidator(hibidhttp.WithLookup(publicLookup))

		for _, raw := range []string{
			"ftp://hibid.com/company/1/x",
			"file:///etc/passwd",
			"gopher://hibid.com/company/1/x",
		} {
			verdict, err := v.Validate(context.Background(), raw)
			require.NoError(t, err)
			assert.False(t, verdict.OK, raw)
			assert.Equal(t, hibid.ReasonBadScheme, verdict.Reason, raw)
		}
	})

	t.Run("rejects hosts outside the allowlist regardless of path", func(t *testing.T) {
		t.Parallel()

		v := hibidhttp.NewValidator(hibidhttp.WithLookup(publicLookup))

		for _, raw := range []string{
			"https://evil-hibid.com/company/1/x",
			"https://hibid.com.evil.com/company/1/x",
			"https://sub.hibid.com/company/1/x",
			"https://example.com/company/133721/coin-auction",
			"http://169.254.169.254/company/1/x",
		} {
			verdict, err := v.Validate(context.Background(), raw)
			require.NoError(t, err)
			assert.False(t, verdict.OK, raw)
			assert.Equal(t, hibid.ReasonHostNotAllowed, verdict.Reason, raw)
		}
	})

	t.Run("rejects malformed paths", func(t *testing.T) {
		t.Parallel()

		v := hibidhttp.NewValidator(hibidhttp.WithLookup(publicLookup))

		for _, raw := range []string{
			"https://hibid.com/companysearch",
			"https://hibid.com/company/133721",
			"https://hibid.com/company/133721/slug/extra",
			"https://hibid.com/company/../admin/x",
			"https://hibid.com/",
		} {
			verdict, err := v.Validate(context.Background(), raw)
			require.NoError(t, err)
			assert.False(t, verdict.OK, raw)
			assert.Equal(t, hibid.ReasonBadPath, verdict.Reason, raw)
		}
	})

	t.Run("rejects hosts resolving to non-public addresses", func(t *testing.T) {
		t.Parallel()

		for _, addr := range []string{
			"127.0.0.1",       // loopback
			"10.1.2.3",        // private
			"172.16.0.1",      // private
			"192.168.1.1",     // private
			"169.254.169.254", // link-local
			"224.0.0.1",       // multicast
			"0.0.0.0",         // unspecified
			"::1",             // v6 loopback
			"fe80::1",         // v6 link-local
		} {
			v := hibidhttp.NewValidator(hibidhttp.WithLookup(
				func(_ context.Context, _ string) ([]netip.Addr, error) {
					return []netip.Addr{netip.MustParseAddr(addr)}, nil
				}))

			verdict, err := v.Validate(context.Background(), "https://hibid.com/company/1/x")
			require.NoError(t, err)
			assert.False(t, verdict.OK, addr)
			assert.Equal(t, hibid.ReasonPrivateAddress, verdict.Reason, addr)
		}
	})

	t.Run("rejects when any resolved address is non-public", func(t *testing.T) {
		t.Parallel()

		v := hibidhttp.NewValidator(hibidhttp.WithLookup(
			func(_ context.Context, _ string) ([]netip.Addr, error) {
				return []netip.Addr{
					netip.MustParseAddr("104.18.7.10"),
					netip.MustParseAddr("10.0.0.1"),
				}, nil
			}))

		verdict, err := v.Validate(context.Background(), "https://hibid.com/company/1/x")
		require.NoError(t, err)
		assert.False(t, verdict.OK)
		assert.Equal(t, hibid.ReasonPrivateAddress, verdict.Reason)
	})

	t.Run("rejects on resolution failure", func(t *testing.T) {
		t.Parallel()

		v := hibidhttp.NewValidator(hibidhttp.WithLookup(
			func(_ context.Context, _ string) ([]netip.Addr, error) {
				return nil, errors.New("no such host")
			}))

		verdict, err := v.Validate(context.Background(), "https://hibid.com/company/1/x")
		require.NoError(t, err)
		assert.False(t, verdict.OK)
		assert.Equal(t, hibid.ReasonDNSFailure, verdict.Reason)
	})

	t.Run("returns context error on cancellation during lookup", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		v := hibidhttp.NewValidator(hibidhttp.WithLookup(
			func(ctx context.Context, _ string) ([]netip.Addr, error) {
				cancel()
				return nil, ctx.Err()
			}))

		_, err := v.Validate(ctx, "https://hibid.com/company/1/x")
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("rejects mapped v4-in-v6 private addresses", func(t *testing.T) {
		t.Parallel()

		v := hibidhttp.NewValidator(hibidhttp.WithLookup(
			func(_ context.Context, _ string) ([]netip.Addr, error) {
				return []netip.Addr{netip.MustParseAddr("::ffff:192.168.0.1")}, nil
			}))

		verdict, err := v.Validate(context.Background(), "https://hibid.com/company/1/x")
		require.NoError(t, err)
		assert.False(t, verdict.OK)
		assert.Equal(t, hibid.ReasonPrivateAddress, verdict.Reason)
	})
}
