package scrape_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/auctiondir/hibid"
	"github.com/auctiondir/hibid/mock"
	"github.com/auctiondir/hibid/scrape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// statePage embeds a serialized state graph in the SSR page structure.
func statePage(state string) string {
	return fmt.Sprintf(
		`<html><head><script id="hibid-state">{"apollo.state":%s}</script></head><body></body></html>`,
		state)
}

// approveAll is a validator that passes every URL through normalized.
func approveAll() *mock.URLValidator {
	return &mock.URLValidator{
		ValidateFn: func(_ context.Context, rawURL string) (*hibid.Verdict, error) {
			return &hibid.Verdict{OK: true, URL: rawURL}, nil
		},
	}
}

func serveHTML(html string) *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(_ context.Context, _ string) (string, error) {
			return html, nil
		},
	}
}

const listingState = `{
	"Auctioneer:2":{"id":2,"name":"Beta Auctions","city":"Tulsa","state":"OK"},
	"Auctioneer:1":{"id":1,"name":"Alpha Auctions","city":"Wichita","state":"KS"},
	"ROOT_QUERY":{
		"auctioneerSearch({\"pageNumber\":1})":{
			"totalCount":3025,
			"results":[{"__ref":"Auctioneer:1"},{"__ref":"Auctioneer:2"}]
		}
	}
}`

const listingTable = `<table id="companySearch">
	<tr><th>Company</th><th>Location</th></tr>
	<tr><td><a href="/company/1/alpha-auctions">Alpha Auctions</a></td><td>Wichita, KS</td></tr>
	<tr><td><a href="/company/2/beta-auctions">Beta Auctions</a></td><td>Tulsa, OK</td></tr>
	<tr><td><a href="/company/3/gamma-auctions">Gamma Auctions</a></td><td>Boise, ID</td></tr>
</table>`

func TestService_ListCompanies(t *testing.T) {
	t.Parallel()

	t.Run("extracts from the state document when present", func(t *testing.T) {
		t.Parallel()

		svc := scrape.NewService(approveAll(), serveHTML(statePage(listingState)))

		result, err := svc.ListCompanies(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, hibid.SourceApolloState, result.Source)
		assert.Equal(t, 1, result.Page)
		assert.Equal(t, 2, result.PageSize)
		assert.Equal(t, 3025, result.TotalCount)
		require.Len(t, result.Companies, 2)
		assert.Equal(t, "Alpha Auctions", result.Companies[0].Name)
		assert.Equal(t, "Beta Auctions", result.Companies[1].Name)
	})

	t.Run("falls back to the table when the state script is absent", func(t *testing.T) {
		t.Parallel()

		svc := scrape.NewService(approveAll(), serveHTML("<html><body>"+listingTable+"</body></html>"))

		result, err := svc.ListCompanies(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, hibid.SourceHTMLTable, result.Source)
		require.Len(t, result.Companies, 3)
		assert.Equal(t, 3, result.TotalCount)
		assert.Equal(t, "Gamma Auctions", result.Companies[2].Name)
	})

	t.Run("falls back when the state has no company entries", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><script id="hibid-state">{"apollo.state":{"ROOT_QUERY":{}}}</script></head><body>` +
			listingTable + `</body></html>`
		svc := scrape.NewService(approveAll(), serveHTML(html))

		result, err := svc.ListCompanies(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, hibid.SourceHTMLTable, result.Source)
		assert.Len(t, result.Companies, 3)
	})

	t.Run("malformed state is terminal even with a valid table", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><script id="hibid-state">{"apollo.state":{broken</script></head><body>` +
			listingTable + `</body></html>`
		svc := scrape.NewService(approveAll(), serveHTML(html))

		_, err := svc.ListCompanies(context.Background(), 1)
		require.Error(t, err)
		assert.Equal(t, hibid.EPARSE, hibid.ErrorCode(err))
	})

	t.Run("no data when neither strategy finds anything", func(t *testing.T) {
		t.Parallel()

		svc := scrape.NewService(approveAll(), serveHTML("<html><body><p>maintenance</p></body></html>"))

		_, err := svc.ListCompanies(context.Background(), 1)
		require.Error(t, err)
		assert.Equal(t, hibid.ENODATA, hibid.ErrorCode(err))
	})

	t.Run("rejects out-of-range pages without fetching", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				t.Errorf("unexpected fetch of %s", url)
				return "", nil
			},
		}
		svc := scrape.NewService(approveAll(), fetcher)

		for _, page := range []int{0, -1, hibid.MaxPageNumber + 1} {
			_, err := svc.ListCompanies(context.Background(), page)
			require.Error(t, err)
			assert.Equal(t, hibid.EINVALID, hibid.ErrorCode(err))
		}
	})

	t.Run("propagates fetch failures", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, _ string) (string, error) {
				return "", hibid.Errorf(hibid.EUNAVAILABLE, "fetch: HTTP 502")
			},
		}
		svc := scrape.NewService(approveAll(), fetcher)

		_, err := svc.ListCompanies(context.Background(), 1)
		require.Error(t, err)
		assert.Equal(t, hibid.EUNAVAILABLE, hibid.ErrorCode(err))
	})
}

const detailState = `{
	"Auctioneer:133721":{
		"id":133721,"name":"0% Buyers Premium Coin Auction",
		"city":"Wichita","state":"KS",
		"phone":"316-555-0142","email":"info@example.com"
	}
}`

const detailURL = "https://hibid.com/company/133721/0-buyers-premium-coin-auction"

func TestService_GetCompanyDetails(t *testing.T) {
	t.Parallel()

	t.Run("extracts from the state document when present", func(t *testing.T) {
		t.Parallel()

		svc := scrape.NewService(approveAll(), serveHTML(statePage(detailState)))

		result, err := svc.GetCompanyDetails(context.Background(), detailURL)
		require.NoError(t, err)
		assert.Equal(t, hibid.SourceApolloState, result.Source)
		assert.Equal(t, "316-555-0142", result.Company.Phone)
		assert.Equal(t, detailURL, result.Company.ProfileURL)
	})

	t.Run("falls back to html when the state lacks the company", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><script id="hibid-state">{"apollo.state":{"Auctioneer:999":{"id":999,"name":"Unrelated Seller"}}}</script></head><body>
			<h1>0% Buyers Premium Coin Auction - Live and Online Auctions</h1>
			<div class="auctioneer-details"><a href="tel:+13165550142">316-555-0142</a></div>
			</body></html>`
		svc := scrape.NewService(approveAll(), serveHTML(html))

		result, err := svc.GetCompanyDetails(context.Background(), detailURL)
		require.NoError(t, err)
		assert.Equal(t, hibid.SourceHTMLDetail, result.Source)
		assert.Equal(t, "0% Buyers Premium Coin Auction", result.Company.Name)
		assert.Equal(t, "316-555-0142", result.Company.Phone)
	})

	t.Run("rejected url returns validation error without fetching", func(t *testing.T) {
		t.Parallel()

		validator := &mock.URLValidator{
			ValidateFn: func(_ context.Context, _ string) (*hibid.Verdict, error) {
				return &hibid.Verdict{Reason: hibid.ReasonHostNotAllowed}, nil
			},
		}
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				t.Errorf("unexpected fetch of %s", url)
				return "", nil
			},
		}
		svc := scrape.NewService(validator, fetcher)

		_, err := svc.GetCompanyDetails(context.Background(), "http://169.254.169.254/company/1/x")
		require.Error(t, err)
		assert.Equal(t, hibid.EINVALID, hibid.ErrorCode(err))
		assert.Contains(t, hibid.ErrorMessage(err), string(hibid.ReasonHostNotAllowed))
	})

	t.Run("fetches the normalized url the validator approved", func(t *testing.T) {
		t.Parallel()

		validator := &mock.URLValidator{
			ValidateFn: func(_ context.Context, _ string) (*hibid.Verdict, error) {
				return &hibid.Verdict{OK: true, URL: detailURL}, nil
			},
		}
		var fetched string
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				fetched = url
				return statePage(detailState), nil
			},
		}
		svc := scrape.NewService(validator, fetcher)

		_, err := svc.GetCompanyDetails(context.Background(), "/company/133721/0-buyers-premium-coin-auction")
		require.NoError(t, err)
		assert.Equal(t, detailURL, fetched)
	})

	t.Run("malformed state is terminal for details", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><script id="hibid-state">not json</script></head>
			<body><h1>Acme</h1><div class="auctioneer-details"></div></body></html>`
		svc := scrape.NewService(approveAll(), serveHTML(html))

		_, err := svc.GetCompanyDetails(context.Background(), detailURL)
		require.Error(t, err)
		assert.Equal(t, hibid.EPARSE, hibid.ErrorCode(err))
	})

	t.Run("identical calls yield identical records", func(t *testing.T) {
		t.Parallel()

		svc := scrape.NewService(approveAll(), serveHTML(statePage(detailState)))

		first, err := svc.GetCompanyDetails(context.Background(), detailURL)
		require.NoError(t, err)
		second, err := svc.GetCompanyDetails(context.Background(), detailURL)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}
