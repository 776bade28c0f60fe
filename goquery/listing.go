// Package goquery provides the HTML fallback parsers used when a page
// carries no usable Apollo state. The fallbacks read the visible markup
// directly: weaker than the state-based strategy (the listing loses the
// structured address split) but resilient to the state blob going away.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/auctiondir/hibid"
)

// listingTableID identifies the visible company search table.
const listingTableID = "companySearch"

// ParseListing extracts company rows from the search results table.
// Each row yields a name, a combined location string and a profile link;
// the location is not split into city/state/postal/country, which is the
// documented capability gap versus the state-based strategy. Rows
// repeating an already-seen profile link are dropped.
func ParseListing(html string) ([]hibid.CompanyRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, hibid.Errorf(hibid.EPARSE, "parse html: %v", err)
	}

	table := doc.Find("table#" + listingTableID)
	if table.Length() == 0 {
		return nil, hibid.Errorf(hibid.ENOTFOUND, "company table not present")
	}

	seen := make(map[string]bool)
	var records []hibid.CompanyRecord

	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return // header or malformed row
		}

		link := cells.Eq(0).Find("a").First()
		if link.Length() == 0 {
			return
		}
		href, _ := link.Attr("href")
		if href == "" || seen[href] {
			return
		}
		seen[href] = true

		profileURL := href
		if strings.HasPrefix(href, "/") {
			profileURL = hibid.BaseURL + href
		}

		records = append(records, hibid.CompanyRecord{
			CompanyID:  hibid.CompanyIDFromPath(href),
			Name:       strings.TrimSpace(link.Text()),
			Location:   strings.TrimSpace(cells.Eq(1).Text()),
			ProfileURL: profileURL,
		})
	})

	if len(records) == 0 {
		return nil, hibid.Errorf(hibid.ENODATA, "company table has no usable rows")
	}
	return records, nil
}
