package goquery

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/auctiondir/hibid"
)

// detailContainerClass identifies the contact details container on a
// profile page.
const detailContainerClass = "auctioneer-details"

var (
	// nameSuffixRE strips the marketing suffix profile pages append to
	// the company name in the page heading.
	nameSuffixRE = regexp.MustCompile(`(?i)\s*-\s*Live and Online Auctions.*$`)

	// hostLikeRE accepts anchor text that plausibly names a website.
	// Anything else is dropped rather than risk a garbled match.
	hostLikeRE = regexp.MustCompile(`(?i)^(https?://)?[a-z0-9][a-z0-9.-]*\.[a-z]{2,}(/\S*)?$`)
)

// ParseDetail extracts contact details from a profile page's visible
// markup. Each field matcher is independently optional: a matcher that
// finds nothing yields "", never a partial match. The page URL supplies
// the company id and profile link.
func ParseDetail(html, pageURL string) (*hibid.CompanyRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, hibid.Errorf(hibid.EPARSE, "parse html: %v", err)
	}

	name := strings.TrimSpace(doc.Find("h1").First().Text())
	name = strings.TrimSpace(nameSuffixRE.ReplaceAllString(name, ""))

	container := doc.Find("div." + detailContainerClass).First()
	if container.Length() == 0 && name == "" {
		return nil, hibid.Errorf(hibid.ENOTFOUND, "detail container not present")
	}

	rec := &hibid.CompanyRecord{
		CompanyID:  hibid.CompanyIDFromURL(pageURL),
		Name:       name,
		ProfileURL: pageURL,
	}

	if container.Length() > 0 {
		rec.Phone = anchorText(container, `a[href^="tel:"]`)
		rec.Email = anchorText(container, `a[href^="mailto:"]`)
		rec.Address = mapsAnchorText(container)
		rec.Website = websiteText(container)
	}

	// The fallback cannot split the address, so the full address doubles
	// as the location composite.
	rec.Location = rec.Address

	return rec, nil
}

// anchorText returns the trimmed text of the first anchor matching the
// selector, or "".
func anchorText(container *goquery.Selection, selector string) string {
	return strings.TrimSpace(container.Find(selector).First().Text())
}

// mapsAnchorText extracts the street address from a Google Maps link,
// collapsing its line breaks into single spaces.
func mapsAnchorText(container *goquery.Selection) string {
	var text string
	container.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if !strings.Contains(href, "maps.google") {
			return true
		}
		text = strings.Join(strings.Fields(a.Text()), " ")
		return false
	})
	return text
}

// websiteText finds an anchor naming the company website: not a tel,
// mailto or maps link, with host-like text.
func websiteText(container *goquery.Selection) string {
	var site string
	container.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if href == "" ||
			strings.HasPrefix(href, "tel:") ||
			strings.HasPrefix(href, "mailto:") ||
			strings.Contains(href, "maps.google") {
			return true
		}
		text := strings.TrimSpace(a.Text())
		if hostLikeRE.MatchString(text) {
			site = text
			return false
		}
		return true
	})
	return site
}
