package craigslist

import (
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jkru006/craigslist-ebay-analyzer/models"
)

// Craigslist has shipped several search-page markups over the years; each
// selector chain below tries the current one first and falls back to the
// older classes.
const (
	resultItemSelector = ".cl-static-search-result, li.result-row"
	titleSelector      = ".titlestring, h3, .title, .result-title"
	priceSelector      = ".priceinfo, .price, .result-price"
	locationSelector   = ".meta, .result-hood"
)

// extractListings pulls listings out of a search results document. When the
// known result-item selectors match nothing it falls back to scanning every
// <li> that looks like it could hold a listing.
func extractListings(doc *goquery.Selection, baseURL, region string) []*models.Listing {
	now := time.Now()
	var listings []*models.Listing

	doc.Find(resultItemSelector).Each(func(i int, item *goquery.Selection) {
		title := strings.TrimSpace(item.Find(titleSelector).First().Text())
		price := strings.TrimSpace(item.Find(priceSelector).First().Text())
		link, _ := item.Find("a").First().Attr("href")
		location := strings.TrimSpace(item.Find(locationSelector).Text())

		if title == "" || price == "" {
			return
		}
		listings = append(listings, &models.Listing{
			Title:     title,
			RawPrice:  price,
			Location:  cleanLocation(location),
			URL:       absoluteURL(baseURL, link),
			Region:    region,
			ScrapedAt: now,
		})
	})

	if len(listings) == 0 {
		listings = extractListingsFallback(doc, baseURL, region, now)
	}

	for i, l := range listings {
		l.ID = listingID(i)
	}
	return listings
}

// extractListingsFallback scans generic list items for anything that carries
// a title, a link and a price. Titles are deduplicated since the loose match
// picks up repeated elements.
func extractListingsFallback(doc *goquery.Selection, baseURL, region string, now time.Time) []*models.Listing {
	var listings []*models.Listing
	seenTitles := make(map[string]struct{})

	doc.Find("li").Each(func(i int, item *goquery.Selection) {
		if item.Find("h3").Length() == 0 && item.Find(".title").Length() == 0 && item.Find("a").Length() == 0 {
			return
		}

		title := strings.TrimSpace(item.Find("h3, .title").Text())
		if title == "" {
			title = strings.TrimSpace(item.Find("a").First().Text())
		}
		price := strings.TrimSpace(item.Find(priceSelector).First().Text())
		link, _ := item.Find("a").First().Attr("href")
		location := strings.TrimSpace(item.Find(".location, .meta").Text())

		if title == "" || price == "" {
			return
		}
		if _, dup := seenTitles[title]; dup {
			return
		}
		seenTitles[title] = struct{}{}

		listings = append(listings, &models.Listing{
			Title:     title,
			RawPrice:  price,
			Location:  cleanLocation(location),
			URL:       absoluteURL(baseURL, link),
			Region:    region,
			ScrapedAt: now,
		})
	})

	return listings
}

func absoluteURL(baseURL, link string) string {
	if link == "" || strings.HasPrefix(link, "http") {
		return link
	}
	return baseURL + link
}

// cleanLocation strips the surrounding parentheses Craigslist puts around
// neighborhood names.
func cleanLocation(location string) string {
	return strings.TrimSpace(strings.Trim(location, "()"))
}

func listingID(index int) string {
	return "listing-" + strconv.Itoa(index)
}
