package craigslist

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/jkru006/craigslist-ebay-analyzer/models"
)

var (
	mapLatRegexp = regexp.MustCompile(`lat:\s*([\d.-]+)`)
	mapLngRegexp = regexp.MustCompile(`lng:\s*([\d.-]+)`)
	// thumbSizeRegexp rewrites thumbnail image URLs to full-size variants.
	thumbSizeRegexp = regexp.MustCompile(`\d+x\d+`)
)

// FetchDetail loads a single listing page and extracts its full detail view.
// The valuation fields are left zero; the caller runs the pricing pipeline.
func (s *Scraper) FetchDetail(ctx context.Context, id, listingURL string) (*models.ListingDetail, error) {
	var detail *models.ListingDetail
	var fetchErr error

	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.MaxDepth(1),
	)
	c.SetRequestTimeout(30 * time.Second)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9")
	})

	c.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("fetch %s (status %d): %w", r.Request.URL, r.StatusCode, err)
	})

	c.OnHTML("html", func(e *colly.HTMLElement) {
		detail = extractDetail(e.DOM, id, listingURL)
	})

	if err := c.Visit(listingURL); err != nil {
		return nil, fmt.Errorf("craigslist: detail %s: %w", listingURL, err)
	}
	c.Wait()

	if fetchErr != nil {
		return nil, fmt.Errorf("craigslist: detail: %w", fetchErr)
	}
	if detail == nil {
		return nil, fmt.Errorf("craigslist: detail %s: no parseable page content", listingURL)
	}
	return detail, nil
}

func extractDetail(doc *goquery.Selection, id, listingURL string) *models.ListingDetail {
	detail := &models.ListingDetail{
		ID:         id,
		URL:        listingURL,
		Attributes: make(map[string]string),
	}

	detail.Title = strings.TrimSpace(doc.Find("h1, .postingtitle, .posting-title").First().Text())
	detail.Price = strings.TrimSpace(doc.Find(".price").First().Text())

	desc := strings.TrimSpace(doc.Find("#postingbody, .posting-body").Text())
	detail.Desc = strings.TrimSpace(strings.ReplaceAll(desc, "QR Code Link to This Post", ""))

	doc.Find(".gallery img, .swipe img, #thumbs .thumb img").Each(func(i int, img *goquery.Selection) {
		src, ok := img.Attr("src")
		if !ok || src == "" {
			return
		}
		full := thumbSizeRegexp.ReplaceAllString(src, "600x450")
		for _, existing := range detail.Images {
			if existing == full {
				return
			}
		}
		detail.Images = append(detail.Images, full)
	})

	detail.PostedDate = strings.TrimSpace(doc.Find(".date, .postinginfo time, .meta .timeago").First().Text())

	doc.Find(".attrgroup span, .mapAndAttrs .attrgroup span").Each(func(i int, attr *goquery.Selection) {
		text := strings.TrimSpace(attr.Text())
		if key, value, found := strings.Cut(text, ":"); found {
			detail.Attributes[strings.TrimSpace(key)] = strings.TrimSpace(value)
		}
	})

	// Coordinates live inside the map-init script, not the markup.
	doc.Find("script").Each(func(i int, script *goquery.Selection) {
		body := script.Text()
		if !strings.Contains(body, "map.init") {
			return
		}
		if m := mapLatRegexp.FindStringSubmatch(body); len(m) == 2 {
			if lat, err := strconv.ParseFloat(m[1], 64); err == nil {
				detail.MapLat = lat
			}
		}
		if m := mapLngRegexp.FindStringSubmatch(body); len(m) == 2 {
			if lng, err := strconv.ParseFloat(m[1], 64); err == nil {
				detail.MapLng = lng
			}
		}
	})
	detail.MapAddress = strings.TrimSpace(doc.Find(".mapaddress").Text())

	return detail
}
