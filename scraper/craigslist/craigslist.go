package craigslist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/jkru006/craigslist-ebay-analyzer/config"
	"github.com/jkru006/craigslist-ebay-analyzer/models"
	"github.com/jkru006/craigslist-ebay-analyzer/utils"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/116.0.0.0 Safari/537.36"

// SearchResult is one scraped search-results page.
type SearchResult struct {
	Listings []*models.Listing
	Region   string
	Query    string
	Zipcode  string
}

// Scraper fetches Craigslist search and detail pages. The static colly fetch
// handles the common case; when it finds nothing the scraper renders the page
// in headless Chrome before giving up, since newer Craigslist markups build
// the result list client-side.
type Scraper struct {
	cfg    *config.Config
	logger *utils.Logger
	retry  *utils.RetryConfig
}

// New creates a ready-to-use Craigslist scraper.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	return &Scraper{
		cfg:    cfg,
		logger: logger,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// Search scrapes the for-sale search results for a query near a zipcode.
func (s *Scraper) Search(ctx context.Context, query, zipcode string) (*SearchResult, error) {
	region := RegionForZip(zipcode)
	baseURL := BaseURL(region)
	searchURL := SearchURL(region, query, zipcode, s.cfg.SearchDistance)

	s.logger.Info("[craigslist] Fetching listings from %s region for zipcode %s", region, zipcode)
	s.logger.Debug("[craigslist] URL: %s", searchURL)

	var listings []*models.Listing
	err := s.retry.Do(ctx, "craigslist-search", func() error {
		found, err := s.fetchStatic(ctx, searchURL, baseURL, region)
		if err != nil {
			return err
		}
		listings = found
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("craigslist: search %q in %s: %w", query, region, err)
	}

	if len(listings) == 0 && s.cfg.ChromeBin != "" {
		s.logger.Warn("[craigslist] Static fetch found 0 listings — retrying with headless browser")
		listings, err = s.fetchRendered(ctx, searchURL, baseURL, region)
		if err != nil {
			s.logger.Error("[craigslist] Browser fallback failed: %v", err)
		}
	}

	s.logger.Info("[craigslist] Scrape complete — %d listings for %q", len(listings), query)
	return &SearchResult{
		Listings: dedupeByURL(listings),
		Region:   region,
		Query:    query,
		Zipcode:  zipcode,
	}, nil
}

// fetchStatic fetches and parses the search page over plain HTTP.
func (s *Scraper) fetchStatic(ctx context.Context, searchURL, baseURL, region string) ([]*models.Listing, error) {
	var listings []*models.Listing
	var fetchErr error

	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.MaxDepth(1),
	)
	c.SetRequestTimeout(30 * time.Second)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9")
		r.Headers.Set("Referer", "https://craigslist.org/")
	})

	c.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("fetch %s (status %d): %w", r.Request.URL, r.StatusCode, err)
	})

	c.OnResponse(func(r *colly.Response) {
		s.logger.Debug("[craigslist] Received %d bytes from search page", len(r.Body))
	})

	c.OnHTML("html", func(e *colly.HTMLElement) {
		pageTitle := strings.TrimSpace(e.DOM.Find("title").Text())
		if pageTitle != "" {
			s.logger.Debug("[craigslist] Page title: %s", pageTitle)
		}
		listings = extractListings(e.DOM, baseURL, region)
	})

	if err := c.Visit(searchURL); err != nil {
		return nil, err
	}
	c.Wait()

	if fetchErr != nil {
		return nil, fetchErr
	}
	return listings, nil
}

// fetchRendered loads the search page in headless Chrome and parses the
// rendered DOM with the same extraction rules as the static path.
func (s *Scraper) fetchRendered(ctx context.Context, searchURL, baseURL, region string) ([]*models.Listing, error) {
	html, err := s.renderPage(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse rendered page: %w", err)
	}
	return extractListings(doc.Selection, baseURL, region), nil
}

func dedupeByURL(listings []*models.Listing) []*models.Listing {
	seen := utils.NewURLSet()
	out := make([]*models.Listing, 0, len(listings))
	for _, l := range listings {
		if l.URL != "" && !seen.Add(l.URL) {
			continue
		}
		out = append(out, l)
	}
	return out
}
