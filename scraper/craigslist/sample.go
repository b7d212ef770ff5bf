package craigslist

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/jkru006/craigslist-ebay-analyzer/models"
)

var sampleLocations = []string{"downtown", "south bay", "east bay", "north bay", "peninsula"}

// SampleListings generates a demo result set for when Craigslist returns
// nothing scrapeable (blocked, markup change, empty region). It produces
// count random listings plus a few fixed ones so the valuation tiers and
// pagination always have data to chew on.
func SampleListings(count int, region string) []*models.Listing {
	now := time.Now()
	listings := make([]*models.Listing, 0, count+3)

	for i := 0; i < count; i++ {
		price := rand.Intn(2000) + 200
		listings = append(listings, &models.Listing{
			Title:     fmt.Sprintf("Sample Listing %d - Item %d", i+1, rand.Intn(1000)),
			RawPrice:  fmt.Sprintf("$%d", price),
			Location:  sampleLocations[rand.Intn(len(sampleLocations))],
			URL:       "https://craigslist.org",
			Region:    region,
			ScrapedAt: now,
		})
	}

	listings = append(listings,
		&models.Listing{
			Title: "MacBook Pro 2023 - 16GB RAM", RawPrice: "$1200",
			Location: "downtown", URL: "https://craigslist.org", Region: region, ScrapedAt: now,
		},
		&models.Listing{
			Title: "Dell XPS 15 - Like New", RawPrice: "$899",
			Location: "south bay", URL: "https://craigslist.org", Region: region, ScrapedAt: now,
		},
		&models.Listing{
			Title: "HP Pavilion Gaming Laptop", RawPrice: "$650",
			Location: "east bay", URL: "https://craigslist.org", Region: region, ScrapedAt: now,
		},
	)

	for i, l := range listings {
		l.ID = listingID(i)
	}
	return listings
}
