package models

import "time"

// Listing holds one scraped Craigslist search result before valuation.
// Listings live for the duration of a single search request and are never
// persisted.
type Listing struct {
	ID        string
	Title     string
	RawPrice  string
	Location  string
	URL       string
	Region    string
	ScrapedAt time.Time
}

// Valuation is the output of the pricing pipeline for one listing.
// ResaleValue and Profit are always set once the pipeline completes: a failed
// or empty eBay lookup degrades to a synthetic estimate, never to an error.
type Valuation struct {
	ResaleValue     float64 `json:"resaleValue"`
	Profit          float64 `json:"profit"`
	AvgSaleTimeDays int     `json:"avgSaleTimeDays"`
	HasProfit       bool    `json:"hasProfit"`
	// Source records where ResaleValue came from: "ebay" or "estimate".
	Source string `json:"source"`
}

// ValuedListing pairs a scraped listing with its valuation. This is the
// consumer-facing shape the ranking stage emits.
type ValuedListing struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Price           string  `json:"price"`
	AskingPrice     float64 `json:"askingPrice"`
	Location        string  `json:"location"`
	Link            string  `json:"link"`
	ResaleValue     float64 `json:"resaleValue"`
	Profit          float64 `json:"profit"`
	AvgSaleTimeDays int     `json:"avgSaleTimeDays"`
	HasProfit       bool    `json:"hasProfit"`
	ValueSource     string  `json:"valueSource"`
}

// ListingDetail is the enriched view of a single listing page.
type ListingDetail struct {
	ID         string            `json:"id"`
	URL        string            `json:"url"`
	Title      string            `json:"title"`
	Price      string            `json:"price"`
	Desc       string            `json:"description"`
	Images     []string          `json:"images"`
	Attributes map[string]string `json:"attributes"`
	PostedDate string            `json:"postedDate,omitempty"`
	MapLat     float64           `json:"mapLat,omitempty"`
	MapLng     float64           `json:"mapLng,omitempty"`
	MapAddress string            `json:"mapAddress,omitempty"`
	Valuation  Valuation         `json:"valuation"`
}

// ResultPage is one page of a ranked result set plus pagination metadata.
type ResultPage struct {
	Listings   []*ValuedListing `json:"listings"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalCount int              `json:"totalCount"`
	TotalPages int              `json:"totalPages"`
}

// RankReport summarizes a full (unpaginated) ranked result set.
type RankReport struct {
	TotalScraped       int            `json:"totalScraped"`
	WithinBudget       int            `json:"withinBudget"`
	Profitable         int            `json:"profitable"`
	AverageProfit      float64        `json:"averageProfit"`
	MaxProfit          float64        `json:"maxProfit"`
	BestListing        *ValuedListing `json:"bestListing,omitempty"`
	ListingsByLocation map[string]int `json:"listingsByLocation"`
}
