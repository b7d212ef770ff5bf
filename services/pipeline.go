package services

import (
	"context"
	"sync"
	"time"

	"github.com/jkru006/craigslist-ebay-analyzer/models"
	"github.com/jkru006/craigslist-ebay-analyzer/utils"
)

// Value sources recorded on a ValuedListing.
const (
	SourceEbay     = "ebay"
	SourceEstimate = "estimate"
)

// MarketPriceLookup is the external sold-listings collaborator. It may block,
// time out or fail per query; the pipeline treats every failure as "no data".
type MarketPriceLookup interface {
	SoldPrices(ctx context.Context, query string) (models.MarketStats, error)
}

// Pipeline runs the full valuation sequence over a batch of scraped listings:
// parse asking price, eBay sold-price lookup, resale estimate, profit and
// sale-time estimate. One Pipeline is shared across requests; each ValueAll
// call is independent.
type Pipeline struct {
	logger         *utils.Logger
	valuer         *Valuer
	lookup         MarketPriceLookup
	maxConcurrency int
	rateLimitMs    int
	lookupTimeout  time.Duration
}

// NewPipeline creates a valuation pipeline. lookup may be nil, in which case
// every listing gets a synthetic estimate.
func NewPipeline(logger *utils.Logger, valuer *Valuer, lookup MarketPriceLookup,
	maxConcurrency, rateLimitMs int, lookupTimeout time.Duration) *Pipeline {

	if lookupTimeout <= 0 {
		lookupTimeout = 10 * time.Second
	}
	return &Pipeline{
		logger:         logger,
		valuer:         valuer,
		lookup:         lookup,
		maxConcurrency: maxConcurrency,
		rateLimitMs:    rateLimitMs,
		lookupTimeout:  lookupTimeout,
	}
}

// ValueAll values every listing concurrently over a bounded worker pool.
// Listings have no data dependency on each other; output order matches input
// order regardless of completion order. A failed lookup degrades that one
// listing to the synthetic estimate and the batch continues.
func (p *Pipeline) ValueAll(ctx context.Context, listings []*models.Listing) []*models.ValuedListing {
	results := make([]*models.ValuedListing, len(listings))

	pool := utils.NewWorkerPool(p.maxConcurrency, p.rateLimitMs)
	var mu sync.Mutex

	for i, listing := range listings {
		i, listing := i, listing
		pool.Submit(func() {
			vl := p.ValueOne(ctx, listing)
			mu.Lock()
			results[i] = vl
			mu.Unlock()
		})
	}
	pool.Wait()

	return results
}

// ValueOne runs the full valuation sequence for a single listing. It always
// returns a fully populated result; there is no half-valued listing.
func (p *Pipeline) ValueOne(ctx context.Context, listing *models.Listing) *models.ValuedListing {
	asking := ParsePrice(listing.RawPrice)
	market := p.lookupMarket(ctx, listing.Title)

	resale := p.valuer.EstimateResale(listing.Title, market.AveragePrice, asking)
	source := SourceEstimate
	if market.AveragePrice > 0 {
		source = SourceEbay
	}

	profit := Profit(asking, resale)

	days := market.AverageSaleDays
	if source != SourceEbay || days <= 0 {
		days = p.valuer.EstimateSaleDays(listing.Title, profit)
	}

	return &models.ValuedListing{
		ID:              listing.ID,
		Title:           listing.Title,
		Price:           listing.RawPrice,
		AskingPrice:     asking,
		Location:        listing.Location,
		Link:            listing.URL,
		ResaleValue:     resale,
		Profit:          profit,
		AvgSaleTimeDays: days,
		HasProfit:       profit > 0,
		ValueSource:     source,
	}
}

// lookupMarket queries eBay for the listing's normalized search key. Queries
// that are too short are skipped entirely, and any lookup error is logged and
// swallowed; the caller sees "no data", never an error.
func (p *Pipeline) lookupMarket(ctx context.Context, title string) models.MarketStats {
	if p.lookup == nil {
		return models.MarketStats{}
	}

	query := NormalizeQuery(title)
	if query == "" {
		p.logger.Debug("[pipeline] Skipping eBay search for too short or generic term: %s", title)
		return models.MarketStats{}
	}

	lookupCtx, cancel := context.WithTimeout(ctx, p.lookupTimeout)
	defer cancel()

	stats, err := p.lookup.SoldPrices(lookupCtx, query)
	if err != nil {
		p.logger.Warn("[pipeline] eBay lookup failed for %q: %v — using synthetic estimate", query, err)
		return models.MarketStats{}
	}
	return stats
}
