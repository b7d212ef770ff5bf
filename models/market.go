package models

// MarketStats summarizes sold listings returned by the eBay lookup for one
// search query. A zero AveragePrice means "no data" to the valuation pipeline.
type MarketStats struct {
	AveragePrice    float64
	AverageSaleDays int
	SoldCount       int
}
