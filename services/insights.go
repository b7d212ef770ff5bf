package services

import "github.com/jkru006/craigslist-ebay-analyzer/models"

// buildReport computes summary statistics over a ranked result set. The
// averages cover the whole within-budget set, not just the displayed page.
func buildReport(totalScraped int, withinBudget, ranked []*models.ValuedListing) models.RankReport {
	report := models.RankReport{
		TotalScraped:       totalScraped,
		WithinBudget:       len(withinBudget),
		ListingsByLocation: make(map[string]int),
	}

	var profitTotal float64
	for _, vl := range withinBudget {
		if vl.HasProfit {
			report.Profitable++
			profitTotal += vl.Profit
		}
		if vl.Profit > report.MaxProfit {
			report.MaxProfit = vl.Profit
		}
		if vl.Location != "" {
			report.ListingsByLocation[vl.Location]++
		}
	}

	if report.Profitable > 0 {
		report.AverageProfit = round2(profitTotal / float64(report.Profitable))
	}
	report.MaxProfit = round2(report.MaxProfit)

	if len(ranked) > 0 && ranked[0].HasProfit {
		report.BestListing = ranked[0]
	}

	return report
}
