package services

import (
	"sort"

	"github.com/jkru006/craigslist-ebay-analyzer/models"
	"github.com/jkru006/craigslist-ebay-analyzer/utils"
)

// RankOptions controls filtering and pagination of a valued listing set.
type RankOptions struct {
	// Budget drops listings whose parsed asking price exceeds it. <= 0 means
	// no budget filter.
	Budget float64
	// ProfitableOnly restricts the displayed ranking to listings with
	// HasProfit. The full within-budget set is still retained for the report.
	ProfitableOnly bool
	Page           int
	PageSize       int
}

// RankedResults is the ordered result set for one search request.
type RankedResults struct {
	// WithinBudget is every valued listing that survived the budget filter,
	// in original scrape order. Kept for counts and statistics.
	WithinBudget []*models.ValuedListing
	// Ranked is the displayed set: optionally profitable-only, sorted by
	// profit descending, ties kept in scrape order.
	Ranked []*models.ValuedListing
	Report models.RankReport
}

// Ranker assembles valued listings into a sorted, filtered, paginated result
// set.
type Ranker struct {
	logger *utils.Logger
}

// NewRanker creates a Ranker with the given logger.
func NewRanker(logger *utils.Logger) *Ranker {
	return &Ranker{logger: logger}
}

// Rank filters by budget, applies the profitable-only policy, and sorts by
// profit descending. The sort is stable so ties keep their scrape order.
func (r *Ranker) Rank(valued []*models.ValuedListing, opts RankOptions) *RankedResults {
	withinBudget := valued
	if opts.Budget > 0 {
		withinBudget = make([]*models.ValuedListing, 0, len(valued))
		for _, vl := range valued {
			if vl.AskingPrice <= opts.Budget {
				withinBudget = append(withinBudget, vl)
			}
		}
		r.logger.Info("[ranker] Filtered %d listings to %d within budget $%.2f",
			len(valued), len(withinBudget), opts.Budget)
	}

	displayed := withinBudget
	if opts.ProfitableOnly {
		displayed = make([]*models.ValuedListing, 0, len(withinBudget))
		for _, vl := range withinBudget {
			if vl.HasProfit {
				displayed = append(displayed, vl)
			}
		}
	}

	ranked := append([]*models.ValuedListing(nil), displayed...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Profit > ranked[j].Profit
	})

	return &RankedResults{
		WithinBudget: withinBudget,
		Ranked:       ranked,
		Report:       buildReport(len(valued), withinBudget, ranked),
	}
}

// Paginate slices one page out of the ranked set. Pages are 1-indexed; a page
// beyond the available range yields an empty page, not an error.
func (r *Ranker) Paginate(results *RankedResults, page, pageSize int) *models.ResultPage {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}

	total := len(results.Ranked)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return &models.ResultPage{
		Listings:   results.Ranked[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: totalPages,
	}
}
