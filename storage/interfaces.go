package storage

import "github.com/jkru006/craigslist-ebay-analyzer/models"

// ResultWriter exports a ranked, valued result set. Results are computed
// per-request and never stored; this is a one-shot export, not persistence.
type ResultWriter interface {
	WriteResults(listings []*models.ValuedListing) error
	Close() error
}
