package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/jkru006/craigslist-ebay-analyzer/models"
	"github.com/jkru006/craigslist-ebay-analyzer/scraper/craigslist"
	"github.com/jkru006/craigslist-ebay-analyzer/services"
	"github.com/jkru006/craigslist-ebay-analyzer/storage"
)

const sampleListingCount = 120

// searchResponse is the full payload for one ranked search.
type searchResponse struct {
	Query      string                  `json:"query"`
	Zipcode    string                  `json:"zipcode"`
	Region     string                  `json:"region"`
	Budget     float64                 `json:"budget,omitempty"`
	SampleData bool                    `json:"sampleData,omitempty"`
	Stats      models.RankReport       `json:"stats"`
	Listings   []*models.ValuedListing `json:"listings"`
	Page       int                     `json:"page"`
	PageSize   int                     `json:"pageSize"`
	TotalCount int                     `json:"totalCount"`
	TotalPages int                     `json:"totalPages"`
}

func intParam(r *http.Request, name string, fallback int) int {
	if val := r.URL.Query().Get(name); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// handleSearch scrapes, values, ranks and paginates listings for a search
// term and zipcode.
//
//	GET /api/search?q=laptop&zip=94102&budget=800&page=1&pageSize=50&all=true
//
// "all=true" disables the profitable-only display policy.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	zip := strings.TrimSpace(r.URL.Query().Get("zip"))
	if q == "" || zip == "" {
		s.writeError(w, http.StatusBadRequest, "search query and zipcode are required")
		return
	}

	budget := services.ParsePrice(r.URL.Query().Get("budget"))
	page := intParam(r, "page", 1)
	pageSize := intParam(r, "pageSize", s.cfg.DefaultPageSize)
	showAll := r.URL.Query().Get("all") == "true"

	s.logger.Info("[server] Search: %q zip=%s budget=%.2f page=%d", q, zip, budget, page)

	result, err := s.source.Search(r.Context(), q, zip)
	if err != nil {
		s.logger.Error("[server] Scrape failed: %v", err)
		s.writeError(w, http.StatusBadGateway, "failed to fetch listings: "+err.Error())
		return
	}

	listings := result.Listings
	sampleData := false
	if len(listings) == 0 {
		// Craigslist served a page we could not extract anything from.
		// Fall back to generated demo data rather than an empty result.
		s.logger.Warn("[server] No listings extracted, falling back to sample data")
		listings = craigslist.SampleListings(sampleListingCount, result.Region)
		sampleData = true
	}

	valued := s.pipeline.ValueAll(r.Context(), listings)
	ranked := s.ranker.Rank(valued, services.RankOptions{
		Budget:         budget,
		ProfitableOnly: !showAll,
	})
	resultPage := s.ranker.Paginate(ranked, page, pageSize)

	s.exportCSV(ranked.Ranked)

	s.writeJSON(w, http.StatusOK, searchResponse{
		Query:      q,
		Zipcode:    zip,
		Region:     result.Region,
		Budget:     budget,
		SampleData: sampleData,
		Stats:      ranked.Report,
		Listings:   resultPage.Listings,
		Page:       resultPage.Page,
		PageSize:   resultPage.PageSize,
		TotalCount: resultPage.TotalCount,
		TotalPages: resultPage.TotalPages,
	})
}

// handleListingDetail fetches one listing page and values it.
//
//	GET /api/listing?id=listing-3&url=https://sfbay.craigslist.org/...
func (s *Server) handleListingDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	listingURL := strings.TrimSpace(r.URL.Query().Get("url"))
	if listingURL == "" {
		s.writeError(w, http.StatusBadRequest, "listing URL is required")
		return
	}
	id := r.URL.Query().Get("id")

	detail, err := s.source.FetchDetail(r.Context(), id, listingURL)
	if err != nil {
		s.logger.Error("[server] Detail fetch failed: %v", err)
		s.writeError(w, http.StatusBadGateway, "failed to fetch listing details: "+err.Error())
		return
	}

	valued := s.pipeline.ValueOne(r.Context(), &models.Listing{
		ID:       id,
		Title:    detail.Title,
		RawPrice: detail.Price,
		URL:      listingURL,
	})
	detail.Valuation = models.Valuation{
		ResaleValue:     valued.ResaleValue,
		Profit:          valued.Profit,
		AvgSaleTimeDays: valued.AvgSaleTimeDays,
		HasProfit:       valued.HasProfit,
		Source:          valued.ValueSource,
	}

	s.writeJSON(w, http.StatusOK, detail)
}

// valueRequest is the body of POST /api/value.
type valueRequest struct {
	Title string `json:"title"`
	Price string `json:"price"`
}

// handleValue values a single title/price pair without scraping.
//
//	POST /api/value {"title": "MacBook Pro 2023 - 16GB RAM", "price": "$1200"}
func (s *Server) handleValue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req valueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		s.writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	valued := s.pipeline.ValueOne(r.Context(), &models.Listing{
		Title:    req.Title,
		RawPrice: req.Price,
	})

	s.writeJSON(w, http.StatusOK, map[string]any{
		"title":       valued.Title,
		"resaleValue": valued.ResaleValue,
		"profit":      valued.Profit,
		"avgSaleTime": valued.AvgSaleTimeDays,
		"hasProfit":   valued.HasProfit,
		"valueSource": valued.ValueSource,
	})
}

// exportCSV writes the ranked result set to the configured CSV path. Export
// failures are logged, never surfaced to the API caller.
func (s *Server) exportCSV(listings []*models.ValuedListing) {
	if s.cfg.CSVOutputPath == "" || len(listings) == 0 {
		return
	}

	var writer storage.ResultWriter
	writer, err := storage.NewCSVWriter(s.cfg.CSVOutputPath)
	if err != nil {
		s.logger.Error("[server] CSV export failed: %v", err)
		return
	}
	defer writer.Close()

	if err := writer.WriteResults(listings); err != nil {
		s.logger.Error("[server] CSV export failed: %v", err)
		return
	}
	s.logger.Info("[server] Ranked results exported to %s", s.cfg.CSVOutputPath)
}
