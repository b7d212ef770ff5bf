package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jkru006/craigslist-ebay-analyzer/config"
	"github.com/jkru006/craigslist-ebay-analyzer/models"
	"github.com/jkru006/craigslist-ebay-analyzer/scraper/craigslist"
	"github.com/jkru006/craigslist-ebay-analyzer/services"
	"github.com/jkru006/craigslist-ebay-analyzer/utils"
)

type stubSource struct {
	listings  []*models.Listing
	searchErr error
	detail    *models.ListingDetail
	detailErr error
}

func (s *stubSource) Search(ctx context.Context, query, zipcode string) (*craigslist.SearchResult, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return &craigslist.SearchResult{
		Listings: s.listings,
		Region:   "sfbay",
		Query:    query,
		Zipcode:  zipcode,
	}, nil
}

func (s *stubSource) FetchDetail(ctx context.Context, id, listingURL string) (*models.ListingDetail, error) {
	if s.detailErr != nil {
		return nil, s.detailErr
	}
	return s.detail, nil
}

func newTestServer(source ListingSource) *Server {
	logger := utils.NewLogger()
	cfg := &config.Config{Port: "0", DefaultPageSize: 50}
	pipeline := services.NewPipeline(logger, services.NewValuer(logger, nil), nil, 3, 0, time.Second)
	return New(cfg, logger, source, pipeline, services.NewRanker(logger))
}

func searchFixture() []*models.Listing {
	return []*models.Listing{
		{ID: "listing-0", Title: "MacBook Pro 2023 - 16GB RAM", RawPrice: "$1200", Location: "downtown", URL: "https://sfbay.craigslist.org/d/1.html"},
		{ID: "listing-1", Title: "Dell XPS 15 - Like New", RawPrice: "$899", Location: "south bay", URL: "https://sfbay.craigslist.org/d/2.html"},
		{ID: "listing-2", Title: "Broken laptop for parts", RawPrice: "$50", Location: "east bay", URL: "https://sfbay.craigslist.org/d/3.html"},
	}
}

func TestSearchRequiresQueryAndZip(t *testing.T) {
	srv := newTestServer(&stubSource{listings: searchFixture()})
	handler := srv.Handler()

	for _, target := range []string{"/api/search", "/api/search?q=laptop", "/api/search?zip=94102"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d; want 400", target, rec.Code)
		}
	}
}

func TestSearchReturnsRankedSortedResults(t *testing.T) {
	srv := newTestServer(&stubSource{listings: searchFixture()})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/api/search?q=laptop&zip=94102&all=true", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d; want 200, body %s", rec.Code, rec.Body.String())
	}

	var resp searchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.Region != "sfbay" || resp.Query != "laptop" {
		t.Errorf("echo fields wrong: %+v", resp)
	}
	if resp.TotalCount != 3 {
		t.Errorf("TotalCount = %d; want 3 with all=true", resp.TotalCount)
	}
	for i := 1; i < len(resp.Listings); i++ {
		if resp.Listings[i-1].Profit < resp.Listings[i].Profit {
			t.Errorf("listings not sorted by profit descending at index %d", i)
		}
	}
	for _, l := range resp.Listings {
		if l.HasProfit != (l.Profit > 0) {
			t.Errorf("listing %s: HasProfit=%v but Profit=%.2f", l.ID, l.HasProfit, l.Profit)
		}
	}
	if resp.Stats.TotalScraped != 3 {
		t.Errorf("Stats.TotalScraped = %d; want 3", resp.Stats.TotalScraped)
	}
}

func TestSearchProfitableOnlyByDefault(t *testing.T) {
	srv := newTestServer(&stubSource{listings: searchFixture()})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/api/search?q=laptop&zip=94102", nil))

	var resp searchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	for _, l := range resp.Listings {
		if !l.HasProfit {
			t.Errorf("unprofitable listing %s in default (profitable-only) view", l.ID)
		}
	}
}

func TestSearchBudgetFilter(t *testing.T) {
	srv := newTestServer(&stubSource{listings: searchFixture()})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/api/search?q=laptop&zip=94102&budget=900&all=true", nil))

	var resp searchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TotalCount != 2 {
		t.Errorf("TotalCount = %d; want 2 within budget 900", resp.TotalCount)
	}
	for _, l := range resp.Listings {
		if l.AskingPrice > 900 {
			t.Errorf("listing %s asking %.2f exceeds budget", l.ID, l.AskingPrice)
		}
	}
}

func TestSearchFallsBackToSampleData(t *testing.T) {
	srv := newTestServer(&stubSource{listings: nil})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/api/search?q=laptop&zip=94102&all=true", nil))

	var resp searchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.SampleData {
		t.Error("sampleData flag not set")
	}
	if resp.TotalCount != 123 {
		t.Errorf("TotalCount = %d; want 123 sample listings", resp.TotalCount)
	}
	if resp.TotalPages != 3 {
		t.Errorf("TotalPages = %d; want 3", resp.TotalPages)
	}
}

func TestSearchScrapeFailure(t *testing.T) {
	srv := newTestServer(&stubSource{searchErr: errors.New("craigslist unreachable")})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/api/search?q=laptop&zip=94102", nil))

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status %d; want 502", rec.Code)
	}
}

func TestValueEndpoint(t *testing.T) {
	srv := newTestServer(&stubSource{})
	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"title": "MacBook Pro 2023 - 16GB RAM", "price": "$1200"}`)
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/value", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d; want 200", rec.Code)
	}

	var resp struct {
		ResaleValue float64 `json:"resaleValue"`
		Profit      float64 `json:"profit"`
		AvgSaleTime int     `json:"avgSaleTime"`
		HasProfit   bool    `json:"hasProfit"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ResaleValue < 960 || resp.ResaleValue > 2160 {
		t.Errorf("resaleValue %.2f outside synthetic range", resp.ResaleValue)
	}
	if resp.HasProfit != (resp.Profit > 0) {
		t.Errorf("hasProfit=%v but profit=%.2f", resp.HasProfit, resp.Profit)
	}
}

func TestValueEndpointRequiresTitle(t *testing.T) {
	srv := newTestServer(&stubSource{})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, "/api/value", strings.NewReader(`{"price": "$5"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status %d; want 400", rec.Code)
	}
}

func TestListingDetailEndpoint(t *testing.T) {
	srv := newTestServer(&stubSource{detail: &models.ListingDetail{
		ID:    "listing-3",
		Title: "MacBook Pro 2023 - 16GB RAM",
		Price: "$1,200",
	}})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/listing?id=listing-3&url=https%3A%2F%2Fsfbay.craigslist.org%2Fd%2F761.html", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d; want 200", rec.Code)
	}

	var detail models.ListingDetail
	if err := json.NewDecoder(rec.Body).Decode(&detail); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if detail.Valuation.ResaleValue == 0 {
		t.Error("detail response missing valuation")
	}
	if detail.Valuation.HasProfit != (detail.Valuation.Profit > 0) {
		t.Error("detail valuation hasProfit inconsistent with profit")
	}
}

func TestListingDetailRequiresURL(t *testing.T) {
	srv := newTestServer(&stubSource{})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/listing?id=listing-3", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status %d; want 400", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(&stubSource{})
	tests := []struct {
		method, target string
	}{
		{http.MethodPost, "/api/search?q=a&zip=b"},
		{http.MethodGet, "/api/value"},
		{http.MethodDelete, "/api/listing?url=x"},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: status %d; want 405", tt.method, tt.target, rec.Code)
		}
	}
}
