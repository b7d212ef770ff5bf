package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jkru006/craigslist-ebay-analyzer/config"
	"github.com/jkru006/craigslist-ebay-analyzer/models"
	"github.com/jkru006/craigslist-ebay-analyzer/scraper/craigslist"
	"github.com/jkru006/craigslist-ebay-analyzer/services"
	"github.com/jkru006/craigslist-ebay-analyzer/utils"
)

// ListingSource is the scraping collaborator the handlers depend on. The
// Craigslist scraper satisfies it; tests substitute a stub.
type ListingSource interface {
	Search(ctx context.Context, query, zipcode string) (*craigslist.SearchResult, error)
	FetchDetail(ctx context.Context, id, listingURL string) (*models.ListingDetail, error)
}

// Server wires the scraper, valuation pipeline and ranker behind a JSON API.
type Server struct {
	cfg      *config.Config
	logger   *utils.Logger
	source   ListingSource
	pipeline *services.Pipeline
	ranker   *services.Ranker
}

// New creates a Server.
func New(cfg *config.Config, logger *utils.Logger, source ListingSource,
	pipeline *services.Pipeline, ranker *services.Ranker) *Server {
	return &Server{
		cfg:      cfg,
		logger:   logger,
		source:   source,
		pipeline: pipeline,
		ranker:   ranker,
	}
}

// Handler returns the HTTP routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/search", s.handleSearch)
	mux.HandleFunc("/api/listing", s.handleListingDetail)
	mux.HandleFunc("/api/value", s.handleValue)
	return mux
}

// ListenAndServe runs the HTTP server until it fails.
func (s *Server) ListenAndServe() error {
	srv := &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute, // valuing a full result set takes a while
	}
	s.logger.Info("Server running on http://localhost:%s", s.cfg.Port)
	return srv.ListenAndServe()
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("[server] Failed to encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
