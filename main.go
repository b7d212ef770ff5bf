package main

import (
	"os"
	"time"

	"github.com/jkru006/craigslist-ebay-analyzer/config"
	"github.com/jkru006/craigslist-ebay-analyzer/ebay"
	"github.com/jkru006/craigslist-ebay-analyzer/scraper/craigslist"
	"github.com/jkru006/craigslist-ebay-analyzer/server"
	"github.com/jkru006/craigslist-ebay-analyzer/services"
	"github.com/jkru006/craigslist-ebay-analyzer/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()

	logger.Info("=== Craigslist/eBay Resale Analyzer starting ===")
	logger.Info("Config — port: %s | concurrency: %d | rate: %dms | eBay env: %s",
		cfg.Port, cfg.MaxConcurrency, cfg.RateLimitMs, cfg.EbayEnv)

	var lookup services.MarketPriceLookup
	ebayClient := ebay.NewClient(cfg.EbayClientID, cfg.EbayClientSecret, cfg.EbayEnv, nil, logger)
	if ebayClient.Configured() {
		// Dedupe identical queries within and across requests so a page of
		// near-identical titles costs one API call.
		lookup = ebay.NewCachedLookup(ebayClient, 5*time.Minute)
	} else {
		logger.Warn("eBay credentials not set — every listing will use synthetic resale estimates")
	}

	valuer := services.NewValuer(logger, nil)
	pipeline := services.NewPipeline(logger, valuer, lookup,
		cfg.MaxConcurrency, cfg.RateLimitMs,
		time.Duration(cfg.LookupTimeoutMs)*time.Millisecond)
	ranker := services.NewRanker(logger)

	scraper := craigslist.New(cfg, logger)

	srv := server.New(cfg, logger, scraper, pipeline, ranker)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("Server failed: %v", err)
		os.Exit(1)
	}
}
