package services

import (
	"math"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jkru006/craigslist-ebay-analyzer/utils"
)

var (
	// nonPriceRegexp matches every character that is not a digit or decimal point.
	nonPriceRegexp = regexp.MustCompile(`[^0-9.]`)
	// accessoryRegexp strips generic accessory words that poison eBay searches.
	accessoryRegexp = regexp.MustCompile(`(?i)bag|case|charger|stand|sleeve|adapter`)
	// highValueRegexp flags titles likely to resell above asking.
	highValueRegexp = regexp.MustCompile(`(?i)macbook|iphone|ipad|pro|gaming|rtx|premium|new|sealed`)
	// lowValueRegexp flags titles likely to resell below asking.
	lowValueRegexp = regexp.MustCompile(`(?i)broken|damaged|parts|cracked|as is`)
)

// ParsePrice converts a scraped currency string like "$1,200.50" to a number.
// Unparseable input yields 0; it never fails. Parsing the string form of its
// own output returns the same number.
func ParsePrice(text string) float64 {
	cleaned := nonPriceRegexp.ReplaceAllString(text, "")
	if cleaned == "" {
		return 0
	}
	val, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return val
}

// NormalizeQuery derives the eBay search key from a listing title: the text
// before the first hyphen, with generic accessory words removed. An empty
// string means the query is too short or generic to be worth searching.
func NormalizeQuery(title string) string {
	cleanTitle := strings.TrimSpace(strings.SplitN(title, "-", 2)[0])
	query := strings.TrimSpace(accessoryRegexp.ReplaceAllString(cleanTitle, ""))
	if len(query) < 3 {
		return ""
	}
	return query
}

// RandSource provides the uniform draws behind the synthetic estimates.
// *rand.Rand satisfies it; tests substitute a scripted source.
type RandSource interface {
	Float64() float64
}

// Valuer produces resale-value and sale-time estimates for a listing.
//
// When real eBay data is available it always wins. The synthetic fallback is
// an explicit placeholder standing in for unavailable market data: a
// randomized multiplier drawn from a tier-specific bimodal distribution, not
// a pricing model.
type Valuer struct {
	logger *utils.Logger

	mu  sync.Mutex // rand.Rand is not safe for concurrent use
	rng RandSource
}

// NewValuer creates a Valuer. A nil rng gets a time-seeded source.
func NewValuer(logger *utils.Logger, rng RandSource) *Valuer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Valuer{logger: logger, rng: rng}
}

// EstimateResale returns the estimated resale value for a listing.
// A market price > 0 is returned as-is (rounded to cents); otherwise the
// asking price is scaled by a synthetic tier multiplier.
func (v *Valuer) EstimateResale(title string, marketPrice, askingPrice float64) float64 {
	if marketPrice > 0 {
		return round2(marketPrice)
	}

	m := v.multiplier(title)
	resale := round2(askingPrice * m)
	v.logger.Debug("[valuer] Synthetic resale value $%.2f (%.2fx) for %q", resale, m, title)
	return resale
}

// multiplier draws a resale multiplier for the title's value tier:
//
//	high value:  60% chance of 1.2x–1.8x, else 0.8x–1.0x
//	low value:   20% chance of 1.1x–1.4x, else 0.5x–1.0x
//	regular:     40% chance of 1.1x–1.5x, else 0.7x–1.0x
//
// High-value takes precedence when a title matches both patterns.
func (v *Valuer) multiplier(title string) float64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch {
	case highValueRegexp.MatchString(title):
		if v.rng.Float64() > 0.4 {
			return v.rng.Float64()*0.6 + 1.2
		}
		return v.rng.Float64()*0.2 + 0.8
	case lowValueRegexp.MatchString(title):
		if v.rng.Float64() > 0.8 {
			return v.rng.Float64()*0.3 + 1.1
		}
		return v.rng.Float64()*0.5 + 0.5
	default:
		if v.rng.Float64() > 0.6 {
			return v.rng.Float64()*0.4 + 1.1
		}
		return v.rng.Float64()*0.3 + 0.7
	}
}

// Profit returns the potential profit, clamped to 0 when resale does not beat
// asking. A loss is reported as "no profit", never as a negative number; the
// ranking and filtering logic depends on this convention.
func Profit(askingPrice, resaleValue float64) float64 {
	if resaleValue <= askingPrice {
		return 0
	}
	return round2(resaleValue - askingPrice)
}

// EstimateSaleDays estimates how many days the item would take to resell.
// High-value items and high-profit items draw from strictly faster ranges:
//
//	very fast (high value and profit > 100):  1–3 days
//	fast (high value or profit > 50):         3–7 days
//	some profit:                              7–14 days
//	no profit:                                14–28 days
func (v *Valuer) EstimateSaleDays(title string, profit float64) int {
	isHighValue := highValueRegexp.MatchString(title)
	isFast := isHighValue || profit > 50
	isVeryFast := isHighValue && profit > 100

	v.mu.Lock()
	r := v.rng.Float64()
	v.mu.Unlock()

	var days float64
	switch {
	case isVeryFast:
		days = r*2 + 1
	case isFast:
		days = r*4 + 3
	case profit > 0:
		days = r*7 + 7
	default:
		days = r*14 + 14
	}

	return int(math.Round(days))
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
