package ebay

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jkru006/craigslist-ebay-analyzer/models"
	"github.com/jkru006/craigslist-ebay-analyzer/utils"
)

const (
	productionTokenURL   = "https://api.ebay.com/identity/v1/oauth2/token"
	productionFindingURL = "https://svcs.ebay.com/services/search/FindingService/v1"
	sandboxTokenURL      = "https://api.sandbox.ebay.com/identity/v1/oauth2/token"
	sandboxFindingURL    = "https://svcs.sandbox.ebay.com/services/search/FindingService/v1"

	oauthScope     = "https://api.ebay.com/oauth/api_scope"
	entriesPerPage = 10
)

// Client calls the eBay Finding API for completed (sold) listings. It caches
// the OAuth bearer token and re-authenticates once when a request comes back
// unauthorized.
type Client struct {
	clientID     string
	clientSecret string
	tokenURL     string
	findingURL   string
	httpClient   *http.Client
	logger       *utils.Logger

	mu          sync.Mutex
	bearerToken string
	tokenExpiry time.Time
}

// NewClient creates an eBay client for the given environment ("SANDBOX" or
// "PRODUCTION"). A nil httpClient gets a 30s-timeout default.
func NewClient(clientID, clientSecret, env string, httpClient *http.Client, logger *utils.Logger) *Client {
	tokenURL, findingURL := sandboxTokenURL, sandboxFindingURL
	if strings.EqualFold(strings.TrimSpace(env), "PRODUCTION") {
		tokenURL, findingURL = productionTokenURL, productionFindingURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		clientID:     strings.TrimSpace(clientID),
		clientSecret: strings.TrimSpace(clientSecret),
		tokenURL:     tokenURL,
		findingURL:   findingURL,
		httpClient:   httpClient,
		logger:       logger,
	}
}

// WithEndpoints overrides the API endpoints. Used by tests.
func (c *Client) WithEndpoints(tokenURL, findingURL string) *Client {
	c.tokenURL = tokenURL
	c.findingURL = findingURL
	return c
}

// Configured reports whether API credentials are present.
func (c *Client) Configured() bool {
	return c != nil && c.clientID != "" && c.clientSecret != ""
}

// SoldPrices searches completed eBay listings for the query and returns the
// average sold price plus the average days-to-sale across the sample. An
// empty result set yields a zero AveragePrice, which the valuation pipeline
// treats as "no data".
func (c *Client) SoldPrices(ctx context.Context, query string) (models.MarketStats, error) {
	if !c.Configured() {
		return models.MarketStats{}, ErrNotConfigured
	}

	stats, err := c.findCompletedItems(ctx, query)
	if err != nil && isAuthError(err) {
		// Token may have expired server-side. Authenticate from scratch and
		// retry once, matching the Finding API's advertised behavior.
		c.logger.Warn("[ebay] Request unauthorized, re-authenticating: %v", err)
		c.invalidateToken()
		stats, err = c.findCompletedItems(ctx, query)
	}
	if err != nil {
		return models.MarketStats{}, err
	}

	c.logger.Debug("[ebay] %d sold items for %q — average $%.2f", stats.SoldCount, query, stats.AveragePrice)
	return stats, nil
}

func (c *Client) findCompletedItems(ctx context.Context, query string) (models.MarketStats, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return models.MarketStats{}, err
	}

	params := url.Values{}
	params.Set("OPERATION-NAME", "findCompletedItems")
	params.Set("SERVICE-VERSION", "1.13.0")
	params.Set("SECURITY-APPNAME", c.clientID)
	params.Set("RESPONSE-DATA-FORMAT", "JSON")
	params.Set("REST-PAYLOAD", "")
	params.Set("keywords", query)
	params.Set("sortOrder", "EndTimeSoonest")
	params.Set("itemFilter(0).name", "SoldItemsOnly")
	params.Set("itemFilter(0).value", "true")
	params.Set("itemFilter(1).name", "LocatedIn")
	params.Set("itemFilter(1).value", "US")
	params.Set("paginationInput.entriesPerPage", strconv.Itoa(entriesPerPage))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.findingURL+"?"+params.Encode(), nil)
	if err != nil {
		return models.MarketStats{}, fmt.Errorf("ebay: create finding request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.MarketStats{}, fmt.Errorf("ebay: finding request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.MarketStats{}, fmt.Errorf("ebay: read finding response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return models.MarketStats{}, &HTTPStatusError{
			Operation: "findCompletedItems",
			Status:    resp.StatusCode,
			Body:      summarizeBody(body),
		}
	}

	return parseFindingResponse(body)
}

// findingResponse mirrors the Finding API's JSON shape, where every field is
// wrapped in a single-element array.
type findingResponse struct {
	FindCompletedItemsResponse []struct {
		Ack          []string `json:"ack"`
		SearchResult []struct {
			Item []struct {
				Title         []string `json:"title"`
				SellingStatus []struct {
					CurrentPrice []struct {
						Value string `json:"__value__"`
					} `json:"currentPrice"`
				} `json:"sellingStatus"`
				ListingInfo []struct {
					StartTime []string `json:"startTime"`
					EndTime   []string `json:"endTime"`
				} `json:"listingInfo"`
			} `json:"item"`
		} `json:"searchResult"`
	} `json:"findCompletedItemsResponse"`
}

func parseFindingResponse(body []byte) (models.MarketStats, error) {
	var parsed findingResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return models.MarketStats{}, fmt.Errorf("ebay: decode finding response: %w", err)
	}

	if len(parsed.FindCompletedItemsResponse) == 0 ||
		len(parsed.FindCompletedItemsResponse[0].SearchResult) == 0 {
		return models.MarketStats{}, nil
	}

	var stats models.MarketStats
	var priceTotal float64
	var saleDaysTotal float64
	var saleDaysCount int

	for _, item := range parsed.FindCompletedItemsResponse[0].SearchResult[0].Item {
		if len(item.SellingStatus) == 0 || len(item.SellingStatus[0].CurrentPrice) == 0 {
			continue
		}
		price, err := strconv.ParseFloat(item.SellingStatus[0].CurrentPrice[0].Value, 64)
		if err != nil || price <= 0 {
			continue
		}
		priceTotal += price
		stats.SoldCount++

		if len(item.ListingInfo) > 0 &&
			len(item.ListingInfo[0].StartTime) > 0 && len(item.ListingInfo[0].EndTime) > 0 {
			start, errS := time.Parse(time.RFC3339, item.ListingInfo[0].StartTime[0])
			end, errE := time.Parse(time.RFC3339, item.ListingInfo[0].EndTime[0])
			if errS == nil && errE == nil && end.After(start) {
				saleDaysTotal += end.Sub(start).Hours() / 24
				saleDaysCount++
			}
		}
	}

	if stats.SoldCount > 0 {
		stats.AveragePrice = priceTotal / float64(stats.SoldCount)
	}
	if saleDaysCount > 0 {
		stats.AverageSaleDays = int(saleDaysTotal/float64(saleDaysCount) + 0.5)
	}
	return stats, nil
}

// accessToken returns a cached bearer token, fetching a fresh one via the
// client-credentials grant when missing or expired.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bearerToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.bearerToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("scope", oauthScope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("ebay: create token request: %w", err)
	}
	basic := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ebay: token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ebay: read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &HTTPStatusError{
			Operation: "getAccessToken",
			Status:    resp.StatusCode,
			Body:      summarizeBody(body),
		}
	}

	var token struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &token); err != nil {
		return "", fmt.Errorf("ebay: decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("ebay: token response contained no access_token")
	}

	c.bearerToken = token.AccessToken
	// Refresh a minute early so in-flight requests never carry a stale token.
	c.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn)*time.Second - time.Minute)

	c.logger.Debug("[ebay] Authenticated — token valid until %s", c.tokenExpiry.Format(time.RFC3339))
	return c.bearerToken, nil
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.bearerToken = ""
	c.tokenExpiry = time.Time{}
	c.mu.Unlock()
}

func summarizeBody(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
