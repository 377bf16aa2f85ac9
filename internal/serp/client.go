// Package serp is the product-search gateway used for grounding and nudge
// resolution. Failures are carried inside Result rather than returned as
// errors so the pipeline can branch on them without exception-style flow.
package serp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://serpapi.com/search"

const (
	TypeWeb      = "search"
	TypeShopping = "shopping"
)

// ShoppingItem is one product hit from the shopping engine.
type ShoppingItem struct {
	Title             string  `json:"title"`
	Source            string  `json:"source"`
	Price             string  `json:"price"`
	Rating            float64 `json:"rating"`
	Reviews           int     `json:"reviews"`
	Thumbnail         string  `json:"thumbnail,omitempty"`
	Link              string  `json:"link,omitempty"`
	ProductLink       string  `json:"product_link,omitempty"`
	LocalAvailability string  `json:"local_availability,omitempty"`
}

// BestLink prefers the direct product link over the generic one.
func (i ShoppingItem) BestLink() string {
	if i.ProductLink != "" {
		return i.ProductLink
	}
	return i.Link
}

// OrganicItem is one web hit, used only as a grounding fallback.
type OrganicItem struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Result is the structured-or-error response of one search call.
type Result struct {
	ShoppingResults []ShoppingItem `json:"shopping_results,omitempty"`
	OrganicResults  []OrganicItem  `json:"organic_results,omitempty"`
	Err             string         `json:"error,omitempty"`
}

// Failed reports whether the call errored or was not configured.
func (r Result) Failed() bool { return r.Err != "" }

// Client talks to SerpApi. A small expirable LRU sits in front of the live
// endpoint; identical queries within the TTL reuse the cached response.
type Client struct {
	apiKey  string
	baseURL string
	hc      *http.Client
	cache   *expirable.LRU[string, Result]
	logger  *zap.Logger
}

func NewClient(apiKey string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		hc:      &http.Client{Timeout: 10 * time.Second},
		cache:   expirable.NewLRU[string, Result](128, nil, 5*time.Minute),
		logger:  logger,
	}
}

// SetBaseURL overrides the endpoint; tests point it at a local server.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

// Search runs one query against the given engine and location.
// The error path is a Result with Err set, never a Go error.
func (c *Client) Search(ctx context.Context, query, searchType, location string) Result {
	if c.apiKey == "" {
		return Result{Err: "SERP_API_KEY not configured"}
	}

	engine := "google"
	if searchType == TypeShopping {
		engine = "google_shopping"
	}
	cacheKey := engine + "|" + query + "|" + location
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("api_key", c.apiKey)
	params.Set("engine", engine)
	params.Set("location", location)
	params.Set("num", "5")
	params.Set("google_domain", "google.com")
	params.Set("gl", "us")
	params.Set("hl", "en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Result{Err: err.Error()}
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		c.logger.Warn("serp request failed", zap.String("query", query), zap.Error(err))
		return Result{Err: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("serp returned non-200", zap.String("query", query), zap.Int("status", resp.StatusCode))
		return Result{Err: "serp status " + resp.Status}
	}

	var out Result
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{Err: "decode serp response: " + err.Error()}
	}
	if !out.Failed() {
		c.cache.Add(cacheKey, out)
	}
	return out
}
