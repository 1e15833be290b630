// Package recipeapi is a client for a Spoonacular-compatible recipe search API.
package recipeapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	pkgerrors "github.com/angelmondragon/pantryshare-backend/pkg/errors"
	"github.com/angelmondragon/pantryshare-backend/pkg/metrics"
)

const (
	defaultBaseURL = "https://api.spoonacular.com"
	providerName   = "recipeapi"

	responseBodyReadLimit int64 = 4 << 20
	errorBodyReadLimit    int64 = 1024
)

var errAPIKeyRequired = errors.New("recipe api key is required")

// Ranking selects how ingredient searches are sorted.
type Ranking string

const (
	RankMaxUsed    Ranking = "max-used-ingredients"
	RankMinMissing Ranking = "min-missing-ingredients"
)

// Client wraps the recipe search endpoints used by the pantry app.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	metrics    *metrics.ExternalCallMetrics
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the provider base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithRateLimit caps outbound requests; the provider bills per call.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond > 0 {
			if burst <= 0 {
				burst = 1
			}
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

func WithMetrics(m *metrics.ExternalCallMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient builds the recipe client given an API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}

	client := &Client{
		apiKey:     trimmedKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// Recipe is the normalized recipe payload returned by every endpoint.
type Recipe struct {
	ID                    int64    `json:"id"`
	Title                 string   `json:"title"`
	Image                 string   `json:"image,omitempty"`
	SourceURL             string   `json:"sourceUrl,omitempty"`
	ReadyInMinutes        int      `json:"readyInMinutes,omitempty"`
	Servings              int      `json:"servings,omitempty"`
	UsedIngredientCount   int      `json:"usedIngredientCount"`
	MissedIngredientCount int      `json:"missedIngredientCount"`
	UsedIngredients       []string `json:"usedIngredients,omitempty"`
	MissedIngredients     []string `json:"missedIngredients,omitempty"`
	Ingredients           []string `json:"ingredients,omitempty"`
}

// SearchResult is one page of search results.
type SearchResult struct {
	Results      []Recipe `json:"results"`
	Offset       int      `json:"offset"`
	Number       int      `json:"number"`
	TotalResults int      `json:"totalResults"`
}

// SearchByKeyword runs a free-text recipe search.
func (c *Client) SearchByKeyword(ctx context.Context, query string, offset, number int) (*SearchResult, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUpstream, "recipe client not configured")
	}
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query is required")
	}

	params := url.Values{}
	params.Set("query", trimmed)
	params.Set("addRecipeInformation", "true")
	params.Set("fillIngredients", "true")
	setPage(params, offset, number)

	body, err := c.get(ctx, "complexSearch", "recipes/complexSearch", params)
	if err != nil {
		return nil, err
	}
	return parseSearch(body)
}

// SearchByIngredients ranks recipes against the supplied ingredient names.
func (c *Client) SearchByIngredients(ctx context.Context, ingredients []string, ranking Ranking, offset, number int) (*SearchResult, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUpstream, "recipe client not configured")
	}
	names := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		if trimmed := strings.TrimSpace(ing); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	if len(names) == 0 {
		return &SearchResult{Results: []Recipe{}, Offset: offset, Number: number}, nil
	}
	if ranking == "" {
		ranking = RankMaxUsed
	}

	params := url.Values{}
	params.Set("includeIngredients", strings.Join(names, ","))
	params.Set("sort", string(ranking))
	params.Set("addRecipeInformation", "true")
	params.Set("fillIngredients", "true")
	params.Set("ignorePantry", "true")
	setPage(params, offset, number)

	body, err := c.get(ctx, "ingredientSearch", "recipes/complexSearch", params)
	if err != nil {
		return nil, err
	}
	return parseSearch(body)
}

// GetRecipe fetches the full information for one recipe.
func (c *Client) GetRecipe(ctx context.Context, id int64) (*Recipe, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUpstream, "recipe client not configured")
	}
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipe id must be positive")
	}

	body, err := c.get(ctx, "information", fmt.Sprintf("recipes/%d/information", id), url.Values{})
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, pkgerrors.New(pkgerrors.CodeUpstream, "recipe information response is not valid json")
	}
	recipe := parseRecipe(gjson.ParseBytes(body))
	return &recipe, nil
}

func (c *Client) get(ctx context.Context, operation, path string, params url.Values) (body []byte, err error) {
	start := time.Now()
	defer func() { c.metrics.Observe(providerName, operation, time.Since(start), err) }()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "recipe api rate limit wait")
		}
	}

	params.Set("apiKey", c.apiKey)
	endpoint := fmt.Sprintf("%s/%s?%s", strings.TrimRight(c.baseURL, "/"), strings.TrimLeft(path, "/"), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "build recipe request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "execute recipe request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), operation+" request failed").
			WithDetails(map[string]any{"status": resp.StatusCode})
	}

	body, err = io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "read recipe response")
	}
	return body, nil
}

func setPage(params url.Values, offset, number int) {
	if offset < 0 {
		offset = 0
	}
	if number <= 0 {
		number = 10
	}
	params.Set("offset", strconv.Itoa(offset))
	params.Set("number", strconv.Itoa(number))
}

func parseSearch(body []byte) (*SearchResult, error) {
	if !gjson.ValidBytes(body) {
		return nil, pkgerrors.New(pkgerrors.CodeUpstream, "recipe search response is not valid json")
	}
	root := gjson.ParseBytes(body)

	items := root.Get("results").Array()
	out := &SearchResult{
		Results:      make([]Recipe, 0, len(items)),
		Offset:       int(root.Get("offset").Int()),
		Number:       int(root.Get("number").Int()),
		TotalResults: int(root.Get("totalResults").Int()),
	}
	for _, item := range items {
		out.Results = append(out.Results, parseRecipe(item))
	}
	return out, nil
}

func parseRecipe(v gjson.Result) Recipe {
	return Recipe{
		ID:                    v.Get("id").Int(),
		Title:                 v.Get("title").String(),
		Image:                 v.Get("image").String(),
		SourceURL:             v.Get("sourceUrl").String(),
		ReadyInMinutes:        int(v.Get("readyInMinutes").Int()),
		Servings:              int(v.Get("servings").Int()),
		UsedIngredientCount:   int(v.Get("usedIngredientCount").Int()),
		MissedIngredientCount: int(v.Get("missedIngredientCount").Int()),
		UsedIngredients:       names(v.Get("usedIngredients.#.name")),
		MissedIngredients:     names(v.Get("missedIngredients.#.name")),
		Ingredients:           names(v.Get("extendedIngredients.#.name")),
	}
}

func names(list gjson.Result) []string {
	arr := list.Array()
	if len(arr) == 0 {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, n := range arr {
		if s := strings.TrimSpace(n.String()); s != "" {
			out = append(out, s)
		}
	}
	return out
}
