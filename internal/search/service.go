// Package search adapts the external recipe provider to the app's recipe
// shape. Search failures degrade to an empty page so the UI keeps working
// when the provider is down.
package search

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/pantryshare-backend/internal/ingredients"
	"github.com/angelmondragon/pantryshare-backend/internal/recipes"
	pkgerrors "github.com/angelmondragon/pantryshare-backend/pkg/errors"
	"github.com/angelmondragon/pantryshare-backend/pkg/logger"
	"github.com/angelmondragon/pantryshare-backend/pkg/metrics"
	"github.com/angelmondragon/pantryshare-backend/pkg/recipeapi"
)

const (
	defaultLimit = 10
	maxLimit     = 100

	kindKeyword      = "search_keyword"
	kindMostMatching = "search_most_matching"
	kindLeastMissing = "search_least_missing"
)

// Provider is the subset of the recipe API client the gateway calls.
type Provider interface {
	SearchByKeyword(ctx context.Context, query string, offset, number int) (*recipeapi.SearchResult, error)
	SearchByIngredients(ctx context.Context, ingredients []string, ranking recipeapi.Ranking, offset, number int) (*recipeapi.SearchResult, error)
	GetRecipe(ctx context.Context, id int64) (*recipeapi.Recipe, error)
}

// PantrySource lists the ingredients a user has on hand.
type PantrySource interface {
	ListAllPantry(ctx context.Context, uid string) ([]ingredients.PantryEntry, error)
}

// Results is one page of recipe search results.
type Results struct {
	Recipes      []recipes.Recipe `json:"recipes"`
	Page         int              `json:"page"`
	Limit        int              `json:"limit"`
	TotalResults int              `json:"totalResults"`
	Degraded     bool             `json:"degraded,omitempty"`
}

type ServiceParams struct {
	Provider Provider
	Pantry   PantrySource
	Logger   *logger.Logger
	Metrics  *metrics.SideEffectMetrics
}

type Service interface {
	SearchByKeyword(ctx context.Context, query string, page, limit int) (*Results, error)
	SearchMostMatching(ctx context.Context, uid string, page, limit int) (*Results, error)
	SearchLeastMissing(ctx context.Context, uid string, page, limit int) (*Results, error)
	SearchMostMatchingFor(ctx context.Context, names []string, page, limit int) (*Results, error)
	GetRecipe(ctx context.Context, id recipes.ID) (*recipes.Recipe, error)
}

type service struct {
	provider Provider
	pantry   PantrySource
	logg     *logger.Logger
	metrics  *metrics.SideEffectMetrics
}

// NewService builds the gateway. A nil provider is allowed: searches then
// always return degraded empty pages.
func NewService(params ServiceParams) (Service, error) {
	if params.Pantry == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pantry source is required")
	}
	return &service{
		provider: params.Provider,
		pantry:   params.Pantry,
		logg:     params.Logger,
		metrics:  params.Metrics,
	}, nil
}

func (s *service) SearchByKeyword(ctx context.Context, query string, page, limit int) (*Results, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query is required")
	}
	page, limit = normalizePage(page, limit)
	if s.provider == nil {
		return s.degraded(ctx, kindKeyword, page, limit, nil), nil
	}
	res, err := s.provider.SearchByKeyword(ctx, query, offset(page, limit), limit)
	if err != nil {
		return s.degraded(ctx, kindKeyword, page, limit, err), nil
	}
	return toResults(res, page, limit), nil
}

func (s *service) SearchMostMatching(ctx context.Context, uid string, page, limit int) (*Results, error) {
	names, err := s.onHand(ctx, uid)
	if err != nil {
		return nil, err
	}
	return s.byIngredients(ctx, kindMostMatching, names, recipeapi.RankMaxUsed, page, limit), nil
}

func (s *service) SearchLeastMissing(ctx context.Context, uid string, page, limit int) (*Results, error) {
	names, err := s.onHand(ctx, uid)
	if err != nil {
		return nil, err
	}
	return s.byIngredients(ctx, kindLeastMissing, names, recipeapi.RankMinMissing, page, limit), nil
}

// SearchMostMatchingFor ranks by an explicit ingredient list. Duplicates are
// passed through.
func (s *service) SearchMostMatchingFor(ctx context.Context, names []string, page, limit int) (*Results, error) {
	return s.byIngredients(ctx, kindMostMatching, names, recipeapi.RankMaxUsed, page, limit), nil
}

// GetRecipe looks up full recipe information. Unlike searches this does not
// degrade: callers need to know the recipe is unavailable.
func (s *service) GetRecipe(ctx context.Context, id recipes.ID) (*recipes.Recipe, error) {
	numeric, ok := id.Int64()
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipe id must be numeric")
	}
	if s.provider == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUpstream, "recipe provider not configured")
	}
	raw, err := s.provider.GetRecipe(ctx, numeric)
	if err != nil {
		if upstreamStatus(err) == http.StatusNotFound {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "recipe not found")
		}
		if pkgerrors.CodeOf(err) == pkgerrors.CodeInternal {
			return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "fetch recipe")
		}
		return nil, err
	}
	recipe := recipes.FromAPI(*raw)
	return &recipe, nil
}

func (s *service) byIngredients(ctx context.Context, kind string, names []string, ranking recipeapi.Ranking, page, limit int) *Results {
	page, limit = normalizePage(page, limit)
	cleaned := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			cleaned = append(cleaned, n)
		}
	}
	if len(cleaned) == 0 {
		return &Results{Recipes: []recipes.Recipe{}, Page: page, Limit: limit}
	}
	if s.provider == nil {
		return s.degraded(ctx, kind, page, limit, nil)
	}
	res, err := s.provider.SearchByIngredients(ctx, cleaned, ranking, offset(page, limit), limit)
	if err != nil {
		return s.degraded(ctx, kind, page, limit, err)
	}
	return toResults(res, page, limit)
}

func (s *service) onHand(ctx context.Context, uid string) ([]string, error) {
	entries, err := s.pantry.ListAllPantry(ctx, uid)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list pantry")
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.IngredientName)
	}
	return names, nil
}

func (s *service) degraded(ctx context.Context, kind string, page, limit int, err error) *Results {
	s.metrics.Inc(kind, metrics.OutcomeDegraded)
	if s.logg != nil {
		ctx = s.logg.WithField(ctx, "search", kind)
		if err != nil {
			s.logg.Error(ctx, "search.upstream.degraded", err)
		} else {
			s.logg.Warn(ctx, "search.upstream.degraded")
		}
	}
	return &Results{Recipes: []recipes.Recipe{}, Page: page, Limit: limit, Degraded: true}
}

func toResults(res *recipeapi.SearchResult, page, limit int) *Results {
	out := &Results{Recipes: []recipes.Recipe{}, Page: page, Limit: limit}
	if res == nil {
		return out
	}
	for _, r := range res.Results {
		out.Recipes = append(out.Recipes, recipes.FromAPI(r))
	}
	out.TotalResults = res.TotalResults
	return out
}

// normalizePage makes page 1-based and clamps limit.
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

func offset(page, limit int) int {
	return (page - 1) * limit
}

func upstreamStatus(err error) int {
	typed := pkgerrors.As(err)
	if typed == nil {
		return 0
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		return 0
	}
	status, _ := details["status"].(int)
	return status
}
