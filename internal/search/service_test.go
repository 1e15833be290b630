package search

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pantryshare-backend/internal/ingredients"
	"github.com/angelmondragon/pantryshare-backend/internal/recipes"
	pkgerrors "github.com/angelmondragon/pantryshare-backend/pkg/errors"
	"github.com/angelmondragon/pantryshare-backend/pkg/logger"
	"github.com/angelmondragon/pantryshare-backend/pkg/metrics"
	"github.com/angelmondragon/pantryshare-backend/pkg/recipeapi"
)

type fakeProvider struct {
	err         error
	ingredients []string
	ranking     recipeapi.Ranking
	offset      int
	number      int
	calls       int
}

func (p *fakeProvider) SearchByKeyword(_ context.Context, query string, offset, number int) (*recipeapi.SearchResult, error) {
	p.calls++
	p.offset, p.number = offset, number
	if p.err != nil {
		return nil, p.err
	}
	return &recipeapi.SearchResult{
		Results:      []recipeapi.Recipe{{ID: 7, Title: query + " soup", Ingredients: []string{"water"}}},
		TotalResults: 42,
	}, nil
}

func (p *fakeProvider) SearchByIngredients(_ context.Context, names []string, ranking recipeapi.Ranking, offset, number int) (*recipeapi.SearchResult, error) {
	p.calls++
	p.ingredients, p.ranking, p.offset, p.number = names, ranking, offset, number
	if p.err != nil {
		return nil, p.err
	}
	return &recipeapi.SearchResult{
		Results: []recipeapi.Recipe{{
			ID:                    9,
			Title:                 "Omelette",
			UsedIngredientCount:   1,
			MissedIngredientCount: 1,
			UsedIngredients:       []string{"eggs"},
			MissedIngredients:     []string{"cheese"},
		}},
		TotalResults: 1,
	}, nil
}

func (p *fakeProvider) GetRecipe(_ context.Context, id int64) (*recipeapi.Recipe, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &recipeapi.Recipe{ID: id, Title: "Stew"}, nil
}

type fakePantry struct {
	entries []ingredients.PantryEntry
	err     error
}

func (p fakePantry) ListAllPantry(context.Context, string) ([]ingredients.PantryEntry, error) {
	return p.entries, p.err
}

func newService(t *testing.T, provider Provider, pantry PantrySource) (Service, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
	svc, err := NewService(ServiceParams{
		Provider: provider,
		Pantry:   pantry,
		Logger:   logg,
		Metrics:  metrics.NewSideEffectMetrics(reg),
	})
	require.NoError(t, err)
	return svc, reg
}

func TestSearchByKeywordPages(t *testing.T) {
	provider := &fakeProvider{}
	svc, _ := newService(t, provider, fakePantry{})

	res, err := svc.SearchByKeyword(context.Background(), " tomato ", 3, 20)
	require.NoError(t, err)
	assert.Equal(t, 40, provider.offset)
	assert.Equal(t, 20, provider.number)
	assert.Equal(t, 3, res.Page)
	assert.Equal(t, 42, res.TotalResults)
	require.Len(t, res.Recipes, 1)
	assert.Equal(t, recipes.ID("7"), res.Recipes[0].ID)
	assert.Equal(t, "tomato soup", res.Recipes[0].Title)
	assert.False(t, res.Degraded)

	_, err = svc.SearchByKeyword(context.Background(), "  ", 1, 10)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestSearchFromPantryUsesRanking(t *testing.T) {
	provider := &fakeProvider{}
	pantry := fakePantry{entries: []ingredients.PantryEntry{{IngredientName: "eggs"}, {IngredientName: "milk"}}}
	svc, _ := newService(t, provider, pantry)
	ctx := context.Background()

	res, err := svc.SearchMostMatching(ctx, "u1", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, recipeapi.RankMaxUsed, provider.ranking)
	assert.Equal(t, []string{"eggs", "milk"}, provider.ingredients)
	assert.Equal(t, 0, provider.offset)
	assert.Equal(t, defaultLimit, provider.number)
	require.Len(t, res.Recipes, 1)
	assert.Equal(t, []string{"eggs", "cheese"}, res.Recipes[0].Ingredients)

	_, err = svc.SearchLeastMissing(ctx, "u1", 2, 5)
	require.NoError(t, err)
	assert.Equal(t, recipeapi.RankMinMissing, provider.ranking)
	assert.Equal(t, 5, provider.offset)
}

func TestEmptyPantrySkipsProvider(t *testing.T) {
	provider := &fakeProvider{}
	svc, _ := newService(t, provider, fakePantry{})

	res, err := svc.SearchMostMatching(context.Background(), "u1", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, res.Recipes)
	assert.False(t, res.Degraded)
	assert.Zero(t, provider.calls)
}

func TestProviderFailureDegrades(t *testing.T) {
	provider := &fakeProvider{err: pkgerrors.New(pkgerrors.CodeUpstream, "down")}
	svc, reg := newService(t, provider, fakePantry{})

	res, err := svc.SearchMostMatchingFor(context.Background(), []string{"eggs", "eggs"}, 1, 10)
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.NotNil(t, res.Recipes)
	assert.Empty(t, res.Recipes)
	assert.Equal(t, []string{"eggs", "eggs"}, provider.ingredients)

	count, err := testutil.GatherAndCount(reg, "side_effects_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNilProviderDegrades(t *testing.T) {
	svc, _ := newService(t, nil, fakePantry{})
	res, err := svc.SearchByKeyword(context.Background(), "soup", 1, 10)
	require.NoError(t, err)
	assert.True(t, res.Degraded)

	_, err = svc.GetRecipe(context.Background(), "12")
	assert.Equal(t, pkgerrors.CodeUpstream, pkgerrors.CodeOf(err))
}

func TestPantryFailureSurfaces(t *testing.T) {
	svc, _ := newService(t, &fakeProvider{}, fakePantry{err: errors.New("store down")})
	_, err := svc.SearchMostMatching(context.Background(), "u1", 1, 10)
	assert.Equal(t, pkgerrors.CodeInternal, pkgerrors.CodeOf(err))
}

func TestGetRecipe(t *testing.T) {
	provider := &fakeProvider{}
	svc, _ := newService(t, provider, fakePantry{})
	ctx := context.Background()

	recipe, err := svc.GetRecipe(ctx, "12")
	require.NoError(t, err)
	assert.Equal(t, "Stew", recipe.Title)

	_, err = svc.GetRecipe(ctx, "abc")
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	provider.err = pkgerrors.New(pkgerrors.CodeUpstream, "information request failed").
		WithDetails(map[string]any{"status": 404})
	_, err = svc.GetRecipe(ctx, "12")
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	provider.err = pkgerrors.New(pkgerrors.CodeUpstream, "information request failed").
		WithDetails(map[string]any{"status": 500})
	_, err = svc.GetRecipe(ctx, "12")
	assert.Equal(t, pkgerrors.CodeUpstream, pkgerrors.CodeOf(err))
}
