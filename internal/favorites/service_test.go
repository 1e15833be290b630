package favorites

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/angelmondragon/pantryshare-backend/internal/recipes"
	"github.com/angelmondragon/pantryshare-backend/pkg/docstore/memory"
	pkgerrors "github.com/angelmondragon/pantryshare-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubIndex map[recipes.ID][]string

func (s stubIndex) ListIDsByRecipe(_ context.Context, _ string, id recipes.ID) ([]string, error) {
	return s[id], nil
}

func newTestService(t *testing.T, index stubIndex) (Service, *Repository) {
	t.Helper()
	repo := NewRepository(memory.New())
	svc, err := NewService(ServiceParams{
		Favorites: repo,
		MealPlans: index,
		Clock:     func() time.Time { return time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return svc, repo
}

func TestAddComputesPlanned(t *testing.T) {
	svc, _ := newTestService(t, stubIndex{"7": {"m1"}})
	ctx := context.Background()

	planned, err := svc.Add(ctx, "u1", recipes.Recipe{ID: "7", Title: "Lasagna"})
	require.NoError(t, err)
	assert.True(t, planned.Planned)
	assert.Equal(t, []string{"m1"}, planned.MealPlans)

	unplanned, err := svc.Add(ctx, "u1", recipes.Recipe{ID: "8", Title: "Soup"})
	require.NoError(t, err)
	assert.False(t, unplanned.Planned)
	assert.Empty(t, unplanned.MealPlans)
}

func TestAddValidates(t *testing.T) {
	svc, _ := newTestService(t, stubIndex{})
	_, err := svc.Add(context.Background(), "u1", recipes.Recipe{ID: "", Title: "x"})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
	_, err = svc.Add(context.Background(), "u1", recipes.Recipe{ID: "1"})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestRemoveMissingIsNotFound(t *testing.T) {
	svc, _ := newTestService(t, stubIndex{})
	err := svc.Remove(context.Background(), "u1", "99")
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestLinkAndUnlinkKeepPlannedInStep(t *testing.T) {
	svc, repo := newTestService(t, stubIndex{})
	ctx := context.Background()
	_, err := svc.Add(ctx, "u1", recipes.Recipe{ID: "7", Title: "Lasagna"})
	require.NoError(t, err)

	require.NoError(t, repo.LinkMealPlan(ctx, "u1", "7", "m1"))
	require.NoError(t, repo.LinkMealPlan(ctx, "u1", "7", "m2"))
	require.NoError(t, repo.UnlinkMealPlan(ctx, "u1", "7", "m1"))

	fav, err := svc.Get(ctx, "u1", "7")
	require.NoError(t, err)
	assert.True(t, fav.Planned)
	assert.Equal(t, []string{"m2"}, fav.MealPlans)

	require.NoError(t, repo.UnlinkMealPlan(ctx, "u1", "7", "m2"))
	fav, err = svc.Get(ctx, "u1", "7")
	require.NoError(t, err)
	assert.False(t, fav.Planned)
	assert.Equal(t, "Lasagna", fav.Recipe.Title)

	assert.NoError(t, repo.UnlinkMealPlan(ctx, "u1", "missing", "m1"))
}

func TestListPaginatesByTitle(t *testing.T) {
	svc, _ := newTestService(t, stubIndex{})
	ctx := context.Background()
	for i, title := range []string{"Chili", "Apple pie", "Burger"} {
		_, err := svc.Add(ctx, "u1", recipes.Recipe{ID: recipes.ID(fmt.Sprint(i + 1)), Title: title})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, "u1", 2, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, "Apple pie", page.Items[0].Recipe.Title)
	assert.Equal(t, "Burger", page.Items[1].Recipe.Title)

	next, err := svc.List(ctx, "u1", 2, page.NextCursor)
	require.NoError(t, err)
	require.Len(t, next.Items, 1)
	assert.False(t, next.HasMore)
	assert.Equal(t, "Chili", next.Items[0].Recipe.Title)
	require.NotEmpty(t, next.NextCursor)

	last, err := svc.List(ctx, "u1", 2, next.NextCursor)
	require.NoError(t, err)
	assert.Empty(t, last.Items)
	assert.False(t, last.HasMore)
}
