package favorites

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/angelmondragon/pantryshare-backend/internal/recipes"
	"github.com/angelmondragon/pantryshare-backend/pkg/docstore"
	pkgerrors "github.com/angelmondragon/pantryshare-backend/pkg/errors"
	"github.com/angelmondragon/pantryshare-backend/pkg/pagination"
	"github.com/angelmondragon/pantryshare-backend/pkg/types"
)

// mealPlanIndex finds the meal plans that reference a recipe.
type mealPlanIndex interface {
	ListIDsByRecipe(ctx context.Context, uid string, recipeID recipes.ID) ([]string, error)
}

type ServiceParams struct {
	Favorites *Repository
	MealPlans mealPlanIndex
	Clock     func() time.Time
}

// Service manages a user's favourite recipes.
type Service interface {
	List(ctx context.Context, uid string, limit int, cursor string) (*types.Page[Favorite], error)
	Get(ctx context.Context, uid string, recipeID recipes.ID) (*Favorite, error)
	Add(ctx context.Context, uid string, recipe recipes.Recipe) (*Favorite, error)
	Remove(ctx context.Context, uid string, recipeID recipes.ID) error
}

type service struct {
	repo      *Repository
	mealPlans mealPlanIndex
	clock     func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Favorites == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "favorites repo is required")
	}
	if params.MealPlans == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "meal plan index is required")
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &service{repo: params.Favorites, mealPlans: params.MealPlans, clock: clock}, nil
}

func (s *service) List(ctx context.Context, uid string, limit int, cursor string) (*types.Page[Favorite], error) {
	after, err := pagination.ParseCursor(strings.TrimSpace(cursor))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	items, err := s.repo.List(ctx, uid, pagination.LimitWithBuffer(limit), after)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list favorite recipes")
	}
	items, hasMore := pagination.Trim(items, limit)

	page := &types.Page[Favorite]{Items: items, Count: len(items), HasMore: hasMore}
	if len(items) > 0 {
		last := items[len(items)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{Key: last.Recipe.Title, ID: string(last.RecipeID)})
	}
	return page, nil
}

func (s *service) Get(ctx context.Context, uid string, recipeID recipes.ID) (*Favorite, error) {
	if err := recipeID.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid recipe id")
	}
	fav, err := s.repo.Get(ctx, uid, recipeID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "favorite recipe not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load favorite recipe")
	}
	return fav, nil
}

// Add saves the recipe as a favourite. Meal plans that already use the recipe
// are linked immediately so planned starts out correct.
func (s *service) Add(ctx context.Context, uid string, recipe recipes.Recipe) (*Favorite, error) {
	if err := recipe.ID.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid recipe id")
	}
	if strings.TrimSpace(recipe.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipe title is required")
	}

	createdAt := s.clock().UTC()
	if existing, err := s.repo.Get(ctx, uid, recipe.ID); err == nil {
		createdAt = existing.CreatedAt
	} else if !errors.Is(err, docstore.ErrNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load favorite recipe")
	}

	mealIDs, err := s.mealPlans.ListIDsByRecipe(ctx, uid, recipe.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list meal plans for recipe")
	}
	if mealIDs == nil {
		mealIDs = []string{}
	}

	fav := Favorite{
		RecipeID:  recipe.ID,
		Recipe:    recipe,
		Planned:   len(mealIDs) > 0,
		MealPlans: mealIDs,
		CreatedAt: createdAt,
	}
	if err := s.repo.Save(ctx, uid, fav); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save favorite recipe")
	}
	return &fav, nil
}

func (s *service) Remove(ctx context.Context, uid string, recipeID recipes.ID) error {
	if _, err := s.Get(ctx, uid, recipeID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, uid, recipeID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete favorite recipe")
	}
	return nil
}
