package mealplans

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/pantryshare-backend/internal/favorites"
	"github.com/angelmondragon/pantryshare-backend/internal/ingredients"
	"github.com/angelmondragon/pantryshare-backend/internal/recipes"
	"github.com/angelmondragon/pantryshare-backend/internal/reminders"
	"github.com/angelmondragon/pantryshare-backend/pkg/docstore"
	"github.com/angelmondragon/pantryshare-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pantryshare-backend/pkg/errors"
	"github.com/angelmondragon/pantryshare-backend/pkg/logger"
	"github.com/angelmondragon/pantryshare-backend/pkg/pagination"
	"github.com/angelmondragon/pantryshare-backend/pkg/types"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

const resolveFanout = 8

// RecipeSource fetches recipe metadata that is missing from the catalog.
type RecipeSource interface {
	GetRecipe(ctx context.Context, id recipes.ID) (*recipes.Recipe, error)
}

// ServiceParams groups dependencies for the meal plan coordinator.
type ServiceParams struct {
	MealPlans    *Repository
	Ingredients  *ingredients.Repository
	Recipes      *recipes.Repository
	Favorites    *favorites.Repository
	RecipeSource RecipeSource
	Reminders    *reminders.SideEffects
	Logger       *logger.Logger
	Clock        func() time.Time
	NewID        func() string
}

// Service coordinates meal plans with the pantry, the shopping list and
// favourite recipes. Writes are sequenced as a primary document write
// followed by dependent back-reference writes; a dependent failure is
// reported without undoing the primary write.
type Service interface {
	GetMealPlan(ctx context.Context, uid string, limit int, cursor string) (*types.Page[ResolvedMealPlan], error)
	GetMealByID(ctx context.Context, uid, mealID string) (*ResolvedMealPlan, error)
	AddRecipeToMealPlan(ctx context.Context, uid string, input AddInput) (*MealPlan, error)
	RemoveRecipeFromMealPlan(ctx context.Context, uid, mealID string) error
	Reconcile(ctx context.Context, uid string) (*ReconcileReport, error)
}

type service struct {
	mealPlans   *Repository
	ingredients *ingredients.Repository
	recipes     *recipes.Repository
	favorites   *favorites.Repository
	source      RecipeSource
	reminders   *reminders.SideEffects
	logg        *logger.Logger
	clock       func() time.Time
	newID       func() string
}

func NewService(params ServiceParams) (Service, error) {
	if params.MealPlans == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "meal plan repo is required")
	}
	if params.Ingredients == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ingredient repo is required")
	}
	if params.Recipes == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipe repo is required")
	}
	if params.Favorites == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "favorites repo is required")
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	newID := params.NewID
	if newID == nil {
		newID = func() string { return uuid.NewString() }
	}
	return &service{
		mealPlans:   params.MealPlans,
		ingredients: params.Ingredients,
		recipes:     params.Recipes,
		favorites:   params.Favorites,
		source:      params.RecipeSource,
		reminders:   params.Reminders,
		logg:        params.Logger,
		clock:       clock,
		newID:       newID,
	}, nil
}

func (s *service) GetMealPlan(ctx context.Context, uid string, limit int, cursor string) (*types.Page[ResolvedMealPlan], error) {
	after, err := pagination.ParseCursor(strings.TrimSpace(cursor))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	plans, err := s.mealPlans.List(ctx, uid, pagination.LimitWithBuffer(limit), after)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list meal plans")
	}
	plans, hasMore := pagination.Trim(plans, limit)

	items := make([]ResolvedMealPlan, len(plans))
	var g errgroup.Group
	g.SetLimit(resolveFanout)
	for i, plan := range plans {
		g.Go(func() error {
			items[i] = s.resolve(ctx, plan)
			return nil
		})
	}
	_ = g.Wait()

	page := &types.Page[ResolvedMealPlan]{Items: items, Count: len(items), HasMore: hasMore}
	if len(plans) > 0 {
		last := plans[len(plans)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{Key: last.Date, ID: last.MealID})
	}
	return page, nil
}

func (s *service) GetMealByID(ctx context.Context, uid, mealID string) (*ResolvedMealPlan, error) {
	plan, err := s.load(ctx, uid, mealID)
	if err != nil {
		return nil, err
	}
	resolved := s.resolve(ctx, *plan)
	return &resolved, nil
}

func (s *service) load(ctx context.Context, uid, mealID string) (*MealPlan, error) {
	if err := docstore.ValidateID(mealID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid meal id")
	}
	plan, err := s.mealPlans.Get(ctx, uid, mealID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "meal plan not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load meal plan")
	}
	return plan, nil
}

func (s *service) resolve(ctx context.Context, plan MealPlan) ResolvedMealPlan {
	out := ResolvedMealPlan{MealPlan: plan}
	recipe, err := s.recipes.Get(ctx, plan.RecipeID)
	if err == nil {
		out.Recipe = recipe
		return out
	}

	if errors.Is(err, docstore.ErrNotFound) && s.source != nil {
		fetched, fetchErr := s.source.GetRecipe(ctx, plan.RecipeID)
		if fetchErr == nil && fetched != nil {
			if saveErr := s.recipes.Save(ctx, *fetched); saveErr != nil && s.logg != nil {
				s.logg.Warn(s.logg.WithField(ctx, "recipe_id", string(plan.RecipeID)), "mealplan.recipe.cache_failed")
			}
			out.Recipe = fetched
			return out
		}
		if fetchErr != nil && !pkgerrors.IsCode(fetchErr, pkgerrors.CodeNotFound) {
			err = fetchErr
		}
	}

	if errors.Is(err, docstore.ErrNotFound) || pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		out.RecipeError = "recipe not found"
	} else {
		out.RecipeError = "recipe unavailable"
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{"meal_id": plan.MealID, "recipe_id": string(plan.RecipeID)})
		s.logg.Warn(logCtx, "mealplan.recipe.unresolved")
	}
	return out
}

// AddRecipeToMealPlan schedules a recipe and links every ingredient entry,
// creating pantry or shopping-list entries that do not exist yet.
func (s *service) AddRecipeToMealPlan(ctx context.Context, uid string, input AddInput) (*MealPlan, error) {
	recipe := input.Recipe
	if err := recipe.ID.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid recipe id")
	}
	date, err := NormalizeDate(input.Date)
	if err != nil {
		return nil, err
	}
	pantryNames, shoppingNames, err := splitIngredients(input.Ingredients)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(recipe.Title) != "" {
		if err := s.recipes.Save(ctx, recipe); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save recipe")
		}
	}

	existingPantry := make(map[string]bool, len(pantryNames))
	var frozen []string
	for _, name := range pantryNames {
		entry, err := s.ingredients.GetPantry(ctx, uid, name)
		switch {
		case err == nil:
			existingPantry[name] = true
			if entry.Frozen {
				frozen = append(frozen, name)
			}
		case errors.Is(err, docstore.ErrNotFound):
		default:
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load pantry entry")
		}
	}
	existingShopping := make(map[string]bool, len(shoppingNames))
	for _, name := range shoppingNames {
		ok, err := s.ingredients.Exists(ctx, enums.IngredientListShoppingList, uid, name)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load shopping list entry")
		}
		existingShopping[name] = ok
	}

	now := s.clock().UTC()
	plan := MealPlan{
		MealID:                  s.newID(),
		RecipeID:                recipe.ID,
		PantryIngredients:       pantryNames,
		ShoppingListIngredients: shoppingNames,
		FrozenIngredients:       nonNil(frozen),
		Date:                    date,
		CreatedAt:               now,
	}
	if err := s.mealPlans.Save(ctx, uid, plan); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save meal plan")
	}

	var errs error
	for _, name := range pantryNames {
		if existingPantry[name] {
			err := s.ingredients.LinkMealPlan(ctx, enums.IngredientListPantry, uid, name, plan.MealID)
			if err == nil {
				continue
			}
			if !errors.Is(err, docstore.ErrNotFound) {
				errs = multierr.Append(errs, fmt.Errorf("link pantry %q: %w", name, err))
				continue
			}
		}
		entry := ingredients.PantryEntry{IngredientName: name, PurchaseDate: &now, MealPlans: []string{plan.MealID}}
		if err := s.ingredients.SavePantry(ctx, uid, entry); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("create pantry %q: %w", name, err))
		}
	}
	for _, name := range shoppingNames {
		if existingShopping[name] {
			err := s.ingredients.LinkMealPlan(ctx, enums.IngredientListShoppingList, uid, name, plan.MealID)
			if err == nil {
				continue
			}
			if !errors.Is(err, docstore.ErrNotFound) {
				errs = multierr.Append(errs, fmt.Errorf("link shopping list %q: %w", name, err))
				continue
			}
		}
		entry := ingredients.ShoppingListEntry{IngredientName: name, MealPlans: []string{plan.MealID}}
		entry.BuyTaskID = s.reminders.CreateTask(ctx, reminders.KindBuyTask, reminders.Task{Title: reminders.BuyTitle(name)})
		if err := s.ingredients.SaveShopping(ctx, uid, entry); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("create shopping list %q: %w", name, err))
		}
	}

	if err := s.favorites.LinkMealPlan(ctx, uid, recipe.ID, plan.MealID); err != nil && !errors.Is(err, docstore.ErrNotFound) {
		errs = multierr.Append(errs, fmt.Errorf("link favorite: %w", err))
	}

	summary := strings.TrimSpace(recipe.Title)
	if summary == "" {
		summary = "Meal plan"
	}
	if eventID := s.reminders.CreateEvent(ctx, reminders.Event{Summary: summary, Date: date}); eventID != "" {
		if err := s.mealPlans.SetEventID(ctx, uid, plan.MealID, eventID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("record calendar event: %w", err))
		} else {
			plan.EventID = eventID
		}
	}

	if errs != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, errs, "meal plan saved with incomplete links").
			WithDetails(map[string]any{"mealId": plan.MealID})
	}
	return &plan, nil
}

// RemoveRecipeFromMealPlan deletes the meal plan and strips its id from the
// favourite and every ingredient entry. Entries themselves are kept.
func (s *service) RemoveRecipeFromMealPlan(ctx context.Context, uid, mealID string) error {
	plan, err := s.load(ctx, uid, mealID)
	if err != nil {
		return err
	}
	if err := s.mealPlans.Delete(ctx, uid, mealID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete meal plan")
	}

	var errs error
	if err := s.favorites.UnlinkMealPlan(ctx, uid, plan.RecipeID, mealID); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("unlink favorite: %w", err))
	}
	for _, name := range plan.PantryIngredients {
		if err := s.ingredients.UnlinkMealPlan(ctx, enums.IngredientListPantry, uid, name, mealID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("unlink pantry %q: %w", name, err))
		}
	}
	for _, name := range plan.ShoppingListIngredients {
		if err := s.ingredients.UnlinkMealPlan(ctx, enums.IngredientListShoppingList, uid, name, mealID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("unlink shopping list %q: %w", name, err))
		}
	}
	s.reminders.DeleteEvent(ctx, plan.EventID)

	if errs != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, errs, "meal plan removed with incomplete unlinks").
			WithDetails(map[string]any{"mealId": mealID})
	}
	return nil
}

// splitIngredients validates names and drops repeats. The first occurrence
// of a name decides which list it belongs to.
func splitIngredients(in []IngredientInput) (pantry, shopping []string, err error) {
	pantry, shopping = []string{}, []string{}
	seen := make(map[string]struct{}, len(in))
	for _, item := range in {
		name, err := ingredients.NormalizeName(item.Name)
		if err != nil {
			return nil, nil, err
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		if item.InPantry {
			pantry = append(pantry, name)
		} else {
			shopping = append(shopping, name)
		}
	}
	return pantry, shopping, nil
}
