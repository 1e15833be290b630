package mealplans

import (
	"context"
	"fmt"
	"slices"

	"github.com/angelmondragon/pantryshare-backend/internal/ingredients"
	"github.com/angelmondragon/pantryshare-backend/internal/recipes"
	"github.com/angelmondragon/pantryshare-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pantryshare-backend/pkg/errors"
	"go.uber.org/multierr"
)

// Reconcile rebuilds every back-reference from the meal plan documents, which
// are the source of truth: pantry and shopping-list mealPlans sets, each
// favourite's mealPlans and planned flag, and each meal plan's frozen list.
// Running it twice changes nothing the second time.
func (s *service) Reconcile(ctx context.Context, uid string) (*ReconcileReport, error) {
	plans, err := s.mealPlans.ListAll(ctx, uid)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list meal plans")
	}
	pantry, err := s.ingredients.ListAllPantry(ctx, uid)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list pantry")
	}
	shopping, err := s.ingredients.ListAllShopping(ctx, uid)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list shopping list")
	}
	favs, err := s.favorites.ListAll(ctx, uid)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list favorite recipes")
	}

	pantryRefs := map[string][]string{}
	shoppingRefs := map[string][]string{}
	favoriteRefs := map[recipes.ID][]string{}
	for _, plan := range plans {
		for _, name := range plan.PantryIngredients {
			pantryRefs[name] = append(pantryRefs[name], plan.MealID)
		}
		for _, name := range plan.ShoppingListIngredients {
			shoppingRefs[name] = append(shoppingRefs[name], plan.MealID)
		}
		favoriteRefs[plan.RecipeID] = append(favoriteRefs[plan.RecipeID], plan.MealID)
	}

	report := &ReconcileReport{MealPlans: len(plans)}
	var errs error
	now := s.clock().UTC()

	frozenByName := make(map[string]bool, len(pantry))
	for _, entry := range pantry {
		frozenByName[entry.IngredientName] = entry.Frozen
		want := pantryRefs[entry.IngredientName]
		if sameSet(entry.MealPlans, want) {
			continue
		}
		if err := s.ingredients.SetMealPlans(ctx, enums.IngredientListPantry, uid, entry.IngredientName, want); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("repair pantry %q: %w", entry.IngredientName, err))
			continue
		}
		report.PantryRepaired++
	}
	for _, name := range sortedKeys(pantryRefs) {
		if _, ok := frozenByName[name]; ok {
			continue
		}
		entry := ingredients.PantryEntry{IngredientName: name, PurchaseDate: &now, MealPlans: pantryRefs[name]}
		if err := s.ingredients.SavePantry(ctx, uid, entry); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("recreate pantry %q: %w", name, err))
			continue
		}
		report.PantryRepaired++
	}

	onList := make(map[string]struct{}, len(shopping))
	for _, entry := range shopping {
		onList[entry.IngredientName] = struct{}{}
		want := shoppingRefs[entry.IngredientName]
		if sameSet(entry.MealPlans, want) {
			continue
		}
		if err := s.ingredients.SetMealPlans(ctx, enums.IngredientListShoppingList, uid, entry.IngredientName, want); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("repair shopping list %q: %w", entry.IngredientName, err))
			continue
		}
		report.ShoppingListRepaired++
	}
	for _, name := range sortedKeys(shoppingRefs) {
		if _, ok := onList[name]; ok {
			continue
		}
		entry := ingredients.ShoppingListEntry{IngredientName: name, MealPlans: shoppingRefs[name]}
		if err := s.ingredients.SaveShopping(ctx, uid, entry); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("recreate shopping list %q: %w", name, err))
			continue
		}
		report.ShoppingListRepaired++
	}

	for _, plan := range plans {
		wantFrozen := []string{}
		for _, name := range plan.PantryIngredients {
			if frozenByName[name] {
				wantFrozen = append(wantFrozen, name)
			}
		}
		if sameSet(plan.FrozenIngredients, wantFrozen) {
			continue
		}
		if err := s.mealPlans.SetIngredients(ctx, uid, plan.MealID, FieldFrozen, wantFrozen); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("repair meal plan %q: %w", plan.MealID, err))
			continue
		}
		report.MealPlansRepaired++
	}

	for _, fav := range favs {
		want := favoriteRefs[fav.RecipeID]
		if sameSet(fav.MealPlans, want) && fav.Planned == (len(want) > 0) {
			continue
		}
		if err := s.favorites.SetMealPlans(ctx, uid, fav.RecipeID, want); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("repair favorite %q: %w", fav.RecipeID, err))
			continue
		}
		report.FavoritesRepaired++
	}

	if errs != nil {
		return report, pkgerrors.Wrap(pkgerrors.CodeInternal, errs, "reconcile incomplete").WithDetails(report)
	}
	return report, nil
}

func sameSet(a, b []string) bool {
	x := slices.Compact(slices.Sorted(slices.Values(a)))
	y := slices.Compact(slices.Sorted(slices.Values(b)))
	return slices.Equal(x, y)
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
