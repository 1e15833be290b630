package ledger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/angelmondragon/pantryshare-backend/internal/ingredients"
	"github.com/angelmondragon/pantryshare-backend/internal/mealplans"
	"github.com/angelmondragon/pantryshare-backend/internal/reminders"
	"github.com/angelmondragon/pantryshare-backend/pkg/docstore"
	"github.com/angelmondragon/pantryshare-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pantryshare-backend/pkg/errors"
	"github.com/angelmondragon/pantryshare-backend/pkg/pagination"
	"go.uber.org/multierr"
)

func (s *service) GetShoppingList(ctx context.Context, uid string, limit int, cursor string) (*Page[ingredients.ShoppingListEntry], error) {
	entries, err := s.ingredients.ListShopping(ctx, uid, pagination.LimitWithBuffer(limit), strings.TrimSpace(cursor))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list shopping list")
	}
	entries, hasMore := pagination.Trim(entries, limit)
	page := &Page[ingredients.ShoppingListEntry]{Ingredients: entries, Count: len(entries), HasMore: hasMore}
	if len(entries) > 0 {
		page.NextCursor = entries[len(entries)-1].IngredientName
	}
	return page, nil
}

// AddToShoppingList stores the item, links referenced meal plans and creates
// a "Buy" reminder for items that were not already on the list.
func (s *service) AddToShoppingList(ctx context.Context, uid string, input AddShoppingListInput) (*ingredients.ShoppingListEntry, error) {
	name, err := ingredients.NormalizeName(input.IngredientName)
	if err != nil {
		return nil, err
	}
	existing, err := s.ingredients.GetShopping(ctx, uid, name)
	if err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load shopping list entry")
	}
	if existing != nil && s.policy == enums.DuplicatePolicyReject {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "ingredient already on shopping list").
			WithDetails(map[string]any{"ingredientName": name})
	}
	requested, err := s.existingMealPlans(ctx, uid, input.MealPlans)
	if err != nil {
		return nil, err
	}

	entry := ingredients.ShoppingListEntry{IngredientName: name, MealPlans: []string{}}
	if existing != nil {
		entry.MealPlans = existing.MealPlans
		entry.BuyTaskID = existing.BuyTaskID
	}
	linked := slices.Clone(entry.MealPlans)
	entry.MealPlans = union(entry.MealPlans, requested)

	if err := s.ingredients.SaveShopping(ctx, uid, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save shopping list entry")
	}

	var errs error
	for _, mealID := range requested {
		if slices.Contains(linked, mealID) {
			continue
		}
		if err := s.mealPlans.AddIngredient(ctx, uid, mealID, mealplans.FieldShoppingList, name); err != nil && !errors.Is(err, docstore.ErrNotFound) {
			errs = multierr.Append(errs, fmt.Errorf("link meal plan %q: %w", mealID, err))
		}
	}
	if entry.BuyTaskID == "" {
		if taskID := s.reminders.CreateTask(ctx, reminders.KindBuyTask, reminders.Task{Title: reminders.BuyTitle(name)}); taskID != "" {
			if err := s.ingredients.Patch(ctx, enums.IngredientListShoppingList, uid, name, docstore.Fields{"buyTaskId": taskID}); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("record buy task: %w", err))
			} else {
				entry.BuyTaskID = taskID
			}
		}
	}

	if errs != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, errs, "shopping list entry saved with incomplete meal plan updates").
			WithDetails(map[string]any{"ingredientName": name})
	}
	return &entry, nil
}

// ModifyInShoppingList renames an item when newIngredientName is set, carrying its meal plan references
// and reminder over to the new name.
func (s *service) ModifyInShoppingList(ctx context.Context, uid string, input ModifyShoppingListInput) (*ingredients.ShoppingListEntry, error) {
	name, err := ingredients.NormalizeName(input.IngredientName)
	if err != nil {
		return nil, err
	}
	current, err := s.loadShopping(ctx, uid, name)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.NewIngredientName) == "" {
		return current, nil
	}
	newName, err := ingredients.NormalizeName(input.NewIngredientName)
	if err != nil {
		return nil, err
	}
	if newName == name {
		return current, nil
	}
	taken, err := s.ingredients.Exists(ctx, enums.IngredientListShoppingList, uid, newName)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check shopping list entry")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "ingredient already on shopping list").
			WithDetails(map[string]any{"ingredientName": newName})
	}

	updated := *current
	updated.IngredientName = newName
	if err := s.ingredients.SaveShopping(ctx, uid, updated); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save shopping list entry")
	}
	if err := s.ingredients.Delete(ctx, enums.IngredientListShoppingList, uid, name); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete renamed shopping list entry")
	}

	var errs error
	for _, mealID := range updated.MealPlans {
		if err := s.mealPlans.RenameIngredient(ctx, uid, mealID, name, newName, mealplans.FieldShoppingList); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("rename in meal plan %q: %w", mealID, err))
		}
	}
	s.reminders.RenameTask(ctx, reminders.KindBuyTask, updated.BuyTaskID, reminders.BuyTitle(newName))

	if errs != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, errs, "shopping list entry renamed with incomplete meal plan updates").
			WithDetails(map[string]any{"ingredientName": newName})
	}
	return &updated, nil
}

// RemoveFromShoppingList deletes the item. With move set the item was bought:
// its reminder is completed and it lands in the pantry with its meal plan
// references. Otherwise the reminder is deleted and meal plans drop the item.
func (s *service) RemoveFromShoppingList(ctx context.Context, uid, name string, move bool) (*RemoveShoppingListResult, error) {
	name, err := ingredients.NormalizeName(name)
	if err != nil {
		return nil, err
	}
	entry, err := s.loadShopping(ctx, uid, name)
	if err != nil {
		return nil, err
	}
	if err := s.ingredients.Delete(ctx, enums.IngredientListShoppingList, uid, name); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete shopping list entry")
	}

	result := &RemoveShoppingListResult{Moved: move}
	var errs error
	if !move {
		for _, mealID := range entry.MealPlans {
			if err := s.mealPlans.RemoveIngredient(ctx, uid, mealID, name, mealplans.FieldShoppingList); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("unlink meal plan %q: %w", mealID, err))
			}
		}
		s.reminders.DeleteTask(ctx, reminders.KindBuyTask, entry.BuyTaskID)
	} else {
		s.reminders.CompleteTask(ctx, reminders.KindBuyTask, entry.BuyTaskID)
		pantry, err := s.moveToPantry(ctx, uid, *entry)
		errs = multierr.Append(errs, err)
		result.Pantry = pantry
	}

	if errs != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, errs, "shopping list entry removed with incomplete updates").
			WithDetails(map[string]any{"ingredientName": name})
	}
	return result, nil
}

func (s *service) moveToPantry(ctx context.Context, uid string, item ingredients.ShoppingListEntry) (*ingredients.PantryEntry, error) {
	pantry, err := s.ingredients.GetPantry(ctx, uid, item.IngredientName)
	switch {
	case err == nil:
		pantry.MealPlans = union(pantry.MealPlans, item.MealPlans)
		if err := s.ingredients.SetMealPlans(ctx, enums.IngredientListPantry, uid, pantry.IngredientName, pantry.MealPlans); err != nil {
			return nil, fmt.Errorf("merge pantry entry: %w", err)
		}
	case errors.Is(err, docstore.ErrNotFound):
		now := s.clock().UTC()
		pantry = &ingredients.PantryEntry{
			IngredientName: item.IngredientName,
			PurchaseDate:   &now,
			MealPlans:      union(nil, item.MealPlans),
		}
		if err := s.ingredients.SavePantry(ctx, uid, *pantry); err != nil {
			return nil, fmt.Errorf("create pantry entry: %w", err)
		}
	default:
		return nil, fmt.Errorf("load pantry entry: %w", err)
	}

	var errs error
	for _, mealID := range item.MealPlans {
		if err := s.mealPlans.RemoveIngredient(ctx, uid, mealID, item.IngredientName, mealplans.FieldShoppingList); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("unlink meal plan %q: %w", mealID, err))
			continue
		}
		err := s.mealPlans.AddIngredient(ctx, uid, mealID, mealplans.FieldPantry, item.IngredientName)
		if err == nil && pantry.Frozen {
			err = s.mealPlans.AddIngredient(ctx, uid, mealID, mealplans.FieldFrozen, item.IngredientName)
		}
		if err != nil && !errors.Is(err, docstore.ErrNotFound) {
			errs = multierr.Append(errs, fmt.Errorf("link meal plan %q: %w", mealID, err))
		}
	}
	return pantry, errs
}

func (s *service) loadShopping(ctx context.Context, uid, name string) (*ingredients.ShoppingListEntry, error) {
	entry, err := s.ingredients.GetShopping(ctx, uid, name)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "ingredient not on shopping list")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load shopping list entry")
	}
	return entry, nil
}
