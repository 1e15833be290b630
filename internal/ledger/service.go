package ledger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/angelmondragon/pantryshare-backend/internal/ingredients"
	"github.com/angelmondragon/pantryshare-backend/internal/mealplans"
	"github.com/angelmondragon/pantryshare-backend/internal/reminders"
	"github.com/angelmondragon/pantryshare-backend/pkg/docstore"
	"github.com/angelmondragon/pantryshare-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pantryshare-backend/pkg/errors"
	"github.com/angelmondragon/pantryshare-backend/pkg/pagination"
	"go.uber.org/multierr"
)

// ServiceParams groups dependencies for the ingredient ledger.
type ServiceParams struct {
	Ingredients *ingredients.Repository
	MealPlans   *mealplans.Repository
	Reminders   *reminders.SideEffects
	Policy      enums.DuplicatePolicy
	Clock       func() time.Time
}

// Service manages the pantry and the shopping list and keeps the meal plans
// that reference them in step.
type Service interface {
	GetPantry(ctx context.Context, uid string, limit int, cursor string) (*Page[ingredients.PantryEntry], error)
	AddToPantry(ctx context.Context, uid string, input AddPantryInput) (*ingredients.PantryEntry, error)
	ModifyInPantry(ctx context.Context, uid string, input ModifyPantryInput) (*ingredients.PantryEntry, error)
	RemoveFromPantry(ctx context.Context, uid, name string) error

	GetShoppingList(ctx context.Context, uid string, limit int, cursor string) (*Page[ingredients.ShoppingListEntry], error)
	AddToShoppingList(ctx context.Context, uid string, input AddShoppingListInput) (*ingredients.ShoppingListEntry, error)
	ModifyInShoppingList(ctx context.Context, uid string, input ModifyShoppingListInput) (*ingredients.ShoppingListEntry, error)
	RemoveFromShoppingList(ctx context.Context, uid, name string, move bool) (*RemoveShoppingListResult, error)
}

type service struct {
	ingredients *ingredients.Repository
	mealPlans   *mealplans.Repository
	reminders   *reminders.SideEffects
	policy      enums.DuplicatePolicy
	clock       func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Ingredients == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ingredient repo is required")
	}
	if params.MealPlans == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "meal plan repo is required")
	}
	policy := params.Policy
	if policy == "" {
		policy = enums.DuplicatePolicyReject
	}
	if !policy.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid duplicate policy %q", policy))
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &service{
		ingredients: params.Ingredients,
		mealPlans:   params.MealPlans,
		reminders:   params.Reminders,
		policy:      policy,
		clock:       clock,
	}, nil
}

func (s *service) GetPantry(ctx context.Context, uid string, limit int, cursor string) (*Page[ingredients.PantryEntry], error) {
	entries, err := s.ingredients.ListPantry(ctx, uid, pagination.LimitWithBuffer(limit), strings.TrimSpace(cursor))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list pantry")
	}
	entries, hasMore := pagination.Trim(entries, limit)
	page := &Page[ingredients.PantryEntry]{Ingredients: entries, Count: len(entries), HasMore: hasMore}
	if len(entries) > 0 {
		page.NextCursor = entries[len(entries)-1].IngredientName
	}
	return page, nil
}

// AddToPantry stores a new entry and adds its name to every referenced meal
// plan. Unknown meal plan ids are dropped.
func (s *service) AddToPantry(ctx context.Context, uid string, input AddPantryInput) (*ingredients.PantryEntry, error) {
	name, err := ingredients.NormalizeName(input.IngredientName)
	if err != nil {
		return nil, err
	}
	existing, err := s.ingredients.GetPantry(ctx, uid, name)
	if err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load pantry entry")
	}
	if existing != nil && s.policy == enums.DuplicatePolicyReject {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "ingredient already in pantry").
			WithDetails(map[string]any{"ingredientName": name})
	}
	requested, err := s.existingMealPlans(ctx, uid, input.MealPlans)
	if err != nil {
		return nil, err
	}

	purchase := input.PurchaseDate
	if purchase == nil {
		now := s.clock().UTC()
		purchase = &now
	}
	entry := ingredients.PantryEntry{
		IngredientName: name,
		PurchaseDate:   purchase,
		ExpirationDate: input.ExpirationDate,
		Frozen:         input.Frozen,
		MealPlans:      []string{},
	}
	wasFrozen := false
	if existing != nil {
		entry.MealPlans = existing.MealPlans
		entry.DefrostTaskID = existing.DefrostTaskID
		wasFrozen = existing.Frozen
	}
	linked := slices.Clone(entry.MealPlans)
	entry.MealPlans = union(entry.MealPlans, requested)

	if err := s.ingredients.SavePantry(ctx, uid, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save pantry entry")
	}

	var errs error
	for _, mealID := range requested {
		if slices.Contains(linked, mealID) {
			continue
		}
		if err := s.mealPlans.AddIngredient(ctx, uid, mealID, mealplans.FieldPantry, name); err != nil && !errors.Is(err, docstore.ErrNotFound) {
			errs = multierr.Append(errs, fmt.Errorf("link meal plan %q: %w", mealID, err))
		}
	}
	if entry.Frozen || wasFrozen {
		errs = multierr.Append(errs, s.applyFrozen(ctx, uid, name, entry.MealPlans, entry.Frozen))
	}
	errs = multierr.Append(errs, s.syncDefrostTask(ctx, uid, &entry, wasFrozen))

	if errs != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, errs, "pantry entry saved with incomplete meal plan updates").
			WithDetails(map[string]any{"ingredientName": name})
	}
	return &entry, nil
}

// ModifyInPantry patches an entry. A rename writes the new entry, deletes the
// old one and rewrites the name in every referenced meal plan.
func (s *service) ModifyInPantry(ctx context.Context, uid string, input ModifyPantryInput) (*ingredients.PantryEntry, error) {
	name, err := ingredients.NormalizeName(input.IngredientName)
	if err != nil {
		return nil, err
	}
	current, err := s.loadPantry(ctx, uid, name)
	if err != nil {
		return nil, err
	}

	updated := *current
	if input.PurchaseDate != nil {
		updated.PurchaseDate = input.PurchaseDate
	}
	if input.ExpirationDate != nil {
		updated.ExpirationDate = input.ExpirationDate
	}
	if input.ClearExpiration {
		updated.ExpirationDate = nil
	}
	if input.Frozen != nil {
		updated.Frozen = *input.Frozen
	}

	newName := name
	if input.NewIngredientName != nil {
		if newName, err = ingredients.NormalizeName(*input.NewIngredientName); err != nil {
			return nil, err
		}
	}
	renamed := newName != name
	if renamed {
		taken, err := s.ingredients.Exists(ctx, enums.IngredientListPantry, uid, newName)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check pantry entry")
		}
		if taken {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "ingredient already in pantry").
				WithDetails(map[string]any{"ingredientName": newName})
		}
		updated.IngredientName = newName
	}

	if err := s.ingredients.SavePantry(ctx, uid, updated); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save pantry entry")
	}
	if renamed {
		if err := s.ingredients.Delete(ctx, enums.IngredientListPantry, uid, name); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete renamed pantry entry")
		}
	}

	var errs error
	if renamed {
		for _, mealID := range updated.MealPlans {
			if err := s.mealPlans.RenameIngredient(ctx, uid, mealID, name, newName, mealplans.FieldPantry, mealplans.FieldFrozen); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("rename in meal plan %q: %w", mealID, err))
			}
		}
		if updated.Frozen == current.Frozen {
			s.reminders.RenameTask(ctx, reminders.KindDefrostTask, updated.DefrostTaskID, reminders.DefrostTitle(newName))
		}
	}
	if updated.Frozen != current.Frozen {
		errs = multierr.Append(errs, s.applyFrozen(ctx, uid, newName, updated.MealPlans, updated.Frozen))
		errs = multierr.Append(errs, s.syncDefrostTask(ctx, uid, &updated, current.Frozen))
	}

	if errs != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, errs, "pantry entry saved with incomplete meal plan updates").
			WithDetails(map[string]any{"ingredientName": newName})
	}
	return &updated, nil
}

// RemoveFromPantry deletes the entry and strips it from every referenced meal plan.
func (s *service) RemoveFromPantry(ctx context.Context, uid, name string) error {
	name, err := ingredients.NormalizeName(name)
	if err != nil {
		return err
	}
	entry, err := s.loadPantry(ctx, uid, name)
	if err != nil {
		return err
	}
	if err := s.ingredients.Delete(ctx, enums.IngredientListPantry, uid, name); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete pantry entry")
	}

	var errs error
	for _, mealID := range entry.MealPlans {
		if err := s.mealPlans.RemoveIngredient(ctx, uid, mealID, name, mealplans.FieldPantry, mealplans.FieldFrozen); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("unlink meal plan %q: %w", mealID, err))
		}
	}
	s.reminders.DeleteTask(ctx, reminders.KindDefrostTask, entry.DefrostTaskID)

	if errs != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, errs, "pantry entry removed with incomplete meal plan updates")
	}
	return nil
}

func (s *service) loadPantry(ctx context.Context, uid, name string) (*ingredients.PantryEntry, error) {
	entry, err := s.ingredients.GetPantry(ctx, uid, name)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "ingredient not in pantry")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load pantry entry")
	}
	return entry, nil
}

// applyFrozen adds or removes name from the frozen list of each meal plan.
func (s *service) applyFrozen(ctx context.Context, uid, name string, mealIDs []string, frozen bool) error {
	var errs error
	for _, mealID := range mealIDs {
		var err error
		if frozen {
			err = s.mealPlans.AddIngredient(ctx, uid, mealID, mealplans.FieldFrozen, name)
			if errors.Is(err, docstore.ErrNotFound) {
				err = nil
			}
		} else {
			err = s.mealPlans.RemoveIngredient(ctx, uid, mealID, name, mealplans.FieldFrozen)
		}
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("update frozen list of meal plan %q: %w", mealID, err))
		}
	}
	return errs
}

// syncDefrostTask creates a defrost reminder when an entry becomes frozen and
// completes it when the entry thaws, recording the task id on the entry.
func (s *service) syncDefrostTask(ctx context.Context, uid string, entry *ingredients.PantryEntry, wasFrozen bool) error {
	var taskID string
	switch {
	case entry.Frozen && (!wasFrozen || entry.DefrostTaskID == ""):
		taskID = s.reminders.CreateTask(ctx, reminders.KindDefrostTask, reminders.Task{Title: reminders.DefrostTitle(entry.IngredientName)})
		if taskID == "" {
			return nil
		}
	case !entry.Frozen && wasFrozen && entry.DefrostTaskID != "":
		s.reminders.CompleteTask(ctx, reminders.KindDefrostTask, entry.DefrostTaskID)
	default:
		return nil
	}
	if taskID == entry.DefrostTaskID {
		return nil
	}
	if err := s.ingredients.Patch(ctx, enums.IngredientListPantry, uid, entry.IngredientName, docstore.Fields{"defrostTaskId": taskID}); err != nil {
		return fmt.Errorf("record defrost task: %w", err)
	}
	entry.DefrostTaskID = taskID
	return nil
}

// existingMealPlans validates the ids and keeps those that name a meal plan.
func (s *service) existingMealPlans(ctx context.Context, uid string, ids []string) ([]string, error) {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if err := docstore.ValidateID(id); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid meal plan id")
		}
		if slices.Contains(out, id) {
			continue
		}
		if _, err := s.mealPlans.Get(ctx, uid, id); err != nil {
			if errors.Is(err, docstore.ErrNotFound) {
				continue
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load meal plan")
		}
		out = append(out, id)
	}
	return out, nil
}

func union(a, b []string) []string {
	out := slices.Clone(a)
	if out == nil {
		out = []string{}
	}
	for _, v := range b {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
