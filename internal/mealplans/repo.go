package mealplans

import (
	"context"
	"errors"

	"github.com/angelmondragon/pantryshare-backend/internal/recipes"
	"github.com/angelmondragon/pantryshare-backend/pkg/docstore"
	"github.com/angelmondragon/pantryshare-backend/pkg/pagination"
)

const collection = "mealPlans"

// Repository persists users/{uid}/mealPlans.
type Repository struct {
	store docstore.Store
}

func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

func docPath(uid, mealID string) (string, error) {
	return docstore.Join("users", uid, collection, mealID)
}

func (r *Repository) Get(ctx context.Context, uid, mealID string) (*MealPlan, error) {
	path, err := docPath(uid, mealID)
	if err != nil {
		return nil, err
	}
	fields, err := r.store.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	plan := fromFields(mealID, fields)
	return &plan, nil
}

func (r *Repository) Save(ctx context.Context, uid string, plan MealPlan) error {
	path, err := docPath(uid, plan.MealID)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, path, toFields(plan))
}

func (r *Repository) Delete(ctx context.Context, uid, mealID string) error {
	path, err := docPath(uid, mealID)
	if err != nil {
		return err
	}
	return r.store.Delete(ctx, path)
}

// List returns meal plans ordered by date then meal id. limit <= 0 lists everything.
func (r *Repository) List(ctx context.Context, uid string, limit int, after *pagination.Cursor) ([]MealPlan, error) {
	q := docstore.Query{}.
		OrderedBy("date", docstore.Asc).
		OrderedBy(docstore.DocumentID, docstore.Asc)
	if after != nil {
		q = q.After(after.Key, after.ID)
	}
	if limit > 0 {
		q = q.Limited(limit)
	}
	return r.query(ctx, uid, q)
}

func (r *Repository) ListAll(ctx context.Context, uid string) ([]MealPlan, error) {
	return r.List(ctx, uid, 0, nil)
}

// ListIDsByRecipe returns the ids of the meal plans scheduling recipeID.
func (r *Repository) ListIDsByRecipe(ctx context.Context, uid string, recipeID recipes.ID) ([]string, error) {
	plans, err := r.query(ctx, uid, docstore.Query{}.
		Where("recipeId", docstore.OpEqual, string(recipeID)).
		OrderedBy(docstore.DocumentID, docstore.Asc))
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(plans))
	for _, p := range plans {
		ids = append(ids, p.MealID)
	}
	return ids, nil
}

func (r *Repository) query(ctx context.Context, uid string, q docstore.Query) ([]MealPlan, error) {
	col, err := docstore.Join("users", uid, collection)
	if err != nil {
		return nil, err
	}
	docs, err := r.store.Query(ctx, col, q)
	if err != nil {
		return nil, err
	}
	out := make([]MealPlan, 0, len(docs))
	for _, doc := range docs {
		out = append(out, fromFields(doc.ID, doc.Fields))
	}
	return out, nil
}

// AddIngredient appends name to field when absent. It returns
// docstore.ErrNotFound when the meal plan does not exist.
func (r *Repository) AddIngredient(ctx context.Context, uid, mealID string, field IngredientField, name string) error {
	path, err := docPath(uid, mealID)
	if err != nil {
		return err
	}
	return r.store.Update(ctx, path, docstore.Fields{string(field): docstore.ArrayUnion(name)})
}

// RemoveIngredient strips name from the given fields. A missing meal plan is
// not an error.
func (r *Repository) RemoveIngredient(ctx context.Context, uid, mealID, name string, fields ...IngredientField) error {
	path, err := docPath(uid, mealID)
	if err != nil {
		return err
	}
	update := docstore.Fields{}
	for _, field := range fields {
		update[string(field)] = docstore.ArrayRemove(name)
	}
	err = r.store.Update(ctx, path, update)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil
	}
	return err
}

// RenameIngredient replaces oldName with newName in place, keeping list order.
// A missing meal plan is not an error.
func (r *Repository) RenameIngredient(ctx context.Context, uid, mealID, oldName, newName string, fields ...IngredientField) error {
	plan, err := r.Get(ctx, uid, mealID)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	update := docstore.Fields{}
	for _, field := range fields {
		current := plan.Ingredients(field)
		renamed := make([]string, 0, len(current))
		changed := false
		for _, name := range current {
			if name == oldName {
				name = newName
				changed = true
			}
			renamed = append(renamed, name)
		}
		if changed {
			update[string(field)] = docstore.StringSet(renamed)
		}
	}
	if len(update) == 0 {
		return nil
	}

	path, err := docPath(uid, mealID)
	if err != nil {
		return err
	}
	err = r.store.Update(ctx, path, update)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil
	}
	return err
}

// SetIngredients overwrites one ingredient field.
func (r *Repository) SetIngredients(ctx context.Context, uid, mealID string, field IngredientField, names []string) error {
	path, err := docPath(uid, mealID)
	if err != nil {
		return err
	}
	return r.store.Update(ctx, path, docstore.Fields{string(field): docstore.StringSet(names)})
}

func (r *Repository) SetEventID(ctx context.Context, uid, mealID, eventID string) error {
	path, err := docPath(uid, mealID)
	if err != nil {
		return err
	}
	return r.store.Update(ctx, path, docstore.Fields{"eventId": eventID})
}
