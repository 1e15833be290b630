package favorites

import (
	"context"
	"errors"

	"github.com/angelmondragon/pantryshare-backend/internal/recipes"
	"github.com/angelmondragon/pantryshare-backend/pkg/docstore"
	"github.com/angelmondragon/pantryshare-backend/pkg/pagination"
)

const collection = "favoriteRecipes"

// Repository persists users/{uid}/favoriteRecipes.
type Repository struct {
	store docstore.Store
}

func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

func docPath(uid string, recipeID recipes.ID) (string, error) {
	return docstore.Join("users", uid, collection, string(recipeID))
}

func (r *Repository) Get(ctx context.Context, uid string, recipeID recipes.ID) (*Favorite, error) {
	path, err := docPath(uid, recipeID)
	if err != nil {
		return nil, err
	}
	fields, err := r.store.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	fav := fromFields(string(recipeID), fields)
	return &fav, nil
}

func (r *Repository) Save(ctx context.Context, uid string, fav Favorite) error {
	path, err := docPath(uid, fav.RecipeID)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, path, toFields(fav))
}

func (r *Repository) Delete(ctx context.Context, uid string, recipeID recipes.ID) error {
	path, err := docPath(uid, recipeID)
	if err != nil {
		return err
	}
	return r.store.Delete(ctx, path)
}

// List returns favourites ordered by title then recipe id. limit <= 0 lists everything.
func (r *Repository) List(ctx context.Context, uid string, limit int, after *pagination.Cursor) ([]Favorite, error) {
	col, err := docstore.Join("users", uid, collection)
	if err != nil {
		return nil, err
	}
	q := docstore.Query{}.
		OrderedBy("title", docstore.Asc).
		OrderedBy(docstore.DocumentID, docstore.Asc)
	if after != nil {
		q = q.After(after.Key, after.ID)
	}
	if limit > 0 {
		q = q.Limited(limit)
	}
	docs, err := r.store.Query(ctx, col, q)
	if err != nil {
		return nil, err
	}
	out := make([]Favorite, 0, len(docs))
	for _, doc := range docs {
		out = append(out, fromFields(doc.ID, doc.Fields))
	}
	return out, nil
}

func (r *Repository) ListAll(ctx context.Context, uid string) ([]Favorite, error) {
	return r.List(ctx, uid, 0, nil)
}

// LinkMealPlan records that mealID uses the recipe and marks it planned.
// It returns docstore.ErrNotFound when the recipe is not a favourite.
func (r *Repository) LinkMealPlan(ctx context.Context, uid string, recipeID recipes.ID, mealID string) error {
	path, err := docPath(uid, recipeID)
	if err != nil {
		return err
	}
	return r.store.Update(ctx, path, docstore.Fields{
		"mealPlans": docstore.ArrayUnion(mealID),
		"planned":   true,
	})
}

// UnlinkMealPlan drops mealID and recomputes planned. A recipe that is not a
// favourite is ignored.
func (r *Repository) UnlinkMealPlan(ctx context.Context, uid string, recipeID recipes.ID, mealID string) error {
	path, err := docPath(uid, recipeID)
	if err != nil {
		return err
	}
	err = r.store.Update(ctx, path, docstore.Fields{"mealPlans": docstore.ArrayRemove(mealID)})
	if errors.Is(err, docstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	fields, err := r.store.Get(ctx, path)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return r.store.Update(ctx, path, docstore.Fields{"planned": len(fields.Strings("mealPlans")) > 0})
}

// SetMealPlans overwrites the back-references and the planned flag together.
func (r *Repository) SetMealPlans(ctx context.Context, uid string, recipeID recipes.ID, mealIDs []string) error {
	path, err := docPath(uid, recipeID)
	if err != nil {
		return err
	}
	return r.store.Update(ctx, path, docstore.Fields{
		"mealPlans": docstore.StringSet(mealIDs),
		"planned":   len(mealIDs) > 0,
	})
}
