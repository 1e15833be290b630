package recipes

import (
	"context"

	"github.com/angelmondragon/pantryshare-backend/pkg/docstore"
)

const collection = "recipes"

// Repository stores the recipe catalog that meal plans point at.
type Repository struct {
	store docstore.Store
}

func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// Get returns docstore.ErrNotFound when the recipe was never cataloged.
func (r *Repository) Get(ctx context.Context, id ID) (*Recipe, error) {
	path, err := docstore.Join(collection, string(id))
	if err != nil {
		return nil, err
	}
	fields, err := r.store.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	recipe := FromFields(fields)
	if recipe.ID == "" {
		recipe.ID = id
	}
	return &recipe, nil
}

// Save upserts the catalog entry.
func (r *Repository) Save(ctx context.Context, recipe Recipe) error {
	path, err := docstore.Join(collection, string(recipe.ID))
	if err != nil {
		return err
	}
	return r.store.Set(ctx, path, ToFields(recipe))
}
