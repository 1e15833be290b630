package groupresources

import (
	"context"

	"github.com/angelmondragon/pantryshare-backend/internal/recipes"
	"github.com/angelmondragon/pantryshare-backend/pkg/docstore"
	"github.com/angelmondragon/pantryshare-backend/pkg/pagination"
)

// Repository persists groups/{groupId}/recipes.
type Repository struct {
	store docstore.Store
}

func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

func recipePath(groupID string, recipeID recipes.ID) (string, error) {
	return docstore.Join("groups", groupID, "recipes", string(recipeID))
}

func (r *Repository) Get(ctx context.Context, groupID string, recipeID recipes.ID) (*GroupRecipe, error) {
	path, err := recipePath(groupID, recipeID)
	if err != nil {
		return nil, err
	}
	fields, err := r.store.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	gr := fromFields(string(recipeID), fields)
	return &gr, nil
}

func (r *Repository) Save(ctx context.Context, groupID string, gr GroupRecipe) error {
	path, err := recipePath(groupID, gr.RecipeID)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, path, toFields(gr))
}

func (r *Repository) Delete(ctx context.Context, groupID string, recipeID recipes.ID) error {
	path, err := recipePath(groupID, recipeID)
	if err != nil {
		return err
	}
	return r.store.Delete(ctx, path)
}

// List returns group recipes ordered by title then recipe id.
func (r *Repository) List(ctx context.Context, groupID string, limit int, after *pagination.Cursor) ([]GroupRecipe, error) {
	col, err := docstore.Join("groups", groupID, "recipes")
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
	out := make([]GroupRecipe, 0, len(docs))
	for _, doc := range docs {
		out = append(out, fromFields(doc.ID, doc.Fields))
	}
	return out, nil
}
