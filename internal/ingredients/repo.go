package ingredients

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/pantryshare-backend/pkg/docstore"
	"github.com/angelmondragon/pantryshare-backend/pkg/enums"
)

// Repository persists both per-user ingredient collections. Entries are keyed
// by ingredient name.
type Repository struct {
	store docstore.Store
}

func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

func collectionPath(list enums.IngredientList, uid string) (string, error) {
	if !list.IsValid() {
		return "", fmt.Errorf("unknown ingredient list %q", list)
	}
	return docstore.Join("users", uid, string(list))
}

func entryPath(list enums.IngredientList, uid, name string) (string, error) {
	col, err := collectionPath(list, uid)
	if err != nil {
		return "", err
	}
	if err := docstore.ValidateID(name); err != nil {
		return "", err
	}
	return col + "/" + name, nil
}

// Exists reports whether name is present in the list.
func (r *Repository) Exists(ctx context.Context, list enums.IngredientList, uid, name string) (bool, error) {
	path, err := entryPath(list, uid, name)
	if err != nil {
		return false, err
	}
	if _, err := r.store.Get(ctx, path); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *Repository) GetPantry(ctx context.Context, uid, name string) (*PantryEntry, error) {
	path, err := entryPath(enums.IngredientListPantry, uid, name)
	if err != nil {
		return nil, err
	}
	fields, err := r.store.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	entry := pantryFromFields(name, fields)
	return &entry, nil
}

// SavePantry creates or replaces the pantry entry.
func (r *Repository) SavePantry(ctx context.Context, uid string, entry PantryEntry) error {
	path, err := entryPath(enums.IngredientListPantry, uid, entry.IngredientName)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, path, pantryToFields(entry))
}

// ListPantry returns up to limit entries ordered by name, strictly after the
// given name when it is non-empty. limit <= 0 lists everything.
func (r *Repository) ListPantry(ctx context.Context, uid string, limit int, after string) ([]PantryEntry, error) {
	docs, err := r.list(ctx, enums.IngredientListPantry, uid, limit, after)
	if err != nil {
		return nil, err
	}
	out := make([]PantryEntry, 0, len(docs))
	for _, doc := range docs {
		out = append(out, pantryFromFields(doc.ID, doc.Fields))
	}
	return out, nil
}

// ListAllPantry returns the full pantry ordered by name.
func (r *Repository) ListAllPantry(ctx context.Context, uid string) ([]PantryEntry, error) {
	return r.ListPantry(ctx, uid, 0, "")
}

func (r *Repository) GetShopping(ctx context.Context, uid, name string) (*ShoppingListEntry, error) {
	path, err := entryPath(enums.IngredientListShoppingList, uid, name)
	if err != nil {
		return nil, err
	}
	fields, err := r.store.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	entry := shoppingFromFields(name, fields)
	return &entry, nil
}

func (r *Repository) SaveShopping(ctx context.Context, uid string, entry ShoppingListEntry) error {
	path, err := entryPath(enums.IngredientListShoppingList, uid, entry.IngredientName)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, path, shoppingToFields(entry))
}

func (r *Repository) ListShopping(ctx context.Context, uid string, limit int, after string) ([]ShoppingListEntry, error) {
	docs, err := r.list(ctx, enums.IngredientListShoppingList, uid, limit, after)
	if err != nil {
		return nil, err
	}
	out := make([]ShoppingListEntry, 0, len(docs))
	for _, doc := range docs {
		out = append(out, shoppingFromFields(doc.ID, doc.Fields))
	}
	return out, nil
}

func (r *Repository) ListAllShopping(ctx context.Context, uid string) ([]ShoppingListEntry, error) {
	return r.ListShopping(ctx, uid, 0, "")
}

func (r *Repository) list(ctx context.Context, list enums.IngredientList, uid string, limit int, after string) ([]docstore.Document, error) {
	col, err := collectionPath(list, uid)
	if err != nil {
		return nil, err
	}
	q := docstore.Query{}.OrderedBy(docstore.DocumentID, docstore.Asc)
	if after != "" {
		q = q.After(after)
	}
	if limit > 0 {
		q = q.Limited(limit)
	}
	return r.store.Query(ctx, col, q)
}

// Patch merges fields into an existing entry.
func (r *Repository) Patch(ctx context.Context, list enums.IngredientList, uid, name string, fields docstore.Fields) error {
	path, err := entryPath(list, uid, name)
	if err != nil {
		return err
	}
	return r.store.Update(ctx, path, fields)
}

func (r *Repository) Delete(ctx context.Context, list enums.IngredientList, uid, name string) error {
	path, err := entryPath(list, uid, name)
	if err != nil {
		return err
	}
	return r.store.Delete(ctx, path)
}

// LinkMealPlan adds mealID to the entry's back-references. It returns
// docstore.ErrNotFound when the entry does not exist.
func (r *Repository) LinkMealPlan(ctx context.Context, list enums.IngredientList, uid, name, mealID string) error {
	return r.Patch(ctx, list, uid, name, docstore.Fields{"mealPlans": docstore.ArrayUnion(mealID)})
}

// UnlinkMealPlan removes mealID from the entry's back-references. A missing
// entry is not an error.
func (r *Repository) UnlinkMealPlan(ctx context.Context, list enums.IngredientList, uid, name, mealID string) error {
	err := r.Patch(ctx, list, uid, name, docstore.Fields{"mealPlans": docstore.ArrayRemove(mealID)})
	if errors.Is(err, docstore.ErrNotFound) {
		return nil
	}
	return err
}

// SetMealPlans replaces the back-reference set outright.
func (r *Repository) SetMealPlans(ctx context.Context, list enums.IngredientList, uid, name string, mealIDs []string) error {
	return r.Patch(ctx, list, uid, name, docstore.Fields{"mealPlans": docstore.StringSet(mealIDs)})
}
