package enums

// IngredientList identifies which per-user ingredient collection an entry
// lives in.
type IngredientList string

const (
	IngredientListPantry       IngredientList = "pantry"
	IngredientListShoppingList IngredientList = "shoppingList"
)

// IsValid reports whether the value names a known ingredient collection.
func (l IngredientList) IsValid() bool {
	return l == IngredientListPantry || l == IngredientListShoppingList
}
