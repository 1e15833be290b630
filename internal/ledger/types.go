package ledger

import (
	"time"

	"github.com/angelmondragon/pantryshare-backend/internal/ingredients"
)

// Page is one slice of an ingredient listing. NextCursor is the name of the
// last returned entry; an empty page means the listing is exhausted.
type Page[T any] struct {
	Ingredients []T    `json:"ingredients"`
	NextCursor  string `json:"nextCursor,omitempty"`
	Count       int    `json:"count"`
	HasMore     bool   `json:"hasMore"`
}

type AddPantryInput struct {
	IngredientName string     `json:"ingredientName" validate:"required"`
	PurchaseDate   *time.Time `json:"purchaseDate"`
	ExpirationDate *time.Time `json:"expirationDate"`
	Frozen         bool       `json:"frozen"`
	MealPlans      []string   `json:"mealPlans"`
}

// ModifyPantryInput patches an entry. Nil fields are left unchanged.
type ModifyPantryInput struct {
	IngredientName    string     `json:"ingredientName" validate:"required"`
	NewIngredientName *string    `json:"newIngredientName"`
	PurchaseDate      *time.Time `json:"purchaseDate"`
	ExpirationDate    *time.Time `json:"expirationDate"`
	ClearExpiration   bool       `json:"clearExpiration"`
	Frozen            *bool      `json:"frozen"`
}

type AddShoppingListInput struct {
	IngredientName string   `json:"ingredientName" validate:"required"`
	MealPlans      []string `json:"mealPlans"`
}

type ModifyShoppingListInput struct {
	IngredientName    string `json:"ingredientName" validate:"required"`
	NewIngredientName string `json:"newIngredientName"`
}

// RemoveShoppingListResult reports where a removed shopping-list item went.
type RemoveShoppingListResult struct {
	Moved  bool                     `json:"moved"`
	Pantry *ingredients.PantryEntry `json:"pantry,omitempty"`
}
