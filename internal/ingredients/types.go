package ingredients

import (
	"strings"
	"time"
	"unicode/utf8"

	pkgerrors "github.com/angelmondragon/pantryshare-backend/pkg/errors"
)

const maxNameLength = 120

// PantryEntry is an ingredient the user has on hand.
type PantryEntry struct {
	IngredientName string     `json:"ingredientName"`
	PurchaseDate   *time.Time `json:"purchaseDate"`
	ExpirationDate *time.Time `json:"expirationDate"`
	Frozen         bool       `json:"frozen"`
	MealPlans      []string   `json:"mealPlans"`
	DefrostTaskID  string     `json:"defrostTaskId,omitempty"`
}

// ShoppingListEntry is an ingredient the user still has to buy.
type ShoppingListEntry struct {
	IngredientName string   `json:"ingredientName"`
	MealPlans      []string `json:"mealPlans"`
	BuyTaskID      string   `json:"buyTaskId,omitempty"`
}

// NormalizeName trims an ingredient name and checks it can key a document.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "", pkgerrors.New(pkgerrors.CodeValidation, "ingredient name is required")
	case strings.Contains(name, "/"):
		return "", pkgerrors.New(pkgerrors.CodeValidation, "ingredient name cannot contain '/'")
	case utf8.RuneCountInString(name) > maxNameLength:
		return "", pkgerrors.New(pkgerrors.CodeValidation, "ingredient name is too long")
	case name == "." || name == "..":
		return "", pkgerrors.New(pkgerrors.CodeValidation, "ingredient name is reserved")
	case strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__"):
		return "", pkgerrors.New(pkgerrors.CodeValidation, "ingredient name is reserved")
	}
	return name, nil
}
