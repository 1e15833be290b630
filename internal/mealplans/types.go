package mealplans

import (
	"strings"
	"time"

	"github.com/angelmondragon/pantryshare-backend/internal/recipes"
	"github.com/angelmondragon/pantryshare-backend/pkg/docstore"
	pkgerrors "github.com/angelmondragon/pantryshare-backend/pkg/errors"
)

// DateLayout is the calendar-day format meal plans are scheduled with.
const DateLayout = "2006-01-02"

// IngredientField names one of the ingredient lists on a meal plan document.
type IngredientField string

const (
	FieldPantry       IngredientField = "pantryIngredients"
	FieldShoppingList IngredientField = "shoppingListIngredients"
	FieldFrozen       IngredientField = "frozenIngredients"
)

// MealPlan schedules a recipe on a day. FrozenIngredients is always a subset
// of PantryIngredients.
type MealPlan struct {
	MealID                  string     `json:"mealId"`
	RecipeID                recipes.ID `json:"recipeId"`
	PantryIngredients       []string   `json:"pantryIngredients"`
	ShoppingListIngredients []string   `json:"shoppingListIngredients"`
	FrozenIngredients       []string   `json:"frozenIngredients"`
	Date                    string     `json:"date"`
	EventID                 string     `json:"eventId,omitempty"`
	CreatedAt               time.Time  `json:"createdAt"`
}

// Ingredients returns the names held in the given field.
func (p MealPlan) Ingredients(field IngredientField) []string {
	switch field {
	case FieldPantry:
		return p.PantryIngredients
	case FieldShoppingList:
		return p.ShoppingListIngredients
	case FieldFrozen:
		return p.FrozenIngredients
	default:
		return nil
	}
}

// ResolvedMealPlan is a meal plan with its recipe dereferenced. A broken
// reference leaves Recipe nil and sets RecipeError instead of failing the
// whole listing.
type ResolvedMealPlan struct {
	MealPlan
	Recipe      *recipes.Recipe `json:"recipe"`
	RecipeError string          `json:"recipeError,omitempty"`
}

// IngredientInput is one ingredient of a new meal plan.
type IngredientInput struct {
	Name     string `json:"name" validate:"required"`
	InPantry bool   `json:"inPantry"`
}

// AddInput is the body of a meal-plan creation request.
type AddInput struct {
	Recipe      recipes.Recipe    `json:"recipe"`
	Ingredients []IngredientInput `json:"ingredients" validate:"dive"`
	Date        string            `json:"date" validate:"required"`
}

// ReconcileReport counts the documents a repair pass rewrote.
type ReconcileReport struct {
	MealPlans            int `json:"mealPlans"`
	PantryRepaired       int `json:"pantryRepaired"`
	ShoppingListRepaired int `json:"shoppingListRepaired"`
	FavoritesRepaired    int `json:"favoritesRepaired"`
	MealPlansRepaired    int `json:"mealPlansRepaired"`
}

// NormalizeDate accepts a calendar day or an RFC3339 timestamp and returns
// the calendar day.
func NormalizeDate(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "date is required")
	}
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t.Format(DateLayout), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.Format(DateLayout), nil
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation, "date must be YYYY-MM-DD or RFC3339")
}

func toFields(p MealPlan) docstore.Fields {
	return docstore.Fields{
		"mealId":                  p.MealID,
		"recipeId":                string(p.RecipeID),
		string(FieldPantry):       docstore.StringSet(p.PantryIngredients),
		string(FieldShoppingList): docstore.StringSet(p.ShoppingListIngredients),
		string(FieldFrozen):       docstore.StringSet(p.FrozenIngredients),
		"date":                    p.Date,
		"eventId":                 p.EventID,
		"createdAt":               p.CreatedAt.UTC(),
	}
}

func fromFields(id string, f docstore.Fields) MealPlan {
	p := MealPlan{
		MealID:                  id,
		RecipeID:                recipes.ID(f.String("recipeId")),
		PantryIngredients:       nonNil(f.Strings(string(FieldPantry))),
		ShoppingListIngredients: nonNil(f.Strings(string(FieldShoppingList))),
		FrozenIngredients:       nonNil(f.Strings(string(FieldFrozen))),
		Date:                    f.String("date"),
		EventID:                 f.String("eventId"),
	}
	if t, ok := f.Time("createdAt"); ok {
		p.CreatedAt = t
	}
	return p
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
