package groupresources

import (
	"time"

	"github.com/angelmondragon/pantryshare-backend/internal/ingredients"
	"github.com/angelmondragon/pantryshare-backend/internal/recipes"
	"github.com/angelmondragon/pantryshare-backend/pkg/docstore"
)

// GroupRecipe is a recipe shared into a group. It is keyed by recipe id and
// is independent of any member's favourites.
type GroupRecipe struct {
	RecipeID recipes.ID     `json:"recipeId"`
	Recipe   recipes.Recipe `json:"recipe"`
	AddedBy  string         `json:"addedBy"`
	AddedAt  time.Time      `json:"addedAt"`
}

// MemberPantry is one member's pantry inside the aggregate group view.
type MemberPantry struct {
	UID    string                    `json:"uid"`
	Email  string                    `json:"email,omitempty"`
	Pantry []ingredients.PantryEntry `json:"pantry"`
}

func toFields(r GroupRecipe) docstore.Fields {
	return docstore.Fields{
		"recipeId": string(r.RecipeID),
		"title":    r.Recipe.Title,
		"recipe":   recipes.ToFields(r.Recipe),
		"addedBy":  r.AddedBy,
		"addedAt":  r.AddedAt.UTC(),
	}
}

func fromFields(id string, f docstore.Fields) GroupRecipe {
	r := GroupRecipe{
		RecipeID: recipes.ID(id),
		Recipe:   recipes.FromFields(f.Map("recipe")),
		AddedBy:  f.String("addedBy"),
	}
	if r.Recipe.ID == "" {
		r.Recipe.ID = r.RecipeID
	}
	if t, ok := f.Time("addedAt"); ok {
		r.AddedAt = t
	}
	return r
}
