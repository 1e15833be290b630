package favorites

import (
	"time"

	"github.com/angelmondragon/pantryshare-backend/internal/recipes"
	"github.com/angelmondragon/pantryshare-backend/pkg/docstore"
)

// Favorite is a saved recipe. Planned is true exactly when at least one meal
// plan uses the recipe.
type Favorite struct {
	RecipeID  recipes.ID     `json:"recipeId"`
	Recipe    recipes.Recipe `json:"recipe"`
	Planned   bool           `json:"planned"`
	MealPlans []string       `json:"mealPlans"`
	CreatedAt time.Time      `json:"createdAt"`
}

func toFields(f Favorite) docstore.Fields {
	return docstore.Fields{
		"recipeId":  string(f.RecipeID),
		"title":     f.Recipe.Title,
		"recipe":    recipes.ToFields(f.Recipe),
		"planned":   len(f.MealPlans) > 0,
		"mealPlans": docstore.StringSet(f.MealPlans),
		"createdAt": f.CreatedAt.UTC(),
	}
}

func fromFields(id string, f docstore.Fields) Favorite {
	fav := Favorite{
		RecipeID:  recipes.ID(id),
		Recipe:    recipes.FromFields(f.Map("recipe")),
		Planned:   f.Bool("planned"),
		MealPlans: f.Strings("mealPlans"),
	}
	if fav.MealPlans == nil {
		fav.MealPlans = []string{}
	}
	if fav.Recipe.ID == "" {
		fav.Recipe.ID = fav.RecipeID
	}
	if t, ok := f.Time("createdAt"); ok {
		fav.CreatedAt = t
	}
	return fav
}
