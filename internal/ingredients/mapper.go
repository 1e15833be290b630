package ingredients

import (
	"github.com/angelmondragon/pantryshare-backend/pkg/docstore"
)

func pantryToFields(e PantryEntry) docstore.Fields {
	f := docstore.Fields{
		"ingredientName": e.IngredientName,
		"frozen":         e.Frozen,
		"mealPlans":      docstore.StringSet(e.MealPlans),
		"purchaseDate":   nil,
		"expirationDate": nil,
		"defrostTaskId":  e.DefrostTaskID,
	}
	if e.PurchaseDate != nil {
		f["purchaseDate"] = e.PurchaseDate.UTC()
	}
	if e.ExpirationDate != nil {
		f["expirationDate"] = e.ExpirationDate.UTC()
	}
	return f
}

func pantryFromFields(id string, f docstore.Fields) PantryEntry {
	name := f.String("ingredientName")
	if name == "" {
		name = id
	}
	return PantryEntry{
		IngredientName: name,
		PurchaseDate:   f.TimePtr("purchaseDate"),
		ExpirationDate: f.TimePtr("expirationDate"),
		Frozen:         f.Bool("frozen"),
		MealPlans:      nonNil(f.Strings("mealPlans")),
		DefrostTaskID:  f.String("defrostTaskId"),
	}
}

func shoppingToFields(e ShoppingListEntry) docstore.Fields {
	return docstore.Fields{
		"ingredientName": e.IngredientName,
		"mealPlans":      docstore.StringSet(e.MealPlans),
		"buyTaskId":      e.BuyTaskID,
	}
}

func shoppingFromFields(id string, f docstore.Fields) ShoppingListEntry {
	name := f.String("ingredientName")
	if name == "" {
		name = id
	}
	return ShoppingListEntry{
		IngredientName: name,
		MealPlans:      nonNil(f.Strings("mealPlans")),
		BuyTaskID:      f.String("buyTaskId"),
	}
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
