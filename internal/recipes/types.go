package recipes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/angelmondragon/pantryshare-backend/pkg/docstore"
	"github.com/angelmondragon/pantryshare-backend/pkg/recipeapi"
)

// ID is a recipe identifier. Provider ids are numeric but documents are keyed
// by their string form, so both JSON shapes are accepted.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("recipe id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Int64 returns the numeric provider id, or false when the id is not numeric.
func (id ID) Int64() (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Validate reports whether the id can key a document.
func (id ID) Validate() error {
	return docstore.ValidateID(string(id))
}

// Recipe is the recipe metadata stored in the catalog and embedded in
// favourites and group collections.
type Recipe struct {
	ID                    ID       `json:"id"`
	Title                 string   `json:"title"`
	Image                 string   `json:"image,omitempty"`
	SourceURL             string   `json:"sourceUrl,omitempty"`
	ReadyInMinutes        int      `json:"readyInMinutes,omitempty"`
	Servings              int      `json:"servings,omitempty"`
	UsedIngredientCount   int      `json:"usedIngredientCount"`
	MissedIngredientCount int      `json:"missedIngredientCount"`
	Ingredients           []string `json:"ingredients,omitempty"`
}

// FromAPI converts a provider payload.
func FromAPI(r recipeapi.Recipe) Recipe {
	ingredients := r.Ingredients
	if len(ingredients) == 0 {
		ingredients = append(append([]string(nil), r.UsedIngredients...), r.MissedIngredients...)
	}
	return Recipe{
		ID:                    ID(strconv.FormatInt(r.ID, 10)),
		Title:                 r.Title,
		Image:                 r.Image,
		SourceURL:             r.SourceURL,
		ReadyInMinutes:        r.ReadyInMinutes,
		Servings:              r.Servings,
		UsedIngredientCount:   r.UsedIngredientCount,
		MissedIngredientCount: r.MissedIngredientCount,
		Ingredients:           ingredients,
	}
}

// ToFields encodes the recipe for storage, either as a catalog document or as
// a nested map.
func ToFields(r Recipe) docstore.Fields {
	return docstore.Fields{
		"id":                    string(r.ID),
		"title":                 r.Title,
		"image":                 r.Image,
		"sourceUrl":             r.SourceURL,
		"readyInMinutes":        r.ReadyInMinutes,
		"servings":              r.Servings,
		"usedIngredientCount":   r.UsedIngredientCount,
		"missedIngredientCount": r.MissedIngredientCount,
		"ingredients":           docstore.StringSet(r.Ingredients),
	}
}

func FromFields(f docstore.Fields) Recipe {
	return Recipe{
		ID:                    ID(f.String("id")),
		Title:                 f.String("title"),
		Image:                 f.String("image"),
		SourceURL:             f.String("sourceUrl"),
		ReadyInMinutes:        f.Int("readyInMinutes"),
		Servings:              f.Int("servings"),
		UsedIngredientCount:   f.Int("usedIngredientCount"),
		MissedIngredientCount: f.Int("missedIngredientCount"),
		Ingredients:           f.Strings("ingredients"),
	}
}
