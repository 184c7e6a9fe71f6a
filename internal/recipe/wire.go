package recipe

import "fmt"

// WireRecipe is a recipe record as exchanged with the remote API.
type WireRecipe struct {
	ID          string       `json:"id,omitempty"`
	Title       string       `json:"title"`
	Publisher   string       `json:"publisher"`
	SourceURL   string       `json:"source_url"`
	ImageURL    string       `json:"image_url"`
	Servings    int          `json:"servings"`
	CookingTime int          `json:"cooking_time"`
	Ingredients []Ingredient `json:"ingredients"`
	Key         string       `json:"key,omitempty"`
}

// FromWire normalizes a full wire record into a Recipe.
// Records without an id or with non-positive servings are rejected.
func FromWire(w WireRecipe) (Recipe, error) {
	if w.ID == "" {
		return Recipe{}, fmt.Errorf("recipe record has no id")
	}
	if w.Servings <= 0 {
		return Recipe{}, fmt.Errorf("recipe %s has %d servings: %w", w.ID, w.Servings, ErrInvalidServings)
	}
	if w.CookingTime < 0 {
		return Recipe{}, fmt.Errorf("recipe %s has negative cooking time %d", w.ID, w.CookingTime)
	}

	ingredients := cloneIngredients(w.Ingredients)
	if ingredients == nil {
		ingredients = []Ingredient{}
	}

	return Recipe{
		ID:          w.ID,
		Title:       w.Title,
		Publisher:   w.Publisher,
		SourceURL:   w.SourceURL,
		Image:       w.ImageURL,
		Servings:    w.Servings,
		CookingTime: w.CookingTime,
		Ingredients: ingredients,
		Key:         w.Key,
	}, nil
}

// SummaryFromWire maps a search hit into a Summary. Search hits are partial
// records, so nothing beyond the field mapping is checked.
func SummaryFromWire(w WireRecipe) Summary {
	return Summary{
		ID:          w.ID,
		Title:       w.Title,
		Publisher:   w.Publisher,
		Image:       w.ImageURL,
		CookingTime: w.CookingTime,
		Ingredients: cloneIngredients(w.Ingredients),
		Key:         w.Key,
	}
}
