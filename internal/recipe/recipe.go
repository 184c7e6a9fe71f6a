package recipe

import (
	"errors"
	"fmt"
)

// ErrInvalidServings is returned when a servings count is zero or negative.
var ErrInvalidServings = errors.New("servings must be positive")

// Ingredient is a single line of a recipe. Quantity is nil for items like "salt, to taste".
type Ingredient struct {
	Quantity    *float64 `json:"quantity"`
	Unit        string   `json:"unit"`
	Description string   `json:"description"`
}

// Recipe is the normalized internal representation of a dish.
type Recipe struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Publisher   string       `json:"publisher"`
	SourceURL   string       `json:"sourceUrl"`
	Image       string       `json:"image"`
	Servings    int          `json:"servings"`
	CookingTime int          `json:"cookingTime"`
	Ingredients []Ingredient `json:"ingredients"`
	Key         string       `json:"key,omitempty"`
	Bookmarked  bool         `json:"bookmarked,omitempty"`

	// PlanSet is reserved for cross-referencing the meal plan slots a recipe occupies.
	PlanSet map[string]string `json:"planSet,omitempty"`
}

// Summary is the lightweight shape returned by a search.
type Summary struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Publisher   string       `json:"publisher"`
	Image       string       `json:"image"`
	CookingTime int          `json:"cookingTime"`
	Ingredients []Ingredient `json:"ingredients,omitempty"`
	Key         string       `json:"key,omitempty"`
}

// Recipe widens a search summary into a Recipe so it can be pooled in a meal plan.
// Servings stay zero because search results do not carry them.
func (s Summary) Recipe() Recipe {
	return Recipe{
		ID:          s.ID,
		Title:       s.Title,
		Publisher:   s.Publisher,
		Image:       s.Image,
		CookingTime: s.CookingTime,
		Ingredients: cloneIngredients(s.Ingredients),
		Key:         s.Key,
	}
}

// UpdateServings scales every ingredient quantity by newServings/Servings and
// then sets Servings. Both counts must be positive.
func (r *Recipe) UpdateServings(newServings int) error {
	if newServings <= 0 {
		return fmt.Errorf("cannot scale to %d: %w", newServings, ErrInvalidServings)
	}
	if r.Servings <= 0 {
		return fmt.Errorf("recipe %s has %d servings: %w", r.ID, r.Servings, ErrInvalidServings)
	}

	for i := range r.Ingredients {
		q := r.Ingredients[i].Quantity
		if q == nil {
			continue
		}
		scaled := *q * float64(newServings) / float64(r.Servings)
		r.Ingredients[i].Quantity = &scaled
	}
	r.Servings = newServings
	return nil
}

// Clone returns a deep copy that shares no slices, maps or pointers with r.
func (r Recipe) Clone() Recipe {
	c := r
	c.Ingredients = cloneIngredients(r.Ingredients)
	if r.PlanSet != nil {
		c.PlanSet = make(map[string]string, len(r.PlanSet))
		for k, v := range r.PlanSet {
			c.PlanSet[k] = v
		}
	}
	return c
}

// Clone returns a deep copy of s.
func (s Summary) Clone() Summary {
	c := s
	c.Ingredients = cloneIngredients(s.Ingredients)
	return c
}

func cloneIngredients(in []Ingredient) []Ingredient {
	if in == nil {
		return nil
	}
	out := make([]Ingredient, len(in))
	for i, ing := range in {
		out[i] = ing
		if ing.Quantity != nil {
			q := *ing.Quantity
			out[i].Quantity = &q
		}
	}
	return out
}

// Quantity is a convenience for building ingredients in code and tests.
func Quantity(v float64) *float64 {
	return &v
}
