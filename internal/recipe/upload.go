package recipe

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const ingredientPrefix = "ingredient"

// ValidationError reports malformed user input in an upload form.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// ParseUpload turns upload form fields into a wire payload ready to submit.
//
// Every non-empty field whose name starts with "ingredient" must hold exactly
// three comma separated parts: quantity, unit and description. An empty
// quantity becomes null.
func ParseUpload(fields map[string]string) (WireRecipe, error) {
	ingredients, err := parseIngredients(fields)
	if err != nil {
		return WireRecipe{}, err
	}

	servings, err := parseInt(fields, "servings")
	if err != nil {
		return WireRecipe{}, err
	}
	if servings <= 0 {
		return WireRecipe{}, &ValidationError{Field: "servings", Value: fields["servings"], Reason: "must be a positive number"}
	}

	cookingTime, err := parseInt(fields, "cookingTime")
	if err != nil {
		return WireRecipe{}, err
	}
	if cookingTime < 0 {
		return WireRecipe{}, &ValidationError{Field: "cookingTime", Value: fields["cookingTime"], Reason: "must not be negative"}
	}

	return WireRecipe{
		Title:       strings.TrimSpace(fields["title"]),
		SourceURL:   strings.TrimSpace(fields["sourceUrl"]),
		ImageURL:    strings.TrimSpace(fields["image"]),
		Publisher:   strings.TrimSpace(fields["publisher"]),
		CookingTime: cookingTime,
		Servings:    servings,
		Ingredients: ingredients,
	}, nil
}

// ParseIngredient parses a single "quantity,unit,description" line.
func ParseIngredient(field, value string) (Ingredient, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 3 {
		return Ingredient{}, &ValidationError{
			Field:  field,
			Value:  value,
			Reason: "wrong ingredient format, use quantity,unit,description",
		}
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	ing := Ingredient{Unit: parts[1], Description: parts[2]}
	if parts[0] != "" {
		q, err := strconv.ParseFloat(parts[0], 64)
		if err != nil || q <= 0 {
			return Ingredient{}, &ValidationError{Field: field, Value: value, Reason: "quantity must be a positive number"}
		}
		ing.Quantity = &q
	}
	return ing, nil
}

func parseIngredients(fields map[string]string) ([]Ingredient, error) {
	var names []string
	for name, value := range fields {
		if strings.HasPrefix(name, ingredientPrefix) && value != "" {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool { return ingredientLess(names[i], names[j]) })

	ingredients := make([]Ingredient, 0, len(names))
	for _, name := range names {
		ing, err := ParseIngredient(name, fields[name])
		if err != nil {
			return nil, err
		}
		ingredients = append(ingredients, ing)
	}
	return ingredients, nil
}

// ingredientLess orders "ingredient-2" before "ingredient-10".
func ingredientLess(a, b string) bool {
	na, okA := ingredientIndex(a)
	nb, okB := ingredientIndex(b)
	switch {
	case okA && okB && na != nb:
		return na < nb
	case okA != okB:
		return okA
	default:
		return a < b
	}
}

func ingredientIndex(name string) (int, bool) {
	suffix := strings.TrimLeft(strings.TrimPrefix(name, ingredientPrefix), "-_ ")
	n, err := strconv.Atoi(suffix)
	return n, err == nil
}

func parseInt(fields map[string]string, name string) (int, error) {
	raw := strings.TrimSpace(fields[name])
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ValidationError{Field: name, Value: raw, Reason: "must be a whole number"}
	}
	return n, nil
}
