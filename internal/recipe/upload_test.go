package recipe

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func uploadForm() map[string]string {
	return map[string]string{
		"title":        "Test Pasta",
		"sourceUrl":    "http://example.com/pasta",
		"image":        "http://example.com/pasta.jpg",
		"publisher":    "Me",
		"cookingTime":  "25",
		"servings":     "2",
		"ingredient-1": "0.5, kg, Pasta",
		"ingredient-2": ",,Salt",
		"ingredient-3": "",
		"ingredient-10": "1,,Lemon",
	}
}

func TestParseUpload(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		w, err := ParseUpload(uploadForm())
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if w.Title != "Test Pasta" || w.SourceURL != "http://example.com/pasta" || w.ImageURL != "http://example.com/pasta.jpg" {
			t.Errorf("Unexpected payload: %+v", w)
		}
		if w.Servings != 2 || w.CookingTime != 25 {
			t.Errorf("Expected servings 2 and cooking time 25, got %d and %d", w.Servings, w.CookingTime)
		}
		if len(w.Ingredients) != 3 {
			t.Fatalf("Expected 3 ingredients (empty field skipped), got %d", len(w.Ingredients))
		}
		if w.Ingredients[0].Description != "Pasta" || *w.Ingredients[0].Quantity != 0.5 || w.Ingredients[0].Unit != "kg" {
			t.Errorf("Unexpected first ingredient: %+v", w.Ingredients[0])
		}
		if w.Ingredients[1].Quantity != nil {
			t.Error("Expected empty quantity to be null")
		}
		if w.Ingredients[2].Description != "Lemon" {
			t.Errorf("Expected ingredient-10 last, got %q", w.Ingredients[2].Description)
		}
	})

	t.Run("WrongIngredientFormat", func(t *testing.T) {
		form := uploadForm()
		form["ingredient-2"] = "1 kg rice"
		_, err := ParseUpload(form)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("Expected ValidationError, got %v", err)
		}
		if vErr.Field != "ingredient-2" {
			t.Errorf("Expected field 'ingredient-2', got '%s'", vErr.Field)
		}
	})

	t.Run("TooManyParts", func(t *testing.T) {
		form := uploadForm()
		form["ingredient-1"] = "1,kg,rice,extra"
		if _, err := ParseUpload(form); err == nil {
			t.Fatal("Expected an error for four parts")
		}
	})

	t.Run("NonNumericQuantity", func(t *testing.T) {
		form := uploadForm()
		form["ingredient-1"] = "lots,kg,rice"
		var vErr *ValidationError
		if _, err := ParseUpload(form); !errors.As(err, &vErr) {
			t.Fatalf("Expected ValidationError, got %v", err)
		}
	})

	t.Run("InvalidServings", func(t *testing.T) {
		form := uploadForm()
		form["servings"] = "0"
		var vErr *ValidationError
		if _, err := ParseUpload(form); !errors.As(err, &vErr) || vErr.Field != "servings" {
			t.Fatalf("Expected servings ValidationError, got %v", err)
		}
	})

	t.Run("NegativeCookingTime", func(t *testing.T) {
		form := uploadForm()
		form["cookingTime"] = "-5"
		if _, err := ParseUpload(form); err == nil {
			t.Fatal("Expected an error for negative cooking time")
		}
	})
}

func TestUploadPayloadKeepsZeroCookingTime(t *testing.T) {
	form := uploadForm()
	form["cookingTime"] = "0"
	payload, err := ParseUpload(form)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Failed to marshal payload: %v", err)
	}
	if !strings.Contains(string(data), `"cooking_time":0`) {
		t.Errorf("Expected cooking_time 0 in %s", data)
	}
	if strings.Contains(string(data), `"id"`) {
		t.Errorf("Expected no id in %s", data)
	}
}
