package clipper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"recipe-book/internal/recipe"
)

const ldPage = `
<html>
	<head>
		<meta property="og:site_name" content="Tasty Site">
		<meta property="og:title" content="Wrong Title">
		<script type="application/ld+json">{not valid json</script>
		<script type="application/ld+json">
		{
			"@context": "https://schema.org",
			"@graph": [
				{"@type": "WebPage", "name": "Page"},
				{
					"@type": ["Recipe", "Thing"],
					"name": "Lemon Cake",
					"image": [{"@type": "ImageObject", "url": "http://example.com/cake.jpg"}],
					"author": {"@type": "Person", "name": "Ann"},
					"recipeYield": ["8", "8 slices"],
					"prepTime": "PT15M",
					"cookTime": "PT1H",
					"recipeIngredient": ["1 1/2 cups flour, sifted", "2 eggs", "Salt", "½ tsp vanilla"]
				}
			]
		}
		</script>
	</head>
	<body><h1>Lemon Cake</h1></body>
</html>`

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestClipURL_JSONLD(t *testing.T) {
	ts := serve(t, http.StatusOK, ldPage)
	c := NewClipper(nil)

	fields, err := c.ClipURL(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("ClipURL failed: %v", err)
	}

	expected := map[string]string{
		"title":        "Lemon Cake",
		"image":        "http://example.com/cake.jpg",
		"publisher":    "Ann",
		"servings":     "8",
		"cookingTime":  "75",
		"sourceUrl":    ts.URL,
		"ingredient-1": "1.5,cups,flour; sifted",
		"ingredient-2": "2,,eggs",
		"ingredient-3": ",,Salt",
		"ingredient-4": "0.5,tsp,vanilla",
	}
	for k, v := range expected {
		if fields[k] != v {
			t.Errorf("Expected %s to be %q, got %q", k, v, fields[k])
		}
	}

	// The fields must be accepted by the upload parser as they are.
	w, err := recipe.ParseUpload(fields)
	if err != nil {
		t.Fatalf("Expected clipped fields to parse, got %v", err)
	}
	if len(w.Ingredients) != 4 || *w.Ingredients[0].Quantity != 1.5 {
		t.Errorf("Unexpected ingredients: %+v", w.Ingredients)
	}
}

func TestClipURL_OpenGraphFallback(t *testing.T) {
	ts := serve(t, http.StatusOK, `<html><head>
		<meta property="og:title" content="Mystery Stew">
		<meta property="og:image" content="http://example.com/stew.jpg">
	</head><body></body></html>`)

	fields, err := NewClipper(nil).ClipURL(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("ClipURL failed: %v", err)
	}
	if fields["title"] != "Mystery Stew" || fields["image"] != "http://example.com/stew.jpg" {
		t.Errorf("Unexpected fields: %v", fields)
	}
	if fields["servings"] != "4" || fields["cookingTime"] != "0" {
		t.Errorf("Expected defaults, got servings %q and cooking time %q", fields["servings"], fields["cookingTime"])
	}
	if fields["publisher"] != "127.0.0.1" {
		t.Errorf("Expected host as publisher, got %q", fields["publisher"])
	}
}

func TestClipURL_Errors(t *testing.T) {
	t.Run("Bad status", func(t *testing.T) {
		ts := serve(t, http.StatusNotFound, "nope")
		if _, err := NewClipper(nil).ClipURL(context.Background(), ts.URL); err == nil {
			t.Fatal("Expected an error")
		}
	})

	t.Run("Nothing to clip", func(t *testing.T) {
		ts := serve(t, http.StatusOK, "<html><body><p>hello</p></body></html>")
		_, err := NewClipper(nil).ClipURL(context.Background(), ts.URL)
		if !errors.Is(err, ErrNoRecipe) {
			t.Fatalf("Expected ErrNoRecipe, got %v", err)
		}
	})
}

func TestSplitIngredient(t *testing.T) {
	tests := []struct {
		line, want string
	}{
		{"2 cups sugar", "2,cups,sugar"},
		{"1/4 tsp. salt", "0.25,tsp,salt"},
		{"1½ kg potatoes", "1.5,kg,potatoes"},
		{"3 cloves garlic, minced", "3,cloves,garlic; minced"},
		{"fresh basil", ",,fresh basil"},
		{"1 can", ",,1 can"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := SplitIngredient(tt.line); got != tt.want {
				t.Errorf("SplitIngredient(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestMinutes(t *testing.T) {
	tests := map[string]int{"PT1H30M": 90, "PT45M": 45, "P1DT2H": 1560, "pt10m": 10, "PT0S": 0}
	for in, want := range tests {
		got, ok := minutes(in)
		if !ok || got != want {
			t.Errorf("minutes(%q) = %d, %v; want %d", in, got, ok, want)
		}
	}
	if _, ok := minutes("90 minutes"); ok {
		t.Error("Expected free text to be rejected")
	}
}
