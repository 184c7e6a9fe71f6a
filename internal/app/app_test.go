package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"recipe-book/internal/clipper"
	"recipe-book/internal/config"
	"recipe-book/internal/database"
	"recipe-book/internal/forkify"
	"recipe-book/internal/metrics"
	"recipe-book/internal/recipe"
	"recipe-book/internal/state"
	"recipe-book/internal/storage"
)

// newForkifyServer emulates the recipe API: 23 hits for "pizza", recipes
// r1 and r2, and uploads that echo the payload with a fresh id.
func newForkifyServer(t *testing.T) *httptest.Server {
	t.Helper()
	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(v)
	}
	uploads := 0

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/recipes/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/v2/recipes/")
		switch {
		case r.Method == http.MethodPost:
			var payload recipe.WireRecipe
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]any{"status": "fail", "message": err.Error()})
				return
			}
			uploads++
			payload.ID = fmt.Sprintf("new%d", uploads)
			payload.Key = "test_key"
			writeJSON(w, http.StatusCreated, map[string]any{"status": "success", "data": map[string]any{"recipe": payload}})
		case id == "":
			var hits []recipe.WireRecipe
			if r.URL.Query().Get("search") == "pizza" {
				for i := 0; i < 23; i++ {
					hits = append(hits, recipe.WireRecipe{ID: fmt.Sprintf("p%d", i), Title: fmt.Sprintf("Pizza %d", i), Publisher: "Pie Co"})
				}
			}
			writeJSON(w, http.StatusOK, map[string]any{"status": "success", "results": len(hits), "data": map[string]any{"recipes": hits}})
		case id == "r1" || id == "r2":
			writeJSON(w, http.StatusOK, map[string]any{"status": "success", "data": map[string]any{"recipe": recipe.WireRecipe{
				ID:          id,
				Title:       "Recipe " + id,
				Publisher:   "Test Kitchen",
				SourceURL:   "http://example.com/" + id,
				Servings:    4,
				CookingTime: 30,
				Ingredients: []recipe.Ingredient{
					{Quantity: recipe.Quantity(2), Unit: "cup", Description: "flour"},
					{Description: "salt"},
				},
			}}})
		default:
			writeJSON(w, http.StatusBadRequest, map[string]any{"status": "fail", "message": "Invalid _id: " + id})
		}
	})
	mux.HandleFunc("/pages/soup", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><script type="application/ld+json">
			{"@type": "Recipe", "name": "Clipped Soup", "recipeYield": "2", "totalTime": "PT20M",
			 "recipeIngredient": ["1 l stock", "2 carrots"]}
		</script></head></html>`)
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

type testEnv struct {
	app     *App
	metrics *metrics.Store
}

func newTestApp(t *testing.T, dir, serverURL string) testEnv {
	t.Helper()
	cfg := &config.Config{
		ForkifyAPIURL:  serverURL + "/api/v2/recipes/",
		ForkifyAPIKey:  "test_key",
		ResultsPerPage: 10,
		RequestTimeout: 5 * time.Second,
	}

	db, err := database.NewDB(filepath.Join(dir, "recipe-book.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	metricsStore := metrics.NewStore(db.SQL)

	persist, err := storage.NewFileStore(filepath.Join(dir, "state"))
	if err != nil {
		t.Fatalf("Failed to create FileStore: %v", err)
	}

	gateway := forkify.NewClient(cfg, forkify.WithObserver(metricsStore.Observe))
	store := state.New(gateway, persist, cfg.ResultsPerPage)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Failed to load state: %v", err)
	}
	return testEnv{
		app:     NewApp(store, clipper.NewClipper(nil), metricsStore, persist.Dir()),
		metrics: metricsStore,
	}
}

func mustRun(t *testing.T, a *App, input string, want ...string) string {
	t.Helper()
	out, err := a.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("%s: expected no error, got %v", input, err)
	}
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("%s: expected output to contain %q, got:\n%s", input, w, out)
		}
	}
	return out
}

func TestSession(t *testing.T) {
	ts := newForkifyServer(t)
	dir := t.TempDir()
	env := newTestApp(t, dir, ts.URL)
	a := env.app

	mustRun(t, a, "/search pizza", `Results for "pizza", page 1 of 3 (23 recipes)`, "Pizza 9", "Next: /page 2")
	out := mustRun(t, a, "/page 3", "page 3 of 3", "Pizza 20", "Pizza 22", "Previous: /page 2")
	if strings.Contains(out, "Pizza 19") || strings.Contains(out, "Next:") {
		t.Errorf("Expected only the last three results, got:\n%s", out)
	}

	mustRun(t, a, "/recipe r1", "Recipe r1 [r1]", "4 servings", "2 cup flour", "- salt")
	mustRun(t, a, "/servings 8", "8 servings", "4 cup flour")
	mustRun(t, a, "/bookmark", "Bookmarked Recipe r1")
	mustRun(t, a, "/recipe r1", "(bookmarked)")

	mustRun(t, a, "/plan", "0 recipes in the pool")
	mustRun(t, a, "/planadd", "1 recipes in the pool", "Recipe r1 [r1]")
	mustRun(t, a, "/assign r1 Monday lunch", "monday    breakfast: - | lunch: Recipe r1 | dinner: -")
	mustRun(t, a, "/assign r1 friday dinner", "dinner: Recipe r1")
	mustRun(t, a, "/planadd p21", "2 recipes in the pool", "Pizza 21 [p21]")
	mustRun(t, a, "/planremove p21", "1 recipes in the pool")
	if _, err := a.Execute(context.Background(), "/planadd nowhere"); err == nil {
		t.Error("Expected an unknown id to be rejected")
	}

	mustRun(t, a, "/shopweek", "1. [ ] 2 cup flour", "4. [ ] salt")
	mustRun(t, a, "/shoptoggle 1", "1. [x] 2 cup flour")
	mustRun(t, a, "/shopqty 2 3", "2. [ ] 3 salt")
	mustRun(t, a, "/shopdel 4", "3. [ ] 2 cup flour")

	mustRun(t, a, "/upload\ntitle: My Pie\nsourceUrl: http://example.com/pie\nimage: http://example.com/pie.jpg\npublisher: Me\ncookingTime: 45\nservings: 6\ningredient-1: 0.5, kg, apples\ningredient-2: , , sugar",
		"Recipe uploaded", "My Pie [new1] (bookmarked) (yours)", "0.5 kg apples")
	mustRun(t, a, "/import "+ts.URL+"/pages/soup", "Clipped Soup [new2]", "1 l stock", "2 carrots", "20 min, 2 servings")
	mustRun(t, a, "/bookmarks", "Recipe r1 [r1]", "My Pie [new1]", "Clipped Soup [new2]")

	mustRun(t, a, "/stats", "calls", "Goroutines")

	usage, err := env.metrics.GetDailyUsage(context.Background(), 1)
	if err != nil || len(usage) != 1 || usage[0].Calls < 5 {
		t.Errorf("Expected gateway calls to be recorded, got %+v, %v", usage, err)
	}

	// A fresh process sees the same bookmarks, plan and shopping list.
	restarted := newTestApp(t, dir, ts.URL).app
	mustRun(t, restarted, "/bookmarks", "Recipe r1 [r1]", "My Pie [new1]")
	mustRun(t, restarted, "/plan", "monday    breakfast: - | lunch: Recipe r1", "friday    breakfast: - | lunch: - | dinner: Recipe r1")
	mustRun(t, restarted, "/shop", "1. [x] 2 cup flour")
	mustRun(t, restarted, "/search pizza", "page 1 of 3")

	mustRun(t, restarted, "/planremove r1", "0 recipes in the pool", "monday    breakfast: - | lunch: - | dinner: -")
	mustRun(t, restarted, "/shopclear", "Shopping list is empty.")
	mustRun(t, restarted, "/planclose", "closed")
}

func TestErrors(t *testing.T) {
	ts := newForkifyServer(t)
	a := newTestApp(t, t.TempDir(), ts.URL).app
	ctx := context.Background()

	t.Run("Usage", func(t *testing.T) {
		for _, input := range []string{"/page", "/page two", "/recipe", "/assign r1 monday", "/upload", "/shopqty 1"} {
			_, err := a.Execute(ctx, input)
			if !errors.Is(err, ErrUsage) {
				t.Errorf("%s: expected ErrUsage, got %v", input, err)
			}
		}
	})

	t.Run("Unknown command", func(t *testing.T) {
		if _, err := a.Execute(ctx, "/dance"); err == nil {
			t.Error("Expected an error")
		}
	})

	t.Run("Missing recipe", func(t *testing.T) {
		_, err := a.Execute(ctx, "/recipe nope")
		var fetchErr *forkify.FetchError
		if !errors.As(err, &fetchErr) || fetchErr.StatusCode != http.StatusBadRequest {
			t.Fatalf("Expected a 400 FetchError, got %v", err)
		}
	})

	t.Run("No recipe loaded", func(t *testing.T) {
		for _, input := range []string{"/servings 2", "/bookmark", "/planadd", "/shopadd"} {
			if _, err := a.Execute(ctx, input); !errors.Is(err, state.ErrNoRecipe) {
				t.Errorf("%s: expected ErrNoRecipe, got %v", input, err)
			}
		}
	})

	t.Run("Invalid upload", func(t *testing.T) {
		_, err := a.Execute(ctx, "/upload\ntitle: Bad\nservings: 2\ncookingTime: 5\ningredient-1: lots of flour")
		var vErr *recipe.ValidationError
		if !errors.As(err, &vErr) || vErr.Field != "ingredient-1" {
			t.Fatalf("Expected ValidationError for ingredient-1, got %v", err)
		}
	})

	t.Run("Unknown shopping item", func(t *testing.T) {
		if _, err := a.Execute(ctx, "/shoptoggle 5"); err == nil {
			t.Error("Expected an error for an item number past the end")
		}
	})
}

func TestOvertakenSearchIsSilent(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("search")
		if query == "slow" {
			close(entered)
			<-release
		}
		hits := []recipe.WireRecipe{{ID: query + "1", Title: "Only " + query, Publisher: "Test Kitchen"}}
		json.NewEncoder(w).Encode(map[string]any{"status": "success", "results": 1, "data": map[string]any{"recipes": hits}})
	}))
	t.Cleanup(ts.Close)
	a := newTestApp(t, t.TempDir(), ts.URL).app

	type reply struct {
		out string
		err error
	}
	done := make(chan reply, 1)
	go func() {
		out, err := a.Execute(context.Background(), "/search slow")
		done <- reply{out, err}
	}()
	<-entered

	out, err := a.Execute(context.Background(), "/search pizza")
	close(release)
	if err != nil || !strings.Contains(out, "Only pizza") {
		t.Errorf("Expected pizza results, got %q, %v", out, err)
	}

	got := <-done
	if got.err != nil || got.out != "" {
		t.Errorf("Expected an overtaken search to return nothing, got %q, %v", got.out, got.err)
	}
	if q := a.store.Search().Query; q != "pizza" {
		t.Errorf("Expected query to stay 'pizza', got %q", q)
	}
}

func TestHelp(t *testing.T) {
	a := NewApp(nil, nil, nil, "")
	out, err := a.Execute(context.Background(), "/help")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range commandOrder {
		if !strings.Contains(out, name) {
			t.Errorf("Expected help to list %s", name)
		}
	}
	if _, ok := commands["/help"]; !ok || len(commands) != len(commandOrder) {
		t.Error("Expected every command to be listed exactly once")
	}
}

func TestParseForm(t *testing.T) {
	fields := parseForm([]string{"title: Soup", "sourceUrl: http://x.com/a:b", "no colon here", " : empty key"})
	if fields["title"] != "Soup" || fields["sourceUrl"] != "http://x.com/a:b" {
		t.Errorf("Unexpected fields: %v", fields)
	}
	if len(fields) != 2 {
		t.Errorf("Expected 2 fields, got %d", len(fields))
	}
}
