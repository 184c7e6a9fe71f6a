// Package state owns the application state tree: the loaded recipe, the
// search session, bookmarks, the weekly meal plan and the shopping list.
//
// All mutation goes through Store methods. Reads return deep copies, so
// callers can never alter the tree behind the store's back. Subtrees that
// survive a restart are written to the persistence adapter after every
// successful mutation, while the store lock is still held, so writes to the
// same key never interleave.
package state

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"recipe-book/internal/bookmark"
	"recipe-book/internal/forkify"
	"recipe-book/internal/planner"
	"recipe-book/internal/recipe"
	"recipe-book/internal/search"
	"recipe-book/internal/shopping"
	"recipe-book/internal/storage"
)

// Persistence keys.
const (
	KeyBookmarks = "bookmarks"
	KeyMealPlan  = "mealPlan"
	KeyShopping  = "shopping"
)

var (
	// ErrNoRecipe is returned by operations that need a loaded recipe.
	ErrNoRecipe = errors.New("no recipe loaded")
	// ErrSuperseded is returned when a newer call of the same kind started
	// while this one was waiting on the network. Its response is dropped.
	ErrSuperseded = errors.New("superseded by a newer request")
)

// State is a snapshot of the whole tree.
type State struct {
	Recipe       *recipe.Recipe
	Search       search.Session
	Bookmarks    bookmark.Set
	MealPlan     planner.MealPlan
	ShoppingList shopping.List
}

// Store is the application state store.
type Store struct {
	mu      sync.Mutex
	gateway forkify.Client
	persist storage.Store
	state   State

	// Generation counters; a network response commits only if its counter is
	// still current when it arrives.
	recipeGen uint64
	searchGen uint64
}

// New builds a store with empty state. Call Load to restore persisted data.
func New(gateway forkify.Client, persist storage.Store, pageSize int) *Store {
	return &Store{
		gateway: gateway,
		persist: persist,
		state: State{
			Search:       search.NewSession(pageSize),
			Bookmarks:    bookmark.Set{},
			MealPlan:     planner.New(),
			ShoppingList: shopping.List{},
		},
	}
}

// Load restores bookmarks, the meal plan and the shopping list. Missing keys
// keep their defaults; corrupt values are logged and skipped.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var bookmarks bookmark.Set
	if ok, err := s.restore(ctx, KeyBookmarks, &bookmarks); err != nil {
		return err
	} else if ok && bookmarks != nil {
		s.state.Bookmarks = bookmarks
	}

	var plan planner.MealPlan
	if ok, err := s.restore(ctx, KeyMealPlan, &plan); err != nil {
		return err
	} else if ok {
		s.state.MealPlan = plan
	}

	var list shopping.List
	if ok, err := s.restore(ctx, KeyShopping, &list); err != nil {
		return err
	} else if ok && list != nil {
		s.state.ShoppingList = list
	}
	return nil
}

// restore decodes one key. A corrupt value is not an error: it reports false.
func (s *Store) restore(ctx context.Context, key string, v any) (bool, error) {
	ok, err := storage.LoadJSON(ctx, s.persist, key, v)
	if errors.Is(err, storage.ErrCorrupt) {
		log.Printf("Warning: ignoring stored %s: %v", key, err)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return ok, nil
}

// save writes one subtree. The caller holds s.mu.
func (s *Store) save(ctx context.Context, key string, v any) error {
	if err := storage.SaveJSON(ctx, s.persist, key, v); err != nil {
		log.Printf("Failed to persist %s: %v", key, err)
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	return nil
}

// State returns a deep copy of the whole tree.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := State{
		Search:       s.state.Search.Clone(),
		Bookmarks:    s.state.Bookmarks.Clone(),
		MealPlan:     s.state.MealPlan.Clone(),
		ShoppingList: s.state.ShoppingList.Clone(),
	}
	if s.state.Recipe != nil {
		r := s.state.Recipe.Clone()
		out.Recipe = &r
	}
	return out
}

// CurrentRecipe returns a copy of the loaded recipe.
func (s *Store) CurrentRecipe() (recipe.Recipe, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Recipe == nil {
		return recipe.Recipe{}, false
	}
	return s.state.Recipe.Clone(), true
}

// LoadRecipe fetches a recipe and makes it current. On failure the previous
// recipe stays in place.
func (s *Store) LoadRecipe(ctx context.Context, id string) error {
	s.mu.Lock()
	s.recipeGen++
	gen := s.recipeGen
	s.mu.Unlock()

	wire, err := s.gateway.FetchRecipe(ctx, id)
	if err != nil {
		log.Printf("Failed to load recipe %s: %v", id, err)
		return err
	}
	rec, err := recipe.FromWire(wire)
	if err != nil {
		fetchErr := &forkify.FetchError{Op: "load recipe", URL: id, Err: err}
		log.Printf("Failed to load recipe %s: %v", id, fetchErr)
		return fetchErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.recipeGen {
		return ErrSuperseded
	}
	rec.Bookmarked = s.state.Bookmarks.Contains(rec.ID)
	s.state.Recipe = &rec
	return nil
}

// UpdateServings rescales the loaded recipe.
func (s *Store) UpdateServings(newServings int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Recipe == nil {
		return ErrNoRecipe
	}
	return s.state.Recipe.UpdateServings(newServings)
}

// UploadRecipe validates the form, submits it, makes the stored recipe
// current and bookmarks it. Validation failures return a
// *recipe.ValidationError before anything is sent. If a LoadRecipe started
// while the upload was in flight, the uploaded recipe is still bookmarked but
// does not replace the newer current recipe.
func (s *Store) UploadRecipe(ctx context.Context, fields map[string]string) (recipe.Recipe, error) {
	payload, err := recipe.ParseUpload(fields)
	if err != nil {
		return recipe.Recipe{}, err
	}

	s.mu.Lock()
	s.recipeGen++
	gen := s.recipeGen
	s.mu.Unlock()

	wire, err := s.gateway.SubmitRecipe(ctx, payload)
	if err != nil {
		log.Printf("Failed to upload recipe %q: %v", payload.Title, err)
		return recipe.Recipe{}, err
	}
	rec, err := recipe.FromWire(wire)
	if err != nil {
		fetchErr := &forkify.FetchError{Op: "upload recipe", URL: payload.Title, Err: err}
		log.Printf("Failed to upload recipe %q: %v", payload.Title, fetchErr)
		return recipe.Recipe{}, fetchErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen == s.recipeGen {
		current := rec.Clone()
		s.state.Recipe = &current
	}
	if !s.state.Bookmarks.Contains(rec.ID) {
		s.addBookmark(rec)
	}
	rec.Bookmarked = true
	return rec, s.save(ctx, KeyBookmarks, s.state.Bookmarks)
}
