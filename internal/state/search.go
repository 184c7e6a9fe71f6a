package state

import (
	"context"
	"log"

	"recipe-book/internal/recipe"
	"recipe-book/internal/search"
)

// LoadSearchResults runs a search and replaces the session, rewinding to
// page 1. On failure the previous session stays in place.
func (s *Store) LoadSearchResults(ctx context.Context, query string) error {
	s.mu.Lock()
	s.searchGen++
	gen := s.searchGen
	s.mu.Unlock()

	hits, err := s.gateway.SearchRecipes(ctx, query)
	if err != nil {
		log.Printf("Failed to search recipes for %q: %v", query, err)
		return err
	}

	results := make([]recipe.Summary, 0, len(hits))
	for _, h := range hits {
		results = append(results, recipe.SummaryFromWire(h))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.searchGen {
		return ErrSuperseded
	}
	s.state.Search.Reset(query, results)
	return nil
}

// GetResultsPage moves the cursor to page and returns that window of results.
func (s *Store) GetResultsPage(page int) []recipe.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Search.ResultsPage(page)
}

// CurrentResultsPage returns the window under the current cursor.
func (s *Store) CurrentResultsPage() []recipe.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Search.ResultsPage(s.state.Search.Page)
}

// Search returns a copy of the search session.
func (s *Store) Search() search.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Search.Clone()
}
