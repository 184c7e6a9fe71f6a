package state

import (
	"context"

	"recipe-book/internal/bookmark"
	"recipe-book/internal/recipe"
)

// AddBookmark appends r to the bookmarks and flags the current recipe when
// it is the same one. Duplicates are the caller's concern.
func (s *Store) AddBookmark(ctx context.Context, r recipe.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.addBookmark(r)
	return s.save(ctx, KeyBookmarks, s.state.Bookmarks)
}

// addBookmark is AddBookmark without locking or persistence.
func (s *Store) addBookmark(r recipe.Recipe) {
	r.Bookmarked = true
	s.state.Bookmarks.Add(r)
	if s.state.Recipe != nil && s.state.Recipe.ID == r.ID {
		s.state.Recipe.Bookmarked = true
	}
}

// DeleteBookmark removes the bookmark with the given id, if any, and clears
// the flag on the current recipe when it matches.
func (s *Store) DeleteBookmark(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Bookmarks.Delete(id)
	if s.state.Recipe != nil && s.state.Recipe.ID == id {
		s.state.Recipe.Bookmarked = false
	}
	return s.save(ctx, KeyBookmarks, s.state.Bookmarks)
}

// ToggleBookmark bookmarks the current recipe, or removes its bookmark if it
// already has one. It returns the new bookmarked state.
func (s *Store) ToggleBookmark(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Recipe == nil {
		return false, ErrNoRecipe
	}
	cur := s.state.Recipe
	if cur.Bookmarked {
		s.state.Bookmarks.Delete(cur.ID)
		cur.Bookmarked = false
	} else {
		s.addBookmark(cur.Clone())
	}
	return cur.Bookmarked, s.save(ctx, KeyBookmarks, s.state.Bookmarks)
}

// Bookmarks returns a copy of the bookmark list.
func (s *Store) Bookmarks() bookmark.Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Bookmarks.Clone()
}
