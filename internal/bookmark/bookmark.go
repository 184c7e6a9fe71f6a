// Package bookmark keeps the user's bookmarked recipes in display order.
package bookmark

import "recipe-book/internal/recipe"

// Set is an ordered list of bookmarked recipes. Membership is decided by id.
type Set []recipe.Recipe

// Add appends r. Callers avoid duplicates; Add does not check.
func (s *Set) Add(r recipe.Recipe) {
	*s = append(*s, r.Clone())
}

// Delete removes the first entry with the given id and reports whether one was found.
func (s *Set) Delete(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	*s = append((*s)[:i], (*s)[i+1:]...)
	return true
}

// Contains reports whether a recipe with the given id is bookmarked.
func (s Set) Contains(id string) bool {
	return s.index(id) >= 0
}

// Clone returns a deep copy of s.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for i, r := range s {
		out[i] = r.Clone()
	}
	return out
}

func (s Set) index(id string) int {
	for i, r := range s {
		if r.ID == id {
			return i
		}
	}
	return -1
}
