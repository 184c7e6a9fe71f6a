// Package search holds the current query, its full result list and the
// pagination cursor over it.
package search

import "recipe-book/internal/recipe"

// Session is the state of the most recent search.
type Session struct {
	Query    string           `json:"query"`
	Results  []recipe.Summary `json:"results"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
}

// NewSession returns an empty session paginated by pageSize.
func NewSession(pageSize int) Session {
	return Session{Results: []recipe.Summary{}, Page: 1, PageSize: pageSize}
}

// Reset replaces the query and results and rewinds to the first page.
func (s *Session) Reset(query string, results []recipe.Summary) {
	s.Query = query
	s.Results = results
	s.Page = 1
}

// ResultsPage moves the cursor to page and returns the half-open window
// [(page-1)*PageSize, page*PageSize) of the results. Pages past either end
// yield an empty slice. The returned slice never aliases Results.
func (s *Session) ResultsPage(page int) []recipe.Summary {
	s.Page = page

	start := (page - 1) * s.PageSize
	end := page * s.PageSize
	if start < 0 {
		start = 0
	}
	if end > len(s.Results) {
		end = len(s.Results)
	}
	if start >= end {
		return []recipe.Summary{}
	}

	out := make([]recipe.Summary, 0, end-start)
	for _, r := range s.Results[start:end] {
		out = append(out, r.Clone())
	}
	return out
}

// NumPages is ceil(len(Results)/PageSize).
func (s *Session) NumPages() int {
	if s.PageSize <= 0 {
		return 0
	}
	return (len(s.Results) + s.PageSize - 1) / s.PageSize
}

// Find returns the result with the given id.
func (s *Session) Find(id string) (recipe.Summary, bool) {
	for _, r := range s.Results {
		if r.ID == id {
			return r, true
		}
	}
	return recipe.Summary{}, false
}

// Clone returns a deep copy of s.
func (s Session) Clone() Session {
	c := s
	c.Results = make([]recipe.Summary, len(s.Results))
	for i, r := range s.Results {
		c.Results[i] = r.Clone()
	}
	return c
}
