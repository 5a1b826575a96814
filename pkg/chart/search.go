package chart

import (
	"strings"

	"github.com/vanderheijden86/orgview/pkg/model"
)

// DefaultPreviewLimit is how many search results the UI lists.
const DefaultPreviewLimit = 8

// SearchResult is one entry of the search dropdown.
type SearchResult struct {
	Member model.Member
	Path   string // first names of the member's managers, root first
}

// SetQuery runs a case-insensitive substring search over display name, job
// title and department. An empty query clears the results.
func (s *State) SetQuery(q string) {
	s.query = q
	s.matches = nil
	if q == "" {
		return
	}
	needle := strings.ToLower(q)
	s.matches = make(map[string]bool)
	for _, m := range s.store.Members() {
		if memberMatches(m, needle) {
			s.matches[m.ID] = true
		}
	}
}

func memberMatches(m model.Member, needle string) bool {
	return strings.Contains(strings.ToLower(m.DisplayName), needle) ||
		strings.Contains(strings.ToLower(m.JobTitle), needle) ||
		strings.Contains(strings.ToLower(m.Department), needle)
}

// Query returns the active query.
func (s *State) Query() string {
	return s.query
}

// Searching reports whether a non-empty query is active.
func (s *State) Searching() bool {
	return s.query != ""
}

// Matches reports whether id should render at full strength: true when no
// query is active or id matched.
func (s *State) Matches(id string) bool {
	if s.query == "" {
		return true
	}
	return s.matches[id]
}

// Results returns the matching members in dataset order.
func (s *State) Results() []model.Member {
	if s.query == "" {
		return nil
	}
	var out []model.Member
	seen := make(map[string]bool, len(s.matches))
	for _, m := range s.store.Members() {
		// Duplicate ids match once.
		if s.matches[m.ID] && !seen[m.ID] {
			seen[m.ID] = true
			out = append(out, m)
		}
	}
	return out
}

// ResultPreview returns at most limit results, each with its manager chain
// rendered as first names joined by " › ".
func (s *State) ResultPreview(limit int) []SearchResult {
	results := s.Results()
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	out := make([]SearchResult, 0, len(results))
	for _, m := range results {
		chain := s.store.Ancestors(m.ID)
		names := make([]string, 0, len(chain))
		for i := len(chain) - 1; i >= 0; i-- {
			names = append(names, chain[i].FirstName())
		}
		out = append(out, SearchResult{Member: m, Path: strings.Join(names, " › ")})
	}
	return out
}
