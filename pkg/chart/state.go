// Package chart holds the interactive view state of an org chart: which
// subtrees are collapsed, which member is selected and what the user is
// searching for. All derived views (visible rows, breadcrumb, current path,
// search results) are recomputed from the hierarchy store on demand.
//
// State is not safe for concurrent use; it is owned by the UI event loop.
package chart

import (
	"sort"

	"github.com/vanderheijden86/orgview/pkg/hierarchy"
)

// State is the mutable view state for one chart instance.
type State struct {
	store     *hierarchy.Store
	collapsed map[string]bool

	selected    string
	hasSelected bool

	query   string
	matches map[string]bool
}

// New creates a State over store with the initial collapse policy applied.
func New(store *hierarchy.Store) *State {
	s := &State{}
	s.Reset(store)
	return s
}

// Store returns the hierarchy the state currently renders.
func (s *State) Store() *hierarchy.Store {
	return s.store
}

// Reset installs a freshly loaded store. The collapsed set is reseeded with
// the initial policy; the selection survives only if the member still
// exists; the search query is re-run against the new data.
func (s *State) Reset(store *hierarchy.Store) {
	if store == nil {
		store = hierarchy.New(nil)
	}
	s.store = store
	s.applyInitialCollapse()
	if s.hasSelected && !store.Has(s.selected) {
		s.ClearSelection()
	}
	s.SetQuery(s.query)
}

// applyInitialCollapse collapses every member below the root that has
// reports, leaving the root's direct reports in view.
func (s *State) applyInitialCollapse() {
	s.collapsed = make(map[string]bool)
	for _, m := range s.store.Members() {
		if s.store.Depth(m.ID) >= 1 && s.store.HasChildren(m.ID) {
			s.collapsed[m.ID] = true
		}
	}
}

// Collapsed returns the collapsed ids, sorted.
func (s *State) Collapsed() []string {
	out := make([]string, 0, len(s.collapsed))
	for id := range s.collapsed {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// SetCollapsed replaces the collapsed set. Unknown ids are kept; they have
// no effect on rendering.
func (s *State) SetCollapsed(ids []string) {
	s.collapsed = make(map[string]bool, len(ids))
	for _, id := range ids {
		s.collapsed[id] = true
	}
}
