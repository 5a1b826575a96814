package chart

import (
	"github.com/vanderheijden86/orgview/pkg/model"
)

// Select marks id as the selected member.
func (s *State) Select(id string) {
	s.selected = id
	s.hasSelected = true
}

// ClearSelection drops the selection.
func (s *State) ClearSelection() {
	s.selected = ""
	s.hasSelected = false
}

// Selected returns the selected id, if any.
func (s *State) Selected() (string, bool) {
	return s.selected, s.hasSelected
}

// SelectedMember resolves the selection against the store.
func (s *State) SelectedMember() (model.Member, bool) {
	if !s.hasSelected {
		return model.Member{}, false
	}
	return s.store.Get(s.selected)
}

// Breadcrumb returns the members from the top of id's chain down to id.
func (s *State) Breadcrumb(id string) []model.Member {
	return s.store.AncestorChain(id)
}

// CurrentPath is the breadcrumb of the selection when there is one.
// Otherwise it traces the expansion frontier from the root: at each step it
// descends into the first expanded child that has reports (or the first
// child when none qualifies) until it reaches a collapsed member or a leaf.
func (s *State) CurrentPath() []model.Member {
	if s.hasSelected {
		if path := s.Breadcrumb(s.selected); len(path) > 0 {
			return path
		}
	}

	root, ok := s.store.Root()
	if !ok {
		return nil
	}
	path := []model.Member{root}
	visited := map[string]bool{root.ID: true}
	cur := root
	for !s.collapsed[cur.ID] {
		children := s.store.Children(cur.ID)
		if len(children) == 0 {
			break
		}
		next := children[0]
		for _, c := range children {
			if !s.collapsed[c.ID] && s.store.HasChildren(c.ID) {
				next = c
				break
			}
		}
		if visited[next.ID] {
			break
		}
		visited[next.ID] = true
		path = append(path, next)
		cur = next
	}
	return path
}

// NavigateToLevel snaps the view to the path leading to id: id becomes the
// selection, its ancestors are expanded, and every other member with reports
// is collapsed, including id itself.
func (s *State) NavigateToLevel(id string) {
	onPath := make(map[string]bool)
	for _, a := range s.store.Ancestors(id) {
		onPath[a.ID] = true
	}
	s.collapsed = make(map[string]bool)
	for _, m := range s.store.Members() {
		if s.store.HasChildren(m.ID) && !onPath[m.ID] {
			s.collapsed[m.ID] = true
		}
	}
	s.Select(id)
}

// SelectSearchResult reveals id in the tree, selects it and clears the
// search.
func (s *State) SelectSearchResult(id string) {
	s.ExpandToNode(id)
	s.Select(id)
	s.SetQuery("")
}
