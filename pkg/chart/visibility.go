package chart

// IsCollapsed reports whether id's subtree is hidden.
func (s *State) IsCollapsed(id string) bool {
	return s.collapsed[id]
}

// IsVisible reports whether no strict ancestor of id is collapsed. The root
// and unknown ids are always visible.
func (s *State) IsVisible(id string) bool {
	for _, a := range s.store.Ancestors(id) {
		if s.collapsed[a.ID] {
			return false
		}
	}
	return true
}

// ToggleCollapse flips id's collapse state. Expanding a member also
// collapses every sibling that has reports (accordion); collapsing has no
// effect on siblings.
func (s *State) ToggleCollapse(id string) {
	if !s.collapsed[id] {
		s.collapsed[id] = true
		return
	}
	delete(s.collapsed, id)
	for _, sib := range s.store.Siblings(id) {
		if s.store.HasChildren(sib.ID) {
			s.collapsed[sib.ID] = true
		}
	}
}

// ExpandToNode removes every strict ancestor of id from the collapsed set so
// that id becomes visible. Collapse state elsewhere is untouched.
func (s *State) ExpandToNode(id string) {
	for _, a := range s.store.Ancestors(id) {
		delete(s.collapsed, a.ID)
	}
}

// CollapseToLevel shows n levels of the chart: every member at depth n-1 or
// deeper that has reports is collapsed. The previous set is replaced.
func (s *State) CollapseToLevel(n int) {
	s.collapsed = make(map[string]bool)
	for _, m := range s.store.Members() {
		if s.store.HasChildren(m.ID) && s.store.Depth(m.ID) >= n-1 {
			s.collapsed[m.ID] = true
		}
	}
}

// ExpandAll clears the collapsed set.
func (s *State) ExpandAll() {
	s.collapsed = make(map[string]bool)
}

// CollapseAll collapses every member that has reports.
func (s *State) CollapseAll() {
	s.collapsed = make(map[string]bool)
	for _, m := range s.store.Members() {
		if s.store.HasChildren(m.ID) {
			s.collapsed[m.ID] = true
		}
	}
}
