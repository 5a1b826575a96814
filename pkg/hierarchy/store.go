// Package hierarchy indexes a flat reports-to list into a navigable tree.
//
// The store never trusts its input: parent references may dangle, there may
// be several roots and parent links may form cycles. Every walk is bounded by
// the number of members and tracks visited ids, so malformed data degrades to
// a partial tree rather than a hang.
package hierarchy

import (
	"github.com/vanderheijden86/orgview/pkg/model"
)

// Store is an immutable index over one dataset. Replace it wholesale when the
// data is reloaded.
type Store struct {
	members  []model.Member
	index    map[string]int      // id -> position of first occurrence
	children map[string][]string // parent id -> child ids in dataset order
	rootIdx  int                 // -1 when no parentless member exists
}

// Breakdown summarizes the members below a manager.
type Breakdown struct {
	Managers    int      // descendants that have reports of their own
	ICs         int      // descendants without reports
	Departments []string // distinct non-empty departments, first-seen order
}

// New builds a store over members. The slice is copied.
func New(members []model.Member) *Store {
	s := &Store{
		members:  make([]model.Member, len(members)),
		index:    make(map[string]int, len(members)),
		children: make(map[string][]string),
		rootIdx:  -1,
	}
	copy(s.members, members)

	for i, m := range s.members {
		if _, dup := s.index[m.ID]; dup {
			continue
		}
		s.index[m.ID] = i
		if m.Parent == "" {
			if s.rootIdx < 0 {
				s.rootIdx = i
			}
			continue
		}
		s.children[m.Parent] = append(s.children[m.Parent], m.ID)
	}
	return s
}

// Members returns the dataset in its original order.
func (s *Store) Members() []model.Member {
	out := make([]model.Member, len(s.members))
	copy(out, s.members)
	return out
}

// Len returns the number of members in the dataset.
func (s *Store) Len() int {
	return len(s.members)
}

// Get looks up a member by id.
func (s *Store) Get(id string) (model.Member, bool) {
	i, ok := s.index[id]
	if !ok {
		return model.Member{}, false
	}
	return s.members[i], true
}

// Has reports whether id is present.
func (s *Store) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Root returns the first member without a parent reference.
func (s *Store) Root() (model.Member, bool) {
	if s.rootIdx < 0 {
		return model.Member{}, false
	}
	return s.members[s.rootIdx], true
}

// Roots returns every parentless member plus every member whose parent
// cannot be resolved, in dataset order. The first entry equals Root() when a
// root exists.
func (s *Store) Roots() []model.Member {
	var out []model.Member
	for i, m := range s.members {
		if s.index[m.ID] != i {
			continue
		}
		if m.Parent == "" || !s.Has(m.Parent) {
			out = append(out, m)
		}
	}
	return out
}

// Children returns the members whose parent is id, in dataset order.
func (s *Store) Children(id string) []model.Member {
	ids := s.children[id]
	if len(ids) == 0 {
		return nil
	}
	out := make([]model.Member, 0, len(ids))
	for _, cid := range ids {
		out = append(out, s.members[s.index[cid]])
	}
	return out
}

// ChildIDs returns the ids of id's direct reports, in dataset order.
func (s *Store) ChildIDs(id string) []string {
	ids := s.children[id]
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// HasChildren reports whether at least one member reports to id.
func (s *Store) HasChildren(id string) bool {
	return len(s.children[id]) > 0
}

// Siblings returns the members sharing id's parent, excluding id itself.
// Roots and unknown ids have no siblings.
func (s *Store) Siblings(id string) []model.Member {
	m, ok := s.Get(id)
	if !ok || m.Parent == "" {
		return nil
	}
	var out []model.Member
	for _, c := range s.Children(m.Parent) {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

// Parent returns the member id reports to. A dangling reference counts as
// no parent.
func (s *Store) Parent(id string) (model.Member, bool) {
	m, ok := s.Get(id)
	if !ok || m.Parent == "" {
		return model.Member{}, false
	}
	return s.Get(m.Parent)
}

// Ancestors returns id's strict ancestors, nearest first. The walk stops at a
// parentless member, an unresolvable parent or a repeated id.
func (s *Store) Ancestors(id string) []model.Member {
	if !s.Has(id) {
		return nil
	}
	var out []model.Member
	visited := map[string]bool{id: true}
	cur := id
	for steps := 0; steps <= len(s.members); steps++ {
		p, ok := s.Parent(cur)
		if !ok || visited[p.ID] {
			break
		}
		visited[p.ID] = true
		out = append(out, p)
		cur = p.ID
	}
	return out
}

// AncestorChain returns the path from the topmost reachable ancestor down to
// id, inclusive. Unknown ids yield an empty chain.
func (s *Store) AncestorChain(id string) []model.Member {
	m, ok := s.Get(id)
	if !ok {
		return nil
	}
	anc := s.Ancestors(id)
	out := make([]model.Member, 0, len(anc)+1)
	for i := len(anc) - 1; i >= 0; i-- {
		out = append(out, anc[i])
	}
	return append(out, m)
}

// IsAncestor reports whether anc is a strict ancestor of id.
func (s *Store) IsAncestor(anc, id string) bool {
	for _, a := range s.Ancestors(id) {
		if a.ID == anc {
			return true
		}
	}
	return false
}

// Depth counts the parent links from id up to a member with no resolvable
// parent. Roots and unknown ids have depth 0.
func (s *Store) Depth(id string) int {
	return len(s.Ancestors(id))
}

// Descendants returns every member below id in breadth-first order. id itself
// is never included, even when a cycle leads back to it.
func (s *Store) Descendants(id string) []model.Member {
	if !s.Has(id) {
		return nil
	}
	var out []model.Member
	visited := map[string]bool{id: true}
	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, cid := range s.children[cur] {
			if visited[cid] {
				continue
			}
			visited[cid] = true
			out = append(out, s.members[s.index[cid]])
			queue = append(queue, cid)
		}
	}
	return out
}

// DescendantCount returns len(Descendants(id)).
func (s *Store) DescendantCount(id string) int {
	return len(s.Descendants(id))
}

// RoleBreakdown splits id's descendants into managers and individual
// contributors and lists the departments they belong to.
func (s *Store) RoleBreakdown(id string) Breakdown {
	var b Breakdown
	seen := make(map[string]bool)
	for _, d := range s.Descendants(id) {
		if s.HasChildren(d.ID) {
			b.Managers++
		} else {
			b.ICs++
		}
		if d.Department != "" && !seen[d.Department] {
			seen[d.Department] = true
			b.Departments = append(b.Departments, d.Department)
		}
	}
	return b
}

// Departments returns the distinct non-empty departments in dataset order.
func (s *Store) Departments() []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range s.members {
		if m.Department != "" && !seen[m.Department] {
			seen[m.Department] = true
			out = append(out, m.Department)
		}
	}
	return out
}

// MaxDepth returns the largest Depth over all members.
func (s *Store) MaxDepth() int {
	max := 0
	for _, m := range s.members {
		if d := s.Depth(m.ID); d > max {
			max = d
		}
	}
	return max
}
