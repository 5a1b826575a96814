package chart

import (
	"strings"

	"github.com/vanderheijden86/orgview/pkg/model"
)

// Row is one line of the rendered tree.
type Row struct {
	Member          model.Member
	Depth           int // depth within the rendered subtree, root = 0
	HasChildren     bool
	Collapsed       bool
	Selected        bool
	Dimmed          bool // a search is active and the member did not match
	DescendantCount int
	Last            bool   // last child of its parent
	Guides          []bool // per ancestor level below the root: draw a continuation line
}

// Prefix returns the box-drawing indent for the row, e.g. "│   ├── ".
func (r Row) Prefix() string {
	if r.Depth == 0 {
		return ""
	}
	var sb strings.Builder
	for _, g := range r.Guides {
		if g {
			sb.WriteString("│   ")
		} else {
			sb.WriteString("    ")
		}
	}
	if r.Last {
		sb.WriteString("└── ")
	} else {
		sb.WriteString("├── ")
	}
	return sb.String()
}

// VisibleRows flattens the visible part of the tree in depth-first order,
// starting at the root. Members that are not reachable from the root (extra
// roots or members with an unknown manager) follow as separate subtrees.
func (s *State) VisibleRows() []Row {
	var rows []Row
	visited := make(map[string]bool, s.store.Len())
	if root, ok := s.store.Root(); ok {
		rows = s.appendRows(rows, root, 0, true, nil, visited)
	}
	for _, top := range s.store.Roots() {
		if visited[top.ID] {
			continue
		}
		rows = s.appendRows(rows, top, 0, true, nil, visited)
	}
	return rows
}

func (s *State) appendRows(rows []Row, m model.Member, depth int, last bool, guides []bool, visited map[string]bool) []Row {
	visited[m.ID] = true
	sel, hasSel := s.Selected()
	row := Row{
		Member:          m,
		Depth:           depth,
		HasChildren:     s.store.HasChildren(m.ID),
		Collapsed:       s.collapsed[m.ID],
		Selected:        hasSel && sel == m.ID,
		Dimmed:          !s.Matches(m.ID),
		DescendantCount: s.store.DescendantCount(m.ID),
		Last:            last,
		Guides:          append([]bool(nil), guides...),
	}
	rows = append(rows, row)
	if row.Collapsed {
		return rows
	}

	var childGuides []bool
	if depth > 0 {
		childGuides = append(append([]bool(nil), guides...), !last)
	}
	children := s.store.Children(m.ID)
	var kids []model.Member
	for _, c := range children {
		if !visited[c.ID] {
			kids = append(kids, c)
		}
	}
	for i, c := range kids {
		if visited[c.ID] {
			continue
		}
		rows = s.appendRows(rows, c, depth+1, i == len(kids)-1, childGuides, visited)
	}
	return rows
}

// RowIndex returns the position of id in rows, or -1.
func RowIndex(rows []Row, id string) int {
	for i, r := range rows {
		if r.Member.ID == id {
			return i
		}
	}
	return -1
}
