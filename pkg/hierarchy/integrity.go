package hierarchy

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Report lists the structural problems found in a dataset. None of them stop
// the chart from rendering; they are surfaced as warnings.
type Report struct {
	DuplicateIDs []string   `json:"duplicate_ids,omitempty"`
	ExtraRoots   []string   `json:"extra_roots,omitempty"`   // parentless members after the first
	Dangling     []string   `json:"dangling,omitempty"`      // members whose parent id is unknown
	Cycles       [][]string `json:"cycles,omitempty"`        // member ids of each reports-to cycle, sorted
	Unreachable  []string   `json:"unreachable,omitempty"`   // members not below the root
	MissingRoot  bool       `json:"missing_root,omitempty"`  // no parentless member at all
}

// OK reports whether the dataset is a single well-formed tree.
func (r Report) OK() bool {
	return len(r.DuplicateIDs) == 0 && len(r.ExtraRoots) == 0 && len(r.Dangling) == 0 &&
		len(r.Cycles) == 0 && len(r.Unreachable) == 0 && !r.MissingRoot
}

// Summary renders the report as a single warning line, or "" when OK.
func (r Report) Summary() string {
	if r.OK() {
		return ""
	}
	var parts []string
	if r.MissingRoot {
		parts = append(parts, "no root")
	}
	if n := len(r.DuplicateIDs); n > 0 {
		parts = append(parts, fmt.Sprintf("%d duplicate id(s)", n))
	}
	if n := len(r.ExtraRoots); n > 0 {
		parts = append(parts, fmt.Sprintf("%d extra root(s)", n))
	}
	if n := len(r.Dangling); n > 0 {
		parts = append(parts, fmt.Sprintf("%d unknown manager reference(s)", n))
	}
	if n := len(r.Cycles); n > 0 {
		parts = append(parts, fmt.Sprintf("%d reporting cycle(s)", n))
	}
	if n := len(r.Unreachable); n > 0 {
		parts = append(parts, fmt.Sprintf("%d member(s) outside the main tree", n))
	}
	return "data issues: " + strings.Join(parts, ", ")
}

// Integrity inspects the dataset for everything that keeps it from being a
// single tree.
func (s *Store) Integrity() Report {
	var r Report

	seen := make(map[string]bool, len(s.members))
	for _, m := range s.members {
		if seen[m.ID] {
			r.DuplicateIDs = append(r.DuplicateIDs, m.ID)
		}
		seen[m.ID] = true
	}

	root, hasRoot := s.Root()
	r.MissingRoot = !hasRoot
	for i, m := range s.members {
		if s.index[m.ID] != i {
			continue
		}
		switch {
		case m.Parent == "":
			if hasRoot && m.ID != root.ID {
				r.ExtraRoots = append(r.ExtraRoots, m.ID)
			}
		case !s.Has(m.Parent):
			r.Dangling = append(r.Dangling, m.ID)
		}
	}

	r.Cycles = s.cycles()

	if hasRoot {
		reach := map[string]bool{root.ID: true}
		for _, d := range s.Descendants(root.ID) {
			reach[d.ID] = true
		}
		for i, m := range s.members {
			if s.index[m.ID] == i && !reach[m.ID] {
				r.Unreachable = append(r.Unreachable, m.ID)
			}
		}
	}
	return r
}

// cycles finds reports-to cycles as strongly connected components of the
// child -> parent graph.
func (s *Store) cycles() [][]string {
	g := simple.NewDirectedGraph()
	idToNode := make(map[string]int64, len(s.index))
	nodeToID := make(map[int64]string, len(s.index))

	for i, m := range s.members {
		if s.index[m.ID] != i {
			continue
		}
		n := g.NewNode()
		g.AddNode(n)
		idToNode[m.ID] = n.ID()
		nodeToID[n.ID()] = m.ID
	}

	var selfLoops []string
	for id, u := range idToNode {
		m := s.members[s.index[id]]
		if m.Parent == "" {
			continue
		}
		if m.Parent == id {
			// simple graphs reject self edges
			selfLoops = append(selfLoops, id)
			continue
		}
		if v, ok := idToNode[m.Parent]; ok {
			g.SetEdge(g.NewEdge(g.Node(u), g.Node(v)))
		}
	}

	var out [][]string
	for _, scc := range topo.TarjanSCC(g) {
		if len(scc) < 2 {
			continue
		}
		ids := make([]string, 0, len(scc))
		for _, n := range scc {
			ids = append(ids, nodeToID[n.ID()])
		}
		sort.Strings(ids)
		out = append(out, ids)
	}
	for _, id := range selfLoops {
		out = append(out, []string{id})
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}
