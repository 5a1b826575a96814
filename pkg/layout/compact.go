// Package layout computes the compact full-tree presentation view: one
// column per management level, members spread evenly down each column, with
// curved connectors from manager to report. Coordinates are percentages of
// the canvas so any renderer (terminal grid, SVG, PNG) can scale them.
package layout

import (
	"fmt"

	"github.com/vanderheijden86/orgview/pkg/hierarchy"
	"github.com/vanderheijden86/orgview/pkg/model"
)

// Canvas insets, in percent of each axis.
const (
	PaddingX = 4.0
	PaddingY = 8.0
)

// Point is a position in percent of the canvas.
type Point struct {
	X, Y float64
}

// Node is one positioned member.
type Node struct {
	Member model.Member
	X, Y   float64
	Level  int
}

// Pos returns the node's position as a Point.
func (n Node) Pos() Point {
	return Point{X: n.X, Y: n.Y}
}

// Connector joins a manager to one report.
type Connector struct {
	From, To     Point
	FromID, ToID string
}

// Path renders the connector as a cubic Bézier path with both control
// points on the horizontal midpoint.
func (c Connector) Path() string {
	midX := (c.From.X + c.To.X) / 2
	return fmt.Sprintf("M %g %g C %g %g, %g %g, %g %g",
		c.From.X, c.From.Y, midX, c.From.Y, midX, c.To.Y, c.To.X, c.To.Y)
}

// Result is a complete compact layout.
type Result struct {
	Nodes      []Node
	Connectors []Connector
	MaxLevel   int
	Levels     [][]Node // Nodes grouped by level, level 0 first
}

// Position looks up the node for id.
func (r Result) Position(id string) (Node, bool) {
	for _, n := range r.Nodes {
		if n.Member.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Compact lays out every member reachable from the root, ignoring collapse
// state. Levels are assigned breadth-first so each member appears once even
// if the data contains cycles.
func Compact(store *hierarchy.Store) Result {
	root, ok := store.Root()
	if !ok {
		return Result{}
	}

	var levels [][]model.Member
	visited := map[string]bool{root.ID: true}
	frontier := []model.Member{root}
	for len(frontier) > 0 {
		levels = append(levels, frontier)
		var next []model.Member
		for _, m := range frontier {
			for _, c := range store.Children(m.ID) {
				if visited[c.ID] {
					continue
				}
				visited[c.ID] = true
				next = append(next, c)
			}
		}
		frontier = next
	}

	res := Result{MaxLevel: len(levels) - 1}
	usableW := 100 - PaddingX*2
	usableH := 100 - PaddingY*2
	levelW := usableW / float64(len(levels))
	pos := make(map[string]Point, len(visited))

	for li, members := range levels {
		levelH := usableH / float64(len(members))
		group := make([]Node, 0, len(members))
		for i, m := range members {
			n := Node{
				Member: m,
				X:      PaddingX + float64(li)*levelW + levelW/2,
				Y:      PaddingY + float64(i)*levelH + levelH/2,
				Level:  li,
			}
			group = append(group, n)
			res.Nodes = append(res.Nodes, n)
			pos[m.ID] = n.Pos()
		}
		res.Levels = append(res.Levels, group)
	}

	for _, m := range store.Members() {
		if m.Parent == "" {
			continue
		}
		from, okFrom := pos[m.Parent]
		to, okTo := pos[m.ID]
		if okFrom && okTo {
			res.Connectors = append(res.Connectors, Connector{From: from, To: to, FromID: m.Parent, ToID: m.ID})
		}
	}
	return res
}

// NodeSize returns the node diameter for a chart of total members: larger
// charts get smaller nodes, clamped to [24, 56]. The root is drawn 1.5x.
func NodeSize(total int, root bool) float64 {
	base := 56.0
	if total > 0 {
		base = 800 / float64(total)
	}
	if base < 24 {
		base = 24
	}
	if base > 56 {
		base = 56
	}
	if root {
		return base * 1.5
	}
	return base
}
