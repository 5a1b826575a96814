package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/orgview/pkg/chart"
	"github.com/vanderheijden86/orgview/pkg/layout"
	"github.com/vanderheijden86/orgview/pkg/model"
)

// TreeModel renders the visible rows of a chart.State with a cursor and a
// scrolling window. The collapse state lives in chart.State; the tree only
// owns the cursor and the viewport offset.
type TreeModel struct {
	theme   Theme
	state   *chart.State
	palette layout.Palette

	rows           []chart.Row
	cursor         int
	viewportOffset int
	width          int
	height         int
}

// NewTreeModel creates an empty tree.
func NewTreeModel(theme Theme) TreeModel {
	return TreeModel{theme: theme}
}

// SetState installs the chart state and department palette. The cursor stays
// on the same member when it is still visible.
func (t *TreeModel) SetState(s *chart.State, p layout.Palette) {
	t.state = s
	t.palette = p
	t.Refresh()
}

// Refresh re-derives the rows after the chart state changed.
func (t *TreeModel) Refresh() {
	prev, hadPrev := t.CursorMember()
	if t.state == nil {
		t.rows = nil
	} else {
		t.rows = t.state.VisibleRows()
	}
	if hadPrev {
		if idx := chart.RowIndex(t.rows, prev.ID); idx >= 0 {
			t.cursor = idx
		}
	}
	t.cursor = clampInt(t.cursor, 0, len(t.rows)-1)
	t.ensureCursorVisible()
}

// SetSize sets the render area. One line is reserved for the position
// indicator when the rows do not fit.
func (t *TreeModel) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.ensureCursorVisible()
}

// Rows returns the rows as last derived.
func (t *TreeModel) Rows() []chart.Row {
	return t.rows
}

// CursorIndex returns the cursor row.
func (t *TreeModel) CursorIndex() int {
	return t.cursor
}

// CursorMember returns the member under the cursor.
func (t *TreeModel) CursorMember() (model.Member, bool) {
	if t.cursor < 0 || t.cursor >= len(t.rows) {
		return model.Member{}, false
	}
	return t.rows[t.cursor].Member, true
}

// CursorRow returns the row under the cursor.
func (t *TreeModel) CursorRow() (chart.Row, bool) {
	if t.cursor < 0 || t.cursor >= len(t.rows) {
		return chart.Row{}, false
	}
	return t.rows[t.cursor], true
}

// MoveTo places the cursor on id. It reports false when id is not visible.
func (t *TreeModel) MoveTo(id string) bool {
	idx := chart.RowIndex(t.rows, id)
	if idx < 0 {
		return false
	}
	t.cursor = idx
	t.ensureCursorVisible()
	return true
}

func (t *TreeModel) MoveDown() {
	if t.cursor < len(t.rows)-1 {
		t.cursor++
		t.ensureCursorVisible()
	}
}

func (t *TreeModel) MoveUp() {
	if t.cursor > 0 {
		t.cursor--
		t.ensureCursorVisible()
	}
}

func (t *TreeModel) JumpToTop() {
	t.cursor = 0
	t.ensureCursorVisible()
}

func (t *TreeModel) JumpToBottom() {
	t.cursor = clampInt(len(t.rows)-1, 0, len(t.rows))
	t.ensureCursorVisible()
}

// PageForwardFull moves the cursor forward by a full page of rows.
func (t *TreeModel) PageForwardFull() {
	t.cursor = clampInt(t.cursor+t.effectiveVisibleCount(), 0, len(t.rows)-1)
	t.ensureCursorVisible()
}

// PageBackwardFull moves the cursor backward by a full page of rows.
func (t *TreeModel) PageBackwardFull() {
	t.cursor = clampInt(t.cursor-t.effectiveVisibleCount(), 0, len(t.rows)-1)
	t.ensureCursorVisible()
}

// MoveToParent moves the cursor to the manager of the cursor member.
func (t *TreeModel) MoveToParent() bool {
	row, ok := t.CursorRow()
	if !ok || t.state == nil {
		return false
	}
	parent, ok := t.state.Store().Parent(row.Member.ID)
	if !ok {
		return false
	}
	return t.MoveTo(parent.ID)
}

func (t *TreeModel) View() string {
	if len(t.rows) == 0 {
		return t.renderEmptyState()
	}

	var sb strings.Builder
	start, end := t.visibleRange()
	for i := start; i < end; i++ {
		row := t.rows[i]
		isCursor := i == t.cursor
		line := t.renderRow(row)
		switch {
		case isCursor:
			line = t.theme.Selected.Render(padRight(line, t.lineWidth()))
		case row.Dimmed:
			line = t.theme.Dimmed.Render(line)
		}
		sb.WriteString(line)
		if i < end-1 {
			sb.WriteString("\n")
		}
	}

	if len(t.rows) > t.effectiveVisibleCount() {
		sb.WriteString("\n")
		sb.WriteString(t.renderPositionIndicator(start, end))
	}
	return sb.String()
}

func (t *TreeModel) lineWidth() int {
	if t.width <= 0 {
		return 80
	}
	// one cell short of the edge to avoid terminal wrapping
	return t.width - 1
}

// renderRow renders one member: [prefix] [indicator] [initials] name · title [count]
func (t *TreeModel) renderRow(row chart.Row) string {
	m := row.Member
	width := t.lineWidth()

	var left strings.Builder
	left.WriteString(t.theme.MutedText.Render(row.Prefix()))
	left.WriteString(t.expandIndicator(row))
	left.WriteString(" ")

	color := t.palette.Color(m)
	if row.Dimmed {
		left.WriteString(m.EffectiveInitials())
	} else {
		left.WriteString(t.theme.DepartmentStyle(color).Render(padRight(m.EffectiveInitials(), 2)))
	}
	left.WriteString(" ")

	name := m.DisplayName
	if row.Selected {
		name = "◆ " + name
	}

	var right string
	if row.HasChildren {
		right = " " + RenderCountBadge(row.DescendantCount)
	}

	used := lipgloss.Width(left.String()) + lipgloss.Width(right)
	avail := width - used
	if avail < 4 {
		avail = 4
	}

	nameText := truncate(name, avail)
	rest := avail - lipgloss.Width(nameText)
	var title string
	if m.JobTitle != "" && rest > 4 {
		title = truncate(" · "+m.JobTitle, rest)
	}

	if row.Selected {
		left.WriteString(t.theme.PrimaryBold.Render(nameText))
	} else {
		left.WriteString(t.theme.Base.Bold(row.Depth == 0).Render(nameText))
	}
	left.WriteString(t.theme.MutedText.Render(title))
	left.WriteString(right)
	return left.String()
}

func (t *TreeModel) expandIndicator(row chart.Row) string {
	if !row.HasChildren {
		return "•"
	}
	if row.Collapsed {
		return "▸"
	}
	return "▾"
}

// renderPositionIndicator shows "Page X/Y (start-end of total)".
func (t *TreeModel) renderPositionIndicator(start, end int) string {
	pageSize := t.effectiveVisibleCount()
	totalPages := (len(t.rows) + pageSize - 1) / pageSize
	currentPage := t.viewportOffset/pageSize + 1
	if currentPage > totalPages {
		currentPage = totalPages
	}
	indicator := fmt.Sprintf(" Page %d/%d (%d-%d of %d)", currentPage, totalPages, start+1, end, len(t.rows))
	return t.theme.MutedText.Render(indicator)
}

func (t *TreeModel) renderEmptyState() string {
	var sb strings.Builder
	sb.WriteString(t.theme.PrimaryBold.Render("No members to display."))
	sb.WriteString("\n\n")
	sb.WriteString(t.theme.MutedText.Render("Press r to reload or s to change the root user."))
	return sb.String()
}

// effectiveVisibleCount is the number of rows that fit, keeping one line for
// the position indicator when scrolling is needed.
func (t *TreeModel) effectiveVisibleCount() int {
	if t.height <= 0 {
		return len(t.rows) + 1
	}
	if len(t.rows) > t.height && t.height > 1 {
		return t.height - 1
	}
	return t.height
}

func (t *TreeModel) visibleRange() (start, end int) {
	if len(t.rows) == 0 {
		return 0, 0
	}
	visibleCount := t.effectiveVisibleCount()
	start = t.viewportOffset
	if start < 0 {
		start = 0
	}
	end = start + visibleCount
	if end > len(t.rows) {
		end = len(t.rows)
		start = end - visibleCount
		if start < 0 {
			start = 0
		}
	}
	return start, end
}

func (t *TreeModel) ensureCursorVisible() {
	if len(t.rows) == 0 {
		t.viewportOffset = 0
		return
	}
	visibleCount := t.effectiveVisibleCount()
	if t.cursor < t.viewportOffset {
		t.viewportOffset = t.cursor
	}
	if t.cursor >= t.viewportOffset+visibleCount {
		t.viewportOffset = t.cursor - visibleCount + 1
	}
	maxOffset := len(t.rows) - visibleCount
	if maxOffset < 0 {
		maxOffset = 0
	}
	t.viewportOffset = clampInt(t.viewportOffset, 0, maxOffset)
}
