package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/orgview/pkg/model"
)

// renderGlobalHeader renders the top bar: app name and chart description on
// the left, member statistics on the right.
func (m Model) renderGlobalHeader() string {
	appName := lipgloss.NewStyle().Bold(true).Foreground(ColorText).Render("orgview")
	sep := lipgloss.NewStyle().Foreground(ColorMuted).Render(" | ")
	desc := lipgloss.NewStyle().Foreground(ColorSubtext).Render(m.cfg.Description)

	leftParts := appName + sep + desc
	if m.result.Demo {
		leftParts += " " + RenderDemoBadge()
	}

	store := m.state.Store()
	stats := fmt.Sprintf("%s · %d levels", plural(store.Len(), "member"), store.MaxDepth()+1)
	if store.Len() == 0 {
		stats = "no members"
	}
	if m.loading {
		stats = m.spinnerFrame() + " loading " + rootLabel(m.cfg) + " · " + stats
	}
	rightParts := lipgloss.NewStyle().Foreground(ColorSubtext).Render(stats)

	fillerWidth := m.width - lipgloss.Width(leftParts) - lipgloss.Width(rightParts)
	if fillerWidth < 1 {
		fillerWidth = 1
	}
	filler := lipgloss.NewStyle().Width(fillerWidth).Render("")

	return lipgloss.NewStyle().
		Width(m.width).
		Background(ColorBgHighlight).
		Render(leftParts + filler + rightParts)
}

// spinnerFrame cycles on each load tick.
func (m Model) spinnerFrame() string {
	frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	return frames[m.spin%len(frames)]
}

// renderNotices renders the load fallback message and the integrity
// warning, one line each, or nothing when all is well.
func (m Model) renderNotices() []string {
	var lines []string
	if m.result.Message != "" {
		lines = append(lines, m.theme.WarningText.Render("⚠ "+truncate(m.result.Message, m.width-3)))
	}
	if m.warning != "" {
		lines = append(lines, m.theme.WarningText.Render("⚠ "+truncate(m.warning, m.width-3)))
	}
	return lines
}

// crumbPath is the path the chips show: the trail being walked with [ and ]
// or the current path.
func (m Model) crumbPath() []model.Member {
	if m.crumbTrail != nil {
		return m.crumbTrail
	}
	return m.state.CurrentPath()
}

// renderBreadcrumb renders the path as chips joined by "›". The last chip
// and the selected member are highlighted. A single-member path renders
// nothing.
func (m Model) renderBreadcrumb() string {
	path := m.crumbPath()
	if len(path) <= 1 {
		return ""
	}
	sel, hasSel := m.state.Selected()
	active := len(path) - 1
	if m.crumbTrail != nil {
		active = m.crumbIndex
	}

	sep := m.theme.MutedText.Render(" › ")
	chips := make([]string, 0, len(path))
	for i, mem := range path {
		label := mem.EffectiveInitials() + " " + mem.FirstName()
		if i == active || (hasSel && sel == mem.ID) {
			chips = append(chips, m.theme.ChipActive.Render(label))
		} else {
			chips = append(chips, m.theme.Chip.Render(label))
		}
	}
	line := strings.Join(chips, sep)
	if lipgloss.Width(line) > m.width {
		// Drop leading chips until it fits; the end of the path matters most.
		for len(chips) > 1 && lipgloss.Width(line) > m.width-2 {
			chips = chips[1:]
			line = "…" + sep + strings.Join(chips, sep)
		}
	}
	return line
}

// renderPathMap renders the current path as a small panel, one entry per
// level, or a one-line toggle hint when hidden.
func (m Model) renderPathMap() string {
	path := m.crumbPath()
	if len(path) <= 1 {
		return ""
	}
	if !m.showPathMap {
		return m.theme.MutedText.Render(fmt.Sprintf("📍 Path (%d) · m to show", len(path)))
	}

	sel, hasSel := m.state.Selected()
	width := m.width - 4
	var items []string
	for i, mem := range path {
		name := m.theme.DepartmentStyle(m.palette.Color(mem)).Render(mem.EffectiveInitials()) + " " + mem.FirstName()
		if i == len(path)-1 || (hasSel && sel == mem.ID) {
			name = m.theme.PrimaryBold.Render("● ") + name
		}
		items = append(items, name)
	}
	arrow := m.theme.MutedText.Render(" → ")
	content := strings.Join(items, arrow)
	for len(items) > 1 && lipgloss.Width(content) > width-2 {
		items = items[1:]
		content = "…" + arrow + strings.Join(items, arrow)
	}
	title := m.theme.SecondaryText.Render(fmt.Sprintf("Current Path (%d levels)", len(path)))
	return PanelStyle.Width(width).Padding(0, 1).Render(title + "\n" + content)
}
