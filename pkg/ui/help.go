package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type shortcut struct{ key, desc string }

type helpSection struct {
	title     string
	shortcuts []shortcut
}

var helpSections = []helpSection{
	{"Navigation", []shortcut{
		{"j / ↓", "Move down"},
		{"k / ↑", "Move up"},
		{"g / G", "First / last member"},
		{"Ctrl+d/u", "Page down / up"},
		{"h / ←", "Collapse or go to manager"},
		{"l / →", "Expand"},
		{"enter", "Select member"},
		{"esc", "Clear selection"},
	}},
	{"Chart", []shortcut{
		{"space", "Toggle reports"},
		{"E", "Expand all"},
		{"C", "Collapse all"},
		{"1-9", "Show N levels"},
		{"[ / ]", "Walk the path chips"},
		{"m", "Toggle path map"},
	}},
	{"Details", []shortcut{
		{"tab", "Next tab"},
		{"shift+tab", "Previous tab"},
		{"J / K", "Scroll details"},
		{"y", "Copy mail address"},
	}},
	{"Search", []shortcut{
		{"/", "Search"},
		{"↑ / ↓", "Pick a result"},
		{"enter", "Jump to result"},
		{"esc", "Clear search"},
	}},
	{"Presentation", []shortcut{
		{"p", "Enter / leave"},
		{"space", "Play / pause"},
		{"← / →", "Previous / next"},
	}},
	{"General", []shortcut{
		{"s", "Settings"},
		{"r", "Reload"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}},
}

func (m Model) renderHelpOverlay() string {
	t := m.theme

	// 3 columns for wide (≥120), 2 columns for medium (≥80), 1 column for narrow
	numCols := 3
	if m.width < 120 {
		numCols = 2
	}
	if m.width < 80 {
		numCols = 1
	}

	totalPadding := 8
	gapWidth := 2
	colWidth := (m.width - totalPadding - gapWidth*(numCols-1)) / numCols
	if colWidth < 28 {
		colWidth = 28
	}

	colors := []lipgloss.AdaptiveColor{
		{Light: "#7D56F4", Dark: "#BD93F9"}, // Purple
		{Light: "#FF79C6", Dark: "#FF79C6"}, // Pink
		{Light: "#8BE9FD", Dark: "#8BE9FD"}, // Cyan
		{Light: "#50FA7B", Dark: "#50FA7B"}, // Green
		{Light: "#FFB86C", Dark: "#FFB86C"}, // Orange
		{Light: "#F1FA8C", Dark: "#F1FA8C"}, // Yellow
	}

	renderPanel := func(s helpSection, colorIdx int) string {
		color := colors[colorIdx%len(colors)]

		headerStyle := t.Renderer.NewStyle().
			Foreground(color).
			Bold(true).
			BorderStyle(lipgloss.Border{Bottom: "─"}).
			BorderBottom(true).
			BorderForeground(color).
			Width(colWidth-4).
			Padding(0, 1)
		keyStyle := t.Renderer.NewStyle().
			Foreground(color).
			Bold(true).
			Width(12)
		descStyle := t.Renderer.NewStyle().
			Foreground(t.Base.GetForeground()).
			Width(colWidth - 18)

		var content strings.Builder
		content.WriteString(headerStyle.Render(s.title))
		content.WriteString("\n")
		for _, sc := range s.shortcuts {
			content.WriteString(keyStyle.Render(sc.key))
			content.WriteString(descStyle.Render(sc.desc))
			content.WriteString("\n")
		}

		return t.Renderer.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(color).
			Padding(0, 1).
			Width(colWidth).
			Render(strings.TrimSuffix(content.String(), "\n"))
	}

	columns := make([][]string, numCols)
	for i, s := range helpSections {
		columns[i%numCols] = append(columns[i%numCols], renderPanel(s, i))
	}
	rendered := make([]string, 0, numCols)
	for i, col := range columns {
		if i > 0 {
			rendered = append(rendered, strings.Repeat(" ", gapWidth))
		}
		rendered = append(rendered, lipgloss.JoinVertical(lipgloss.Left, col...))
	}

	title := t.PrimaryBold.Render("orgview keyboard shortcuts")
	hint := t.MutedText.Render("Press ? or esc to close")
	body := lipgloss.JoinVertical(lipgloss.Center,
		title, "",
		lipgloss.JoinHorizontal(lipgloss.Top, rendered...),
		"", hint)
	return lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, body)
}
