package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/vanderheijden86/orgview/pkg/chart"
)

// newSearchInput builds the search text field.
func newSearchInput(theme Theme) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "Search name, title, or department..."
	ti.Prompt = "/ "
	ti.PromptStyle = theme.PrimaryBold
	ti.CharLimit = 64
	return ti
}

// renderSearchBar renders the input line plus the result dropdown while the
// search field has focus, or a one-line summary of an active query.
func (m Model) renderSearchBar() string {
	if m.focused != focusSearch {
		if !m.state.Searching() {
			return ""
		}
		n := len(m.state.Results())
		summary := fmt.Sprintf("/%s  %s", m.state.Query(), plural(n, "match"))
		if n == 0 {
			summary = fmt.Sprintf("/%s  no matches", m.state.Query())
		}
		return m.theme.InfoText.Render(summary) + m.theme.MutedText.Render("  (esc clears)")
	}

	var sb strings.Builder
	sb.WriteString(m.search.View())
	results := m.state.ResultPreview(chart.DefaultPreviewLimit)
	if m.state.Searching() && len(results) == 0 {
		sb.WriteString("\n")
		sb.WriteString(m.theme.MutedText.Render("  No matches"))
	}
	for i, r := range results {
		sb.WriteString("\n")
		sb.WriteString(m.renderSearchResult(r, i == m.searchCursor))
	}
	if total := len(m.state.Results()); total > len(results) {
		sb.WriteString("\n")
		sb.WriteString(m.theme.MutedText.Render(fmt.Sprintf("  +%d more", total-len(results))))
	}
	return sb.String()
}

func (m Model) renderSearchResult(r chart.SearchResult, active bool) string {
	width := m.width - 4
	if width < 20 {
		width = 20
	}
	mem := r.Member
	marker := "  "
	if active {
		marker = m.theme.PrimaryBold.Render("▸ ")
	}
	line := mem.DisplayName
	if mem.JobTitle != "" {
		line += " · " + mem.JobTitle
	}
	if r.Path != "" {
		line += "  " + r.Path
	}
	line = truncate(line, width)
	if active {
		return marker + m.theme.Selected.Render(line)
	}
	return marker + m.theme.Base.Render(line)
}
