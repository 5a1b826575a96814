package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/orgview/pkg/hierarchy"
	"github.com/vanderheijden86/orgview/pkg/layout"
	"github.com/vanderheijden86/orgview/pkg/model"
)

// detailTab selects what the details panel shows for a member.
type detailTab int

const (
	tabOverview detailTab = iota
	tabOrg
	tabTeam
)

var detailTabNames = [...]string{"Overview", "Org", "Team"}

// peerPreviewLimit caps the peers listed on the Org tab.
const peerPreviewLimit = 5

func (d detailTab) String() string {
	return detailTabNames[d]
}

func (d detailTab) next() detailTab {
	return (d + 1) % detailTab(len(detailTabNames))
}

func (d detailTab) prev() detailTab {
	return (d + detailTab(len(detailTabNames)) - 1) % detailTab(len(detailTabNames))
}

// DetailsModel is the right-hand panel: member header, tab strip and a
// scrollable glamour-rendered body.
type DetailsModel struct {
	theme    Theme
	dark     bool
	tab      detailTab
	viewport viewport.Model
	renderer *glamour.TermRenderer
	wrap     int

	member  model.Member
	hasUser bool
	width   int
	height  int
}

// NewDetailsModel creates the panel. dark selects the glamour style.
func NewDetailsModel(theme Theme, dark bool) DetailsModel {
	d := DetailsModel{
		theme:    theme,
		dark:     dark,
		viewport: viewport.New(40, 10),
	}
	d.setWrap(40)
	return d
}

func (d *DetailsModel) setWrap(width int) {
	if width < 20 {
		width = 20
	}
	if d.renderer != nil && d.wrap == width {
		return
	}
	style := "light"
	if d.dark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		r = nil
	}
	d.renderer = r
	d.wrap = width
}

// SetDark switches the markdown style.
func (d *DetailsModel) SetDark(dark bool) {
	if d.dark == dark {
		return
	}
	d.dark = dark
	d.renderer = nil
	d.setWrap(d.wrap)
}

// SetSize resizes the panel, including the border.
func (d *DetailsModel) SetSize(width, height int) {
	d.width = width
	d.height = height
	inner := width - 4
	if inner < 10 {
		inner = 10
	}
	// header (2 lines) + tabs (1) + blank (1) + border (2)
	body := height - 6
	if body < 3 {
		body = 3
	}
	d.viewport.Width = inner
	d.viewport.Height = body
	d.setWrap(inner - 2)
}

// Tab returns the active tab.
func (d DetailsModel) Tab() detailTab {
	return d.tab
}

// SetTab switches tabs and resets the scroll position.
func (d *DetailsModel) SetTab(t detailTab) {
	d.tab = t
	d.viewport.GotoTop()
}

// Show renders m from store into the viewport. The tab resets to Overview
// when the member changes.
func (d *DetailsModel) Show(store *hierarchy.Store, m model.Member) {
	if !d.hasUser || d.member.ID != m.ID {
		d.tab = tabOverview
	}
	d.member = m
	d.hasUser = true
	d.refresh(store)
}

// Clear empties the panel.
func (d *DetailsModel) Clear() {
	d.hasUser = false
	d.member = model.Member{}
	d.viewport.SetContent("")
}

func (d *DetailsModel) refresh(store *hierarchy.Store) {
	if !d.hasUser {
		return
	}
	md := detailsMarkdown(store, d.member, d.tab)
	rendered := md
	if d.renderer != nil {
		if out, err := d.renderer.Render(md); err == nil {
			rendered = out
		}
	}
	d.viewport.SetContent(rendered)
	d.viewport.GotoTop()
}

// ScrollDown and ScrollUp move the body a few lines.
func (d *DetailsModel) ScrollDown() { d.viewport.LineDown(3) }
func (d *DetailsModel) ScrollUp()   { d.viewport.LineUp(3) }

// View renders the panel inside a rounded border.
func (d DetailsModel) View(palette layout.Palette, focused bool) string {
	style := PanelStyle
	if focused {
		style = FocusedPanelStyle
	}
	style = style.Width(d.width - 2).Height(d.height - 2).Padding(0, 1)

	if !d.hasUser {
		hint := d.theme.MutedText.Render("Select a member with enter to see details.")
		return style.Render(hint)
	}

	m := d.member
	avatar := d.theme.AvatarStyle(palette.Color(m)).Render(m.EffectiveInitials())
	name := d.theme.PrimaryBold.Render(truncate(m.DisplayName, d.width-10))
	sub := m.TitleOr("No title")
	if m.Department != "" {
		sub += " · " + m.Department
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top, avatar, " ",
		lipgloss.JoinVertical(lipgloss.Left, name, d.theme.MutedText.Render(truncate(sub, d.width-10))))

	tabs := make([]string, len(detailTabNames))
	for i, n := range detailTabNames {
		if detailTab(i) == d.tab {
			tabs[i] = d.theme.TabActive.Render(n)
		} else {
			tabs[i] = d.theme.TabInactive.Render(n)
		}
	}

	return style.Render(lipgloss.JoinVertical(lipgloss.Left,
		header,
		strings.Join(tabs, " "),
		d.viewport.View(),
	))
}

// detailsMarkdown builds the markdown body for one tab.
func detailsMarkdown(store *hierarchy.Store, m model.Member, tab detailTab) string {
	var sb strings.Builder
	switch tab {
	case tabOverview:
		if m.Mail != "" {
			sb.WriteString("## Contact\n\n")
			fmt.Fprintf(&sb, "%s\n\n", m.Mail)
		}
		if m.UserPrincipalName != "" && m.UserPrincipalName != m.Mail {
			fmt.Fprintf(&sb, "UPN: `%s`\n\n", m.UserPrincipalName)
		}
		if parent, ok := store.Parent(m.ID); ok {
			sb.WriteString("## Reports To\n\n")
			fmt.Fprintf(&sb, "- **%s** · %s\n\n", parent.DisplayName, parent.TitleOr("No title"))
		}
		if store.HasChildren(m.ID) {
			b := store.RoleBreakdown(m.ID)
			sb.WriteString("## Organization\n\n")
			fmt.Fprintf(&sb, "- %s, %d in total\n", plural(len(store.Children(m.ID)), "direct report"), store.DescendantCount(m.ID))
			fmt.Fprintf(&sb, "- %s, %s\n", plural(b.Managers, "manager"), plural(b.ICs, "individual contributor"))
			if len(b.Departments) > 0 {
				fmt.Fprintf(&sb, "- Departments: %s\n", strings.Join(b.Departments, ", "))
			}
			sb.WriteString("\n")
		}
		if sb.Len() == 0 {
			sb.WriteString("_No contact details._\n")
		}

	case tabOrg:
		chain := store.AncestorChain(m.ID)
		if len(chain) > 1 {
			names := make([]string, len(chain))
			for i, a := range chain {
				names[i] = a.FirstName()
			}
			sb.WriteString("## Reporting Line\n\n")
			fmt.Fprintf(&sb, "%s\n\n", strings.Join(names, " › "))
		}
		peers := store.Siblings(m.ID)
		if len(peers) > 0 {
			fmt.Fprintf(&sb, "## Peers (%d)\n\n", len(peers))
			for i, p := range peers {
				if i == peerPreviewLimit {
					break
				}
				fmt.Fprintf(&sb, "- **%s** · %s\n", p.DisplayName, p.TitleOr("No title"))
			}
			if extra := len(peers) - peerPreviewLimit; extra > 0 {
				fmt.Fprintf(&sb, "\n_+%d more peers_\n", extra)
			}
		} else if len(chain) <= 1 {
			sb.WriteString("_No peers._\n")
		}

	case tabTeam:
		children := store.Children(m.ID)
		if len(children) == 0 {
			sb.WriteString("_No direct reports_\n")
			break
		}
		fmt.Fprintf(&sb, "## Direct Reports (%d)\n\n", len(children))
		for _, c := range children {
			line := fmt.Sprintf("- **%s** · %s", c.DisplayName, c.TitleOr("No title"))
			if n := store.DescendantCount(c.ID); n > 0 {
				line += fmt.Sprintf(" (%d)", n)
			}
			sb.WriteString(line + "\n")
		}
	}
	return sb.String()
}
