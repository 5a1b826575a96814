package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/orgview/pkg/debug"
	"github.com/vanderheijden86/orgview/pkg/layout"
	"github.com/vanderheijden86/orgview/pkg/metrics"
)

// presentationCardHeight is the slideshow card below the canvas, border
// included.
const presentationCardHeight = 8

// presentation is the full-tree view with a slideshow over the chart.
type presentation struct {
	result layout.Result
	show   *layout.Slideshow
}

// slideTickMsg carries an automatic slide advance.
type slideTickMsg struct {
	show  *layout.Slideshow
	index int
}

// waitForSlideCmd waits for the next automatic advance of s. It returns nil
// once s is closed, so no goroutine outlives the presentation.
func waitForSlideCmd(s *layout.Slideshow) tea.Cmd {
	return func() tea.Msg {
		select {
		case idx := <-s.Ticks():
			return slideTickMsg{show: s, index: idx}
		case <-s.Done():
			return nil
		}
	}
}

// enterPresentation lays out the chart and starts the slideshow playing.
func (m *Model) enterPresentation() tea.Cmd {
	stop := metrics.Timer(metrics.LayoutCompute)
	res := layout.Compact(m.state.Store())
	stop()

	show := m.newSlideshow(m.state.Store().Members())
	show.Start()
	m.present = &presentation{result: res, show: show}
	m.focused = focusPresentation
	debug.Log("presentation: %d nodes, %d slides", len(res.Nodes), show.Len())
	return waitForSlideCmd(show)
}

// exitPresentation stops the slideshow for good and returns to the tree.
func (m *Model) exitPresentation() {
	if m.present != nil {
		m.present.show.Close()
		m.present = nil
	}
	m.focused = focusTree
}

// refreshPresentation re-lays out after a reload, keeping the slideshow.
func (m *Model) refreshPresentation() tea.Cmd {
	if m.present == nil {
		return nil
	}
	playing := m.present.show.Playing()
	m.present.show.Close()
	cmd := m.enterPresentation()
	if !playing {
		m.present.show.Stop()
	}
	return cmd
}

func (m Model) handlePresentationKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.present == nil {
		m.focused = focusTree
		return m, nil
	}
	switch msg.String() {
	case "esc", "p", "q":
		m.exitPresentation()
	case " ", "space":
		m.present.show.TogglePlay()
	case "right", "l", "n":
		m.present.show.Next()
	case "left", "h", "N":
		m.present.show.Prev()
	case "ctrl+c":
		m.Stop()
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) renderPresentation() string {
	if m.present == nil {
		return ""
	}
	width := m.width
	canvasHeight := m.height - presentationCardHeight - 2
	if canvasHeight < 5 {
		canvasHeight = 5
	}

	focus := ""
	if cur, ok := m.present.show.Current(); ok {
		focus = cur.ID
	}
	title := m.theme.Header.Render(m.cfg.Description) + " " +
		m.theme.MutedText.Render(fmt.Sprintf("%d members · %d levels", len(m.present.result.Nodes), m.present.result.MaxLevel+1))

	canvas := m.renderCanvas(width, canvasHeight, focus)
	card := m.renderSlideCard()
	return lipgloss.JoinVertical(lipgloss.Left, title, canvas, lipgloss.PlaceHorizontal(width, lipgloss.Center, card))
}

type canvasCell struct {
	r    rune
	node int // index into result.Nodes, -1 for connector cells
}

// renderCanvas draws the compact layout onto a character grid: elbow
// connectors from manager to report and an initials label per member.
func (m Model) renderCanvas(width, height int, focus string) string {
	if width < 10 || height < 3 {
		return ""
	}
	grid := make([][]canvasCell, height)
	for y := range grid {
		grid[y] = make([]canvasCell, width)
		for x := range grid[y] {
			grid[y][x] = canvasCell{r: ' ', node: -1}
		}
	}
	col := func(pct float64) int { return clampInt(int(pct/100*float64(width-1)+0.5), 0, width-1) }
	row := func(pct float64) int { return clampInt(int(pct/100*float64(height-1)+0.5), 0, height-1) }

	put := func(x, y int, r rune) {
		cur := grid[y][x].r
		switch {
		case cur == ' ' || cur == r:
			grid[y][x].r = r
		default:
			grid[y][x].r = '┼'
		}
	}
	hline := func(y, x1, x2 int) {
		if x1 > x2 {
			x1, x2 = x2, x1
		}
		for x := x1; x <= x2; x++ {
			put(x, y, '─')
		}
	}
	vline := func(x, y1, y2 int) {
		if y1 > y2 {
			y1, y2 = y2, y1
		}
		for y := y1; y <= y2; y++ {
			put(x, y, '│')
		}
	}

	for _, c := range m.present.result.Connectors {
		fx, fy, tx, ty := col(c.From.X), row(c.From.Y), col(c.To.X), row(c.To.Y)
		mx := (fx + tx) / 2
		hline(fy, fx, mx)
		if fy != ty {
			vline(mx, fy, ty)
		}
		hline(ty, mx, tx)
	}

	for i, n := range m.present.result.Nodes {
		label := []rune(n.Member.EffectiveInitials())
		if n.Member.ID == focus {
			label = []rune("[" + string(label) + "]")
		}
		x0 := clampInt(col(n.X)-len(label)/2, 0, width-len(label))
		y := row(n.Y)
		for j, r := range label {
			if x := x0 + j; x >= 0 && x < width {
				grid[y][x] = canvasCell{r: r, node: i}
			}
		}
	}

	lines := make([]string, height)
	for y := range grid {
		var sb strings.Builder
		var run []rune
		runNode := -2
		flush := func() {
			if len(run) == 0 {
				return
			}
			sb.WriteString(m.styleCanvasRun(runNode, focus).Render(string(run)))
			run = run[:0]
		}
		for _, c := range grid[y] {
			if c.node != runNode {
				flush()
				runNode = c.node
			}
			run = append(run, c.r)
		}
		flush()
		lines[y] = sb.String()
	}
	return strings.Join(lines, "\n")
}

func (m Model) styleCanvasRun(node int, focus string) lipgloss.Style {
	if node < 0 {
		return m.theme.MutedText
	}
	mem := m.present.result.Nodes[node].Member
	if mem.ID == focus {
		return m.theme.ChipActive.UnsetPadding()
	}
	return m.theme.DepartmentStyle(m.palette.Color(mem))
}

// renderSlideCard describes the member on the current slide.
func (m Model) renderSlideCard() string {
	show := m.present.show
	width := m.width - 4
	if width > 64 {
		width = 64
	}
	style := FocusedPanelStyle.Width(width).Padding(0, 1)

	mem, ok := show.Current()
	if !ok {
		return style.Render(m.theme.MutedText.Render("Nothing to present."))
	}
	store := m.state.Store()

	avatar := m.theme.AvatarStyle(m.palette.Color(mem)).Render(mem.EffectiveInitials())
	name := m.theme.PrimaryBold.Render(mem.DisplayName)
	var lines []string
	lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, avatar, " ", name))
	sub := mem.TitleOr("No title")
	if mem.Department != "" {
		sub += " · " + mem.Department
	}
	lines = append(lines, m.theme.SecondaryText.Render(truncate(sub, width-2)))
	if parent, ok := store.Parent(mem.ID); ok {
		lines = append(lines, m.theme.MutedText.Render("Reports to "+parent.DisplayName))
	} else {
		lines = append(lines, "")
	}
	if n := len(store.Children(mem.ID)); n > 0 {
		lines = append(lines, m.theme.MutedText.Render(plural(n, "direct report")))
	} else {
		lines = append(lines, "")
	}

	state := "❚❚ Paused"
	if show.Playing() {
		state = "▶ Playing"
	}
	lines = append(lines, m.theme.InfoText.Render(fmt.Sprintf("%s  %d / %d", state, show.Index()+1, show.Len())))
	return style.Render(strings.Join(lines, "\n"))
}
