// Package ui implements the interactive orgview terminal chart on top of
// bubbletea: a collapsible tree with a details panel, search, breadcrumb
// chips, a presentation view with a slideshow, and an embedded settings
// form.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/orgview/internal/datasource"
	"github.com/vanderheijden86/orgview/pkg/chart"
	"github.com/vanderheijden86/orgview/pkg/config"
	"github.com/vanderheijden86/orgview/pkg/debug"
	"github.com/vanderheijden86/orgview/pkg/hierarchy"
	"github.com/vanderheijden86/orgview/pkg/layout"
	"github.com/vanderheijden86/orgview/pkg/loader"
	"github.com/vanderheijden86/orgview/pkg/metrics"
	"github.com/vanderheijden86/orgview/pkg/model"
	"github.com/vanderheijden86/orgview/pkg/watcher"
)

// View width thresholds for adaptive layout
const (
	SplitViewThreshold = 100
	MinDetailPaneWidth = 40
)

const loadingTickInterval = 120 * time.Millisecond

// focus represents which UI element has keyboard focus
type focus int

const (
	focusTree focus = iota
	focusSearch
	focusPresentation
	focusSettings
	focusHelp
)

// LoadedMsg carries the result of a background load. Results from a
// superseded generation are dropped.
type LoadedMsg struct {
	Result loader.Result
}

// ConfigChangedMsg is sent when the config file changed on disk.
type ConfigChangedMsg struct{}

type loadingTickMsg struct{}

// WatchConfigCmd returns a command that waits for config file changes and
// sends ConfigChangedMsg
func WatchConfigCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return ConfigChangedMsg{}
	}
}

func loadingTickCmd() tea.Cmd {
	return tea.Tick(loadingTickInterval, func(time.Time) tea.Msg {
		return loadingTickMsg{}
	})
}

// Option configures a Model.
type Option func(*Model)

// WithConfigPath sets the file settings are saved to and reloaded from.
func WithConfigPath(path string) Option {
	return func(m *Model) {
		m.configPath = path
	}
}

// WithWatcher makes the model reload its config when w reports a change.
func WithWatcher(w *watcher.Watcher) Option {
	return func(m *Model) {
		m.watcher = w
	}
}

// WithConfigOverrides re-applies command line and environment overrides
// whenever the config file is reloaded.
func WithConfigOverrides(fn func(*config.Config)) Option {
	return func(m *Model) {
		m.overrides = fn
	}
}

// WithSlideshowFactory replaces how presentation slideshows are built.
func WithSlideshowFactory(fn func([]model.Member) *layout.Slideshow) Option {
	return func(m *Model) {
		m.newSlideshow = fn
	}
}

// WithClipboard replaces the clipboard writer.
func WithClipboard(fn func(string) error) Option {
	return func(m *Model) {
		m.copyText = fn
	}
}

// WithConfigSaver replaces how settings are persisted.
func WithConfigSaver(fn func(config.Config, string) error) Option {
	return func(m *Model) {
		m.saveConfig = fn
	}
}

// Model is the main bubbletea model for orgview.
type Model struct {
	cfg        config.Config
	configPath string
	overrides  func(*config.Config)
	loader     *loader.Loader
	watcher    *watcher.Watcher
	ctx        context.Context
	cancel     context.CancelFunc

	theme        Theme
	darkDetected bool

	// Chart data
	state   *chart.State
	palette layout.Palette
	result  loader.Result
	members []model.Member
	warning string // integrity summary
	loading bool
	loaded  bool
	spin    int

	// Panes
	tree         TreeModel
	details      DetailsModel
	search       textinput.Model
	searchCursor int
	showPathMap  bool
	crumbTrail   []model.Member
	crumbIndex   int
	isSplitView  bool
	stackDetails bool

	focused   focus
	prevFocus focus

	present      *presentation
	newSlideshow func([]model.Member) *layout.Slideshow

	settings   *huh.Form
	draft      *config.Draft
	saveConfig func(config.Config, string) error
	copyText   func(string) error

	statusMsg     string
	statusIsError bool

	width  int
	height int
}

// NewModel creates the UI over cfg. The chart starts empty and loading;
// Init starts the first load.
func NewModel(cfg config.Config, l *loader.Loader, opts ...Option) Model {
	if l == nil {
		l = loader.New(nil)
	}
	renderer := lipgloss.DefaultRenderer()
	detected := renderer.HasDarkBackground()
	dark := cfg.UI.IsDark(detected)
	if cfg.UI.DarkTheme != nil {
		renderer.SetHasDarkBackground(dark)
	}
	theme := DefaultTheme(renderer)

	ctx, cancel := context.WithCancel(context.Background())
	m := Model{
		cfg:          cfg,
		loader:       l,
		ctx:          ctx,
		cancel:       cancel,
		theme:        theme,
		darkDetected: detected,
		state:        chart.New(hierarchy.New(nil)),
		loading:      true,
		tree:         NewTreeModel(theme),
		details:      NewDetailsModel(theme, dark),
		search:       newSearchInput(theme),
		showPathMap:  true,
		focused:      focusTree,
		newSlideshow: func(members []model.Member) *layout.Slideshow {
			return layout.NewSlideshow(members, layout.DefaultSlideInterval)
		},
		saveConfig: config.SaveTo,
		copyText:   clipboard.WriteAll,
		width:      80,
		height:     24,
	}
	if cfg.UI.Width > 0 {
		m.width = cfg.UI.Width
	}
	if cfg.UI.Height > 0 {
		m.height = cfg.UI.Height
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.tree.SetState(m.state, m.palette)
	m.layoutPanes()
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.loadCmd(m.loader.Begin()),
		loadingTickCmd(),
	}
	if m.watcher != nil {
		cmds = append(cmds, WatchConfigCmd(m.watcher))
	}
	return tea.Batch(cmds...)
}

// Stop cancels in-flight loads and stops the slideshow. Safe to call more
// than once.
func (m Model) Stop() {
	m.cancel()
	if m.present != nil {
		m.present.show.Close()
	}
}

// Config returns the active configuration.
func (m Model) Config() config.Config {
	return m.cfg
}

// State exposes the chart state, mainly for tests.
func (m Model) State() *chart.State {
	return m.state
}

// Loading reports whether a load is in flight.
func (m Model) Loading() bool {
	return m.loading
}

// Result returns the last applied load result.
func (m Model) Result() loader.Result {
	return m.result
}

// loadCmd runs a load for gen in the background.
func (m Model) loadCmd(gen uint64) tea.Cmd {
	l, ctx := m.loader, m.ctx
	root, depth := m.cfg.RootUserEmail, m.cfg.MaxDepth
	return func() tea.Msg {
		return LoadedMsg{Result: l.LoadGeneration(ctx, gen, root, depth)}
	}
}

// startLoad begins a new generation; any load still running for an older
// generation is ignored when it lands.
func (m *Model) startLoad() tea.Cmd {
	cmd := m.loadCmd(m.loader.Begin())
	if m.loading {
		return cmd
	}
	m.loading = true
	return tea.Batch(cmd, loadingTickCmd())
}

func (m *Model) setStatus(msg string, isError bool) {
	m.statusMsg = msg
	m.statusIsError = isError
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := m.update(msg)
	m.layoutPanes()
	return m, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.focused == focusSettings && m.settings != nil {
			return m.updateSettings(msg)
		}
		return m, nil

	case LoadedMsg:
		return m.handleLoaded(msg)

	case loadingTickMsg:
		if !m.loading {
			return m, nil
		}
		m.spin++
		return m, loadingTickCmd()

	case ConfigChangedMsg:
		return m.handleConfigChanged()

	case slideTickMsg:
		if m.present == nil || msg.show != m.present.show {
			return m, nil
		}
		return m, waitForSlideCmd(msg.show)

	case tea.KeyMsg:
		if m.focused == focusSettings && m.settings != nil {
			return m.updateSettings(msg)
		}
		m.statusMsg = ""
		switch m.focused {
		case focusHelp:
			return m.handleHelpKeys(msg)
		case focusSearch:
			return m.handleSearchKeys(msg)
		case focusPresentation:
			return m.handlePresentationKeys(msg)
		default:
			return m.handleTreeKeys(msg)
		}
	}

	if m.focused == focusSettings && m.settings != nil {
		return m.updateSettings(msg)
	}
	if m.focused == focusSearch {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleLoaded installs a finished load unless a newer one has started.
func (m Model) handleLoaded(msg LoadedMsg) (Model, tea.Cmd) {
	res := msg.Result
	if !m.loader.IsCurrent(res.Generation) {
		metrics.StaleLoads.Inc()
		debug.Log("dropping stale load generation %d (current %d)", res.Generation, m.loader.Current())
		return m, nil
	}
	m.loading = false

	prev := m.members
	stop := metrics.Timer(metrics.HierarchyBuild)
	store := hierarchy.New(res.Members)
	stop()

	m.state.Reset(store)
	m.palette = layout.DepartmentPalette(store.Members())
	m.result = res
	m.members = res.Members
	m.warning = store.Integrity().Summary()
	m.crumbTrail = nil
	m.tree.SetState(m.state, m.palette)
	m.refreshDetails()

	if m.loaded && len(prev) > 0 && !res.Demo && !model.IsDemo(prev) {
		diff := datasource.Diff(prev, res.Members)
		m.setStatus("Reloaded: "+diff.Summary(), false)
	}
	m.loaded = true
	if m.warning != "" {
		debug.Log("integrity: %s", m.warning)
	}
	cmd := m.refreshPresentation()
	return m, cmd
}

// handleConfigChanged re-reads the config file and applies it.
func (m Model) handleConfigChanged() (Model, tea.Cmd) {
	var watch tea.Cmd
	if m.watcher != nil {
		watch = WatchConfigCmd(m.watcher)
	}
	if m.configPath == "" {
		return m, watch
	}
	next, err := config.LoadFrom(m.configPath)
	if err != nil {
		debug.Log("config reload failed: %v", err)
		m.setStatus(fmt.Sprintf("Config reload failed: %v", err), true)
		return m, watch
	}
	if m.overrides != nil {
		m.overrides(&next)
		if err := next.Validate(); err != nil {
			m.setStatus(fmt.Sprintf("Config reload failed: %v", err), true)
			return m, watch
		}
	}
	m, cmd := m.applyConfig(next, false)
	return m, tea.Batch(watch, cmd)
}

// refreshDetails shows the selected member, or clears the panel.
func (m *Model) refreshDetails() {
	if mem, ok := m.state.SelectedMember(); ok {
		m.details.Show(m.state.Store(), mem)
		return
	}
	m.details.Clear()
}

func (m Model) handleTreeKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	key := msg.String()
	if key != "[" && key != "]" {
		m.crumbTrail = nil
	}

	switch key {
	case "q", "ctrl+c":
		m.Stop()
		return m, tea.Quit
	case "?":
		m.prevFocus = m.focused
		m.focused = focusHelp
	case "j", "down":
		m.tree.MoveDown()
	case "k", "up":
		m.tree.MoveUp()
	case "g", "home":
		m.tree.JumpToTop()
	case "G", "end":
		m.tree.JumpToBottom()
	case "ctrl+d", "pgdown":
		m.tree.PageForwardFull()
	case "ctrl+u", "pgup":
		m.tree.PageBackwardFull()
	case "enter":
		if mem, ok := m.tree.CursorMember(); ok {
			m.state.Select(mem.ID)
			m.tree.Refresh()
			m.refreshDetails()
		}
	case "esc":
		if m.state.Searching() {
			m.state.SetQuery("")
			m.search.SetValue("")
		} else {
			m.state.ClearSelection()
			m.refreshDetails()
		}
		m.tree.Refresh()
	case " ", "space":
		if row, ok := m.tree.CursorRow(); ok && row.HasChildren {
			m.state.ToggleCollapse(row.Member.ID)
			m.tree.Refresh()
		}
	case "l", "right":
		if row, ok := m.tree.CursorRow(); ok && row.HasChildren && row.Collapsed {
			m.state.ToggleCollapse(row.Member.ID)
			m.tree.Refresh()
		}
	case "h", "left":
		if row, ok := m.tree.CursorRow(); ok && row.HasChildren && !row.Collapsed {
			m.state.ToggleCollapse(row.Member.ID)
			m.tree.Refresh()
		} else {
			m.tree.MoveToParent()
		}
	case "E":
		m.state.ExpandAll()
		m.tree.Refresh()
	case "C":
		m.state.CollapseAll()
		m.tree.Refresh()
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		m.state.CollapseToLevel(int(key[0] - '0'))
		m.tree.Refresh()
	case "[":
		m.walkCrumbs(-1)
	case "]":
		m.walkCrumbs(1)
	case "m":
		m.showPathMap = !m.showPathMap
	case "tab":
		m.details.SetTab(m.details.Tab().next())
		m.details.refresh(m.state.Store())
	case "shift+tab":
		m.details.SetTab(m.details.Tab().prev())
		m.details.refresh(m.state.Store())
	case "J":
		m.details.ScrollDown()
	case "K":
		m.details.ScrollUp()
	case "y":
		m.copyMail()
	case "/":
		m.focused = focusSearch
		m.searchCursor = 0
		m.search.SetValue(m.state.Query())
		m.search.CursorEnd()
		cmd := m.search.Focus()
		return m, cmd
	case "p":
		if m.state.Store().Len() == 0 {
			m.setStatus("Nothing to present", true)
			return m, nil
		}
		cmd := m.enterPresentation()
		return m, cmd
	case "s":
		cmd := m.openSettings()
		return m, cmd
	case "r":
		m.setStatus("Reloading "+rootLabel(m.cfg), false)
		cmd := m.startLoad()
		return m, cmd
	}
	return m, nil
}

// walkCrumbs moves along the breadcrumb chips. The first press snapshots
// the current path so ] can walk back down after [ went up.
func (m *Model) walkCrumbs(step int) {
	if m.crumbTrail == nil {
		path := m.state.CurrentPath()
		if len(path) <= 1 {
			return
		}
		m.crumbTrail = path
		m.crumbIndex = len(path) - 1
	}
	next := m.crumbIndex + step
	if next < 0 || next >= len(m.crumbTrail) {
		return
	}
	m.crumbIndex = next
	id := m.crumbTrail[next].ID
	m.state.NavigateToLevel(id)
	m.tree.Refresh()
	m.tree.MoveTo(id)
	m.refreshDetails()
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	results := m.state.ResultPreview(chart.DefaultPreviewLimit)
	switch msg.String() {
	case "ctrl+c":
		m.Stop()
		return m, tea.Quit
	case "esc":
		m.state.SetQuery("")
		m.search.SetValue("")
		m.search.Blur()
		m.focused = focusTree
		m.tree.Refresh()
		return m, nil
	case "enter":
		m.search.Blur()
		m.focused = focusTree
		if len(results) > 0 {
			id := results[clampInt(m.searchCursor, 0, len(results)-1)].Member.ID
			m.state.SelectSearchResult(id)
			m.search.SetValue("")
			m.tree.Refresh()
			m.tree.MoveTo(id)
			m.refreshDetails()
		}
		return m, nil
	case "up", "ctrl+p":
		if m.searchCursor > 0 {
			m.searchCursor--
		}
		return m, nil
	case "down", "ctrl+n":
		if m.searchCursor < len(results)-1 {
			m.searchCursor++
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if q := m.search.Value(); q != m.state.Query() {
		m.state.SetQuery(q)
		m.searchCursor = 0
		m.tree.Refresh()
	}
	return m, cmd
}

func (m Model) handleHelpKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.Stop()
		return m, tea.Quit
	case "?", "esc", "q", "enter":
		m.focused = m.prevFocus
	}
	return m, nil
}

// copyMail copies the mail address of the selected member, or of the
// member under the cursor when nothing is selected.
func (m *Model) copyMail() {
	mem, ok := m.state.SelectedMember()
	if !ok {
		mem, ok = m.tree.CursorMember()
	}
	if !ok {
		m.setStatus("No member selected", true)
		return
	}
	if mem.Mail == "" {
		m.setStatus(mem.DisplayName+" has no mail address", true)
		return
	}
	if err := m.copyText(mem.Mail); err != nil {
		m.setStatus(fmt.Sprintf("Clipboard error: %v", err), true)
		return
	}
	m.setStatus("Copied "+mem.Mail+" to clipboard", false)
}

// bodyHeight is the space between the global header and the footer.
func (m Model) bodyHeight() int {
	h := m.height - 2
	if h < 5 {
		h = 5
	}
	return h
}

// topSection renders the lines above the tree: notices, breadcrumb, path
// map and search.
func (m Model) topSection() []string {
	lines := m.renderNotices()
	if crumb := m.renderBreadcrumb(); crumb != "" {
		lines = append(lines, crumb)
	}
	if pm := m.renderPathMap(); pm != "" {
		lines = append(lines, pm)
	}
	if sb := m.renderSearchBar(); sb != "" {
		lines = append(lines, sb)
	}
	return lines
}

// layoutPanes sizes the tree and details panes for the current window.
func (m *Model) layoutPanes() {
	top := 0
	if lines := m.topSection(); len(lines) > 0 {
		top = lipgloss.Height(strings.Join(lines, "\n"))
	}
	paneHeight := m.bodyHeight() - top
	if paneHeight < 3 {
		paneHeight = 3
	}

	m.isSplitView = m.width >= SplitViewThreshold
	if !m.isSplitView {
		// Narrow: the details panel stacks under the tree once a member
		// is selected and there is room for both.
		_, selected := m.state.Selected()
		m.stackDetails = selected && paneHeight > 12
		if m.stackDetails {
			treeHeight := paneHeight / 2
			m.tree.SetSize(m.width, treeHeight)
			m.details.SetSize(m.width, paneHeight-treeHeight)
			return
		}
		m.tree.SetSize(m.width, paneHeight)
		m.details.SetSize(m.width, paneHeight)
		return
	}
	detailWidth := m.width * 2 / 5
	if detailWidth < MinDetailPaneWidth {
		detailWidth = MinDetailPaneWidth
	}
	m.tree.SetSize(m.width-detailWidth-1, paneHeight)
	m.details.SetSize(detailWidth, paneHeight)
}

func (m Model) View() string {
	defer metrics.Timer(metrics.UIRender)()

	var body string
	switch m.focused {
	case focusHelp:
		body = m.renderHelpOverlay()
	case focusSettings:
		body = m.renderSettings()
	case focusPresentation:
		body = m.renderPresentation()
	default:
		body = m.renderMain()
	}

	finalStyle := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		MaxHeight(m.height)
	return finalStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.renderGlobalHeader(), body, m.renderFooter()))
}

// renderMain renders the chart: top section, then the tree with the
// details panel beside it on wide terminals.
func (m Model) renderMain() string {
	var panes string
	if m.isSplitView {
		tree := lipgloss.NewStyle().Width(m.tree.width).Render(m.tree.View())
		panes = lipgloss.JoinHorizontal(lipgloss.Top, tree, " ", m.details.View(m.palette, false))
	} else if m.stackDetails {
		tree := lipgloss.NewStyle().Height(m.tree.height).Render(m.tree.View())
		panes = lipgloss.JoinVertical(lipgloss.Left, tree, m.details.View(m.palette, false))
	} else {
		panes = m.tree.View()
	}

	top := m.topSection()
	if len(top) == 0 {
		return lipgloss.NewStyle().Height(m.bodyHeight()).Render(panes)
	}
	return lipgloss.NewStyle().Height(m.bodyHeight()).Render(
		lipgloss.JoinVertical(lipgloss.Left, append(top, panes)...))
}

func (m Model) renderFooter() string {
	if m.statusMsg != "" {
		var msgStyle lipgloss.Style
		prefix := "✓ "
		if m.statusIsError {
			prefix = "✗ "
			msgStyle = lipgloss.NewStyle().Background(ColorDangerBg).Foreground(ColorDanger).Bold(true).Padding(0, 2)
		} else {
			msgStyle = lipgloss.NewStyle().Background(ColorSuccessBg).Foreground(ColorSuccess).Bold(true).Padding(0, 2)
		}
		msgSection := msgStyle.Render(truncate(prefix+m.statusMsg, m.width-4))
		remaining := m.width - lipgloss.Width(msgSection)
		if remaining < 0 {
			remaining = 0
		}
		return msgSection + lipgloss.NewStyle().Width(remaining).Render("")
	}

	keyStyle := lipgloss.NewStyle().Foreground(ColorMuted)
	labelStyle := lipgloss.NewStyle().Foreground(ColorText)

	type hint struct{ key, label string }
	var hints []hint
	switch m.focused {
	case focusSearch:
		hints = []hint{{"↑↓", "pick"}, {"enter", "jump"}, {"esc", "clear"}}
	case focusPresentation:
		hints = []hint{{"space", "play/pause"}, {"←→", "slide"}, {"esc", "exit"}}
	case focusSettings:
		hints = []hint{{"enter", "next"}, {"esc", "cancel"}}
	case focusHelp:
		hints = []hint{{"?", "close"}}
	default:
		hints = []hint{
			{"j/k", "nav"}, {"enter", "select"}, {"space", "fold"}, {"/", "search"},
			{"[ ]", "path"}, {"tab", "details"}, {"p", "present"}, {"s", "settings"},
			{"?", "help"}, {"q", "quit"},
		}
	}

	var out string
	for _, h := range hints {
		part := keyStyle.Render(h.key) + " " + labelStyle.Render(h.label) + "  "
		if lipgloss.Width(out+part) > m.width {
			break
		}
		out += part
	}
	return out
}
