package ui_test

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/orgview/pkg/config"
	"github.com/vanderheijden86/orgview/pkg/layout"
	"github.com/vanderheijden86/orgview/pkg/loader"
	"github.com/vanderheijden86/orgview/pkg/model"
	"github.com/vanderheijden86/orgview/pkg/ui"
)

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)

func stripANSI(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keySpace = keyRunes(" ")
)

// stillTicker never fires, so slideshows only move on key presses.
type stillTicker struct{ c chan time.Time }

func (t stillTicker) Chan() <-chan time.Time { return t.c }
func (t stillTicker) Stop()                  {}

func stillSlideshows(members []model.Member) *layout.Slideshow {
	return layout.NewSlideshow(members, time.Second, layout.WithTickerFunc(func(time.Duration) layout.Ticker {
		return stillTicker{c: make(chan time.Time)}
	}))
}

func send(t *testing.T, m ui.Model, msgs ...tea.Msg) ui.Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(ui.Model)
		if !ok {
			t.Fatalf("Update returned %T", next)
		}
	}
	return m
}

// newTestModel builds a model and feeds it a finished load of members for
// the generation Init started.
func newTestModel(t *testing.T, members []model.Member, opts ...ui.Option) (ui.Model, *loader.Loader) {
	t.Helper()
	l := loader.New(nil)
	opts = append([]ui.Option{ui.WithSlideshowFactory(stillSlideshows)}, opts...)
	m := ui.NewModel(config.DefaultConfig(), l, opts...)
	m.Init()
	t.Cleanup(m.Stop)

	res := loader.Result{Members: members, Generation: l.Current()}
	if members == nil {
		res = l.LoadGeneration(context.Background(), l.Current(), "", 0)
	}
	m = send(t, m, tea.WindowSizeMsg{Width: 80, Height: 30}, ui.LoadedMsg{Result: res})
	return m, l
}

func selected(t *testing.T, m ui.Model) string {
	t.Helper()
	id, ok := m.State().Selected()
	if !ok {
		return ""
	}
	return id
}

func TestModelStartsLoading(t *testing.T) {
	m := ui.NewModel(config.DefaultConfig(), nil)
	defer m.Stop()
	if !m.Loading() {
		t.Error("new model should be loading")
	}
	if cmd := m.Init(); cmd == nil {
		t.Error("Init should start a load")
	}
	if view := stripANSI(m.View()); !strings.Contains(view, "loading demo data") {
		t.Errorf("header should show the load in progress:\n%s", view)
	}
}

func TestModelInstallsDemoLoad(t *testing.T) {
	m, _ := newTestModel(t, nil)
	if m.Loading() {
		t.Error("model still loading after LoadedMsg")
	}
	if !m.Result().Demo {
		t.Error("blank root should load demo data")
	}
	if n := m.State().Store().Len(); n != 10 {
		t.Errorf("expected 10 members, got %d", n)
	}

	view := stripANSI(m.View())
	for _, want := range []string{"orgview", "Organization Chart", "DEMO", "10 members · 4 levels", "John Smith", "Emily Brown"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestModelDropsStaleGeneration(t *testing.T) {
	l := loader.New(nil)
	m := ui.NewModel(config.DefaultConfig(), l)
	defer m.Stop()
	m.Init()
	stale := l.Current()
	l.Begin()

	m = send(t, m, ui.LoadedMsg{Result: loader.Result{Members: model.DemoMembers(), Generation: stale}})
	if !m.Loading() || m.State().Store().Len() != 0 {
		t.Fatal("stale result must be ignored")
	}

	m = send(t, m, ui.LoadedMsg{Result: loader.Result{Members: model.DemoMembers(), Generation: l.Current()}})
	if m.Loading() || m.State().Store().Len() != 10 {
		t.Error("current result should be installed")
	}
}

func TestModelSelectAndExpand(t *testing.T) {
	m, _ := newTestModel(t, nil)

	m = send(t, m, keyRunes("j"), keyEnter)
	if got := selected(t, m); got != "2" {
		t.Fatalf("expected Sarah (2) selected, got %q", got)
	}
	if view := stripANSI(m.View()); strings.Contains(view, "David Lee") {
		t.Error("Sarah's reports should start collapsed")
	}

	m = send(t, m, keySpace)
	if view := stripANSI(m.View()); !strings.Contains(view, "David Lee") || !strings.Contains(view, "Lisa Chen") {
		t.Errorf("space should expand Sarah:\n%s", view)
	}

	m = send(t, m, keyRunes("h"))
	if view := stripANSI(m.View()); strings.Contains(view, "David Lee") {
		t.Error("h should collapse an expanded member")
	}

	m = send(t, m, keyEsc)
	if got := selected(t, m); got != "" {
		t.Errorf("esc should clear the selection, got %q", got)
	}
}

func TestModelExpandAllAndLevels(t *testing.T) {
	m, _ := newTestModel(t, nil)

	m = send(t, m, keyRunes("E"))
	if view := stripANSI(m.View()); !strings.Contains(view, "James Taylor") {
		t.Errorf("E should expand everything:\n%s", view)
	}

	m = send(t, m, keyRunes("1"))
	view := stripANSI(m.View())
	if strings.Contains(view, "Sarah Johnson") {
		t.Errorf("level 1 should show only the root:\n%s", view)
	}
	if !strings.Contains(view, "John Smith") {
		t.Error("root must stay visible")
	}
}

func TestModelSearchSelectsResult(t *testing.T) {
	m, _ := newTestModel(t, nil)

	m = send(t, m, keyRunes("/"), keyRunes("lisa"))
	if q := m.State().Query(); q != "lisa" {
		t.Fatalf("query = %q, want lisa", q)
	}
	view := stripANSI(m.View())
	if !strings.Contains(view, "Lisa Chen · VP of Product") || !strings.Contains(view, "John › Sarah") {
		t.Errorf("dropdown should list the match with its path:\n%s", view)
	}

	m = send(t, m, keyEnter)
	if got := selected(t, m); got != "6" {
		t.Errorf("enter should select Lisa (6), got %q", got)
	}
	if m.State().Searching() {
		t.Error("selecting a result clears the search")
	}
	if view := stripANSI(m.View()); !strings.Contains(view, "◆ Lisa Chen") {
		t.Errorf("Lisa should be revealed and marked:\n%s", view)
	}
}

func TestModelSearchArrowPicksResult(t *testing.T) {
	m, _ := newTestModel(t, nil)

	// "vp" matches the four VPs in dataset order: David, Lisa, Tom, Anna.
	m = send(t, m, keyRunes("/"), keyRunes("vp"), tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown}, keyEnter)
	if got := selected(t, m); got != "7" {
		t.Errorf("expected third VP (7), got %q", got)
	}
}

func TestModelSearchEscClears(t *testing.T) {
	m, _ := newTestModel(t, nil)

	m = send(t, m, keyRunes("/"), keyRunes("zzz"))
	if view := stripANSI(m.View()); !strings.Contains(view, "No matches") {
		t.Errorf("expected empty result hint:\n%s", view)
	}
	m = send(t, m, keyEsc)
	if m.State().Searching() {
		t.Error("esc should clear the query")
	}
	if got := selected(t, m); got != "" {
		t.Errorf("esc in search must not select, got %q", got)
	}
}

func TestModelBreadcrumbWalk(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = send(t, m, keyRunes("/"), keyRunes("james"), keyEnter)
	if got := selected(t, m); got != "9" {
		t.Fatalf("setup: expected James (9), got %q", got)
	}
	view := stripANSI(m.View())
	last := -1
	for _, chip := range []string{"JS John", "SJ Sarah", "DL David", "JT James"} {
		idx := strings.Index(view, chip)
		if idx <= last {
			t.Fatalf("breadcrumb chip %q missing or out of order:\n%s", chip, view)
		}
		last = idx
	}

	m = send(t, m, keyRunes("["))
	if got := selected(t, m); got != "5" {
		t.Errorf("[ should step up to David (5), got %q", got)
	}
	m = send(t, m, keyRunes("["))
	if got := selected(t, m); got != "2" {
		t.Errorf("second [ should reach Sarah (2), got %q", got)
	}
	m = send(t, m, keyRunes("]"))
	if got := selected(t, m); got != "5" {
		t.Errorf("] should walk back down to David (5), got %q", got)
	}
	m = send(t, m, keyRunes("]"), keyRunes("]"))
	if got := selected(t, m); got != "9" {
		t.Errorf("] stops at the end of the trail, got %q", got)
	}
}

func TestModelPathMapToggle(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = send(t, m, keyRunes("/"), keyRunes("maria"), keyEnter)

	if view := stripANSI(m.View()); !strings.Contains(view, "Current Path (4 levels)") {
		t.Errorf("path map should show by default:\n%s", view)
	}
	m = send(t, m, keyRunes("m"))
	if view := stripANSI(m.View()); !strings.Contains(view, "Path (4) · m to show") {
		t.Errorf("m should collapse the path map:\n%s", view)
	}
}

func TestModelDetailTabs(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = send(t, m, tea.WindowSizeMsg{Width: 140, Height: 40}, keyEnter)

	view := stripANSI(m.View())
	if !strings.Contains(view, "Chief Executive Officer · Executive") {
		t.Errorf("split view should show the details header:\n%s", view)
	}
	m = send(t, m, keyTab, keyTab)
	if view := stripANSI(m.View()); !strings.Contains(view, "Direct Reports (3)") {
		t.Errorf("Team tab should list direct reports:\n%s", view)
	}
}

func TestModelCopyMail(t *testing.T) {
	members := []model.Member{
		{ID: "r", DisplayName: "Rita Root", Mail: "rita@example.com", JobTitle: "CEO"},
		{ID: "a", DisplayName: "Alan Able", Parent: "r"},
	}
	var copied string
	m, _ := newTestModel(t, members, ui.WithClipboard(func(s string) error {
		copied = s
		return nil
	}))

	m = send(t, m, keyRunes("y"))
	if copied != "rita@example.com" {
		t.Errorf("expected cursor member's mail copied, got %q", copied)
	}
	if view := stripANSI(m.View()); !strings.Contains(view, "Copied rita@example.com to clipboard") {
		t.Errorf("missing copy status:\n%s", view)
	}

	m = send(t, m, keyRunes("j"), keyEnter, keyRunes("y"))
	if view := stripANSI(m.View()); !strings.Contains(view, "Alan Able has no mail address") {
		t.Errorf("missing no-mail status:\n%s", view)
	}
}

func TestModelCopyMailError(t *testing.T) {
	members := []model.Member{{ID: "r", DisplayName: "Rita Root", Mail: "rita@example.com"}, {ID: "a", DisplayName: "Alan Able", Parent: "r"}}
	m, _ := newTestModel(t, members, ui.WithClipboard(func(string) error {
		return errors.New("no clipboard")
	}))
	m = send(t, m, keyRunes("y"))
	if view := stripANSI(m.View()); !strings.Contains(view, "Clipboard error: no clipboard") {
		t.Errorf("missing clipboard error:\n%s", view)
	}
}

func TestModelReloadReportsDiff(t *testing.T) {
	before := []model.Member{
		{ID: "r", DisplayName: "Rita Root"},
		{ID: "a", DisplayName: "Alan Able", Parent: "r"},
	}
	after := append(append([]model.Member(nil), before...), model.Member{ID: "b", DisplayName: "Bea Bold", Parent: "r"})

	m, l := newTestModel(t, before)
	m = send(t, m, keyRunes("r"))
	if !m.Loading() {
		t.Fatal("r should start a reload")
	}
	m = send(t, m, ui.LoadedMsg{Result: loader.Result{Members: after, Generation: l.Current()}})
	if view := stripANSI(m.View()); !strings.Contains(view, "Reloaded: 1 joined") {
		t.Errorf("reload should summarize changes:\n%s", view)
	}
}

func TestModelPresentation(t *testing.T) {
	m, _ := newTestModel(t, nil)

	m = send(t, m, keyRunes("p"))
	view := stripANSI(m.View())
	for _, want := range []string{"10 members · 4 levels", "[JS]", "John Smith", "▶ Playing  1 / 10"} {
		if !strings.Contains(view, want) {
			t.Errorf("presentation missing %q:\n%s", want, view)
		}
	}

	m = send(t, m, keySpace, keyRunes("n"))
	view = stripANSI(m.View())
	if !strings.Contains(view, "❚❚ Paused  2 / 10") || !strings.Contains(view, "Reports to John Smith") {
		t.Errorf("expected paused on slide 2:\n%s", view)
	}

	m = send(t, m, keyEsc)
	if view := stripANSI(m.View()); strings.Contains(view, "Paused") || !strings.Contains(view, "Emily Brown") {
		t.Errorf("esc should return to the tree:\n%s", view)
	}
}

func TestModelPresentationEmpty(t *testing.T) {
	l := loader.New(nil)
	m := ui.NewModel(config.DefaultConfig(), l)
	defer m.Stop()
	m = send(t, m, keyRunes("p"))
	if view := stripANSI(m.View()); !strings.Contains(view, "Nothing to present") {
		t.Errorf("expected status for an empty chart:\n%s", view)
	}
}

func TestModelHelpOverlay(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 50}, keyRunes("?"))
	view := stripANSI(m.View())
	if !strings.Contains(view, "orgview keyboard shortcuts") || !strings.Contains(view, "Presentation") {
		t.Errorf("help overlay missing:\n%s", view)
	}
	m = send(t, m, keyEsc)
	if view := stripANSI(m.View()); strings.Contains(view, "keyboard shortcuts") {
		t.Error("esc should close help")
	}
}

func TestModelSettingsCancel(t *testing.T) {
	saved := false
	m, _ := newTestModel(t, nil,
		ui.WithConfigPath("unused.yaml"),
		ui.WithConfigSaver(func(config.Config, string) error {
			saved = true
			return nil
		}))

	m = send(t, m, keyRunes("s"))
	if view := stripANSI(m.View()); !strings.Contains(view, "Chart description") {
		t.Errorf("settings form should render:\n%s", view)
	}
	m = send(t, m, keyEsc)
	view := stripANSI(m.View())
	if !strings.Contains(view, "Settings unchanged") || !strings.Contains(view, "John Smith") {
		t.Errorf("esc should close settings:\n%s", view)
	}
	if saved {
		t.Error("cancel must not save")
	}
}

func TestModelQuit(t *testing.T) {
	m, _ := newTestModel(t, nil)
	_, cmd := m.Update(keyRunes("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestModelConfigChangeReloads(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/config.yaml"
	cfg := config.DefaultConfig()
	if err := config.SaveTo(cfg, path); err != nil {
		t.Fatal(err)
	}

	m, l := newTestModel(t, nil, ui.WithConfigPath(path), ui.WithConfigOverrides(func(c *config.Config) {
		c.Description = "Overridden"
	}))
	before := l.Current()

	cfg.MaxDepth = 2
	if err := config.SaveTo(cfg, path); err != nil {
		t.Fatal(err)
	}
	m = send(t, m, ui.ConfigChangedMsg{})
	if m.Config().MaxDepth != 2 {
		t.Errorf("expected depth 2 from disk, got %d", m.Config().MaxDepth)
	}
	if m.Config().Description != "Overridden" {
		t.Errorf("overrides should be re-applied, got %q", m.Config().Description)
	}
	if l.Current() == before || !m.Loading() {
		t.Error("depth change should start a new load")
	}
}

func TestModelShowsIntegrityWarning(t *testing.T) {
	members := []model.Member{
		{ID: "r", DisplayName: "Rita Root"},
		{ID: "a", DisplayName: "Alan Able", Parent: "r"},
		{ID: "x", DisplayName: "Xena Lost", Parent: "ghost"},
	}
	m, _ := newTestModel(t, members)
	view := stripANSI(m.View())
	if !strings.Contains(view, "⚠ data issues:") || !strings.Contains(view, "unknown manager") {
		t.Errorf("integrity problems should be shown:\n%s", view)
	}
	if !strings.Contains(view, "Xena Lost") {
		t.Error("members outside the main tree still render")
	}
}
