package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/orgview/pkg/config"
	"github.com/vanderheijden86/orgview/pkg/debug"
)

// openSettings embeds the settings form over the current config.
func (m *Model) openSettings() tea.Cmd {
	m.draft = config.NewDraft(m.cfg)
	form := config.SettingsForm(m.draft)
	form.SubmitCmd = nil
	form.CancelCmd = nil
	if w := m.width - 8; w > 20 {
		form = form.WithWidth(w)
	}
	m.settings = form
	m.focused = focusSettings
	return m.settings.Init()
}

func (m *Model) closeSettings() {
	m.settings = nil
	m.draft = nil
	m.focused = focusTree
}

// updateSettings forwards every message to the form. huh needs all message
// types, not only keys, for its internal field navigation.
func (m Model) updateSettings(msg tea.Msg) (Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		m.closeSettings()
		m.setStatus("Settings unchanged", false)
		return m, nil
	}

	model, cmd := m.settings.Update(msg)
	if f, ok := model.(*huh.Form); ok {
		m.settings = f
	}

	switch m.settings.State {
	case huh.StateAborted:
		m.closeSettings()
		m.setStatus("Settings unchanged", false)
		return m, nil
	case huh.StateCompleted:
		next, err := m.draft.Apply(m.cfg)
		m.closeSettings()
		if err != nil {
			m.setStatus(fmt.Sprintf("Invalid settings: %v", err), true)
			return m, nil
		}
		return m.applyConfig(next, true)
	}
	return m, cmd
}

// applyConfig installs next, persisting it when save is set, and reloads
// the chart when the root or depth changed.
func (m Model) applyConfig(next config.Config, save bool) (Model, tea.Cmd) {
	prev := m.cfg
	m.cfg = next
	m.details.SetDark(next.UI.IsDark(m.darkDetected))

	if save && m.configPath != "" {
		if err := m.saveConfig(next, m.configPath); err != nil {
			m.setStatus(fmt.Sprintf("Could not save settings: %v", err), true)
			return m, nil
		}
		debug.Log("settings saved to %s", m.configPath)
	}

	status := "Settings saved"
	if prev.Source.Kind != next.Source.Kind || prev.Source.Path != next.Source.Path {
		status = "Source changes apply on next start"
	}
	if config.ReloadNeeded(prev, next) {
		if status == "Settings saved" {
			status = "Reloading " + rootLabel(next)
		}
		m.setStatus(status, false)
		cmd := m.startLoad()
		return m, cmd
	}
	m.setStatus(status, false)
	return m, nil
}

func (m Model) renderSettings() string {
	title := m.theme.PrimaryBold.Render("Settings")
	hint := m.theme.MutedText.Render("enter to confirm each step · esc to cancel")
	body := lipgloss.JoinVertical(lipgloss.Left, title, "", m.settings.View(), "", hint)
	return lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center,
		FocusedPanelStyle.Padding(1, 2).Render(body))
}

func rootLabel(cfg config.Config) string {
	if cfg.DemoMode() {
		return "demo data"
	}
	return cfg.RootUserEmail
}
