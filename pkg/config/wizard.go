package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// Draft holds the editable settings while a form is open. Apply copies them
// into a Config.
type Draft struct {
	Description   string
	RootUserEmail string
	MaxDepth      int
	DarkTheme     bool
	SourceKind    string
	SourcePath    string
}

// NewDraft seeds a Draft from cfg.
func NewDraft(cfg Config) *Draft {
	return &Draft{
		Description:   cfg.Description,
		RootUserEmail: cfg.RootUserEmail,
		MaxDepth:      ClampDepth(cfg.MaxDepth),
		DarkTheme:     cfg.UI.IsDark(true),
		SourceKind:    strings.ToLower(cfg.Source.Kind),
		SourcePath:    cfg.Source.Path,
	}
}

// Apply returns cfg with the draft's settings, validated.
func (d *Draft) Apply(cfg Config) (Config, error) {
	cfg.Description = d.Description
	cfg.RootUserEmail = strings.TrimSpace(d.RootUserEmail)
	cfg.MaxDepth = d.MaxDepth
	dark := d.DarkTheme
	cfg.UI.DarkTheme = &dark
	cfg.Source.Kind = d.SourceKind
	cfg.Source.Path = strings.TrimSpace(d.SourcePath)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// validateIdentity accepts an empty identity (demo mode) or a single token.
func validateIdentity(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.ContainsAny(s, " \t") {
		return errors.New("identity must not contain spaces")
	}
	return nil
}

// isTerminal checks if stdin is connected to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func newForm(groups ...*huh.Group) *huh.Form {
	return huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
}

// SettingsForm builds the settings form over d. The UI embeds it as a
// tea.Model; RunWizard runs it standalone.
func SettingsForm(d *Draft) *huh.Form {
	depths := make([]huh.Option[int], 0, MaxMaxDepth)
	for i := MinMaxDepth; i <= MaxMaxDepth; i++ {
		depths = append(depths, huh.NewOption(fmt.Sprintf("%d", i), i))
	}
	if d.SourceKind == "" {
		d.SourceKind = SourceGraph
	}

	return newForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Chart description").
				Value(&d.Description).
				Placeholder(DefaultDescription),
			huh.NewInput().
				Title("Root user").
				Description("Mail or UPN of the top of the chart. Leave empty for demo data.").
				Value(&d.RootUserEmail).
				Validate(validateIdentity),
			huh.NewSelect[int]().
				Title("Levels to load").
				Options(depths...).
				Value(&d.MaxDepth),
			huh.NewConfirm().
				Title("Dark theme?").
				Value(&d.DarkTheme),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Directory source").
				Options(
					huh.NewOption("Microsoft Graph", SourceGraph),
					huh.NewOption("JSON/YAML directory file", SourceFile),
					huh.NewOption("SQLite directory cache", SourceSQLite),
				).
				Value(&d.SourceKind),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Directory path").
				Value(&d.SourcePath).
				Validate(func(s string) error {
					if d.RootUserEmail != "" && strings.TrimSpace(s) == "" {
						return errors.New("a path is required for this source")
					}
					return nil
				}),
		).WithHideFunc(func() bool { return d.SourceKind == SourceGraph }),
	)
}

// RunWizard runs the settings form on the terminal, then saves the result to
// path. The summary of the current settings is written to out first.
func RunWizard(cfg Config, path string, out io.Writer) (Config, error) {
	printSettings(out, cfg, path)

	d := NewDraft(cfg)
	// Without a terminal, fall back to plain line-by-line prompts.
	form := SettingsForm(d).WithAccessible(!isTerminal())
	if err := form.Run(); err != nil {
		return cfg, err
	}
	next, err := d.Apply(cfg)
	if err != nil {
		return cfg, err
	}
	if err := SaveTo(next, path); err != nil {
		return cfg, err
	}
	fmt.Fprintf(out, "\nSaved settings to %s\n", path)
	if ReloadNeeded(cfg, next) {
		fmt.Fprintln(out, "The chart will be reloaded on next start.")
	}
	return next, nil
}

func printSettings(out io.Writer, cfg Config, path string) {
	root := cfg.RootUserEmail
	if root == "" {
		root = "(demo data)"
	}
	fmt.Fprintln(out, "Current settings:")
	fmt.Fprintln(out, "────────────────────────────")
	fmt.Fprintf(out, "  File:        %s\n", path)
	fmt.Fprintf(out, "  Description: %s\n", cfg.Description)
	fmt.Fprintf(out, "  Root user:   %s\n", root)
	fmt.Fprintf(out, "  Max depth:   %d\n", ClampDepth(cfg.MaxDepth))
	fmt.Fprintf(out, "  Source:      %s\n", cfg.Source.Kind)
	if cfg.Source.Path != "" {
		fmt.Fprintf(out, "  Path:        %s\n", cfg.Source.Path)
	}
	fmt.Fprintln(out, "")
}
