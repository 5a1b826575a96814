// Package config handles loading and saving orgview configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/orgview/config.yaml
//   - Data:    ~/.local/share/orgview/ (exported charts)
//   - State:   ~/.local/state/orgview/ (debug logs, cpu profiles)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultDescription is the chart title used when none is configured.
	DefaultDescription = "Organization Chart"
	// DefaultMaxDepth is how many management levels are fetched below the root.
	DefaultMaxDepth = 5
	// MinMaxDepth and MaxMaxDepth bound the configurable depth.
	MinMaxDepth = 1
	MaxMaxDepth = 10

	DefaultGraphBaseURL   = "https://graph.microsoft.com/v1.0"
	DefaultGraphSecretEnv = "ORGVIEW_GRAPH_SECRET"
	DefaultGraphTimeout   = 10 * time.Second
)

// Source kinds.
const (
	SourceGraph  = "graph"
	SourceFile   = "file"
	SourceSQLite = "sqlite"
)

// UIConfig holds display hints.
type UIConfig struct {
	DarkTheme *bool `yaml:"dark_theme,omitempty"` // nil = detect from terminal
	Width     int   `yaml:"width,omitempty"`      // 0 = terminal width
	Height    int   `yaml:"height,omitempty"`     // 0 = terminal height
}

// GraphConfig configures the Microsoft Graph directory source.
type GraphConfig struct {
	TenantID        string        `yaml:"tenant_id,omitempty"`
	ClientID        string        `yaml:"client_id,omitempty"`
	ClientSecretEnv string        `yaml:"client_secret_env,omitempty"` // Env var holding the client secret
	BaseURL         string        `yaml:"base_url,omitempty"`
	Timeout         time.Duration `yaml:"timeout,omitempty"`
}

// ClientSecret reads the secret from the configured environment variable.
func (g GraphConfig) ClientSecret() string {
	if g.ClientSecretEnv == "" {
		return ""
	}
	return os.Getenv(g.ClientSecretEnv)
}

// SourceConfig selects where directory data comes from.
type SourceConfig struct {
	Kind  string      `yaml:"kind,omitempty"` // graph, file, sqlite
	Path  string      `yaml:"path,omitempty"` // file or sqlite path
	Graph GraphConfig `yaml:"graph,omitempty"`
}

// Config is the top-level configuration for orgview.
type Config struct {
	Description   string       `yaml:"description,omitempty"`
	RootUserEmail string       `yaml:"root_user_email"` // Empty = demo mode
	MaxDepth      int          `yaml:"max_depth,omitempty"`
	UI            UIConfig     `yaml:"ui,omitempty"`
	Source        SourceConfig `yaml:"source,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Description: DefaultDescription,
		MaxDepth:    DefaultMaxDepth,
		Source: SourceConfig{
			Kind: SourceGraph,
			Graph: GraphConfig{
				ClientSecretEnv: DefaultGraphSecretEnv,
				BaseURL:         DefaultGraphBaseURL,
				Timeout:         DefaultGraphTimeout,
			},
		},
	}
}

// Validate normalizes the config in place: it fills defaults, clamps the
// depth and rejects unknown source kinds.
func (c *Config) Validate() error {
	c.Description = strings.TrimSpace(c.Description)
	if c.Description == "" {
		c.Description = DefaultDescription
	}
	c.RootUserEmail = strings.TrimSpace(c.RootUserEmail)
	c.MaxDepth = ClampDepth(c.MaxDepth)

	c.Source.Kind = strings.ToLower(strings.TrimSpace(c.Source.Kind))
	switch c.Source.Kind {
	case "":
		c.Source.Kind = SourceGraph
	case SourceGraph, SourceFile, SourceSQLite:
	default:
		return fmt.Errorf("unknown source kind %q (want graph, file or sqlite)", c.Source.Kind)
	}
	if c.Source.Kind == SourceSQLite && c.Source.Path == "" {
		c.Source.Path = DefaultSQLitePath()
	}
	if (c.Source.Kind == SourceFile || c.Source.Kind == SourceSQLite) && c.Source.Path == "" && c.RootUserEmail != "" {
		return fmt.Errorf("source kind %q requires a path", c.Source.Kind)
	}
	c.Source.Path = expandHome(c.Source.Path)
	if c.Source.Graph.BaseURL == "" {
		c.Source.Graph.BaseURL = DefaultGraphBaseURL
	}
	c.Source.Graph.BaseURL = strings.TrimRight(c.Source.Graph.BaseURL, "/")
	if c.Source.Graph.Timeout <= 0 {
		c.Source.Graph.Timeout = DefaultGraphTimeout
	}
	if c.UI.Width < 0 {
		c.UI.Width = 0
	}
	if c.UI.Height < 0 {
		c.UI.Height = 0
	}
	return nil
}

// ClampDepth maps 0 to DefaultMaxDepth and clamps everything else into
// [MinMaxDepth, MaxMaxDepth].
func ClampDepth(d int) int {
	switch {
	case d == 0:
		return DefaultMaxDepth
	case d < MinMaxDepth:
		return MinMaxDepth
	case d > MaxMaxDepth:
		return MaxMaxDepth
	}
	return d
}

// DemoMode reports whether no root identity is configured.
func (c Config) DemoMode() bool {
	return strings.TrimSpace(c.RootUserEmail) == ""
}

// ReloadNeeded reports whether moving from prev to next requires fetching the
// hierarchy again. Only the root identity, the depth and the source matter;
// display settings never trigger a reload.
func ReloadNeeded(prev, next Config) bool {
	return !strings.EqualFold(strings.TrimSpace(prev.RootUserEmail), strings.TrimSpace(next.RootUserEmail)) ||
		ClampDepth(prev.MaxDepth) != ClampDepth(next.MaxDepth) ||
		prev.Source.Kind != next.Source.Kind ||
		prev.Source.Path != next.Source.Path
}

// ApplyEnv overlays ORGVIEW_ROOT and ORGVIEW_MAX_DEPTH. Invalid depth values
// are ignored.
func (c *Config) ApplyEnv() {
	if v, ok := os.LookupEnv("ORGVIEW_ROOT"); ok {
		c.RootUserEmail = strings.TrimSpace(v)
	}
	if v := strings.TrimSpace(os.Getenv("ORGVIEW_MAX_DEPTH")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxDepth = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("ORGVIEW_SOURCE")); v != "" {
		c.Source.Kind = v
	}
}

// ConfigDir returns the XDG config directory for orgview.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "orgview")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "orgview")
}

// DataDir returns the XDG data directory for orgview.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "orgview")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "orgview")
}

// DefaultSQLitePath is where a SQLite directory cache lives when the config
// names none.
func DefaultSQLitePath() string {
	dir := DataDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "directory.db")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path and validates it.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// IsDark resolves the theme hint, falling back to detected when unset.
func (u UIConfig) IsDark(detected bool) bool {
	if u.DarkTheme == nil {
		return detected
	}
	return *u.DarkTheme
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
