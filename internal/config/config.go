// Package config handles configuration loading and defaults for taskpad.
// Configuration is loaded from XDG-compliant paths (typically
// ~/.config/taskpad/config.yaml).
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"taskpad/internal/fsutil"
)

// Config represents the application configuration.
type Config struct {
	// DataDir overrides the default data directory (~/.taskpad)
	DataDir string `yaml:"data_dir,omitempty"`

	// AutoSaveDebounceMs is the quiet period before a pending change is
	// written to disk.
	AutoSaveDebounceMs int `yaml:"auto_save_debounce_ms,omitempty"`

	// Watch enables picking up changes written by other taskpad
	// instances sharing the data directory.
	Watch bool `yaml:"watch,omitempty"`

	// Theme customizes the visual appearance of the dashboard.
	Theme ThemeConfig `yaml:"theme,omitempty"`

	// LogLevel sets diagnostic verbosity: debug, info, warn, or error.
	LogLevel string `yaml:"log_level,omitempty"`
}

// ThemeConfig defines color settings for the dashboard.
type ThemeConfig struct {
	// Primary color for focused elements (hex, e.g., "#FF5733")
	Primary string `yaml:"primary,omitempty"`

	// Accent color for highlights (hex)
	Accent string `yaml:"accent,omitempty"`

	// Muted color for secondary text (hex)
	Muted string `yaml:"muted,omitempty"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		DataDir:            defaultDataDir(),
		AutoSaveDebounceMs: 300,
		Watch:              true,
		Theme: ThemeConfig{
			Primary: "#7C3AED", // Violet
			Accent:  "#10B981", // Emerald
			Muted:   "#6B7280", // Gray
		},
		LogLevel: "warn",
	}
}

// defaultDataDir returns the default data directory path.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".taskpad"
	}
	return filepath.Join(home, ".taskpad")
}

// configDir returns the configuration directory path (XDG compliant).
func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "taskpad")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "taskpad")
}

func configPath() string {
	dir := configDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads configuration from disk, merging with defaults.
// If no config file exists, returns default configuration.
func Load() (*Config, error) {
	cfg := Default()

	path := configPath()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	var userCfg Config
	if err := yaml.Unmarshal(data, &userCfg); err != nil {
		return nil, err
	}

	var doc yaml.Node
	_ = yaml.Unmarshal(data, &doc) // best-effort; presence checks degrade gracefully

	cfg.merge(&userCfg, &doc)
	return cfg, nil
}

// merge applies user values over defaults. Strings and ints merge when
// non-zero; the Watch boolean merges only when present in the YAML so a
// false value is distinguishable from an omitted one.
func (c *Config) merge(other *Config, doc *yaml.Node) {
	if other.DataDir != "" {
		c.DataDir = other.DataDir
	}
	if other.AutoSaveDebounceMs > 0 {
		c.AutoSaveDebounceMs = other.AutoSaveDebounceMs
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.Theme.Primary != "" {
		c.Theme.Primary = other.Theme.Primary
	}
	if other.Theme.Accent != "" {
		c.Theme.Accent = other.Theme.Accent
	}
	if other.Theme.Muted != "" {
		c.Theme.Muted = other.Theme.Muted
	}
	if yamlHasPath(doc, "watch") {
		c.Watch = other.Watch
	}
}

func yamlHasPath(doc *yaml.Node, path ...string) bool {
	if doc == nil || len(path) == 0 {
		return false
	}

	n := doc
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	for _, key := range path {
		if n == nil || n.Kind != yaml.MappingNode {
			return false
		}
		var next *yaml.Node
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			v := n.Content[i+1]
			if k.Kind == yaml.ScalarNode && k.Value == key {
				next = v
				break
			}
		}
		if next == nil {
			return false
		}
		n = next
	}
	return true
}

// Save writes the configuration to disk.
func (c *Config) Save() error {
	path := configPath()
	if path == "" {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return fsutil.WriteFileAtomic(path, data, 0600)
}

// Debounce returns the auto-save quiet period as a duration.
func (c *Config) Debounce() time.Duration {
	if c.AutoSaveDebounceMs <= 0 {
		return 300 * time.Millisecond
	}
	return time.Duration(c.AutoSaveDebounceMs) * time.Millisecond
}

// GetDataDir returns the resolved data directory path.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return defaultDataDir()
	}

	if c.DataDir == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return c.DataDir
	}
	if strings.HasPrefix(c.DataDir, "~/") || strings.HasPrefix(c.DataDir, `~\`) {
		if home, err := os.UserHomeDir(); err == nil {
			trimmed := strings.TrimPrefix(c.DataDir, "~/")
			trimmed = strings.TrimPrefix(trimmed, `~\`)
			return filepath.Join(home, trimmed)
		}
	}
	return c.DataDir
}
