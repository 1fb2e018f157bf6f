package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// withConfigFile points XDG_CONFIG_HOME at a temp dir containing the
// given config contents.
func withConfigFile(t *testing.T, contents string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfgDir := filepath.Join(dir, "taskpad")
	if err := os.MkdirAll(cfgDir, 0700); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte(contents), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.AutoSaveDebounceMs != 300 {
		t.Errorf("debounce = %d, want 300", cfg.AutoSaveDebounceMs)
	}
	if !cfg.Watch {
		t.Error("watch should default on")
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
	if cfg.Theme.Primary == "" || cfg.Theme.Accent == "" || cfg.Theme.Muted == "" {
		t.Errorf("theme defaults missing: %+v", cfg.Theme)
	}
}

func TestLoadNoFileReturnsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.AutoSaveDebounceMs != 300 || !cfg.Watch {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadMergesUserValues(t *testing.T) {
	withConfigFile(t, `
data_dir: /tmp/custom
auto_save_debounce_ms: 500
log_level: debug
theme:
  primary: "#FF0000"
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DataDir != "/tmp/custom" {
		t.Errorf("data_dir = %q", cfg.DataDir)
	}
	if cfg.AutoSaveDebounceMs != 500 {
		t.Errorf("debounce = %d", cfg.AutoSaveDebounceMs)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
	if cfg.Theme.Primary != "#FF0000" {
		t.Errorf("primary = %q", cfg.Theme.Primary)
	}
	// Unset values keep their defaults.
	if cfg.Theme.Accent != "#10B981" {
		t.Errorf("accent default lost: %q", cfg.Theme.Accent)
	}
	if !cfg.Watch {
		t.Error("watch default lost")
	}
}

func TestLoadWatchFalseIsDistinguishedFromOmitted(t *testing.T) {
	withConfigFile(t, "watch: false\n")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Watch {
		t.Error("explicit watch: false was ignored")
	}
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	withConfigFile(t, "watch: [unclosed\n")
	if _, err := Load(); err == nil {
		t.Error("invalid YAML should fail to load")
	}
}

func TestDebounce(t *testing.T) {
	tests := []struct {
		ms   int
		want time.Duration
	}{
		{0, 300 * time.Millisecond},
		{-10, 300 * time.Millisecond},
		{500, 500 * time.Millisecond},
	}
	for _, tt := range tests {
		cfg := &Config{AutoSaveDebounceMs: tt.ms}
		if got := cfg.Debounce(); got != tt.want {
			t.Errorf("Debounce(%d) = %v, want %v", tt.ms, got, tt.want)
		}
	}
}

func TestGetDataDirExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		dataDir string
		want    string
	}{
		{"~", home},
		{"~/custom", filepath.Join(home, "custom")},
		{"/absolute/path", "/absolute/path"},
	}
	for _, tt := range tests {
		cfg := &Config{DataDir: tt.dataDir}
		if got := cfg.GetDataDir(); got != tt.want {
			t.Errorf("GetDataDir(%q) = %q, want %q", tt.dataDir, got, tt.want)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	cfg.DataDir = "/tmp/elsewhere"
	cfg.AutoSaveDebounceMs = 750
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.DataDir != "/tmp/elsewhere" || loaded.AutoSaveDebounceMs != 750 {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}
