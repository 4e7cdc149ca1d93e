package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFileConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `
preset = "battery_saver"
store_path = "/var/lib/netbatch/queue.db"
max_batch_size = 25
immediate_domains = ["auth.example.com"]
enable_metrics = false
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}
	if fc.Preset != "battery_saver" {
		t.Errorf("Preset = %v, want battery_saver", fc.Preset)
	}
	if fc.MaxBatchSize != 25 {
		t.Errorf("MaxBatchSize = %v, want 25", fc.MaxBatchSize)
	}
	if len(fc.ImmediateDomains) != 1 || fc.ImmediateDomains[0] != "auth.example.com" {
		t.Errorf("ImmediateDomains = %v", fc.ImmediateDomains)
	}
	if fc.EnableMetrics == nil || *fc.EnableMetrics {
		t.Errorf("EnableMetrics = %v, want pointer to false", fc.EnableMetrics)
	}
}

func TestLoadFileConfig_MissingFile(t *testing.T) {
	if _, err := LoadFileConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("LoadFileConfig() error = nil, want error for missing file")
	}
}

func TestApplyFileConfig(t *testing.T) {
	enableMetrics := false
	fc := FileConfig{
		Preset:           "minimal",
		StorePath:        "/var/lib/netbatch/queue.db",
		MaxBatchSize:     10,
		MinBatchInterval: "5m",
		EnableMetrics:    &enableMetrics,
		ImmediateDomains: []string{"auth.example.com"},
	}

	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc, map[string]bool{}); err != nil {
		t.Fatalf("ApplyFileConfig() error = %v", err)
	}

	if cfg.Preset != "minimal" {
		t.Errorf("Preset = %v, want minimal", cfg.Preset)
	}
	if cfg.StorePath != "/var/lib/netbatch/queue.db" {
		t.Errorf("StorePath = %v, want /var/lib/netbatch/queue.db", cfg.StorePath)
	}
	if cfg.MinBatchInterval != 5*time.Minute {
		t.Errorf("MinBatchInterval = %v, want 5m", cfg.MinBatchInterval)
	}
	if cfg.EnableMetrics {
		t.Error("EnableMetrics = true, want false")
	}
	if len(cfg.ImmediateDomains) != 1 || cfg.ImmediateDomains[0] != "auth.example.com" {
		t.Errorf("ImmediateDomains = %v", cfg.ImmediateDomains)
	}
}

func TestApplyFileConfig_RespectsChangedFlags(t *testing.T) {
	fc := FileConfig{StorePath: "/from/file.db"}

	cfg := DefaultConfig()
	cfg.StorePath = "/from/flag.db"

	if err := ApplyFileConfig(&cfg, fc, map[string]bool{"store-path": true}); err != nil {
		t.Fatalf("ApplyFileConfig() error = %v", err)
	}
	if cfg.StorePath != "/from/flag.db" {
		t.Errorf("StorePath = %v, want /from/flag.db (flag wins over file)", cfg.StorePath)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()
	if path == "" {
		t.Skip("no home directory available in this environment")
	}
	if filepath.Base(path) != "config.toml" {
		t.Errorf("DefaultConfigPath() = %v, want a config.toml path", path)
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "present.toml")
	if err := os.WriteFile(present, []byte(""), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if !FileExists(present) {
		t.Error("FileExists() = false, want true")
	}
	if FileExists(filepath.Join(dir, "absent.toml")) {
		t.Error("FileExists() = true, want false")
	}
}
