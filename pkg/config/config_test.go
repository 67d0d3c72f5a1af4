package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Processing.NumCores != runtime.NumCPU() {
		t.Errorf("Expected NumCores %d, got %d", runtime.NumCPU(), cfg.Processing.NumCores)
	}
	if cfg.Processing.LevelWorkers != 2 {
		t.Errorf("Expected LevelWorkers 2, got %d", cfg.Processing.LevelWorkers)
	}
	if cfg.Tiles.Format != "jpg" || cfg.Tiles.JPEGQuality != 90 || !cfg.Tiles.WriteDirectory {
		t.Errorf("Unexpected tile defaults %+v", cfg.Tiles)
	}
	if cfg.Preview.FaceSize != 256 || cfg.Preview.ThumbSize != 240 {
		t.Errorf("Unexpected preview defaults %+v", cfg.Preview)
	}
	if cfg.GPS.Timeout != 15*time.Second {
		t.Errorf("Expected 15s GPS timeout, got %v", cfg.GPS.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Defaults should validate: %v", err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Tiles.Format != "jpg" {
		t.Error("Expected defaults for a missing file")
	}

	if _, err := LoadConfig(""); err != nil {
		t.Errorf("Empty path should give defaults, got %v", err)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cubepano.yaml")
	data := []byte(`
processing:
  numCores: 3
tiles:
  format: png
  archive: tiles.db
  debugLabels: true
gps:
  enabled: false
  timeout: 2s
logging:
  level: debug
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Processing.NumCores != 3 {
		t.Errorf("Expected 3 cores, got %d", cfg.Processing.NumCores)
	}
	if cfg.Tiles.Format != "png" || cfg.Tiles.Archive != "tiles.db" || !cfg.Tiles.DebugLabels {
		t.Errorf("Unexpected tiles section %+v", cfg.Tiles)
	}
	if cfg.GPS.Enabled || cfg.GPS.Timeout != 2*time.Second {
		t.Errorf("Unexpected gps section %+v", cfg.GPS)
	}
	// Untouched values keep their defaults
	if cfg.Tiles.JPEGQuality != 90 || cfg.Processing.LevelWorkers != 2 || cfg.Cube.Format != "tif" {
		t.Error("Defaults should survive a partial file")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected debug level, got %q", cfg.Logging.Level)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("tiles: [unclosed"), 0644)
	if _, err := LoadConfig(bad); err == nil {
		t.Error("Expected parse error")
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	os.WriteFile(invalid, []byte("tiles:\n  format: bmp\n"), 0644)
	if _, err := LoadConfig(invalid); err == nil {
		t.Error("Expected validation error for unsupported format")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative cores", func(c *Config) { c.Processing.NumCores = -1 }},
		{"negative workers", func(c *Config) { c.Processing.LevelWorkers = -2 }},
		{"quality too high", func(c *Config) { c.Tiles.JPEGQuality = 101 }},
		{"zero preview", func(c *Config) { c.Preview.FaceSize = 0 }},
		{"bad cube format", func(c *Config) { c.Cube.Format = "exr" }},
		{"no tile output", func(c *Config) { c.Tiles.WriteDirectory = false }},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}

	cfg := DefaultConfig()
	cfg.Tiles.WriteDirectory = false
	cfg.Tiles.Archive = "tiles.db"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Archive-only output should validate: %v", err)
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cubepano.yaml")
	if err := CreateDefaultConfigFile(path); err != nil {
		t.Fatalf("CreateDefaultConfigFile failed: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.GPS.Timeout != 15*time.Second || cfg.Preview.ThumbSize != 240 {
		t.Errorf("Round-tripped config differs: %+v", cfg)
	}
}
