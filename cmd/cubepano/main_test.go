package main

import (
	"os"
	"path/filepath"
	"testing"

	"cubepano/internal/models"
	"cubepano/pkg/imageio"
)

func TestRunUsage(t *testing.T) {
	if code := run(nil); code != 2 {
		t.Errorf("Expected exit 2 without a command, got %d", code)
	}
	if code := run([]string{"explode"}); code != 2 {
		t.Errorf("Expected exit 2 for an unknown command, got %d", code)
	}
	if code := run([]string{"cube"}); code != 2 {
		t.Errorf("Expected exit 2 without inputs, got %d", code)
	}
}

func TestRunInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cubepano.yaml")
	if code := run([]string{"init-config", path}); code != 0 {
		t.Fatalf("Expected exit 0, got %d", code)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Config file not written: %v", err)
	}
	if code := run([]string{"init-config", path}); code != 1 {
		t.Errorf("Expected exit 1 when the file exists, got %d", code)
	}
}

func TestRunCubeExitStatus(t *testing.T) {
	dir := t.TempDir()
	src := models.NewPixelBuffer(64, 32)
	src.Fill(10, 20, 30)
	input := filepath.Join(dir, "pano.png")
	if err := imageio.Save(input, src, 0); err != nil {
		t.Fatal(err)
	}
	cfg := filepath.Join(dir, "none.yaml")

	if code := run([]string{"cube", "-config", cfg, "-log-level", "error", input}); code != 0 {
		t.Errorf("Expected exit 0, got %d", code)
	}
	if _, err := os.Stat(filepath.Join(dir, "pano_f.tif")); err != nil {
		t.Errorf("Front face not written: %v", err)
	}

	missing := filepath.Join(dir, "missing.png")
	if code := run([]string{"cube", "-config", cfg, "-log-level", "error", input, missing}); code != 1 {
		t.Errorf("Expected exit 1 when one input fails, got %d", code)
	}
}
