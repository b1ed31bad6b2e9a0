package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/user/vidseq/pkg/framerate"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Codec != "av01" {
		t.Errorf("expected codec av01, got %s", cfg.Codec)
	}
	if cfg.BitRate != 1_000_000 {
		t.Errorf("expected bit rate 1000000, got %d", cfg.BitRate)
	}
	if cfg.FPS != "30" {
		t.Errorf("expected fps 30, got %s", cfg.FPS)
	}
	if cfg.Extension != "jpg" {
		t.Errorf("expected extension jpg, got %s", cfg.Extension)
	}
}

func TestLoadFromFile(t *testing.T) {
	content := `
fps: "29.97"
bit_rate: 500000
extension: png
log_level: debug
`
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if cfg.FPS != "29.97" {
		t.Errorf("expected fps 29.97, got %s", cfg.FPS)
	}
	if cfg.BitRate != 500000 {
		t.Errorf("expected bit rate 500000, got %d", cfg.BitRate)
	}
	if cfg.Extension != "png" {
		t.Errorf("expected extension png, got %s", cfg.Extension)
	}
	// Untouched fields keep their defaults.
	if cfg.Codec != "av01" {
		t.Errorf("expected default codec av01, got %s", cfg.Codec)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestRate(t *testing.T) {
	cfg := Defaults()
	cfg.FPS = "29.97"

	norm, err := cfg.Rate().Normalize()
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if norm != (framerate.Rational{Num: 2997, Den: 100}) {
		t.Errorf("expected 2997/100, got %v", norm)
	}
}
