// Package config provides configuration loading and management.
package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/user/vidseq/pkg/framerate"
)

// Config represents the full configuration for vidseq.
type Config struct {
	// Input/Output
	InputPath  string `yaml:"input"`
	OutputPath string `yaml:"output"`

	// Encoding
	Codec       string `yaml:"codec"`
	PixelFormat string `yaml:"pixel_format"`
	BitRate     int    `yaml:"bit_rate"`
	FPS         string `yaml:"fps"`

	// Image sequences
	Extension string `yaml:"extension"`
	Quality   int    `yaml:"quality"`

	// Resizing (0 keeps the source dimensions)
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// Logging
	LogLevel string `yaml:"log_level"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		// Encoding
		Codec:       "av01",
		PixelFormat: "yuv420p",
		BitRate:     1_000_000,
		FPS:         "30",

		// Image sequences
		Extension: "jpg",
		Quality:   90,

		// Logging
		LogLevel: "info",
	}
}

// LoadFromFile loads configuration from a YAML file on top of the
// defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Rate returns the configured frame rate as a textual rate. Values
// like "30", "29.97" and "30000/1001" are all accepted; validation
// happens when the rate is normalized.
func (c Config) Rate() framerate.Rate {
	return framerate.Textual(strings.TrimSpace(c.FPS))
}
