// Package config provides configuration loading and management for cubepano.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is looked up in the working directory when no
// --config flag is given
const DefaultConfigFile = "cubepano.yaml"

// Config represents the application configuration loaded from YAML
type Config struct {
	// Processing parameters
	Processing struct {
		// NumCores specifies how many goroutines split the per-pixel projection loops
		NumCores int `yaml:"numCores"`

		// LevelWorkers bounds how many pyramid levels of one face are resized and written at once
		LevelWorkers int `yaml:"levelWorkers"`
	} `yaml:"processing"`

	// Tile pyramid output
	Tiles struct {
		// Format of each tile file: jpg, png or tif
		Format string `yaml:"format"`

		// JPEGQuality is used for JPEG tiles, previews and thumbnails
		JPEGQuality int `yaml:"jpegQuality"`

		// Archive is the path of an optional SQLite tile archive; empty disables it.
		// A relative path is resolved inside the panorama's tile directory.
		Archive string `yaml:"archive"`

		// DebugLabels stamps the tile name and a red border onto every tile
		DebugLabels bool `yaml:"debugLabels"`

		// WriteDirectory writes the viewer directory tree of tile files
		WriteDirectory bool `yaml:"writeDirectory"`
	} `yaml:"tiles"`

	// Preview image parameters
	Preview struct {
		// FaceSize is the side of each face in preview.jpg
		FaceSize int `yaml:"faceSize"`

		// ThumbSize is the side of thumb.jpg
		ThumbSize int `yaml:"thumbSize"`
	} `yaml:"preview"`

	// Cube face export parameters
	Cube struct {
		// Format of the exported face files: tif, jpg or png
		Format string `yaml:"format"`
	} `yaml:"cube"`

	// GPS lookup parameters
	GPS struct {
		// Enabled turns the capture location lookup on or off
		Enabled bool `yaml:"enabled"`

		// ExiftoolPath is the exiftool binary used when EXIF parsing finds nothing
		ExiftoolPath string `yaml:"exiftoolPath"`

		// Timeout bounds a single exiftool run
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"gps"`

	// Logging parameters
	Logging struct {
		// Level is one of debug, info, warn, error
		Level string `yaml:"level"`

		// LogFile enables an additional rotating log file
		LogFile string `yaml:"logFile"`
	} `yaml:"logging"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Processing.NumCores = runtime.NumCPU() // Use all available cores by default
	cfg.Processing.LevelWorkers = 2

	cfg.Tiles.Format = "jpg"
	cfg.Tiles.JPEGQuality = 90
	cfg.Tiles.Archive = ""
	cfg.Tiles.DebugLabels = false
	cfg.Tiles.WriteDirectory = true

	cfg.Preview.FaceSize = 256
	cfg.Preview.ThumbSize = 240

	cfg.Cube.Format = "tif"

	cfg.GPS.Enabled = true
	cfg.GPS.ExiftoolPath = "exiftool"
	cfg.GPS.Timeout = 15 * time.Second

	cfg.Logging.Level = "info"
	cfg.Logging.LogFile = ""

	return cfg
}

// LoadConfig loads configuration from a YAML file on top of the defaults.
// If the file doesn't exist, it returns the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath == "" {
		return cfg, nil
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}
	return cfg, nil
}

// Validate rejects values the pipeline cannot work with
func (c *Config) Validate() error {
	if c.Processing.NumCores < 0 {
		return fmt.Errorf("processing.numCores must not be negative, got %d", c.Processing.NumCores)
	}
	if c.Processing.LevelWorkers < 0 {
		return fmt.Errorf("processing.levelWorkers must not be negative, got %d", c.Processing.LevelWorkers)
	}
	if !validFormat(c.Tiles.Format) {
		return fmt.Errorf("tiles.format %q is not one of jpg, png, tif", c.Tiles.Format)
	}
	if !validFormat(c.Cube.Format) {
		return fmt.Errorf("cube.format %q is not one of jpg, png, tif", c.Cube.Format)
	}
	if c.Tiles.JPEGQuality < 1 || c.Tiles.JPEGQuality > 100 {
		return fmt.Errorf("tiles.jpegQuality must be within 1..100, got %d", c.Tiles.JPEGQuality)
	}
	if c.Preview.FaceSize <= 0 || c.Preview.ThumbSize <= 0 {
		return fmt.Errorf("preview sizes must be positive")
	}
	if !c.Tiles.WriteDirectory && c.Tiles.Archive == "" {
		return fmt.Errorf("tiles: writeDirectory is off and no archive is set, tiles would go nowhere")
	}
	return nil
}

func validFormat(f string) bool {
	switch strings.ToLower(f) {
	case "jpg", "jpeg", "png", "tif", "tiff":
		return true
	}
	return false
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
