// Package config loads grainscope settings from YAML and provides defaults
// matching the reference pipeline.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Preprocess controls contrast enhancement ahead of thresholding
	Preprocess struct {
		// Enabled turns CLAHE on; when false the image passes through unchanged
		Enabled bool `yaml:"enabled"`

		// ClipLimit bounds histogram amplification per tile
		ClipLimit float64 `yaml:"clipLimit"`

		// TileGrid is the number of tiles along each axis
		TileGrid int `yaml:"tileGrid"`
	} `yaml:"preprocess"`

	Threshold struct {
		// Invert selects dark grains on a bright background
		Invert bool `yaml:"invert"`

		// BlurKernel is the Gaussian kernel size applied before the histogram
		BlurKernel int `yaml:"blurKernel"`
	} `yaml:"threshold"`

	Morphology struct {
		// Shape names the structuring element: rect, cross or ellipse
		Shape            string `yaml:"shape"`
		KernelSize       int    `yaml:"kernelSize"`
		CloseIterations  int    `yaml:"closeIterations"`
		OpenIterations   int    `yaml:"openIterations"`
		DilateIterations int    `yaml:"dilateIterations"`
	} `yaml:"morphology"`

	Watershed struct {
		// MinDistance is the minimum separation between seed peaks in pixels
		MinDistance int `yaml:"minDistance"`

		// ExcludeBorder ignores peaks within MinDistance of the image edge
		ExcludeBorder bool `yaml:"excludeBorder"`
	} `yaml:"watershed"`

	Metrics struct {
		// ReferenceAreaMM2 is the physical area covered by one image
		ReferenceAreaMM2 float64 `yaml:"referenceAreaMM2"`

		// DarkThreshold is the fixed intensity below which a pixel counts as pearlite
		DarkThreshold int `yaml:"darkThreshold"`
	} `yaml:"metrics"`

	Logging struct {
		Level   string `yaml:"level"`
		Console bool   `yaml:"console"`
	} `yaml:"logging"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Preprocess.Enabled = true
	cfg.Preprocess.ClipLimit = 2.0
	cfg.Preprocess.TileGrid = 8

	cfg.Threshold.Invert = false
	cfg.Threshold.BlurKernel = 5

	cfg.Morphology.Shape = "rect"
	cfg.Morphology.KernelSize = 3
	cfg.Morphology.CloseIterations = 2
	cfg.Morphology.OpenIterations = 2
	cfg.Morphology.DilateIterations = 3

	cfg.Watershed.MinDistance = 20
	cfg.Watershed.ExcludeBorder = true

	// Without a calibration the reference pipeline assumes one square millimetre.
	cfg.Metrics.ReferenceAreaMM2 = 1.0
	cfg.Metrics.DarkThreshold = 100

	cfg.Logging.Level = "info"
	cfg.Logging.Console = true

	return cfg
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var err error

	if c.Preprocess.ClipLimit <= 0 {
		err = multierr.Append(err, fmt.Errorf("preprocess.clipLimit must be positive, got %v", c.Preprocess.ClipLimit))
	}
	if c.Preprocess.TileGrid < 1 {
		err = multierr.Append(err, fmt.Errorf("preprocess.tileGrid must be at least 1, got %d", c.Preprocess.TileGrid))
	}
	if c.Threshold.BlurKernel < 1 || c.Threshold.BlurKernel%2 == 0 {
		err = multierr.Append(err, fmt.Errorf("threshold.blurKernel must be a positive odd number, got %d", c.Threshold.BlurKernel))
	}
	if c.Morphology.KernelSize < 1 || c.Morphology.KernelSize%2 == 0 {
		err = multierr.Append(err, fmt.Errorf("morphology.kernelSize must be a positive odd number, got %d", c.Morphology.KernelSize))
	}
	switch c.Morphology.Shape {
	case "rect", "cross", "ellipse":
	default:
		err = multierr.Append(err, fmt.Errorf("morphology.shape must be rect, cross or ellipse, got %q", c.Morphology.Shape))
	}
	for _, it := range []struct {
		name  string
		value int
	}{
		{"morphology.closeIterations", c.Morphology.CloseIterations},
		{"morphology.openIterations", c.Morphology.OpenIterations},
		{"morphology.dilateIterations", c.Morphology.DilateIterations},
	} {
		if it.value < 1 {
			err = multierr.Append(err, fmt.Errorf("%s must be at least 1, got %d", it.name, it.value))
		}
	}
	if c.Watershed.MinDistance < 1 {
		err = multierr.Append(err, fmt.Errorf("watershed.minDistance must be at least 1, got %d", c.Watershed.MinDistance))
	}
	if c.Metrics.DarkThreshold < 0 || c.Metrics.DarkThreshold > 255 {
		err = multierr.Append(err, fmt.Errorf("metrics.darkThreshold must be within [0, 255], got %d", c.Metrics.DarkThreshold))
	}
	// A non-positive reference area is allowed: it yields the G-number sentinel.

	return err
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
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
	return SaveConfig(DefaultConfig(), configPath)
}
