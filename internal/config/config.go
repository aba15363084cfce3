// Package config provides configuration loading and management for cv-analyser.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cv-analyser/internal/models"

	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag is given.
const DefaultPath = "cv-analyser.yaml"

// Preview backends.
const (
	BackendHighGUI = "highgui"
	BackendFyne    = "fyne"
	BackendNone    = "none"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	Output struct {
		// Directory is the root below which each image gets its own folder
		Directory string `yaml:"directory"`
	} `yaml:"output"`

	// Edges holds the defaults used when a threshold prompt is left blank
	Edges struct {
		Lower int `yaml:"lower"`
		Upper int `yaml:"upper"`
	} `yaml:"edges"`

	Histogram struct {
		// Mode is the plot style offered as default: curves or lines
		Mode string `yaml:"mode"`

		// DenoiseFirst runs a low-strength denoise before counting
		DenoiseFirst bool `yaml:"denoiseFirst"`
	} `yaml:"histogram"`

	Preview struct {
		// Backend selects the display: highgui, fyne or none
		Backend string `yaml:"backend"`

		// Panels larger than this are scaled down for display
		MaxWidth  int `yaml:"maxWidth"`
		MaxHeight int `yaml:"maxHeight"`
	} `yaml:"preview"`

	Prompt struct {
		// MaxAttempts caps consecutive invalid answers; 0 is unlimited
		MaxAttempts int `yaml:"maxAttempts"`
	} `yaml:"prompt"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Output.Directory = "output"

	cfg.Edges.Lower = models.DefaultEdgeThresholds.Lower
	cfg.Edges.Upper = models.DefaultEdgeThresholds.Upper

	cfg.Histogram.Mode = models.DefaultHistogramMode.String()
	cfg.Histogram.DenoiseFirst = true

	cfg.Preview.Backend = BackendHighGUI
	cfg.Preview.MaxWidth = 1280
	cfg.Preview.MaxHeight = 960

	cfg.Prompt.MaxAttempts = 0

	cfg.Log.Level = "info"

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

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

// Validate rejects values no component can honour.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Output.Directory) == "" {
		return fmt.Errorf("output.directory must not be empty")
	}
	if err := c.EdgeThresholds().Validate(); err != nil {
		return fmt.Errorf("edges: %w", err)
	}
	if _, err := c.HistogramMode(); err != nil {
		return fmt.Errorf("histogram.mode: %w", err)
	}
	switch c.Preview.Backend {
	case BackendHighGUI, BackendFyne, BackendNone:
	default:
		return fmt.Errorf("preview.backend: unknown backend %q", c.Preview.Backend)
	}
	if c.Preview.MaxWidth <= 0 || c.Preview.MaxHeight <= 0 {
		return fmt.Errorf("preview: maximum size %dx%d must be positive", c.Preview.MaxWidth, c.Preview.MaxHeight)
	}
	if c.Prompt.MaxAttempts < 0 {
		return fmt.Errorf("prompt.maxAttempts must not be negative")
	}
	return nil
}

// EdgeThresholds returns the configured defaults for the threshold prompts.
func (c *Config) EdgeThresholds() models.EdgeThresholds {
	return models.EdgeThresholds{Lower: c.Edges.Lower, Upper: c.Edges.Upper}
}

// HistogramMode returns the configured default plot style.
func (c *Config) HistogramMode() (models.HistogramMode, error) {
	return models.HistogramModeFromName(c.Histogram.Mode)
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
