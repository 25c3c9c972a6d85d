// Package config provides configuration management for nbslides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/open-cli-collective/nbslides/internal/logging"
	"github.com/open-cli-collective/nbslides/pkg/deck"
)

// Defaults for every configurable value.
const (
	DefaultStartMarker       = deck.DefaultStartMarker
	DefaultEndMarker         = deck.DefaultEndMarker
	DefaultCodeStartMarker   = deck.DefaultCodeStartMarker
	DefaultCodeEndMarker     = deck.DefaultCodeEndMarker
	DefaultPageSeparator     = deck.DefaultPageSeparator
	DefaultDocumentSeparator = "\n\n---\n\n"
	DefaultLogLevel          = "warn"
	DefaultLogFormat         = "console"
	DefaultWorkers           = 4
)

// Markers delimit a command-comment region.
type Markers struct {
	Start string `yaml:"start,omitempty" json:"start"`
	End   string `yaml:"end,omitempty" json:"end"`
}

// Config holds the nbslides configuration.
type Config struct {
	Markers           Markers `yaml:"markers,omitempty" json:"markers"`
	CodeMarkers       Markers `yaml:"code_markers,omitempty" json:"code_markers"`
	PageSeparator     string  `yaml:"page_separator,omitempty" json:"page_separator"`
	DocumentSeparator string  `yaml:"document_separator,omitempty" json:"document_separator"`
	LogLevel          string  `yaml:"log_level,omitempty" json:"log_level"`
	LogFormat         string  `yaml:"log_format,omitempty" json:"log_format"`
	Workers           int     `yaml:"workers,omitempty" json:"workers"`
	OutputFormat      string  `yaml:"output_format,omitempty" json:"output_format,omitempty"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset fields with their defaults.
func (c *Config) ApplyDefaults() {
	if c.Markers.Start == "" {
		c.Markers.Start = DefaultStartMarker
	}
	if c.Markers.End == "" {
		c.Markers.End = DefaultEndMarker
	}
	if c.CodeMarkers.Start == "" {
		c.CodeMarkers.Start = DefaultCodeStartMarker
	}
	if c.CodeMarkers.End == "" {
		c.CodeMarkers.End = DefaultCodeEndMarker
	}
	if c.PageSeparator == "" {
		c.PageSeparator = DefaultPageSeparator
	}
	if c.DocumentSeparator == "" {
		c.DocumentSeparator = DefaultDocumentSeparator
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Markers),
		validation.Field(&c.CodeMarkers),
		validation.Field(&c.PageSeparator, validation.Required),
		validation.Field(&c.DocumentSeparator, validation.Required),
		validation.Field(&c.LogLevel, accepted("log_level", logging.Levels, logging.ValidLevel)),
		validation.Field(&c.LogFormat, accepted("log_format", logging.Formats, logging.ValidFormat)),
		validation.Field(&c.Workers, validation.Required, validation.Min(1)),
	)
}

// Validate requires both markers to hold more than whitespace.
func (m Markers) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Start, notBlank),
		validation.Field(&m.End, notBlank),
	)
}

var notBlank = validation.By(func(value any) error {
	if s, _ := value.(string); strings.TrimSpace(s) == "" {
		return validation.NewError("nbslides.config.blank", "cannot be blank")
	}
	return nil
})

// accepted applies valid to a string field; values are listed in the error.
func accepted(field string, values []string, valid func(string) bool) validation.Rule {
	return validation.By(func(value any) error {
		s, _ := value.(string)
		if !valid(s) {
			return validation.NewError("nbslides.config."+field+"_invalid",
				fmt.Sprintf("%q is not one of %s", s, strings.Join(values, ", ")))
		}
		return nil
	})
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables override existing values only if set and non-empty.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("NBSLIDES_START_MARKER"); v != "" {
		c.Markers.Start = v
	}
	if v := os.Getenv("NBSLIDES_END_MARKER"); v != "" {
		c.Markers.End = v
	}
	if v := os.Getenv("NBSLIDES_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("NBSLIDES_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid NBSLIDES_WORKERS %q: %w", v, err)
		}
		c.Workers = n
	}
	return nil
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	// Try XDG config directory first
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "nbslides", "config.yml")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".nbslides", "config.yml")
	}

	return filepath.Join(home, ".config", "nbslides", "config.yml")
}

// Save writes the configuration to the specified path.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Load reads the configuration from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// LoadWithEnv loads configuration from file, overrides it with environment
// variables and fills the remaining defaults. A missing file is not an error.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		cfg = &Config{}
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}
