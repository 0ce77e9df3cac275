// Package config provides configuration loading for resprobe.
// It supports loading from a YAML file and environment variables; command
// line flags are applied on top by the cli package.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/resprobe/internal/registry"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	// EnvHBP is the platform root; models live under $HBP/Models/brain_model.
	EnvHBP        = "HBP"
	EnvModelsPath = "RESPROBE_MODELS_PATH"
	EnvConfig     = "RESPROBE_CONFIG"
	EnvLogLevel   = "RESPROBE_LOG_LEVEL"
	EnvLogFormat  = "RESPROBE_LOG_FORMAT"
)

// Config contains all resprobe configuration settings.
type Config struct {
	// ModelsPath is the directory target modules are located in. It is put
	// in front of the search path while a module runs.
	ModelsPath string `yaml:"models_path"`

	// SearchPath lists further roots for the modules a target imports.
	SearchPath []string `yaml:"search_path,omitempty"`

	// Probe selects the dependency whose entry point is recorded.
	Probe ProbeConfig `yaml:"probe"`

	// Logging configures the diagnostics logger.
	Logging LoggingConfig `yaml:"logging"`

	// Strict makes a probe without a result fail the process.
	Strict bool `yaml:"strict"`
}

// ProbeConfig names the probed dependency and its entry point.
type ProbeConfig struct {
	Dependency string `yaml:"dependency"`
	Entry      string `yaml:"entry"`
}

// LoggingConfig configures diagnostics.
type LoggingConfig struct {
	// Level is one of "debug", "info" (default), "warn" or "error".
	Level string `yaml:"level"`
	// Format is "text" (default) or "json".
	Format string `yaml:"format"`
	// File, when set, receives diagnostics instead of standard output.
	File string `yaml:"file,omitempty"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Probe: ProbeConfig{
			Dependency: "h5py",
			Entry:      "File",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (or
// $RESPROBE_CONFIG when path is empty) and environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfig)
	}

	cfg := Default()
	if path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		cfg = fileCfg
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadFromFile loads configuration from a specific YAML file. Fields the
// file leaves out keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.ModelsPath = os.ExpandEnv(cfg.ModelsPath)
	for i, dir := range cfg.SearchPath {
		cfg.SearchPath[i] = os.ExpandEnv(dir)
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error

	if c.ModelsPath == "" {
		errs = append(errs, fmt.Errorf("models path is not set (use --models-path, %s or %s)", EnvModelsPath, EnvHBP))
	}
	if !registry.ValidName(c.Probe.Dependency) {
		errs = append(errs, fmt.Errorf("invalid probe dependency %q", c.Probe.Dependency))
	}
	if c.Probe.Entry == "" || strings.Contains(c.Probe.Entry, ".") {
		errs = append(errs, fmt.Errorf("invalid probe entry %q", c.Probe.Entry))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		errs = append(errs, fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", c.Logging.Level))
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Logging.Format] {
		errs = append(errs, fmt.Errorf("invalid log format: %s (valid: text, json)", c.Logging.Format))
	}

	return errors.Join(errs...)
}

// applyEnvOverrides applies environment variable overrides to the config.
// RESPROBE_MODELS_PATH wins over HBP.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvHBP); v != "" {
		cfg.ModelsPath = filepath.Join(v, "Models", "brain_model")
	}
	if v := os.Getenv(EnvModelsPath); v != "" {
		cfg.ModelsPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
}
