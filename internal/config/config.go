// Package config loads sparlo configuration from .sparlo/config.yaml,
// layering environment overrides on top of declared defaults. A missing
// config file is not an error; defaults carry a workable setup for every
// command that does not call the generator API.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"sparlo/internal/catalog"
	"sparlo/internal/logging"
)

// Dir is the per-project configuration directory.
const Dir = ".sparlo"

// Config holds all sparlo configuration.
type Config struct {
	// Generator configures the report generator API.
	Generator GeneratorConfig `yaml:"generator"`

	// Store configures the report archive.
	Store StoreConfig `yaml:"store"`

	// Watch configures the inbox watcher.
	Watch WatchConfig `yaml:"watch"`

	// Validation overrides the built-in normalization tables.
	Validation ValidationConfig `yaml:"validation"`

	// Logging configures debug file logging.
	Logging LoggingConfig `yaml:"logging"`
}

// GeneratorConfig configures the generator client.
type GeneratorConfig struct {
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Timeout     string  `yaml:"timeout"`
	Temperature float64 `yaml:"temperature"`
}

// StoreConfig configures the sqlite report archive.
type StoreConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// WatchConfig configures the inbox watcher.
type WatchConfig struct {
	InboxDir   string `yaml:"inbox_dir"`
	DebounceMS int    `yaml:"debounce_ms"`
}

// ValidationConfig lets deployments extend the normalization tables
// without a rebuild. Entries merge over the built-ins; the built-ins are
// never removed.
type ValidationConfig struct {
	Synonyms map[string]string `yaml:"synonyms"`
	Sentinel string            `yaml:"sentinel"`
}

// LoggingConfig configures debug file logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"`
	Dir        string          `yaml:"dir"`
	Categories map[string]bool `yaml:"categories"`
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() *Config {
	return &Config{
		Generator: GeneratorConfig{
			Model:       "gemini-2.0-flash",
			Timeout:     "120s",
			Temperature: 0.7,
		},
		Store: StoreConfig{
			DatabasePath: filepath.Join(Dir, "reports.db"),
		},
		Watch: WatchConfig{
			InboxDir:   filepath.Join(Dir, "inbox"),
			DebounceMS: 500,
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   filepath.Join(Dir, "logs"),
		},
	}
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	return filepath.Join(Dir, "config.yaml")
}

// Load reads configuration from path, falling back to defaults when the
// file does not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration back to path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	// API key in priority order; the sparlo-specific variable wins.
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Generator.APIKey = key
	}
	if key := os.Getenv("SPARLO_API_KEY"); key != "" {
		c.Generator.APIKey = key
	}
	if path := os.Getenv("SPARLO_DB"); path != "" {
		c.Store.DatabasePath = path
	}
	if dir := os.Getenv("SPARLO_INBOX"); dir != "" {
		c.Watch.InboxDir = dir
	}
}

// ValidateGenerator checks the settings the generate command needs.
// Commands that only validate local files never call this.
func (c *Config) ValidateGenerator() error {
	if c.Generator.APIKey == "" {
		return fmt.Errorf("generator API key not configured (set SPARLO_API_KEY or GEMINI_API_KEY)")
	}
	if c.Generator.Model == "" {
		return fmt.Errorf("generator model not configured")
	}
	return nil
}

// GetGeneratorTimeout returns the generator timeout as a duration.
func (c *Config) GetGeneratorTimeout() time.Duration {
	d, err := time.ParseDuration(c.Generator.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// GetDebounce returns the watcher debounce interval.
func (c *Config) GetDebounce() time.Duration {
	if c.Watch.DebounceMS <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}

// Tables merges the validation overrides over the built-in tables.
func (c *Config) Tables() catalog.Tables {
	tables := catalog.DefaultTables()
	for from, to := range c.Validation.Synonyms {
		tables.Synonyms[from] = to
	}
	if c.Validation.Sentinel != "" {
		tables.Sentinel = c.Validation.Sentinel
	}
	return tables
}

// LogConfig translates the logging section for logging.Initialize.
func (c *Config) LogConfig() logging.Config {
	return logging.Config{
		Enabled:    c.Logging.DebugMode,
		Dir:        c.Logging.Dir,
		Level:      c.Logging.Level,
		Categories: c.Logging.Categories,
	}
}
