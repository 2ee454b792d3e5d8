// Package config provides configuration file support for the analyzer.
//
// Values are resolved in three layers: built-in defaults, an optional YAML
// file, then BWPROT_* environment variables. Command-line flags are applied
// on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bwprot/bwprotanalyzer/pkg/errclass"
	"github.com/bwprot/bwprotanalyzer/pkg/fsutil"
)

// EnvPath names the variable holding the config file path when --config is absent.
const EnvPath = "BWPROT_CONFIG"

// Config represents the analyzer configuration.
type Config struct {
	Encoding           string                    `yaml:"encoding" json:"encoding"`
	Timezone           string                    `yaml:"timezone" json:"timezone"`
	OutputFormat       string                    `yaml:"output_format" json:"output_format"`
	FlushTrailingBlock bool                      `yaml:"flush_trailing_block" json:"flush_trailing_block"`
	SkipMalformed      bool                      `yaml:"skip_malformed" json:"skip_malformed"`
	MetricsFile        string                    `yaml:"metrics_file,omitempty" json:"metrics_file,omitempty"`
	Logging            LoggingConfig             `yaml:"logging" json:"logging"`
	Templates          map[string]TemplateConfig `yaml:"templates,omitempty" json:"templates,omitempty"`
}

// LoggingConfig configures diagnostics on stderr.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"` // json, text
}

// TemplateConfig adds or replaces the rendering of one record type.
type TemplateConfig struct {
	Keyword string `yaml:"keyword" json:"keyword"`
	Message string `yaml:"message" json:"message"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Encoding:     "cp1252",
		Timezone:     "Local",
		OutputFormat: "text",
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path on top of the defaults and applies
// environment overrides. An empty path falls back to $BWPROT_CONFIG; a
// missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvPath)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// defaults
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, errclass.ErrConfigInvalid.WithMessagef("parse %s: %v", path, err)
			}
		}
	}

	loadFromEnv(cfg)
	return cfg, nil
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("BWPROT_ENCODING"); v != "" {
		cfg.Encoding = v
	}
	if v := os.Getenv("BWPROT_TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv("BWPROT_OUTPUT_FORMAT"); v != "" {
		cfg.OutputFormat = v
	}
	if v := os.Getenv("BWPROT_SKIP_MALFORMED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.SkipMalformed = b
		}
	}
	if v := os.Getenv("BWPROT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("BWPROT_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

// Validate checks the values that have a closed set of choices.
// Encoding names are resolved later by the code page registry.
func (c *Config) Validate() error {
	switch strings.ToLower(c.OutputFormat) {
	case "", "text", "jsonl", "json":
	default:
		return errclass.ErrConfigInvalid.WithMessagef("output_format %q (want text or jsonl)", c.OutputFormat)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return errclass.ErrConfigInvalid.WithMessagef("logging.level %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return errclass.ErrConfigInvalid.WithMessagef("logging.format %q", c.Logging.Format)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone. "Local" and "" select the system zone.
func (c *Config) Location() (*time.Location, error) {
	switch c.Timezone {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, errclass.ErrConfigInvalid.WithMessagef("timezone %q: %v", c.Timezone, err)
	}
	return loc, nil
}

// Save atomically writes cfg as YAML to path, creating parent directories.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := fsutil.AtomicWrite(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
