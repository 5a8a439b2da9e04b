// Package config loads the host-shell configuration from an optional
// YAML file overlaid by TICKETZERO_-prefixed environment variables.
// The trial packages themselves never read the environment; they
// receive a plain struct assembled from this.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces the environment variables, e.g.
// TICKETZERO_TRIAL_SALT.
const EnvPrefix = "TICKETZERO"

// Config is the complete host configuration.
type Config struct {
	App     AppConfig     `yaml:"app" envconfig:"APP"`
	Trial   TrialConfig   `yaml:"trial" envconfig:"TRIAL"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
}

// AppConfig identifies the hosting application in messages and logs.
type AppConfig struct {
	Name    string `yaml:"name" envconfig:"NAME" validate:"required"`
	Version string `yaml:"version" envconfig:"VERSION"`
}

// TrialConfig parameterizes the trial gate. The salt separates key
// material between deployments and should be overridden per packaging
// rather than shipped with the default.
type TrialConfig struct {
	Length       Duration `yaml:"length" envconfig:"LENGTH" validate:"gt=0"`
	Salt         string   `yaml:"salt" envconfig:"SALT" validate:"required,min=8"`
	SupportEmail string   `yaml:"support_email" envconfig:"SUPPORT_EMAIL" validate:"required,email"`
	AuditFile    string   `yaml:"audit_file" envconfig:"AUDIT_FILE"`
}

// Duration wraps time.Duration so "72h"-style strings work from both
// YAML and the environment.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(parsed)
	return nil
}

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(raw))
}

// LoggingConfig controls the slog bootstrap.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// Load reads configFile when it exists, overlays environment
// variables, fills remaining zero fields from defaults and validates
// the result. Pass an empty configFile to skip the file step.
func Load(configFile string) (*Config, error) {
	var cfg Config

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			data, err := os.ReadFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Set env vars win over file values; defaults only fill fields
	// that are still zero after both.
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "TicketZero AI"
	}
	if c.App.Version == "" {
		c.App.Version = "1.0.0"
	}
	if c.Trial.Length == 0 {
		c.Trial.Length = Duration(72 * time.Hour)
	}
	if c.Trial.Salt == "" {
		c.Trial.Salt = "ticketzero-trial-v1"
	}
	if c.Trial.SupportEmail == "" {
		c.Trial.SupportEmail = "jgreenia@jandraisolutions.com"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "console"
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = filepath.Join("logs", "trial-gate.log")
	}
}

// Validate checks the struct-level validation tags.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}
