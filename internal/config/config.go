// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every setting. Values come from an optional JSON file and the
// environment; CLI flags are applied on top by the commands.
type Config struct {
	// Content source
	ProjectID  string `json:"project_id,omitempty" env:"CMS_PROJECT_ID"`   // Hosted CMS project
	Dataset    string `json:"dataset,omitempty" env:"CMS_DATASET"`         // Dataset to query
	APIVersion string `json:"api_version,omitempty" env:"CMS_API_VERSION"` // Dated query API version
	Token      string `json:"token,omitempty" env:"CMS_TOKEN"`             // Bearer credential
	BaseURL    string `json:"base_url,omitempty" env:"CMS_BASE_URL"`       // Overrides the hosted API URL
	ExportPath string `json:"export_path,omitempty" env:"CMS_EXPORT_PATH"` // Read a local export instead of the API

	// Normalization defaults
	PlaceholderImage       string `json:"placeholder_image,omitempty" env:"PLACEHOLDER_IMAGE"`
	PlaceholderDescription string `json:"placeholder_description,omitempty" env:"PLACEHOLDER_DESCRIPTION"`

	// Behavior
	FetchTimeoutSeconds int    `json:"fetch_timeout_seconds,omitempty" env:"CMS_FETCH_TIMEOUT_SECONDS"`
	CacheTTLSeconds     int    `json:"cache_ttl_seconds,omitempty" env:"CMS_CACHE_TTL_SECONDS"`
	Port                int    `json:"port,omitempty" env:"PORT"`
	DatabaseURL         string `json:"database_url,omitempty" env:"DATABASE_URL"`
	RefreshMinutes      int    `json:"refresh_minutes,omitempty" env:"REFRESH_MINUTES"`
	Verbose             bool   `json:"verbose,omitempty" env:"VERBOSE"`
}

// Defaults returns the values used when neither file nor environment set a field.
func Defaults() Config {
	return Config{
		APIVersion:          "2024-01-01",
		FetchTimeoutSeconds: 15,
		Port:                8080,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv reads configuration from environment variables.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// Load combines the environment, an optional config file and defaults.
// Environment values win over the file; the file wins over defaults.
func Load(path string) (*Config, error) {
	envCfg, err := FromEnv()
	if err != nil {
		return nil, err
	}

	merged := *envCfg
	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		merged = merged.MergeWithDefaults(*fileCfg)
	}
	merged = merged.MergeWithDefaults(Defaults())
	return &merged, nil
}

// Validate checks that the configuration can reach a content source.
func (c *Config) Validate() error {
	if c.ExportPath != "" {
		if _, err := os.Stat(c.ExportPath); os.IsNotExist(err) {
			return fmt.Errorf("config error: export file not found: %s", c.ExportPath)
		}
	} else {
		if c.Dataset == "" {
			return fmt.Errorf("config error: 'dataset' is required (CMS_DATASET)")
		}
		if c.ProjectID == "" && c.BaseURL == "" {
			return fmt.Errorf("config error: one of 'project_id' or 'base_url' is required")
		}
	}

	if c.FetchTimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'fetch_timeout_seconds' must be non-negative")
	}
	if c.CacheTTLSeconds < 0 {
		return fmt.Errorf("config error: 'cache_ttl_seconds' must be non-negative")
	}
	if c.RefreshMinutes < 0 {
		return fmt.Errorf("config error: 'refresh_minutes' must be non-negative")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}

	return nil
}

// FetchTimeout returns the content-source timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// CacheTTL returns how long served content fetches are reused, zero when disabled.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// RefreshInterval returns the snapshot refresh interval, zero when disabled.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshMinutes) * time.Minute
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.ProjectID == "" {
		result.ProjectID = defaults.ProjectID
	}
	if result.Dataset == "" {
		result.Dataset = defaults.Dataset
	}
	if result.APIVersion == "" {
		result.APIVersion = defaults.APIVersion
	}
	if result.Token == "" {
		result.Token = defaults.Token
	}
	if result.BaseURL == "" {
		result.BaseURL = defaults.BaseURL
	}
	if result.ExportPath == "" {
		result.ExportPath = defaults.ExportPath
	}
	if result.PlaceholderImage == "" {
		result.PlaceholderImage = defaults.PlaceholderImage
	}
	if result.PlaceholderDescription == "" {
		result.PlaceholderDescription = defaults.PlaceholderDescription
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	// Int fields: use default if zero
	if result.FetchTimeoutSeconds == 0 {
		result.FetchTimeoutSeconds = defaults.FetchTimeoutSeconds
	}
	if result.CacheTTLSeconds == 0 {
		result.CacheTTLSeconds = defaults.CacheTTLSeconds
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.RefreshMinutes == 0 {
		result.RefreshMinutes = defaults.RefreshMinutes
	}

	// Bool fields: either source turning verbose on is enough
	result.Verbose = result.Verbose || defaults.Verbose

	return result
}
