// Copyright 2026 Wasmgraph Users
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dotandev/wasmgraph/internal/errors"
)

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Config represents the general configuration for wasmgraph
type Config struct {
	LogLevel string `json:"log_level,omitempty"`
	// NoColor disables colored stderr diagnostics. The NO_COLOR env var
	// and the --no-color flag both force it on.
	NoColor bool `json:"no_color,omitempty"`
	// DatabasePath is where `wasmgraph export` writes its SQLite store
	// when --db is not given.
	DatabasePath string `json:"database_path,omitempty"`
	// Daemon settings for `wasmgraph serve`.
	DaemonPort      string `json:"daemon_port,omitempty"`
	DaemonAuthToken string `json:"daemon_auth_token,omitempty"`
	// Tracing enables OpenTelemetry spans in the daemon.
	Tracing bool   `json:"tracing,omitempty"`
	OTLPURL string `json:"otlp_url,omitempty"`
	// CheckForUpdates controls the silent background release check.
	CheckForUpdates *bool `json:"check_for_updates,omitempty"`
}

var defaultConfig = &Config{
	LogLevel:     "warn",
	DatabasePath: filepath.Join(os.ExpandEnv("$HOME"), ".wasmgraph", "graphs.db"),
	DaemonPort:   "8080",
	OTLPURL:      "http://localhost:4318",
}

// GetConfigPath returns the directory that holds wasmgraph state.
func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.WrapConfigError("failed to resolve home directory", err)
	}
	return filepath.Join(home, ".wasmgraph"), nil
}

// GetGeneralConfigPath returns the path to the general configuration file
func GetGeneralConfigPath() (string, error) {
	configDir, err := GetConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// LoadConfig loads the general configuration from disk (JSON format)
func LoadConfig() (*Config, error) {
	configPath, err := GetGeneralConfigPath()
	if err != nil {
		return nil, err
	}

	// If file doesn't exist, return default config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.WrapConfigError("failed to read config file", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, errors.WrapConfigError("failed to parse config file", err)
	}

	return config, nil
}

// Load loads the configuration, applying WASMGRAPH_* environment overrides
// on top of the config file.
func Load() (*Config, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	cfg.LogLevel = getEnv("WASMGRAPH_LOG_LEVEL", cfg.LogLevel)
	cfg.DatabasePath = getEnv("WASMGRAPH_DB", cfg.DatabasePath)
	cfg.DaemonPort = getEnv("WASMGRAPH_DAEMON_PORT", cfg.DaemonPort)
	cfg.DaemonAuthToken = getEnv("WASMGRAPH_AUTH_TOKEN", cfg.DaemonAuthToken)
	cfg.OTLPURL = getEnv("WASMGRAPH_OTLP_URL", cfg.OTLPURL)

	if parseBoolEnv("WASMGRAPH_TRACING") {
		cfg.Tracing = true
	}
	if os.Getenv("NO_COLOR") != "" || parseBoolEnv("WASMGRAPH_NO_COLOR") {
		cfg.NoColor = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseBoolEnv(key string) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// SaveConfig saves the configuration to disk (JSON format)
func SaveConfig(config *Config) error {
	configPath, err := GetGeneralConfigPath()
	if err != nil {
		return err
	}

	// Ensure config directory exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return errors.WrapConfigError("failed to create config directory", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return errors.WrapConfigError("failed to marshal config", err)
	}

	// Write with restricted permissions (owner only)
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return errors.WrapConfigError("failed to write config file", err)
	}

	return nil
}

func (c *Config) Validate() error {
	if c.LogLevel != "" && !validLogLevels[strings.ToLower(c.LogLevel)] {
		return errors.WrapValidationError(
			fmt.Sprintf("log_level %q must be one of: debug, info, warn, error", c.LogLevel))
	}
	return nil
}

// UpdatesEnabled reports whether the background release check should run.
func (c *Config) UpdatesEnabled() bool {
	if c.CheckForUpdates == nil {
		return true
	}
	return *c.CheckForUpdates
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{LogLevel: %s, NoColor: %t, DatabasePath: %s, DaemonPort: %s}",
		c.LogLevel, c.NoColor, c.DatabasePath, c.DaemonPort,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel:     defaultConfig.LogLevel,
		DatabasePath: defaultConfig.DatabasePath,
		DaemonPort:   defaultConfig.DaemonPort,
		OTLPURL:      defaultConfig.OTLPURL,
	}
}
