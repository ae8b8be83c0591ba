// Copyright 2026 Wasmgraph Users
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.LogLevel == "" {
		t.Error("expected non-empty LogLevel")
	}

	if cfg.DatabasePath == "" {
		t.Error("expected non-empty DatabasePath")
	}

	if cfg.DaemonPort == "" {
		t.Error("expected non-empty DaemonPort")
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{"default levels", DefaultConfig(), false},
		{"debug level", &Config{LogLevel: "debug"}, false},
		{"uppercase level", &Config{LogLevel: "ERROR"}, false},
		{"empty level", &Config{}, false},
		{"bogus level", &Config{LogLevel: "loud"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := (&Config{LogLevel: "loud"}).Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "log_level") {
		t.Errorf("error should name the offending field, got %q", err.Error())
	}
}

func TestUpdatesEnabled(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.UpdatesEnabled() {
		t.Error("updates should default to enabled")
	}

	off := false
	cfg.CheckForUpdates = &off
	if cfg.UpdatesEnabled() {
		t.Error("updates should be disabled when check_for_updates is false")
	}

	on := true
	cfg.CheckForUpdates = &on
	if !cfg.UpdatesEnabled() {
		t.Error("updates should be enabled when check_for_updates is true")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("WASMGRAPH_LOG_LEVEL", "debug")
	t.Setenv("WASMGRAPH_DAEMON_PORT", "9999")
	t.Setenv("HOME", t.TempDir()) // ensure no real config file interferes

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.LogLevel)
	}
	if cfg.DaemonPort != "9999" {
		t.Errorf("expected daemon port 9999, got %s", cfg.DaemonPort)
	}
}

func TestNoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !cfg.NoColor {
		t.Error("NO_COLOR should disable color")
	}
}
