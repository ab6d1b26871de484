// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for promptlab.
//
// Configuration sources, in order of precedence:
//   - PROMPTLAB_* environment variables (a .env file is honored)
//   - ~/.promptlab/config.toml
//   - Built-in defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/promptlab-tui/internal/offline"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete promptlab configuration.
type Config struct {
	Version string `toml:"version"`

	// Backend configuration
	Backend BackendConfig `toml:"backend"`

	// Generation defaults for new experiments
	Generation GenerationConfig `toml:"generation"`

	// History configuration
	History HistoryConfig `toml:"history"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// BackendConfig contains the PromptLab backend connection settings.
type BackendConfig struct {
	// BaseURL is the backend endpoint, http or https.
	BaseURL string `toml:"base_url"`
	// TimeoutSecs is the per-request timeout in seconds.
	TimeoutSecs int `toml:"timeout_secs"`
	// CooldownSecs is the fallback rate-limit backoff when the server
	// gives no Retry-After hint.
	CooldownSecs int `toml:"cooldown_secs"`
	// MaxPending caps the offline request queue.
	MaxPending int `toml:"max_pending"`
	// RateLimit throttles outbound requests per second (0 disables).
	RateLimit float64 `toml:"rate_limit"`
	// RateBurst is the throttle burst size.
	RateBurst int `toml:"rate_burst"`
	// ProbeIntervalSecs is how often reachability is probed.
	ProbeIntervalSecs int `toml:"probe_interval_secs"`
}

// GenerationConfig holds default experiment parameters.
type GenerationConfig struct {
	Temperature float64 `toml:"temperature"`
	TopP        float64 `toml:"top_p"`
	Model       string  `toml:"model"`
}

// HistoryConfig contains local prompt history settings.
type HistoryConfig struct {
	// Enabled toggles prompt history recording.
	Enabled bool `toml:"enabled"`
	// Path overrides the history database location (empty = default
	// ~/.promptlab/history.db).
	Path string `toml:"path"`
	// MaxEntries bounds how many prompts are kept.
	MaxEntries int `toml:"max_entries"`
}

// UIConfig contains UI behavior configuration.
type UIConfig struct {
	// Theme selects the color theme: "dark" or "light".
	Theme string `toml:"theme"`
	// Markdown enables glamour rendering of response content.
	Markdown bool `toml:"markdown"`
	// TypingEffect reveals assistant responses incrementally.
	TypingEffect bool `toml:"typing_effect"`
	// SidebarWidth is the session sidebar width in columns.
	SidebarWidth int `toml:"sidebar_width"`
	// LogFile overrides the log location (empty = default
	// ~/.promptlab/promptlab.log).
	LogFile string `toml:"log_file"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: "1.0",
		Backend: BackendConfig{
			BaseURL:           "http://localhost:8080",
			TimeoutSecs:       30,
			CooldownSecs:      60,
			MaxPending:        256,
			RateLimit:         0,
			RateBurst:         1,
			ProbeIntervalSecs: 5,
		},
		Generation: GenerationConfig{
			Temperature: 0.7,
			TopP:        0.9,
			Model:       "default",
		},
		History: HistoryConfig{
			Enabled:    true,
			MaxEntries: 500,
		},
		UI: UIConfig{
			Theme:        "dark",
			Markdown:     true,
			TypingEffect: true,
			SidebarWidth: 30,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the promptlab configuration directory (~/.promptlab).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".promptlab"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir creates the configuration directory if needed.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o700)
}

// HistoryPath resolves the prompt history database location.
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// LogPath resolves the log file location.
func (c *Config) LogPath() (string, error) {
	if c.UI.LogFile != "" {
		return c.UI.LogFile, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "promptlab.log"), nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load loads configuration from the default file path, applies environment
// overrides, and validates. A missing file yields the defaults.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadTOML(cfg, path); err != nil {
				return nil, err
			}
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file with environment
// overrides and validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadTOML merges a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// LoadEnv loads a .env file when present. Missing files are not an error.
func LoadEnv() {
	_ = godotenv.Load()
}

// applyEnvOverrides applies PROMPTLAB_* environment variables over cfg.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PROMPTLAB_BASE_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("PROMPTLAB_TIMEOUT_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Backend.TimeoutSecs = n
		}
	}
	if v := os.Getenv("PROMPTLAB_COOLDOWN_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Backend.CooldownSecs = n
		}
	}
	if v := os.Getenv("PROMPTLAB_MAX_PENDING"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Backend.MaxPending = n
		}
	}
	if v := os.Getenv("PROMPTLAB_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Backend.RateLimit = f
		}
	}
	if v := os.Getenv("PROMPTLAB_MODEL"); v != "" {
		cfg.Generation.Model = v
	}
	if v := os.Getenv("PROMPTLAB_THEME"); v != "" {
		cfg.UI.Theme = v
	}
	if v := os.Getenv("PROMPTLAB_HISTORY"); v != "" {
		cfg.History.Enabled = parseBool(v, cfg.History.Enabled)
	}
}

func parseBool(v string, fallback bool) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration to the default TOML file.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to a TOML file.
func SaveTOML(cfg *Config, path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return "invalid configuration: " + strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if err := offline.ValidateBaseURL(c.Backend.BaseURL); err != nil {
		errs = append(errs, ValidationError{
			Field:   "backend.base_url",
			Message: err.Error(),
		})
	}
	if c.Backend.TimeoutSecs <= 0 {
		errs = append(errs, ValidationError{
			Field:   "backend.timeout_secs",
			Message: "must be positive",
		})
	}
	if c.Backend.CooldownSecs <= 0 {
		errs = append(errs, ValidationError{
			Field:   "backend.cooldown_secs",
			Message: "must be positive",
		})
	}
	if c.Backend.MaxPending < 0 {
		errs = append(errs, ValidationError{
			Field:   "backend.max_pending",
			Message: "cannot be negative",
		})
	}
	if c.Backend.RateLimit < 0 {
		errs = append(errs, ValidationError{
			Field:   "backend.rate_limit",
			Message: "cannot be negative",
		})
	}
	if c.Generation.Temperature < 0 || c.Generation.Temperature > 2 {
		errs = append(errs, ValidationError{
			Field:   "generation.temperature",
			Message: "must be within [0, 2]",
		})
	}
	if c.Generation.TopP <= 0 || c.Generation.TopP > 1 {
		errs = append(errs, ValidationError{
			Field:   "generation.top_p",
			Message: "must be within (0, 1]",
		})
	}
	if c.UI.Theme != "dark" && c.UI.Theme != "light" {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("unknown theme %q (valid: dark, light)", c.UI.Theme),
		})
	}
	if c.UI.SidebarWidth < 20 || c.UI.SidebarWidth > 60 {
		errs = append(errs, ValidationError{
			Field:   "ui.sidebar_width",
			Message: "must be within [20, 60]",
		})
	}
	if c.History.MaxEntries < 0 {
		errs = append(errs, ValidationError{
			Field:   "history.max_entries",
			Message: "cannot be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
