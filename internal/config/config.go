// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and validation for opal.
//
// Configuration is read from a TOML file, merged over built-in defaults,
// overlaid with OPAL_* environment variables and validated as a whole.
// The resulting value is built once at startup and passed down explicitly.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrConfiguration is matched by every startup configuration failure.
	ErrConfiguration = errors.New("configuration error")

	// ErrMissingAPIKey is returned by APIKey when no key is available.
	ErrMissingAPIKey = fmt.Errorf("%w: missing API key", ErrConfiguration)
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete opal configuration.
type Config struct {
	// Models lists the model identifiers the user may pick from.
	Models       []string `toml:"models"`
	DefaultModel string   `toml:"default_model"`
	Temperature  float64  `toml:"temperature"`

	API   APIConfig   `toml:"api"`
	Retry RetryConfig `toml:"retry"`
	Chat  ChatConfig  `toml:"chat"`
	UI    UIConfig    `toml:"ui"`
	Log   LogConfig   `toml:"log"`
}

// APIConfig configures the completion endpoint.
type APIConfig struct {
	BaseURL string        `toml:"base_url"`
	KeyEnv  string        `toml:"key_env"`
	EnvFile string        `toml:"env_file"`
	Timeout time.Duration `toml:"timeout"`
}

// RetryConfig configures backoff for connectivity failures.
// A Limit of 0 means one attempt and no retry.
type RetryConfig struct {
	Limit     int           `toml:"limit"`
	BaseDelay time.Duration `toml:"base_delay"`
	MaxDelay  time.Duration `toml:"max_delay"`
	Jitter    time.Duration `toml:"jitter"`
}

// ChatConfig configures rooms and their persistence.
type ChatConfig struct {
	MaxLength   int           `toml:"max_length"`
	Dir         string        `toml:"dir"`
	QueueSize   int           `toml:"queue_size"`
	// TurnTimeout bounds one send including retries. Zero disables it.
	TurnTimeout time.Duration `toml:"turn_timeout"`
}

// UIConfig configures the terminal interface.
type UIConfig struct {
	// Theme is "auto", "light" or "dark".
	Theme   string `toml:"theme"`
	Sidebar bool   `toml:"sidebar"`
}

// LogConfig configures the log file.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a new Config with default values.
func Default() *Config {
	dir, err := ConfigDir()
	if err != nil {
		dir = ".opal"
	}
	return &Config{
		Models:       []string{"gpt-4", "gpt-4o", "gpt-3.5-turbo"},
		DefaultModel: "gpt-4o",
		Temperature:  0.8,
		API: APIConfig{
			BaseURL: "https://api.openai.com/v1",
			KeyEnv:  "OPENAI_API_KEY",
			EnvFile: ".env",
			Timeout: 60 * time.Second,
		},
		Retry: RetryConfig{
			Limit:     3,
			BaseDelay: 2 * time.Second,
			MaxDelay:  10 * time.Second,
			Jitter:    500 * time.Millisecond,
		},
		Chat: ChatConfig{
			MaxLength:   100,
			Dir:         filepath.Join(dir, "chat_logs"),
			QueueSize:   4,
			TurnTimeout: 5 * time.Minute,
		},
		UI: UIConfig{
			Theme:   "auto",
			Sidebar: true,
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(dir, "opal.log"),
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the opal configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".opal"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads the config file at path, or the default location when path is
// empty. A missing file at the default location is not an error; the
// defaults are used instead. Environment overrides are applied last, then
// the result is validated.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	} else if explicit || !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: config file %s: %v", ErrConfiguration, path, err)
	}

	cfg.ApplyEnvOverrides()
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg. Keys missing from the file keep the
// values already in cfg.
func LoadTOML(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("%w: failed to decode TOML file: %v", ErrConfiguration, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("%w: unknown keys: %s", ErrConfiguration, strings.Join(keys, ", "))
	}
	return nil
}

// normalize trims and expands user-supplied values.
func (c *Config) normalize() {
	models := c.Models[:0:0]
	for _, m := range c.Models {
		if m = strings.TrimSpace(m); m != "" {
			models = append(models, m)
		}
	}
	c.Models = models
	c.DefaultModel = strings.TrimSpace(c.DefaultModel)
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	c.Chat.Dir = expandHome(c.Chat.Dir)
	c.Log.File = expandHome(c.Log.File)
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.UI.Theme = strings.ToLower(strings.TrimSpace(c.UI.Theme))
}

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - OPAL_MODEL: overrides default_model
//   - OPAL_CHAT_DIR: overrides chat.dir
//   - OPAL_BASE_URL: overrides api.base_url
//   - OPAL_LOG_LEVEL: overrides log.level
//   - OPAL_THEME: overrides ui.theme
//   - OPAL_RETRY_LIMIT: overrides retry.limit
func (c *Config) ApplyEnvOverrides() {
	if model := os.Getenv("OPAL_MODEL"); model != "" {
		c.DefaultModel = model
	}
	if dir := os.Getenv("OPAL_CHAT_DIR"); dir != "" {
		c.Chat.Dir = dir
	}
	if base := os.Getenv("OPAL_BASE_URL"); base != "" {
		c.API.BaseURL = base
	}
	if level := os.Getenv("OPAL_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if theme := os.Getenv("OPAL_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if limit := os.Getenv("OPAL_RETRY_LIMIT"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil {
			c.Retry.Limit = n
		}
	}
}

// Overrides holds command-line values. They take precedence over the file
// and the environment; empty fields are ignored.
type Overrides struct {
	Model    string
	ChatDir  string
	LogLevel string
	Theme    string
}

// ApplyOverrides applies o and validates the result again.
func (c *Config) ApplyOverrides(o Overrides) error {
	if o.Model != "" {
		if !c.ModelAllowed(strings.TrimSpace(o.Model)) {
			return fmt.Errorf("%w: model %q is not in models %v", ErrConfiguration, o.Model, c.Models)
		}
		c.DefaultModel = o.Model
	}
	if o.ChatDir != "" {
		c.Chat.Dir = o.ChatDir
	}
	if o.LogLevel != "" {
		c.Log.Level = o.LogLevel
	}
	if o.Theme != "" {
		c.UI.Theme = o.Theme
	}
	c.normalize()
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

// =============================================================================
// ACCESSORS
// =============================================================================

// APIKey returns the API key from the configured environment variable. The
// configured dotenv file is loaded first when it exists; variables already
// set in the process environment win over the file.
func (c *Config) APIKey() (string, error) {
	if c.API.EnvFile != "" {
		if err := godotenv.Load(c.API.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: reading %s: %v", ErrConfiguration, c.API.EnvFile, err)
		}
	}
	key := strings.TrimSpace(os.Getenv(c.API.KeyEnv))
	if key == "" {
		return "", fmt.Errorf("%w (set %s)", ErrMissingAPIKey, c.API.KeyEnv)
	}
	return key, nil
}

// ModelAllowed reports whether model is in the configured model list.
func (c *Config) ModelAllowed(model string) bool {
	for _, m := range c.Models {
		if m == model {
			return true
		}
	}
	return false
}

// LogLevel returns the parsed log level, defaulting to info.
func (c *Config) LogLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil || c.Log.Level == "" {
		return zerolog.InfoLevel
	}
	return level
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	out := *c
	out.Models = append([]string(nil), c.Models...)
	return &out
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
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
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Is makes validation failures match ErrConfiguration.
func (e ValidateErrors) Is(target error) bool {
	return target == ErrConfiguration
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...interface{}) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// Models
	if len(c.Models) == 0 {
		add("models", "at least one model is required")
	}
	seen := make(map[string]bool, len(c.Models))
	for _, m := range c.Models {
		if seen[m] {
			add("models", "duplicate model '%s'", m)
		}
		seen[m] = true
	}
	if c.DefaultModel == "" {
		add("default_model", "must not be empty")
	} else if len(c.Models) > 0 && !c.ModelAllowed(c.DefaultModel) {
		add("default_model", "'%s' is not in models %v", c.DefaultModel, c.Models)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		add("temperature", "must be between 0 and 2, got %g", c.Temperature)
	}

	// API
	if u, err := url.Parse(c.API.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		add("api.base_url", "must be an http(s) URL, got '%s'", c.API.BaseURL)
	}
	if c.API.KeyEnv == "" {
		add("api.key_env", "must name an environment variable")
	}
	if c.API.Timeout <= 0 {
		add("api.timeout", "must be positive, got %s", c.API.Timeout)
	}

	// Retry
	if c.Retry.Limit < 0 || c.Retry.Limit > 10 {
		add("retry.limit", "must be between 0 and 10, got %d", c.Retry.Limit)
	}
	if c.Retry.BaseDelay < 0 {
		add("retry.base_delay", "must not be negative")
	}
	if c.Retry.MaxDelay < c.Retry.BaseDelay {
		add("retry.max_delay", "must be at least retry.base_delay (%s)", c.Retry.BaseDelay)
	}
	if c.Retry.Jitter < 0 {
		add("retry.jitter", "must not be negative")
	}

	// Chat
	if c.Chat.MaxLength < 3 {
		add("chat.max_length", "must be at least 3, got %d", c.Chat.MaxLength)
	}
	if c.Chat.Dir == "" {
		add("chat.dir", "must not be empty")
	}
	if c.Chat.QueueSize < 1 || c.Chat.QueueSize > 64 {
		add("chat.queue_size", "must be between 1 and 64, got %d", c.Chat.QueueSize)
	}
	if c.Chat.TurnTimeout < 0 {
		add("chat.turn_timeout", "must not be negative")
	}

	// UI
	switch c.UI.Theme {
	case "auto", "light", "dark":
	default:
		add("ui.theme", "invalid theme '%s', must be one of: auto, light, dark", c.UI.Theme)
	}

	// Log
	if c.Log.Level != "" {
		if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
			add("log.level", "invalid level '%s'", c.Log.Level)
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
