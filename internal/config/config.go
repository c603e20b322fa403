// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for longchat.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.longchat/config.toml
//   - ~/.longchat/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// ErrUnknownKey is returned by Get and Set for a key that names no setting.
var ErrUnknownKey = errors.New("unknown config key")

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete longchat configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	Window WindowConfig `toml:"window" json:"window"`
	Scroll ScrollConfig `toml:"scroll" json:"scroll"`
	Watch  WatchConfig  `toml:"watch" json:"watch"`
	UI     UIConfig     `toml:"ui" json:"ui"`
	Log    LogConfig    `toml:"log" json:"log"`
}

// WindowConfig sizes the visible message window.
type WindowConfig struct {
	// KeepRecent is how many of the newest messages stay visible after a refresh
	KeepRecent int `toml:"keep_recent" json:"keep_recent"`
	// ChunkSize is how many older messages each backward extension reveals
	ChunkSize int `toml:"chunk_size" json:"chunk_size"`
}

// ScrollConfig tunes the scroll coordinator. Distances are in rows.
type ScrollConfig struct {
	// TopThreshold is the distance from the top that triggers an extension
	TopThreshold int `toml:"top_threshold" json:"top_threshold"`
	// BottomRatio is the fraction of the viewport counted as "near bottom"
	BottomRatio float64 `toml:"bottom_ratio" json:"bottom_ratio"`
	// ForceMaxAttempts bounds the scroll-to-bottom nudges
	ForceMaxAttempts int `toml:"force_max_attempts" json:"force_max_attempts"`
	// ForceTolerance is the bottom offset accepted as "at bottom"
	ForceTolerance int `toml:"force_tolerance" json:"force_tolerance"`
	// ForceIntervalMs is the delay between nudges
	ForceIntervalMs int `toml:"force_interval_ms" json:"force_interval_ms"`
	// ResumeDelayMs is how long scroll handling stays suspended after a jump
	ResumeDelayMs int `toml:"resume_delay_ms" json:"resume_delay_ms"`
}

// WatchConfig configures transcript following.
type WatchConfig struct {
	// PollIntervalMs is the container wait and navigation poll period
	PollIntervalMs int `toml:"poll_interval_ms" json:"poll_interval_ms"`
	// WaitMaxAttempts bounds the container wait (0 = unbounded)
	WaitMaxAttempts int `toml:"wait_max_attempts" json:"wait_max_attempts"`
	// ForcePolling disables fsnotify and always polls
	ForcePolling bool `toml:"force_polling" json:"force_polling"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// OverlayEnabled shows the stats overlay on first start
	OverlayEnabled bool `toml:"overlay_enabled" json:"overlay_enabled"`
	// Markdown renders message text as markdown
	Markdown bool `toml:"markdown" json:"markdown"`
}

// LogConfig controls the structured log file.
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `toml:"level" json:"level"`
	// Path is the log file (empty = default ~/.longchat/longchat.log)
	Path string `toml:"path" json:"path"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with the built-in defaults.
func Default() *Config {
	return &Config{
		Version: "1",
		Window: WindowConfig{
			KeepRecent: 50,
			ChunkSize:  20,
		},
		Scroll: ScrollConfig{
			TopThreshold:     3,
			BottomRatio:      0.05,
			ForceMaxAttempts: 10,
			ForceTolerance:   0,
			ForceIntervalMs:  100,
			ResumeDelayMs:    1500,
		},
		Watch: WatchConfig{
			PollIntervalMs:  1000,
			WaitMaxAttempts: 0,
		},
		UI: UIConfig{
			Theme:          "auto",
			OverlayEnabled: true,
			Markdown:       true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ForceInterval is the delay between force-scroll attempts.
func (s ScrollConfig) ForceInterval() time.Duration {
	return time.Duration(s.ForceIntervalMs) * time.Millisecond
}

// ResumeDelay is how long scroll samples are ignored after a jump to the
// bottom.
func (s ScrollConfig) ResumeDelay() time.Duration {
	return time.Duration(s.ResumeDelayMs) * time.Millisecond
}

// PollInterval is the period of every polling loop.
func (w WatchConfig) PollInterval() time.Duration {
	return time.Duration(w.PollIntervalMs) * time.Millisecond
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the longchat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".longchat"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// PrefsPath returns the path of the preferences database.
func PrefsPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "prefs.db"), nil
}

// LogPath returns the configured log file, or the default under ConfigDir.
func (c *Config) LogPath() (string, error) {
	if c.Log.Path != "" {
		return c.Log.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "longchat.log"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last. A file that fails to parse is
// reported alongside the defaults.
func Load() (*Config, error) {
	var loadErr error

	for _, candidate := range []func() (string, error){ConfigPathTOML, ConfigPathJSON} {
		path, err := candidate()
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		cfg, err := LoadFromPath(path)
		if err == nil {
			return cfg, nil
		}
		if loadErr == nil {
			loadErr = err
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, loadErr
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file path with full
// validation. Keys missing from the file keep their defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
func SaveTOML(cfg *Config, path string) error {
	var b strings.Builder
	b.WriteString("# longchat configuration file\n")
	b.WriteString("# Distances are in terminal rows, durations in milliseconds.\n\n")

	if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := writeFile(path, []byte(b.String())); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// writeFile replaces path with data, owner-readable only. The data goes to a
// sibling temp file that is synced and renamed over path, so a crash leaves
// either the old file or the new one.
func writeFile(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".config-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = tmp.Chmod(0600); err != nil {
		return err
	}
	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	// Windows cannot rename an open file.
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
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

var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
var validThemes = map[string]bool{"dark": true, "light": true, "auto": true}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Window.KeepRecent < 1 {
		errs = append(errs, ValidationError{"window.keep_recent", "must be at least 1"})
	}
	if c.Window.ChunkSize < 1 {
		errs = append(errs, ValidationError{"window.chunk_size", "must be at least 1"})
	}
	if c.Scroll.TopThreshold < 0 {
		errs = append(errs, ValidationError{"scroll.top_threshold", "must not be negative"})
	}
	if c.Scroll.BottomRatio < 0 || c.Scroll.BottomRatio > 1 {
		errs = append(errs, ValidationError{"scroll.bottom_ratio", "must be between 0 and 1"})
	}
	if c.Scroll.ForceMaxAttempts < 1 {
		errs = append(errs, ValidationError{"scroll.force_max_attempts", "must be at least 1"})
	}
	if c.Scroll.ForceTolerance < 0 {
		errs = append(errs, ValidationError{"scroll.force_tolerance", "must not be negative"})
	}
	if c.Scroll.ForceIntervalMs < 1 {
		errs = append(errs, ValidationError{"scroll.force_interval_ms", "must be positive"})
	}
	if c.Scroll.ResumeDelayMs < 0 {
		errs = append(errs, ValidationError{"scroll.resume_delay_ms", "must not be negative"})
	}
	if c.Watch.PollIntervalMs < 1 {
		errs = append(errs, ValidationError{"watch.poll_interval_ms", "must be positive"})
	}
	if c.Watch.WaitMaxAttempts < 0 {
		errs = append(errs, ValidationError{"watch.wait_max_attempts", "must not be negative (0 = unbounded)"})
	}
	if !validThemes[c.UI.Theme] {
		errs = append(errs, ValidationError{"ui.theme", fmt.Sprintf("unknown theme %q (dark, light, auto)", c.UI.Theme)})
	}
	if !validLevels[c.Log.Level] {
		errs = append(errs, ValidationError{"log.level", fmt.Sprintf("unknown level %q (debug, info, warn, error)", c.Log.Level)})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills zero-valued fields that have no meaningful zero.
// Booleans and the zero-means-unbounded knobs are left alone.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Version == "" {
		c.Version = d.Version
	}
	if c.Window.KeepRecent == 0 {
		c.Window.KeepRecent = d.Window.KeepRecent
	}
	if c.Window.ChunkSize == 0 {
		c.Window.ChunkSize = d.Window.ChunkSize
	}
	if c.Scroll.BottomRatio == 0 {
		c.Scroll.BottomRatio = d.Scroll.BottomRatio
	}
	if c.Scroll.ForceMaxAttempts == 0 {
		c.Scroll.ForceMaxAttempts = d.Scroll.ForceMaxAttempts
	}
	if c.Scroll.ForceIntervalMs == 0 {
		c.Scroll.ForceIntervalMs = d.Scroll.ForceIntervalMs
	}
	if c.Watch.PollIntervalMs == 0 {
		c.Watch.PollIntervalMs = d.Watch.PollIntervalMs
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	c.Log.Level = strings.ToLower(c.Log.Level)
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - LONGCHAT_KEEP_RECENT: overrides window.keep_recent
//   - LONGCHAT_CHUNK_SIZE: overrides window.chunk_size
//   - LONGCHAT_POLL_INTERVAL_MS: overrides watch.poll_interval_ms
//   - LONGCHAT_FORCE_POLLING: set to "1" or "true" to disable fsnotify
//   - LONGCHAT_THEME: overrides ui.theme
//   - LONGCHAT_NO_MARKDOWN: set to "1" or "true" to render plain text
//   - LONGCHAT_LOG_LEVEL: overrides log.level
//   - LONGCHAT_LOG_PATH: overrides log.path
//
// Unparsable numbers are ignored.
func (c *Config) ApplyEnvOverrides() {
	envInt("LONGCHAT_KEEP_RECENT", &c.Window.KeepRecent)
	envInt("LONGCHAT_CHUNK_SIZE", &c.Window.ChunkSize)
	envInt("LONGCHAT_POLL_INTERVAL_MS", &c.Watch.PollIntervalMs)

	if v := os.Getenv("LONGCHAT_FORCE_POLLING"); v != "" {
		c.Watch.ForcePolling = truthy(v)
	}
	if v := os.Getenv("LONGCHAT_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("LONGCHAT_NO_MARKDOWN"); v != "" {
		c.UI.Markdown = !truthy(v)
	}
	if v := os.Getenv("LONGCHAT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LONGCHAT_LOG_PATH"); v != "" {
		c.Log.Path = v
	}
}

func envInt(name string, dst *int) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

func truthy(v string) bool {
	v = strings.ToLower(v)
	return v == "1" || v == "true" || v == "yes"
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "window.chunk_size").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "window.chunk_size").
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			field.SetBool(truthy(strVal))
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"window.keep_recent",
		"window.chunk_size",
		"scroll.top_threshold",
		"scroll.bottom_ratio",
		"scroll.force_max_attempts",
		"scroll.force_tolerance",
		"scroll.force_interval_ms",
		"scroll.resume_delay_ms",
		"watch.poll_interval_ms",
		"watch.wait_max_attempts",
		"watch.force_polling",
		"ui.theme",
		"ui.overlay_enabled",
		"ui.markdown",
		"log.level",
		"log.path",
	}
}

// String returns the config as indented JSON.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
