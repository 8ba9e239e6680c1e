// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for swarmsh.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.swarmsh/config.toml
//   - ~/.swarmsh/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete swarmsh configuration.
type Config struct {
	// General settings
	Version string `toml:"version" json:"version"`

	// Logging configuration
	Logging LoggingConfig `toml:"logging" json:"logging"`

	// History configuration
	History HistoryConfig `toml:"history" json:"history"`

	// Shell configuration
	Shell ShellConfig `toml:"shell" json:"shell"`

	// Orchestrator configuration
	Orchestrator OrchestratorConfig `toml:"orchestrator" json:"orchestrator"`

	// Memory configuration
	Memory MemoryConfig `toml:"memory" json:"memory"`
}

// LoggingConfig contains structured logger configuration.
type LoggingConfig struct {
	// Level is the minimum severity to emit: "debug", "info", "warn", "error"
	Level string `toml:"level" json:"level"`
	// Format selects the file sink rendering: "json" or "text"
	Format string `toml:"format" json:"format"`
	// Destination selects the sinks: "console", "file", or "both"
	Destination string `toml:"destination" json:"destination"`
	// FilePath is the log file location (empty = ~/.swarmsh/swarmsh.log)
	FilePath string `toml:"file_path" json:"file_path"`
	// MaxFileSize is the rotation threshold in bytes
	MaxFileSize int64 `toml:"max_file_size" json:"max_file_size"`
	// MaxFiles is the total file budget: the active file plus rotated history
	MaxFiles int `toml:"max_files" json:"max_files"`
}

// HistoryConfig contains shell history configuration.
type HistoryConfig struct {
	// File is the persistence path (empty = ~/.swarmsh_history)
	File string `toml:"file" json:"file"`
	// MaxEntries caps how many lines are retained; oldest are evicted first
	MaxEntries int `toml:"max_entries" json:"max_entries"`
}

// ShellConfig contains interactive shell configuration.
type ShellConfig struct {
	// Prompt overrides the prompt text (empty = built-in prompt)
	Prompt string `toml:"prompt" json:"prompt"`
	// Color enables styled output; disabled automatically off-TTY
	Color bool `toml:"color" json:"color"`
	// Banner enables the startup banner
	Banner bool `toml:"banner" json:"banner"`
}

// OrchestratorConfig contains orchestrator connection configuration.
type OrchestratorConfig struct {
	// Host is the orchestrator host to connect to
	Host string `toml:"host" json:"host"`
	// Port is the orchestrator port
	Port int `toml:"port" json:"port"`
	// AutoConnect connects on shell startup when true
	AutoConnect bool `toml:"auto_connect" json:"auto_connect"`
}

// MemoryConfig contains the local memory bank configuration.
type MemoryConfig struct {
	// Path is the sqlite database location (empty = ~/.swarmsh/memory.db)
	Path string `toml:"path" json:"path"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a configuration with all default values.
func Default() *Config {
	return &Config{
		Version: "1.0",
		Logging: LoggingConfig{
			Level:       "info",
			Format:      "json",
			Destination: "file",
			MaxFileSize: 10 * 1024 * 1024,
			MaxFiles:    5,
		},
		History: HistoryConfig{
			MaxEntries: 1000,
		},
		Shell: ShellConfig{
			Color:  true,
			Banner: true,
		},
		Orchestrator: OrchestratorConfig{
			Host: "localhost",
			Port: 4500,
		},
		Memory: MemoryConfig{},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the swarmsh configuration directory (~/.swarmsh).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".swarmsh"), nil
}

// ConfigPathTOML returns the TOML config file path.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the JSON config file path.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir creates the configuration directory if needed.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o700)
}

// LogFilePath resolves the effective log file path.
func (c *Config) LogFilePath() (string, error) {
	if c.Logging.FilePath != "" {
		return c.Logging.FilePath, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "swarmsh.log"), nil
}

// HistoryFilePath resolves the effective history file path.
func (c *Config) HistoryFilePath() (string, error) {
	if c.History.File != "" {
		return c.History.File, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".swarmsh_history"), nil
}

// MemoryPath resolves the effective memory database path.
func (c *Config) MemoryPath() (string, error) {
	if c.Memory.Path != "" {
		return c.Memory.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "memory.db"), nil
}

// Endpoint returns the orchestrator host:port address.
func (c *Config) Endpoint() string {
	return net.JoinHostPort(c.Orchestrator.Host, strconv.Itoa(c.Orchestrator.Port))
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			return LoadFromPath(tomlPath)
		}
	}

	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			return LoadFromPath(jsonPath)
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file path with full
// validation. The format is chosen by extension; anything that is not
// .json is treated as TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}

	if strings.HasSuffix(path, ".json") {
		if err := loadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := loadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return fillDefaults(cfg)
}

func loadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return fillDefaults(cfg)
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) error {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaults.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = defaults.Logging.Format
	}
	if cfg.Logging.Destination == "" {
		cfg.Logging.Destination = defaults.Logging.Destination
	}
	if cfg.Logging.MaxFileSize == 0 {
		cfg.Logging.MaxFileSize = defaults.Logging.MaxFileSize
	}
	if cfg.Logging.MaxFiles == 0 {
		cfg.Logging.MaxFiles = defaults.Logging.MaxFiles
	}

	if cfg.History.MaxEntries == 0 {
		cfg.History.MaxEntries = defaults.History.MaxEntries
	}

	if cfg.Orchestrator.Host == "" {
		cfg.Orchestrator.Host = defaults.Orchestrator.Host
	}
	if cfg.Orchestrator.Port == 0 {
		cfg.Orchestrator.Port = defaults.Orchestrator.Port
	}

	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save persists the configuration to the TOML config file.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to a TOML file.
func SaveTOML(cfg *Config, path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode TOML config: %w", err)
	}
	return nil
}

// SaveJSON writes the configuration to a JSON file.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
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

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid format '%s', must be json or text", c.Logging.Format),
		})
	}

	validDestinations := map[string]bool{"console": true, "file": true, "both": true}
	if !validDestinations[strings.ToLower(c.Logging.Destination)] {
		errs = append(errs, ValidationError{
			Field:   "logging.destination",
			Message: fmt.Sprintf("invalid destination '%s', must be console, file, or both", c.Logging.Destination),
		})
	}

	if c.Logging.MaxFileSize < 0 {
		errs = append(errs, ValidationError{
			Field:   "logging.max_file_size",
			Message: "must be non-negative",
		})
	}
	if c.Logging.MaxFiles < 0 {
		errs = append(errs, ValidationError{
			Field:   "logging.max_files",
			Message: "must be non-negative",
		})
	}

	if c.History.MaxEntries < 0 {
		errs = append(errs, ValidationError{
			Field:   "history.max_entries",
			Message: "must be non-negative",
		})
	}

	if c.Orchestrator.Port < 1 || c.Orchestrator.Port > 65535 {
		errs = append(errs, ValidationError{
			Field:   "orchestrator.port",
			Message: fmt.Sprintf("must be 1-65535, got %d", c.Orchestrator.Port),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - SWARMSH_LOG_LEVEL: overrides logging.level
//   - SWARMSH_LOG_FORMAT: overrides logging.format
//   - SWARMSH_LOG_DESTINATION: overrides logging.destination
//   - SWARMSH_LOG_FILE: overrides logging.file_path
//   - SWARMSH_HISTORY_FILE: overrides history.file
//   - SWARMSH_HOST: overrides orchestrator.host
//   - SWARMSH_PORT: overrides orchestrator.port
//   - SWARMSH_NO_COLOR: set to "1" or "true" to disable styled output
func (c *Config) ApplyEnvOverrides() {
	if level := os.Getenv("SWARMSH_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if format := os.Getenv("SWARMSH_LOG_FORMAT"); format != "" {
		c.Logging.Format = format
	}
	if dest := os.Getenv("SWARMSH_LOG_DESTINATION"); dest != "" {
		c.Logging.Destination = dest
	}
	if file := os.Getenv("SWARMSH_LOG_FILE"); file != "" {
		c.Logging.FilePath = file
	}
	if file := os.Getenv("SWARMSH_HISTORY_FILE"); file != "" {
		c.History.File = file
	}
	if host := os.Getenv("SWARMSH_HOST"); host != "" {
		c.Orchestrator.Host = host
	}
	if port := os.Getenv("SWARMSH_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil {
			c.Orchestrator.Port = n
		}
	}
	if noColor := os.Getenv("SWARMSH_NO_COLOR"); noColor != "" {
		c.Shell.Color = !(noColor == "1" || strings.ToLower(noColor) == "true")
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "logging.level").
func (c *Config) Get(key string) (interface{}, error) {
	parts := strings.Split(key, ".")
	if len(parts) == 0 || key == "" {
		return nil, errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)

		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return nil, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			return field.Interface(), nil
		}

		if field.Kind() == reflect.Struct {
			v = field
		} else {
			return nil, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
	}

	return nil, fmt.Errorf("invalid key: %s", key)
}

// Set sets a configuration value using dot notation (e.g., "logging.level").
func (c *Config) Set(key string, value interface{}) error {
	parts := strings.Split(key, ".")
	if len(parts) == 0 || key == "" {
		return errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)

		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			if !field.CanSet() {
				return fmt.Errorf("cannot set field: %s", key)
			}
			return setFieldValue(field, value)
		}

		if field.Kind() == reflect.Struct {
			v = field
		} else {
			return fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
	}

	return fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case key segment to the Go field name.
func normalizeFieldName(part string) string {
	segments := strings.Split(part, "_")
	var sb strings.Builder
	for _, s := range segments {
		if s == "" {
			continue
		}
		sb.WriteString(strings.ToUpper(s[:1]))
		sb.WriteString(s[1:])
	}
	return sb.String()
}

// setFieldValue coerces value onto the field, accepting string input for
// every scalar kind so shell "config set" arguments work directly.
func setFieldValue(field reflect.Value, value interface{}) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(fmt.Sprint(value))
		return nil
	case reflect.Bool:
		switch v := value.(type) {
		case bool:
			field.SetBool(v)
		case string:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid boolean: %s", v)
			}
			field.SetBool(b)
		default:
			return fmt.Errorf("cannot convert %T to bool", value)
		}
		return nil
	case reflect.Int, reflect.Int64:
		switch v := value.(type) {
		case int:
			field.SetInt(int64(v))
		case int64:
			field.SetInt(v)
		case float64:
			field.SetInt(int64(v))
		case string:
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %s", v)
			}
			field.SetInt(n)
		default:
			return fmt.Errorf("cannot convert %T to int", value)
		}
		return nil
	default:
		return fmt.Errorf("unsupported field kind: %s", field.Kind())
	}
}
