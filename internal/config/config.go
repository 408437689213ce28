// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for opsdesk.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/opsdesk/internal/model"
	"github.com/jeranaias/opsdesk/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete opsdesk configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Assistant backend connection
	Backend BackendConfig `toml:"backend" json:"backend"`

	// Streaming behavior
	Stream StreamConfig `toml:"stream" json:"stream"`

	// Page context forwarded with every request
	Page PageConfig `toml:"page" json:"page"`

	// Mentionable tables
	Catalog CatalogConfig `toml:"catalog" json:"catalog"`

	// Persisted widget state
	State StateConfig `toml:"state" json:"state"`

	UI   UIConfig   `toml:"ui" json:"ui"`
	Log  LogConfig  `toml:"log" json:"log"`
	Mock MockConfig `toml:"mock" json:"mock"`
}

// BackendConfig contains the assistant API settings.
type BackendConfig struct {
	// BaseURL is the scheme and host of the assistant API
	BaseURL string `toml:"base_url" json:"base_url"`
	// StreamEndpoint is the path of the streaming chat endpoint
	StreamEndpoint string `toml:"stream_endpoint" json:"stream_endpoint"`
	// Method is the HTTP method used to open a stream (GET or POST)
	Method string `toml:"method" json:"method"`
	// APIToken is sent as a bearer token when set
	APIToken string `toml:"api_token" json:"api_token"`
	// RequestsPerSecond limits how fast streams are opened (0 = unlimited)
	RequestsPerSecond float64 `toml:"requests_per_second" json:"requests_per_second"`
	// Burst is the rate limiter burst size
	Burst int `toml:"burst" json:"burst"`
	// HeaderTimeoutSecs bounds the wait for response headers
	HeaderTimeoutSecs int `toml:"header_timeout_secs" json:"header_timeout_secs"`
}

// StreamConfig contains stream controller settings.
type StreamConfig struct {
	// IdleTimeoutSecs interrupts a silent stream (0 = never)
	IdleTimeoutSecs int `toml:"idle_timeout_secs" json:"idle_timeout_secs"`
	// SyncIntervalMs bounds how stale the message list gets while streaming
	SyncIntervalMs int `toml:"sync_interval_ms" json:"sync_interval_ms"`
}

// PageConfig describes the page the widget is embedded in.
type PageConfig struct {
	// Context is a JSON document sent as pageContext
	Context string `toml:"context" json:"context"`
	// ContextSettings is forwarded verbatim as contextSettings
	ContextSettings string `toml:"context_settings" json:"context_settings"`
}

// CatalogConfig lists the tables that can be mentioned.
type CatalogConfig struct {
	// Path is an optional TOML file of [[tables]]
	Path string `toml:"path" json:"path"`
	// Watch reloads Path when it changes
	Watch bool `toml:"watch" json:"watch"`
	// Tables are inline entries, used when Path is empty
	Tables []model.TableReference `toml:"tables" json:"tables"`
}

// StateConfig selects where the session id and open flag are persisted.
type StateConfig struct {
	// Backend is one of: bolt, sqlite, redis, memory
	Backend string `toml:"backend" json:"backend"`
	// Path is the database file for bolt and sqlite
	Path          string `toml:"path" json:"path"`
	RedisAddr     string `toml:"redis_addr" json:"redis_addr"`
	RedisPassword string `toml:"redis_password" json:"redis_password"`
	RedisDB       int    `toml:"redis_db" json:"redis_db"`
	// KeyPrefix namespaces keys in redis
	KeyPrefix string `toml:"key_prefix" json:"key_prefix"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// RenderMarkdown renders finished replies with glamour
	RenderMarkdown bool `toml:"render_markdown" json:"render_markdown"`
	// MaxFPS caps how often streamed text is redrawn
	MaxFPS int `toml:"max_fps" json:"max_fps"`
	// SuggestionLimit is the number of mention suggestions shown
	SuggestionLimit int `toml:"suggestion_limit" json:"suggestion_limit"`
	// Theme is "dark" or "light"
	Theme string `toml:"theme" json:"theme"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of: debug, info, warn, error
	Level string `toml:"level" json:"level"`
	// Format is "json" or "text"
	Format string `toml:"format" json:"format"`
	// Path is the log file used by the TUI (empty = ~/.opsdesk/opsdesk.log)
	Path string `toml:"path" json:"path"`
}

// MockConfig configures the bundled mock backend.
type MockConfig struct {
	Addr         string `toml:"addr" json:"addr"`
	ChunkDelayMs int    `toml:"chunk_delay_ms" json:"chunk_delay_ms"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Backend: BackendConfig{
			BaseURL:           "http://127.0.0.1:8787",
			StreamEndpoint:    "/api/assistant/chat/stream",
			Method:            "POST",
			RequestsPerSecond: 2,
			Burst:             4,
			HeaderTimeoutSecs: 30,
		},

		Stream: StreamConfig{
			IdleTimeoutSecs: 0, // disabled
			SyncIntervalMs:  250,
		},

		Page: PageConfig{
			Context: "null",
		},

		State: StateConfig{
			Backend:   "bolt",
			KeyPrefix: "opsdesk:",
		},

		UI: UIConfig{
			RenderMarkdown:  true,
			MaxFPS:          30,
			SuggestionLimit: 6,
			Theme:           "dark",
		},

		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},

		Mock: MockConfig{
			Addr:         "127.0.0.1:8787",
			ChunkDelayMs: 40,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the opsdesk configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".opsdesk"), nil
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

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// ensureSecurePermissions tightens config files to 0600; they may hold tokens.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from ~/.opsdesk. Tries TOML first, then JSON, and
// falls back to defaults. Environment overrides are applied last.
// A file that fails to parse is reported alongside the defaults.
func Load() (*Config, error) {
	var loadErr error

	for _, locate := range []func() (string, error){ConfigPathTOML, ConfigPathJSON} {
		path, err := locate()
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
		loadErr = err
		break
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, loadErr
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
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
// validation. Values missing from the file keep their defaults.
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
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration atomically with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var b strings.Builder
	b.WriteString("# opsdesk configuration file\n")
	b.WriteString("# Generated by opsdesk - edit with care\n\n")

	if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, []byte(b.String()), 0600); err != nil {
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
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors as
// ValidateErrors.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...interface{}) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// Backend
	if u, err := url.Parse(c.Backend.BaseURL); err != nil || u.Host == "" {
		add("backend.base_url", "invalid URL '%s'", c.Backend.BaseURL)
	} else if u.Scheme != "http" && u.Scheme != "https" {
		add("backend.base_url", "scheme must be http or https, got '%s'", u.Scheme)
	}
	if !strings.HasPrefix(c.Backend.StreamEndpoint, "/") {
		add("backend.stream_endpoint", "must start with '/'")
	}
	switch strings.ToUpper(c.Backend.Method) {
	case "GET", "POST":
	default:
		add("backend.method", "invalid method '%s', must be one of: GET, POST", c.Backend.Method)
	}
	if c.Backend.RequestsPerSecond < 0 {
		add("backend.requests_per_second", "must not be negative")
	}
	if c.Backend.Burst < 0 {
		add("backend.burst", "must not be negative")
	}
	if c.Backend.HeaderTimeoutSecs < 0 {
		add("backend.header_timeout_secs", "must not be negative")
	}

	// Stream
	if c.Stream.IdleTimeoutSecs < 0 {
		add("stream.idle_timeout_secs", "must not be negative")
	}
	if c.Stream.SyncIntervalMs < 0 {
		add("stream.sync_interval_ms", "must not be negative")
	}

	// Page
	if c.Page.Context != "" && !json.Valid([]byte(c.Page.Context)) {
		add("page.context", "must be a JSON document")
	}

	// Catalog
	for i, t := range c.Catalog.Tables {
		if strings.TrimSpace(t.ID) == "" || strings.TrimSpace(t.Name) == "" {
			add(fmt.Sprintf("catalog.tables[%d]", i), "id and name are required")
		}
	}

	// State
	switch strings.ToLower(c.State.Backend) {
	case "bolt", "sqlite", "memory":
	case "redis":
		if c.State.RedisAddr == "" {
			add("state.redis_addr", "required when state.backend is redis")
		}
	default:
		add("state.backend", "invalid backend '%s', must be one of: bolt, sqlite, redis, memory", c.State.Backend)
	}
	if c.State.RedisDB < 0 {
		add("state.redis_db", "must not be negative")
	}

	// UI
	if c.UI.MaxFPS < 1 || c.UI.MaxFPS > 120 {
		add("ui.max_fps", "must be between 1 and 120, got %d", c.UI.MaxFPS)
	}
	if c.UI.SuggestionLimit < 1 {
		add("ui.suggestion_limit", "must be at least 1")
	}
	switch strings.ToLower(c.UI.Theme) {
	case "dark", "light":
	default:
		add("ui.theme", "invalid theme '%s', must be one of: dark, light", c.UI.Theme)
	}

	// Log
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		add("log.level", "invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		add("log.format", "invalid format '%s', must be one of: json, text", c.Log.Format)
	}

	// Mock
	if c.Mock.Addr == "" {
		add("mock.addr", "must not be empty")
	}
	if c.Mock.ChunkDelayMs < 0 {
		add("mock.chunk_delay_ms", "must not be negative")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills any missing or zero-value fields.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}

	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = defaults.Backend.BaseURL
	}
	c.Backend.BaseURL = strings.TrimRight(c.Backend.BaseURL, "/")
	if c.Backend.StreamEndpoint == "" {
		c.Backend.StreamEndpoint = defaults.Backend.StreamEndpoint
	}
	if c.Backend.Method == "" {
		c.Backend.Method = defaults.Backend.Method
	}
	c.Backend.Method = strings.ToUpper(c.Backend.Method)

	if c.Page.Context == "" {
		c.Page.Context = defaults.Page.Context
	}

	if c.State.Backend == "" {
		c.State.Backend = defaults.State.Backend
	}
	c.State.Backend = strings.ToLower(c.State.Backend)
	if c.State.Path == "" {
		if dir, err := ConfigDir(); err == nil {
			switch c.State.Backend {
			case "bolt":
				c.State.Path = filepath.Join(dir, "state.db")
			case "sqlite":
				c.State.Path = filepath.Join(dir, "state.sqlite")
			}
		}
	}
	if c.State.KeyPrefix == "" {
		c.State.KeyPrefix = defaults.State.KeyPrefix
	}

	if c.UI.MaxFPS == 0 {
		c.UI.MaxFPS = defaults.UI.MaxFPS
	}
	if c.UI.SuggestionLimit == 0 {
		c.UI.SuggestionLimit = defaults.UI.SuggestionLimit
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}

	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = defaults.Log.Format
	}
	if c.Log.Path == "" {
		if dir, err := ConfigDir(); err == nil {
			c.Log.Path = filepath.Join(dir, "opsdesk.log")
		}
	}

	if c.Mock.Addr == "" {
		c.Mock.Addr = defaults.Mock.Addr
	}
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// HeaderTimeout returns backend.header_timeout_secs as a duration.
func (c *Config) HeaderTimeout() time.Duration {
	return time.Duration(c.Backend.HeaderTimeoutSecs) * time.Second
}

// IdleTimeout returns stream.idle_timeout_secs as a duration.
func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.Stream.IdleTimeoutSecs) * time.Second
}

// SyncInterval returns stream.sync_interval_ms as a duration.
func (c *Config) SyncInterval() time.Duration {
	return time.Duration(c.Stream.SyncIntervalMs) * time.Millisecond
}

// ChunkDelay returns mock.chunk_delay_ms as a duration.
func (c *Config) ChunkDelay() time.Duration {
	return time.Duration(c.Mock.ChunkDelayMs) * time.Millisecond
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - OPSDESK_BACKEND_URL: overrides backend.base_url
//   - OPSDESK_API_TOKEN: overrides backend.api_token
//   - OPSDESK_STATE_BACKEND: overrides state.backend
//   - OPSDESK_STATE_PATH: overrides state.path
//   - OPSDESK_REDIS_ADDR: overrides state.redis_addr
//   - OPSDESK_REDIS_PASSWORD: overrides state.redis_password
//   - OPSDESK_LOG_LEVEL: overrides log.level
//   - OPSDESK_PAGE_CONTEXT: overrides page.context
//   - OPSDESK_IDLE_TIMEOUT: overrides stream.idle_timeout_secs
//   - OPSDESK_CATALOG: overrides catalog.path
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("OPSDESK_BACKEND_URL"); v != "" {
		c.Backend.BaseURL = v
	}
	if v := os.Getenv("OPSDESK_API_TOKEN"); v != "" {
		c.Backend.APIToken = v
	}
	if v := os.Getenv("OPSDESK_STATE_BACKEND"); v != "" {
		c.State.Backend = v
	}
	if v := os.Getenv("OPSDESK_STATE_PATH"); v != "" {
		c.State.Path = v
	}
	if v := os.Getenv("OPSDESK_REDIS_ADDR"); v != "" {
		c.State.RedisAddr = v
	}
	if v := os.Getenv("OPSDESK_REDIS_PASSWORD"); v != "" {
		c.State.RedisPassword = v
	}
	if v := os.Getenv("OPSDESK_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("OPSDESK_PAGE_CONTEXT"); v != "" {
		c.Page.Context = v
	}
	if v := os.Getenv("OPSDESK_IDLE_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.Stream.IdleTimeoutSecs = secs
		}
	}
	if v := os.Getenv("OPSDESK_CATALOG"); v != "" {
		c.Catalog.Path = v
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "backend.base_url").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "ui.max_fps").
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
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
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
			switch strings.ToLower(strings.TrimSpace(strVal)) {
			case "yes", "on":
				field.SetBool(true)
				return nil
			case "no", "off":
				field.SetBool(false)
				return nil
			}
			boolVal, err := strconv.ParseBool(strings.TrimSpace(strVal))
			if err != nil {
				return fmt.Errorf("invalid boolean value %q", strVal)
			}
			field.SetBool(boolVal)
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

// GetAllKeys returns all scalar configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"backend.base_url",
		"backend.stream_endpoint",
		"backend.method",
		"backend.api_token",
		"backend.requests_per_second",
		"backend.burst",
		"backend.header_timeout_secs",
		"stream.idle_timeout_secs",
		"stream.sync_interval_ms",
		"page.context",
		"page.context_settings",
		"catalog.path",
		"catalog.watch",
		"state.backend",
		"state.path",
		"state.redis_addr",
		"state.redis_password",
		"state.redis_db",
		"state.key_prefix",
		"ui.render_markdown",
		"ui.max_fps",
		"ui.suggestion_limit",
		"ui.theme",
		"log.level",
		"log.format",
		"log.path",
		"mock.addr",
		"mock.chunk_delay_ms",
	}
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Catalog.Tables = model.CloneTables(c.Catalog.Tables)
	return &clone
}

// String returns the config as indented JSON with secrets redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Backend.APIToken != "" {
		safe.Backend.APIToken = "[REDACTED]"
	}
	if safe.State.RedisPassword != "" {
		safe.State.RedisPassword = "[REDACTED]"
	}
	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}
