// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// isolateHome points the config directory at a temp dir.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	return home
}

// =============================================================================
// DEFAULTS & VALIDATION TESTS
// =============================================================================

func TestConfig_Default(t *testing.T) {
	cfg := Default()
	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Backend.StreamEndpoint != "/api/assistant/chat/stream" {
		t.Errorf("unexpected endpoint %q", cfg.Backend.StreamEndpoint)
	}
	if cfg.IdleTimeout() != 0 {
		t.Errorf("idle watchdog should be disabled by default, got %v", cfg.IdleTimeout())
	}
	if cfg.State.Backend != "bolt" {
		t.Errorf("expected bolt state backend, got %q", cfg.State.Backend)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"relative base url", func(c *Config) { c.Backend.BaseURL = "localhost" }, "backend.base_url"},
		{"ftp base url", func(c *Config) { c.Backend.BaseURL = "ftp://host" }, "backend.base_url"},
		{"endpoint without slash", func(c *Config) { c.Backend.StreamEndpoint = "api/chat" }, "backend.stream_endpoint"},
		{"bad method", func(c *Config) { c.Backend.Method = "PATCH" }, "backend.method"},
		{"negative rps", func(c *Config) { c.Backend.RequestsPerSecond = -1 }, "backend.requests_per_second"},
		{"negative idle", func(c *Config) { c.Stream.IdleTimeoutSecs = -5 }, "stream.idle_timeout_secs"},
		{"page context not json", func(c *Config) { c.Page.Context = "{oops" }, "page.context"},
		{"unknown state backend", func(c *Config) { c.State.Backend = "etcd" }, "state.backend"},
		{"redis without addr", func(c *Config) { c.State.Backend = "redis" }, "state.redis_addr"},
		{"fps too high", func(c *Config) { c.UI.MaxFPS = 500 }, "ui.max_fps"},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.SetDefaults()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			var verrs ValidateErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidateErrors, got %T", err)
			}
			found := false
			for _, v := range verrs {
				if v.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on %s, got %v", tt.field, err)
			}
		})
	}
}

func TestConfig_ValidateCollectsAll(t *testing.T) {
	cfg := Default()
	cfg.SetDefaults()
	cfg.Backend.Method = "PUT"
	cfg.Log.Level = "loud"

	var verrs ValidateErrors
	if !errors.As(cfg.Validate(), &verrs) {
		t.Fatal("expected ValidateErrors")
	}
	if len(verrs) != 2 {
		t.Errorf("expected 2 errors, got %d: %v", len(verrs), verrs)
	}
}

// =============================================================================
// LOAD & SAVE TESTS
// =============================================================================

func TestLoadFromPath_TOMLKeepsDefaults(t *testing.T) {
	home := isolateHome(t)
	path := filepath.Join(home, "custom.toml")
	data := `
[backend]
base_url = "https://assist.example.com/"
api_token = "secret"

[stream]
idle_timeout_secs = 45

[page]
context = '{"page":"billing"}'

[[catalog.tables]]
id = "t1"
name = "orders"
`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Backend.BaseURL != "https://assist.example.com" {
		t.Errorf("trailing slash should be trimmed, got %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Method != "POST" {
		t.Errorf("missing method should default to POST, got %q", cfg.Backend.Method)
	}
	if cfg.IdleTimeout() != 45*time.Second {
		t.Errorf("expected 45s idle timeout, got %v", cfg.IdleTimeout())
	}
	if len(cfg.Catalog.Tables) != 1 || cfg.Catalog.Tables[0].Name != "orders" {
		t.Errorf("unexpected catalog tables: %+v", cfg.Catalog.Tables)
	}
	if want := filepath.Join(home, ".opsdesk", "state.db"); cfg.State.Path != want {
		t.Errorf("expected state path %q, got %q", want, cfg.State.Path)
	}
}

func TestLoadFromPath_JSON(t *testing.T) {
	home := isolateHome(t)
	path := filepath.Join(home, "config.json")
	if err := os.WriteFile(path, []byte(`{"state":{"backend":"memory"},"ui":{"max_fps":60}}`), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.State.Backend != "memory" || cfg.UI.MaxFPS != 60 {
		t.Errorf("unexpected values: backend=%s fps=%d", cfg.State.Backend, cfg.UI.MaxFPS)
	}
}

func TestLoadFromPath_Invalid(t *testing.T) {
	home := isolateHome(t)
	path := filepath.Join(home, "bad.toml")
	if err := os.WriteFile(path, []byte("[backend]\nmethod = \"DELETE\"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromPath(path); err == nil {
		t.Error("expected error for invalid method")
	}
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	isolateHome(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend.BaseURL != Default().Backend.BaseURL {
		t.Errorf("expected default base url, got %q", cfg.Backend.BaseURL)
	}
}

func TestSaveTOML_RoundTrip(t *testing.T) {
	home := isolateHome(t)
	path := filepath.Join(home, "out", "config.toml")

	cfg := Default()
	cfg.SetDefaults()
	cfg.Backend.APIToken = "tok"
	cfg.Stream.IdleTimeoutSecs = 10

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 && runtime.GOOS != "windows" {
		t.Errorf("expected 0600 permissions, got %o", perm)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if loaded.Backend.APIToken != "tok" || loaded.Stream.IdleTimeoutSecs != 10 {
		t.Errorf("round trip lost values: %+v", loaded.Backend)
	}
}

// =============================================================================
// ENV, GET/SET & STRING TESTS
// =============================================================================

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("OPSDESK_BACKEND_URL", "https://env.example.com")
	t.Setenv("OPSDESK_API_TOKEN", "env-token")
	t.Setenv("OPSDESK_STATE_BACKEND", "redis")
	t.Setenv("OPSDESK_REDIS_ADDR", "localhost:6379")
	t.Setenv("OPSDESK_IDLE_TIMEOUT", "30")
	t.Setenv("OPSDESK_LOG_LEVEL", "debug")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Backend.BaseURL != "https://env.example.com" {
		t.Errorf("base url not overridden: %s", cfg.Backend.BaseURL)
	}
	if cfg.Backend.APIToken != "env-token" {
		t.Error("api token not overridden")
	}
	if cfg.State.Backend != "redis" || cfg.State.RedisAddr != "localhost:6379" {
		t.Errorf("state not overridden: %+v", cfg.State)
	}
	if cfg.Stream.IdleTimeoutSecs != 30 {
		t.Errorf("idle timeout not overridden: %d", cfg.Stream.IdleTimeoutSecs)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level not overridden: %s", cfg.Log.Level)
	}
}

func TestGetSet(t *testing.T) {
	cfg := Default()

	if err := cfg.Set("ui.max_fps", "45"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := cfg.Set("catalog.watch", "true"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := cfg.Set("backend.requests_per_second", "0.5"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	v, err := cfg.Get("ui.max_fps")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v.(int) != 45 {
		t.Errorf("expected 45, got %v", v)
	}
	if !cfg.Catalog.Watch {
		t.Error("catalog.watch should be true")
	}
	if cfg.Backend.RequestsPerSecond != 0.5 {
		t.Errorf("expected 0.5 rps, got %v", cfg.Backend.RequestsPerSecond)
	}

	if _, err := cfg.Get("backend.nope"); err == nil {
		t.Error("expected unknown field error")
	}
	if err := cfg.Set("ui.max_fps.deep", "1"); err == nil {
		t.Error("expected error navigating into a scalar")
	}
}

func TestSet_RejectsBadBool(t *testing.T) {
	cfg := Default()
	cfg.Catalog.Watch = true

	if err := cfg.Set("catalog.watch", "banana"); err == nil {
		t.Fatal("expected error for a non-boolean value")
	}
	if !cfg.Catalog.Watch {
		t.Error("catalog.watch changed by a rejected value")
	}

	for _, in := range []string{"0", "false", "no", "OFF"} {
		cfg.Catalog.Watch = true
		if err := cfg.Set("catalog.watch", in); err != nil {
			t.Fatalf("Set(%q): %v", in, err)
		}
		if cfg.Catalog.Watch {
			t.Errorf("Set(%q) left catalog.watch true", in)
		}
	}
}

func TestGetAllKeys_Resolve(t *testing.T) {
	cfg := Default()
	for _, key := range GetAllKeys() {
		if _, err := cfg.Get(key); err != nil {
			t.Errorf("key %s does not resolve: %v", key, err)
		}
	}
}

func TestString_RedactsSecrets(t *testing.T) {
	cfg := Default()
	cfg.Backend.APIToken = "super-secret"
	cfg.State.RedisPassword = "hunter2"

	s := cfg.String()
	if strings.Contains(s, "super-secret") || strings.Contains(s, "hunter2") {
		t.Errorf("secrets leaked: %s", s)
	}
	if cfg.Backend.APIToken != "super-secret" {
		t.Error("String must not modify the original")
	}
}
