// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for opsdesk.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: main configuration structure
//   - BackendConfig: assistant API location, token and rate limit
//   - StateConfig: where the session id and widget flag are persisted
//   - CatalogConfig: the tables that can be mentioned
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (OPSDESK_*), including a .env file loaded by main
//   - --config path, or ~/.opsdesk/config.toml, or ~/.opsdesk/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	timeout := cfg.IdleTimeout()
package config
