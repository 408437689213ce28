// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the local key/value state of the assistant widget.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// =============================================================================
// KEYS
// =============================================================================

// The widget owns exactly two persisted entries, both plain strings.
const (
	KeySessionID  = "session_id"
	KeyWidgetOpen = "widget_open"
)

// =============================================================================
// STORE INTERFACE
// =============================================================================

// Store is a string key/value store.
type Store interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the underlying resources.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Errors returned by stores.
var (
	ErrClosed         = errors.New("storage: store is closed")
	ErrUnknownBackend = errors.New("storage: unknown backend")
)

// Options selects and configures a backend.
type Options struct {
	Backend string

	// Path is the database file for bolt and sqlite.
	Path string

	// Redis settings.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// KeyPrefix namespaces keys in shared backends (redis).
	KeyPrefix string
}

// Open creates the store described by opts.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(opts.Backend) {
	case "", BackendBolt:
		if err := ensureParentDir(opts.Path); err != nil {
			return nil, err
		}
		return OpenBolt(opts.Path)
	case BackendSQLite:
		if err := ensureParentDir(opts.Path); err != nil {
			return nil, err
		}
		return OpenSQLite(opts.Path)
	case BackendRedis:
		return OpenRedis(ctx, opts)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}

func ensureParentDir(path string) error {
	if path == "" {
		return errors.New("storage: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}
	return nil
}
