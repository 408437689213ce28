// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the local key/value state of the assistant widget.
//
// The widget persists exactly two plain strings: the backend session id and
// the open/closed flag of the widget. Both live behind the Store interface so
// the backend can be swapped without touching the session store.
//
// # Backends
//
//   - bolt: a single bbolt file (default)
//   - sqlite: a one-table SQLite database in WAL mode
//   - redis: a shared redis, keys namespaced with a prefix
//   - memory: process-local, for tests and --ephemeral runs
//
// # Usage
//
//	st, err := storage.Open(ctx, storage.Options{Backend: "bolt", Path: path})
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
//	err = st.Set(ctx, storage.KeySessionID, "S1")
package storage
