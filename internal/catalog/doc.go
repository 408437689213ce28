// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package catalog provides the list of tables that can be @-mentioned.
//
// Tables come from the [[catalog.tables]] section of the config file or from
// a standalone TOML file, which a Watcher can reload on change:
//
//	tables, err := catalog.LoadFile("tables.toml")
//	cat := catalog.New(tables)
//	w, err := catalog.NewWatcher(cat, "tables.toml", 0, logger)
//	err = w.Watch(ctx)
//	defer w.Close()
package catalog
