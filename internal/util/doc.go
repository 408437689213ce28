// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the widget and the CLI.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
//   - TruncateWidth: truncation by terminal cells (go-runewidth)
//   - ShortID: display prefix of a session id
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
//
// # Usage
//
//	chip := util.TruncateWidth(table.Name, 24)
//	err := util.AtomicWriteFile(path, data, 0600)
package util
