// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the opsdesk command line.
//
// ParseArgs turns os.Args into a Command and Args; main dispatches to the
// Handle* functions. Commands return errors and never exit on their own:
// GetExitCode maps an error to the process exit code.
//
// # Commands
//
//   - tui: the full-screen assistant widget (default)
//   - chat: line-mode chat with @ completion and history
//   - ask: one question, reply streamed to stdout
//   - session: show or clear the persisted session id
//   - serve-mock: the bundled mock backend
//   - config: show, get, set and reset settings
//   - doctor: health checks
//
// The chat surfaces share App, which opens the state store, the catalog,
// the streaming client and the controller from one config.
//
// session, config and doctor accept --json for scripting.
package cli
