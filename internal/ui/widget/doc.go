// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package widget is the Bubble Tea shell of the assistant.
//
// The widget renders the conversation held by the session store, the pending
// mention chips, the @-mention table picker and the composer. It owns no
// conversation state: keystrokes go to a chat.InputCoordinator, turns are run
// by a chat.Controller, and the widget repaints when the controller signals a
// change.
//
// # Streaming
//
// The widget installs itself as the controller's sink. Chunks are collected
// in a StreamingBuffer and painted at most once per frame (30fps by default),
// so a fast stream does not repaint on every token.
//
// # Keys
//
//   - Enter: send, or pick the highlighted table in the picker
//   - Tab: pick the highlighted table
//   - Esc: close the picker, otherwise stop the reply
//   - Ctrl+S: stop the reply
//   - Ctrl+L: start a new conversation
//   - Ctrl+W: drop the last mention chip
//   - Ctrl+O: collapse or expand the widget
package widget
