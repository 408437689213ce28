// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package widget

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// STREAM MESSAGES
// =============================================================================

// StreamTickMsg is sent once per frame while a reply streams so buffered
// chunks are painted in batches.
type StreamTickMsg struct {
	Time time.Time
}

// ChangedMsg reports that the controller changed conversation state.
type ChangedMsg struct{}

// waitForChange blocks until the controller signals a change.
func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return ChangedMsg{}
	}
}

// =============================================================================
// RESULT MESSAGES
// =============================================================================

// ClearedMsg is sent when a clear request has completed.
type ClearedMsg struct {
	Err error
}

// ToggledMsg is sent after the open flag was persisted.
type ToggledMsg struct {
	Open bool
	Err  error
}
