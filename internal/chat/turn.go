// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/jeranaias/opsdesk/internal/model"
)

// Turn is one request/response cycle: a user message and the assistant
// reply streamed for it. All mutable fields are guarded by the owning
// controller's lock.
type Turn struct {
	id     string
	userID string

	status       model.Status
	sending      bool
	lastActivity time.Time
	lastSync     time.Time

	done chan struct{}
}

func newTurn(userID string, now time.Time) *Turn {
	return &Turn{
		id:           model.AssistantIDFor(userID),
		userID:       userID,
		status:       model.StatusStreaming,
		sending:      true,
		lastActivity: now,
		lastSync:     now,
		done:         make(chan struct{}),
	}
}

// ID returns the assistant message id.
func (t *Turn) ID() string { return t.id }

// UserID returns the id of the user message that started the turn.
func (t *Turn) UserID() string { return t.userID }

// Done is closed once the turn reaches a terminal state.
func (t *Turn) Done() <-chan struct{} { return t.done }

// Status returns the terminal status, or StatusStreaming while the turn is
// still open.
func (t *Turn) Status() model.Status {
	select {
	case <-t.done:
		return t.status
	default:
		return model.StatusStreaming
	}
}

// inert marks a turn that was never started as interrupted.
func (t *Turn) inert() *Turn {
	t.status = model.StatusInterrupted
	t.sending = false
	close(t.done)
	return t
}

func (t *Turn) terminal() bool {
	return t.status.IsTerminal()
}
