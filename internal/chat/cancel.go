// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"sync"

	"github.com/jeranaias/opsdesk/internal/transport"
)

// =============================================================================
// ABORT HANDLE MANAGEMENT (THREAD-SAFE)
// =============================================================================

// cancelManager holds the transport handle of the active turn, keyed by the
// turn's message id so a stale turn can never cancel a newer one.
// IMPORTANT: use as a pointer; it must not be copied.
type cancelManager struct {
	mu     sync.Mutex
	id     string
	handle transport.Handle
}

func newCancelManager() *cancelManager {
	return &cancelManager{}
}

// set stores the handle for message id, replacing any previous one.
func (cm *cancelManager) set(id string, h transport.Handle) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.id = id
	cm.handle = h
}

// cancel aborts the request for id and forgets the handle.
// Safe to call multiple times, for unknown ids, or with nothing stored.
func (cm *cancelManager) cancel(id string) {
	cm.mu.Lock()
	h := cm.take(id)
	cm.mu.Unlock()
	if h != nil {
		h.Cancel()
	}
}

// clear releases the handle for id once its turn is terminal. The request is
// cancelled as well so its context never leaks.
func (cm *cancelManager) clear(id string) {
	cm.cancel(id)
}

func (cm *cancelManager) take(id string) transport.Handle {
	if cm.handle == nil || cm.id != id {
		return nil
	}
	h := cm.handle
	cm.handle = nil
	cm.id = ""
	return h
}
