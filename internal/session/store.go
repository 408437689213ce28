// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the conversation state of the assistant widget.
package session

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/jeranaias/opsdesk/internal/model"
	"github.com/jeranaias/opsdesk/internal/storage"
)

// =============================================================================
// SESSION STATE STORE
// =============================================================================

// Store is the single source of truth for the message list, the backend
// session id and the widget open flag. It is safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	messages []model.Message
	index    map[string]int // message id -> position in messages

	sessionID  string
	widgetOpen bool

	kv storage.Store
}

// NewStore creates an empty store persisting through kv. A nil kv keeps
// everything in memory.
func NewStore(kv storage.Store) *Store {
	if kv == nil {
		kv = storage.NewMemory()
	}
	return &Store{
		index:      make(map[string]int),
		widgetOpen: true,
		kv:         kv,
	}
}

// Load initializes the session id and open flag from persistent storage.
// Call once at mount, before the first turn.
func (s *Store) Load(ctx context.Context) error {
	id, _, err := s.kv.Get(ctx, storage.KeySessionID)
	if err != nil {
		return fmt.Errorf("failed to load session id: %w", err)
	}
	open, found, err := s.kv.Get(ctx, storage.KeyWidgetOpen)
	if err != nil {
		return fmt.Errorf("failed to load widget state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionID = id
	if found {
		if v, perr := strconv.ParseBool(open); perr == nil {
			s.widgetOpen = v
		}
	}
	return nil
}

// =============================================================================
// MESSAGE LIST
// =============================================================================

// Append adds msg to the end of the list. Order is arrival order. A message
// whose id is already present is ignored and Append returns false.
func (s *Store) Append(msg model.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.index[msg.ID]; dup {
		return false
	}
	s.index[msg.ID] = len(s.messages)
	s.messages = append(s.messages, msg.Clone())
	return true
}

// UpdateByID applies mutate to the message with the given id.
// Returns false (and does nothing) when no such message exists.
func (s *Store) UpdateByID(id string, mutate func(*model.Message)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return false
	}
	mutate(&s.messages[i])
	return true
}

// Get returns a copy of the message with the given id.
func (s *Store) Get(id string) (model.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return model.Message{}, false
	}
	return s.messages[i].Clone(), true
}

// Messages returns a deep copy of the message list.
func (s *Store) Messages() []model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Message, len(s.messages))
	for i, m := range s.messages {
		out[i] = m.Clone()
	}
	return out
}

// Len returns the number of messages.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// StreamingCount returns how many messages are currently streaming.
func (s *Store) StreamingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, m := range s.messages {
		if m.IsStreaming {
			n++
		}
	}
	return n
}

// Clear empties the message list and forgets the session id, both in memory
// and in persistent storage. Callers interrupt any active turn first.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.messages = nil
	s.index = make(map[string]int)
	s.sessionID = ""
	s.mu.Unlock()

	if err := s.kv.Delete(ctx, storage.KeySessionID); err != nil {
		return fmt.Errorf("failed to clear session id: %w", err)
	}
	return nil
}

// =============================================================================
// SESSION ID
// =============================================================================

// SessionID returns the current session id, or "" when absent.
func (s *Store) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

// AdoptSessionID makes id the current session id and persists it right away.
// Empty ids and the id already held are ignored. Reports whether it changed.
// The in-memory value changes even if persisting fails.
func (s *Store) AdoptSessionID(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	s.mu.Lock()
	if s.sessionID == id {
		s.mu.Unlock()
		return false, nil
	}
	s.sessionID = id
	s.mu.Unlock()

	if err := s.kv.Set(ctx, storage.KeySessionID, id); err != nil {
		return true, fmt.Errorf("failed to persist session id: %w", err)
	}
	return true, nil
}

// =============================================================================
// WIDGET OPEN FLAG
// =============================================================================

// WidgetOpen reports whether the widget is expanded.
func (s *Store) WidgetOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.widgetOpen
}

// SetWidgetOpen records and persists the open flag.
func (s *Store) SetWidgetOpen(ctx context.Context, open bool) error {
	s.mu.Lock()
	s.widgetOpen = open
	s.mu.Unlock()

	if err := s.kv.Set(ctx, storage.KeyWidgetOpen, strconv.FormatBool(open)); err != nil {
		return fmt.Errorf("failed to persist widget state: %w", err)
	}
	return nil
}
