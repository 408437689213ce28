// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the assistant conversation.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// SENDER TYPE
// =============================================================================

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// String returns the string representation of the sender.
func (s Sender) String() string {
	return string(s)
}

// DisplayName returns a human-readable name for the sender.
func (s Sender) DisplayName() string {
	switch s {
	case SenderUser:
		return "You"
	case SenderAssistant:
		return "Assistant"
	default:
		return string(s)
	}
}

// =============================================================================
// STATUS TYPE
// =============================================================================

// Status is the lifecycle state of a message.
type Status int

const (
	StatusSent        Status = iota // User message, delivered to the controller
	StatusStreaming                 // Assistant placeholder receiving chunks
	StatusFinalized                 // Stream completed normally
	StatusErrored                   // Transport failed; content is the apology
	StatusInterrupted               // Stopped early; content carries the marker
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSent:
		return "sent"
	case StatusStreaming:
		return "streaming"
	case StatusFinalized:
		return "finalized"
	case StatusErrored:
		return "errored"
	case StatusInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusFinalized || s == StatusErrored || s == StatusInterrupted
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// assistantPrefix pairs an assistant reply with the user message that triggered it.
const assistantPrefix = "assistant-"

// Message is a single row in the conversation.
type Message struct {
	ID          string           `json:"id"`
	Content     string           `json:"content"`
	Sender      Sender           `json:"sender"`
	Timestamp   time.Time        `json:"timestamp"`
	IsStreaming bool             `json:"isStreaming"`
	Mentions    []TableReference `json:"mentions,omitempty"`
	Status      Status           `json:"-"`
}

// NewUserMessage creates a user message. The mentions slice is copied so later
// edits to the caller's pending list never reach the sent message.
func NewUserMessage(content string, mentions []TableReference) Message {
	return Message{
		ID:        uuid.New().String(),
		Content:   content,
		Sender:    SenderUser,
		Timestamp: time.Now(),
		Mentions:  CloneTables(mentions),
		Status:    StatusSent,
	}
}

// NewPlaceholder creates the empty streaming reply for the given user message.
func NewPlaceholder(userID string) Message {
	return Message{
		ID:          AssistantIDFor(userID),
		Sender:      SenderAssistant,
		Timestamp:   time.Now(),
		IsStreaming: true,
		Status:      StatusStreaming,
	}
}

// AssistantIDFor returns the reply id paired with a user message id.
func AssistantIDFor(userID string) string {
	return assistantPrefix + userID
}

// UserIDFor reverses AssistantIDFor.
func UserIDFor(assistantID string) (string, bool) {
	if !strings.HasPrefix(assistantID, assistantPrefix) {
		return "", false
	}
	return strings.TrimPrefix(assistantID, assistantPrefix), true
}

// Clone returns a deep copy of the message.
func (m Message) Clone() Message {
	m.Mentions = CloneTables(m.Mentions)
	return m
}

// MentionNames returns the names of the referenced tables in order.
func (m Message) MentionNames() []string {
	if len(m.Mentions) == 0 {
		return nil
	}
	names := make([]string, len(m.Mentions))
	for i, t := range m.Mentions {
		names[i] = t.Name
	}
	return names
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m Message) Preview(maxLen int) string {
	runes := []rune(m.Content)
	if len(runes) <= maxLen {
		return m.Content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
