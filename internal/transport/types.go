// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"context"
	"encoding/json"
	"strings"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// Payload is the JSON body sent to the streaming endpoint.
type Payload struct {
	Message         string          `json:"message"`
	SessionID       *string         `json:"sessionId"`
	PageContext     json.RawMessage `json:"pageContext"`
	Mentions        []string        `json:"mentions,omitempty"`
	ContextSettings string          `json:"contextSettings,omitempty"`
}

// Request describes one streaming exchange.
type Request struct {
	Endpoint string
	Method   string
	Data     Payload
}

// NewPayload builds a payload. An empty sessionID is sent as null.
func NewPayload(message, sessionID string, pageContext json.RawMessage, mentions []string, contextSettings string) Payload {
	p := Payload{
		Message:         message,
		PageContext:     pageContext,
		ContextSettings: contextSettings,
	}
	if sessionID != "" {
		id := sessionID
		p.SessionID = &id
	}
	if len(mentions) > 0 {
		p.Mentions = append([]string(nil), mentions...)
	}
	if len(p.PageContext) == 0 {
		p.PageContext = json.RawMessage("null")
	}
	return p
}

// PageContextFromString turns a configured page context into raw JSON.
// Valid JSON passes through; anything else is sent as a JSON string.
func PageContextFromString(s string) json.RawMessage {
	s = strings.TrimSpace(s)
	if s == "" {
		return json.RawMessage("null")
	}
	if json.Valid([]byte(s)) {
		return json.RawMessage(s)
	}
	b, _ := json.Marshal(s)
	return b
}

// =============================================================================
// CALLBACK TYPES
// =============================================================================

// StartData is delivered once when the backend accepts the stream.
type StartData struct {
	SessionID string `json:"sessionId,omitempty"`
}

// ChunkData carries one text fragment.
type ChunkData struct {
	Content string `json:"content,omitempty"`
}

// Handlers receive the stream's events. Exactly one of OnEnd or OnError is
// called per request unless the request is cancelled first. Any may be nil.
type Handlers struct {
	OnStart func(StartData)
	OnChunk func(ChunkData)
	OnEnd   func()
	OnError func(error)
}

// Handle controls an in-flight request.
type Handle interface {
	// Cancel aborts the request. Safe to call more than once.
	Cancel()
}

// Streamer issues streaming requests.
type Streamer interface {
	Stream(ctx context.Context, req Request, h Handlers) Handle
}

// StreamerFunc adapts a function to the Streamer interface.
type StreamerFunc func(ctx context.Context, req Request, h Handlers) Handle

// Stream implements Streamer.
func (f StreamerFunc) Stream(ctx context.Context, req Request, h Handlers) Handle {
	return f(ctx, req, h)
}

// CancelFunc adapts a function to the Handle interface.
type CancelFunc func()

// Cancel implements Handle.
func (f CancelFunc) Cancel() {
	if f != nil {
		f()
	}
}
