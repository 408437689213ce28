// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mockapi

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// chatRequest mirrors the payload the widget sends.
type chatRequest struct {
	Message         string          `json:"message"`
	SessionID       *string         `json:"sessionId"`
	PageContext     json.RawMessage `json:"pageContext"`
	Mentions        []string        `json:"mentions"`
	ContextSettings string          `json:"contextSettings"`
}

type streamHandler struct {
	cfg    Config
	logger *slog.Logger
}

func (h *streamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxRequestBodySize)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid request body"}`, http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" && len(req.Mentions) == 0 {
		http.Error(w, `{"error": "message is required"}`, http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, `{"error": "streaming not supported"}`, http.StatusInternalServerError)
		return
	}

	sessionID := ""
	if req.SessionID != nil {
		sessionID = *req.SessionID
	}
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	h.logger.Info("assistant chat request",
		"session_id", sessionID,
		"message_length", len(req.Message),
		"mentions", len(req.Mentions),
		"request_id", chiMiddleware.GetReqID(r.Context()),
	)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	script := buildScript(req)

	if err := writeEvent(w, "start", map[string]string{"sessionId": sessionID}); err != nil {
		h.logger.Warn("failed to write SSE start event", "error", err)
		return
	}
	flusher.Flush()

	for i, word := range script.words {
		if script.failAfter >= 0 && i == script.failAfter {
			if err := writeEvent(w, "error", map[string]string{"error": "simulated backend failure"}); err != nil {
				h.logger.Warn("failed to write SSE error event", "error", err)
			}
			flusher.Flush()
			return
		}
		if script.dropAfter >= 0 && i == script.dropAfter {
			return
		}
		if script.hangAfter >= 0 && i == script.hangAfter {
			<-r.Context().Done()
			return
		}

		if !h.pause(r) {
			return
		}
		if err := writeEvent(w, "chunk", map[string]string{"content": word}); err != nil {
			h.logger.Warn("failed to write SSE chunk event", "error", err)
			return
		}
		flusher.Flush()
	}

	if err := writeEvent(w, "end", struct{}{}); err != nil {
		h.logger.Warn("failed to write SSE end event", "error", err)
		return
	}
	flusher.Flush()
}

// pause waits ChunkDelay; false when the client went away.
func (h *streamHandler) pause(r *http.Request) bool {
	if h.cfg.ChunkDelay <= 0 {
		return r.Context().Err() == nil
	}
	t := time.NewTimer(h.cfg.ChunkDelay)
	defer t.Stop()
	select {
	case <-r.Context().Done():
		return false
	case <-t.C:
		return true
	}
}

func writeEvent(w io.Writer, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
