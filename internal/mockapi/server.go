// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mockapi is a development stand-in for the assistant backend. It
// speaks the same streaming protocol as the real API.
package mockapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// StreamPath is the streaming chat endpoint.
const StreamPath = "/api/assistant/chat/stream"

// ============================================================================
// CONFIGURATION
// ============================================================================

// Config controls the mock backend.
type Config struct {
	// Addr is the listen address (e.g. ":8787")
	Addr string

	// ChunkDelay is the pause between streamed words
	ChunkDelay time.Duration

	// APIToken, when set, is required as a bearer token
	APIToken string

	// MaxRequestBodySize bounds the JSON request body
	MaxRequestBodySize int64
}

// DefaultConfig returns the default mock backend configuration.
func DefaultConfig() Config {
	return Config{
		Addr:               "127.0.0.1:8787",
		ChunkDelay:         40 * time.Millisecond,
		MaxRequestBodySize: 64 * 1024,
	}
}

// ============================================================================
// ROUTER
// ============================================================================

// NewRouter builds the HTTP handler for the mock backend.
func NewRouter(cfg Config, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxRequestBodySize <= 0 {
		cfg.MaxRequestBodySize = DefaultConfig().MaxRequestBodySize
	}

	h := &streamHandler{cfg: cfg, logger: logger}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/healthz"))

	r.Route("/api/assistant", func(r chi.Router) {
		if cfg.APIToken != "" {
			r.Use(bearerAuth(cfg.APIToken))
		}
		r.Post("/chat/stream", h.ServeHTTP)
	})
	return r
}

// ============================================================================
// SERVER
// ============================================================================

// Server runs the mock backend until its context is cancelled.
type Server struct {
	cfg    Config
	logger *slog.Logger
	server *http.Server
}

// NewServer creates a mock backend server.
func NewServer(cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:    cfg,
		logger: logger,
		server: &http.Server{
			Addr:              cfg.Addr,
			Handler:           NewRouter(cfg, logger),
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
			// No WriteTimeout: responses are long-lived streams
		},
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("mock backend listening", "addr", s.cfg.Addr, "stream_path", StreamPath)
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("mock backend shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
