// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the streaming client.
type ClientConfig struct {
	// BaseURL is prefixed to relative endpoints (e.g. http://localhost:8787)
	BaseURL string

	// APIToken is sent as a bearer token when set
	APIToken string

	// HeaderTimeout bounds the wait for response headers (default: 15s).
	// The body itself is only bounded by the request context.
	HeaderTimeout time.Duration

	// RequestsPerSecond and Burst configure the outgoing rate limiter.
	// Zero RequestsPerSecond disables limiting.
	RequestsPerSecond float64
	Burst             int

	// Logger receives debug events (default: slog.Default())
	Logger *slog.Logger
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:           "http://127.0.0.1:8787",
		HeaderTimeout:     15 * time.Second,
		RequestsPerSecond: 2,
		Burst:             4,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client implements Streamer against an HTTP backend.
//
// The Client is safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a streaming client. Zero values fall back to defaults.
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.HeaderTimeout == 0 {
		config.HeaderTimeout = 15 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if config.RequestsPerSecond > 0 {
		burst := config.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), burst)
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				MaxIdleConns:          10,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: config.HeaderTimeout,
			},
			// No overall timeout for streaming - controlled via context
		},
		limiter: limiter,
		logger:  logger,
	}
}

// Stream starts req in the background and returns immediately. Handlers are
// invoked from the request goroutine in stream order.
func (c *Client) Stream(ctx context.Context, req Request, h Handlers) Handle {
	ctx, cancel := context.WithCancel(ctx)
	cl := &call{cancelCtx: cancel, h: h}
	go cl.run(ctx, c, req)
	return cl
}

// URL resolves an endpoint against the base URL.
func (c *Client) URL(endpoint string) (string, error) {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint, nil
	}
	if c.config.BaseURL == "" {
		return "", ErrNotConfigured
	}
	return strings.TrimRight(c.config.BaseURL, "/") + "/" + strings.TrimLeft(endpoint, "/"), nil
}

// =============================================================================
// IN-FLIGHT CALL
// =============================================================================

// call is the Handle for one request. Callbacks are not run under a lock so a
// handler may cancel, and cancellation never waits on a running handler.
type call struct {
	cancelCtx context.CancelFunc
	h         Handlers

	cancelled atomic.Bool
	finished  atomic.Bool
}

// Cancel implements Handle.
func (cl *call) Cancel() {
	if cl.cancelled.CompareAndSwap(false, true) {
		cl.cancelCtx()
	}
}

func (cl *call) live() bool {
	return !cl.cancelled.Load() && !cl.finished.Load()
}

func (cl *call) start(d StartData) {
	if cl.live() && cl.h.OnStart != nil {
		cl.h.OnStart(d)
	}
}

func (cl *call) chunk(d ChunkData) {
	if cl.live() && cl.h.OnChunk != nil {
		cl.h.OnChunk(d)
	}
}

func (cl *call) end() {
	if cl.cancelled.Load() || !cl.finished.CompareAndSwap(false, true) {
		return
	}
	if cl.h.OnEnd != nil {
		cl.h.OnEnd()
	}
}

func (cl *call) fail(err error) {
	if cl.cancelled.Load() || !cl.finished.CompareAndSwap(false, true) {
		return
	}
	if cl.h.OnError != nil {
		cl.h.OnError(err)
	}
}

func (cl *call) run(ctx context.Context, c *Client, req Request) {
	defer cl.cancelCtx()

	resp, err := c.open(ctx, req)
	if err != nil {
		cl.fail(err)
		return
	}
	defer resp.Body.Close()

	if err := c.processStream(ctx, resp.Body, cl); err != nil {
		cl.fail(err)
		return
	}
	cl.end()
}

// open waits for the limiter and sends the request.
func (c *Client) open(ctx context.Context, req Request) (*http.Response, error) {
	url, err := c.URL(req.Endpoint)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ClientError{Type: ErrTypeRateLimited, Message: "local rate limit", Cause: err}
	}

	body, err := json.Marshal(req.Data)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeBadRequest, Message: "failed to marshal request", Cause: err}
	}

	method := req.Method
	if method == "" {
		method = http.MethodPost
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	requestID := uuid.New().String()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Cache-Control", "no-cache")
	httpReq.Header.Set("X-Request-ID", requestID)
	if c.config.APIToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.config.APIToken)
	}

	c.logger.Debug("stream request", "request_id", requestID, "url", url, "mentions", len(req.Data.Mentions))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ClientError{Type: ErrTypeConnection, Message: "request failed", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, MaxEventSize))
		resp.Body.Close()
		return nil, errorFromStatus(resp.StatusCode, data)
	}
	return resp, nil
}

// =============================================================================
// STREAM PROCESSING
// =============================================================================

// envelope accepts both named events and self-describing data payloads.
type envelope struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
	Content   string `json:"content"`
	Error     string `json:"error"`
	Message   string `json:"message"`
}

// processStream reads SSE events until the end marker. Returns nil when the
// stream completed, ErrStreamAborted when it closed early.
func (c *Client) processStream(ctx context.Context, body io.Reader, cl *call) error {
	reader := NewSSEReader(body)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		event, data, err := reader.ReadEvent()
		if err != nil {
			if err == io.EOF {
				return ErrStreamAborted
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, ErrEventTooLarge) {
				return err
			}
			return &ClientError{Type: ErrTypeConnection, Message: "stream read failed", Cause: err}
		}

		// Check for [DONE] signal
		if bytes.Equal(bytes.TrimSpace(data), []byte("[DONE]")) {
			return nil
		}

		var env envelope
		if len(data) > 0 {
			if err := json.Unmarshal(data, &env); err != nil {
				// Skip malformed events
				c.logger.Debug("skipping malformed stream event", "event", event, "err", err)
				continue
			}
		}
		if event == "" || event == "message" {
			event = env.Type
		}

		switch event {
		case "start":
			cl.start(StartData{SessionID: env.SessionID})
		case "", "chunk", "delta":
			if env.Content != "" {
				cl.chunk(ChunkData{Content: env.Content})
			}
		case "end", "done":
			return nil
		case "error":
			msg := env.Error
			if msg == "" {
				msg = env.Message
			}
			if msg == "" {
				msg = "backend reported an error"
			}
			return &ClientError{Type: ErrTypeServer, Message: msg}
		default:
			c.logger.Debug("ignoring stream event", "event", event)
		}
	}
}

// extractErrorMessage pulls a human-readable message from an error body.
func extractErrorMessage(body []byte) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil {
		if env.Error != "" {
			return env.Error
		}
		if env.Message != "" {
			return env.Message
		}
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

// String describes the client for logs.
func (c *Client) String() string {
	return fmt.Sprintf("transport.Client{base=%s}", c.config.BaseURL)
}
