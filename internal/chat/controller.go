// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/jeranaias/opsdesk/internal/model"
	"github.com/jeranaias/opsdesk/internal/session"
	"github.com/jeranaias/opsdesk/internal/transport"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// ApologyMessage replaces the content of a reply whose stream failed.
	ApologyMessage = "Sorry, I encountered an error. Please try again."

	// InterruptedMarker is appended to a reply that was stopped early.
	InterruptedMarker = "*Message interrupted*"

	// DefaultEndpoint is the chat streaming endpoint.
	DefaultEndpoint = "/api/assistant/chat/stream"

	// DefaultMethod is the HTTP method used to open a stream.
	DefaultMethod = "POST"

	// DefaultSyncInterval throttles store syncs while a sink takes chunks.
	DefaultSyncInterval = 250 * time.Millisecond
)

// Options configures a Controller.
type Options struct {
	Endpoint string
	Method   string

	// PageContext is sent verbatim with every request. Nil sends null.
	PageContext json.RawMessage

	// ContextSettings is an opaque string forwarded to the backend.
	ContextSettings string

	// IdleTimeout interrupts a turn that hears nothing from the transport
	// for this long. Zero disables the watchdog.
	IdleTimeout time.Duration

	// SyncInterval bounds how stale the store may get while a sink accepts
	// chunks. Zero uses DefaultSyncInterval.
	SyncInterval time.Duration

	Logger *slog.Logger
}

// =============================================================================
// STREAM CONTROLLER
// =============================================================================

// Controller owns the lifecycle of streamed assistant replies. At most one
// turn streams at a time; starting a new one interrupts the previous one.
//
// Transport callbacks arrive on the transport's goroutine. Every state change
// is serialized through the controller's mutex and callbacks from a turn that
// is no longer active are dropped.
type Controller struct {
	mu sync.Mutex

	store    *session.Store
	streamer transport.Streamer
	opts     Options
	logger   *slog.Logger

	sink    Sink
	buffer  *sideBuffer
	cancels *cancelManager
	active  *Turn
	closed  bool

	changes chan struct{}

	ctx      context.Context
	stop     context.CancelFunc
	watchdog *watchdog

	now func() time.Time
}

// NewController creates a controller writing into store and streaming
// through streamer.
func NewController(store *session.Store, streamer transport.Streamer, opts Options) *Controller {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.Method == "" {
		opts.Method = DefaultMethod
	}
	if opts.SyncInterval <= 0 {
		opts.SyncInterval = DefaultSyncInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, stop := context.WithCancel(context.Background())
	c := &Controller{
		store:    store,
		streamer: streamer,
		opts:     opts,
		logger:   logger.With("component", "controller"),
		buffer:   newSideBuffer(),
		cancels:  newCancelManager(),
		changes:  make(chan struct{}, 1),
		ctx:      ctx,
		stop:     stop,
		now:      time.Now,
	}
	if opts.IdleTimeout > 0 {
		c.watchdog = startWatchdog(ctx, c, opts.IdleTimeout)
	}
	return c
}

// Store returns the session store the controller writes into.
func (c *Controller) Store() *session.Store {
	return c.store
}

// SetSink installs the view's text sink. Nil removes it.
func (c *Controller) SetSink(s Sink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sink = s
}

// Changes delivers a coalesced signal after every state change.
func (c *Controller) Changes() <-chan struct{} {
	return c.changes
}

// Sending reports whether the active turn has heard nothing from the backend
// yet. Views use it to tell connecting from streaming.
func (c *Controller) Sending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active != nil && c.active.sending
}

// Active returns the assistant message id of the streaming turn.
func (c *Controller) Active() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return "", false
	}
	return c.active.id, true
}

// Partial returns the text accumulated so far for a streaming message.
func (c *Controller) Partial(id string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buffer.text(id)
}

// =============================================================================
// TURN LIFECYCLE
// =============================================================================

// Start begins a turn for user. An active turn is interrupted before the new
// messages are appended. After Close, or when user was already started, Start
// returns a turn that is already interrupted and touches nothing.
func (c *Controller) Start(user model.Message) *Turn {
	c.mu.Lock()
	t := newTurn(user.ID, c.now())
	if c.closed {
		c.mu.Unlock()
		return t.inert()
	}
	if _, seen := c.store.Get(user.ID); seen {
		c.mu.Unlock()
		c.logger.Warn("duplicate user message ignored", "message_id", user.ID)
		return t.inert()
	}
	if c.active != nil {
		c.interruptLocked(c.active, "superseded")
	}

	user.Status = model.StatusSent
	c.store.Append(user)
	c.store.Append(model.NewPlaceholder(user.ID))
	c.buffer.begin(t.id)
	c.active = t
	req := c.requestFor(user)
	c.mu.Unlock()
	c.notify()

	c.logger.Debug("stream starting", "message_id", t.id, "mentions", len(user.Mentions))

	// The streamer may deliver callbacks before Stream returns, so it is
	// called without the lock held.
	h := c.streamer.Stream(c.ctx, req, c.handlersFor(t))

	c.mu.Lock()
	if t.terminal() {
		c.mu.Unlock()
		if h != nil {
			h.Cancel()
		}
		return t
	}
	c.cancels.set(t.id, h)
	c.mu.Unlock()
	return t
}

// Stop interrupts the active turn. Safe to call repeatedly or when idle.
func (c *Controller) Stop() {
	c.mu.Lock()
	t := c.active
	if t != nil {
		c.interruptLocked(t, "stopped")
	}
	c.mu.Unlock()
	if t != nil {
		c.notify()
	}
}

// Clear interrupts any active turn and empties the conversation, including
// the persisted session id.
func (c *Controller) Clear(ctx context.Context) error {
	c.mu.Lock()
	if c.active != nil {
		c.interruptLocked(c.active, "cleared")
	}
	err := c.store.Clear(ctx)
	c.mu.Unlock()
	c.notify()
	return err
}

// Close stops the active turn and the watchdog. Later callbacks are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.active != nil {
		c.interruptLocked(c.active, "closed")
	}
	c.mu.Unlock()

	c.stop()
	if c.watchdog != nil {
		c.watchdog.wait()
	}
	c.notify()
}

func (c *Controller) requestFor(user model.Message) transport.Request {
	return transport.Request{
		Endpoint: c.opts.Endpoint,
		Method:   c.opts.Method,
		Data: transport.NewPayload(
			user.Content,
			c.store.SessionID(),
			c.opts.PageContext,
			user.MentionNames(),
			c.opts.ContextSettings,
		),
	}
}

// =============================================================================
// TRANSPORT CALLBACKS
// =============================================================================

func (c *Controller) handlersFor(t *Turn) transport.Handlers {
	return transport.Handlers{
		OnStart: func(d transport.StartData) { c.onStart(t, d) },
		OnChunk: func(d transport.ChunkData) { c.onChunk(t, d) },
		OnEnd:   func() { c.onEnd(t) },
		OnError: func(err error) { c.onError(t, err) },
	}
}

// liveLocked reports whether callbacks for t may still change state.
func (c *Controller) liveLocked(t *Turn) bool {
	return c.active == t && !t.terminal()
}

func (c *Controller) onStart(t *Turn, d transport.StartData) {
	c.mu.Lock()
	if !c.liveLocked(t) {
		c.mu.Unlock()
		return
	}
	t.sending = false
	t.lastActivity = c.now()

	// Adopted under the lock so a concurrent Clear cannot be overwritten.
	if d.SessionID != "" {
		adopted, err := c.store.AdoptSessionID(c.ctx, d.SessionID)
		if err != nil {
			c.logger.Error("failed to persist session id", "session_id", d.SessionID, "error", err)
		} else if adopted {
			c.logger.Debug("session adopted", "session_id", d.SessionID)
		}
	}
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) onChunk(t *Turn, d transport.ChunkData) {
	c.mu.Lock()
	if !c.liveLocked(t) {
		c.mu.Unlock()
		return
	}
	now := c.now()
	t.lastActivity = now
	t.sending = false
	if d.Content == "" {
		c.mu.Unlock()
		return
	}
	c.buffer.write(t.id, d.Content)

	delivered := c.sink != nil && c.sink.Append(t.id, d.Content)
	if !delivered || now.Sub(t.lastSync) >= c.opts.SyncInterval {
		text := c.buffer.text(t.id)
		c.store.UpdateByID(t.id, func(m *model.Message) { m.Content = text })
		t.lastSync = now
	}
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) onEnd(t *Turn) {
	c.mu.Lock()
	if !c.liveLocked(t) {
		c.mu.Unlock()
		return
	}
	chunks := c.buffer.count(t.id)
	c.finishLocked(t, model.StatusFinalized, c.buffer.text(t.id))
	c.mu.Unlock()
	c.logger.Debug("stream finalized", "message_id", t.id, "chunks", chunks)
	c.notify()
}

func (c *Controller) onError(t *Turn, err error) {
	c.mu.Lock()
	if !c.liveLocked(t) {
		c.mu.Unlock()
		return
	}
	c.finishLocked(t, model.StatusErrored, ApologyMessage)
	c.mu.Unlock()
	c.logger.Error("stream failed", "message_id", t.id, "error", err)
	c.notify()
}

// =============================================================================
// TERMINAL TRANSITIONS
// =============================================================================

// interruptLocked cancels t's request and marks its reply interrupted.
// No-op once t is terminal.
func (c *Controller) interruptLocked(t *Turn, reason string) {
	if t.terminal() {
		return
	}
	c.cancels.cancel(t.id)
	c.finishLocked(t, model.StatusInterrupted, interruptedContent(c.buffer.text(t.id)))
	c.logger.Debug("stream interrupted", "message_id", t.id, "reason", reason)
}

// finishLocked moves t to a terminal status and releases everything it holds.
func (c *Controller) finishLocked(t *Turn, status model.Status, content string) {
	c.store.UpdateByID(t.id, func(m *model.Message) {
		m.Content = content
		m.IsStreaming = false
		m.Status = status
	})
	c.buffer.drop(t.id)
	if c.sink != nil {
		c.sink.Finish(t.id)
	}

	t.status = status
	t.sending = false
	close(t.done)

	if c.active == t {
		c.active = nil
	}
	c.cancels.clear(t.id)
}

// interruptedContent appends the interruption marker to partial text.
func interruptedContent(partial string) string {
	if partial == "" {
		return InterruptedMarker
	}
	return partial + "\n\n" + InterruptedMarker
}

// notify signals Changes without blocking.
func (c *Controller) notify() {
	select {
	case c.changes <- struct{}{}:
	default:
	}
}
