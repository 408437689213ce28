// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package widget

import (
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// STREAMING BUFFER
// =============================================================================

// StreamingBuffer batches chunks so the view repaints at a capped frame rate
// instead of once per chunk. Chunks are written from the transport goroutine
// and flushed from the Bubble Tea loop.
type StreamingBuffer struct {
	mu         sync.Mutex
	buffer     strings.Builder
	chunkCount int
	lastFlush  time.Time

	batchSize     int
	minFlushEvery time.Duration
}

const (
	defaultBatchSize = 15
	defaultMaxFPS    = 30
)

// NewStreamingBuffer creates a buffer that flushes after batchSize chunks or
// once per frame at maxFPS, whichever comes first. Out of range values fall
// back to 15 chunks and 30fps.
func NewStreamingBuffer(batchSize, maxFPS int) *StreamingBuffer {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &StreamingBuffer{
		batchSize:     batchSize,
		minFlushEvery: frameInterval(maxFPS),
		lastFlush:     time.Now(),
	}
}

// frameInterval converts a frame rate into a tick interval.
func frameInterval(maxFPS int) time.Duration {
	if maxFPS <= 0 || maxFPS > 60 {
		maxFPS = defaultMaxFPS
	}
	return time.Second / time.Duration(maxFPS)
}

// Write adds a chunk to the buffer.
func (sb *StreamingBuffer) Write(chunk string) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.buffer.WriteString(chunk)
	sb.chunkCount++
}

// Flush returns the accumulated text if a flush is due.
func (sb *StreamingBuffer) Flush() (string, bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	if sb.buffer.Len() == 0 {
		return "", false
	}
	if sb.chunkCount < sb.batchSize && time.Since(sb.lastFlush) < sb.minFlushEvery {
		return "", false
	}
	return sb.takeLocked(), true
}

// ForceFlush returns whatever is buffered regardless of thresholds.
func (sb *StreamingBuffer) ForceFlush() (string, bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	if sb.buffer.Len() == 0 {
		return "", false
	}
	return sb.takeLocked(), true
}

func (sb *StreamingBuffer) takeLocked() string {
	content := sb.buffer.String()
	sb.buffer.Reset()
	sb.chunkCount = 0
	sb.lastFlush = time.Now()
	return content
}

// Reset drops buffered text.
func (sb *StreamingBuffer) Reset() {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.buffer.Reset()
	sb.chunkCount = 0
	sb.lastFlush = time.Now()
}

// Pending returns the number of buffered bytes.
func (sb *StreamingBuffer) Pending() int {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.buffer.Len()
}

// =============================================================================
// LIVE REPLY SINK
// =============================================================================

// liveReply receives chunks for the streaming reply and exposes the part
// that has been flushed to the screen. It implements chat.Sink.
type liveReply struct {
	mu     sync.Mutex
	id     string
	shown  strings.Builder
	buffer *StreamingBuffer
}

func newLiveReply(buffer *StreamingBuffer) *liveReply {
	return &liveReply{buffer: buffer}
}

// Append takes a chunk for reply id. A new id starts a fresh reply.
func (l *liveReply) Append(id, text string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.id != id {
		l.id = id
		l.shown.Reset()
		l.buffer.Reset()
	}
	l.buffer.Write(text)
	return true
}

// Finish drops the live state once the controller has written the final
// content to the store.
func (l *liveReply) Finish(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.id != id {
		return
	}
	l.id = ""
	l.shown.Reset()
	l.buffer.Reset()
}

// flush moves due text to the visible part. Reports whether it grew.
func (l *liveReply) flush(force bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.id == "" {
		return false
	}
	var content string
	var ok bool
	if force {
		content, ok = l.buffer.ForceFlush()
	} else {
		content, ok = l.buffer.Flush()
	}
	if ok {
		l.shown.WriteString(content)
	}
	return ok
}

// text returns the visible text of reply id.
func (l *liveReply) text(id string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.id != id || id == "" {
		return "", false
	}
	return l.shown.String(), true
}

// pending reports whether buffered text is waiting for a frame.
func (l *liveReply) pending() bool {
	return l.buffer.Pending() > 0
}

// =============================================================================
// STREAM TICK
// =============================================================================

// streamTickCmd schedules the next repaint frame.
func streamTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return StreamTickMsg{Time: t}
	})
}
