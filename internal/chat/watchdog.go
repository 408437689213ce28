// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"
)

// watchdog interrupts the active turn once the transport has been silent
// for longer than the idle timeout.
type watchdog struct {
	timeout time.Duration
	done    chan struct{}
}

func startWatchdog(ctx context.Context, c *Controller, timeout time.Duration) *watchdog {
	w := &watchdog{timeout: timeout, done: make(chan struct{})}
	go w.run(ctx, c)
	return w
}

// checkInterval polls a few times per timeout, capped at one second.
func (w *watchdog) checkInterval() time.Duration {
	interval := w.timeout / 4
	if interval > time.Second {
		interval = time.Second
	}
	if interval < 5*time.Millisecond {
		interval = 5 * time.Millisecond
	}
	return interval
}

func (w *watchdog) run(ctx context.Context, c *Controller) {
	defer close(w.done)
	ticker := time.NewTicker(w.checkInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.expireIdle(w.timeout)
		}
	}
}

func (w *watchdog) wait() {
	<-w.done
}

// expireIdle interrupts the active turn if it has been idle for timeout.
func (c *Controller) expireIdle(timeout time.Duration) {
	c.mu.Lock()
	t := c.active
	if t == nil || c.now().Sub(t.lastActivity) < timeout {
		c.mu.Unlock()
		return
	}
	idle := c.now().Sub(t.lastActivity)
	c.interruptLocked(t, "idle timeout")
	c.mu.Unlock()

	c.logger.Warn("stream idle, interrupted", "message_id", t.id, "idle", idle.Round(time.Millisecond))
	c.notify()
}
