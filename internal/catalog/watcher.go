// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 200 * time.Millisecond

// =============================================================================
// FSNOTIFY WATCHER
// =============================================================================

// Watcher reloads a Catalog whenever its file changes. A file that fails to
// parse is logged and the previous contents are kept.
type Watcher struct {
	cat      *Catalog
	path     string
	debounce time.Duration
	logger   *slog.Logger

	watcher *fsnotify.Watcher
	wg      sync.WaitGroup

	// OnReload, when set, runs after every reload attempt.
	OnReload func(err error)
}

// NewWatcher creates a watcher for the catalog file at path.
func NewWatcher(cat *Catalog, path string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve catalog path: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	return &Watcher{
		cat:      cat,
		path:     abs,
		debounce: debounce,
		logger:   logger.With("component", "catalog", "path", abs),
		watcher:  fw,
	}, nil
}

// Watch starts watching until ctx is done. The parent directory is watched
// so editors that replace the file by rename are picked up.
func (w *Watcher) Watch(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch catalog directory: %w", err)
	}
	w.wg.Add(1)
	go w.processEvents(ctx)
	return nil
}

// Close stops watching and waits for the event loop to exit.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("catalog watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload() {
	tables, err := LoadFile(w.path)
	if err != nil {
		w.logger.Warn("catalog reload failed, keeping previous tables", "error", err)
	} else {
		w.cat.Replace(tables)
		w.logger.Info("catalog reloaded", "tables", len(tables))
	}
	if w.OnReload != nil {
		w.OnReload(err)
	}
}
