// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/opsdesk/internal/model"
	"github.com/jeranaias/opsdesk/internal/session"
	"github.com/jeranaias/opsdesk/internal/storage"
	"github.com/jeranaias/opsdesk/internal/transport"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// fakeCall is one request captured by fakeStreamer. Tests drive its handlers.
type fakeCall struct {
	req       transport.Request
	h         transport.Handlers
	cancelled atomic.Int32
}

func (f *fakeCall) Cancel() { f.cancelled.Add(1) }

func (f *fakeCall) cancels() int { return int(f.cancelled.Load()) }

// fakeStreamer records requests. script, when set, runs inside Stream.
type fakeStreamer struct {
	mu     sync.Mutex
	calls  []*fakeCall
	script func(*fakeCall)
}

func (s *fakeStreamer) Stream(_ context.Context, req transport.Request, h transport.Handlers) transport.Handle {
	call := &fakeCall{req: req, h: h}
	s.mu.Lock()
	s.calls = append(s.calls, call)
	script := s.script
	s.mu.Unlock()
	if script != nil {
		script(call)
	}
	return call
}

func (s *fakeStreamer) call(t *testing.T, i int) *fakeCall {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.Greater(t, len(s.calls), i, "stream %d was never opened", i)
	return s.calls[i]
}

func (s *fakeStreamer) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// recordingSink captures what the controller writes to the view.
type recordingSink struct {
	mu       sync.Mutex
	accept   bool
	appended map[string]string
	finished []string
}

func newRecordingSink(accept bool) *recordingSink {
	return &recordingSink{accept: accept, appended: make(map[string]string)}
}

func (r *recordingSink) Append(id, text string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.accept {
		return false
	}
	r.appended[id] += text
	return true
}

func (r *recordingSink) Finish(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = append(r.finished, id)
}

// stubCatalog is an in-memory Catalog.
type stubCatalog []model.TableReference

func (c stubCatalog) Lookup(name string) (model.TableReference, bool) {
	fold := newFolder()
	for _, r := range c {
		if fold.String(r.Name) == fold.String(name) {
			return r, true
		}
	}
	return model.TableReference{}, false
}

func (c stubCatalog) Match(filter string, limit int) []model.TableReference {
	var out []model.TableReference
	for _, r := range c {
		if len(out) == limit {
			break
		}
		if len(filter) <= len(r.Name) && r.Name[:len(filter)] == filter {
			out = append(out, r)
		}
	}
	return out
}

var testTables = stubCatalog{
	{ID: "t1", Name: "orders", Description: "Customer orders"},
	{ID: "t2", Name: "order_items"},
	{ID: "t3", Name: "customers"},
}

// newTestController wires a controller to a fake streamer and memory storage.
func newTestController(t *testing.T, opts Options) (*Controller, *fakeStreamer, *storage.Memory) {
	t.Helper()
	kv := storage.NewMemory()
	store := session.NewStore(kv)
	fs := &fakeStreamer{}
	ctrl := NewController(store, fs, opts)
	t.Cleanup(ctrl.Close)
	return ctrl, fs, kv
}

func waitDone(t *testing.T, turn *Turn) {
	t.Helper()
	select {
	case <-turn.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("turn %s never finished", turn.ID())
	}
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
