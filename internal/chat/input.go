// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"github.com/jeranaias/opsdesk/internal/model"
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// Catalog resolves table names for mentions.
type Catalog interface {
	// Lookup finds a table by name, case-insensitively.
	Lookup(name string) (model.TableReference, bool)
	// Match returns up to limit tables whose name matches filter.
	Match(filter string, limit int) []model.TableReference
}

// Submitter receives accepted user messages.
type Submitter interface {
	Start(user model.Message) *Turn
}

// InputHooks lets the coordinator drive an input widget it does not own.
// Either field may be nil.
type InputHooks struct {
	SetText func(text string)
	Focus   func()
}

// Key is a key the coordinator reacts to.
type Key int

const (
	KeyOther Key = iota
	KeyEnter
	KeyEscape
)

// KeyEvent is a key press from the view.
type KeyEvent struct {
	Key   Key
	Shift bool
}

// =============================================================================
// INPUT COORDINATOR
// =============================================================================

// InputCoordinator owns the compose box: raw text, mention mode and the
// pending mentions. It is safe for concurrent use. Hooks and the submitter
// are called without its lock held.
type InputCoordinator struct {
	mu sync.Mutex

	catalog   Catalog
	submitter Submitter
	hooks     InputHooks
	fold      cases.Caser

	text        string
	cursor      int
	mentionMode bool
	filter      string
	pending     []model.TableReference
	submitting  bool
}

// NewInputCoordinator creates a coordinator. catalog may be nil, in which case
// no mention ever resolves.
func NewInputCoordinator(catalog Catalog, submitter Submitter, hooks InputHooks) *InputCoordinator {
	return &InputCoordinator{
		catalog:   catalog,
		submitter: submitter,
		hooks:     hooks,
		fold:      newFolder(),
	}
}

// SetHooks replaces the view hooks.
func (ic *InputCoordinator) SetHooks(hooks InputHooks) {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	ic.hooks = hooks
}

// OnInputChange records the raw text and the rune offset of the cursor, and
// updates mention mode. Returns true when mention mode was entered or left.
func (ic *InputCoordinator) OnInputChange(raw string, cursor int) bool {
	runes := []rune(raw)
	cursor = clampCursor(cursor, len(runes))
	trig, found := findTrigger(runes, cursor)

	ic.mu.Lock()
	defer ic.mu.Unlock()
	ic.text = raw
	ic.cursor = cursor

	if found {
		was := ic.mentionMode
		ic.mentionMode = true
		ic.filter = ic.fold.String(trig.filter)
		return !was
	}
	if ic.mentionMode {
		ic.mentionMode = false
		ic.filter = ""
		return true
	}
	return false
}

// OnMentionSelect adds the named table to the pending mentions, strips the
// @ token being typed and returns focus to the input. Mention mode is always
// left. Returns whether a mention was added.
func (ic *InputCoordinator) OnMentionSelect(tableName string) bool {
	var ref model.TableReference
	ok := false
	if ic.catalog != nil {
		ref, ok = ic.catalog.Lookup(tableName)
	}

	ic.mu.Lock()
	added := false
	rewritten := false
	if ok {
		if !model.ContainsTable(ic.pending, ref.ID) {
			ic.pending = append(ic.pending, ref)
			added = true
		}
		rewritten = ic.stripTriggerLocked()
	}
	ic.mentionMode = false
	ic.filter = ""
	text := ic.text
	hooks := ic.hooks
	ic.mu.Unlock()

	if rewritten && hooks.SetText != nil {
		hooks.SetText(text)
	}
	if hooks.Focus != nil {
		hooks.Focus()
	}
	return added
}

// stripTriggerLocked removes the @ token before the cursor from the text.
func (ic *InputCoordinator) stripTriggerLocked() bool {
	runes := []rune(ic.text)
	cursor := clampCursor(ic.cursor, len(runes))
	trig, found := findTrigger(runes, cursor)
	if !found {
		return false
	}
	ic.text = string(runes[:trig.start]) + string(runes[cursor:])
	ic.cursor = trig.start
	return true
}

// OnMentionRemove drops a pending mention by table id. No-op if absent.
func (ic *InputCoordinator) OnMentionRemove(tableID string) {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	for i, r := range ic.pending {
		if r.ID == tableID {
			ic.pending = append(ic.pending[:i:i], ic.pending[i+1:]...)
			return
		}
	}
}

// Submit sends the composed message. It is rejected when there is neither
// text nor a pending mention, or while a previous submission is still being
// handed to the submitter. Once Start has returned, a new submission is
// accepted and interrupts the reply still streaming. Returns whether it was
// accepted.
func (ic *InputCoordinator) Submit() bool {
	ic.mu.Lock()
	trimmed := strings.TrimSpace(ic.text)
	if trimmed == "" && len(ic.pending) == 0 {
		ic.mu.Unlock()
		return false
	}
	if ic.submitting {
		ic.mu.Unlock()
		return false
	}

	msg := model.NewUserMessage(trimmed, ic.pending)
	ic.text = ""
	ic.cursor = 0
	ic.pending = nil
	ic.mentionMode = false
	ic.filter = ""
	ic.submitting = true
	hooks := ic.hooks
	submitter := ic.submitter
	ic.mu.Unlock()

	if hooks.SetText != nil {
		hooks.SetText("")
	}
	if submitter != nil {
		submitter.Start(msg)
	}

	ic.mu.Lock()
	ic.submitting = false
	ic.mu.Unlock()
	return true
}

// HandleKey applies the keyboard contract. Returns true when the key was
// consumed and the view should not process it further.
func (ic *InputCoordinator) HandleKey(ev KeyEvent) bool {
	switch ev.Key {
	case KeyEnter:
		if ev.Shift {
			return false
		}
		ic.mu.Lock()
		inMention := ic.mentionMode
		ic.mu.Unlock()
		if !inMention {
			ic.Submit()
		}
		return true
	case KeyEscape:
		ic.mu.Lock()
		defer ic.mu.Unlock()
		if !ic.mentionMode {
			return false
		}
		ic.mentionMode = false
		ic.filter = ""
		return true
	default:
		return false
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// MentionMode returns whether mention mode is active and its filter.
func (ic *InputCoordinator) MentionMode() (bool, string) {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	return ic.mentionMode, ic.filter
}

// PendingMentions returns a copy of the pending mentions in insertion order.
func (ic *InputCoordinator) PendingMentions() []model.TableReference {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	return model.CloneTables(ic.pending)
}

// Text returns the raw input text.
func (ic *InputCoordinator) Text() string {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	return ic.text
}

// Cursor returns the rune offset of the cursor.
func (ic *InputCoordinator) Cursor() int {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	return ic.cursor
}

// Suggestions returns catalog matches for the current filter, or nil outside
// mention mode.
func (ic *InputCoordinator) Suggestions(limit int) []model.TableReference {
	ic.mu.Lock()
	active, filter := ic.mentionMode, ic.filter
	ic.mu.Unlock()
	if !active || ic.catalog == nil {
		return nil
	}
	return ic.catalog.Match(filter, limit)
}
