// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "strings"

// =============================================================================
// SIDE BUFFER
// =============================================================================

// sideBuffer accumulates streamed text per message id. It is the
// authoritative text of a streaming message; the message list is only
// synced from it. Guarded by the controller's lock.
type sideBuffer struct {
	texts  map[string]*strings.Builder
	chunks map[string]int
}

func newSideBuffer() *sideBuffer {
	return &sideBuffer{
		texts:  make(map[string]*strings.Builder),
		chunks: make(map[string]int),
	}
}

// begin creates an empty entry for id.
func (b *sideBuffer) begin(id string) {
	b.texts[id] = &strings.Builder{}
	b.chunks[id] = 0
}

// write appends text for id. Writes for unknown ids are dropped.
func (b *sideBuffer) write(id, text string) bool {
	sb, ok := b.texts[id]
	if !ok {
		return false
	}
	sb.WriteString(text)
	b.chunks[id]++
	return true
}

// text returns everything written for id.
func (b *sideBuffer) text(id string) string {
	if sb, ok := b.texts[id]; ok {
		return sb.String()
	}
	return ""
}

// count returns the number of chunks written for id.
func (b *sideBuffer) count(id string) int {
	return b.chunks[id]
}

// drop forgets id.
func (b *sideBuffer) drop(id string) {
	delete(b.texts, id)
	delete(b.chunks, id)
}

// len returns the number of live entries.
func (b *sideBuffer) len() int {
	return len(b.texts)
}
