// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// ID PAIRING TESTS
// =============================================================================

func TestAssistantIDFor_RoundTrip(t *testing.T) {
	user := NewUserMessage("Hello", nil)
	reply := NewPlaceholder(user.ID)

	assert.Equal(t, AssistantIDFor(user.ID), reply.ID)

	back, ok := UserIDFor(reply.ID)
	require.True(t, ok)
	assert.Equal(t, user.ID, back)
}

func TestUserIDFor_RejectsForeignIDs(t *testing.T) {
	_, ok := UserIDFor("msg_123")
	assert.False(t, ok)
}

func TestNewPlaceholder_StartsStreamingAndEmpty(t *testing.T) {
	p := NewPlaceholder("u1")
	assert.True(t, p.IsStreaming)
	assert.Equal(t, StatusStreaming, p.Status)
	assert.Equal(t, SenderAssistant, p.Sender)
	assert.Empty(t, p.Content)
}

// =============================================================================
// SNAPSHOT TESTS
// =============================================================================

func TestNewUserMessage_CopiesMentions(t *testing.T) {
	pending := []TableReference{{ID: "a", Name: "orders"}, {ID: "b", Name: "customers"}}
	msg := NewUserMessage("check", pending)

	pending[0] = TableReference{ID: "c", Name: "invoices"}
	pending = append(pending, TableReference{ID: "d", Name: "leads"})

	require.Len(t, msg.Mentions, 2)
	assert.Equal(t, "orders", msg.Mentions[0].Name)
	assert.Equal(t, []string{"orders", "customers"}, msg.MentionNames())
}

func TestMessageClone_IsDeep(t *testing.T) {
	msg := NewUserMessage("x", []TableReference{{ID: "a", Name: "orders"}})
	c := msg.Clone()
	c.Mentions[0].Name = "changed"
	assert.Equal(t, "orders", msg.Mentions[0].Name)
}

func TestNewUserMessage_NoMentionsStaysNil(t *testing.T) {
	msg := NewUserMessage("x", nil)
	assert.Nil(t, msg.Mentions)
	assert.Nil(t, msg.MentionNames())
}

// =============================================================================
// STATUS TESTS
// =============================================================================

func TestStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   Status
		terminal bool
	}{
		{StatusSent, false},
		{StatusStreaming, false},
		{StatusFinalized, true},
		{StatusErrored, true},
		{StatusInterrupted, true},
	}
	for _, tc := range tests {
		t.Run(tc.status.String(), func(t *testing.T) {
			assert.Equal(t, tc.terminal, tc.status.IsTerminal())
		})
	}
}

func TestMessagePreview(t *testing.T) {
	msg := Message{Content: "héllo wörld"}
	assert.Equal(t, "héllo wörld", msg.Preview(20))
	assert.Equal(t, "héllo...", msg.Preview(8))
}

func TestContainsTable(t *testing.T) {
	refs := []TableReference{{ID: "a"}, {ID: "b"}}
	assert.True(t, ContainsTable(refs, "b"))
	assert.False(t, ContainsTable(refs, "z"))
}
