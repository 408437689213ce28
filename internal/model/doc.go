// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the assistant conversation.
//
// This package defines the domain types shared by the controller, the session
// store and both presentations.
//
// # Key Types
//
//   - Message: one row of the conversation with sender, content, timestamp,
//     streaming flag and mention snapshot
//   - TableReference: a catalog entry the user can @-mention
//   - Sender: user or assistant
//   - Status: sent, streaming, finalized, errored, interrupted
//
// # Id Pairing
//
// Every assistant reply is created as a placeholder whose id is derived from
// the user message that triggered it:
//
//	user := model.NewUserMessage("Hello", nil)
//	reply := model.NewPlaceholder(user.ID)
//	// reply.ID == model.AssistantIDFor(user.ID)
package model
