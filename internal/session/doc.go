// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the conversation state of the assistant widget.
//
// Store owns the ordered message list, the backend session id and the widget
// open flag for the lifetime of a widget mount. The two persisted values are
// read at mount with Load and written through immediately on change.
//
// # Usage
//
//	st := session.NewStore(kv)
//	if err := st.Load(ctx); err != nil {
//	    return err
//	}
//	st.Append(model.NewUserMessage("Hello", nil))
//	st.UpdateByID(id, func(m *model.Message) { m.Content += "chunk" })
//
// Clear forgets both the messages and the session id in one step.
package session
