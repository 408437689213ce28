// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

// Sink is the view's append-only text sink for the streaming message. It is
// a rendering shortcut only; the controller's buffer stays authoritative.
//
// Sink methods are called with the controller locked. They must not block
// and must not call back into the controller.
type Sink interface {
	// Append writes text for message id. It returns false when the view has
	// nowhere to write it, in which case the controller syncs the message
	// list instead.
	Append(id, text string) bool

	// Finish tells the view that message id reached a terminal state and its
	// final content is in the store.
	Finish(id string)
}

// SinkFuncs adapts plain functions to Sink. Nil fields behave as a view with
// no target (Append returns false).
type SinkFuncs struct {
	AppendFunc func(id, text string) bool
	FinishFunc func(id string)
}

// Append implements Sink.
func (s SinkFuncs) Append(id, text string) bool {
	if s.AppendFunc == nil {
		return false
	}
	return s.AppendFunc(id, text)
}

// Finish implements Sink.
func (s SinkFuncs) Finish(id string) {
	if s.FinishFunc != nil {
		s.FinishFunc(id)
	}
}
