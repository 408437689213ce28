// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat coordinates the compose box and the streamed replies of the
// assistant widget.
//
// # Key Types
//
//   - InputCoordinator: raw text, @-mention mode, pending mentions, submit
//   - Controller: one streaming turn at a time, interruption, cancellation
//   - Turn: handle for a single request/response cycle
//   - Sink: optional view shortcut for appending streamed text
//
// # Turn Lifecycle
//
// Each turn moves from streaming to exactly one of finalized, errored or
// interrupted:
//
//	ctrl := chat.NewController(store, client, chat.Options{})
//	turn := ctrl.Start(model.NewUserMessage("Hello", nil))
//	<-turn.Done()
//	fmt.Println(turn.Status())
//
// Starting a turn while another streams interrupts the older one first.
// Stop is idempotent. Callbacks from a turn that is no longer active never
// touch the message list.
package chat
