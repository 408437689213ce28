// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport streams assistant replies from the backend over HTTP and
// Server-Sent Events.
//
// Stream returns immediately with a Handle; the request runs on its own
// goroutine and reports through Handlers: OnStart once when the backend
// accepts the exchange (possibly carrying a session id), OnChunk for every
// text fragment in arrival order, then exactly one of OnEnd or OnError.
// Cancel stops delivery; nothing terminal is reported for a cancelled call.
//
// # Wire Format
//
// The request is a JSON Payload. The response is an event stream:
//
//	event: start
//	data: {"sessionId":"S1"}
//
//	event: chunk
//	data: {"content":"Hi"}
//
//	event: end
//	data: {}
//
// Unnamed events may describe themselves with a "type" field, and a bare
// "data: [DONE]" also ends the stream. An "error" event or a non-2xx status
// becomes a *ClientError; a stream that closes without an end is reported as
// ErrStreamAborted. Nothing is retried.
package transport
