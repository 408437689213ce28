// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"errors"
	"fmt"
	"net/http"
)

// =============================================================================
// CLIENT ERRORS
// =============================================================================

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeBadRequest
	ErrTypeAuth
	ErrTypeRateLimited
	ErrTypeServer
	ErrTypeProtocol
)

// String returns a short name for the error type.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeConnection:
		return "connection"
	case ErrTypeBadRequest:
		return "bad_request"
	case ErrTypeAuth:
		return "auth"
	case ErrTypeRateLimited:
		return "rate_limited"
	case ErrTypeServer:
		return "server"
	case ErrTypeProtocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// ClientError represents a failed streaming request.
type ClientError struct {
	Type    ErrorType
	Status  int // HTTP status, 0 when the request never got a response
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	msg := e.Message
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Sentinel errors for easy checking.
var (
	ErrNotConfigured = errors.New("backend URL not configured")
	ErrStreamAborted = &ClientError{Type: ErrTypeProtocol, Message: "stream ended before completion"}
	ErrEventTooLarge = &ClientError{Type: ErrTypeProtocol, Message: "stream event exceeds size limit"}
)

// errorFromStatus maps a non-2xx response to a ClientError.
func errorFromStatus(status int, body []byte) *ClientError {
	msg := http.StatusText(status)
	if detail := extractErrorMessage(body); detail != "" {
		msg = detail
	}
	e := &ClientError{Status: status, Message: msg}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Type = ErrTypeAuth
	case status == http.StatusTooManyRequests:
		e.Type = ErrTypeRateLimited
	case status >= 500:
		e.Type = ErrTypeServer
	case status >= 400:
		e.Type = ErrTypeBadRequest
	default:
		e.Type = ErrTypeProtocol
	}
	return e
}

func typeOf(err error) ErrorType {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type
	}
	return ErrTypeUnknown
}

// IsAuth checks if the backend rejected the credentials.
func IsAuth(err error) bool {
	return typeOf(err) == ErrTypeAuth
}

// IsRateLimited checks if the request was throttled, locally or by the backend.
func IsRateLimited(err error) bool {
	return typeOf(err) == ErrTypeRateLimited
}

// IsServer checks if the backend failed with a 5xx or an in-stream error event.
func IsServer(err error) bool {
	return typeOf(err) == ErrTypeServer
}

// IsAborted checks if the stream closed without an end event.
func IsAborted(err error) bool {
	return errors.Is(err, ErrStreamAborted)
}
