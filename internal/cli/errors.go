// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types and exit codes for CLI commands.
//
// Commands always return errors; main displays them and picks the exit code.

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/jeranaias/opsdesk/internal/config"
	"github.com/jeranaias/opsdesk/internal/transport"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess       = 0
	ExitGeneralError  = 1
	ExitUsageError    = 2
	ExitConfigError   = 3
	ExitAuthError     = 4
	ExitNetworkError  = 5
	ExitNotFoundError = 7
	ExitInterrupted   = 130
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// UsageError reports a command line that cannot be executed.
type UsageError struct {
	Command string
	Reason  string
}

func (e *UsageError) Error() string {
	if e.Command == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Command, e.Reason)
}

// NotFoundError represents a resource not found error.
type NotFoundError struct {
	Resource string // e.g. "table"
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrReplyFailed is returned when the assistant reply ends in an error.
var ErrReplyFailed = errors.New("assistant reply failed")

// ErrReplyInterrupted is returned when a reply was stopped before it ended.
var ErrReplyInterrupted = errors.New("assistant reply interrupted")

// =============================================================================
// DISPLAY AND EXIT CODES
// =============================================================================

// DisplayError writes err to w in the CLI error style.
func DisplayError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("error:"), err.Error())
}

// GetExitCode determines the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return ExitUsageError
	}
	var notFoundErr *NotFoundError
	if errors.As(err, &notFoundErr) {
		return ExitNotFoundError
	}
	var validateErrs config.ValidateErrors
	if errors.As(err, &validateErrs) {
		return ExitConfigError
	}
	if errors.Is(err, ErrReplyInterrupted) {
		return ExitInterrupted
	}
	if transport.IsAuth(err) {
		return ExitAuthError
	}
	var clientErr *transport.ClientError
	if errors.As(err, &clientErr) {
		return ExitNetworkError
	}
	return ExitGeneralError
}
