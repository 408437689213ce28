// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mockapi

import (
	"fmt"
	"strings"
)

// Directives a message can carry to exercise client failure paths.
const (
	directiveFail = "/fail" // error event mid-stream
	directiveHang = "/hang" // stop sending without ending
	directiveDrop = "/drop" // close the connection without an end event
)

// script is the canned reply for one request.
type script struct {
	words     []string
	failAfter int
	hangAfter int
	dropAfter int
}

// buildScript derives the reply from the request. The reply is split after
// each space so concatenating the words reproduces it exactly.
func buildScript(req chatRequest) script {
	text := strings.TrimSpace(req.Message)

	var b strings.Builder
	if len(req.Mentions) > 0 {
		fmt.Fprintf(&b, "Looking at %s. ", strings.Join(req.Mentions, ", "))
	}
	if text == "" {
		b.WriteString("What would you like to know about them?")
	} else {
		fmt.Fprintf(&b, "You said: %s", text)
	}

	s := script{
		words:     strings.SplitAfter(b.String(), " "),
		failAfter: -1,
		hangAfter: -1,
		dropAfter: -1,
	}
	half := len(s.words) / 2
	switch {
	case strings.Contains(text, directiveFail):
		s.failAfter = half
	case strings.Contains(text, directiveHang):
		s.hangAfter = half
	case strings.Contains(text, directiveDrop):
		s.dropAfter = half
	}
	return s
}
