// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"regexp"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// mentionTrigger matches an @ followed by a run of non-space characters
// that ends at the cursor.
var mentionTrigger = regexp.MustCompile(`@(\S*)$`)

// trigger is an @ token found before the cursor.
type trigger struct {
	start  int    // rune offset of the @
	filter string // raw text after the @
}

// findTrigger scans text before the rune offset cursor for a mention trigger.
func findTrigger(runes []rune, cursor int) (trigger, bool) {
	before := string(runes[:cursor])
	loc := mentionTrigger.FindStringSubmatchIndex(before)
	if loc == nil {
		return trigger{}, false
	}
	// loc[2] is the byte offset just past the @.
	at := len([]rune(before[:loc[2]])) - 1
	return trigger{start: at, filter: before[loc[2]:loc[3]]}, true
}

// clampCursor keeps a rune offset within text.
func clampCursor(cursor, n int) int {
	if cursor < 0 || cursor > n {
		return n
	}
	return cursor
}

// newFolder returns a Unicode-aware lowercaser. Casers are not safe for
// concurrent use.
func newFolder() cases.Caser {
	return cases.Lower(language.Und)
}
