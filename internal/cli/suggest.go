// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// suggest.go - "Did you mean" suggestions for mistyped names.
package cli

import (
	"strings"

	"github.com/jeranaias/opsdesk/internal/config"
)

// validCommands lists the commands and aliases ParseArgs accepts.
var validCommands = []string{
	"tui",
	"ask",
	"chat",
	"session",
	"sessions",
	"serve-mock",
	"mock",
	"config",
	"doctor",
	"version",
	"help",
}

// slashCommands lists the chat commands.
var slashCommands = []string{
	"/help",
	"/clear",
	"/session",
	"/tables",
	"/quit",
	"/exit",
}

// SuggestCommand returns the command closest to input, or "" when nothing
// is close enough.
func SuggestCommand(input string) string {
	return closest(strings.ToLower(input), validCommands)
}

// SuggestSlashCommand does the same for chat /commands.
func SuggestSlashCommand(input string) string {
	return closest(strings.ToLower(input), slashCommands)
}

// SuggestConfigKey returns the config key closest to key.
func SuggestConfigKey(key string) string {
	return closest(strings.ToLower(key), config.GetAllKeys())
}

// closest picks the candidate with the smallest edit distance within a
// threshold that grows with the input length: 1 edit up to 3 characters,
// 2 up to 8, 3 beyond. Exact matches and inputs shorter than 2 characters
// get no suggestion.
func closest(input string, candidates []string) string {
	if len(input) < 2 {
		return ""
	}

	maxDistance := 1
	if len(input) >= 4 {
		maxDistance = 2
	}
	if len(input) > 8 {
		maxDistance = 3
	}

	bestMatch := ""
	bestDistance := -1
	for _, c := range candidates {
		d := levenshteinDistance(input, c)
		if d == 0 {
			return ""
		}
		if d <= maxDistance && (bestDistance == -1 || d < bestDistance) {
			bestDistance = d
			bestMatch = c
		}
	}
	return bestMatch
}

// levenshteinDistance is the number of single-byte insertions, deletions
// or substitutions turning s1 into s2.
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	// Two rows instead of the full matrix.
	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 0
			if s1[i-1] != s2[j-1] {
				cost = 1
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(s2)]
}
