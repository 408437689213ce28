// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkdown_RendersAndCaches(t *testing.T) {
	md := NewMarkdown("notty")

	out := md.Render("# Totals\n\nOrders are **up**.", 60)
	assert.Contains(t, out, "Totals")
	assert.Contains(t, out, "Orders are")

	md.Render("again", 60)
	assert.Len(t, md.renderers, 1)
}

func TestHighlightFences_LeavesProseAlone(t *testing.T) {
	text := "No code here, just prose."
	assert.Equal(t, text, HighlightFences(text))
}

func TestHighlightFences_KeepsFenceLines(t *testing.T) {
	text := "Try this:\n```sql\nSELECT 1;\n```\nDone."
	out := HighlightFences(text)

	assert.True(t, strings.HasPrefix(out, "Try this:\n```sql\n"))
	assert.True(t, strings.HasSuffix(out, "\n```\nDone."))
	assert.Contains(t, out, "SELECT")
}

func TestHighlightFences_UnclosedFence(t *testing.T) {
	out := HighlightFences("```\nSELECT count(*) FROM orders")
	assert.Contains(t, out, "orders")
	assert.True(t, strings.HasPrefix(out, "```\n"))
}

func TestHighlight_Empty(t *testing.T) {
	assert.Equal(t, "", Highlight("", "go"))
}
