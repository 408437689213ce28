// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns assistant replies into terminal output.
package render

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// Markdown renders finished replies with glamour. Renderers are cached per
// wrap width. Safe for concurrent use.
type Markdown struct {
	mu        sync.Mutex
	style     string
	renderers map[int]*glamour.TermRenderer
	failed    map[int]bool
}

// NewMarkdown creates a renderer. style is a glamour standard style name
// ("dark", "light", ...); empty picks one from the terminal background.
func NewMarkdown(style string) *Markdown {
	return &Markdown{
		style:     style,
		renderers: make(map[int]*glamour.TermRenderer),
		failed:    make(map[int]bool),
	}
}

// Render renders content wrapped at width. Returns the original content if
// rendering fails.
func (m *Markdown) Render(content string, width int) string {
	if width < 20 {
		width = 20
	}
	r := m.renderer(width)
	if r == nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}

func (m *Markdown) renderer(width int) *glamour.TermRenderer {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r, ok := m.renderers[width]; ok {
		return r
	}
	if m.failed[width] {
		return nil
	}

	styleOpt := glamour.WithAutoStyle()
	if m.style != "" {
		styleOpt = glamour.WithStandardStyle(m.style)
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		m.failed[width] = true
		return nil
	}
	m.renderers[width] = r
	return r
}
