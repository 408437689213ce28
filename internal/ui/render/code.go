// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
)

// =============================================================================
// CODE FENCES (Chroma-based)
// =============================================================================

// DefaultLanguage is assumed for unlabeled fences; replies about tables are
// mostly SQL.
const DefaultLanguage = "sql"

// HighlightFences highlights fenced code blocks in partial or plain text and
// leaves everything else untouched. An unclosed fence is highlighted up to
// the end, so it works on text that is still streaming.
func HighlightFences(text string) string {
	if !strings.Contains(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	var out []string
	var code []string
	var language string
	inFence := false

	flush := func() {
		out = append(out, Highlight(strings.Join(code, "\n"), language))
		code = nil
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			if inFence {
				flush()
				out = append(out, line)
				inFence = false
				continue
			}
			language = strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
			out = append(out, line)
			inFence = true
			continue
		}
		if inFence {
			code = append(code, line)
		} else {
			out = append(out, line)
		}
	}
	if inFence && len(code) > 0 {
		flush()
	}
	return strings.Join(out, "\n")
}

// Highlight applies terminal syntax highlighting to code. Returns the
// original code if highlighting fails.
func Highlight(code, language string) string {
	if code == "" {
		return code
	}
	if language == "" {
		language = DefaultLanguage
	}

	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
