// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package widget

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/opsdesk/internal/chat"
	"github.com/jeranaias/opsdesk/internal/model"
	"github.com/jeranaias/opsdesk/internal/ui/render"
	"github.com/jeranaias/opsdesk/internal/util"
)

// Display limits in terminal cells.
const (
	chipMaxWidth       = 24
	suggestionMaxWidth = 40
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the widget.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if !m.open {
		return m.renderLauncher()
	}

	sections := []string{m.renderHeader(), m.viewport.View()}
	sections = append(sections, m.renderComposer()...)
	sections = append(sections, m.renderStatusBar())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// chromeHeight measures everything around the viewport.
func (m Model) chromeHeight() int {
	h := lipgloss.Height(m.renderHeader()) + lipgloss.Height(m.renderStatusBar())
	for _, part := range m.renderComposer() {
		h += lipgloss.Height(part)
	}
	return h
}

func (m Model) renderLauncher() string {
	label := m.theme.Launcher.Render("◆ Assistant")
	hint := m.theme.HeaderMuted.Render("  " + m.keys.Toggle.Help().Key + " to open")
	return label + hint
}

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("◆ Assistant")

	sessionLabel := "new session"
	if id := m.store.SessionID(); id != "" {
		sessionLabel = "session " + util.ShortID(id, 8)
	}
	left := title + m.theme.HeaderMuted.Render("  "+sessionLabel)

	var right string
	switch {
	case m.ctrl.Sending():
		right = m.spinner.View() + " sending"
	case m.streaming():
		right = m.spinner.View() + " streaming"
	}

	inner := max(0, m.width-2)
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return m.theme.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

// =============================================================================
// MESSAGES
// =============================================================================

func (m Model) renderMessages(width int) string {
	messages := m.store.Messages()
	if len(messages) == 0 {
		return m.theme.EmptyState.Render("Ask a question about your data. Type @ to mention a table.")
	}

	contentWidth := max(20, width-4)
	var b strings.Builder
	for i, msg := range messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if msg.Sender == model.SenderUser {
			b.WriteString(m.renderUserMessage(msg, contentWidth))
		} else {
			b.WriteString(m.renderAssistantMessage(msg, contentWidth))
		}
	}
	return b.String()
}

func (m Model) renderUserMessage(msg model.Message, width int) string {
	header := m.theme.UserLabel.Render(msg.Sender.DisplayName()) + " " +
		m.theme.Timestamp.Render(msg.Timestamp.Format("15:04"))

	var body []string
	if len(msg.Mentions) > 0 {
		tags := make([]string, len(msg.Mentions))
		for i, t := range msg.Mentions {
			tags[i] = m.theme.MentionTag.Render("@" + t.Name)
		}
		body = append(body, strings.Join(tags, " "))
	}
	if msg.Content != "" {
		body = append(body, lipgloss.NewStyle().Width(width).Render(msg.Content))
	}
	return header + "\n" + m.theme.UserBubble.Render(strings.Join(body, "\n"))
}

func (m Model) renderAssistantMessage(msg model.Message, width int) string {
	header := m.theme.AssistantLabel.Render(msg.Sender.DisplayName()) + " " +
		m.theme.Timestamp.Render(msg.Timestamp.Format("15:04"))

	var body string
	switch {
	case msg.IsStreaming:
		text := msg.Content
		if live, ok := m.live.text(msg.ID); ok {
			text = live
		}
		if text == "" {
			body = m.spinner.View() + " " + m.theme.HeaderMuted.Render("thinking...")
		} else {
			body = lipgloss.NewStyle().Width(width).Render(render.HighlightFences(text)) +
				"\n" + m.spinner.View()
		}
	case msg.Status == model.StatusErrored:
		body = m.theme.ErrorText.Render(msg.Content)
	case msg.Status == model.StatusInterrupted:
		body = m.renderInterrupted(msg.Content, width)
	default:
		body = m.renderFinal(msg.Content, width)
	}
	return header + "\n" + m.theme.AssistantBubble.Render(body)
}

// renderFinal renders the text of a finished reply.
func (m Model) renderFinal(content string, width int) string {
	if m.md != nil {
		return m.md.Render(content, width)
	}
	return lipgloss.NewStyle().Width(width).Render(render.HighlightFences(content))
}

// renderInterrupted shows the partial text followed by the styled marker.
func (m Model) renderInterrupted(content string, width int) string {
	partial := strings.TrimSuffix(content, chat.InterruptedMarker)
	partial = strings.TrimRight(partial, "\n")
	marker := m.theme.Interrupted.Render("Message interrupted")
	if partial == "" {
		return marker
	}
	return m.renderFinal(partial, width) + "\n" + marker
}

// =============================================================================
// COMPOSER
// =============================================================================

// renderComposer returns the chips, the table picker and the input box.
// Empty parts are omitted.
func (m Model) renderComposer() []string {
	var parts []string
	if chips := m.renderChips(); chips != "" {
		parts = append(parts, chips)
	}
	if picker := m.renderSuggestions(); picker != "" {
		parts = append(parts, picker)
	}
	box := m.theme.InputContainer.Width(max(10, m.width-2)).Render(m.textInput.View())
	return append(parts, box)
}

func (m Model) renderChips() string {
	pending := m.input.PendingMentions()
	if len(pending) == 0 {
		return ""
	}
	chips := make([]string, len(pending))
	for i, t := range pending {
		chips[i] = m.theme.Chip.Render("@" + util.TruncateWidth(t.Name, chipMaxWidth))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, chips...)
}

func (m Model) renderSuggestions() string {
	active, filter := m.input.MentionMode()
	if !active {
		return ""
	}
	suggestions := m.input.Suggestions(m.limit)
	if len(suggestions) == 0 {
		return m.theme.SuggestionBox.Render(
			m.theme.SuggestionDesc.Render("No tables match @" + filter))
	}

	nameWidth := 0
	for _, t := range suggestions {
		nameWidth = max(nameWidth, util.StringWidth(util.TruncateWidth(t.Name, suggestionMaxWidth)))
	}

	lines := make([]string, len(suggestions))
	for i, t := range suggestions {
		name := util.PadRight(util.TruncateWidth(t.Name, suggestionMaxWidth), nameWidth)
		style := m.theme.SuggestionItem
		if i == min(m.selected, len(suggestions)-1) {
			style = m.theme.SuggestionSelected
		}
		line := style.Render(" " + name + " ")
		if t.Description != "" {
			line += " " + m.theme.SuggestionDesc.Render(util.TruncateWidth(t.Description, suggestionMaxWidth))
		}
		lines[i] = line
	}
	return m.theme.SuggestionBox.Render(strings.Join(lines, "\n"))
}

// =============================================================================
// STATUS BAR
// =============================================================================

func (m Model) renderStatusBar() string {
	bindings := m.keys.ShortHelp()
	if active, _ := m.input.MentionMode(); active {
		bindings = m.keys.MentionHelp()
	}
	parts := make([]string, 0, len(bindings)+1)
	for _, b := range bindings {
		parts = append(parts, renderBinding(m, b))
	}
	if m.lastErr != nil {
		parts = append(parts, m.theme.ErrorText.Render(util.TruncateWidth(m.lastErr.Error(), 40)))
	}
	return m.theme.StatusBar.Width(m.width).Render(strings.Join(parts, "  "))
}

func renderBinding(m Model, b key.Binding) string {
	h := b.Help()
	return m.theme.ShortcutKey.Render(h.Key) + " " + m.theme.ShortcutDesc.Render(h.Desc)
}
