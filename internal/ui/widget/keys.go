// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package widget

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines the keyboard bindings of the widget.
type KeyMap struct {
	Submit        key.Binding
	Escape        key.Binding
	Complete      key.Binding
	SuggestUp     key.Binding
	SuggestDown   key.Binding
	Stop          key.Binding
	Clear         key.Binding
	RemoveMention key.Binding
	Toggle        key.Binding
	PageUp        key.Binding
	PageDown      key.Binding
	Quit          key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "close picker"),
		),
		Complete: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "mention"),
		),
		SuggestUp: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("up", "previous table"),
		),
		SuggestDown: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("down", "next table"),
		),
		Stop: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "stop"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("C-l", "new chat"),
		),
		RemoveMention: key.NewBinding(
			key.WithKeys("ctrl+w"),
			key.WithHelp("C-w", "drop mention"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("C-o", "open/close"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "scroll down"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Stop, k.Clear, k.Toggle, k.Quit}
}

// MentionHelp returns the bindings shown while the table picker is open.
func (k KeyMap) MentionHelp() []key.Binding {
	return []key.Binding{k.Complete, k.SuggestDown, k.Escape}
}
