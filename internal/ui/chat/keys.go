// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the chat interface.
type KeyMap struct {
	Send          key.Binding
	Newline       key.Binding
	NewChat       key.Binding
	Rename        key.Binding
	Delete        key.Binding
	NextChat      key.Binding
	NextModel     key.Binding
	ToggleSidebar key.Binding
	ToggleTheme   key.Binding
	PageUp        key.Binding
	PageDown      key.Binding
	Quit          key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send"),
		),
		Newline: key.NewBinding(
			key.WithKeys("alt+enter"),
			key.WithHelp("Alt+Enter", "newline"),
		),
		NewChat: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("C-n", "new chat"),
		),
		Rename: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("C-r", "rename"),
		),
		Delete: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("C-d", "delete"),
		),
		NextChat: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("C-b", "next chat"),
		),
		NextModel: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("C-o", "model"),
		),
		ToggleSidebar: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("C-e", "sidebar"),
		),
		ToggleTheme: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("C-t", "theme"),
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
			key.WithKeys("esc", "ctrl+q", "ctrl+c"),
			key.WithHelp("Esc/C-q", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the status line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.NewChat, k.Rename, k.Delete, k.NextChat, k.NextModel, k.Quit}
}

// FullHelp returns every binding grouped for the help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Send, k.Newline, k.PageUp, k.PageDown},
		{k.NewChat, k.Rename, k.Delete, k.NextChat},
		{k.NextModel, k.ToggleSidebar, k.ToggleTheme, k.Quit},
	}
}
