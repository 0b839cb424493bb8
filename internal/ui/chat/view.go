// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/opal-tui/internal/model"
	"github.com/jeranaias/opal-tui/internal/prompt"
	"github.com/jeranaias/opal-tui/internal/util"
)

// View renders the chat window.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if m.dialog != dialogNone {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.renderDialog())
	}

	main := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Transcript.Render(m.viewport.View()),
		m.theme.Input.Render(m.input.View()),
	)
	if m.showSidebar {
		main = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), main)
	}

	screen := lipgloss.JoinVertical(lipgloss.Left,
		main,
		m.renderStatusBar(),
		m.help.View(m.keyMap),
	)
	return m.theme.App.Render(screen)
}

// =============================================================================
// SIDEBAR
// =============================================================================

// renderSidebar lists the rooms. Names are cut to the column width; rooms
// with sends in flight carry a marker.
func (m Model) renderSidebar() string {
	inner := sidebarWidth - 3 // border and padding
	rows := []string{m.theme.SidebarTitle.Render("Chats")}

	for _, room := range m.rooms {
		marker := "  "
		if m.backend.Busy(room) {
			marker = m.theme.RoomBusy.Render("• ")
		}
		name := util.PadWidth(util.TruncateWidth(room, inner-2), inner-2)

		style := m.theme.RoomItem
		if room == m.current {
			style = m.theme.RoomItemSelected
		}
		rows = append(rows, marker+style.Render(name))
	}

	height := m.height - 3
	if height < len(rows) {
		height = len(rows)
	}
	return m.theme.Sidebar.
		Width(sidebarWidth - 1).
		Height(height).
		Render(strings.Join(rows, "\n"))
}

// =============================================================================
// STATUS BAR
// =============================================================================

// renderStatusBar shows activity, room, model and the directives of the
// room's latest user message.
func (m Model) renderStatusBar() string {
	var activity string
	if m.backend.Busy(m.current) {
		activity = m.theme.StatusTyping.Render(m.spinner.View() + " Status: Typing...")
	} else {
		activity = m.theme.StatusReady.Render("Status: Ready")
	}

	sep := m.theme.ShortcutDesc.Render(" | ")
	line := activity + sep + m.current
	if name := m.CurrentModel(); name != "" {
		line += sep + m.theme.StatusModel.Render(name)
	}
	line += sep + m.directives().String()
	if m.closed {
		line += sep + m.theme.StatusError.Render("offline")
	}
	if m.statusErr != "" {
		line += sep + m.theme.StatusError.Render(m.statusErr)
	}
	return m.theme.StatusBar.Width(m.width).Render(line)
}

// directives reports V/T for the latest user message of the current room,
// or the defaults for an empty room.
func (m Model) directives() prompt.Directives {
	transcript, err := m.backend.Transcript(m.current)
	if err != nil {
		return prompt.DefaultDirectives()
	}
	visible := transcript.Visible()
	for i := len(visible) - 1; i >= 0; i-- {
		if visible[i].Role == model.RoleUser {
			return prompt.ParseDirectives(visible[i].Content)
		}
	}
	return prompt.DefaultDirectives()
}
