// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/opal-tui/internal/model"
	"github.com/jeranaias/opal-tui/internal/session"
	"github.com/jeranaias/opal-tui/internal/storage"
)

// openRename shows the rename dialog pre-filled with the current name.
func (m *Model) openRename() {
	m.dialog = dialogRename
	m.dialogErr = ""
	m.renameInput.SetValue(m.current)
	m.renameInput.CursorEnd()
	m.renameInput.Focus()
	m.input.Blur()
}

// closeDialog hides any dialog and returns focus to the message input.
func (m *Model) closeDialog() {
	m.dialog = dialogNone
	m.dialogErr = ""
	m.renameInput.Blur()
	m.input.Focus()
}

func (m Model) handleDialogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.dialog {
	case dialogRename:
		return m.handleRenameKey(msg)
	case dialogDelete:
		return m.handleDeleteKey(msg)
	}
	return m, nil
}

func (m Model) handleRenameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closeDialog()
		return m, nil

	case tea.KeyEnter:
		name, err := m.backend.Rename(m.current, m.renameInput.Value())
		if err != nil {
			m.dialogErr = describeRoomError(err)
			return m, nil
		}
		m.closeDialog()
		m.refreshRooms()
		m.switchRoom(name)
		return m, nil
	}

	var cmd tea.Cmd
	m.renameInput, cmd = m.renameInput.Update(msg)
	return m, cmd
}

func (m Model) handleDeleteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		if err := m.backend.Delete(m.current); err != nil {
			m.dialogErr = describeRoomError(err)
			return m, nil
		}
		m.closeDialog()
		m.refreshRooms()
		m.switchRoom(model.UnsavedRoom)
	case "n", "N", "esc":
		m.closeDialog()
	}
	return m, nil
}

// describeRoomError turns room operation errors into dialog text.
func describeRoomError(err error) string {
	switch {
	case errors.Is(err, session.ErrRoomBusy):
		return "Wait for the answer before changing this chat."
	case errors.Is(err, session.ErrRoomExists):
		return "A chat with that name already exists."
	case errors.Is(err, session.ErrReservedRoom):
		return "That name is reserved."
	case errors.Is(err, storage.ErrInvalidRoomName):
		return "That name cannot be used for a chat."
	default:
		return err.Error()
	}
}

// renderDialog draws the active dialog.
func (m Model) renderDialog() string {
	var body string
	style := m.theme.Dialog

	switch m.dialog {
	case dialogRename:
		body = lipgloss.JoinVertical(lipgloss.Left,
			m.theme.DialogTitle.Render("Rename Chat"),
			m.renameInput.View(),
			m.theme.DialogHint.Render("Enter confirm · Esc cancel"),
		)
	case dialogDelete:
		style = m.theme.DialogDanger
		prompt := fmt.Sprintf("Delete %q?", m.current)
		if m.current == model.UnsavedRoom {
			prompt = "Clear the unsaved chat?"
		}
		body = lipgloss.JoinVertical(lipgloss.Left,
			m.theme.DialogTitle.Render("Delete Chat"),
			prompt,
			m.theme.DialogHint.Render("y confirm · n cancel"),
		)
	}

	if m.dialogErr != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, body, m.theme.StatusError.Render(m.dialogErr))
	}
	return style.Render(body)
}
