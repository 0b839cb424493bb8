// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/opal-tui/internal/session"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case ReplyMsg:
		return m.handleReply(msg)

	case RepliesClosedMsg:
		m.closed = true
		return m, nil

	case spinner.TickMsg:
		if !m.anyBusy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.dialog != dialogNone {
			return m.handleDialogKey(msg)
		}
		return m.handleKey(msg)
	}

	return m, nil
}

// handleReply redraws after a finished turn and waits for the next one.
func (m Model) handleReply(msg ReplyMsg) (tea.Model, tea.Cmd) {
	r := msg.Reply
	m.refreshRooms()
	if r.Room == m.current {
		m.refreshTranscript()
		m.viewport.GotoBottom()
	}
	if r.Err != nil {
		m.statusErr = "Could not save " + r.Room + ": " + r.Err.Error()
	}
	return m, waitForReply(m.backend.Replies())
}

func (m Model) anyBusy() bool {
	for _, room := range m.rooms {
		if m.backend.Busy(room) {
			return true
		}
	}
	return false
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Send):
		return m.send()

	case key.Matches(msg, m.keyMap.Newline):
		m.input.InsertString("\n")
		return m, nil

	case key.Matches(msg, m.keyMap.NewChat):
		name, err := m.backend.NewRoom()
		if err != nil {
			m.statusErr = err.Error()
			return m, nil
		}
		m.refreshRooms()
		m.switchRoom(name)
		return m, nil

	case key.Matches(msg, m.keyMap.Rename):
		m.openRename()
		return m, nil

	case key.Matches(msg, m.keyMap.Delete):
		m.dialog = dialogDelete
		m.dialogErr = ""
		return m, nil

	case key.Matches(msg, m.keyMap.NextChat):
		m.refreshRooms()
		if len(m.rooms) > 0 {
			next := (m.roomIndex(m.current) + 1) % len(m.rooms)
			m.switchRoom(m.rooms[next])
		}
		return m, nil

	case key.Matches(msg, m.keyMap.NextModel):
		if len(m.models) > 0 {
			m.modelIdx = (m.modelIdx + 1) % len(m.models)
		}
		return m, nil

	case key.Matches(msg, m.keyMap.ToggleSidebar):
		m.showSidebar = !m.showSidebar
		m.layout()
		return m, nil

	case key.Matches(msg, m.keyMap.ToggleTheme):
		m.theme = m.theme.Toggle()
		m.layout()
		return m, nil

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.ViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// send hands the input to the backend. The textarea is cleared only when the
// backend accepted the message.
func (m Model) send() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		return m, nil
	}

	wasBusy := m.anyBusy()
	if _, err := m.backend.Send(m.current, text, m.CurrentModel()); err != nil {
		if errors.Is(err, session.ErrQueueFull) {
			m.statusErr = "Still answering, queue is full"
		} else {
			m.statusErr = err.Error()
		}
		return m, nil
	}

	m.statusErr = ""
	m.input.Reset()
	m.refreshRooms()
	m.refreshTranscript()
	m.viewport.GotoBottom()

	if wasBusy {
		return m, nil
	}
	return m, m.spinner.Tick
}
