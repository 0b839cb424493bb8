// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/opal-tui/internal/session"
)

// =============================================================================
// BUBBLE TEA MESSAGES
// =============================================================================

// ReplyMsg carries a finished turn from the backend.
type ReplyMsg struct {
	Reply session.Reply
}

// RepliesClosedMsg is sent once the backend's reply channel is closed.
type RepliesClosedMsg struct{}

// waitForReply blocks on ch and turns the next reply into a ReplyMsg.
func waitForReply(ch <-chan session.Reply) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return RepliesClosedMsg{}
		}
		return ReplyMsg{Reply: r}
	}
}
