// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/opal-tui/internal/model"
	"github.com/jeranaias/opal-tui/internal/pipeline"
	"github.com/jeranaias/opal-tui/internal/tasks"
)

// renderer turns message markdown into terminal text.
type renderer struct {
	term *glamour.TermRenderer
}

// newRenderer builds a glamour renderer for style ("dark" or "light") and
// wrap width. A renderer that cannot be built falls back to plain text.
func newRenderer(style string, width int) *renderer {
	if width < 10 {
		width = 10
	}
	term, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return &renderer{}
	}
	return &renderer{term: term}
}

// Render converts markdown to styled text.
func (r *renderer) Render(markdown string) string {
	if r == nil || r.term == nil {
		return markdown
	}
	out, err := r.term.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.Trim(out, "\n")
}

// urlSuffix is appended to a rendered message that carries a link.
func urlSuffix(msg model.Message) string {
	if msg.URL == "" {
		return ""
	}
	return " (URL: " + msg.URL + ")"
}

// renderTranscript draws the visible turns of a room followed by the sends
// still waiting for an answer.
func (m *Model) renderTranscript(transcript model.Transcript, pending []*tasks.Task) string {
	var b strings.Builder

	for _, msg := range transcript.Visible() {
		label := m.theme.UserLabel
		if msg.Role == model.RoleAssistant {
			label = m.theme.AssistantLabel
			if pipeline.IsFailure(msg.Content) {
				label = m.theme.FailedLabel
			}
		}
		b.WriteString(label.Render(msg.Role.DisplayName() + ":"))
		b.WriteString("\n")
		b.WriteString(m.renderer.Render(msg.Content))
		if suffix := urlSuffix(msg); suffix != "" {
			b.WriteString(m.theme.URL.Render(suffix))
		}
		b.WriteString("\n\n")
	}

	for i, task := range pending {
		state := "queued"
		if i == 0 && task.GetStatus() == tasks.TaskStatusRunning {
			state = "sending"
		}
		b.WriteString(m.theme.UserLabel.Render(model.RoleUser.DisplayName() + ":"))
		b.WriteString(" ")
		b.WriteString(m.theme.Pending.Render("(" + state + ")"))
		b.WriteString("\n")
		b.WriteString(m.renderer.Render(task.Message))
		b.WriteString("\n\n")
	}

	if b.Len() == 0 {
		return m.theme.Pending.Render("No messages yet. Start with ? for an expert answer or ! for a joke.")
	}
	return strings.TrimRight(b.String(), "\n")
}
