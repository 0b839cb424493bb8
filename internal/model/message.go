// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "strings"

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// DisplayName returns the label shown next to a message in the transcript view.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "Me"
	case RoleAssistant:
		return "Opal"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single entry of a transcript. It is treated as immutable once
// created; the persisted form is {"role", "content", "url"?}.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	URL     string `json:"url,omitempty"`
}

// NewMessage creates a new message.
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) Message {
	return NewMessage(RoleSystem, content)
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantMessage creates a new assistant message carrying an optional URL.
func NewAssistantMessage(content, url string) Message {
	return Message{Role: RoleAssistant, Content: content, URL: url}
}

// IsSystem reports whether the message is a system prompt.
func (m Message) IsSystem() bool {
	return m.Role == RoleSystem
}

// Preview returns the first line of the content, truncated to maxLen runes.
func (m Message) Preview(maxLen int) string {
	content := strings.TrimSpace(m.Content)
	if i := strings.IndexAny(content, "\r\n"); i >= 0 {
		content = content[:i]
	}
	runes := []rune(content)
	if maxLen <= 0 || len(runes) <= maxLen {
		return content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
