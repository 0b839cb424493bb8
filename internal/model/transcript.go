// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "errors"

// DefaultMaxLength is the number of messages retained per room when no other
// limit is configured.
const DefaultMaxLength = 100

// Error variables for transcript validation.
var (
	// ErrEmptyTranscript indicates a transcript with no messages.
	ErrEmptyTranscript = errors.New("transcript is empty")

	// ErrMissingSystem indicates slot 0 is not a system message.
	ErrMissingSystem = errors.New("transcript slot 0 is not a system message")
)

// =============================================================================
// TRANSCRIPT TYPE
// =============================================================================

// Transcript is the ordered message history of one room.
//
// Slot 0, when present, holds the system prompt. It is replaced rather than
// appended whenever the selected prompt changes. None of the methods below
// modify the receiver's backing array.
type Transcript []Message

// Clone returns a copy that shares no storage with t.
func (t Transcript) Clone() Transcript {
	if t == nil {
		return nil
	}
	out := make(Transcript, len(t))
	copy(out, t)
	return out
}

// HasSystem reports whether slot 0 holds a system message.
func (t Transcript) HasSystem() bool {
	return len(t) > 0 && t[0].IsSystem()
}

// System returns the system message in slot 0, if any.
func (t Transcript) System() (Message, bool) {
	if !t.HasSystem() {
		return Message{}, false
	}
	return t[0], true
}

// WithSystem returns a copy of t whose slot 0 is msg. If t has no system
// message yet, msg is prepended.
func (t Transcript) WithSystem(msg Message) Transcript {
	if t.HasSystem() {
		out := t.Clone()
		out[0] = msg
		return out
	}
	out := make(Transcript, 0, len(t)+1)
	out = append(out, msg)
	return append(out, t...)
}

// Append returns a copy of t with msgs added at the end.
func (t Transcript) Append(msgs ...Message) Transcript {
	out := make(Transcript, 0, len(t)+len(msgs))
	out = append(out, t...)
	return append(out, msgs...)
}

// Trim drops the oldest non-system entries until len <= max. Slot 0 is kept,
// so the result has the original slot 0 followed by the newest max-1 messages.
// A max of zero or less disables trimming.
func (t Transcript) Trim(max int) Transcript {
	if max <= 0 || len(t) <= max {
		return t.Clone()
	}
	if max == 1 {
		return Transcript{t[0]}
	}
	out := make(Transcript, 0, max)
	out = append(out, t[0])
	return append(out, t[len(t)-(max-1):]...)
}

// Visible returns the messages that are shown to the user (everything except
// system prompts).
func (t Transcript) Visible() []Message {
	out := make([]Message, 0, len(t))
	for _, msg := range t {
		if !msg.IsSystem() {
			out = append(out, msg)
		}
	}
	return out
}

// Last returns the final message, if any.
func (t Transcript) Last() (Message, bool) {
	if len(t) == 0 {
		return Message{}, false
	}
	return t[len(t)-1], true
}

// Validate checks the invariant required by the completion endpoint: the
// transcript is non-empty and starts with a system message.
func (t Transcript) Validate() error {
	if len(t) == 0 {
		return ErrEmptyTranscript
	}
	if !t[0].IsSystem() {
		return ErrMissingSystem
	}
	return nil
}

// Equal reports whether both transcripts hold the same messages in order.
func (t Transcript) Equal(other Transcript) bool {
	if len(t) != len(other) {
		return false
	}
	for i := range t {
		if t[i] != other[i] {
			return false
		}
	}
	return true
}
