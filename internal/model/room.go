// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// UnsavedRoom is the reserved name of the transient room a session starts in.
// Its file is removed on exit unless the user renamed it.
const UnsavedRoom = "(New Chat)"

// IsUnsaved reports whether name is the reserved unsaved room.
func IsUnsaved(name string) bool {
	return name == UnsavedRoom
}
