// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"

	"github.com/jeranaias/opal-tui/internal/storage"
	"github.com/jeranaias/opal-tui/internal/tasks"
)

// Error variables for room operations.
var (
	// ErrRoomBusy is returned when renaming or deleting a room that still has
	// queued or running sends.
	ErrRoomBusy = errors.New("room has sends in progress")

	// ErrReservedRoom is returned when a room would be renamed to the
	// reserved unsaved name.
	ErrReservedRoom = errors.New("room name is reserved")

	// ErrEmptyMessage is returned by Send for blank input.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrClosed is returned once Close has been called.
	ErrClosed = errors.New("session is closed")

	// ErrQueueFull is returned when a room's send queue is full.
	ErrQueueFull = tasks.ErrQueueFull

	// ErrRoomNotFound is returned for operations on unknown rooms.
	ErrRoomNotFound = storage.ErrRoomNotFound

	// ErrRoomExists is returned when a rename target is already taken.
	ErrRoomExists = storage.ErrRoomExists
)
