// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"fmt"
)

// Error variables for room persistence.
var (
	// ErrRoomNotFound is returned when a room has no file.
	ErrRoomNotFound = errors.New("room not found")

	// ErrRoomExists is returned when a rename target already exists.
	ErrRoomExists = errors.New("room already exists")

	// ErrInvalidRoomName is returned for names that cannot be used as a file name.
	ErrInvalidRoomName = errors.New("invalid room name")
)

// PersistenceError describes a failed operation on one room's file.
type PersistenceError struct {
	Op   string // "load", "save", "rename", "delete", "list"
	Room string
	Err  error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	if e.Room == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Room, e.Err)
}

// Unwrap returns the underlying error.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func opError(op, room string, err error) error {
	return &PersistenceError{Op: op, Room: room, Err: err}
}
