// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists room transcripts as JSON files.
//
// Each room is stored as <dir>/<room>.json holding a JSON array of messages
// in transcript order, system prompt included. Writes are atomic and
// serialized by the store's lock. A file that cannot be read or parsed never
// stops the application: the room loads as empty and the failure is logged.
//
// # Key Types
//
//   - Store: Directory-backed room store
//   - RoomInfo: Lightweight metadata used for listing
//   - PersistenceError: Failed filesystem or decode operation on one room
//
// # Usage
//
//	store, err := storage.NewStore(cfg.Chat.Dir, logger)
//	rooms, err := store.LoadAll()
//	err = store.Save("Physics", transcript)
//	err = store.Rename("Physics", "Quantum")
package storage
