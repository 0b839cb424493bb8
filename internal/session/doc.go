// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the chat rooms of a running client.
//
// The Manager keeps every room's transcript in memory, runs one background
// worker per room and persists each finished turn through the room store.
// Sends to a busy room are queued behind the running one; each room's queue
// is bounded.
//
// # Key Types
//
//   - Manager: room map, worker map and reply channel under one lock
//   - Reply: notification emitted when a turn finishes
//   - Processor: the message pipeline a worker runs for each send
//
// # Usage
//
//	mgr, err := session.NewManager(store, processor, session.Options{})
//	taskID, err := mgr.Send(model.UnsavedRoom, "hello", "gpt-4o")
//	reply := <-mgr.Replies()
//	defer mgr.Close(ctx)
//
// # Unsaved Room
//
// The reserved room (model.UnsavedRoom) always exists. Renaming it keeps the
// conversation under the new name and installs a fresh reserved room. Its file
// is removed on Close if the user never renamed it.
package session
