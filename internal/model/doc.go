// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for rooms, transcripts and messages.
//
// This package defines the core domain types used throughout the application
// for representing a chat room's transcript. Values here are plain data: a
// Transcript is never mutated in place, every helper returns a fresh copy.
//
// # Key Types
//
//   - Message: Single role-tagged message with optional URL
//   - Transcript: Ordered messages for one room, slot 0 is the system prompt
//   - Role: Message role enumeration (system, user, assistant)
//
// # Usage
//
//	t := model.Transcript{}
//	t = t.WithSystem(model.NewSystemMessage("You are Opal."))
//	t = t.Append(model.NewUserMessage("Hello"))
//	t = t.Trim(100)
package model
