// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package pipeline turns one user message into one assistant turn.
//
// The Processor assembles the transcript (system prompt selection, user turn,
// trimming) and hands it to the Asker, which calls the completion client with
// bounded exponential backoff. API failures never surface as Go errors here:
// the Asker converts them into FailureMessage, which the Processor appends as
// an ordinary assistant turn. Use IsFailure to tell the two apart.
//
// # Key Types
//
//   - Asker: retry wrapper around a cloud.Completer
//   - Backoff: retry ceiling and delay schedule
//   - Processor: builds the next transcript for a room
//   - Result: answer text, URL, next transcript and the prompt decisions made
package pipeline
