// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export renders room transcripts for use outside the TUI.
//
// # Key Types
//
//   - Format: export format (Markdown, JSON)
//   - Exporter: renders one transcript
//   - Options: export configuration
//
// # Usage
//
//	exporter, err := export.New(export.FormatMarkdown, export.DefaultOptions())
//	data, err := exporter.Export("Physics", transcript)
//
// Write straight to a directory:
//
//	path, err := export.ToFile(dir, "Physics", transcript, exporter)
package export
