// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small file and text helpers shared across opal.
//
//   - AtomicWriteFile: crash-safe file replacement (temp file, fsync, rename)
//   - TruncateWidth, PadWidth: display-width aware sizing for terminal columns
package util
