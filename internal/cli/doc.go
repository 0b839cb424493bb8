// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the opal command line.
//
// # Commands
//
//	opal [--config p] [--log-level l] [--chat-dir d] [--model m] [--theme t]
//	opal rooms [--json]
//	opal export <room> [--format markdown|json] [--output dir]
//	opal version [--json]
//
// The root command starts the TUI. It loads the config file, applies the
// OPAL_* environment variables and then the flags, sets up logging and wires
// the completion client, retry wrapper, message processor, room store and
// session manager before handing the terminal to Bubble Tea.
package cli
