// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the Bubble Tea program of the Opal TUI.

The package is presentation glue over a Backend (session.Manager in
production): it lists rooms, renders the current room's transcript and
forwards input. It never calls the completion API itself.

# Key Components

## Model (model.go)

The Model holds the room list, the selected room and model, the sidebar
and theme state, and the bubbles components (viewport, textarea, textinput,
spinner, help).

## Update Loop (update.go)

Keyboard handling and reply processing. Replies arrive through a command
that blocks on the backend's reply channel and is re-issued after every
reply.

## View Rendering (view.go, render.go)

Sidebar, transcript, input and status line. Message bodies are rendered
from markdown with glamour; user turns are labelled "Me:" and answers
"Opal:", followed by " (URL: ...)" when the answer carried a link.

## Dialogs (dialog.go)

Rename (text input pre-filled with the current name) and delete
confirmation.

# Keyboard Shortcuts

	Enter      send            Alt+Enter  newline
	Ctrl+N     new chat        Ctrl+R     rename chat
	Ctrl+D     delete chat     Ctrl+B     next chat
	Ctrl+O     next model      Ctrl+E     toggle sidebar
	Ctrl+T     light/dark      PgUp/PgDn  scroll
	Esc/Ctrl+Q quit
*/
package chat
