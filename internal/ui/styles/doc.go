// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the light and dark stylesheets of the Opal TUI.
//
// A Theme is built for one mode. Mode "auto" asks the terminal for its
// background color through termenv and picks light or dark from the answer.
//
//	theme := styles.NewTheme(styles.ModeAuto)
//	label := theme.AssistantLabel.Render("Opal:")
//	theme = theme.Toggle() // Ctrl+T
package styles
