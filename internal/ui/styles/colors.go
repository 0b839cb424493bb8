// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// Every color carries a light and a dark variant. Themes resolve them with
// Pick instead of letting lipgloss guess, so the user can flip modes at runtime.

// =============================================================================
// ACCENT COLORS
// =============================================================================

// Teal - Opal brand color, assistant label, focused borders
var Teal = lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#5EEAD4"}

// Purple - Selections, room highlight
var Purple = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

// Blue - User label
var Blue = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#93C5FD"}

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

// Emerald - Ready status
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Amber - Typing status, pending sends
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// Rose - Errors, failed answers, delete confirmation
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// LinkColor - URLs attached to answers
var LinkColor = lipgloss.AdaptiveColor{Light: "#2563EB", Dark: "#60A5FA"}

// =============================================================================
// SURFACE AND TEXT COLORS
// =============================================================================

// Surface - Main background
var Surface = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}

// SurfaceDim - Sidebar and status bar background
var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F3F4F6", Dark: "#181825"}

// Overlay - Borders, separators
var Overlay = lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#45475A"}

// TextPrimary - Main body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}

// TextSecondary - Labels
var TextSecondary = lipgloss.AdaptiveColor{Light: "#4B5563", Dark: "#A6ADC8"}

// TextMuted - Hints, shortcut descriptions
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}

// TextInverse - Text on colored backgrounds
var TextInverse = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}

// Pick returns the variant of c for the given mode.
func Pick(c lipgloss.AdaptiveColor, dark bool) lipgloss.Color {
	if dark {
		return lipgloss.Color(c.Dark)
	}
	return lipgloss.Color(c.Light)
}
