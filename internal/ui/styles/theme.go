// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Mode selects a stylesheet.
type Mode string

const (
	ModeAuto  Mode = "auto"
	ModeLight Mode = "light"
	ModeDark  Mode = "dark"
)

// ParseMode parses a theme name from config or flags.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeAuto, ModeLight, ModeDark:
		return m, nil
	case "":
		return ModeAuto, nil
	default:
		return "", fmt.Errorf("unknown theme %q (want auto, light or dark)", s)
	}
}

// hasDarkBackground is replaced in tests.
var hasDarkBackground = termenv.HasDarkBackground

// Resolve turns ModeAuto into ModeLight or ModeDark.
func (m Mode) Resolve() Mode {
	if m != ModeAuto {
		return m
	}
	if hasDarkBackground() {
		return ModeDark
	}
	return ModeLight
}

// Theme holds the styled components for one mode.
type Theme struct {
	Mode   Mode // always ModeLight or ModeDark
	IsDark bool

	// ==========================================================================
	// LAYOUT
	// ==========================================================================

	App        lipgloss.Style
	Transcript lipgloss.Style

	// ==========================================================================
	// SIDEBAR
	// ==========================================================================

	Sidebar          lipgloss.Style
	SidebarTitle     lipgloss.Style
	RoomItem         lipgloss.Style
	RoomItemSelected lipgloss.Style
	RoomBusy         lipgloss.Style

	// ==========================================================================
	// MESSAGES
	// ==========================================================================

	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	FailedLabel    lipgloss.Style
	Pending        lipgloss.Style
	URL            lipgloss.Style

	// ==========================================================================
	// INPUT AND STATUS
	// ==========================================================================

	Input        lipgloss.Style
	StatusBar    lipgloss.Style
	StatusReady  lipgloss.Style
	StatusTyping lipgloss.Style
	StatusModel  lipgloss.Style
	StatusError  lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// ==========================================================================
	// DIALOGS
	// ==========================================================================

	Dialog       lipgloss.Style
	DialogTitle  lipgloss.Style
	DialogDanger lipgloss.Style
	DialogHint   lipgloss.Style
}

// NewTheme builds the stylesheet for mode. ModeAuto is resolved against the
// terminal background.
func NewTheme(mode Mode) *Theme {
	mode = mode.Resolve()
	t := &Theme{Mode: mode, IsDark: mode == ModeDark}
	t.initStyles()
	return t
}

// Toggle returns the theme for the opposite mode.
func (t *Theme) Toggle() *Theme {
	if t.IsDark {
		return NewTheme(ModeLight)
	}
	return NewTheme(ModeDark)
}

// GlamourStyle names the glamour standard style matching this theme.
func (t *Theme) GlamourStyle() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}

func (t *Theme) c(color lipgloss.AdaptiveColor) lipgloss.Color {
	return Pick(color, t.IsDark)
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle().
		Foreground(t.c(TextPrimary))

	t.Transcript = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.c(Overlay)).
		Padding(0, 1)

	// Sidebar
	t.Sidebar = lipgloss.NewStyle().
		Background(t.c(SurfaceDim)).
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(t.c(Overlay)).
		Padding(0, 1)

	t.SidebarTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.c(Teal)).
		MarginBottom(1)

	t.RoomItem = lipgloss.NewStyle().
		Foreground(t.c(TextSecondary))

	t.RoomItemSelected = lipgloss.NewStyle().
		Background(t.c(Purple)).
		Foreground(t.c(TextInverse)).
		Bold(true)

	t.RoomBusy = lipgloss.NewStyle().
		Foreground(t.c(Amber))

	// Messages
	t.UserLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.c(Blue))

	t.AssistantLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.c(Teal))

	t.FailedLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.c(Rose))

	t.Pending = lipgloss.NewStyle().
		Foreground(t.c(TextMuted)).
		Italic(true)

	t.URL = lipgloss.NewStyle().
		Foreground(t.c(LinkColor)).
		Underline(true)

	// Input and status
	t.Input = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(t.c(Overlay))

	t.StatusBar = lipgloss.NewStyle().
		Background(t.c(SurfaceDim)).
		Foreground(t.c(TextSecondary)).
		Padding(0, 1)

	t.StatusReady = lipgloss.NewStyle().
		Foreground(t.c(Emerald)).
		Bold(true)

	t.StatusTyping = lipgloss.NewStyle().
		Foreground(t.c(Amber)).
		Bold(true)

	t.StatusModel = lipgloss.NewStyle().
		Foreground(t.c(Purple))

	t.StatusError = lipgloss.NewStyle().
		Foreground(t.c(Rose))

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(t.c(Teal)).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(t.c(TextMuted))

	// Dialogs
	t.Dialog = lipgloss.NewStyle().
		Background(t.c(Surface)).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.c(Purple)).
		Padding(1, 2)

	t.DialogTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.c(Purple)).
		MarginBottom(1)

	t.DialogDanger = t.Dialog.
		BorderForeground(t.c(Rose))

	t.DialogHint = lipgloss.NewStyle().
		Foreground(t.c(TextMuted)).
		MarginTop(1)
}
