// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/jeranaias/opal-tui/internal/model"
	"github.com/jeranaias/opal-tui/internal/session"
	"github.com/jeranaias/opal-tui/internal/tasks"
	"github.com/jeranaias/opal-tui/internal/ui/styles"
)

// Backend is the room and send surface the UI drives. *session.Manager
// implements it.
type Backend interface {
	Send(room, text, modelID string) (string, error)
	Replies() <-chan session.Reply
	Rooms() []string
	Transcript(room string) (model.Transcript, error)
	Pending(room string) []*tasks.Task
	Busy(room string) bool
	NewRoom() (string, error)
	Rename(oldRoom, newRoom string) (string, error)
	Delete(room string) error
}

// =============================================================================
// CHAT STATE
// =============================================================================

// dialogKind is the modal dialog currently shown.
type dialogKind int

const (
	dialogNone dialogKind = iota
	dialogRename
	dialogDelete
)

// Layout constants.
const (
	sidebarWidth = 26
	inputHeight  = 3
)

// Options configures New.
type Options struct {
	Models  []string
	Model   string
	Theme   *styles.Theme
	Sidebar bool
	Logger  zerolog.Logger
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model of the chat window.
type Model struct {
	backend Backend
	logger  zerolog.Logger

	// Styling
	theme    *styles.Theme
	renderer *renderer

	// Dimensions
	width  int
	height int

	// Rooms
	rooms   []string
	current string

	// Models
	models   []string
	modelIdx int

	// UI Components
	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model
	help     help.Model
	keyMap   KeyMap

	showSidebar bool

	// Dialogs
	dialog      dialogKind
	renameInput textinput.Model
	dialogErr   string

	// Status
	statusErr string
	closed    bool
}

// New creates the chat model. The reserved unsaved room is selected.
func New(backend Backend, opts Options) Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme(styles.ModeAuto)
	}

	ta := textarea.New()
	ta.Placeholder = "Type a message... (? expert, ! comedy)"
	ta.ShowLineNumbers = false
	ta.Prompt = "> "
	ta.CharLimit = 0
	ta.SetHeight(inputHeight)
	// Enter sends; Alt+Enter is handled by the model.
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	ri := textinput.New()
	ri.CharLimit = 200
	ri.Prompt = "Name: "

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	models := opts.Models
	if len(models) == 0 && opts.Model != "" {
		models = []string{opts.Model}
	}
	modelIdx := 0
	for i, m := range models {
		if m == opts.Model {
			modelIdx = i
		}
	}

	m := Model{
		backend:     backend,
		logger:      opts.Logger,
		theme:       theme,
		renderer:    newRenderer(theme.GlamourStyle(), 80),
		current:     model.UnsavedRoom,
		models:      models,
		modelIdx:    modelIdx,
		viewport:    viewport.New(80, 20),
		input:       ta,
		spinner:     sp,
		help:        help.New(),
		keyMap:      DefaultKeyMap(),
		showSidebar: opts.Sidebar,
		renameInput: ri,
	}
	m.refreshRooms()
	m.refreshTranscript()
	return m
}

// Init starts listening for replies.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, waitForReply(m.backend.Replies()))
}

// =============================================================================
// STATE HELPERS
// =============================================================================

// CurrentRoom returns the selected room.
func (m Model) CurrentRoom() string {
	return m.current
}

// CurrentModel returns the model new sends use.
func (m Model) CurrentModel() string {
	if len(m.models) == 0 {
		return ""
	}
	return m.models[m.modelIdx]
}

// Rooms returns the room list as last read from the backend.
func (m Model) Rooms() []string {
	return append([]string(nil), m.rooms...)
}

// refreshRooms re-reads the room list and keeps the selection valid.
func (m *Model) refreshRooms() {
	m.rooms = m.backend.Rooms()
	if m.roomIndex(m.current) < 0 {
		m.current = model.UnsavedRoom
	}
}

func (m *Model) roomIndex(name string) int {
	for i, r := range m.rooms {
		if r == name {
			return i
		}
	}
	return -1
}

// switchRoom selects room and redraws its transcript.
func (m *Model) switchRoom(room string) {
	m.current = room
	m.statusErr = ""
	m.refreshTranscript()
	m.viewport.GotoBottom()
}

// refreshTranscript re-renders the selected room into the viewport.
func (m *Model) refreshTranscript() {
	transcript, err := m.backend.Transcript(m.current)
	if err != nil {
		m.logger.Warn().Err(err).Str("room", m.current).Msg("transcript unavailable")
		transcript = nil
	}
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderTranscript(transcript, m.backend.Pending(m.current)))
	if atBottom {
		m.viewport.GotoBottom()
	}
}

// layout sizes the components for the current window.
func (m *Model) layout() {
	contentWidth := m.width
	if m.showSidebar {
		contentWidth -= sidebarWidth
	}
	if contentWidth < 20 {
		contentWidth = 20
	}

	// Border (2) and padding (2) of the transcript frame.
	vpWidth := contentWidth - 4
	// Input with its top border, status line and help line.
	vpHeight := m.height - (inputHeight + 1) - 2 - 2
	if vpHeight < 3 {
		vpHeight = 3
	}

	m.viewport.Width = vpWidth
	m.viewport.Height = vpHeight
	m.input.SetWidth(contentWidth)
	m.renameInput.Width = 40
	m.help.Width = m.width
	m.help.Styles.ShortKey = m.theme.ShortcutKey
	m.help.Styles.ShortDesc = m.theme.ShortcutDesc
	m.help.Styles.FullKey = m.theme.ShortcutKey
	m.help.Styles.FullDesc = m.theme.ShortcutDesc
	m.renderer = newRenderer(m.theme.GlamourStyle(), vpWidth)
	m.refreshTranscript()
}
