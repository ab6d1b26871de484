// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/promptlab-tui/internal/api"
	"github.com/jeranaias/promptlab-tui/internal/backend"
	"github.com/jeranaias/promptlab-tui/internal/config"
	"github.com/jeranaias/promptlab-tui/internal/history"
	"github.com/jeranaias/promptlab-tui/internal/model"
	"github.com/jeranaias/promptlab-tui/internal/offline"
	"github.com/jeranaias/promptlab-tui/internal/session"
	"github.com/jeranaias/promptlab-tui/internal/state"
	"github.com/jeranaias/promptlab-tui/internal/ui/components"
)

// focusArea identifies which pane has keyboard focus.
type focusArea int

const (
	focusComposer focusArea = iota
	focusSidebar
)

// Deps carries everything the chat model needs; main wires it once.
type Deps struct {
	Config      *config.Config
	Client      *api.Client
	Backend     *backend.Service
	Coordinator *session.Coordinator
	State       *state.Store
	Monitor     *offline.Monitor
	History     *history.Store
	Toasts      *components.ToastManager
}

// Model is the bubbletea model for the chat view.
type Model struct {
	deps Deps
	keys KeyMap

	sidebar  *components.Sidebar
	renderer *components.EntryRenderer
	viewport viewport.Model
	textarea textarea.Model
	toasts   *components.ToastManager

	sessions  []model.Session
	entries   []model.Entry
	currentID string
	params    model.Parameters

	// connectivity transitions arrive on this channel from the monitor.
	connCh chan bool

	// prompt history recall
	histItems []string
	histIdx   int // -1 when not browsing

	// typing reveal of the newest assistant entry
	revealing bool
	revealLen int

	focus      focusArea
	filtering  bool
	generating bool
	isOffline  bool
	width      int
	height     int
	ready      bool
}

// New creates the chat model.
func New(deps Deps) *Model {
	ta := textarea.New()
	ta.Placeholder = "Type a prompt..."
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.CharLimit = 8000
	ta.Focus()

	m := &Model{
		deps:     deps,
		keys:     DefaultKeyMap(),
		sidebar:  components.NewSidebar(deps.Config.UI.SidebarWidth),
		renderer: components.NewEntryRenderer(80, deps.Config.UI.Markdown),
		viewport: viewport.New(80, 20),
		textarea: ta,
		toasts:   deps.Toasts,
		params: model.Parameters{
			Temperature: deps.Config.Generation.Temperature,
			TopP:        deps.Config.Generation.TopP,
			Model:       deps.Config.Generation.Model,
		},
		connCh:  make(chan bool, 8),
		histIdx: -1,
	}

	deps.Monitor.Subscribe(func(online bool) {
		select {
		case m.connCh <- online:
		default:
		}
	})

	return m
}

// Init starts the initial loads.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		LoadSessionsCmd(m.deps.Backend),
		LoadCurrentSessionCmd(m.deps.Backend),
		LoadHistoryCmd(m.deps.History),
		WaitConnectivityCmd(m.connCh),
		components.ToastTickCmd(),
	)
}

// CurrentSessionID returns the active session id.
func (m *Model) CurrentSessionID() string {
	return m.currentID
}

// setEntries installs conversation entries and refreshes the viewport.
func (m *Model) setEntries(entries []model.Entry) {
	m.entries = entries
	m.refreshViewport()
}

// refreshViewport re-renders the conversation and scrolls to the bottom.
func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderConversation())
	m.viewport.GotoBottom()
}
