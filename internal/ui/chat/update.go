// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/promptlab-tui/internal/model"
	"github.com/jeranaias/promptlab-tui/internal/ui/components"
)

// Update is the bubbletea update loop.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ConnectivityMsg:
		m.isOffline = !msg.Online
		if msg.Online {
			m.toasts.AddSuccess("Back online. Replaying queued requests.")
		} else {
			m.toasts.AddError("Connection lost. Requests will be queued.")
		}
		return m, WaitConnectivityCmd(m.connCh)

	case components.ToastTickMsg:
		m.toasts.Tick()
		return m, components.ToastTickCmd()

	case SessionsLoadedMsg:
		if msg.Err != nil {
			m.toasts.AddError("Failed to load sessions: " + msg.Err.Error())
			return m, nil
		}
		m.sessions = msg.Sessions
		m.sidebar.SetSessions(msg.Sessions)
		if m.currentID != "" {
			m.sidebar.SelectSession(m.currentID)
		}
		return m, nil

	case CurrentSessionMsg:
		if msg.Err != nil {
			// No current session yet is a normal first-run condition.
			return m, nil
		}
		m.currentID = msg.Session.ID
		m.sidebar.SelectSession(msg.Session.ID)
		return m, SwitchSessionCmd(m.deps.Coordinator, msg.Session.ID)

	case SessionCreatedMsg:
		if msg.Err != nil {
			m.toasts.AddError("Failed to create session: " + msg.Err.Error())
			return m, nil
		}
		m.toasts.AddSuccess("Session created")
		return m, tea.Batch(
			LoadSessionsCmd(m.deps.Backend),
			SwitchSessionCmd(m.deps.Coordinator, msg.Session.ID),
		)

	case SessionDeletedMsg:
		if msg.Err != nil {
			m.toasts.AddError("Failed to delete session: " + msg.Err.Error())
			return m, nil
		}
		if msg.ID == m.currentID {
			m.currentID = ""
			m.deps.State.Clear()
			m.setEntries(nil)
		}
		return m, LoadSessionsCmd(m.deps.Backend)

	case SessionSwitchedMsg:
		if msg.Err != nil {
			m.setEntries(m.deps.State.Get())
			m.toasts.AddError("Failed to switch session: " + msg.Err.Error())
			return m, nil
		}
		if msg.Result == nil {
			// Dropped: empty id or a switch already in flight.
			return m, nil
		}
		m.currentID = msg.Result.SessionID
		m.sidebar.SelectSession(msg.Result.SessionID)
		m.setEntries(msg.Result.Entries)
		return m, nil

	case ExperimentCreatedMsg:
		m.generating = false
		if msg.Err != nil {
			m.toasts.AddError("Generation failed: " + msg.Err.Error())
			return m, nil
		}
		m.deps.State.Append(model.NewExperimentEntry(msg.Experiment))
		m.setEntries(m.deps.State.Get())
		if m.deps.Config.UI.TypingEffect {
			return m, m.startReveal()
		}
		return m, LoadHistoryCmd(m.deps.History)

	case HistoryLoadedMsg:
		m.histItems = msg.Prompts
		m.histIdx = -1
		return m, nil

	case TypingTickMsg:
		if !m.revealing {
			return m, nil
		}
		m.revealLen += revealStep
		if m.revealLen >= m.lastAssistantLen() {
			m.revealing = false
		}
		m.refreshViewport()
		if m.revealing {
			return m, TypingTickCmd()
		}
		return m, LoadHistoryCmd(m.deps.History)
	}

	// Delegate remaining messages to the focused widgets.
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if key.Matches(msg, m.keys.ToggleFocus) && !m.filtering {
		if m.focus == focusComposer {
			m.focus = focusSidebar
			m.textarea.Blur()
		} else {
			m.focus = focusComposer
			m.textarea.Focus()
		}
		return m, nil
	}

	if m.focus == focusSidebar {
		return m.handleSidebarKey(msg)
	}
	return m.handleComposerKey(msg)
}

func (m *Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering {
		switch msg.Type {
		case tea.KeyEscape:
			m.filtering = false
			m.sidebar.SetFilter("")
		case tea.KeyEnter:
			m.filtering = false
		case tea.KeyBackspace:
			// Trim by rune, not byte, so multi-byte input survives.
			if runes := []rune(m.sidebar.Filter()); len(runes) > 0 {
				m.sidebar.SetFilter(string(runes[:len(runes)-1]))
			}
		case tea.KeyRunes:
			m.sidebar.SetFilter(m.sidebar.Filter() + string(msg.Runes))
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.sidebar.CursorUp()

	case key.Matches(msg, m.keys.Down):
		m.sidebar.CursorDown()

	case key.Matches(msg, m.keys.Select):
		if selected, ok := m.sidebar.Selected(); ok && selected.ID != m.currentID {
			return m, SwitchSessionCmd(m.deps.Coordinator, selected.ID)
		}

	case key.Matches(msg, m.keys.NewSession):
		return m, CreateSessionCmd(m.deps.Backend, "")

	case key.Matches(msg, m.keys.Delete):
		if selected, ok := m.sidebar.Selected(); ok {
			return m, DeleteSessionCmd(m.deps.Backend, selected.ID)
		}

	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
	}
	return m, nil
}

func (m *Model) handleComposerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		return m, m.submit()

	case tea.KeyUp:
		if m.textarea.Value() == "" || m.histIdx >= 0 {
			m.browseHistory(1)
			return m, nil
		}

	case tea.KeyDown:
		if m.histIdx >= 0 {
			m.browseHistory(-1)
			return m, nil
		}

	case tea.KeyRunes:
		// On an empty conversation, 1-4 pick an example prompt.
		if len(m.entries) == 0 && m.textarea.Value() == "" && len(msg.Runes) == 1 {
			if idx := int(msg.Runes[0] - '1'); idx >= 0 && idx < len(components.ExamplePrompts) {
				m.textarea.SetValue(components.ExamplePrompts[idx].Prompt)
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// submit sends the composed prompt.
func (m *Model) submit() tea.Cmd {
	prompt := strings.TrimSpace(m.textarea.Value())
	if prompt == "" || m.generating {
		return nil
	}

	m.textarea.Reset()
	m.histIdx = -1
	m.generating = true

	m.deps.State.Append(model.NewUserEntry(prompt))
	m.setEntries(m.deps.State.Get())

	return SubmitPromptCmd(m.deps.Backend, m.deps.History, prompt, m.currentID, m.params)
}

// browseHistory steps through recalled prompts; direction 1 goes older.
func (m *Model) browseHistory(direction int) {
	if len(m.histItems) == 0 {
		return
	}

	next := m.histIdx + direction
	if next < -1 {
		next = -1
	}
	if next >= len(m.histItems) {
		next = len(m.histItems) - 1
	}
	m.histIdx = next

	if m.histIdx == -1 {
		m.textarea.Reset()
		return
	}
	m.textarea.SetValue(m.histItems[m.histIdx])
}

// =============================================================================
// LAYOUT AND REVEAL
// =============================================================================

// revealStep is how many characters each typing tick uncovers.
const revealStep = 6

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.ready = true

	sidebarWidth := m.deps.Config.UI.SidebarWidth
	mainWidth := width - sidebarWidth - 2
	if mainWidth < 20 {
		mainWidth = 20
	}

	m.sidebar.SetSize(sidebarWidth, height-2)
	m.renderer.SetWidth(mainWidth)
	m.viewport.Width = mainWidth
	m.viewport.Height = height - m.textarea.Height() - 4
	m.textarea.SetWidth(mainWidth)

	m.refreshViewport()
}

func (m *Model) startReveal() tea.Cmd {
	if m.lastAssistantLen() == 0 {
		return nil
	}
	m.revealing = true
	m.revealLen = 0
	m.refreshViewport()
	return TypingTickCmd()
}

// lastAssistantLen returns the content length of the newest assistant
// entry, the one the typing effect reveals.
func (m *Model) lastAssistantLen() int {
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].Kind == model.EntryAssistant {
			if exp := m.entries[i].Experiment; exp != nil {
				if best := exp.BestVariant(); best != nil {
					return len([]rune(best.Content))
				}
			}
			return len([]rune(m.entries[i].Text))
		}
	}
	return 0
}
