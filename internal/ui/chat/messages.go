// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/promptlab-tui/internal/backend"
	"github.com/jeranaias/promptlab-tui/internal/history"
	"github.com/jeranaias/promptlab-tui/internal/model"
	"github.com/jeranaias/promptlab-tui/internal/session"
)

// requestTimeout bounds the UI-initiated calls that are not expected to
// park offline for long; parked requests are abandoned when it lapses.
const requestTimeout = 5 * time.Minute

// =============================================================================
// MESSAGES
// =============================================================================

// SessionsLoadedMsg delivers the session list.
type SessionsLoadedMsg struct {
	Sessions []model.Session
	Err      error
}

// CurrentSessionMsg delivers the backend's active session.
type CurrentSessionMsg struct {
	Session model.Session
	Err     error
}

// SessionCreatedMsg reports a created session.
type SessionCreatedMsg struct {
	Session model.Session
	Err     error
}

// SessionDeletedMsg reports a deleted session.
type SessionDeletedMsg struct {
	ID  string
	Err error
}

// SessionSwitchedMsg reports a finished (or dropped) switch.
type SessionSwitchedMsg struct {
	Result *session.SwitchResult
	Err    error
}

// ExperimentCreatedMsg delivers a generated experiment.
type ExperimentCreatedMsg struct {
	Experiment model.Experiment
	Err        error
}

// ConnectivityMsg reports an offline/online transition.
type ConnectivityMsg struct {
	Online bool
}

// HistoryLoadedMsg delivers recent prompts for composer recall.
type HistoryLoadedMsg struct {
	Prompts []string
}

// TypingTickMsg advances the reveal animation.
type TypingTickMsg struct{}

// =============================================================================
// COMMANDS
// =============================================================================

// LoadSessionsCmd fetches the session list.
func LoadSessionsCmd(svc *backend.Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		sessions, err := svc.ListSessions(ctx)
		return SessionsLoadedMsg{Sessions: sessions, Err: err}
	}
}

// LoadCurrentSessionCmd fetches the backend's active session.
func LoadCurrentSessionCmd(svc *backend.Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		current, err := svc.CurrentSession(ctx)
		return CurrentSessionMsg{Session: current, Err: err}
	}
}

// CreateSessionCmd creates a session.
func CreateSessionCmd(svc *backend.Service, title string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		created, err := svc.CreateSession(ctx, title)
		return SessionCreatedMsg{Session: created, Err: err}
	}
}

// DeleteSessionCmd deletes a session.
func DeleteSessionCmd(svc *backend.Service, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		err := svc.DeleteSession(ctx, id)
		return SessionDeletedMsg{ID: id, Err: err}
	}
}

// SwitchSessionCmd runs the switch protocol for the given session.
func SwitchSessionCmd(coord *session.Coordinator, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		result, err := coord.Switch(ctx, id)
		return SessionSwitchedMsg{Result: result, Err: err}
	}
}

// SubmitPromptCmd submits a prompt for generation and records it in the
// local history.
func SubmitPromptCmd(svc *backend.Service, hist *history.Store, prompt, sessionID string, params model.Parameters) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		// History is best-effort; generation proceeds regardless.
		if hist != nil {
			_ = hist.Add(ctx, prompt, sessionID)
		}

		exp, err := svc.CreateExperiment(ctx, prompt, params)
		return ExperimentCreatedMsg{Experiment: exp, Err: err}
	}
}

// LoadHistoryCmd loads recent prompts for up-arrow recall.
func LoadHistoryCmd(hist *history.Store) tea.Cmd {
	if hist == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		prompts, err := hist.Recent(ctx, 50)
		if err != nil {
			return HistoryLoadedMsg{}
		}
		texts := make([]string, len(prompts))
		for i, p := range prompts {
			texts[i] = p.Text
		}
		return HistoryLoadedMsg{Prompts: texts}
	}
}

// WaitConnectivityCmd blocks on the next reachability transition.
func WaitConnectivityCmd(ch <-chan bool) tea.Cmd {
	return func() tea.Msg {
		online, ok := <-ch
		if !ok {
			return nil
		}
		return ConnectivityMsg{Online: online}
	}
}

// TypingTickCmd paces the reveal animation.
func TypingTickCmd() tea.Cmd {
	return tea.Tick(30*time.Millisecond, func(time.Time) tea.Msg {
		return TypingTickMsg{}
	})
}
