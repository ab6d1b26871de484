// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"net/http"
	"net/http/httptest"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/promptlab-tui/internal/api"
	"github.com/jeranaias/promptlab-tui/internal/backend"
	"github.com/jeranaias/promptlab-tui/internal/config"
	"github.com/jeranaias/promptlab-tui/internal/model"
	"github.com/jeranaias/promptlab-tui/internal/offline"
	"github.com/jeranaias/promptlab-tui/internal/query"
	"github.com/jeranaias/promptlab-tui/internal/session"
	"github.com/jeranaias/promptlab-tui/internal/state"
	"github.com/jeranaias/promptlab-tui/internal/ui/components"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))
	t.Cleanup(server.Close)

	monitor := offline.NewMonitor()
	client := api.NewClient(server.URL, monitor)
	t.Cleanup(client.Close)

	store := query.NewStore(client)
	svc := backend.NewService(store)
	st := state.NewStore()

	m := New(Deps{
		Config:      config.Default(),
		Client:      client,
		Backend:     svc,
		Coordinator: session.NewCoordinator(svc, st),
		State:       st,
		Monitor:     monitor,
		History:     nil,
		Toasts:      components.NewToastManager(),
	})
	m.resize(100, 30)
	return m
}

func TestSessionsLoadedPopulatesSidebar(t *testing.T) {
	m := newTestModel(t)

	sessions := []model.Session{{ID: "s1", Title: "One"}, {ID: "s2", Title: "Two"}}
	m.Update(SessionsLoadedMsg{Sessions: sessions})

	if m.sidebar.Count() != 2 {
		t.Errorf("sidebar count = %d, want 2", m.sidebar.Count())
	}
}

func TestSwitchResultInstallsEntries(t *testing.T) {
	m := newTestModel(t)

	exp := model.Experiment{ID: "e1", Prompt: "hi", Responses: []model.Variant{{Content: "x"}}}
	entries := model.EntriesFromExperiments([]model.Experiment{exp})
	m.Update(SessionSwitchedMsg{Result: &session.SwitchResult{
		SessionID: "s1",
		Entries:   entries,
	}})

	if m.currentID != "s1" {
		t.Errorf("currentID = %q, want s1", m.currentID)
	}
	if len(m.entries) != 2 {
		t.Errorf("entries = %d, want 2", len(m.entries))
	}
}

func TestDroppedSwitchLeavesModelAlone(t *testing.T) {
	m := newTestModel(t)
	m.currentID = "s1"

	m.Update(SessionSwitchedMsg{Result: nil})

	if m.currentID != "s1" {
		t.Errorf("dropped switch changed currentID to %q", m.currentID)
	}
}

func TestExperimentCreatedAppendsEntry(t *testing.T) {
	m := newTestModel(t)
	m.deps.Config.UI.TypingEffect = false
	m.generating = true

	exp := model.Experiment{ID: "e1", Prompt: "p", Responses: []model.Variant{{Content: "answer"}}}
	m.Update(ExperimentCreatedMsg{Experiment: exp})

	if m.generating {
		t.Error("generating flag not cleared")
	}
	if len(m.entries) != 1 || m.entries[0].Experiment == nil {
		t.Fatalf("experiment entry missing: %v", m.entries)
	}
}

func TestBrowseHistory(t *testing.T) {
	m := newTestModel(t)
	m.Update(HistoryLoadedMsg{Prompts: []string{"newest", "older", "oldest"}})

	m.browseHistory(1)
	if got := m.textarea.Value(); got != "newest" {
		t.Errorf("first recall = %q, want newest", got)
	}
	m.browseHistory(1)
	if got := m.textarea.Value(); got != "older" {
		t.Errorf("second recall = %q, want older", got)
	}
	m.browseHistory(-1)
	if got := m.textarea.Value(); got != "newest" {
		t.Errorf("back down = %q, want newest", got)
	}
	m.browseHistory(-1)
	if got := m.textarea.Value(); got != "" {
		t.Errorf("exiting history should clear composer, got %q", got)
	}
}

func TestSubmitGuards(t *testing.T) {
	m := newTestModel(t)

	m.textarea.SetValue("   ")
	if cmd := m.submit(); cmd != nil {
		t.Error("blank prompt should not submit")
	}

	m.textarea.SetValue("real prompt")
	m.generating = true
	if cmd := m.submit(); cmd != nil {
		t.Error("submit while generating should be ignored")
	}

	m.generating = false
	m.textarea.SetValue("real prompt")
	if cmd := m.submit(); cmd == nil {
		t.Error("valid prompt should produce a command")
	}
	if len(m.entries) != 1 || m.entries[0].Kind != model.EntryUser {
		t.Errorf("user entry not appended: %v", m.entries)
	}
	if m.textarea.Value() != "" {
		t.Error("composer should reset after submit")
	}
}

func TestFilterBackspaceTrimsWholeRune(t *testing.T) {
	m := newTestModel(t)
	m.focus = focusSidebar
	m.filtering = true
	m.sidebar.SetFilter("日本語")

	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if got := m.sidebar.Filter(); got != "日本" {
		t.Errorf("filter after backspace = %q, want 日本", got)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if got := m.sidebar.Filter(); got != "" {
		t.Errorf("filter not emptied, got %q", got)
	}

	// A backspace on an empty filter stays a no-op.
	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if got := m.sidebar.Filter(); got != "" {
		t.Errorf("backspace on empty filter produced %q", got)
	}
}
