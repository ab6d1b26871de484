// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"testing"
	"time"
)

// =============================================================================
// SESSION TESTS
// =============================================================================

func TestSession_DisplayTitle(t *testing.T) {
	s := Session{Title: "Drafting a cover letter"}
	if got := s.DisplayTitle(); got != "Drafting a cover letter" {
		t.Errorf("DisplayTitle = %q", got)
	}

	empty := Session{Title: "   "}
	if got := empty.DisplayTitle(); got != "New Conversation" {
		t.Errorf("DisplayTitle for blank title = %q, want 'New Conversation'", got)
	}
}

func TestSession_MatchesQuery(t *testing.T) {
	s := Session{Title: "Recipe Ideas"}

	if !s.MatchesQuery("recipe") {
		t.Error("MatchesQuery should be case-insensitive")
	}
	if !s.MatchesQuery("  ") {
		t.Error("blank query should match everything")
	}
	if s.MatchesQuery("golang") {
		t.Error("unrelated query should not match")
	}
}

func TestSortSessionsByCreation(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sessions := []Session{
		{ID: "a", CreatedAt: base},
		{ID: "c", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "b", CreatedAt: base.Add(time.Hour)},
	}

	SortSessionsByCreation(sessions)

	want := []string{"c", "b", "a"}
	for i, id := range want {
		if sessions[i].ID != id {
			t.Errorf("sessions[%d].ID = %q, want %q", i, sessions[i].ID, id)
		}
	}
}

// =============================================================================
// EXPERIMENT TESTS
// =============================================================================

func TestScores_Average(t *testing.T) {
	s := Scores{Completeness: 4, Coherence: 3, Clarity: 5, Relevance: 4}
	if got := s.Average(); got != 4 {
		t.Errorf("Average = %v, want 4", got)
	}
}

func TestExperiment_BestVariant(t *testing.T) {
	exp := Experiment{
		Responses: []Variant{
			{Content: "first", Scores: Scores{Completeness: 2, Coherence: 2, Clarity: 2, Relevance: 2}},
			{Content: "second", Scores: Scores{Completeness: 5, Coherence: 4, Clarity: 5, Relevance: 4}},
			{Content: "third", Scores: Scores{Completeness: 3, Coherence: 3, Clarity: 3, Relevance: 3}},
		},
	}

	best := exp.BestVariant()
	if best == nil {
		t.Fatal("BestVariant returned nil")
	}
	if best.Content != "second" {
		t.Errorf("BestVariant content = %q, want 'second'", best.Content)
	}
}

func TestExperiment_BestVariantEmpty(t *testing.T) {
	exp := Experiment{}
	if exp.BestVariant() != nil {
		t.Error("BestVariant should be nil for experiment with no responses")
	}
}

func TestPreviewText(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		maxLen int
		want   string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"truncated", "hello world out there", 10, "hello w..."},
		{"collapses whitespace", "a\nb\t c", 10, "a b c"},
		{"zero keeps all", "hello", 0, "hello"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := previewText(tc.in, tc.maxLen); got != tc.want {
				t.Errorf("previewText(%q, %d) = %q, want %q", tc.in, tc.maxLen, got, tc.want)
			}
		})
	}
}

// =============================================================================
// ENTRY TESTS
// =============================================================================

func TestNewUserEntry(t *testing.T) {
	e := NewUserEntry("Hello")

	if e.Kind != EntryUser {
		t.Errorf("Kind = %q, want user", e.Kind)
	}
	if e.Text != "Hello" {
		t.Errorf("Text = %q, want 'Hello'", e.Text)
	}
	if e.ID == "" {
		t.Error("ID should be generated")
	}
}

func TestEntriesFromExperiments(t *testing.T) {
	experiments := []Experiment{
		{ID: "e1", Prompt: "first prompt", Responses: []Variant{{Content: "a"}}},
		{ID: "e2", Prompt: "second prompt", Responses: []Variant{{Content: "b"}, {Content: "c"}}},
	}

	entries := EntriesFromExperiments(experiments)

	if len(entries) != 4 {
		t.Fatalf("len(entries) = %d, want 4", len(entries))
	}

	// Alternating user/assistant turns, chronological order preserved.
	if entries[0].Kind != EntryUser || entries[0].Text != "first prompt" {
		t.Errorf("entries[0] = %+v, want user turn for first prompt", entries[0])
	}
	if entries[1].Kind != EntryAssistant || entries[1].Experiment == nil || entries[1].Experiment.ID != "e1" {
		t.Errorf("entries[1] should wrap experiment e1")
	}
	if entries[3].Experiment == nil || entries[3].Experiment.ID != "e2" {
		t.Errorf("entries[3] should wrap experiment e2")
	}
}

func TestEntriesFromExperiments_Empty(t *testing.T) {
	entries := EntriesFromExperiments(nil)
	if len(entries) != 0 {
		t.Errorf("len(entries) = %d, want 0", len(entries))
	}
}
