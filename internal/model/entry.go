// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ENTRY KIND
// =============================================================================

// EntryKind identifies who produced a conversation entry.
type EntryKind string

const (
	EntryUser      EntryKind = "user"
	EntryAssistant EntryKind = "assistant"
)

// String returns the string representation of the kind.
func (k EntryKind) String() string {
	return string(k)
}

// DisplayName returns a human-readable name for the kind.
func (k EntryKind) DisplayName() string {
	switch k {
	case EntryUser:
		return "You"
	case EntryAssistant:
		return "Gen AI"
	default:
		return string(k)
	}
}

// =============================================================================
// ENTRY TYPE
// =============================================================================

// Entry is one element of the displayed conversation: either a user
// message (Text set) or an assistant experiment (Experiment set).
// Entries preserve chronological insertion order within the shared
// experiment state.
type Entry struct {
	ID        string    `json:"id"`
	Kind      EntryKind `json:"sender"`
	Text      string    `json:"text,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	// Experiment is set for assistant entries.
	Experiment *Experiment `json:"experiment,omitempty"`
}

// NewUserEntry creates a user message entry with a generated ID.
func NewUserEntry(text string) Entry {
	return Entry{
		ID:        uuid.New().String(),
		Kind:      EntryUser,
		Text:      text,
		Timestamp: time.Now(),
	}
}

// NewExperimentEntry creates an assistant entry wrapping an experiment.
// The entry reuses the experiment's identity so that deleting the
// experiment removes the entry too.
func NewExperimentEntry(exp Experiment) Entry {
	return Entry{
		ID:         exp.ID,
		Kind:       EntryAssistant,
		Timestamp:  exp.CreatedAt,
		Experiment: &exp,
	}
}

// Preview returns a short display preview of the entry content.
func (e Entry) Preview(maxLen int) string {
	if e.Kind == EntryUser {
		return previewText(e.Text, maxLen)
	}
	if e.Experiment != nil {
		return e.Experiment.Preview(maxLen)
	}
	return ""
}

// IsEmpty reports whether the entry carries no displayable content.
func (e Entry) IsEmpty() bool {
	return e.Text == "" && e.Experiment == nil
}

// =============================================================================
// CONVERSIONS
// =============================================================================

// EntriesFromExperiments expands a fetched experiment list into the
// conversation entries it renders as: a user turn for each prompt
// followed by the experiment's assistant turn. Order follows the input
// list, which the backend returns chronologically.
func EntriesFromExperiments(experiments []Experiment) []Entry {
	entries := make([]Entry, 0, len(experiments)*2)
	for _, exp := range experiments {
		entries = append(entries, Entry{
			ID:        exp.ID + ":prompt",
			Kind:      EntryUser,
			Text:      exp.Prompt,
			Timestamp: exp.CreatedAt,
		})
		entries = append(entries, NewExperimentEntry(exp))
	}
	return entries
}
