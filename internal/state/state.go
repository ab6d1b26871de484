// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package state holds the active conversation's entries, shared between
// the network layer and the UI. The store is constructed once in main and
// injected; there is no package-level instance.
package state

import (
	"sync"

	"github.com/jeranaias/promptlab-tui/internal/model"
)

// Store is the per-process holder of the active conversation. All access
// is copy-in/copy-out, so callers can never mutate the shared slice
// through an alias.
type Store struct {
	mu      sync.RWMutex
	entries []model.Entry
	watches []func([]model.Entry)
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Get returns a copy of the current entries.
func (s *Store) Get() []model.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneEntries(s.entries)
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Set replaces the conversation wholesale. A nil slice clears it.
func (s *Store) Set(entries []model.Entry) {
	s.mu.Lock()
	s.entries = cloneEntries(entries)
	snapshot := cloneEntries(s.entries)
	watches := s.watches
	s.mu.Unlock()

	for _, fn := range watches {
		fn(snapshot)
	}
}

// Clear drops every entry.
func (s *Store) Clear() {
	s.Set(nil)
}

// Append adds entries to the end of the conversation.
func (s *Store) Append(entries ...model.Entry) {
	s.mu.Lock()
	s.entries = append(s.entries, entries...)
	snapshot := cloneEntries(s.entries)
	watches := s.watches
	s.mu.Unlock()

	for _, fn := range watches {
		fn(snapshot)
	}
}

// OnChange registers a callback invoked with a snapshot after every
// change. Callbacks run on the mutating goroutine; keep them short.
func (s *Store) OnChange(fn func([]model.Entry)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watches = append(s.watches, fn)
}

func cloneEntries(entries []model.Entry) []model.Entry {
	if entries == nil {
		return nil
	}
	out := make([]model.Entry, len(entries))
	copy(out, entries)
	return out
}
