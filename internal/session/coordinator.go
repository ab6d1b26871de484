// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session coordinates switching the active conversation session.
package session

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/jeranaias/promptlab-tui/internal/model"
	"github.com/jeranaias/promptlab-tui/internal/state"
)

// Backend is the slice of the API surface a switch needs.
type Backend interface {
	SetCurrentSession(ctx context.Context, sessionID string) error
	RefetchExperiments(ctx context.Context, sessionID string) ([]model.Experiment, error)
}

// SwitchResult reports a completed switch.
type SwitchResult struct {
	SessionID   string
	Experiments []model.Experiment
	Entries     []model.Entry
}

// =============================================================================
// COORDINATOR
// =============================================================================

// Coordinator serializes session switches. At most one switch runs at a
// time; a switch requested while one is in flight is dropped rather than
// queued, since the user has already moved on.
type Coordinator struct {
	backend   Backend
	state     *state.Store
	switching atomic.Bool
}

// NewCoordinator creates a coordinator over the given backend and shared
// state store.
func NewCoordinator(backend Backend, st *state.Store) *Coordinator {
	return &Coordinator{backend: backend, state: st}
}

// Switching reports whether a switch is currently in flight.
func (c *Coordinator) Switching() bool {
	return c.switching.Load()
}

// Switch makes sessionID the active session and loads its conversation
// into shared state. The sequence is strict: the backend is told first,
// then state is cleared, then the session's experiments are fetched and
// installed. A failure after the clear leaves state empty; there is no
// rollback to the previous conversation.
//
// An empty sessionID or a switch already in flight is a no-op returning
// (nil, nil).
func (c *Coordinator) Switch(ctx context.Context, sessionID string) (*SwitchResult, error) {
	if sessionID == "" {
		return nil, nil
	}
	if !c.switching.CompareAndSwap(false, true) {
		log.Printf("session switch to %s dropped: switch already in flight", sessionID)
		return nil, nil
	}
	defer c.switching.Store(false)

	if err := c.backend.SetCurrentSession(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("set current session: %w", err)
	}

	c.state.Clear()

	experiments, err := c.backend.RefetchExperiments(ctx, sessionID)
	if err != nil {
		// State stays cleared; the caller decides what to show.
		return nil, fmt.Errorf("load experiments for session %s: %w", sessionID, err)
	}

	entries := model.EntriesFromExperiments(experiments)
	c.state.Set(entries)

	return &SwitchResult{
		SessionID:   sessionID,
		Experiments: experiments,
		Entries:     entries,
	}, nil
}
