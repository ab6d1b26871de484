// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/promptlab-tui/internal/model"
	"github.com/jeranaias/promptlab-tui/internal/state"
)

// fakeBackend scripts the two calls a switch makes.
type fakeBackend struct {
	setCurrentErr  error
	experimentsErr error
	experiments    []model.Experiment

	setCurrentCalls atomic.Int32
	fetchCalls      atomic.Int32
	lastSessionID   string

	// blockSetCurrent, when non-nil, holds SetCurrentSession until closed.
	blockSetCurrent chan struct{}
}

func (f *fakeBackend) SetCurrentSession(_ context.Context, sessionID string) error {
	f.setCurrentCalls.Add(1)
	f.lastSessionID = sessionID
	if f.blockSetCurrent != nil {
		<-f.blockSetCurrent
	}
	return f.setCurrentErr
}

func (f *fakeBackend) RefetchExperiments(_ context.Context, sessionID string) ([]model.Experiment, error) {
	f.fetchCalls.Add(1)
	if f.experimentsErr != nil {
		return nil, f.experimentsErr
	}
	return f.experiments, nil
}

func TestSwitchEmptySessionIDIsNoOp(t *testing.T) {
	backend := &fakeBackend{}
	coord := NewCoordinator(backend, state.NewStore())

	result, err := coord.Switch(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, int32(0), backend.setCurrentCalls.Load())
}

func TestSwitchSuccessReplacesState(t *testing.T) {
	backend := &fakeBackend{
		experiments: []model.Experiment{
			{ID: "e1", Prompt: "first", Responses: []model.Variant{{Content: "a"}}},
			{ID: "e2", Prompt: "second", Responses: []model.Variant{{Content: "b"}}},
		},
	}
	st := state.NewStore()
	st.Append(model.NewUserEntry("stale entry from previous session"))

	coord := NewCoordinator(backend, st)

	result, err := coord.Switch(context.Background(), "s1")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "s1", result.SessionID)
	assert.Equal(t, "s1", backend.lastSessionID)
	require.Len(t, result.Experiments, 2)

	// Two turns per experiment, nothing of the old conversation left.
	entries := st.Get()
	require.Len(t, entries, 4)
	assert.Equal(t, model.EntryUser, entries[0].Kind)
	assert.Equal(t, "first", entries[0].Text)
	assert.Equal(t, model.EntryAssistant, entries[1].Kind)
	assert.Equal(t, "e2", entries[3].Experiment.ID)
	assert.Equal(t, entries, result.Entries)

	assert.False(t, coord.Switching(), "guard released after success")
}

func TestSwitchWhileSwitchingIsDropped(t *testing.T) {
	backend := &fakeBackend{blockSetCurrent: make(chan struct{})}
	coord := NewCoordinator(backend, state.NewStore())

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		_, _ = coord.Switch(context.Background(), "s1")
	}()

	waitUntil(t, func() bool { return coord.Switching() })

	result, err := coord.Switch(context.Background(), "s2")
	require.NoError(t, err)
	assert.Nil(t, result, "concurrent switch is a no-op")
	assert.Equal(t, int32(1), backend.setCurrentCalls.Load())

	close(backend.blockSetCurrent)
	<-firstDone
	assert.Equal(t, "s1", backend.lastSessionID)
}

func TestSwitchFailedActivationLeavesStateUntouched(t *testing.T) {
	backend := &fakeBackend{setCurrentErr: errors.New("backend down")}
	st := state.NewStore()
	st.Append(model.NewUserEntry("keep me"))

	coord := NewCoordinator(backend, st)

	result, err := coord.Switch(context.Background(), "s1")
	require.Error(t, err)
	assert.Nil(t, result)

	entries := st.Get()
	require.Len(t, entries, 1)
	assert.Equal(t, "keep me", entries[0].Text)
	assert.Equal(t, int32(0), backend.fetchCalls.Load(), "no fetch after a failed activation")
	assert.False(t, coord.Switching(), "guard released after failure")
}

func TestSwitchFailedFetchLeavesStateCleared(t *testing.T) {
	backend := &fakeBackend{experimentsErr: errors.New("fetch failed")}
	st := state.NewStore()
	st.Append(model.NewUserEntry("old conversation"))

	coord := NewCoordinator(backend, st)

	_, err := coord.Switch(context.Background(), "s1")
	require.Error(t, err)
	assert.Equal(t, 0, st.Len(), "state stays cleared, no rollback")
	assert.False(t, coord.Switching())

	// The coordinator is usable again after the failure.
	backend.experimentsErr = nil
	result, err := coord.Switch(context.Background(), "s2")
	require.NoError(t, err)
	require.NotNil(t, result)
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never became true")
}
