// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend exposes the PromptLab HTTP contract as typed
// operations over the query façade.
package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jeranaias/promptlab-tui/internal/model"
	"github.com/jeranaias/promptlab-tui/internal/query"
)

// Cache keys shared between reads and the mutations that invalidate them.
const (
	KeySessions       = "sessions"
	KeyCurrentSession = "current-session"
	KeyExperiments    = "experiments"
)

// createSessionInput is the POST /sessions body.
type createSessionInput struct {
	Title string `json:"title,omitempty"`
}

// createExperimentInput is the POST /experiments body.
type createExperimentInput struct {
	Prompt     string           `json:"prompt"`
	Parameters model.Parameters `json:"parameters"`
}

// createExperimentResponse matches the POST /experiments payload, which
// nests the created experiment under its own field rather than the usual
// data envelope.
type createExperimentResponse struct {
	Experiment model.Experiment `json:"experiment"`
}

// Service is the typed surface of the backend API. All resilience
// behavior (offline queueing, rate-limit retry) comes from the api
// client underneath the query store.
type Service struct {
	store *query.Store

	sessions    *query.Query[[]model.Session]
	current     *query.Query[model.Session]
	experiments *query.Query[[]model.Experiment]

	createSession    *query.Mutation[createSessionInput, model.Session]
	setCurrent       *query.Mutation[string, struct{}]
	deleteSession    *query.Mutation[string, struct{}]
	createExperiment *query.Mutation[createExperimentInput, createExperimentResponse]
}

// NewService wires the contract's reads and writes onto the store.
func NewService(store *query.Store) *Service {
	s := &Service{store: store}

	s.sessions = query.NewQuery[[]model.Session](store, KeySessions, "/sessions")
	s.current = query.NewQuery[model.Session](store, KeyCurrentSession, "/sessions/current")

	// Experiments are addressed per session at fetch time; the shared key
	// still gives mutations a handle to invalidate.
	s.experiments = query.NewQuery[[]model.Experiment](store, KeyExperiments, "").
		WithEnabled(false)

	s.createSession = query.NewMutation[createSessionInput, model.Session](
		store, http.MethodPost, "/sessions").
		Invalidates(KeySessions)

	s.setCurrent = query.NewMutation[string, struct{}](store, http.MethodPut, "").
		WithPathFunc(func(id string) string {
			return fmt.Sprintf("/sessions/%s/current", id)
		}).
		WithoutBody().
		Invalidates(KeyCurrentSession)

	s.deleteSession = query.NewMutation[string, struct{}](store, http.MethodDelete, "").
		WithPathFunc(func(id string) string {
			return "/sessions/" + id
		}).
		Invalidates(KeySessions, KeyExperiments)

	s.createExperiment = query.NewMutation[createExperimentInput, createExperimentResponse](
		store, http.MethodPost, "/experiments").
		Invalidates(KeyExperiments)

	return s
}

// ListSessions returns all sessions, newest first. Served from cache when
// warm.
func (s *Service) ListSessions(ctx context.Context) ([]model.Session, error) {
	sessions, err := s.sessions.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	model.SortSessionsByCreation(sessions)
	return sessions, nil
}

// RefetchSessions forces a network read of the session list.
func (s *Service) RefetchSessions(ctx context.Context) ([]model.Session, error) {
	sessions, err := s.sessions.Refetch(ctx)
	if err != nil {
		return nil, err
	}
	model.SortSessionsByCreation(sessions)
	return sessions, nil
}

// CreateSession creates a session with the given title.
func (s *Service) CreateSession(ctx context.Context, title string) (model.Session, error) {
	return s.createSession.Call(ctx, createSessionInput{Title: title})
}

// CurrentSession returns the session the backend considers active.
func (s *Service) CurrentSession(ctx context.Context) (model.Session, error) {
	return s.current.Fetch(ctx)
}

// SetCurrentSession marks the given session active on the backend.
func (s *Service) SetCurrentSession(ctx context.Context, sessionID string) error {
	_, err := s.setCurrent.Call(ctx, sessionID)
	return err
}

// DeleteSession removes a session.
func (s *Service) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := s.deleteSession.Call(ctx, sessionID)
	return err
}

// RefetchExperiments fetches a session's experiments straight from the
// network, refreshing the cache.
func (s *Service) RefetchExperiments(ctx context.Context, sessionID string) ([]model.Experiment, error) {
	path := fmt.Sprintf("/experiments/%s/sessions", sessionID)
	return s.experiments.FetchPath(ctx, path)
}

// CreateExperiment submits a prompt for generation and returns the
// resulting scored experiment.
func (s *Service) CreateExperiment(ctx context.Context, prompt string, params model.Parameters) (model.Experiment, error) {
	resp, err := s.createExperiment.Call(ctx, createExperimentInput{
		Prompt:     prompt,
		Parameters: params,
	})
	if err != nil {
		return model.Experiment{}, err
	}
	return resp.Experiment, nil
}
