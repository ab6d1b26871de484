// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/promptlab-tui/internal/api"
	"github.com/jeranaias/promptlab-tui/internal/model"
	"github.com/jeranaias/promptlab-tui/internal/offline"
	"github.com/jeranaias/promptlab-tui/internal/query"
)

func newTestService(t *testing.T, handler http.Handler) (*Service, *query.Store) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := api.NewClient(server.URL, offline.NewMonitor())
	t.Cleanup(client.Close)
	store := query.NewStore(client)
	return NewService(store), store
}

func TestListSessionsSortsNewestFirst(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sessions", r.URL.Path)
		fmt.Fprint(w, `{"data":[
			{"id":"old","title":"Old","created_at":"2025-01-01T00:00:00Z"},
			{"id":"new","title":"New","created_at":"2025-06-01T00:00:00Z"}
		]}`)
	}))

	sessions, err := svc.ListSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "new", sessions[0].ID)
	assert.Equal(t, "old", sessions[1].ID)
}

func TestCreateSessionInvalidatesList(t *testing.T) {
	var listHits int
	svc, store := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			listHits++
			fmt.Fprint(w, `{"data":[]}`)
		case r.Method == http.MethodPost:
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "My Session", body["title"])
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"data":{"id":"s1","title":"My Session"}}`)
		}
	}))

	_, err := svc.ListSessions(context.Background())
	require.NoError(t, err)
	require.True(t, store.Cached(KeySessions))

	created, err := svc.CreateSession(context.Background(), "My Session")
	require.NoError(t, err)
	assert.Equal(t, "s1", created.ID)
	assert.False(t, store.Cached(KeySessions))

	_, err = svc.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, listHits, "list refetches after invalidation")
}

func TestSetCurrentSession(t *testing.T) {
	var gotMethod, gotPath string
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, svc.SetCurrentSession(context.Background(), "abc-123"))
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/sessions/abc-123/current", gotPath)
}

func TestCurrentSession(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sessions/current", r.URL.Path)
		fmt.Fprint(w, `{"data":{"id":"cur","title":"Active"}}`)
	}))

	current, err := svc.CurrentSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cur", current.ID)
}

func TestDeleteSession(t *testing.T) {
	var gotPath string
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, svc.DeleteSession(context.Background(), "gone"))
	assert.Equal(t, "/sessions/gone", gotPath)
}

func TestRefetchExperimentsAlwaysHitsNetwork(t *testing.T) {
	var hits int
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		assert.Equal(t, "/experiments/s1/sessions", r.URL.Path)
		fmt.Fprint(w, `{"data":[{"id":"e1","prompt":"p"}]}`)
	}))

	for i := 0; i < 2; i++ {
		experiments, err := svc.RefetchExperiments(context.Background(), "s1")
		require.NoError(t, err)
		require.Len(t, experiments, 1)
	}
	assert.Equal(t, 2, hits)
}

func TestCreateExperiment(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/experiments", r.URL.Path)

		var body struct {
			Prompt     string           `json:"prompt"`
			Parameters model.Parameters `json:"parameters"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "explain goroutines", body.Prompt)
		assert.InDelta(t, 0.7, body.Parameters.Temperature, 1e-9)

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"experiment":{
			"id":"e7","prompt":"explain goroutines",
			"responses":[{"content":"A goroutine is...","scores":{"completeness":4.5,"coherence":4,"clarity":5,"relevance":4.5}}]
		}}`)
	}))

	exp, err := svc.CreateExperiment(context.Background(), "explain goroutines", model.DefaultParameters())
	require.NoError(t, err)
	assert.Equal(t, "e7", exp.ID)
	require.Len(t, exp.Responses, 1)

	best := exp.BestVariant()
	require.NotNil(t, best)
	assert.InDelta(t, 4.5, best.Scores.Average(), 1e-9)
}
