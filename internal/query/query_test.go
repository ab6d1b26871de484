// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package query

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/promptlab-tui/internal/api"
	"github.com/jeranaias/promptlab-tui/internal/offline"
)

type note struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func newTestStore(t *testing.T, handler http.Handler) *Store {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := api.NewClient(server.URL, offline.NewMonitor())
	t.Cleanup(client.Close)
	return NewStore(client)
}

func TestQueryServesCacheOnRepeatFetch(t *testing.T) {
	var hits atomic.Int32
	store := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `{"data":[{"id":"n1","title":"First"}]}`)
	}))

	q := NewQuery[[]note](store, "notes", "/notes")

	first, err := q.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "n1", first[0].ID)

	second, err := q.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), hits.Load(), "repeat fetch must not hit the network")
}

func TestQueryRefetchBypassesCache(t *testing.T) {
	var hits atomic.Int32
	store := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"data":[{"id":"n%d"}]}`, hits.Add(1))
	}))

	q := NewQuery[[]note](store, "notes", "/notes")

	first, err := q.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "n1", first[0].ID)

	refreshed, err := q.Refetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "n2", refreshed[0].ID)

	// The refetch refreshed the cached value.
	cached, err := q.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "n2", cached[0].ID)
	assert.Equal(t, int32(2), hits.Load())
}

func TestQueryDisabled(t *testing.T) {
	var hits atomic.Int32
	store := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `{"data":[]}`)
	}))

	q := NewQuery[[]note](store, "notes", "/notes").WithEnabled(false)

	_, err := q.Fetch(context.Background())
	require.ErrorIs(t, err, ErrDisabled)
	assert.Equal(t, int32(0), hits.Load())

	// Manual refetch still works on a disabled query.
	_, err = q.Refetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestQueryFetchPath(t *testing.T) {
	store := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"data":[{"id":%q}]}`, r.URL.Path)
	}))

	q := NewQuery[[]note](store, "notes", "/notes")

	result, err := q.FetchPath(context.Background(), "/notes/abc")
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "/notes/abc", result[0].ID)
}

func TestQueryDirectPayloadWithoutEnvelope(t *testing.T) {
	store := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id":"n1","title":"bare"}]`)
	}))

	q := NewQuery[[]note](store, "notes", "/notes")

	result, err := q.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "bare", result[0].Title)
}

func TestMutationInvalidatesDeclaredKeysOnSuccess(t *testing.T) {
	store := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			fmt.Fprint(w, `{"data":[]}`)
		case http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"data":{"id":"n9","title":"created"}}`)
		}
	}))

	notes := NewQuery[[]note](store, "notes", "/notes")
	other := NewQuery[[]note](store, "other", "/other")

	_, err := notes.Fetch(context.Background())
	require.NoError(t, err)
	_, err = other.Fetch(context.Background())
	require.NoError(t, err)
	require.True(t, store.Cached("notes"))
	require.True(t, store.Cached("other"))

	create := NewMutation[note, note](store, http.MethodPost, "/notes").
		Invalidates("notes")

	created, err := create.Call(context.Background(), note{Title: "created"})
	require.NoError(t, err)
	assert.Equal(t, "n9", created.ID)

	assert.False(t, store.Cached("notes"), "declared key is invalidated")
	assert.True(t, store.Cached("other"), "undeclared keys survive")
}

func TestMutationFailureInvalidatesNothing(t *testing.T) {
	store := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			fmt.Fprint(w, `{"data":[]}`)
		case http.MethodPost:
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":{"code":"invalid","message":"bad input"}}`)
		}
	}))

	notes := NewQuery[[]note](store, "notes", "/notes")
	_, err := notes.Fetch(context.Background())
	require.NoError(t, err)

	create := NewMutation[note, note](store, http.MethodPost, "/notes").
		Invalidates("notes")

	_, err = create.Call(context.Background(), note{})
	require.Error(t, err)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)

	assert.True(t, store.Cached("notes"), "failed mutation leaves the cache intact")
}

func TestMutationPathFuncAndDelete(t *testing.T) {
	var gotPath, gotMethod string
	store := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		if r.ContentLength > 0 {
			t.Error("DELETE must not carry a body")
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	del := NewMutation[string, struct{}](store, http.MethodDelete, "").
		WithPathFunc(func(id string) string { return "/notes/" + id }).
		Invalidates("notes")

	_, err := del.Call(context.Background(), "n1")
	require.NoError(t, err)
	assert.Equal(t, "/notes/n1", gotPath)
	assert.Equal(t, http.MethodDelete, gotMethod)
}
