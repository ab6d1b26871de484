// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package query

import (
	"context"
	"errors"
	"net/url"
)

// ErrDisabled is returned by Fetch on a query that has been disabled;
// disabled queries only go to the network through an explicit Refetch.
var ErrDisabled = errors.New("query: disabled")

// =============================================================================
// QUERY
// =============================================================================

// Query is a cached read against one endpoint. The cache key identifies
// the result for invalidation by mutations; two queries sharing a key
// share a cached value.
type Query[T any] struct {
	store   *Store
	key     string
	path    string
	params  url.Values
	enabled bool
}

// NewQuery builds a query for the given cache key and endpoint path.
// Queries start enabled.
func NewQuery[T any](store *Store, key, path string) *Query[T] {
	return &Query[T]{
		store:   store,
		key:     key,
		path:    path,
		enabled: true,
	}
}

// WithParams sets the query string parameters.
func (q *Query[T]) WithParams(params url.Values) *Query[T] {
	q.params = params
	return q
}

// WithEnabled toggles automatic fetching. A disabled query still serves
// Refetch; Fetch fails with ErrDisabled.
func (q *Query[T]) WithEnabled(enabled bool) *Query[T] {
	q.enabled = enabled
	return q
}

// Key returns the cache key.
func (q *Query[T]) Key() string {
	return q.key
}

// Fetch returns the cached result when present, hitting the network only
// on a miss.
func (q *Query[T]) Fetch(ctx context.Context) (T, error) {
	var zero T
	if !q.enabled {
		return zero, ErrDisabled
	}
	if cached, found := q.store.get(q.key); found {
		if value, ok := cached.(T); ok {
			return value, nil
		}
		// A different type was stored under this key; treat as a miss.
		q.store.Invalidate(q.key)
	}
	return q.fetch(ctx, q.path)
}

// Refetch bypasses the cache, always going to the network, and refreshes
// the cached value on success. Works on disabled queries.
func (q *Query[T]) Refetch(ctx context.Context) (T, error) {
	return q.fetch(ctx, q.path)
}

// FetchPath fetches from a dynamic path under this query's cache key,
// bypassing the cache the way Refetch does. Used for endpoints addressed
// by a runtime id.
func (q *Query[T]) FetchPath(ctx context.Context, path string) (T, error) {
	return q.fetch(ctx, path)
}

func (q *Query[T]) fetch(ctx context.Context, path string) (T, error) {
	var result T

	resp, err := q.store.client.Get(ctx, path, q.params)
	if err != nil {
		return result, err
	}
	if err := resp.DecodeData(&result); err != nil {
		return result, err
	}

	q.store.put(q.key, result)
	return result, nil
}
