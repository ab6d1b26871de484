// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package query

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jeranaias/promptlab-tui/internal/api"
)

// =============================================================================
// MUTATION
// =============================================================================

// Mutation is a write against one endpoint. The endpoint is either a
// fixed path or a function of the input (for id-addressed resources).
// On success the mutation invalidates its declared cache keys, in order,
// before returning; a failed call invalidates nothing.
type Mutation[In, Out any] struct {
	store       *Store
	method      string
	path        string
	pathFn      func(In) string
	invalidates []string
	noBody      bool
}

// NewMutation builds a mutation for the given HTTP method and fixed path.
func NewMutation[In, Out any](store *Store, method, path string) *Mutation[In, Out] {
	return &Mutation[In, Out]{
		store:  store,
		method: method,
		path:   path,
	}
}

// WithPathFunc derives the endpoint from the input instead of the fixed
// path.
func (m *Mutation[In, Out]) WithPathFunc(fn func(In) string) *Mutation[In, Out] {
	m.pathFn = fn
	return m
}

// WithoutBody suppresses the request body. Inputs then only feed the
// path function.
func (m *Mutation[In, Out]) WithoutBody() *Mutation[In, Out] {
	m.noBody = true
	return m
}

// Invalidates declares the cache keys dropped after a successful call.
func (m *Mutation[In, Out]) Invalidates(keys ...string) *Mutation[In, Out] {
	m.invalidates = append(m.invalidates, keys...)
	return m
}

// Call performs the mutation. The returned value is decoded from the
// response payload; endpoints that respond with an empty body yield the
// zero Out.
func (m *Mutation[In, Out]) Call(ctx context.Context, input In) (Out, error) {
	var result Out

	path := m.path
	if m.pathFn != nil {
		path = m.pathFn(input)
	}

	req := api.NewRequest(m.method, path)
	if !m.noBody && m.method != http.MethodDelete {
		req.WithBody(input)
	}

	resp, err := m.store.client.Do(ctx, req)
	if err != nil {
		return result, err
	}

	if len(resp.Body) > 0 {
		if err := resp.DecodeData(&result); err != nil {
			return result, fmt.Errorf("mutation %s %s: %w", m.method, path, err)
		}
	}

	m.store.Invalidate(m.invalidates...)
	return result, nil
}
