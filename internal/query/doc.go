// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package query layers a cached read / invalidating write façade over the
// backend API client.
//
// Reads go through a Query, which serves repeat fetches for its cache key
// from a TTL cache and only hits the network on a miss (or an explicit
// Refetch). Writes go through a Mutation, which performs the call and, on
// success only, invalidates the cache keys it declares so the next read
// observes the write:
//
//	sessions := query.NewQuery[[]model.Session](store, "sessions", "/sessions")
//	create := query.NewMutation[createIn, model.Session](store, http.MethodPost, "/sessions").
//		Invalidates("sessions")
//
// The façade adds no retry or replay behavior of its own; offline queueing
// and rate-limit handling live in the api client underneath.
package query
