// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package query

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/jeranaias/promptlab-tui/internal/api"
)

// Cache tuning. Entries live until a mutation invalidates them or the TTL
// lapses, whichever comes first.
const (
	// DefaultTTL is the cache lifetime for query results.
	DefaultTTL = 5 * time.Minute

	// purgeInterval is how often expired entries are swept.
	purgeInterval = 10 * time.Minute
)

// Store binds the API client to a shared response cache. One Store serves
// all queries and mutations of the application; cache keys are the unit of
// invalidation between them.
type Store struct {
	client *api.Client
	cache  *gocache.Cache
	ttl    time.Duration
}

// NewStore creates a store over the given client.
func NewStore(client *api.Client) *Store {
	return &Store{
		client: client,
		cache:  gocache.New(DefaultTTL, purgeInterval),
		ttl:    DefaultTTL,
	}
}

// WithTTL overrides the cache lifetime for subsequently stored results.
func (s *Store) WithTTL(ttl time.Duration) *Store {
	if ttl > 0 {
		s.ttl = ttl
	}
	return s
}

// Client exposes the underlying API client.
func (s *Store) Client() *api.Client {
	return s.client
}

// Invalidate drops the given cache keys, in order.
func (s *Store) Invalidate(keys ...string) {
	for _, key := range keys {
		s.cache.Delete(key)
	}
}

// InvalidateAll drops every cached result.
func (s *Store) InvalidateAll() {
	s.cache.Flush()
}

// Cached reports whether a result is currently cached under key.
func (s *Store) Cached(key string) bool {
	_, found := s.cache.Get(key)
	return found
}

func (s *Store) get(key string) (any, bool) {
	return s.cache.Get(key)
}

func (s *Store) put(key string, value any) {
	s.cache.Set(key, value, s.ttl)
}
