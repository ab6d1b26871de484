// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"sort"
	"strings"
	"time"
)

// =============================================================================
// SESSION TYPE
// =============================================================================

// Session identifies one conversation thread on the backend.
// Exactly one session is marked current at the backend at any time; the
// current flag itself lives server-side and is transferred via the
// session-switch protocol, so it is not a field here.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayTitle returns the session title, or a placeholder when the
// server has not populated one yet.
func (s Session) DisplayTitle() string {
	title := strings.TrimSpace(s.Title)
	if title == "" {
		return "New Conversation"
	}
	return title
}

// MatchesQuery reports whether the session title contains the query,
// case-insensitively. Used by the sidebar search box.
func (s Session) MatchesQuery(query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s.DisplayTitle()), strings.ToLower(query))
}

// SortSessionsByCreation orders sessions newest-first, in place.
func SortSessionsByCreation(sessions []Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
}
