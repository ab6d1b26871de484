// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"strconv"
	"sync"
	"time"
)

// =============================================================================
// NOTIFIER
// =============================================================================

// Notifier surfaces transient client conditions (rate-limit cooldowns) to
// the user. Notify returns a dismiss function the client calls once the
// condition clears, so a notification never outlives its retry.
type Notifier interface {
	Notify(message string, duration time.Duration) (dismiss func())
}

// noopNotifier is the default when no UI is attached.
type noopNotifier struct{}

func (noopNotifier) Notify(string, time.Duration) func() {
	return func() {}
}

// =============================================================================
// COOLDOWN MARKER
// =============================================================================

// cooldownMarker tracks the single active rate-limit backoff window.
// A 429 observed while a window is active extends the window and reuses
// the existing notification instead of creating a duplicate.
type cooldownMarker struct {
	mu      sync.Mutex
	active  bool
	until   time.Time
	dismiss func()
}

// begin opens the cooldown window, or extends it when already active.
// notify is invoked at most once per window, outside the lock.
func (m *cooldownMarker) begin(delay time.Duration, notify func() func()) {
	until := time.Now().Add(delay)

	m.mu.Lock()
	if m.active {
		if until.After(m.until) {
			m.until = until
		}
		m.mu.Unlock()
		return
	}
	m.active = true
	m.until = until
	m.mu.Unlock()

	dismiss := notify()

	m.mu.Lock()
	if m.active {
		m.dismiss = dismiss
		m.mu.Unlock()
		return
	}
	// Window already settled while the notification was being created.
	m.mu.Unlock()
	if dismiss != nil {
		dismiss()
	}
}

// settle closes the window and dismisses its notification. Idempotent;
// called whenever a deferred retry resolves, is canceled, or the client
// shuts down.
func (m *cooldownMarker) settle() {
	m.mu.Lock()
	if !m.active {
		m.mu.Unlock()
		return
	}
	m.active = false
	dismiss := m.dismiss
	m.dismiss = nil
	m.mu.Unlock()

	if dismiss != nil {
		dismiss()
	}
}

// isActive reports whether a cooldown window is open.
func (m *cooldownMarker) isActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// =============================================================================
// RETRY DELAY
// =============================================================================

// retryAfterBody matches the JSON fallback the backend uses when it
// cannot set a Retry-After header.
type retryAfterBody struct {
	RetryAfter int `json:"retryAfter"`
}

// retryDelay extracts the cooldown for a 429 response: Retry-After header
// in seconds, then a retryAfter body field, then the fallback.
func retryDelay(resp *Response, fallback time.Duration) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if secs, err := strconv.Atoi(header); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}

	var body retryAfterBody
	if err := resp.Decode(&body); err == nil && body.RetryAfter > 0 {
		return time.Duration(body.RetryAfter) * time.Second
	}

	return fallback
}
