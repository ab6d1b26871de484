// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package offline provides network reachability detection for the API client.
//
// The Monitor is the terminal-side analog of a browser's online/offline
// events: it holds the current reachability belief, lets interested parties
// subscribe to transitions, and optionally runs a background probe loop that
// keeps the belief current by dialing the backend host.
package offline

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrInvalidScheme is returned when a base endpoint URL is not http or https.
var ErrInvalidScheme = errors.New("only http and https schemes are allowed")

// =============================================================================
// MONITOR
// =============================================================================

// Monitor tracks network reachability with thread-safe access.
// Construct one per application instance and inject it into consumers;
// there is deliberately no package-level singleton.
type Monitor struct {
	mu     sync.RWMutex
	online bool
	subs   []func(online bool)
}

// NewMonitor creates a monitor that starts in the online state.
func NewMonitor() *Monitor {
	return &Monitor{online: true}
}

// Online returns the current reachability belief.
func (m *Monitor) Online() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// SetOnline updates the reachability state. Subscribers are notified only
// on actual transitions, outside the lock.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	subs := make([]func(bool), len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(online)
	}
}

// Subscribe registers a callback invoked on every reachability transition.
// Callbacks run synchronously on the goroutine that triggered the
// transition; long-running work should be handed off.
func (m *Monitor) Subscribe(fn func(online bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

// =============================================================================
// PROBING
// =============================================================================

// DefaultProbeInterval is how often the probe loop re-checks reachability.
const DefaultProbeInterval = 5 * time.Second

// probeTimeout bounds a single reachability dial.
const probeTimeout = 3 * time.Second

// Probe runs a reachability loop against the given base endpoint until the
// context is canceled, updating the monitor on each check. Interval falls
// back to DefaultProbeInterval when zero.
func (m *Monitor) Probe(ctx context.Context, baseURL string, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultProbeInterval
	}

	host, err := dialTarget(baseURL)
	if err != nil {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		m.SetOnline(checkReachable(ctx, host))

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// checkReachable dials the host once with a bounded timeout.
func checkReachable(ctx context.Context, host string) bool {
	dialCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(dialCtx, "tcp", host)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// dialTarget extracts a host:port dial target from a base endpoint URL.
func dialTarget(baseURL string) (string, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}

	host := parsed.Hostname()
	if host == "" {
		return "", errors.New("no host in base endpoint")
	}

	port := parsed.Port()
	if port == "" {
		if strings.EqualFold(parsed.Scheme, "https") {
			port = "443"
		} else {
			port = "80"
		}
	}

	return net.JoinHostPort(host, port), nil
}

// =============================================================================
// URL VALIDATION
// =============================================================================

// ValidateBaseURL checks that a configured base endpoint is a usable
// http or https URL. Rejects file://, data:// and other schemes that
// must never reach the HTTP client.
func ValidateBaseURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return err
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return ErrInvalidScheme
	}

	if parsed.Hostname() == "" {
		return errors.New("base endpoint has no host")
	}

	return nil
}

// =============================================================================
// STATUS DISPLAY
// =============================================================================

// StatusBadge returns a formatted badge for the UI.
// Returns "[OFFLINE]" when offline, empty string otherwise.
func (m *Monitor) StatusBadge() string {
	if !m.Online() {
		return "[OFFLINE]"
	}
	return ""
}
