// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package offline

import (
	"testing"
)

func TestMonitor_StartsOnline(t *testing.T) {
	m := NewMonitor()
	if !m.Online() {
		t.Error("new monitor should start online")
	}
}

func TestMonitor_SetOnline(t *testing.T) {
	m := NewMonitor()

	m.SetOnline(false)
	if m.Online() {
		t.Error("monitor should be offline after SetOnline(false)")
	}

	m.SetOnline(true)
	if !m.Online() {
		t.Error("monitor should be online after SetOnline(true)")
	}
}

func TestMonitor_SubscribeNotifiesOnTransition(t *testing.T) {
	m := NewMonitor()

	var got []bool
	m.Subscribe(func(online bool) {
		got = append(got, online)
	})

	m.SetOnline(false)
	m.SetOnline(false) // no transition, no notification
	m.SetOnline(true)

	want := []bool{false, true}
	if len(got) != len(want) {
		t.Fatalf("notifications = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("notification %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMonitor_StatusBadge(t *testing.T) {
	m := NewMonitor()

	if badge := m.StatusBadge(); badge != "" {
		t.Errorf("StatusBadge while online = %q, want empty", badge)
	}

	m.SetOnline(false)
	if badge := m.StatusBadge(); badge != "[OFFLINE]" {
		t.Errorf("StatusBadge while offline = %q, want [OFFLINE]", badge)
	}
}

func TestValidateBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"https", "https://api.example.com/v1", false},
		{"http", "http://localhost:8080", false},
		{"file scheme", "file:///etc/passwd", true},
		{"javascript scheme", "javascript://alert(1)", true},
		{"no host", "https://", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateBaseURL(tc.url)
			if (err != nil) != tc.wantErr {
				t.Errorf("ValidateBaseURL(%q) error = %v, wantErr %v", tc.url, err, tc.wantErr)
			}
		})
	}
}

func TestDialTarget(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"explicit port", "http://localhost:8080/api", "localhost:8080"},
		{"default http", "http://example.com", "example.com:80"},
		{"default https", "https://example.com", "example.com:443"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := dialTarget(tc.url)
			if err != nil {
				t.Fatalf("dialTarget(%q) error: %v", tc.url, err)
			}
			if got != tc.want {
				t.Errorf("dialTarget(%q) = %q, want %q", tc.url, got, tc.want)
			}
		})
	}
}
