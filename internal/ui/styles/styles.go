// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the promptlab TUI.
// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// ACCENT COLORS
// =============================================================================

// Purple - Primary accent, assistant responses, selections
var Purple = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

// Cyan - Brand color, info, user highlights
var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// Emerald - Success states, high scores
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Rose - Errors, offline indicator
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber - Warnings, rate-limit cooldowns, middling scores
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// =============================================================================
// SURFACE AND TEXT COLORS
// =============================================================================

// Surface - Main background
var Surface = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}

// Overlay - Borders, separators
var Overlay = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}

// TextPrimary - Main body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}

// TextSecondary - Labels, less prominent text
var TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}

// TextMuted - Hints, timestamps
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}

// TextInverse - Text on colored backgrounds
var TextInverse = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}

// =============================================================================
// MESSAGE BUBBLE COLORS
// =============================================================================

// User message bubble - Blue tones
var UserBubbleFg = lipgloss.AdaptiveColor{Light: "#1E40AF", Dark: "#E0F2FE"}
var UserBubbleBorder = lipgloss.AdaptiveColor{Light: "#3B82F6", Dark: "#3B82F6"}

// Assistant message bubble - Soft purple tones
var AssistantBubbleFg = lipgloss.AdaptiveColor{Light: "#5B4B8A", Dark: "#E9E4F5"}
var AssistantBubbleBorder = lipgloss.AdaptiveColor{Light: "#C4B5FD", Dark: "#A78BFA"}

// =============================================================================
// SHARED STYLES
// =============================================================================

var (
	// UserBubble frames a user message.
	UserBubble = lipgloss.NewStyle().
			Foreground(UserBubbleFg).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(UserBubbleBorder).
			Padding(0, 1)

	// AssistantBubble frames an assistant response.
	AssistantBubble = lipgloss.NewStyle().
			Foreground(AssistantBubbleFg).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(AssistantBubbleBorder).
			Padding(0, 1)

	// SenderLabel renders the "You" / "Gen AI" line above a bubble.
	SenderLabel = lipgloss.NewStyle().
			Foreground(TextSecondary).
			Bold(true)

	// Timestamp renders entry timestamps.
	Timestamp = lipgloss.NewStyle().
			Foreground(TextMuted)

	// Sidebar frames the session list.
	Sidebar = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, true, false, false).
		BorderForeground(Overlay)

	// SidebarTitle renders the sidebar header.
	SidebarTitle = lipgloss.NewStyle().
			Foreground(Cyan).
			Bold(true).
			Padding(0, 1)

	// SessionItem renders an unselected session row.
	SessionItem = lipgloss.NewStyle().
			Foreground(TextSecondary).
			Padding(0, 1)

	// SessionSelected renders the selected session row.
	SessionSelected = lipgloss.NewStyle().
			Foreground(TextInverse).
			Background(Purple).
			Bold(true).
			Padding(0, 1)

	// OfflineBanner renders the full-width offline indicator.
	OfflineBanner = lipgloss.NewStyle().
			Foreground(TextInverse).
			Background(Rose).
			Bold(true).
			Padding(0, 1)

	// CooldownBanner renders the rate-limit indicator.
	CooldownBanner = lipgloss.NewStyle().
			Foreground(TextInverse).
			Background(Amber).
			Bold(true).
			Padding(0, 1)

	// PromptCard frames an example prompt on the empty conversation view.
	PromptCard = lipgloss.NewStyle().
			Foreground(TextPrimary).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Overlay).
			Padding(0, 1).
			Margin(0, 1)

	// PromptCardTitle renders the card heading.
	PromptCardTitle = lipgloss.NewStyle().
			Foreground(Purple).
			Bold(true)

	// StatusBar renders the bottom status line.
	StatusBar = lipgloss.NewStyle().
			Foreground(TextSecondary).
			Padding(0, 1)

	// Help renders key hints.
	Help = lipgloss.NewStyle().
		Foreground(TextMuted)
)

// =============================================================================
// SCORE STYLING
// =============================================================================

// ScoreStyle picks a color for an average score on the [0, 5] scale.
func ScoreStyle(score float64) lipgloss.Style {
	switch {
	case score >= 4.0:
		return lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	case score >= 2.5:
		return lipgloss.NewStyle().Foreground(Amber)
	default:
		return lipgloss.NewStyle().Foreground(Rose)
	}
}

// =============================================================================
// TERMINAL CAPABILITIES
// =============================================================================

// Capabilities describes what the attached terminal can render.
type Capabilities struct {
	ColorProfile termenv.Profile
	TrueColor    bool
	DarkTheme    bool
}

// DetectCapabilities probes the terminal once at startup.
func DetectCapabilities() Capabilities {
	profile := termenv.ColorProfile()
	return Capabilities{
		ColorProfile: profile,
		TrueColor:    profile == termenv.TrueColor,
		DarkTheme:    termenv.HasDarkBackground(),
	}
}
