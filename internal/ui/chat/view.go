// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/promptlab-tui/internal/model"
	"github.com/jeranaias/promptlab-tui/internal/ui/components"
	"github.com/jeranaias/promptlab-tui/internal/ui/styles"
)

// View renders the full chat screen.
func (m *Model) View() string {
	if !m.ready {
		return "Loading promptlab..."
	}

	main := lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		m.textarea.View(),
		m.statusBar(),
	)

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), main)

	sections := []string{}
	if banner := m.banner(); banner != "" {
		sections = append(sections, banner)
	}
	sections = append(sections, body)
	if toasts := components.RenderToasts(m.toasts.Active(), m.width); toasts != "" {
		sections = append(sections, toasts)
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// banner renders the offline or cooldown strip, if any.
func (m *Model) banner() string {
	switch {
	case m.isOffline:
		return styles.OfflineBanner.Width(m.width).
			Render("OFFLINE: requests will be queued and replayed on reconnect")
	case m.deps.Client.CoolingDown():
		return styles.CooldownBanner.Width(m.width).
			Render("Rate limited, retrying shortly")
	default:
		return ""
	}
}

// statusBar renders the bottom status line.
func (m *Model) statusBar() string {
	var parts []string

	if m.generating {
		parts = append(parts, "generating...")
	}
	if pending := m.deps.Client.PendingCount(); pending > 0 {
		parts = append(parts, fmt.Sprintf("%d queued", pending))
	}
	parts = append(parts, m.params.String())

	left := styles.StatusBar.Render(strings.Join(parts, "  "))

	var hint string
	if m.focus == focusSidebar {
		hint = "tab: composer · enter: open · n: new · d: delete · /: filter"
	} else {
		hint = "tab: sessions · enter: send · ↑: history"
	}
	right := styles.Help.Render(hint)

	return left + "  " + right
}

// renderConversation renders the entries, applying the typing reveal to
// the newest assistant entry.
func (m *Model) renderConversation() string {
	if len(m.entries) == 0 {
		return components.RenderPromptGrid(m.viewport.Width)
	}

	rendered := make([]string, 0, len(m.entries))
	for i, entry := range m.entries {
		if m.revealing && i == len(m.entries)-1 && entry.Kind == model.EntryAssistant {
			rendered = append(rendered, m.renderer.Render(m.revealEntry(entry)))
			continue
		}
		rendered = append(rendered, m.renderer.Render(entry))
	}
	return strings.Join(rendered, "\n\n")
}

// revealEntry returns a copy of the entry with its content truncated to
// the current reveal position.
func (m *Model) revealEntry(entry model.Entry) model.Entry {
	if entry.Experiment == nil {
		if runes := []rune(entry.Text); m.revealLen < len(runes) {
			entry.Text = string(runes[:m.revealLen])
		}
		return entry
	}

	exp := *entry.Experiment
	responses := make([]model.Variant, len(exp.Responses))
	copy(responses, exp.Responses)
	for i := range responses {
		if runes := []rune(responses[i].Content); m.revealLen < len(runes) {
			responses[i].Content = string(runes[:m.revealLen])
		}
	}
	exp.Responses = responses
	entry.Experiment = &exp
	return entry
}
