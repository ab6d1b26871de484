// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/promptlab-tui/internal/model"
	"github.com/jeranaias/promptlab-tui/internal/ui/styles"
)

// =============================================================================
// SESSION SIDEBAR
// =============================================================================

// Sidebar lists the conversation sessions with selection and search.
type Sidebar struct {
	sessions []model.Session
	filter   string
	cursor   int
	width    int
	height   int
}

// NewSidebar creates an empty sidebar with the given width.
func NewSidebar(width int) *Sidebar {
	return &Sidebar{width: width}
}

// SetSize updates the rendered dimensions.
func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// SetSessions replaces the listed sessions, keeping the cursor in range.
func (s *Sidebar) SetSessions(sessions []model.Session) {
	s.sessions = sessions
	s.clampCursor()
}

// SetFilter narrows the list to sessions matching the query.
func (s *Sidebar) SetFilter(query string) {
	s.filter = query
	s.cursor = 0
}

// Filter returns the active search query.
func (s *Sidebar) Filter() string {
	return s.filter
}

// visible returns the sessions after the filter.
func (s *Sidebar) visible() []model.Session {
	if s.filter == "" {
		return s.sessions
	}
	var out []model.Session
	for _, sess := range s.sessions {
		if sess.MatchesQuery(s.filter) {
			out = append(out, sess)
		}
	}
	return out
}

// CursorUp moves the selection up.
func (s *Sidebar) CursorUp() {
	if s.cursor > 0 {
		s.cursor--
	}
}

// CursorDown moves the selection down.
func (s *Sidebar) CursorDown() {
	if s.cursor < len(s.visible())-1 {
		s.cursor++
	}
}

// Selected returns the session under the cursor, or false when the list
// is empty.
func (s *Sidebar) Selected() (model.Session, bool) {
	visible := s.visible()
	if len(visible) == 0 || s.cursor >= len(visible) {
		return model.Session{}, false
	}
	return visible[s.cursor], true
}

// SelectSession moves the cursor to the session with the given ID.
func (s *Sidebar) SelectSession(id string) {
	for i, sess := range s.visible() {
		if sess.ID == id {
			s.cursor = i
			return
		}
	}
}

// Count returns the number of visible sessions.
func (s *Sidebar) Count() int {
	return len(s.visible())
}

func (s *Sidebar) clampCursor() {
	if n := len(s.visible()); s.cursor >= n && n > 0 {
		s.cursor = n - 1
	} else if n == 0 {
		s.cursor = 0
	}
}

// View renders the sidebar.
func (s *Sidebar) View() string {
	var b strings.Builder

	b.WriteString(styles.SidebarTitle.Render("Sessions"))
	b.WriteString("\n")
	if s.filter != "" {
		b.WriteString(styles.Help.Render("filter: " + s.filter))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	visible := s.visible()
	if len(visible) == 0 {
		b.WriteString(styles.Help.Render("  no sessions"))
	}

	// Leave room for the title block within the sidebar height.
	maxRows := s.height - 3
	if maxRows < 1 {
		maxRows = len(visible)
	}

	start := 0
	if s.cursor >= maxRows {
		start = s.cursor - maxRows + 1
	}

	for i := start; i < len(visible) && i-start < maxRows; i++ {
		title := truncate(visible[i].DisplayTitle(), s.width-4)
		if i == s.cursor {
			b.WriteString(styles.SessionSelected.Render("> " + title))
		} else {
			b.WriteString(styles.SessionItem.Render("  " + title))
		}
		b.WriteString("\n")
	}

	return styles.Sidebar.Width(s.width).Render(b.String())
}

// truncate shortens a string to the given display width, ellipsized.
// Width-aware so CJK titles do not overflow the sidebar.
func truncate(text string, width int) string {
	if width <= 0 {
		return text
	}
	if runewidth.StringWidth(text) <= width {
		return text
	}
	return runewidth.Truncate(text, width, "…")
}
