// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/promptlab-tui/internal/model"
	"github.com/jeranaias/promptlab-tui/internal/ui/styles"
)

// =============================================================================
// ENTRY RENDERER
// =============================================================================

// EntryRenderer renders conversation entries into styled bubbles.
type EntryRenderer struct {
	width    int
	markdown *glamour.TermRenderer
}

// NewEntryRenderer creates a renderer for the given content width.
// Markdown rendering degrades to plain text if glamour fails to
// initialize or useMarkdown is false.
func NewEntryRenderer(width int, useMarkdown bool) *EntryRenderer {
	r := &EntryRenderer{width: width}
	if useMarkdown {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(contentWidth(width)),
		)
		if err == nil {
			r.markdown = renderer
		}
	}
	return r
}

// SetWidth updates the render width, rebuilding the markdown wrapper.
func (r *EntryRenderer) SetWidth(width int) {
	if width == r.width {
		return
	}
	r.width = width
	if r.markdown != nil {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(contentWidth(width)),
		)
		if err == nil {
			r.markdown = renderer
		}
	}
}

func contentWidth(width int) int {
	w := width - 8
	if w < 20 {
		w = 20
	}
	return w
}

// Render renders one entry.
func (r *EntryRenderer) Render(entry model.Entry) string {
	label := styles.SenderLabel.Render(entry.Kind.DisplayName()) + " " +
		styles.Timestamp.Render(entry.Timestamp.Local().Format("15:04"))

	switch entry.Kind {
	case model.EntryUser:
		bubble := styles.UserBubble.MaxWidth(r.width).Render(entry.Text)
		return label + "\n" + bubble

	case model.EntryAssistant:
		if entry.Experiment == nil {
			return label + "\n" + styles.AssistantBubble.MaxWidth(r.width).Render(entry.Text)
		}
		return label + "\n" + r.renderExperiment(*entry.Experiment)

	default:
		return entry.Text
	}
}

// renderExperiment shows the best-scored variant with its score summary.
func (r *EntryRenderer) renderExperiment(exp model.Experiment) string {
	best := exp.BestVariant()
	if best == nil {
		return styles.AssistantBubble.MaxWidth(r.width).Render("(no response variants)")
	}

	content := best.Content
	if r.markdown != nil {
		if rendered, err := r.markdown.Render(content); err == nil {
			content = strings.TrimRight(rendered, "\n")
		}
	}

	var b strings.Builder
	b.WriteString(content)
	b.WriteString("\n")
	b.WriteString(r.renderScores(best.Scores))
	if n := exp.VariantCount(); n > 1 {
		b.WriteString(styles.Help.Render(fmt.Sprintf("  best of %d variants", n)))
	}

	return styles.AssistantBubble.MaxWidth(r.width).Render(b.String())
}

// renderScores renders the four quality scores plus their average.
func (r *EntryRenderer) renderScores(scores model.Scores) string {
	avg := scores.Average()
	parts := []string{
		fmt.Sprintf("completeness %.1f", scores.Completeness),
		fmt.Sprintf("coherence %.1f", scores.Coherence),
		fmt.Sprintf("clarity %.1f", scores.Clarity),
		fmt.Sprintf("relevance %.1f", scores.Relevance),
	}
	detail := styles.Help.Render(strings.Join(parts, " · "))
	overall := styles.ScoreStyle(avg).Render(fmt.Sprintf("%.1f/%.0f", avg, model.MaxScore))
	return overall + " " + detail
}
