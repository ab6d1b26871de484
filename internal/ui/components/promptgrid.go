// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/promptlab-tui/internal/ui/styles"
)

// =============================================================================
// EXAMPLE PROMPT GRID
// =============================================================================

// ExamplePrompt is one starter card shown on an empty conversation.
type ExamplePrompt struct {
	Title  string
	Prompt string
}

// ExamplePrompts are the starter cards, selectable with keys 1-4.
var ExamplePrompts = []ExamplePrompt{
	{
		Title:  "Writing",
		Prompt: "Write a short story about a lighthouse keeper who discovers a message in a bottle.",
	},
	{
		Title:  "Research & Analysis",
		Prompt: "Summarize the main arguments for and against remote work, citing the strongest evidence on each side.",
	},
	{
		Title:  "Programming",
		Prompt: "Explain the difference between concurrency and parallelism, with a small Go example of each.",
	},
	{
		Title:  "Learning Skills",
		Prompt: "Design a four-week practice plan for learning touch typing, with measurable weekly goals.",
	},
}

// RenderPromptGrid renders the starter cards in a two-column grid.
func RenderPromptGrid(width int) string {
	cardWidth := width/2 - 4
	if cardWidth < 24 {
		cardWidth = 24
	}

	cards := make([]string, len(ExamplePrompts))
	for i, example := range ExamplePrompts {
		body := styles.PromptCardTitle.Render(example.Title) + "\n" +
			truncate(example.Prompt, cardWidth*2)
		cards[i] = styles.PromptCard.Width(cardWidth).Render(body)
	}

	top := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1])
	bottom := lipgloss.JoinHorizontal(lipgloss.Top, cards[2], cards[3])

	header := styles.SenderLabel.Render("Start with an example, or type your own prompt:")
	hint := styles.Help.Render("press 1-4 to use an example")

	return lipgloss.JoinVertical(lipgloss.Left, header, "", top, bottom, "", hint)
}
