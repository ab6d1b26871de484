// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// GENERATION PARAMETERS
// =============================================================================

// Parameters holds the generation settings attached to an experiment.
type Parameters struct {
	// Temperature controls sampling randomness (0.0 - 2.0)
	Temperature float64 `json:"temperature"`

	// TopP is the nucleus-sampling threshold (0.0 - 1.0)
	TopP float64 `json:"top_p"`

	// Model is the backend model identifier used for generation
	Model string `json:"model"`
}

// DefaultParameters returns the generation defaults used when the
// composer has not been adjusted.
func DefaultParameters() Parameters {
	return Parameters{
		Temperature: 0.7,
		TopP:        0.9,
		Model:       "default",
	}
}

// String returns a compact display form, e.g. "default t=0.70 p=0.90".
func (p Parameters) String() string {
	return fmt.Sprintf("%s t=%.2f p=%.2f", p.Model, p.Temperature, p.TopP)
}

// =============================================================================
// QUALITY SCORES
// =============================================================================

// MaxScore is the upper bound of each quality score dimension.
const MaxScore = 5.0

// Scores holds the four quality metrics the backend assigns to a variant.
// All values are in the range [0, 5].
type Scores struct {
	Completeness float64 `json:"completeness"`
	Coherence    float64 `json:"coherence"`
	Clarity      float64 `json:"clarity"`
	Relevance    float64 `json:"relevance"`
}

// Average returns the mean of the four score dimensions.
func (s Scores) Average() float64 {
	return (s.Completeness + s.Coherence + s.Clarity + s.Relevance) / 4
}

// =============================================================================
// RESPONSE VARIANT
// =============================================================================

// Variant is one generated candidate within an experiment.
// Variants are immutable once received from the backend.
type Variant struct {
	Content    string     `json:"content"`
	Parameters Parameters `json:"parameters"`
	Scores     Scores     `json:"scores"`
}

// Preview returns the first maxLen characters of the variant content
// with newlines collapsed, for list display.
func (v Variant) Preview(maxLen int) string {
	return previewText(v.Content, maxLen)
}

// =============================================================================
// EXPERIMENT TYPE
// =============================================================================

// Experiment is one prompt/response exchange belonging to a session.
// It renders as two or more conversational turns: the user prompt plus
// each generated variant.
type Experiment struct {
	ID         string     `json:"id"`
	Prompt     string     `json:"prompt"`
	Parameters Parameters `json:"parameters"`
	Responses  []Variant  `json:"responses"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// BestVariant returns the variant with the highest average score,
// or nil when the experiment has no responses.
func (e *Experiment) BestVariant() *Variant {
	if len(e.Responses) == 0 {
		return nil
	}
	best := 0
	for i := 1; i < len(e.Responses); i++ {
		if e.Responses[i].Scores.Average() > e.Responses[best].Scores.Average() {
			best = i
		}
	}
	return &e.Responses[best]
}

// VariantCount returns the number of generated responses.
func (e *Experiment) VariantCount() int {
	return len(e.Responses)
}

// Preview returns a short preview of the experiment prompt.
func (e *Experiment) Preview(maxLen int) string {
	return previewText(e.Prompt, maxLen)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// previewText collapses whitespace and truncates to maxLen runes.
func previewText(text string, maxLen int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if maxLen <= 0 || len(runes) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
