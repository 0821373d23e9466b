// Package translate implements the Translator: an optional English
// rendering produced only for hi/mixed content, non-fatal on failure.
package translate

import (
	"context"
)

const (
	maxInputChars  = 10000
	maxOutputTokens = 1500
	temperature     = 0.0
)

// Reasoner is the minimal capability translate needs from the reasoner
// client: a single prompted completion call. The real ReasonerAdapter
// satisfies this.
type Reasoner interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64, maxTokens int) (string, error)
}

const systemPrompt = "You are a precise translator. Translate the given marketing or medical " +
	"content into English. Preserve medical terminology and claim phrasing exactly; " +
	"do not summarize, soften, or omit claims. Output plain text only, no commentary."

// Translate runs only for languages the pipeline treats as needing an
// English rendering (hi, mixed). On any failure it returns an empty string:
// translation failure is non-fatal, per SPEC_FULL §4.7.
func Translate(ctx context.Context, reasoner Reasoner, cleaned, language string) string {
	if language != "hi" && language != "mixed" {
		return ""
	}
	if reasoner == nil {
		return ""
	}

	input := cleaned
	if len(input) > maxInputChars {
		input = input[:maxInputChars]
	}

	out, err := reasoner.Complete(ctx, systemPrompt, input, temperature, maxOutputTokens)
	if err != nil {
		return ""
	}
	return out
}
