// Package claims implements the ClaimsReducer: reduces long marketing text
// to its claim-bearing sentences when it exceeds the reduction threshold.
package claims

import (
	"regexp"
	"strings"
)

const (
	reduceThreshold = 2000
	// MaxContentForAI is the hard cap applied when nothing matched; the
	// actual default is overridable via config.Config.Limits.MaxContentForAI.
	MaxContentForAI = 10000
)

var claimPattern = regexp.MustCompile(
	`(?i)\b(cure|treat|heal|prevent|medicine|drug|treatment|therapy|` +
		`effective|works|improves|boosts|better|best|faster|stronger)\b|` +
		`\d+\s*%|in\s+\d+\s+days`,
)

var sentenceSplit = regexp.MustCompile(`(?:[.!?]+\s+|\n+)`)

// Reduce returns the claim-bearing subset of input when input exceeds
// reduceThreshold characters; otherwise it returns input unchanged. If no
// sentence matches the claim pattern, it falls back to the first maxChars
// characters.
func Reduce(input string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = MaxContentForAI
	}
	if len(input) <= reduceThreshold {
		return input
	}

	sentences := sentenceSplit.Split(input, -1)
	var matched []string
	for _, s := range sentences {
		trimmed := strings.TrimSpace(s)
		if trimmed == "" {
			continue
		}
		if claimPattern.MatchString(trimmed) {
			matched = append(matched, trimmed)
		}
	}

	if len(matched) == 0 {
		if len(input) > maxChars {
			return input[:maxChars]
		}
		return input
	}

	joined := strings.Join(matched, " ")
	if len(joined) > maxChars {
		return joined[:maxChars]
	}
	return joined
}
