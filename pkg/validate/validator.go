// Package validate implements the Validator (sufficiency/truncation
// scoring) and the content-loss guard enforced between every extractor
// attempt and the next.
package validate

import (
	"regexp"
	"strings"

	"github.com/adaudit/compliance/internal/pipelineerr"
)

const (
	minLength      = 3000
	minWordCount   = 450
	headingHeavyWordFloor = 900
	contentLossMax = 0.40
)

var (
	allUpperWord  = regexp.MustCompile(`^[A-Z0-9 ,.'"!?-]{6,}$`)
	truncationTail = regexp.MustCompile(`(\.\.\.|…)\s*$`)
	truncationPhrase = regexp.MustCompile(`(?i)(read more|continue reading|subscribe to read|view more)`)
)

// Result is the Validator's verdict on one extraction attempt.
type Result struct {
	Length             int
	WordCount          int
	HeadingHeavy       bool
	TruncatedSuspected bool
	IsValid            bool
	Warnings           []string
	Reasons            []string
}

// Validate scores text for sufficiency and truncation. A failed result is a
// signal, not a fatal error: the caller may still advance to the next
// extraction strategy.
func Validate(text string) Result {
	lines := strings.Split(text, "\n")
	words := strings.Fields(text)

	res := Result{
		Length:    len(text),
		WordCount: len(words),
	}

	res.HeadingHeavy = computeHeadingHeavy(lines)
	res.TruncatedSuspected = truncationTail.MatchString(text) || truncationPhrase.MatchString(text)

	if res.TruncatedSuspected {
		res.Warnings = append(res.Warnings, "extraction appears truncated")
	}

	res.IsValid = true
	if res.Length < minLength {
		res.IsValid = false
		res.Reasons = append(res.Reasons, "text shorter than minimum length")
	}
	if res.WordCount < minWordCount {
		res.IsValid = false
		res.Reasons = append(res.Reasons, "word count below minimum")
	}
	if res.HeadingHeavy && res.WordCount < headingHeavyWordFloor {
		res.IsValid = false
		res.Reasons = append(res.Reasons, "heading-heavy content below word floor")
	}

	return res
}

func computeHeadingHeavy(lines []string) bool {
	nonEmpty := 0
	headingLike := 0
	longLines := 0

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		nonEmpty++

		wordCount := len(strings.Fields(line))
		isHeading := wordCount <= 6 ||
			allUpperWord.MatchString(line) ||
			strings.HasPrefix(line, "#") ||
			strings.HasSuffix(line, ":")
		if isHeading {
			headingLike++
		}
		if wordCount >= 12 {
			longLines++
		}
	}

	if nonEmpty == 0 {
		return false
	}

	headingRatio := float64(headingLike) / float64(nonEmpty)
	longRatio := float64(longLines) / float64(nonEmpty)

	return headingRatio >= 0.70 && longRatio < 0.25
}

// EnforceContentLossGuard fails with CleaningLoss if cleaning discarded
// more than 40% of the raw text.
func EnforceContentLossGuard(raw, cleaned string) error {
	if len(raw) == 0 {
		return nil
	}
	loss := float64(len(raw)-len(cleaned)) / float64(len(raw))
	if loss > contentLossMax {
		return pipelineerr.New(pipelineerr.KindCleaningLoss, "cleaning discarded more than 40% of raw text")
	}
	return nil
}
