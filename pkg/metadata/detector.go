// Package metadata implements the MetadataDetector: script-ratio based
// language detection plus the ContentMetadata tagging described in
// SPEC_FULL §4.6.
package metadata

import (
	"unicode"

	"github.com/adaudit/compliance/pkg/audit"
)

const (
	mixedDevanagariThreshold = 0.15
	mixedLatinThreshold      = 0.15
	hindiDevanagariThreshold = 0.20
	unknownLengthFloor       = 80
	classifierWindow         = 6000
)

// Classifier is the natural-language classifier run on text too long and
// too script-ambiguous for the cheap ratio heuristics, modeled as an
// injected capability so the reference implementation can swap a real
// language-id library in without this package depending on it directly.
type Classifier interface {
	// Classify returns an ISO 639-2/T code (e.g. "hin", "eng").
	Classify(text string) (string, error)
}

var iso2ByISO3 = map[string]string{
	"hin": "hi",
	"eng": "en",
	"urd": "ur",
	"pan": "pa",
	"ben": "bn",
}

// Metadata is the detector's output, attached to ExtractedContent.
type Metadata struct {
	SourceType       audit.SourceType
	ContentFormat    audit.ContentFormat
	Language         string
	ExtractionMethod string
}

// Detect computes language from cleaned text and stamps the remaining,
// already-known provenance fields onto the returned Metadata.
func Detect(cleaned string, sourceType audit.SourceType, format audit.ContentFormat, method string, classifier Classifier) Metadata {
	return Metadata{
		SourceType:       sourceType,
		ContentFormat:    format,
		ExtractionMethod: method,
		Language:         detectLanguage(cleaned, classifier),
	}
}

func detectLanguage(cleaned string, classifier Classifier) string {
	devanagari, latin, nonSpace := scriptRatios(cleaned)
	if nonSpace == 0 {
		return "unknown"
	}

	devRatio := float64(devanagari) / float64(nonSpace)
	latinRatio := float64(latin) / float64(nonSpace)

	if devRatio > mixedDevanagariThreshold && latinRatio > mixedLatinThreshold {
		return "mixed"
	}
	if devRatio > hindiDevanagariThreshold {
		return "hi"
	}
	if len(cleaned) < unknownLengthFloor {
		return "unknown"
	}

	window := cleaned
	if len(window) > classifierWindow {
		window = window[:classifierWindow]
	}
	if classifier == nil {
		return "unknown"
	}
	code, err := classifier.Classify(window)
	if err != nil {
		return "unknown"
	}
	if iso2, ok := iso2ByISO3[code]; ok {
		return iso2
	}
	return "unknown"
}

func scriptRatios(text string) (devanagari, latin, nonSpace int) {
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		nonSpace++
		switch {
		case r >= 0x0900 && r <= 0x097F:
			devanagari++
		case unicode.Is(unicode.Latin, r):
			latin++
		}
	}
	return
}
