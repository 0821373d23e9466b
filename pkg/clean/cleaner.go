// Package clean implements the Cleaner: a conservative whitespace and
// boilerplate normalizer that must never discard paragraph content.
package clean

import (
	"regexp"
	"strings"
)

// navTerms are short lines that are almost always navigation chrome, not
// article content, when they appear on their own line under shortLineMax
// characters.
var navTerms = []string{
	"home", "about", "contact", "privacy", "terms", "cookie", "subscribe",
	"newsletter", "sign in", "sign up", "login", "register", "follow",
	"share", "advert", "sponsored", "related posts", "comments",
	"categories", "tags", "sidebar", "popular", "recent", "recommended",
	"archive",
}

const (
	shortLineMax = 90
	longLineMin  = 120
)

var multiSpace = regexp.MustCompile(`[ \t]+`)

// Clean normalizes raw extracted text into the cleaned form handed to the
// Validator. Operations: normalize line endings, collapse intra-line
// whitespace, drop empty lines, drop short boilerplate/nav lines,
// deduplicate short lines by a lower-cased key. Lines of longLineMin chars
// or more are never dropped.
func Clean(raw string) string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	lines := strings.Split(raw, "\n")
	seen := make(map[string]bool)
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		line = multiSpace.ReplaceAllString(strings.TrimSpace(line), " ")
		if line == "" {
			continue
		}
		if len(line) >= longLineMin {
			out = append(out, line)
			continue
		}
		if len(line) < shortLineMax && isNavLine(line) {
			continue
		}
		if len(line) < shortLineMax {
			key := strings.ToLower(line)
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		out = append(out, line)
	}

	return strings.Join(out, "\n")
}

func isNavLine(line string) bool {
	lower := strings.ToLower(line)
	for _, term := range navTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
