package clean

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean_DropsNavLines(t *testing.T) {
	raw := "Home\nAbout\nThis is the real article paragraph that matters a lot.\nSign up\n"
	cleaned := Clean(raw)
	assert.NotContains(t, cleaned, "Home")
	assert.NotContains(t, cleaned, "Sign up")
	assert.Contains(t, cleaned, "This is the real article paragraph")
}

func TestClean_NeverDropsLongLines(t *testing.T) {
	longLine := strings.Repeat("word ", 30) + "subscribe"
	cleaned := Clean(longLine)
	assert.Contains(t, cleaned, "subscribe")
}

func TestClean_DeduplicatesShortLines(t *testing.T) {
	raw := "Click here\nClick here\nClick here\n"
	cleaned := Clean(raw)
	assert.LessOrEqual(t, strings.Count(cleaned, "Click here"), 1)
}

func TestClean_ContentLossGuardHolds(t *testing.T) {
	raw := strings.Repeat("A meaningful sentence about the product and its use cases. ", 50)
	cleaned := Clean(raw)
	assert.GreaterOrEqual(t, float64(len(cleaned)), 0.6*float64(len(raw)))
}
