package router

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelect_ShortContentUsesPrimary(t *testing.T) {
	r := New(3000, 10000, "gpt-4o-mini", "gpt-4o", "gpt-4o-mini")
	plan := r.Select("short content")
	assert.Equal(t, "gpt-4o-mini", plan.Model)
	assert.Equal(t, DefaultTemperature, plan.Temperature)
}

func TestSelect_LongContentUsesHeavy(t *testing.T) {
	r := New(3000, 10000, "gpt-4o-mini", "gpt-4o", "gpt-4o-mini")
	plan := r.Select(strings.Repeat("a", 10500))
	assert.Equal(t, "gpt-4o", plan.Model)
	assert.Equal(t, DefaultMaxOutputToken, plan.MaxOutputTokens)
}

func TestSelect_ComplexityOverridesLength(t *testing.T) {
	r := New(3000, 10000, "gpt-4o-mini", "gpt-4o", "gpt-4o-mini")
	r.Complexity = func(content string) bool { return true }
	plan := r.Select("short but flagged complex")
	assert.Equal(t, "gpt-4o", plan.Model)
}

func TestFallback_NoneConfigured(t *testing.T) {
	r := New(3000, 10000, "gpt-4o-mini", "gpt-4o", "")
	_, ok := r.Fallback("content")
	assert.False(t, ok)
}

func TestFallback_UsesFallbackModel(t *testing.T) {
	r := New(3000, 10000, "gpt-4o-mini", "gpt-4o", "gpt-4o-mini-fallback")
	plan, ok := r.Fallback("content")
	assert.True(t, ok)
	assert.Equal(t, "gpt-4o-mini-fallback", plan.Model)
}
