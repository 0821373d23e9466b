package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ShortTextIsInvalid(t *testing.T) {
	res := Validate("too short")
	assert.False(t, res.IsValid)
	assert.NotEmpty(t, res.Reasons)
}

func TestValidate_LongArticleIsValid(t *testing.T) {
	sentence := "The quick brown fox jumps over the lazy dog near the riverbank today. "
	text := strings.Repeat(sentence, 80)
	res := Validate(text)
	assert.True(t, res.IsValid)
}

func TestValidate_TruncationSuspected(t *testing.T) {
	sentence := "The quick brown fox jumps over the lazy dog near the riverbank today. "
	text := strings.Repeat(sentence, 80) + "read more"
	res := Validate(text)
	assert.True(t, res.TruncatedSuspected)
}

func TestValidate_HeadingHeavyNeedsMoreWords(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 60; i++ {
		b.WriteString("SHORT HEADING LINE\n")
	}
	res := Validate(b.String())
	assert.True(t, res.HeadingHeavy)
	assert.False(t, res.IsValid)
}

func TestEnforceContentLossGuard(t *testing.T) {
	raw := strings.Repeat("a", 1000)

	require.NoError(t, EnforceContentLossGuard(raw, strings.Repeat("a", 650)))

	err := EnforceContentLossGuard(raw, strings.Repeat("a", 500))
	require.Error(t, err)
}
