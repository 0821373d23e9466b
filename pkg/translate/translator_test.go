package translate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeReasoner struct {
	out string
	err error
}

func (f *fakeReasoner) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64, maxTokens int) (string, error) {
	return f.out, f.err
}

func TestTranslate_SkipsEnglishContent(t *testing.T) {
	r := &fakeReasoner{out: "should not be used"}
	got := Translate(context.Background(), r, "some text", "en")
	assert.Empty(t, got)
}

func TestTranslate_RunsForHindiAndMixed(t *testing.T) {
	r := &fakeReasoner{out: "translated text"}
	assert.Equal(t, "translated text", Translate(context.Background(), r, "kuch text", "hi"))
	assert.Equal(t, "translated text", Translate(context.Background(), r, "some mixed text", "mixed"))
}

func TestTranslate_NilReasonerReturnsEmpty(t *testing.T) {
	got := Translate(context.Background(), nil, "kuch text", "hi")
	assert.Empty(t, got)
}

func TestTranslate_ReasonerErrorIsNonFatal(t *testing.T) {
	r := &fakeReasoner{err: errors.New("upstream down")}
	got := Translate(context.Background(), r, "kuch text", "hi")
	assert.Empty(t, got)
}

func TestTranslate_TruncatesOversizedInput(t *testing.T) {
	var captured string
	r := &capturingReasoner{fn: func(userPrompt string) { captured = userPrompt }}
	long := strings.Repeat("a", maxInputChars+500)
	Translate(context.Background(), r, long, "hi")
	assert.Len(t, captured, maxInputChars)
}

type capturingReasoner struct {
	fn func(userPrompt string)
}

func (c *capturingReasoner) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64, maxTokens int) (string, error) {
	c.fn(userPrompt)
	return "ok", nil
}
