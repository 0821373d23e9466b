package metadata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectLanguage_ShortTextIsUnknown(t *testing.T) {
	text := strings.Repeat("अ", 30)
	assert.Equal(t, "unknown", detectLanguage(text, nil))
}

func TestDetectLanguage_79CharsIsUnknown(t *testing.T) {
	text := strings.Repeat("a", 79)
	assert.Equal(t, "unknown", detectLanguage(text, nil))
}

func TestDetectLanguage_HighDevanagariIsHindi(t *testing.T) {
	text := strings.Repeat("यह एक बहुत अच्छा उत्पाद है और इससे सौ प्रतिशत इलाज होता है ", 5)
	assert.Equal(t, "hi", detectLanguage(text, nil))
}

func TestDetectLanguage_MixedScriptIsMixed(t *testing.T) {
	devanagari := strings.Repeat("अ", 40)
	latin := strings.Repeat("a", 40)
	text := devanagari + " " + latin
	assert.Equal(t, "mixed", detectLanguage(text, nil))
}

type stubClassifier struct {
	code string
	err  error
}

func (s stubClassifier) Classify(string) (string, error) { return s.code, s.err }

func TestDetectLanguage_FallsBackToClassifier(t *testing.T) {
	text := strings.Repeat("This is plain English marketing copy about a new product. ", 5)
	assert.Equal(t, "en", detectLanguage(text, stubClassifier{code: "eng"}))
}
