package claims

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReduce_ShortInputUnchanged(t *testing.T) {
	input := "This medicine cures all diseases."
	assert.Equal(t, input, Reduce(input, 0))
}

func TestReduce_ExtractsClaimBearingSentences(t *testing.T) {
	filler := strings.Repeat("This is a filler sentence with no claims at all. ", 60)
	input := filler + "This medicine cures all diseases in 7 days. " + filler
	out := Reduce(input, 0)
	assert.Contains(t, out, "cures all diseases")
	assert.Less(t, len(out), len(input))
}

func TestReduce_FallsBackToPrefixWhenNoClaims(t *testing.T) {
	filler := strings.Repeat("Just a regular sentence about nothing in particular. ", 60)
	out := Reduce(filler, 100)
	assert.LessOrEqual(t, len(out), 100)
}
