package reasoner

import (
	"context"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adaudit/compliance/internal/logging"
	"github.com/adaudit/compliance/pkg/audit"
	"github.com/adaudit/compliance/pkg/router"
)

type fakeClient struct {
	responses []string
	calls     int
	err       error
}

func (f *fakeClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	idx := f.calls
	f.calls++
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.responses[idx]}},
		},
	}, nil
}

func (f *fakeClient) CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error) {
	return openai.AudioResponse{Text: "transcribed audio"}, nil
}

func testRouter() *router.Router {
	return router.New(3000, 10000, "primary-model", "heavy-model", "fallback-model")
}

func TestAnalyze_PrimarySucceeds(t *testing.T) {
	client := &fakeClient{responses: []string{`{"score":80,"violations":[]}`}}
	a := New(client, testRouter(), logging.Get())

	result, err := a.Analyze(context.Background(), Request{
		Content:      "short content",
		Jurisdiction: audit.Jurisdiction{Country: "India"},
	})
	require.NoError(t, err)
	assert.Equal(t, "primary-model", result.ModelUsed)
	assert.False(t, result.UsedFallback)
}

func TestAnalyze_FallsBackOnInvalidJSON(t *testing.T) {
	client := &fakeClient{responses: []string{"not json", `{"score":50,"violations":[]}`}}
	a := New(client, testRouter(), logging.Get())

	result, err := a.Analyze(context.Background(), Request{Content: "x"})
	require.NoError(t, err)
	assert.Equal(t, "fallback-model", result.ModelUsed)
	assert.True(t, result.UsedFallback)
}

func TestNeedsFailsafeRerun(t *testing.T) {
	assert.True(t, NeedsFailsafeRerun(audit.Report{Score: 95, Violations: nil}))
	assert.False(t, NeedsFailsafeRerun(audit.Report{Score: 95, Violations: []audit.Violation{{}}}))
	assert.False(t, NeedsFailsafeRerun(audit.Report{Score: 50, Violations: nil}))
}
