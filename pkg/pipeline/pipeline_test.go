package pipeline

import (
	"context"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adaudit/compliance/internal/logging"
	"github.com/adaudit/compliance/pkg/audit"
	"github.com/adaudit/compliance/pkg/extract"
	"github.com/adaudit/compliance/pkg/reasoner"
	"github.com/adaudit/compliance/pkg/router"
)

type stubClient struct{}

func (stubClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	body := `{"score":40,"violations":[{"severity":"HIGH","regulation":"DTC Act","violation_title":"Unverified cure claim","evidence":"cures diabetes","translation":"","guidance":["Remove the claim","Add a medical disclaimer"],"fix":["[stub] rewrite without cure language","[stub] add disclaimer"],"risk_score":70}]}`
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: body}}},
	}, nil
}

func (stubClient) CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error) {
	return openai.AudioResponse{}, nil
}

type fakeRules struct{}

func (fakeRules) Get(country, region, category string) (audit.RulePack, error) {
	return audit.RulePack{{ID: "r1", Regulation: "DTC Act", Title: "No unverified cure claims"}}, nil
}

type fakeStore struct {
	saved []audit.AuditRecord
}

func (f *fakeStore) Save(record audit.AuditRecord) error {
	f.saved = append(f.saved, record)
	return nil
}

func TestAudit_TextInput_MissingUserID(t *testing.T) {
	p := New(Services{Log: logging.Get()})
	_, err := p.Audit(context.Background(), audit.NewTextInput("some text", audit.Options{}))
	assert.Error(t, err)
}

func TestAudit_TextInput_HappyPath(t *testing.T) {
	store := &fakeStore{}
	r := router.New(3000, 10000, "primary", "heavy", "")
	adapter := reasoner.New(&stubClient{}, r, logging.Get())

	p := New(Services{
		Rules:    fakeRules{},
		Store:    store,
		Reasoner: adapter,
		Catalogs: func(kind audit.Kind, mime string) []extract.Strategy { return nil },
		Log:      logging.Get(),
	})

	input := audit.NewTextInput(longSampleText(), audit.Options{
		UserID:       "user-1",
		Category:     "supplements",
		Jurisdiction: audit.Jurisdiction{Country: "India"},
		AnalysisMode: audit.ModeStandard,
	})

	report, err := p.Audit(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 1, len(store.saved))
	assert.NotEmpty(t, report.Status)
}

func longSampleText() string {
	base := "Our revolutionary supplement cures diabetes and improves heart health within 7 days. "
	out := ""
	for len(out) < 3200 {
		out += base
	}
	return out
}
