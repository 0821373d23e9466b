// Package reasoner implements ReasonerAdapter: a single structured-JSON
// call to an OpenAI-compatible chat-completions endpoint, grounded on the
// teacher's ContentReviewer (detector/utils/reviewer.go) and generalized
// from its fixed Chinese-regulation prompt to the jurisdiction/rule-pack
// templated prompt required by spec §6.
package reasoner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/adaudit/compliance/internal/logging"
	"github.com/adaudit/compliance/internal/metrics"
	"github.com/adaudit/compliance/internal/pipelineerr"
	"github.com/adaudit/compliance/pkg/audit"
	"github.com/adaudit/compliance/pkg/router"
)

const (
	callTimeout       = 30 * time.Second
	transcribeTimeout = 180 * time.Second
)

// Client mirrors the go-openai methods ReasonerAdapter needs, so tests can
// substitute a fake without a real API key (grounded on goresearch's
// internal/llm/provider.go Client interface).
type Client interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error)
}

// Adapter is ModelRouter's counterpart: each Analyze executes one reasoner
// call (two when the primary call fails and a fallback model is
// configured) and returns the raw JSON text for ReportNormalizer to repair.
type Adapter struct {
	client Client
	router *router.Router
	log    logging.Logger
}

func New(client Client, r *router.Router, log logging.Logger) *Adapter {
	return &Adapter{client: client, router: r, log: log.WithField("component", "reasoner")}
}

// NewOpenAIClient builds the go-openai client used in production, pointed
// at apiBase (so self-hosted / Azure-compatible gateways work too).
func NewOpenAIClient(apiKey, apiBase string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if apiBase != "" {
		cfg.BaseURL = apiBase
	}
	return openai.NewClientWithConfig(cfg)
}

// Request is everything ReasonerAdapter needs to build the prompt.
type Request struct {
	Content      string
	Rules        audit.RulePack
	Language     string
	AnalysisMode audit.AnalysisMode
	Category     string
	Jurisdiction audit.Jurisdiction
}

// Result carries the raw (possibly malformed) JSON text plus which model
// tier actually answered, so the pipeline can label the eventual Report.
type Result struct {
	RawJSON      string
	ModelUsed    string
	UsedFallback bool
}

// Complete satisfies pkg/translate.Reasoner: a minimal single-prompt call
// used only by the Translator, outside the structured-JSON contract.
func (a *Adapter) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64, maxTokens int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.router.PrimaryModel,
		Temperature: float32(temperature),
		MaxTokens:   maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", pipelineerr.Wrap(pipelineerr.KindReasonerUpstream, "completion call failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", pipelineerr.New(pipelineerr.KindReasonerUpstream, "completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Analyze runs the structured-JSON compliance review, per spec §4.9/§6.
func (a *Adapter) Analyze(ctx context.Context, req Request) (Result, error) {
	plan := a.router.Select(req.Content)

	raw, err := a.call(ctx, req, plan.Model, plan.MaxOutputTokens)
	if err == nil {
		return Result{RawJSON: raw, ModelUsed: plan.Model}, nil
	}

	a.log.Warn("primary reasoner call failed, trying fallback", logging.Fields{"error": err.Error()})

	fallbackPlan, ok := a.router.Fallback(req.Content)
	if !ok {
		return Result{}, err
	}

	raw, fbErr := a.call(ctx, req, fallbackPlan.Model, fallbackPlan.MaxOutputTokens)
	if fbErr != nil {
		return Result{}, pipelineerr.Wrap(pipelineerr.KindReasonerUnrecoverable, "primary and fallback reasoner calls both failed", fbErr)
	}
	return Result{RawJSON: raw, ModelUsed: fallbackPlan.Model, UsedFallback: true}, nil
}

func (a *Adapter) call(ctx context.Context, req Request, model string, maxTokens int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Temperature: float32(router.DefaultTemperature),
		TopP:        float32(router.DefaultTopP),
		MaxTokens:   maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: req.Content},
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			metrics.ReasonerCalls.WithLabelValues(model, "timeout").Inc()
			return "", pipelineerr.Wrap(pipelineerr.KindReasonerTimeout, "reasoner call timed out", err)
		}
		metrics.ReasonerCalls.WithLabelValues(model, "upstream_error").Inc()
		return "", pipelineerr.Wrap(pipelineerr.KindReasonerUpstream, "reasoner call failed", err)
	}
	if len(resp.Choices) == 0 {
		metrics.ReasonerCalls.WithLabelValues(model, "empty_response").Inc()
		return "", pipelineerr.New(pipelineerr.KindReasonerUpstream, "reasoner returned no choices")
	}

	content := resp.Choices[0].Message.Content
	var probe map[string]any
	if json.Unmarshal([]byte(content), &probe) != nil {
		metrics.ReasonerCalls.WithLabelValues(model, "invalid_json").Inc()
		return content, pipelineerr.New(pipelineerr.KindReasonerInvalidJSON, "reasoner response is not valid JSON")
	}
	metrics.ReasonerCalls.WithLabelValues(model, "ok").Inc()
	return content, nil
}

// Transcribe satisfies both pkg/extract/youtube.Transcriber and
// pkg/extract/media.Transcriber: it runs OpenAI's whisper-1 model over a
// downloaded audio/video blob. The TranscribeModel config value is not
// read here.
func (a *Adapter) Transcribe(ctx context.Context, audioBytes []byte, mimeType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, transcribeTimeout)
	defer cancel()

	resp, err := a.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:   openai.Whisper1,
		Reader:  bytes.NewReader(audioBytes),
		FilePath: "audio" + extensionFor(mimeType),
	})
	if err != nil {
		return "", pipelineerr.Wrap(pipelineerr.KindReasonerUpstream, "transcription call failed", err)
	}
	return resp.Text, nil
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/wav", "audio/x-wav":
		return ".wav"
	case "video/mp4":
		return ".mp4"
	default:
		return ".m4a"
	}
}

// NeedsFailsafeRerun implements spec §4.9's false-negative guard: a clean
// first pass with a suspiciously high score gets one extra, stricter call.
func NeedsFailsafeRerun(report audit.Report) bool {
	return len(report.Violations) == 0 && report.Score >= 90
}

const failsafeInstruction = "Carefully analyze and detect ANY misleading or prohibited healthcare claims. Do not default to a clean result; actively look for violations before concluding compliance."

func systemPrompt(req Request) string {
	const topK = 50
	rules := req.Rules
	if len(rules) > topK {
		rules = rules[:topK]
	}

	var ruleLines string
	for i, rule := range rules {
		ruleLines += fmt.Sprintf("%d. [%s] %s — %s\n", i+1, rule.ID, rule.Regulation, rule.Title)
	}

	return fmt.Sprintf(`# Role
You are a marketing and advertising compliance auditor for the %s jurisdiction (region: %s).

# Analysis mode
%s

# Category
%s

# Rule pack (top %d rules)
%s

# Output rules
- Respond with a single JSON object only, no markdown fences, no commentary.
- guidance must contain at least 2 entries; fix must contain at least 2 entries.
- All user-visible strings must be in the source language of the content, except regulation names, which stay in English.
- Use this exact shape:
{
  "score": <0-100>,
  "status": "Compliant" | "Needs Review" | "Non-Compliant",
  "summary": "<string>",
  "financialPenalty": {"riskLevel": "Low|Medium|High", "description": "<string>"},
  "ethicalMarketing": {"score": <0-100>, "assessment": "<string>"},
  "violations": [
    {
      "severity": "CRITICAL|HIGH|MEDIUM|LOW",
      "regulation": "<string>",
      "violation_title": "<string>",
      "evidence": "<string>",
      "translation": "<string>",
      "guidance": ["<string>", "<string>"],
      "fix": ["<string>", "<string>"],
      "risk_score": <0-100>
    }
  ]
}`, req.Jurisdiction.Country, req.Jurisdiction.Region, req.AnalysisMode, req.Category, topK, ruleLines)
}
