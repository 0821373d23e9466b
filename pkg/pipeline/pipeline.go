// Package pipeline implements the top-level Audit operation: the exact
// ten-step flow from spec §4.12, wired through the extraction strategy
// catalogs, Cleaner, Validator, MetadataDetector, Translator, ClaimsReducer,
// ReasonerAdapter and ReportNormalizer.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adaudit/compliance/internal/config"
	"github.com/adaudit/compliance/internal/logging"
	"github.com/adaudit/compliance/internal/metrics"
	"github.com/adaudit/compliance/internal/pipelineerr"
	"github.com/adaudit/compliance/pkg/audit"
	"github.com/adaudit/compliance/pkg/claims"
	"github.com/adaudit/compliance/pkg/clean"
	"github.com/adaudit/compliance/pkg/extract"
	"github.com/adaudit/compliance/pkg/fingerprint"
	"github.com/adaudit/compliance/pkg/metadata"
	"github.com/adaudit/compliance/pkg/normalize"
	"github.com/adaudit/compliance/pkg/reasoner"
	"github.com/adaudit/compliance/pkg/translate"
	"github.com/adaudit/compliance/pkg/validate"
)

// RuleRepository is the capability the pipeline needs from pkg/rules.
type RuleRepository interface {
	Get(country, region, category string) (audit.RulePack, error)
}

// AuditStore is the capability the pipeline needs from pkg/store.
type AuditStore interface {
	Save(record audit.AuditRecord) error
}

// CatalogResolver picks the ordered strategy list for a Kind, closing over
// whatever Fetcher/BrowserPool/Transcriber/OCR the process wired up.
type CatalogResolver func(kind audit.Kind, mimeType string) []extract.Strategy

// Services bundles every shared, process-wide dependency the pipeline
// needs, per SPEC_FULL §9: all are safe for concurrent use and initialized
// once at process start.
type Services struct {
	Rules      RuleRepository
	Store      AuditStore
	Reasoner   *reasoner.Adapter
	Classifier metadata.Classifier
	Catalogs   CatalogResolver
	Config     config.Config
	Log        logging.Logger
}

type Pipeline struct {
	services Services
}

func New(services Services) *Pipeline {
	return &Pipeline{services: services}
}

// Audit is the one transport-agnostic operation spec §6 names.
func (p *Pipeline) Audit(ctx context.Context, input audit.Input) (audit.Report, error) {
	start := time.Now()

	if input.Options.UserID == "" {
		return audit.Report{}, pipelineerr.New(pipelineerr.KindUnauthenticated, "userId is required")
	}

	kind, err := fingerprint.Classify(input)
	if err != nil {
		return audit.Report{}, err
	}

	if kind == audit.KindText {
		if maxLen := p.services.Config.Limits.MaxTextLength; maxLen > 0 && len(input.Body) > maxLen {
			return audit.Report{}, pipelineerr.New(pipelineerr.KindTextTooLong, "text input exceeds maximum allowed length")
		}
	}

	rules, err := p.services.Rules.Get(input.Options.Jurisdiction.Country, input.Options.Jurisdiction.Region, input.Options.Category)
	if err != nil {
		p.services.Log.Warn("rule repository lookup failed, continuing with empty pack", logging.Fields{"error": err.Error()})
		rules = nil
	}

	extractStart := time.Now()
	extracted, err := p.extractContent(ctx, kind, input)
	metrics.StageLatency.WithLabelValues("extract").Observe(time.Since(extractStart).Seconds())
	if err != nil {
		return audit.Report{}, err
	}

	meta := metadata.Detect(extracted.Cleaned, extracted.SourceType, extracted.ContentFormat, extracted.ExtractionMethod, p.services.Classifier)

	if meta.Language == "hi" || meta.Language == "mixed" {
		extracted.Translated = translate.Translate(ctx, p.services.Reasoner, extracted.Cleaned, meta.Language)
	}

	reducerInput := extracted.Cleaned
	if extracted.Translated != "" {
		reducerInput = extracted.Translated
	}
	reduced := claims.Reduce(reducerInput, p.services.Config.Limits.MaxContentForAI)

	reasonStart := time.Now()
	result, err := p.services.Reasoner.Analyze(ctx, reasoner.Request{
		Content:      reduced,
		Rules:        rules,
		Language:     meta.Language,
		AnalysisMode: input.Options.AnalysisMode,
		Category:     input.Options.Category,
		Jurisdiction: input.Options.Jurisdiction,
	})
	metrics.StageLatency.WithLabelValues("reason").Observe(time.Since(reasonStart).Seconds())
	if err != nil {
		metrics.AuditRequests.WithLabelValues("reasoner_unrecoverable").Inc()
		return shellReport(err, time.Since(start)), nil
	}

	report := normalize.Normalize(result.RawJSON, result.ModelUsed, result.UsedFallback, int(time.Since(start).Milliseconds()))

	if p.services.Config.Features.EnableFailsafeReanalysis && reasoner.NeedsFailsafeRerun(report) {
		rerun, rerunErr := p.services.Reasoner.Analyze(ctx, reasoner.Request{
			Content:      reduced,
			Rules:        rules,
			Language:     meta.Language,
			AnalysisMode: audit.ModeStrict,
			Category:     input.Options.Category,
			Jurisdiction: input.Options.Jurisdiction,
		})
		if rerunErr == nil {
			rerunReport := normalize.Normalize(rerun.RawJSON, rerun.ModelUsed, rerun.UsedFallback, int(time.Since(start).Milliseconds()))
			if len(rerunReport.Violations) > 0 {
				report = rerunReport
			}
		}
	}

	report.Transcription = extracted.Raw
	if extracted.ContentFormat == audit.FormatSpeech {
		report.Transcription = extracted.Cleaned
	}

	persistStart := time.Now()
	p.persist(kind, input, extracted, report)
	metrics.StageLatency.WithLabelValues("persist").Observe(time.Since(persistStart).Seconds())

	metrics.AuditRequests.WithLabelValues(string(report.Status)).Inc()
	metrics.StageLatency.WithLabelValues("audit_total").Observe(time.Since(start).Seconds())
	return report, nil
}

func (p *Pipeline) extractContent(ctx context.Context, kind audit.Kind, input audit.Input) (audit.ExtractedContent, error) {
	if kind == audit.KindText {
		return audit.ExtractedContent{
			Raw:              input.Body,
			Cleaned:          input.Body,
			SourceType:       audit.SourceBlog,
			ContentFormat:    audit.FormatArticle,
			ExtractionMethod: "direct",
		}, nil
	}

	src := extract.Source{Input: input}
	if input.Variant == audit.InputFile {
		src.Bytes = input.FileBytes
		src.MIME = input.MIME
	}

	strategies := p.services.Catalogs(kind, input.MIME)

	var lastErr error
	for _, strategy := range strategies {
		outcome, err := strategy.Extract(ctx, src)
		if err != nil {
			metrics.ExtractionAttempts.WithLabelValues(string(kind), strategy.Name(), "failed").Inc()
			p.services.Log.Debug("strategy failed, trying next", logging.Fields{"kind": kind, "method": strategy.Name(), "error": err.Error()})
			lastErr = err
			continue
		}

		cleaned := clean.Clean(outcome.Text)
		if len(cleaned) < extract.MinCleanedLength {
			metrics.ExtractionAttempts.WithLabelValues(string(kind), strategy.Name(), "too_short").Inc()
			lastErr = fmt.Errorf("%s produced cleaned text below minimum length", strategy.Name())
			continue
		}

		if err := validate.EnforceContentLossGuard(outcome.Text, cleaned); err != nil {
			metrics.ExtractionAttempts.WithLabelValues(string(kind), strategy.Name(), "content_loss").Inc()
			lastErr = err
			continue
		}

		if res := validate.Validate(cleaned); !res.IsValid {
			metrics.ExtractionAttempts.WithLabelValues(string(kind), strategy.Name(), "insufficient").Inc()
			lastErr = fmt.Errorf("%s failed validation: %s", strategy.Name(), strings.Join(res.Reasons, "; "))
			continue
		}

		metrics.ExtractionAttempts.WithLabelValues(string(kind), strategy.Name(), "ok").Inc()
		return audit.ExtractedContent{
			Raw:              outcome.Text,
			Cleaned:          cleaned,
			SourceType:       sourceTypeFor(kind),
			ContentFormat:    contentFormatFor(kind),
			ExtractionMethod: strategy.Name(),
			Screenshot:       outcome.Screenshot,
		}, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no extraction strategy configured for kind %s", kind)
	}
	return audit.ExtractedContent{}, pipelineerr.Wrap(pipelineerr.KindExtractionExhausted, "all extraction strategies failed", lastErr)
}

func (p *Pipeline) persist(kind audit.Kind, input audit.Input, extracted audit.ExtractedContent, report audit.Report) {
	if p.services.Store == nil {
		return
	}
	record := audit.AuditRecord{
		ID:            uuid.NewString(),
		UserID:        input.Options.UserID,
		ContentType:   contentTypeFor(kind),
		OriginalInput: originalInputSummary(input),
		ExtractedText: extracted.Cleaned,
		Transcript:    extracted.Translated,
		Report:        report,
		CreatedAt:     time.Now(),
	}
	if err := p.services.Store.Save(record); err != nil {
		p.services.Log.Warn("audit record persistence failed, response unaffected", logging.Fields{"error": err.Error()})
	}
}

func originalInputSummary(input audit.Input) string {
	switch input.Variant {
	case audit.InputURL:
		return input.Href
	case audit.InputFile:
		return input.Filename
	default:
		return input.Body
	}
}

// shellReport builds the ReasonerUnrecoverable shell per spec §3/§7: a zero
// score, an empty (never nil) violations list, and modelUsed pinned to
// "none" since no model answered.
func shellReport(cause error, elapsed time.Duration) audit.Report {
	return audit.Report{
		Score:            0,
		Status:           audit.StatusNeedsReview,
		Summary:          "Summary unavailable.",
		Violations:       []audit.Violation{},
		ModelUsed:        "none",
		ProcessingTimeMs: int(elapsed.Milliseconds()),
		Error:            string(pipelineerr.KindReasonerUnrecoverable),
		Message:          cause.Error(),
	}
}

func sourceTypeFor(kind audit.Kind) audit.SourceType {
	switch kind {
	case audit.KindYouTube:
		return audit.SourceYouTube
	case audit.KindMediaURL, audit.KindAudio, audit.KindVideo:
		return audit.SourceMedia
	case audit.KindImage, audit.KindDocument:
		return audit.SourceUpload
	default:
		return audit.SourceBlog
	}
}

func contentFormatFor(kind audit.Kind) audit.ContentFormat {
	switch kind {
	case audit.KindYouTube, audit.KindMediaURL, audit.KindAudio, audit.KindVideo:
		return audit.FormatSpeech
	default:
		return audit.FormatArticle
	}
}

func contentTypeFor(kind audit.Kind) audit.ContentType {
	switch kind {
	case audit.KindText:
		return audit.ContentTypeText
	case audit.KindWebPage:
		return audit.ContentTypeWebPage
	case audit.KindYouTube, audit.KindMediaURL:
		return audit.ContentTypeURL
	case audit.KindImage:
		return audit.ContentTypeImage
	case audit.KindAudio:
		return audit.ContentTypeAudio
	case audit.KindVideo:
		return audit.ContentTypeVideo
	case audit.KindDocument:
		return audit.ContentTypeDocument
	default:
		return audit.ContentTypeText
	}
}
