// Package audit holds the pipeline's data model: the tagged-union Input,
// the Rule/RulePack regulatory data, ExtractedContent, and the Report and
// AuditRecord shapes returned and persisted by the pipeline.
package audit

import "time"

// Kind classifies an Input after fingerprinting.
type Kind string

const (
	KindText     Kind = "Text"
	KindWebPage  Kind = "WebPage"
	KindYouTube  Kind = "YouTube"
	KindMediaURL Kind = "MediaURL"
	KindImage    Kind = "Image"
	KindAudio    Kind = "Audio"
	KindVideo    Kind = "Video"
	KindDocument Kind = "Document"
)

// AnalysisMode selects how thoroughly the reasoner should review content.
type AnalysisMode string

const (
	ModeStandard AnalysisMode = "standard"
	ModeStrict   AnalysisMode = "strict"
)

// Jurisdiction pins the rule pack lookup; Region is only meaningful for
// multi-region packs such as GCC.
type Jurisdiction struct {
	Country string
	Region  string
}

// Options accompanies every Input.
type Options struct {
	UserID       string
	Category     string
	Jurisdiction Jurisdiction
	AnalysisMode AnalysisMode
}

// InputVariant tags which field of Input is populated.
type InputVariant string

const (
	InputText InputVariant = "text"
	InputURL  InputVariant = "url"
	InputFile InputVariant = "file"
)

// Input is the tagged union accepted by the pipeline: exactly one of Body,
// Href, or FileBytes is meaningful, selected by Variant.
type Input struct {
	Variant InputVariant

	Body string // InputText

	Href string // InputURL

	FileBytes []byte // InputFile
	Filename  string
	MIME      string

	Options Options
}

// NewTextInput builds a Text-variant Input.
func NewTextInput(body string, opts Options) Input {
	return Input{Variant: InputText, Body: body, Options: opts}
}

// NewURLInput builds a URL-variant Input.
func NewURLInput(href string, opts Options) Input {
	return Input{Variant: InputURL, Href: href, Options: opts}
}

// NewFileInput builds a File-variant Input.
func NewFileInput(data []byte, filename, mime string, opts Options) Input {
	return Input{Variant: InputFile, FileBytes: data, Filename: filename, MIME: mime, Options: opts}
}

// Rule is one regulatory clause loaded from a rule pack file.
type Rule struct {
	ID               string `json:"id"`
	Regulation       string `json:"regulation"`
	Section          string `json:"section,omitempty"`
	Title            string `json:"title"`
	JurisdictionPath string `json:"jurisdictionPath"`
}

// RulePack is an ordered, already-filtered list of rules for one
// (country, region, category) combination.
type RulePack []Rule

// SourceType classifies where ExtractedContent came from.
type SourceType string

const (
	SourceBlog       SourceType = "blog"
	SourceYouTube    SourceType = "youtube"
	SourceMedia      SourceType = "media"
	SourceUpload     SourceType = "upload"
	SourceTranscript SourceType = "transcript"
)

// ContentFormat distinguishes written content from spoken/transcribed content.
type ContentFormat string

const (
	FormatArticle ContentFormat = "article"
	FormatSpeech  ContentFormat = "speech"
)

// ExtractedContent is the pipeline's working value between extraction and
// the reasoner call. It is enriched monotonically: Cleaner sets Cleaned,
// MetadataDetector sets Language/SourceType/ContentFormat, Translator may
// set Translated, and the value is discarded once Report is produced.
type ExtractedContent struct {
	Raw               string
	Cleaned           string
	Translated        string
	SourceType        SourceType
	ContentFormat     ContentFormat
	ExtractionMethod  string
	Language          string
	Screenshot        []byte // optional vision-grounding evidence, see SPEC_FULL §4.9 addendum
}

// RiskLevel is used by the financial-penalty assessment in a Report.
type RiskLevel string

const (
	RiskNone   RiskLevel = "None"
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// Status is the overall compliance verdict of a Report.
type Status string

const (
	StatusCompliant    Status = "Compliant"
	StatusNeedsReview  Status = "Needs Review"
	StatusNonCompliant Status = "Non-Compliant"
)

// Severity ranks a single Violation.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// Violation is one regulatory breach found in the content.
type Violation struct {
	Severity        Severity `json:"severity"`
	Regulation      string   `json:"regulation"`
	ViolationTitle  string   `json:"violation_title"`
	Evidence        string   `json:"evidence"`
	Translation     string   `json:"translation"`
	Guidance        []string `json:"guidance"`
	Fix             []string `json:"fix"`
	RiskScore       int      `json:"risk_score"`
}

// FinancialPenalty is the Report's regulatory-exposure assessment.
type FinancialPenalty struct {
	RiskLevel   RiskLevel `json:"riskLevel"`
	Description string    `json:"description"`
}

// EthicalMarketing is the Report's ethics assessment, scored independently
// of the regulatory violations list.
type EthicalMarketing struct {
	Score      int    `json:"score"`
	Assessment string `json:"assessment"`
}

// Report is the pipeline's canonical output, always well-shaped once it has
// passed through ReportNormalizer.
type Report struct {
	Score             int              `json:"score"`
	Status            Status           `json:"status"`
	Summary           string           `json:"summary"`
	Transcription     string           `json:"transcription"`
	FinancialPenalty  FinancialPenalty `json:"financialPenalty"`
	EthicalMarketing  EthicalMarketing `json:"ethicalMarketing"`
	Violations        []Violation      `json:"violations"`
	ModelUsed         string           `json:"modelUsed"`
	UsedFallback      bool             `json:"usedFallback"`
	ProcessingTimeMs  int              `json:"processingTimeMs"`

	// Error/Message are only set on the ReasonerUnrecoverable shell report;
	// a zero-value Report never has Error set.
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// ContentType classifies an AuditRecord for the persisted schema.
type ContentType string

const (
	ContentTypeText     ContentType = "text"
	ContentTypeURL      ContentType = "url"
	ContentTypeWebPage  ContentType = "webpage"
	ContentTypeImage    ContentType = "image"
	ContentTypeVideo    ContentType = "video"
	ContentTypeAudio    ContentType = "audio"
	ContentTypeDocument ContentType = "document"
)

// AuditRecord is handed to the external AuditStore, §3 and §6.
type AuditRecord struct {
	ID            string
	UserID        string
	ContentType   ContentType
	OriginalInput string
	ExtractedText string
	Transcript    string
	Report        Report
	CreatedAt     time.Time
}
