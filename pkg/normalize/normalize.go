// Package normalize implements the ReportNormalizer: turns whatever JSON
// (or near-JSON) the reasoner returned into a valid audit.Report, per the
// invariants in SPEC_FULL §3 and §4.11. This is the single place in the
// pipeline that repairs model output; the reasoner only checks that its
// response parses.
package normalize

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"

	"github.com/adaudit/compliance/pkg/audit"
)

var fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// rawReport mirrors the loose shape the reasoner may emit: fields may be
// missing, mistyped, or out of range, which is exactly what this package
// exists to repair.
type rawReport struct {
	Score            json.Number      `json:"score"`
	Status           string           `json:"status"`
	Summary          string           `json:"summary"`
	Transcription    string           `json:"transcription"`
	FinancialPenalty *rawPenalty      `json:"financialPenalty"`
	EthicalMarketing *rawEthical      `json:"ethicalMarketing"`
	Violations       []rawViolation   `json:"violations"`
}

type rawPenalty struct {
	RiskLevel   string `json:"riskLevel"`
	Description string `json:"description"`
}

type rawEthical struct {
	Score      json.Number `json:"score"`
	Assessment string      `json:"assessment"`
}

type rawViolation struct {
	Severity       string      `json:"severity"`
	Regulation     string      `json:"regulation"`
	ViolationTitle string      `json:"violation_title"`
	Evidence       string      `json:"evidence"`
	Translation    string      `json:"translation"`
	Guidance       []string    `json:"guidance"`
	Fix            []string    `json:"fix"`
	RiskScore      json.Number `json:"risk_score"`
}

// Normalize repairs raw reasoner output into a well-shaped Report. It never
// fails: unparsable input becomes the same empty-violations report
// (status Compliant, score 0) that a structurally valid-but-empty report
// would produce, with placeholder summary and assessments.
func Normalize(raw string, modelUsed string, usedFallback bool, processingTimeMs int) audit.Report {
	parsed, ok := parseLoose(raw)
	report := audit.Report{ModelUsed: modelUsed, UsedFallback: usedFallback, ProcessingTimeMs: processingTimeMs}

	if !ok {
		report.Status = audit.StatusNeedsReview
		report.Summary = "Summary unavailable."
		report.FinancialPenalty = audit.FinancialPenalty{RiskLevel: audit.RiskLow, Description: "Unable to assess; reasoner output could not be parsed."}
		report.EthicalMarketing = audit.EthicalMarketing{Score: 50, Assessment: "Unable to assess; reasoner output could not be parsed."}
		report.Violations = nil
		return finalizeEmptyViolations(report)
	}

	report.Score = coerceScore(parsed.Score)

	report.Status = audit.Status(parsed.Status)
	if report.Status == "" {
		report.Status = audit.StatusNeedsReview
	}

	report.Summary = parsed.Summary
	if report.Summary == "" {
		report.Summary = "Summary unavailable."
	}
	report.Transcription = parsed.Transcription

	if parsed.FinancialPenalty != nil {
		report.FinancialPenalty = audit.FinancialPenalty{
			RiskLevel:   coerceRiskLevel(parsed.FinancialPenalty.RiskLevel),
			Description: orDefault(parsed.FinancialPenalty.Description, "No financial penalty information available."),
		}
	} else {
		report.FinancialPenalty = audit.FinancialPenalty{RiskLevel: audit.RiskLow, Description: "No financial penalty information available."}
	}

	if parsed.EthicalMarketing != nil {
		report.EthicalMarketing = audit.EthicalMarketing{
			Score:      clampInt(coerceInt(parsed.EthicalMarketing.Score, 50), 0, 100),
			Assessment: orDefault(parsed.EthicalMarketing.Assessment, "No ethical marketing assessment available."),
		}
	} else {
		report.EthicalMarketing = audit.EthicalMarketing{Score: 50, Assessment: "No ethical marketing assessment available."}
	}

	report.Violations = make([]audit.Violation, 0, len(parsed.Violations))
	for _, v := range parsed.Violations {
		report.Violations = append(report.Violations, normalizeViolation(v))
	}

	return finalizeEmptyViolations(report)
}

func finalizeEmptyViolations(report audit.Report) audit.Report {
	if len(report.Violations) == 0 {
		report.Status = audit.StatusCompliant
		report.Score = 0
	}
	return report
}

func normalizeViolation(v rawViolation) audit.Violation {
	severity := audit.Severity(strings.ToUpper(strings.TrimSpace(v.Severity)))
	switch severity {
	case audit.SeverityCritical, audit.SeverityHigh, audit.SeverityMedium, audit.SeverityLow:
	default:
		severity = audit.SeverityMedium
	}

	guidance := extendWithPlaceholders(v.Guidance, 2, "[Guidance unavailable — consult legal/compliance counsel]")
	fix := extendWithPlaceholders(v.Fix, 2, "[Compliant rewrite unavailable — stub]")

	riskScore := coerceInt(v.RiskScore, defaultRiskScore(severity))
	riskScore = clampInt(riskScore, 0, 100)

	return audit.Violation{
		Severity:       severity,
		Regulation:     orDefault(v.Regulation, "Unspecified regulation"),
		ViolationTitle: orDefault(v.ViolationTitle, "Unspecified violation"),
		Evidence:       orDefault(v.Evidence, "[No evidence text captured]"),
		Translation:    orDefault(v.Translation, "[No translation captured]"),
		Guidance:       guidance,
		Fix:            fix,
		RiskScore:      riskScore,
	}
}

func defaultRiskScore(s audit.Severity) int {
	switch s {
	case audit.SeverityCritical:
		return 90
	case audit.SeverityHigh:
		return 70
	case audit.SeverityMedium:
		return 50
	default:
		return 30
	}
}

func extendWithPlaceholders(items []string, min int, placeholder string) []string {
	out := make([]string, 0, max(len(items), min))
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			out = append(out, item)
		}
	}
	for len(out) < min {
		out = append(out, placeholder)
	}
	return out
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func coerceRiskLevel(s string) audit.RiskLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return audit.RiskNone
	case "low":
		return audit.RiskLow
	case "medium":
		return audit.RiskMedium
	case "high":
		return audit.RiskHigh
	default:
		return audit.RiskLow
	}
}

func coerceScore(n json.Number) int {
	f, err := n.Float64()
	if err != nil {
		return 0
	}
	if f > 0 && f <= 1 {
		f *= 100
	}
	return clampInt(int(math.Round(f)), 0, 100)
}

func coerceInt(n json.Number, fallback int) int {
	f, err := n.Float64()
	if err != nil {
		return fallback
	}
	return int(math.Round(f))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// parseLoose implements the two-pass repair: strip Markdown fences if
// present, otherwise find the first balanced {...} region aware of string
// escapes, dropping trailing commas before unmarshalling.
func parseLoose(s string) (rawReport, bool) {
	candidate := strings.TrimSpace(s)

	if m := fencePattern.FindStringSubmatch(candidate); m != nil {
		candidate = strings.TrimSpace(m[1])
	} else if sliced, ok := sliceBalancedJSON(candidate); ok {
		candidate = sliced
	}

	candidate = dropTrailingCommas(candidate)

	var out rawReport
	if err := json.Unmarshal([]byte(candidate), &out); err != nil {
		return rawReport{}, false
	}
	return out, true
}

// sliceBalancedJSON finds the first '{' and its matching '}' (tracking
// string literals and escapes so braces inside strings don't confuse
// depth), returning the slice between them inclusive.
func sliceBalancedJSON(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

var trailingComma = regexp.MustCompile(`,\s*([}\]])`)

func dropTrailingCommas(s string) string {
	return trailingComma.ReplaceAllString(s, "$1")
}
