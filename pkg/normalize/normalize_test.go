package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adaudit/compliance/pkg/audit"
)

func toJSON(v audit.Report) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func TestNormalize_EmptyViolationsForceCompliant(t *testing.T) {
	report := Normalize(`{"score": 40, "status": "Needs Review", "violations": []}`, "gpt-4o", false, 100)
	assert.Equal(t, audit.StatusCompliant, report.Status)
	assert.Equal(t, 0, report.Score)
}

func TestNormalize_ClampsFractionalScore(t *testing.T) {
	report := Normalize(`{"score": 0.8, "violations": [{"severity":"high"}]}`, "m", false, 0)
	assert.Equal(t, 80, report.Score)
}

func TestNormalize_GuidanceAndFixAtLeastTwo(t *testing.T) {
	report := Normalize(`{"score": 70, "violations": [{"severity":"HIGH", "guidance":["only one"], "fix":[]}]}`, "m", false, 0)
	require.Len(t, report.Violations, 1)
	assert.GreaterOrEqual(t, len(report.Violations[0].Guidance), 2)
	assert.GreaterOrEqual(t, len(report.Violations[0].Fix), 2)
}

func TestNormalize_StripsMarkdownFences(t *testing.T) {
	raw := "```json\n{\"score\": 10, \"violations\": []}\n```"
	report := Normalize(raw, "m", false, 0)
	assert.Equal(t, audit.StatusCompliant, report.Status)
}

func TestNormalize_RepairsTrailingCommasAndExtraText(t *testing.T) {
	raw := `Here is the analysis: {"score": 55, "violations": [{"severity":"CRITICAL",},]} Thanks!`
	report := Normalize(raw, "m", false, 0)
	require.Len(t, report.Violations, 1)
	assert.Equal(t, audit.SeverityCritical, report.Violations[0].Severity)
}

func TestNormalize_UnparsableFallsBackToShell(t *testing.T) {
	report := Normalize("not json at all", "m", false, 0)
	assert.Equal(t, audit.StatusCompliant, report.Status)
	assert.Equal(t, 0, report.Score)
	assert.Empty(t, report.Violations)
}

func TestNormalize_InvalidSeverityDefaultsToMedium(t *testing.T) {
	report := Normalize(`{"violations":[{"severity":"bogus"}]}`, "m", false, 0)
	require.Len(t, report.Violations, 1)
	assert.Equal(t, audit.SeverityMedium, report.Violations[0].Severity)
}

func TestNormalize_Idempotent(t *testing.T) {
	once := Normalize(`{"score": 140, "status":"weird", "violations": [{"severity":"high","guidance":["a"],"fix":["b"]}]}`, "m", false, 0)
	twice := Normalize(toJSON(once), once.ModelUsed, once.UsedFallback, once.ProcessingTimeMs)
	assert.Equal(t, once, twice)
}
