// Package extract defines the Strategy abstraction described in SPEC_FULL
// §9: dynamic dispatch by MIME/URL modeled as an ordered list of small
// Strategy implementations per audit.Kind (each family's Catalog function
// builds one, and pipeline.CatalogsFrom picks it by Kind), mirroring the teacher's plugin.Plugin/PluginFactories
// registry pattern generalized from "long-running plugin" to "one-shot
// extraction attempt".
package extract

import (
	"context"

	"github.com/adaudit/compliance/pkg/audit"
)

// Source is whatever a Strategy needs to produce text: the original Input
// plus any bytes already fetched by an earlier stage (nil if not yet fetched).
type Source struct {
	Input audit.Input
	Bytes []byte
	MIME  string
}

// Outcome is a successful strategy attempt.
type Outcome struct {
	Text       string
	Method     string
	Screenshot []byte // optional, see SPEC_FULL §4.9 addendum
}

// Strategy is the shared capability every extractor implements: source in,
// (text, method) out, or a failure that the caller logs and falls through
// on.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, src Source) (Outcome, error)
}

// MinCleanedLength is the "too short, try the next strategy" threshold from
// SPEC_FULL §4.10.
const MinCleanedLength = 300

// Event is the structured per-attempt log record SPEC_FULL §4.10 requires
// between consecutive strategies.
type Event struct {
	Method  string
	Status  string // "ok" | "too_short" | "failed"
	Message string
}
