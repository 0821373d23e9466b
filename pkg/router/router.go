// Package router implements ModelRouter: selecting the reasoner model and
// generation parameters for a given (possibly reduced) content string, per
// spec §4.9.
package router

const (
	DefaultShortThreshold = 3000
	DefaultLongThreshold  = 10000

	DefaultTemperature    = 0.0
	DefaultTopP           = 0.95
	DefaultMinOutputToken = 1500
	DefaultMaxOutputToken = 8192
)

// Plan is the generation configuration ReasonerAdapter must use for one call.
type Plan struct {
	Model           string
	Temperature     float64
	TopP            float64
	MaxOutputTokens int
}

// Router picks a model tier and uniform generation config. Per SPEC_FULL §9's
// Open Question decision, generation parameters (temperature/topP/timeout)
// are uniform across tiers; only the model name and output-token ceiling vary.
type Router struct {
	ShortThreshold int
	LongThreshold  int

	PrimaryModel  string
	HeavyModel    string
	FallbackModel string

	// Complexity reports whether content should be treated as "complex"
	// regardless of length (e.g. many distinct claim markers). Optional;
	// nil means length is the only signal.
	Complexity func(content string) bool
}

func New(shortThreshold, longThreshold int, primary, heavy, fallback string) *Router {
	return &Router{
		ShortThreshold: shortThreshold,
		LongThreshold:  longThreshold,
		PrimaryModel:   primary,
		HeavyModel:     heavy,
		FallbackModel:  fallback,
	}
}

// Select returns the generation plan for content on the primary attempt.
func (r *Router) Select(content string) Plan {
	model := r.PrimaryModel
	maxTokens := DefaultMinOutputToken

	isLong := len(content) >= r.LongThreshold
	isComplex := r.Complexity != nil && r.Complexity(content)

	if r.HeavyModel != "" && (isLong || isComplex) {
		model = r.HeavyModel
		maxTokens = DefaultMaxOutputToken
	} else if len(content) >= r.ShortThreshold {
		maxTokens = (DefaultMinOutputToken + DefaultMaxOutputToken) / 2
	}

	return Plan{
		Model:           model,
		Temperature:     DefaultTemperature,
		TopP:            DefaultTopP,
		MaxOutputTokens: maxTokens,
	}
}

// Fallback returns the plan to retry with once the primary call has failed.
// Returns ok=false when no fallback model is configured.
func (r *Router) Fallback(content string) (Plan, bool) {
	if r.FallbackModel == "" {
		return Plan{}, false
	}
	plan := r.Select(content)
	plan.Model = r.FallbackModel
	return plan, true
}
