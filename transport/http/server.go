// Package http is the reference HTTP adapter for the Audit operation,
// grounded on xg2g's chi middleware stack (internal/api/middleware) —
// Recoverer → RequestID → access log → rate limit — generalized to this
// domain's three endpoints.
package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/adaudit/compliance/internal/logging"
	"github.com/adaudit/compliance/internal/pipelineerr"
	"github.com/adaudit/compliance/pkg/audit"
)

const maxUploadBytes = 100 << 20

// Pipeline is the capability the server needs from pkg/pipeline.
type Pipeline interface {
	Audit(ctx context.Context, input audit.Input) (audit.Report, error)
}

// History is the capability the server needs from pkg/store.
type History interface {
	Get(id string) (audit.AuditRecord, error)
	History(limit, skip int) ([]audit.AuditRecord, error)
}

// RateLimitConfig mirrors the teacher's shape: a global per-IP budget plus
// an exempt list (health checks, internal callers).
type RateLimitConfig struct {
	RequestLimit int
	WindowSize   time.Duration
	Whitelist    []string
}

func (c RateLimitConfig) withDefaults() RateLimitConfig {
	if c.RequestLimit == 0 {
		c.RequestLimit = 20
	}
	if c.WindowSize == 0 {
		c.WindowSize = time.Minute
	}
	return c
}

// NewRouter wires the three Audit endpoints. defaultJurisdiction is the
// configured JURISDICTION_DEFAULT country, used whenever a request omits
// its own country.
func NewRouter(pipeline Pipeline, history History, log logging.Logger, rlCfg RateLimitConfig, defaultJurisdiction string) *chi.Mux {
	rlCfg = rlCfg.withDefaults()

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(accessLog(log))
	r.Use(rateLimit(rlCfg))

	h := &handler{pipeline: pipeline, history: history, defaultJurisdiction: defaultJurisdiction}

	r.Post("/audit", h.postAudit)
	r.Get("/audit/{id}", h.getAudit)
	r.Get("/history", h.getHistory)

	return r
}

type handler struct {
	pipeline            Pipeline
	history             History
	defaultJurisdiction string
}

func (h *handler) postAudit(w http.ResponseWriter, r *http.Request) {
	input, err := parseInput(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if input.Options.Jurisdiction.Country == "" {
		input.Options.Jurisdiction.Country = h.defaultJurisdiction
	}

	report, err := h.pipeline.Audit(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, report)
}

func (h *handler) getAudit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	record, err := h.history.Get(id)
	if err != nil {
		writeError(w, pipelineerr.New(pipelineerr.KindInputInvalid, "audit record not found"))
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *handler) getHistory(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	skip := queryInt(r, "skip", 0)

	records, err := h.history.History(limit, skip)
	if err != nil {
		writeError(w, pipelineerr.Wrap(pipelineerr.KindPersistenceFailure, "history lookup failed", err))
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func parseInput(r *http.Request) (audit.Input, error) {
	contentType := r.Header.Get("Content-Type")

	opts := audit.Options{
		UserID:   r.Header.Get("X-User-ID"),
		Category: r.URL.Query().Get("category"),
		AnalysisMode: audit.AnalysisMode(defaultString(
			r.URL.Query().Get("analysisMode"), string(audit.ModeStandard))),
		Jurisdiction: audit.Jurisdiction{
			Country: r.URL.Query().Get("country"),
			Region:  r.URL.Query().Get("region"),
		},
	}

	if isMultipart(contentType) {
		return parseMultipart(r, opts)
	}
	return parseJSONBody(r, opts)
}

func isMultipart(contentType string) bool {
	const prefix = "multipart/form-data"
	return len(contentType) >= len(prefix) && contentType[:len(prefix)] == prefix
}

func parseJSONBody(r *http.Request, opts audit.Options) (audit.Input, error) {
	var body struct {
		Text         string `json:"text"`
		URL          string `json:"url"`
		Category     string `json:"category"`
		AnalysisMode string `json:"analysisMode"`
		Country      string `json:"country"`
		Region       string `json:"region"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadBytes)).Decode(&body); err != nil {
		return audit.Input{}, pipelineerr.Wrap(pipelineerr.KindInputInvalid, "malformed request body", err)
	}

	opts = mergeOptions(opts, body.Category, body.AnalysisMode, body.Country, body.Region)

	switch {
	case body.Text != "":
		return audit.NewTextInput(body.Text, opts), nil
	case body.URL != "":
		return audit.NewURLInput(body.URL, opts), nil
	default:
		return audit.Input{}, pipelineerr.New(pipelineerr.KindInputInvalid, "request must set either text or url")
	}
}

func parseMultipart(r *http.Request, opts audit.Options) (audit.Input, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return audit.Input{}, pipelineerr.Wrap(pipelineerr.KindPayloadTooLarge, "multipart form too large", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return audit.Input{}, pipelineerr.Wrap(pipelineerr.KindInputInvalid, "missing file part", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		return audit.Input{}, pipelineerr.Wrap(pipelineerr.KindInputInvalid, "failed to read uploaded file", err)
	}
	if len(data) > maxUploadBytes {
		return audit.Input{}, pipelineerr.New(pipelineerr.KindPayloadTooLarge, "uploaded file exceeds max media size")
	}

	opts = mergeOptions(opts,
		r.FormValue("category"), r.FormValue("analysisMode"), r.FormValue("country"), r.FormValue("region"))

	mimeType := header.Header.Get("Content-Type")
	return audit.NewFileInput(data, header.Filename, mimeType, opts), nil
}

func mergeOptions(opts audit.Options, category, mode, country, region string) audit.Options {
	if category != "" {
		opts.Category = category
	}
	if mode != "" {
		opts.AnalysisMode = audit.AnalysisMode(mode)
	}
	if country != "" {
		opts.Jurisdiction.Country = country
	}
	if region != "" {
		opts.Jurisdiction.Region = region
	}
	return opts
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, pipelineerr.HTTPStatus(err), map[string]string{"error": err.Error()})
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// rateLimit wraps httprate's sliding-window limiter with the teacher's
// custom 429 body shape (plain JSON error, no retry-after bookkeeping
// beyond what httprate already tracks internally).
func rateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	whitelist := make(map[string]bool, len(cfg.Whitelist))
	for _, ip := range cfg.Whitelist {
		whitelist[ip] = true
	}

	limiter := httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowSize,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
		}),
	)

	return func(next http.Handler) http.Handler {
		wrapped := limiter(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if whitelist[clientIP(r)] {
				next.ServeHTTP(w, r)
				return
			}
			wrapped.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	return r.RemoteAddr
}

func accessLog(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("request completed", logging.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   ww.Status(),
				"duration": time.Since(start).String(),
			})
		})
	}
}
