// Package metrics exposes Prometheus instrumentation for pipeline stage
// latency and outcome counts, grounded on the teacher's prometheus/client_golang
// usage pattern (collector-level metrics registered once at process start).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StageLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "adaudit",
		Name:      "pipeline_stage_duration_seconds",
		Help:      "Duration of each pipeline stage.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"stage"})

	ExtractionAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "adaudit",
		Name:      "extraction_attempts_total",
		Help:      "Extraction strategy attempts by kind, method and outcome.",
	}, []string{"kind", "method", "outcome"})

	ReasonerCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "adaudit",
		Name:      "reasoner_calls_total",
		Help:      "Reasoner calls by model and outcome.",
	}, []string{"model", "outcome"})

	AuditRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "adaudit",
		Name:      "audit_requests_total",
		Help:      "Completed audit requests by final status.",
	}, []string{"status"})
)
