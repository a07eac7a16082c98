// Package metrics exposes Prometheus instrumentation for the consultation
// pipeline and the HTTP surface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "agrovision"

// Recorder owns a private registry so independent instances never collide.
type Recorder struct {
	registry *prometheus.Registry

	stageDuration  *prometheus.HistogramVec
	classifierRuns *prometheus.CounterVec
	gateOutcomes   *prometheus.CounterVec
	verifications  *prometheus.CounterVec
	chatTurns      *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// New creates a Recorder with Go runtime and process collectors registered.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		stageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Duration of consultation pipeline stages.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"stage"}),
		classifierRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifier_runs_total",
			Help:      "Ensemble classifier calls by result.",
		}, []string{"result"}),
		gateOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gate_decisions_total",
			Help:      "Validity and confidence gate decisions by outcome.",
		}, []string{"outcome"}),
		verifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verifications_total",
			Help:      "Verification verdicts by status.",
		}, []string{"status"}),
		chatTurns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_turns_total",
			Help:      "Chat generations by result.",
		}, []string{"result"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "code"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// ObserveStage records how long a pipeline stage took.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// ClassifierRun counts one ensemble call.
func (r *Recorder) ClassifierRun(ok bool) {
	r.classifierRuns.WithLabelValues(result(ok)).Inc()
}

// GateOutcome counts one gate decision.
func (r *Recorder) GateOutcome(outcome string) {
	r.gateOutcomes.WithLabelValues(outcome).Inc()
}

// Verification counts one verifier verdict.
func (r *Recorder) Verification(status string) {
	r.verifications.WithLabelValues(status).Inc()
}

// ChatTurn counts one chat generation.
func (r *Recorder) ChatTurn(ok bool) {
	r.chatTurns.WithLabelValues(result(ok)).Inc()
}

// Middleware records request counts and latency.
func (r *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, req)

		r.httpRequests.WithLabelValues(req.Method, strconv.Itoa(sw.code)).Inc()
		r.httpDuration.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (s *statusWriter) WriteHeader(code int) {
	s.code = code
	s.ResponseWriter.WriteHeader(code)
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}
