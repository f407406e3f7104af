// Package metrics provides Prometheus collectors for model calls, sessions,
// and queued runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rsum"

// Model call outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Run states counted by RunsTotal.
const (
	RunQueued    = "queued"
	RunSucceeded = "succeeded"
	RunFailed    = "failed"
	RunRejected  = "rejected"
)

// Metrics owns a private registry so tests and multiple servers never
// collide on the global default registry.
type Metrics struct {
	reg *prometheus.Registry

	ModelCalls        *prometheus.CounterVec
	ModelCallDuration *prometheus.HistogramVec
	SessionOutcomes   *prometheus.CounterVec
	Questions         prometheus.Histogram
	RunsTotal         *prometheus.CounterVec
	HTTPRequests      *prometheus.CounterVec
}

// New creates a Metrics instance with every collector registered.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		ModelCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_calls_total",
			Help:      "Model calls by pipeline stage and outcome",
		}, []string{"stage", "outcome"}),
		ModelCallDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_call_duration_seconds",
			Help:      "Model call duration in seconds by pipeline stage",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"stage"}),
		SessionOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_outcomes_total",
			Help:      "Completed sessions by how their memory was fixed",
		}, []string{"outcome"}),
		Questions: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "verification_questions",
			Help:      "Verification questions generated per session",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32},
		}),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by state transition",
		}, []string{"state"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "API requests by route and status code",
		}, []string{"route", "code"}),
	}

	m.reg.MustRegister(
		m.ModelCalls,
		m.ModelCallDuration,
		m.SessionOutcomes,
		m.Questions,
		m.RunsTotal,
		m.HTTPRequests,
	)
	return m
}

// ObserveModelCall records one model call.
func (m *Metrics) ObserveModelCall(stage string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.ModelCalls.WithLabelValues(stage, outcome).Inc()
	m.ModelCallDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// ObserveSession records how one session's memory was fixed and how many
// verification questions it produced.
func (m *Metrics) ObserveSession(outcome string, questions int) {
	if m == nil {
		return
	}
	m.SessionOutcomes.WithLabelValues(outcome).Inc()
	m.Questions.Observe(float64(questions))
}

// IncRun counts a run state transition.
func (m *Metrics) IncRun(state string) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(state).Inc()
}

// Registry exposes the underlying registry for tests and custom collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// Handler serves the Prometheus exposition format for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
