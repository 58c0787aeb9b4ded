// Package metrics exposes Prometheus metrics for the backend.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	CompletionsTotal   *prometheus.CounterVec
	CompletionDuration *prometheus.HistogramVec
	TierFallbacksTotal prometheus.Counter

	ContextReloadsTotal *prometheus.CounterVec
	DrugLookupsTotal    *prometheus.CounterVec
	TrendsFetchesTotal  *prometheus.CounterVec

	ConversationsActive prometheus.Gauge

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &Metrics{registry: registry}

	m.CompletionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curebird_completions_total",
			Help: "Completion attempts against the LLM provider",
		},
		[]string{"model", "outcome"},
	)

	m.CompletionDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "curebird_completion_duration_seconds",
			Help:    "Duration of completion calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)

	m.TierFallbacksTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "curebird_tier_fallbacks_total",
			Help: "Downgrades from the capable tier to the fast tier",
		},
	)

	m.ContextReloadsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curebird_context_reloads_total",
			Help: "Disease-context cache reloads",
		},
		[]string{"outcome"},
	)

	m.DrugLookupsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curebird_drug_lookups_total",
			Help: "openFDA medicine lookups",
		},
		[]string{"result"},
	)

	m.TrendsFetchesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curebird_trends_fetches_total",
			Help: "Disease-trend reads by backing source",
		},
		[]string{"source"},
	)

	m.ConversationsActive = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "curebird_conversations_active",
			Help: "Conversations currently held in memory",
		},
	)

	m.HTTPRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curebird_http_requests_total",
			Help: "HTTP requests served",
		},
		[]string{"method", "path", "status"},
	)

	m.HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "curebird_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
