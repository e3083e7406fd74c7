package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	ProviderRequestsTotal   *prometheus.CounterVec
	ProviderRequestDuration *prometheus.HistogramVec

	ChainFallbacksTotal *prometheus.CounterVec

	EnrichmentsTotal *prometheus.CounterVec

	LLMRequestsTotal   *prometheus.CounterVec
	LLMRequestDuration *prometheus.HistogramVec

	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	RateLimitHitsTotal prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nexa_requests_total",
				Help: "Total number of API requests processed",
			},
			[]string{"surface", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nexa_request_duration_seconds",
				Help:    "Request duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"surface"},
		),
		RequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "nexa_requests_in_flight",
				Help: "Number of requests currently being processed",
			},
		),

		ProviderRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nexa_provider_requests_total",
				Help: "Total number of upstream provider requests",
			},
			[]string{"provider", "status"},
		),
		ProviderRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nexa_provider_request_duration_seconds",
				Help:    "Upstream provider request duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{"provider"},
		),

		ChainFallbacksTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nexa_chain_fallbacks_total",
				Help: "Times the fallback chain advanced past a provider",
			},
			[]string{"provider"},
		),

		EnrichmentsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nexa_enrichments_total",
				Help: "Thumbnail enrichment attempts by outcome",
			},
			[]string{"status"},
		),

		LLMRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nexa_llm_requests_total",
				Help: "Total number of LLM API requests",
			},
			[]string{"provider", "status"},
		),
		LLMRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nexa_llm_request_duration_seconds",
				Help:    "LLM request duration in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"provider"},
		),

		CacheHitsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "nexa_cache_hits_total",
				Help: "Total number of search cache hits",
			},
		),
		CacheMissesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "nexa_cache_misses_total",
				Help: "Total number of search cache misses",
			},
		),

		RateLimitHitsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "nexa_rate_limit_hits_total",
				Help: "Total number of rate limited requests",
			},
		),
	}

	return m
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func (m *Metrics) RecordRequest(surface, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(surface, status).Inc()
	m.RequestDuration.WithLabelValues(surface).Observe(duration.Seconds())
}

func (m *Metrics) RecordProviderRequest(provider, status string, duration time.Duration) {
	m.ProviderRequestsTotal.WithLabelValues(provider, status).Inc()
	m.ProviderRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
	if status != "success" {
		m.ChainFallbacksTotal.WithLabelValues(provider).Inc()
	}
}

func (m *Metrics) RecordEnrichment(status string) {
	m.EnrichmentsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordLLMRequest(provider, status string, duration time.Duration) {
	m.LLMRequestsTotal.WithLabelValues(provider, status).Inc()
	m.LLMRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

func (m *Metrics) RecordCacheHit()  { m.CacheHitsTotal.Inc() }
func (m *Metrics) RecordCacheMiss() { m.CacheMissesTotal.Inc() }

func (m *Metrics) RecordRateLimitHit() { m.RateLimitHitsTotal.Inc() }

func (m *Metrics) IncRequestsInFlight() { m.RequestsInFlight.Inc() }
func (m *Metrics) DecRequestsInFlight() { m.RequestsInFlight.Dec() }
