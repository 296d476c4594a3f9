package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Lookup outcomes used as the status label
const (
	StatusOK          = "ok"
	StatusCacheHit    = "cache_hit"
	StatusBackendErr  = "backend_error"
	StatusInvalidData = "invalid_data"
)

// Metrics holds the collectors for lookups. Collectors are registered on the
// registerer passed to New so tests can use a private registry.
type Metrics struct {
	LookupsTotal     *prometheus.CounterVec
	LookupDuration   prometheus.Histogram
	CacheHits        prometheus.Counter
	BackendTokens    *prometheus.CounterVec
	BackendRetries   *prometheus.CounterVec
	ReliabilityScore prometheus.Histogram
	RiskScore        prometheus.Histogram
	DroppedCitations prometheus.Counter
	AssemblyWarnings prometheus.Counter

	gatherer prometheus.Gatherer
}

var scoreBuckets = []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

// New registers the collectors on reg. A nil reg uses a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		LookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "telcoscope_lookups_total",
				Help: "Total number of operator lookups",
			},
			[]string{"status"},
		),
		LookupDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "telcoscope_lookup_duration_seconds",
				Help:    "Lookup duration in seconds, backend call included",
				Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
		),
		CacheHits: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "telcoscope_cache_hits_total",
				Help: "Lookups served from the backend response cache",
			},
		),
		BackendTokens: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "telcoscope_backend_tokens_total",
				Help: "Tokens reported by the generative backend",
			},
			[]string{"provider"},
		),
		BackendRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "telcoscope_backend_retries_total",
				Help: "Backend calls repeated after a transient failure",
			},
			[]string{"provider"},
		),
		ReliabilityScore: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "telcoscope_reliability_score",
				Help:    "Reliability score of assembled profiles",
				Buckets: scoreBuckets,
			},
		),
		RiskScore: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "telcoscope_risk_score",
				Help:    "Risk score of assembled profiles",
				Buckets: scoreBuckets,
			},
		),
		DroppedCitations: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "telcoscope_dropped_citations_total",
				Help: "Citations dropped because their URL could not be parsed",
			},
		),
		AssemblyWarnings: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "telcoscope_assembly_warnings_total",
				Help: "Item-level problems skipped while assembling profiles",
			},
		),
		gatherer: reg,
	}
}

// ObserveLookup records one finished lookup
func (m *Metrics) ObserveLookup(status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.LookupsTotal.WithLabelValues(status).Inc()
	m.LookupDuration.Observe(elapsed.Seconds())
	if status == StatusCacheHit {
		m.CacheHits.Inc()
	}
}

// ObserveTokens adds backend token usage for provider
func (m *Metrics) ObserveTokens(provider string, tokens int) {
	if m == nil || tokens <= 0 {
		return
	}
	m.BackendTokens.WithLabelValues(provider).Add(float64(tokens))
}

// ObserveRetry counts one repeated backend call
func (m *Metrics) ObserveRetry(provider string) {
	if m == nil {
		return
	}
	m.BackendRetries.WithLabelValues(provider).Inc()
}

// ObserveProfile records the derived scores and skipped items of one assembly
func (m *Metrics) ObserveProfile(reliability, risk, dropped, warnings int) {
	if m == nil {
		return
	}
	m.ReliabilityScore.Observe(float64(reliability))
	m.RiskScore.Observe(float64(risk))
	if dropped > 0 {
		m.DroppedCitations.Add(float64(dropped))
	}
	if warnings > 0 {
		m.AssemblyWarnings.Add(float64(warnings))
	}
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
