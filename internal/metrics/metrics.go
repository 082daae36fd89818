package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Attempt outcomes
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds the Prometheus collectors of the service
type Metrics struct {
	ProviderAttempts  *prometheus.CounterVec
	ProviderLatency   *prometheus.HistogramVec
	Fallbacks         *prometheus.CounterVec
	Simplifications   *prometheus.CounterVec
	Translations      *prometheus.CounterVec
	RejectedRequests  *prometheus.CounterVec
	ReadabilityScores *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
// A nil registerer means prometheus.DefaultRegisterer.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		ProviderAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_attempts_total",
			Help:      "Remote provider calls by orchestrator, provider and outcome.",
		}, []string{"orchestrator", "provider", "outcome"}),
		ProviderLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_call_duration_seconds",
			Help:      "Duration of remote provider calls.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"orchestrator", "provider"}),
		Fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_total",
			Help:      "Times every provider failed and local output was used.",
		}, []string{"orchestrator"}),
		Simplifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simplifications_total",
			Help:      "Completed simplifications by profile and result kind.",
		}, []string{"profile", "kind"}),
		Translations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translations_total",
			Help:      "Completed translations by target language and result kind.",
		}, []string{"language", "kind"}),
		RejectedRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_requests_total",
			Help:      "Requests rejected because of caller errors.",
		}, []string{"operation", "reason"}),
		ReadabilityScores: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "readability_score",
			Help:      "Readability scores of simplification input and output.",
			Buckets:   prometheus.LinearBuckets(2, 2, 10),
		}, []string{"stage"}),
	}

	reg.MustRegister(
		m.ProviderAttempts,
		m.ProviderLatency,
		m.Fallbacks,
		m.Simplifications,
		m.Translations,
		m.RejectedRequests,
		m.ReadabilityScores,
	)

	return m
}

// ObserveAttempt records one provider call
func (m *Metrics) ObserveAttempt(orchestrator, provider string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.ProviderAttempts.WithLabelValues(orchestrator, provider, outcome).Inc()
	m.ProviderLatency.WithLabelValues(orchestrator, provider).Observe(elapsed.Seconds())
}

// ObserveFallback records an exhausted provider list
func (m *Metrics) ObserveFallback(orchestrator string) {
	if m == nil {
		return
	}
	m.Fallbacks.WithLabelValues(orchestrator).Inc()
}

// ObserveSimplification records a finished simplification
func (m *Metrics) ObserveSimplification(profile, kind string, before, after float64) {
	if m == nil {
		return
	}
	m.Simplifications.WithLabelValues(profile, kind).Inc()
	m.ReadabilityScores.WithLabelValues("before").Observe(before)
	m.ReadabilityScores.WithLabelValues("after").Observe(after)
}

// ObserveTranslation records a finished translation
func (m *Metrics) ObserveTranslation(language, kind string) {
	if m == nil {
		return
	}
	m.Translations.WithLabelValues(language, kind).Inc()
}

// ObserveRejection records a caller error
func (m *Metrics) ObserveRejection(operation, reason string) {
	if m == nil {
		return
	}
	m.RejectedRequests.WithLabelValues(operation, reason).Inc()
}
