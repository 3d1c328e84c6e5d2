package recommend

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes orchestration counters and latencies.
type Metrics struct {
	Requests        *prometheus.CounterVec
	Fallbacks       prometheus.Counter
	Degradations    *prometheus.CounterVec
	ProviderLatency *prometheus.HistogramVec
}

// NewMetrics registers orchestration metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "forkcast",
			Name:      "recommendation_requests_total",
			Help:      "Recommendation requests by mode and outcome.",
		}, []string{"mode", "outcome"}),
		Fallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "forkcast",
			Name:      "provider_fallbacks_total",
			Help:      "Provider calls retried against the default model.",
		}),
		Degradations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "forkcast",
			Name:      "output_degradations_total",
			Help:      "Validation outcomes by degradation tier.",
		}, []string{"tier"}),
		ProviderLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "forkcast",
			Name:      "provider_request_seconds",
			Help:      "Provider completion latency.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8),
		}, []string{"provider"}),
	}
}

// NewNopMetrics returns metrics bound to a throwaway registry, for tests.
func NewNopMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
