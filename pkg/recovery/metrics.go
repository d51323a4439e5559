package recovery

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the Prometheus collectors updated by a search. A nil *Metrics
// records nothing.
type Metrics struct {
	CandidatesTested prometheus.Counter
	KeysRecovered    *prometheus.CounterVec
	PhaseDuration    *prometheus.HistogramVec
}

// NewMetrics creates the recovery collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CandidatesTested: factory.NewCounter(prometheus.CounterOpts{
			Name: "pkcrypt_recovery_candidates_tested_total",
			Help: "Candidate private keys derived and checked",
		}),
		KeysRecovered: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pkcrypt_recovery_keys_recovered_total",
			Help: "Private keys recovered, by nonce pattern",
		}, []string{"pattern"}),
		PhaseDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pkcrypt_recovery_phase_duration_seconds",
			Help:    "Time spent in each search phase",
			Buckets: prometheus.ExponentialBucketsRange(0.0001, 600, 20),
		}, []string{"phase"}),
	}
}

func (m *Metrics) candidateTested() {
	if m != nil {
		m.CandidatesTested.Inc()
	}
}

func (m *Metrics) keyRecovered(pattern string) {
	if m != nil {
		m.KeysRecovered.WithLabelValues(pattern).Inc()
	}
}

func (m *Metrics) observePhase(phase string, seconds float64) {
	if m != nil {
		m.PhaseDuration.WithLabelValues(phase).Observe(seconds)
	}
}
