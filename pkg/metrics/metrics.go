package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	SessionsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kairos_sessions_started_total",
			Help: "Count of consultations that entered the intake phase",
		},
	)
	SessionsCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kairos_sessions_completed_total",
			Help: "Count of consultations that delivered an advice bundle",
		},
		[]string{"tier"}, // base, premium
	)
	SessionsAborted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kairos_sessions_aborted_total",
			Help: "Count of consultations that terminated without advice",
		},
		[]string{"reason"},
	)
	VerificationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kairos_verification_duration_seconds",
			Help:    "Wall-clock time spent polling the ledger",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
		},
	)
	GeneratorFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kairos_generator_fallbacks_total",
			Help: "Count of model calls that degraded to the fallback sentence",
		},
	)
)

func Init() {
	prometheus.MustRegister(
		SessionsStarted,
		SessionsCompleted,
		SessionsAborted,
		VerificationDuration,
		GeneratorFallbacks,
	)
}
