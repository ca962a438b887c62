package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skincare_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// OTPIssued counts one-time passcodes generated for registrations.
	OTPIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skincare_otp_issued_total",
			Help: "Total number of one-time passcodes issued",
		},
	)

	// ActiveSessions tracks live sessions (not expired or logged out).
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "skincare_active_sessions",
			Help: "Number of active sessions",
		},
	)

	// UpstreamFailures counts OCR and AI collaborator errors by service.
	UpstreamFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skincare_upstream_failures_total",
			Help: "Total number of upstream collaborator failures",
		},
		[]string{"service"},
	)

	// AnalysisDuration measures end-to-end product analysis latency.
	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "skincare_analysis_duration_seconds",
			Help:    "Time spent running a full product analysis",
			Buckets: prometheus.DefBuckets,
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skincare_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
