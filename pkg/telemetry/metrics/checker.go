package metrics

import (
	"time"

	"mercator-hq/copycheck/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckerMetrics tracks calls to the external checker.
//
// Metrics:
//   - copycheck_checker_requests_total: calls by model and status
//   - copycheck_checker_duration_seconds: call latency
//   - copycheck_checker_tokens_total: tokens by model and direction
type CheckerMetrics struct {
	requestsTotal *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	tokensTotal   *prometheus.CounterVec
}

// NewCheckerMetrics creates and registers checker metrics with the provided registry.
func NewCheckerMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CheckerMetrics {
	cm := &CheckerMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "checker_requests_total",
				Help:      "Total number of checker calls",
			},
			[]string{"model", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "checker_duration_seconds",
				Help:      "Checker call latency in seconds",
				Buckets:   cfg.CheckDurationBuckets,
			},
			[]string{"model"},
		),
		tokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "checker_tokens_total",
				Help:      "Total tokens reported by the checker",
			},
			[]string{"model", "direction"},
		),
	}

	registry.MustRegister(cm.requestsTotal, cm.duration, cm.tokensTotal)

	return cm
}

// RecordCheck records one checker call.
func (cm *CheckerMetrics) RecordCheck(model, status string, duration time.Duration, inputTokens, outputTokens int) {
	cm.requestsTotal.WithLabelValues(model, status).Inc()
	cm.duration.WithLabelValues(model).Observe(duration.Seconds())
	if inputTokens > 0 {
		cm.tokensTotal.WithLabelValues(model, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		cm.tokensTotal.WithLabelValues(model, "output").Add(float64(outputTokens))
	}
}
