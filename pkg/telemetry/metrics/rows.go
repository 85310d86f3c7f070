package metrics

import (
	"time"

	"mercator-hq/copycheck/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RowMetrics tracks batch throughput.
//
// Metrics:
//   - copycheck_rows_total: rows processed by rule and conclusion
//   - copycheck_batches_total: batch runs by trigger and status
//   - copycheck_batch_duration_seconds: wall time of batch runs
type RowMetrics struct {
	rowsTotal     *prometheus.CounterVec
	batchesTotal  *prometheus.CounterVec
	batchDuration *prometheus.HistogramVec
}

// NewRowMetrics creates and registers row metrics with the provided registry.
func NewRowMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RowMetrics {
	rm := &RowMetrics{
		rowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rows_total",
				Help:      "Total number of batch rows processed",
			},
			[]string{"rule", "conclusion"},
		),
		batchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "batches_total",
				Help:      "Total number of batch runs",
			},
			[]string{"trigger", "status"},
		),
		batchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "batch_duration_seconds",
				Help:      "Wall time of batch runs in seconds",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			},
			[]string{"trigger"},
		),
	}

	registry.MustRegister(rm.rowsTotal, rm.batchesTotal, rm.batchDuration)

	return rm
}

// RecordRow increments the row counter.
func (rm *RowMetrics) RecordRow(rule, conclusion string) {
	rm.rowsTotal.WithLabelValues(rule, conclusion).Inc()
}

// RecordBatch records a finished batch run.
func (rm *RowMetrics) RecordBatch(trigger, status string, duration time.Duration) {
	rm.batchesTotal.WithLabelValues(trigger, status).Inc()
	rm.batchDuration.WithLabelValues(trigger).Observe(duration.Seconds())
}
