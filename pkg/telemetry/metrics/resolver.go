package metrics

import (
	"mercator-hq/copycheck/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ResolverMetrics tracks content lookups across tiers.
//
// Metrics:
//   - copycheck_resolver_lookups_total: lookups by tier and result (hit, miss, error)
//   - copycheck_resolver_backfills_total: write-backs into earlier tiers
//   - copycheck_cache_disabled: 1 once the cache tier has been switched off
//
// Hit rate per tier:
//
//	rate(copycheck_resolver_lookups_total{tier="cache",result="hit"}[5m]) /
//	rate(copycheck_resolver_lookups_total{tier="cache"}[5m])
type ResolverMetrics struct {
	lookupsTotal   *prometheus.CounterVec
	backfillsTotal *prometheus.CounterVec
	cacheDisabled  prometheus.Gauge
}

// NewResolverMetrics creates and registers resolver metrics with the provided registry.
func NewResolverMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ResolverMetrics {
	rm := &ResolverMetrics{
		lookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "resolver_lookups_total",
				Help:      "Total number of content lookups per tier",
			},
			[]string{"tier", "result"},
		),
		backfillsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "resolver_backfills_total",
				Help:      "Total number of content write-backs per tier",
			},
			[]string{"tier"},
		),
		cacheDisabled: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cache_disabled",
				Help:      "1 if the cache tier was disabled after a backend failure",
			},
		),
	}

	registry.MustRegister(rm.lookupsTotal, rm.backfillsTotal, rm.cacheDisabled)

	return rm
}

// RecordResolve increments the lookup counter.
func (rm *ResolverMetrics) RecordResolve(tier, result string) {
	rm.lookupsTotal.WithLabelValues(tier, result).Inc()
}

// RecordBackfill increments the backfill counter.
func (rm *ResolverMetrics) RecordBackfill(tier string) {
	rm.backfillsTotal.WithLabelValues(tier).Inc()
}

// SetCacheDisabled sets the cache-disabled gauge.
func (rm *ResolverMetrics) SetCacheDisabled(disabled bool) {
	if disabled {
		rm.cacheDisabled.Set(1)
		return
	}
	rm.cacheDisabled.Set(0)
}
