// Package metrics exports copycheck's Prometheus metrics.
//
// The Collector groups three metric families:
//
//   - rows and batches: rows processed per rule and conclusion, batch runs
//     per trigger and their duration
//   - checker: calls, latency and token usage of the external checker
//   - resolver: lookups and backfills per content tier, and whether the
//     cache tier has been disabled
//
// Rule labels are bounded by a CardinalityLimiter; rule names beyond the
// limit are recorded as "other".
//
// Example:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordRow("商品コピーチェック", "OK")
//	mux.Handle("/metrics", collector.Handler())
package metrics
