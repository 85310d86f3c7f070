// Package telemetry groups copycheck's observability packages.
//
//   - logging: slog construction, context fields and secret redaction
//   - metrics: Prometheus metrics for rows, checker calls and content tiers
//   - health: liveness, readiness and version endpoints for daemons
package telemetry
