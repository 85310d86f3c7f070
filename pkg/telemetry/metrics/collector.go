package metrics

import (
	"sync"
	"time"

	"mercator-hq/copycheck/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns every Prometheus metric copycheck exports. A nil *Collector
// is valid and records nothing, so components can take one unconditionally.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	rowMetrics      *RowMetrics
	checkerMetrics  *CheckerMetrics
	resolverMetrics *ResolverMetrics

	// rule names come from the corpus and are bounded here
	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{Enabled: true, Namespace: "copycheck"}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.CheckDurationBuckets) == 0 {
		cfg.CheckDurationBuckets = append([]float64(nil), config.DefaultCheckDurationBuckets...)
	}

	c := &Collector{
		config:             cfg,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(1000),
	}

	c.rowMetrics = NewRowMetrics(cfg, registry)
	c.checkerMetrics = NewCheckerMetrics(cfg, registry)
	c.resolverMetrics = NewResolverMetrics(cfg, registry)

	return c
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordRow records the outcome of one batch row.
func (c *Collector) RecordRow(rule, conclusion string) {
	if !c.enabled() {
		return
	}
	c.rowMetrics.RecordRow(c.boundedRule(rule), conclusion)
}

// RecordBatch records a finished batch run.
//
// Parameters:
//   - trigger: what started the run ("cli", "watch", "schedule")
//   - status: "completed", or "canceled" when the caller's context ended mid-run
//   - duration: wall time of the whole run
func (c *Collector) RecordBatch(trigger, status string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.rowMetrics.RecordBatch(trigger, status, duration)
}

// RecordCheck records one call to the checker endpoint.
func (c *Collector) RecordCheck(model, status string, duration time.Duration, inputTokens, outputTokens int) {
	if !c.enabled() {
		return
	}
	c.checkerMetrics.RecordCheck(model, status, duration, inputTokens, outputTokens)
}

// RecordResolve records a content lookup against one tier.
// Result is "hit", "miss" or "error".
func (c *Collector) RecordResolve(tier, result string) {
	if !c.enabled() {
		return
	}
	c.resolverMetrics.RecordResolve(tier, result)
}

// RecordBackfill records a write-back of content into an earlier tier.
func (c *Collector) RecordBackfill(tier string) {
	if !c.enabled() {
		return
	}
	c.resolverMetrics.RecordBackfill(tier)
}

// SetCacheDisabled reports whether the cache tier has been switched off
// after a backend failure.
func (c *Collector) SetCacheDisabled(disabled bool) {
	if !c.enabled() {
		return
	}
	c.resolverMetrics.SetCacheDisabled(disabled)
}

func (c *Collector) boundedRule(rule string) string {
	if c.cardinalityLimiter.Allow(rule) {
		return rule
	}
	return "other"
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label values.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label value is allowed. Returns true if the value
// already exists or if we haven't reached the cardinality limit yet.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
