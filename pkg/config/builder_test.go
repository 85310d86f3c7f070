package config

import "time"

// ConfigBuilder provides a fluent API for building Config instances in tests.
// It starts with default values and allows selective overrides.
type ConfigBuilder struct {
	cfg Config
}

// NewTestConfig creates a new ConfigBuilder with sensible defaults for testing.
// The resulting configuration is valid and can be used immediately.
func NewTestConfig() *ConfigBuilder {
	cfg := Config{}
	ApplyDefaults(&cfg)
	cfg.Checker.APIKey = "test-key"
	cfg.Cache.Backend = "memory"
	cfg.History.Backend = "memory"
	return &ConfigBuilder{cfg: cfg}
}

// Build returns the built Config instance.
func (b *ConfigBuilder) Build() *Config {
	return &b.cfg
}

// WithChecker sets the checker endpoint and model.
func (b *ConfigBuilder) WithChecker(baseURL, model string) *ConfigBuilder {
	b.cfg.Checker.BaseURL = baseURL
	b.cfg.Checker.Model = model
	return b
}

// WithCheckerTimeout sets the per-call checker timeout.
func (b *ConfigBuilder) WithCheckerTimeout(d time.Duration) *ConfigBuilder {
	b.cfg.Checker.Timeout = d
	return b
}

// WithCacheBackend sets the cache backend.
func (b *ConfigBuilder) WithCacheBackend(backend string) *ConfigBuilder {
	b.cfg.Cache.Backend = backend
	return b
}

// WithStrictness sets the detection strictness.
func (b *ConfigBuilder) WithStrictness(s string) *ConfigBuilder {
	b.cfg.Detect.Strictness = s
	return b
}

// WithWorkers sets the batch worker count.
func (b *ConfigBuilder) WithWorkers(n int) *ConfigBuilder {
	b.cfg.Batch.Workers = n
	return b
}

// WithHistorySQLite enables SQLite history at path with the given driver.
func (b *ConfigBuilder) WithHistorySQLite(driver, path string) *ConfigBuilder {
	b.cfg.History.Enabled = true
	b.cfg.History.Backend = "sqlite"
	b.cfg.History.Driver = driver
	b.cfg.History.Path = path
	return b
}

// WithSchedule sets the remote batch cron expression.
func (b *ConfigBuilder) WithSchedule(expr string) *ConfigBuilder {
	b.cfg.Schedule.Cron = expr
	return b
}

// WithLoggingLevel sets the logging level.
func (b *ConfigBuilder) WithLoggingLevel(level string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Level = level
	return b
}

// WithLoggingFormat sets the logging format.
func (b *ConfigBuilder) WithLoggingFormat(format string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Format = format
	return b
}

// MinimalConfig returns a minimal valid configuration for testing.
func MinimalConfig() *Config {
	return NewTestConfig().Build()
}
