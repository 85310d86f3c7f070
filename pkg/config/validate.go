package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "checker.base_url").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
//
// Validation only covers shape and enumerations. Credentials such as the
// checker API key are checked when the component that needs them is built,
// so commands that never call the checker run without one.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateChecker(&cfg.Checker)...)
	errs = append(errs, validateRules(&cfg.Rules)...)
	errs = append(errs, validateDetect(&cfg.Detect)...)
	errs = append(errs, validateCache(&cfg.Cache)...)
	errs = append(errs, validateBatch(&cfg.Batch)...)
	errs = append(errs, validateHistory(&cfg.History)...)
	errs = append(errs, validateWatch(&cfg.Watch)...)
	errs = append(errs, validateSchedule(&cfg.Schedule)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateChecker validates checker endpoint configuration.
func validateChecker(cfg *CheckerConfig) []FieldError {
	var errs []FieldError

	if cfg.BaseURL == "" {
		errs = append(errs, FieldError{
			Field:   "checker.base_url",
			Message: "base URL is required",
		})
	} else if u, err := url.Parse(cfg.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, FieldError{
			Field:   "checker.base_url",
			Message: fmt.Sprintf("invalid URL %q: must be absolute", cfg.BaseURL),
		})
	}

	if cfg.Model == "" {
		errs = append(errs, FieldError{
			Field:   "checker.model",
			Message: "model is required",
		})
	}

	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "checker.timeout",
			Message: "timeout must be positive",
		})
	}

	if cfg.MaxRetries < 0 {
		errs = append(errs, FieldError{
			Field:   "checker.max_retries",
			Message: "max retries must be non-negative",
		})
	}
	if cfg.MaxRetries > 10 {
		errs = append(errs, FieldError{
			Field:   "checker.max_retries",
			Message: "max retries exceeds reasonable limit (10)",
		})
	}

	if cfg.MaxTokens < 0 {
		errs = append(errs, FieldError{
			Field:   "checker.max_tokens",
			Message: "max tokens must be non-negative",
		})
	}

	if cfg.RequestsPerSecond < 0 {
		errs = append(errs, FieldError{
			Field:   "checker.requests_per_second",
			Message: "requests per second must be non-negative",
		})
	}
	if cfg.Burst < 0 {
		errs = append(errs, FieldError{
			Field:   "checker.burst",
			Message: "burst must be non-negative",
		})
	}

	return errs
}

// validateRules validates rule corpus layout configuration.
func validateRules(cfg *RulesConfig) []FieldError {
	var errs []FieldError

	if cfg.DefinitionFile == "" || strings.ContainsAny(cfg.DefinitionFile, `/\`) {
		errs = append(errs, FieldError{
			Field:   "rules.definition_file",
			Message: "definition file must be a plain file name",
		})
	}
	if cfg.Extension != "" && !strings.HasPrefix(cfg.Extension, ".") {
		errs = append(errs, FieldError{
			Field:   "rules.extension",
			Message: fmt.Sprintf("extension %q must start with '.'", cfg.Extension),
		})
	}

	return errs
}

func validateDetect(cfg *DetectConfig) []FieldError {
	switch cfg.Strictness {
	case "loose", "strict":
		return nil
	}
	return []FieldError{{
		Field:   "detect.strictness",
		Message: fmt.Sprintf("invalid strictness %q: must be 'loose' or 'strict'", cfg.Strictness),
	}}
}

// validateCache validates cache tier configuration.
func validateCache(cfg *CacheConfig) []FieldError {
	var errs []FieldError

	validBackends := map[string]bool{"redis": true, "memory": true, "none": true}
	if !validBackends[cfg.Backend] {
		errs = append(errs, FieldError{
			Field:   "cache.backend",
			Message: fmt.Sprintf("invalid backend %q: must be 'redis', 'memory', or 'none'", cfg.Backend),
		})
	}

	if cfg.TTL < 0 {
		errs = append(errs, FieldError{
			Field:   "cache.ttl",
			Message: "TTL must be positive",
		})
	}

	switch cfg.Backend {
	case "redis":
		if cfg.Redis.Addr == "" {
			errs = append(errs, FieldError{
				Field:   "cache.redis.addr",
				Message: "Redis address is required when backend is 'redis'",
			})
		}
		if cfg.Redis.DB < 0 {
			errs = append(errs, FieldError{
				Field:   "cache.redis.db",
				Message: "Redis database must be non-negative",
			})
		}
	case "memory":
		if cfg.Memory.Size < 1 {
			errs = append(errs, FieldError{
				Field:   "cache.memory.size",
				Message: "memory cache size must be at least 1",
			})
		}
	}

	return errs
}

// validateBatch validates batch processing configuration.
func validateBatch(cfg *BatchConfig) []FieldError {
	var errs []FieldError

	if cfg.IDColumn == "" {
		errs = append(errs, FieldError{
			Field:   "batch.id_column",
			Message: "ID column is required",
		})
	}
	if cfg.Workers < 1 {
		errs = append(errs, FieldError{
			Field:   "batch.workers",
			Message: "workers must be at least 1",
		})
	}
	if cfg.ProgressInterval < 1 {
		errs = append(errs, FieldError{
			Field:   "batch.progress_interval",
			Message: "progress interval must be at least 1",
		})
	}
	if cfg.ResultColumn != "" && cfg.ResultColumn == cfg.ConclusionColumn {
		errs = append(errs, FieldError{
			Field:   "batch.conclusion_column",
			Message: "conclusion column must differ from result column",
		})
	}

	return errs
}

// validateHistory validates check history configuration.
func validateHistory(cfg *HistoryConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return errs
	}

	switch cfg.Backend {
	case "sqlite":
		if cfg.Path == "" {
			errs = append(errs, FieldError{
				Field:   "history.path",
				Message: "SQLite path is required when backend is 'sqlite'",
			})
		}
		if cfg.Driver != "sqlite3" && cfg.Driver != "sqlite" {
			errs = append(errs, FieldError{
				Field:   "history.driver",
				Message: fmt.Sprintf("invalid driver %q: must be 'sqlite3' or 'sqlite'", cfg.Driver),
			})
		}
	case "memory":
	default:
		errs = append(errs, FieldError{
			Field:   "history.backend",
			Message: fmt.Sprintf("invalid backend %q: must be 'sqlite' or 'memory'", cfg.Backend),
		})
	}

	if cfg.RetentionDays < 0 {
		errs = append(errs, FieldError{
			Field:   "history.retention_days",
			Message: "retention days must be non-negative",
		})
	}
	if cfg.PruneSchedule != "" {
		if _, err := cron.ParseStandard(cfg.PruneSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "history.prune_schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}

	return errs
}

func validateWatch(cfg *WatchConfig) []FieldError {
	var errs []FieldError

	if cfg.DebounceInterval < 0 {
		errs = append(errs, FieldError{
			Field:   "watch.debounce_interval",
			Message: "debounce interval must be positive",
		})
	}
	if cfg.InputDir != "" && cfg.OutputDir != "" && dirWithin(cfg.OutputDir, cfg.InputDir) {
		errs = append(errs, FieldError{
			Field:   "watch.output_dir",
			Message: fmt.Sprintf("output directory %q must not be inside input directory %q", cfg.OutputDir, cfg.InputDir),
		})
	}
	for i, ext := range cfg.Extensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("watch.extensions[%d]", i),
				Message: fmt.Sprintf("extension %q must start with '.'", ext),
			})
		}
	}

	return errs
}

// dirWithin reports whether dir is parent or a directory below it.
func dirWithin(dir, parent string) bool {
	d, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	p, err := filepath.Abs(parent)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(p, d)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func validateSchedule(cfg *ScheduleConfig) []FieldError {
	if cfg.Cron == "" {
		return nil
	}
	if _, err := cron.ParseStandard(cfg.Cron); err != nil {
		return []FieldError{{
			Field:   "schedule.cron",
			Message: fmt.Sprintf("invalid cron expression: %v", err),
		}}
	}
	return nil
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if cfg.Logging.Level == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: "logging level is required",
		})
	} else if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if cfg.Logging.Format == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: "logging format is required",
		})
	} else if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json', 'text', or 'console'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Path == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path is required when metrics are enabled",
			})
		} else if cfg.Metrics.Path[0] != '/' {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path must start with /",
			})
		}
	}

	return errs
}
