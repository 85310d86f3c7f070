package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment variable override.
const EnvPrefix = "COPYCHECK_"

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention COPYCHECK_SECTION_FIELD (e.g., COPYCHECK_CHECKER_API_KEY).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// Load is the entry point used by the command line. When explicit is false
// and the file does not exist, defaults plus environment overrides are used.
// An explicitly named file must exist.
func Load(path string, explicit bool) (*Config, error) {
	if path != "" {
		_, err := os.Stat(path)
		if err == nil {
			return LoadConfigWithEnvOverrides(path)
		}
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
	}

	cfg := &Config{}
	ApplyDefaults(cfg)
	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables use the format COPYCHECK_SECTION_FIELD.
// Values that fail to parse are ignored.
func applyEnvOverrides(cfg *Config) {
	// Checker overrides
	envString("CHECKER_BASE_URL", &cfg.Checker.BaseURL)
	envString("CHECKER_API_KEY", &cfg.Checker.APIKey)
	envString("CHECKER_MODEL", &cfg.Checker.Model)
	envDuration("CHECKER_TIMEOUT", &cfg.Checker.Timeout)
	envInt("CHECKER_MAX_RETRIES", &cfg.Checker.MaxRetries)
	envInt("CHECKER_MAX_TOKENS", &cfg.Checker.MaxTokens)
	if val := os.Getenv(EnvPrefix + "CHECKER_REQUESTS_PER_SECOND"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Checker.RequestsPerSecond = f
		}
	}
	envInt("CHECKER_BURST", &cfg.Checker.Burst)

	// Rules overrides
	envString("RULES_DIR", &cfg.Rules.Dir)
	envString("RULES_DEFINITION_FILE", &cfg.Rules.DefinitionFile)
	envString("RULES_DEFAULT_RULE", &cfg.Rules.DefaultRule)

	envString("DETECT_STRICTNESS", &cfg.Detect.Strictness)

	// Cache overrides
	envString("CACHE_BACKEND", &cfg.Cache.Backend)
	envString("CACHE_KEY_PREFIX", &cfg.Cache.KeyPrefix)
	envDuration("CACHE_TTL", &cfg.Cache.TTL)
	envString("CACHE_REDIS_ADDR", &cfg.Cache.Redis.Addr)
	envString("CACHE_REDIS_PASSWORD", &cfg.Cache.Redis.Password)
	envInt("CACHE_REDIS_DB", &cfg.Cache.Redis.DB)
	envInt("CACHE_MEMORY_SIZE", &cfg.Cache.Memory.Size)

	// Remote overrides
	envString("REMOTE_REGION", &cfg.Remote.Region)
	envString("REMOTE_ENDPOINT", &cfg.Remote.Endpoint)
	envBool("REMOTE_USE_PATH_STYLE", &cfg.Remote.UsePathStyle)
	envString("REMOTE_RULES_BUCKET", &cfg.Remote.RulesBucket)
	envString("REMOTE_RULES_PREFIX", &cfg.Remote.RulesPrefix)
	envString("REMOTE_SHEETS_BUCKET", &cfg.Remote.SheetsBucket)
	envString("REMOTE_INPUT_PREFIX", &cfg.Remote.InputPrefix)
	envString("REMOTE_OUTPUT_PREFIX", &cfg.Remote.OutputPrefix)

	// Batch overrides
	envString("BATCH_SHEET_NAME", &cfg.Batch.SheetName)
	envString("BATCH_ID_COLUMN", &cfg.Batch.IDColumn)
	if val := os.Getenv(EnvPrefix + "BATCH_CONTENT_COLUMNS"); val != "" {
		var cols []string
		for _, c := range strings.Split(val, ",") {
			if c = strings.TrimSpace(c); c != "" {
				cols = append(cols, c)
			}
		}
		cfg.Batch.ContentColumns = cols
	}
	envInt("BATCH_WORKERS", &cfg.Batch.Workers)
	envInt("BATCH_PROGRESS_INTERVAL", &cfg.Batch.ProgressInterval)

	// History overrides
	envBool("HISTORY_ENABLED", &cfg.History.Enabled)
	envString("HISTORY_BACKEND", &cfg.History.Backend)
	envString("HISTORY_DRIVER", &cfg.History.Driver)
	envString("HISTORY_PATH", &cfg.History.Path)
	envInt("HISTORY_RETENTION_DAYS", &cfg.History.RetentionDays)
	envString("HISTORY_PRUNE_SCHEDULE", &cfg.History.PruneSchedule)

	// Watch and schedule overrides
	envString("WATCH_INPUT_DIR", &cfg.Watch.InputDir)
	envString("WATCH_OUTPUT_DIR", &cfg.Watch.OutputDir)
	envDuration("WATCH_DEBOUNCE_INTERVAL", &cfg.Watch.DebounceInterval)
	envString("SCHEDULE_CRON", &cfg.Schedule.Cron)
	envBool("SCHEDULE_RUN_ON_START", &cfg.Schedule.RunOnStart)

	// Telemetry overrides
	envString("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	envBool("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	envString("TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
}

func envString(name string, dst *string) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		*dst = val
	}
}

func envInt(name string, dst *int) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func envBool(name string, dst *bool) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envDuration(name string, dst *time.Duration) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}
