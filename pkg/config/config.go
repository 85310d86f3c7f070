package config

import "time"

// Config is the root configuration structure for copycheck.
// It contains all configuration sections for the checker endpoint, the rule
// corpus, content resolution tiers, batch processing, check history, job
// triggers and telemetry.
type Config struct {
	// Checker contains configuration for the external text-generation
	// service that produces verdicts.
	Checker CheckerConfig `yaml:"checker"`

	// Rules contains the location and layout of the rule corpus.
	Rules RulesConfig `yaml:"rules"`

	// Detect contains keyword detection settings.
	Detect DetectConfig `yaml:"detect"`

	// Cache contains configuration for the cache tier used by content
	// resolution.
	Cache CacheConfig `yaml:"cache"`

	// Remote contains configuration for the remote object store holding
	// rule documents and batch input/output sheets.
	Remote RemoteConfig `yaml:"remote"`

	// Batch contains configuration for batch sheet processing.
	Batch BatchConfig `yaml:"batch"`

	// History contains configuration for check history storage and retention.
	History HistoryConfig `yaml:"history"`

	// Watch contains configuration for the input directory watcher.
	Watch WatchConfig `yaml:"watch"`

	// Schedule contains configuration for scheduled remote batch jobs.
	Schedule ScheduleConfig `yaml:"schedule"`

	// Telemetry contains configuration for logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// CheckerConfig contains configuration for the OpenAI-compatible checker endpoint.
type CheckerConfig struct {
	// BaseURL is the base URL of the chat completions API.
	// Default: "https://api.openai.com/v1"
	BaseURL string `yaml:"base_url"`

	// APIKey is the bearer token sent to the endpoint.
	// Usually supplied through COPYCHECK_CHECKER_API_KEY.
	APIKey string `yaml:"api_key"`

	// Model is the model identifier sent with every request.
	// Default: "gpt-5-mini"
	Model string `yaml:"model"`

	// Timeout is the upper bound for a single checker call. A call that
	// exceeds it becomes an ERROR outcome for its row.
	// Default: 120s
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the number of transport-level retries for 5xx and
	// network errors. Row processing itself never retries.
	// Default: 2
	MaxRetries int `yaml:"max_retries"`

	// MaxTokens caps the length of the generated verdict.
	// Default: 4096
	MaxTokens int `yaml:"max_tokens"`

	// RequestsPerSecond limits the request rate across all workers.
	// Zero disables rate limiting.
	// Default: 0
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// Burst is the rate limiter burst size.
	// Default: 1
	Burst int `yaml:"burst"`
}

// RulesConfig describes where the rule corpus lives and how it is laid out.
type RulesConfig struct {
	// Dir is the local root directory containing one directory per rule.
	// Default: "./skills"
	Dir string `yaml:"dir"`

	// DefinitionFile is the primary document name inside each rule directory.
	// Default: "SKILL.md"
	DefinitionFile string `yaml:"definition_file"`

	// ReferencesDir is the sub-directory holding keyword reference documents.
	// Default: "references"
	ReferencesDir string `yaml:"references_dir"`

	// Extension is the file extension of reference documents.
	// Default: ".md"
	Extension string `yaml:"extension"`

	// DefaultRule is the rule used when a command does not name one.
	// Default: "商品コピーチェック"
	DefaultRule string `yaml:"default_rule"`
}

// DetectConfig contains keyword detection settings.
type DetectConfig struct {
	// Strictness selects the matching strategies.
	// Options: "loose" (word, unsegmented, substring), "strict" (word, unsegmented)
	// Default: "loose"
	Strictness string `yaml:"strictness"`
}

// CacheConfig contains configuration for the cache tier.
type CacheConfig struct {
	// Backend selects the cache implementation.
	// Options: "redis", "memory", "none"
	// Default: "redis"
	Backend string `yaml:"backend"`

	// KeyPrefix is prepended to every derived cache key.
	// Default: "copycheck"
	KeyPrefix string `yaml:"key_prefix"`

	// TTL is the lifetime of cached documents.
	// Default: 1h
	TTL time.Duration `yaml:"ttl"`

	// Redis contains Redis connection settings.
	Redis RedisConfig `yaml:"redis"`

	// Memory contains in-process cache settings.
	Memory MemoryCacheConfig `yaml:"memory"`
}

// RedisConfig contains Redis connection settings.
type RedisConfig struct {
	// Addr is the host:port of the Redis server.
	// Default: "localhost:6379"
	Addr string `yaml:"addr"`

	// Password is the optional Redis password.
	Password string `yaml:"password"`

	// DB is the Redis database number.
	// Default: 0
	DB int `yaml:"db"`

	// DialTimeout bounds connection establishment.
	// Default: 5s
	DialTimeout time.Duration `yaml:"dial_timeout"`

	// ReadTimeout bounds individual commands.
	// Default: 5s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout bounds writing a command to the connection.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// MemoryCacheConfig contains in-process cache settings.
type MemoryCacheConfig struct {
	// Size is the maximum number of cached entries.
	// Default: 1024
	Size int `yaml:"size"`
}

// RemoteConfig contains configuration for the S3-compatible object store.
// Every field is optional; features that need a bucket fail with a
// configuration error when first used without one.
type RemoteConfig struct {
	// Region is the AWS region. Empty uses the SDK default chain.
	Region string `yaml:"region"`

	// Endpoint overrides the S3 endpoint (MinIO, LocalStack).
	Endpoint string `yaml:"endpoint"`

	// UsePathStyle forces path-style addressing.
	// Default: false
	UsePathStyle bool `yaml:"use_path_style"`

	// RulesBucket holds the rule corpus. Empty disables the remote tier.
	RulesBucket string `yaml:"rules_bucket"`

	// RulesPrefix is prepended to rule content keys.
	RulesPrefix string `yaml:"rules_prefix"`

	// SheetsBucket holds batch input and output sheets.
	SheetsBucket string `yaml:"sheets_bucket"`

	// InputPrefix is where input sheets are uploaded.
	// Default: "input/"
	InputPrefix string `yaml:"input_prefix"`

	// OutputPrefix is where result sheets are written.
	// Default: "output/"
	OutputPrefix string `yaml:"output_prefix"`
}

// BatchConfig contains configuration for sheet-based batch checks.
type BatchConfig struct {
	// SheetName is the sheet rows are read from. Empty selects the first sheet.
	SheetName string `yaml:"sheet_name"`

	// IDColumn is the identifying column placed first in the checked text.
	// Default: "商品コード"
	IDColumn string `yaml:"id_column"`

	// ContentColumns are the designated content columns in order. Empty
	// means every column other than IDColumn, in sheet order.
	ContentColumns []string `yaml:"content_columns"`

	// Workers is the number of rows checked concurrently.
	// Default: 1
	Workers int `yaml:"workers"`

	// ProgressInterval is the row count between progress log lines.
	// Default: 100
	ProgressInterval int `yaml:"progress_interval"`

	// ResultColumn is the appended rationale column.
	// Default: "チェック結果"
	ResultColumn string `yaml:"result_column"`

	// ConclusionColumn is the appended conclusion column.
	// Default: "結論"
	ConclusionColumn string `yaml:"conclusion_column"`

	// OutputSheet is the sheet name of the result workbook.
	// Default: "チェック結果"
	OutputSheet string `yaml:"output_sheet"`
}

// HistoryConfig contains configuration for check history recording.
type HistoryConfig struct {
	// Enabled controls whether runs are recorded.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage backend.
	// Options: "sqlite", "memory"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// Driver selects the SQLite driver.
	// Options: "sqlite3" (cgo, mattn/go-sqlite3), "sqlite" (pure Go, modernc.org/sqlite)
	// Default: "sqlite3"
	Driver string `yaml:"driver"`

	// Path is the database file path.
	// Default: "data/history.db"
	Path string `yaml:"path"`

	// BusyTimeout is how long SQLite waits on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// RetentionDays is how long runs are kept. 0 keeps them forever.
	// Default: 90
	RetentionDays int `yaml:"retention_days"`

	// PruneSchedule is the cron expression for retention pruning.
	// Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule"`
}

// WatchConfig contains configuration for the input directory watcher.
type WatchConfig struct {
	// InputDir is watched for new sheets.
	// Default: "data/inbox"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives result sheets.
	// Default: "data/outbox"
	OutputDir string `yaml:"output_dir"`

	// DebounceInterval is the quiet period before a changed file is processed.
	// Default: 500ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`

	// Extensions are the sheet extensions picked up by the watcher.
	// Default: [".xlsx", ".xlsm"]
	Extensions []string `yaml:"extensions"`
}

// ScheduleConfig contains configuration for scheduled remote batch jobs.
type ScheduleConfig struct {
	// Cron is the standard cron expression for processing the latest
	// remote input sheet. Empty disables the schedule.
	Cron string `yaml:"cron"`

	// RunOnStart processes the latest sheet once at startup.
	// Default: false
	RunOnStart bool `yaml:"run_on_start"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains configuration for structured logging.
type LoggingConfig struct {
	// Level is the minimum log level.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format.
	// Options: "json", "text", "console"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains configuration for Prometheus metrics.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace is the Prometheus metric namespace.
	// Default: "copycheck"
	Namespace string `yaml:"namespace"`

	// Subsystem is the Prometheus metric subsystem.
	Subsystem string `yaml:"subsystem"`

	// Path is the HTTP path of the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// CheckDurationBuckets are histogram buckets for checker latency in seconds.
	CheckDurationBuckets []float64 `yaml:"check_duration_buckets"`
}
