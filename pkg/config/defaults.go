package config

import "time"

// Default values for configuration fields.
const (
	// Checker defaults
	DefaultCheckerBaseURL    = "https://api.openai.com/v1"
	DefaultCheckerModel      = "gpt-5-mini"
	DefaultCheckerTimeout    = 120 * time.Second
	DefaultCheckerMaxRetries = 2
	DefaultCheckerMaxTokens  = 4096
	DefaultCheckerBurst      = 1

	// Rules defaults
	DefaultRulesDir            = "./skills"
	DefaultRulesDefinitionFile = "SKILL.md"
	DefaultRulesReferencesDir  = "references"
	DefaultRulesExtension      = ".md"
	DefaultRule                = "商品コピーチェック"

	// Detect defaults
	DefaultDetectStrictness = "loose"

	// Cache defaults
	DefaultCacheBackend          = "redis"
	DefaultCacheKeyPrefix        = "copycheck"
	DefaultCacheTTL              = time.Hour
	DefaultRedisAddr             = "localhost:6379"
	DefaultRedisDialTimeout      = 5 * time.Second
	DefaultRedisReadTimeout      = 5 * time.Second
	DefaultRedisWriteTimeout     = 5 * time.Second
	DefaultMemoryCacheSize       = 1024
	DefaultRemoteInputPrefix     = "input/"
	DefaultRemoteOutputPrefix    = "output/"
	DefaultBatchIDColumn         = "商品コード"
	DefaultBatchWorkers          = 1
	DefaultBatchProgressInterval = 100
	DefaultBatchResultColumn     = "チェック結果"
	DefaultBatchConclusionColumn = "結論"
	DefaultBatchOutputSheet      = "チェック結果"

	// History defaults
	DefaultHistoryEnabled       = true
	DefaultHistoryBackend       = "sqlite"
	DefaultHistoryDriver        = "sqlite3"
	DefaultHistoryPath          = "data/history.db"
	DefaultHistoryBusyTimeout   = 5 * time.Second
	DefaultHistoryRetentionDays = 90
	DefaultHistoryPruneSchedule = "0 3 * * *"

	// Watch defaults
	DefaultWatchInputDir         = "data/inbox"
	DefaultWatchOutputDir        = "data/outbox"
	DefaultWatchDebounceInterval = 500 * time.Millisecond

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "json"
	DefaultMetricsEnabled   = true
	DefaultMetricsNamespace = "copycheck"
	DefaultMetricsPath      = "/metrics"
)

// DefaultWatchExtensions are the sheet extensions picked up by the watcher.
var DefaultWatchExtensions = []string{".xlsx", ".xlsm"}

// DefaultCheckDurationBuckets cover checker latencies from 250ms to 2 minutes.
var DefaultCheckDurationBuckets = []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Checker defaults
	if cfg.Checker.BaseURL == "" {
		cfg.Checker.BaseURL = DefaultCheckerBaseURL
	}
	if cfg.Checker.Model == "" {
		cfg.Checker.Model = DefaultCheckerModel
	}
	if cfg.Checker.Timeout == 0 {
		cfg.Checker.Timeout = DefaultCheckerTimeout
	}
	if cfg.Checker.MaxRetries == 0 {
		cfg.Checker.MaxRetries = DefaultCheckerMaxRetries
	}
	if cfg.Checker.MaxTokens == 0 {
		cfg.Checker.MaxTokens = DefaultCheckerMaxTokens
	}
	if cfg.Checker.Burst == 0 {
		cfg.Checker.Burst = DefaultCheckerBurst
	}

	// Rules defaults
	if cfg.Rules.Dir == "" {
		cfg.Rules.Dir = DefaultRulesDir
	}
	if cfg.Rules.DefinitionFile == "" {
		cfg.Rules.DefinitionFile = DefaultRulesDefinitionFile
	}
	if cfg.Rules.ReferencesDir == "" {
		cfg.Rules.ReferencesDir = DefaultRulesReferencesDir
	}
	if cfg.Rules.Extension == "" {
		cfg.Rules.Extension = DefaultRulesExtension
	}
	if cfg.Rules.DefaultRule == "" {
		cfg.Rules.DefaultRule = DefaultRule
	}

	if cfg.Detect.Strictness == "" {
		cfg.Detect.Strictness = DefaultDetectStrictness
	}

	// Cache defaults
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = DefaultCacheBackend
	}
	if cfg.Cache.KeyPrefix == "" {
		cfg.Cache.KeyPrefix = DefaultCacheKeyPrefix
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}
	if cfg.Cache.Redis.Addr == "" {
		cfg.Cache.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Cache.Redis.DialTimeout == 0 {
		cfg.Cache.Redis.DialTimeout = DefaultRedisDialTimeout
	}
	if cfg.Cache.Redis.ReadTimeout == 0 {
		cfg.Cache.Redis.ReadTimeout = DefaultRedisReadTimeout
	}
	if cfg.Cache.Redis.WriteTimeout == 0 {
		cfg.Cache.Redis.WriteTimeout = DefaultRedisWriteTimeout
	}
	if cfg.Cache.Memory.Size == 0 {
		cfg.Cache.Memory.Size = DefaultMemoryCacheSize
	}

	// Remote defaults
	if cfg.Remote.InputPrefix == "" {
		cfg.Remote.InputPrefix = DefaultRemoteInputPrefix
	}
	if cfg.Remote.OutputPrefix == "" {
		cfg.Remote.OutputPrefix = DefaultRemoteOutputPrefix
	}

	// Batch defaults
	if cfg.Batch.IDColumn == "" {
		cfg.Batch.IDColumn = DefaultBatchIDColumn
	}
	if cfg.Batch.Workers == 0 {
		cfg.Batch.Workers = DefaultBatchWorkers
	}
	if cfg.Batch.ProgressInterval == 0 {
		cfg.Batch.ProgressInterval = DefaultBatchProgressInterval
	}
	if cfg.Batch.ResultColumn == "" {
		cfg.Batch.ResultColumn = DefaultBatchResultColumn
	}
	if cfg.Batch.ConclusionColumn == "" {
		cfg.Batch.ConclusionColumn = DefaultBatchConclusionColumn
	}
	if cfg.Batch.OutputSheet == "" {
		cfg.Batch.OutputSheet = DefaultBatchOutputSheet
	}

	// History defaults
	if cfg.History.Backend == "" {
		// An untouched history section means defaults, including Enabled.
		cfg.History.Enabled = DefaultHistoryEnabled
		cfg.History.Backend = DefaultHistoryBackend
	}
	if cfg.History.Driver == "" {
		cfg.History.Driver = DefaultHistoryDriver
	}
	if cfg.History.Path == "" {
		cfg.History.Path = DefaultHistoryPath
	}
	if cfg.History.BusyTimeout == 0 {
		cfg.History.BusyTimeout = DefaultHistoryBusyTimeout
	}
	if cfg.History.RetentionDays == 0 {
		cfg.History.RetentionDays = DefaultHistoryRetentionDays
	}
	if cfg.History.PruneSchedule == "" {
		cfg.History.PruneSchedule = DefaultHistoryPruneSchedule
	}

	// Watch defaults
	if cfg.Watch.InputDir == "" {
		cfg.Watch.InputDir = DefaultWatchInputDir
	}
	if cfg.Watch.OutputDir == "" {
		cfg.Watch.OutputDir = DefaultWatchOutputDir
	}
	if cfg.Watch.DebounceInterval == 0 {
		cfg.Watch.DebounceInterval = DefaultWatchDebounceInterval
	}
	if len(cfg.Watch.Extensions) == 0 {
		cfg.Watch.Extensions = append([]string(nil), DefaultWatchExtensions...)
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		// Same convention as history: an untouched section is enabled.
		cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if len(cfg.Telemetry.Metrics.CheckDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.CheckDurationBuckets = append([]float64(nil), DefaultCheckDurationBuckets...)
	}
}
