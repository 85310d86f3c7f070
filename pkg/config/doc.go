// Package config provides configuration management for copycheck.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides.
//
// # Configuration Loading
//
// Configuration can be loaded in three ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("copycheck.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("copycheck.yaml")
//
//  3. From the command line, where a missing default file falls back to
//     defaults plus the environment:
//     cfg, err := config.Load(path, explicit)
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention COPYCHECK_SECTION_FIELD.
// For example:
//
//   - COPYCHECK_CHECKER_API_KEY overrides checker.api_key
//   - COPYCHECK_CACHE_REDIS_ADDR overrides cache.redis.addr
//   - COPYCHECK_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Values from YAML file
//  2. Default values for anything left unset (defined in defaults.go)
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
package config
