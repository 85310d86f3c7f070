package config

import (
	"testing"
	"time"
)

func TestNewTestConfig(t *testing.T) {
	cfg := NewTestConfig().Build()

	if cfg.Checker.Model != DefaultCheckerModel {
		t.Errorf("expected model %q, got %q", DefaultCheckerModel, cfg.Checker.Model)
	}
	if cfg.Checker.APIKey == "" {
		t.Error("expected test API key to be set")
	}
	if cfg.Cache.Backend != "memory" {
		t.Errorf("expected memory cache backend, got %q", cfg.Cache.Backend)
	}
}

func TestConfigBuilder_Chaining(t *testing.T) {
	cfg := NewTestConfig().
		WithChecker("http://localhost:9999/v1", "local-model").
		WithCheckerTimeout(3 * time.Second).
		WithStrictness("strict").
		WithWorkers(4).
		WithSchedule("*/5 * * * *").
		Build()

	if cfg.Checker.BaseURL != "http://localhost:9999/v1" {
		t.Errorf("expected base URL override, got %q", cfg.Checker.BaseURL)
	}
	if cfg.Checker.Timeout != 3*time.Second {
		t.Errorf("expected timeout 3s, got %v", cfg.Checker.Timeout)
	}
	if cfg.Detect.Strictness != "strict" {
		t.Errorf("expected strict, got %q", cfg.Detect.Strictness)
	}
	if cfg.Batch.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Batch.Workers)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("built config should validate, got %v", err)
	}
}

func TestConfigBuilder_WithHistorySQLite(t *testing.T) {
	cfg := NewTestConfig().WithHistorySQLite("sqlite", "/tmp/h.db").Build()

	if !cfg.History.Enabled || cfg.History.Backend != "sqlite" {
		t.Errorf("expected sqlite history enabled, got %+v", cfg.History)
	}
	if cfg.History.Driver != "sqlite" {
		t.Errorf("expected driver sqlite, got %q", cfg.History.Driver)
	}
}
