package history

import (
	"fmt"
	"log/slog"

	"mercator-hq/copycheck/pkg/config"
)

// Open creates the store selected by cfg. It returns a nil Store and nil
// error when history is disabled.
func Open(cfg config.HistoryConfig, logger *slog.Logger) (Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	switch cfg.Backend {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite", "":
		store, err := NewSQLiteStore(&SQLiteConfig{
			Driver:       cfg.Driver,
			Path:         cfg.Path,
			MaxOpenConns: 4,
			WALMode:      true,
			BusyTimeout:  cfg.BusyTimeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.Backend)
	}
}
