package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"mercator-hq/copycheck/pkg/config"
)

// Guard wraps a Store and switches it off for the rest of the process after
// the first backend failure. A disabled Guard behaves like an empty cache:
// every Get misses and every Set is dropped. Misses never disable it.
type Guard struct {
	store     Store
	backend   string
	logger    *slog.Logger
	onDisable func()

	disabled atomic.Bool
	once     sync.Once
}

// NewGuard wraps store. onDisable, if non-nil, is called once when the
// guard trips.
func NewGuard(store Store, backend string, logger *slog.Logger, onDisable func()) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{
		store:     store,
		backend:   backend,
		logger:    logger.With("component", "cache"),
		onDisable: onDisable,
	}
}

// Open builds the cache selected by cfg. Backend "none" returns nil. A Redis
// server that does not answer the initial ping yields a Guard that is
// already disabled, so the process runs without a cache.
func Open(ctx context.Context, cfg config.CacheConfig, logger *slog.Logger, onDisable func()) (*Guard, error) {
	switch cfg.Backend {
	case "none":
		return nil, nil
	case "memory":
		return NewGuard(NewMemory(cfg.KeyPrefix, cfg.Memory.Size, cfg.TTL), "memory", logger, onDisable), nil
	case "redis":
		store := NewRedis(cfg)
		guard := NewGuard(store, "redis", logger, onDisable)
		pingCtx, cancel := context.WithTimeout(ctx, cfg.Redis.DialTimeout)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			guard.trip(ctx, err)
		} else {
			guard.logger.InfoContext(ctx, "cache connected", "backend", "redis", "addr", cfg.Redis.Addr)
		}
		return guard, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Disabled reports whether the guard has tripped.
func (g *Guard) Disabled() bool {
	return g.disabled.Load()
}

// Backend returns the name of the wrapped backend.
func (g *Guard) Backend() string {
	return g.backend
}

// Get implements Store.
func (g *Guard) Get(ctx context.Context, namespace, id string) (string, bool, error) {
	if g.disabled.Load() {
		return "", false, nil
	}
	value, ok, err := g.store.Get(ctx, namespace, id)
	if err != nil {
		if !callerDone(ctx, err) {
			g.fail(ctx, err)
		}
		return "", false, nil
	}
	return value, ok, nil
}

// Set implements Store.
func (g *Guard) Set(ctx context.Context, namespace, id, value string, ttl time.Duration) error {
	if g.disabled.Load() {
		return nil
	}
	if err := g.store.Set(ctx, namespace, id, value, ttl); err != nil && !callerDone(ctx, err) {
		g.fail(ctx, err)
	}
	return nil
}

// Delete forwards to the wrapped store if it supports administration.
func (g *Guard) Delete(ctx context.Context, namespace, id string) (bool, error) {
	admin, err := g.admin()
	if err != nil {
		return false, err
	}
	return admin.Delete(ctx, namespace, id)
}

// Flush forwards to the wrapped store if it supports administration.
func (g *Guard) Flush(ctx context.Context) (int, error) {
	admin, err := g.admin()
	if err != nil {
		return 0, err
	}
	return admin.Flush(ctx)
}

// Stats returns backend statistics, or Enabled == false once tripped.
func (g *Guard) Stats(ctx context.Context) (Stats, error) {
	if g.disabled.Load() {
		return Stats{Enabled: false, Backend: g.backend}, nil
	}
	admin, ok := g.store.(Admin)
	if !ok {
		return Stats{Enabled: true, Backend: g.backend}, nil
	}
	return admin.Stats(ctx)
}

// Check is a health check: it fails once the guard has tripped.
func (g *Guard) Check(context.Context) error {
	if g.disabled.Load() {
		return fmt.Errorf("%s cache disabled after backend failure", g.backend)
	}
	return nil
}

// Close closes the wrapped store if it holds resources.
func (g *Guard) Close() error {
	if c, ok := g.store.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

func (g *Guard) admin() (Admin, error) {
	if g.disabled.Load() {
		return nil, fmt.Errorf("%s cache is disabled", g.backend)
	}
	admin, ok := g.store.(Admin)
	if !ok {
		return nil, fmt.Errorf("%s cache does not support administration", g.backend)
	}
	return admin, nil
}

// callerDone reports whether err only reflects the caller's own context
// ending, which says nothing about the backend.
func callerDone(ctx context.Context, err error) bool {
	if ctx.Err() == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (g *Guard) fail(ctx context.Context, err error) {
	var backendErr *BackendError
	if !errors.As(err, &backendErr) {
		backendErr = &BackendError{Backend: g.backend, Op: "call", Cause: err}
	}
	g.trip(ctx, backendErr)
}

func (g *Guard) trip(ctx context.Context, err error) {
	g.once.Do(func() {
		g.disabled.Store(true)
		g.logger.WarnContext(ctx, "cache backend failed, running without cache",
			"backend", g.backend,
			"error", err,
		)
		if g.onDisable != nil {
			g.onDisable()
		}
	})
}
