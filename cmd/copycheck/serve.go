package main

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"mercator-hq/copycheck/pkg/history"
	"mercator-hq/copycheck/pkg/server"
	"mercator-hq/copycheck/pkg/telemetry/health"
)

// services are the background companions of the long-running commands:
// history pruning and the telemetry endpoint.
type services struct {
	pruner *history.Scheduler
	server *server.Server
}

// startServices starts history pruning and, when addr is set, the telemetry
// server. The server runs in g until ctx is done.
func startServices(ctx context.Context, g *errgroup.Group, a *app, addr string) (*services, error) {
	s := &services{}

	store, err := a.openHistory()
	if err != nil {
		a.logger.Warn("history unavailable, pruning disabled", "error", err)
	} else if store != nil {
		pruner := history.NewPruner(store, a.cfg.History.RetentionDays, a.logger)
		s.pruner = history.NewScheduler(pruner, a.cfg.History.PruneSchedule, a.logger)
		if err := s.pruner.Start(ctx); err != nil {
			return nil, err
		}
	}

	if addr == "" {
		return s, nil
	}

	checker := health.New(2 * time.Second)
	if a.cache != nil {
		checker.RegisterCheck("cache", a.cache.Check)
	}
	if pinger, ok := store.(interface{ Ping(context.Context) error }); ok {
		checker.RegisterCheck("history", pinger.Ping)
	}

	a.logger.Debug("readiness checks registered", "checks", checker.Names())

	s.server = server.New(server.Options{
		Addr:           addr,
		Metrics:        a.metrics.Handler(),
		MetricsPath:    a.cfg.Telemetry.Metrics.Path,
		Health:         checker,
		ReadyPerSecond: 5,
		Version:        Version,
		Commit:         GitCommit,
		Logger:         a.logger,
	})
	g.Go(func() error { return s.server.Start(ctx) })
	return s, nil
}

// stop halts history pruning. The server stops with its context.
func (s *services) stop() {
	if s.pruner != nil {
		s.pruner.Stop()
	}
}
