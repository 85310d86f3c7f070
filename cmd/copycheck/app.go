package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"mercator-hq/copycheck/pkg/batch"
	"mercator-hq/copycheck/pkg/cache"
	"mercator-hq/copycheck/pkg/checker"
	"mercator-hq/copycheck/pkg/cli"
	"mercator-hq/copycheck/pkg/config"
	"mercator-hq/copycheck/pkg/detect"
	"mercator-hq/copycheck/pkg/history"
	"mercator-hq/copycheck/pkg/jobs"
	"mercator-hq/copycheck/pkg/objectstore"
	"mercator-hq/copycheck/pkg/resolver"
	"mercator-hq/copycheck/pkg/rules"
	"mercator-hq/copycheck/pkg/telemetry/logging"
	"mercator-hq/copycheck/pkg/telemetry/metrics"
)

// app holds the components of one command invocation. Components are built
// on first use so that commands only pay for what they touch.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Collector

	cache    *cache.Guard
	resolver *resolver.Resolver
	repo     *rules.Repository
	history  history.Store
	s3       *s3.Client

	closers []func() error
}

// newApp loads configuration and sets up logging and metrics.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(cfgFile, configExplicit(cmd))
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging, os.Stderr))
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)

	return &app{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.NewCollector(&cfg.Telemetry.Metrics, nil),
	}, nil
}

// Close releases every opened component in reverse order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}

// s3Client returns the shared S3 client.
func (a *app) s3Client(ctx context.Context) (*s3.Client, error) {
	if a.s3 != nil {
		return a.s3, nil
	}
	client, err := objectstore.NewS3Client(ctx, a.cfg.Remote)
	if err != nil {
		return nil, err
	}
	a.s3 = client
	return client, nil
}

// rulesStore is the remote store of the rule corpus.
func (a *app) rulesStore(ctx context.Context) (*objectstore.S3, error) {
	if a.cfg.Remote.RulesBucket == "" {
		return nil, &objectstore.ConfigError{Field: "remote.rules_bucket"}
	}
	client, err := a.s3Client(ctx)
	if err != nil {
		return nil, err
	}
	return objectstore.NewS3(client, a.cfg.Remote.RulesBucket, "remote.rules_bucket"), nil
}

// sheetsStore is the remote store of batch input and output sheets.
func (a *app) sheetsStore(ctx context.Context) (*objectstore.S3, error) {
	if a.cfg.Remote.SheetsBucket == "" {
		return nil, &objectstore.ConfigError{Field: "remote.sheets_bucket"}
	}
	client, err := a.s3Client(ctx)
	if err != nil {
		return nil, err
	}
	return objectstore.NewS3(client, a.cfg.Remote.SheetsBucket, "remote.sheets_bucket"), nil
}

// openCache opens the configured cache. It returns nil for backend "none".
func (a *app) openCache(ctx context.Context) (*cache.Guard, error) {
	if a.cache != nil {
		return a.cache, nil
	}
	guard, err := cache.Open(ctx, a.cfg.Cache, a.logger, func() { a.metrics.SetCacheDisabled(true) })
	if err != nil {
		return nil, cli.NewConfigError("cache.backend", err.Error())
	}
	if guard != nil {
		a.cache = guard
		a.closers = append(a.closers, guard.Close)
	}
	return guard, nil
}

// buildResolver assembles the tiers: cache, remote (backfill source) and
// local files. Tiers that are not configured are left out.
func (a *app) buildResolver(ctx context.Context) (*resolver.Resolver, error) {
	if a.resolver != nil {
		return a.resolver, nil
	}

	var layers []resolver.Layer

	guard, err := a.openCache(ctx)
	if err != nil {
		return nil, err
	}
	if guard != nil {
		layers = append(layers, resolver.Layer{Tier: cache.NewTier(guard, a.cfg.Cache.TTL)})
	}

	if a.cfg.Remote.RulesBucket != "" {
		store, err := a.rulesStore(ctx)
		if err != nil {
			return nil, err
		}
		layers = append(layers, resolver.Layer{
			Tier:     objectstore.NewTier(store, a.cfg.Remote.RulesPrefix),
			Backfill: true,
		})
	}

	layers = append(layers, resolver.Layer{Tier: resolver.NewLocal(a.cfg.Rules.Dir)})

	a.resolver = resolver.New(resolver.Options{Logger: a.logger, Metrics: a.metrics}, layers...)
	a.logger.Debug("content resolver ready", "tiers", a.resolver.Tiers())
	return a.resolver, nil
}

// rules loads the rule corpus once.
func (a *app) rules(ctx context.Context) (*rules.Repository, error) {
	if a.repo != nil {
		return a.repo, nil
	}
	res, err := a.buildResolver(ctx)
	if err != nil {
		return nil, err
	}

	repo := rules.NewRepository(a.cfg.Rules.Dir, rules.Layout{
		DefinitionFile: a.cfg.Rules.DefinitionFile,
		ReferencesDir:  a.cfg.Rules.ReferencesDir,
		Extension:      a.cfg.Rules.Extension,
	}, res, a.logger)
	if err := repo.Load(ctx); err != nil {
		return nil, err
	}
	a.repo = repo
	return repo, nil
}

// detector builds the keyword detector from configuration.
func (a *app) detector() (*detect.Detector, error) {
	strictness, err := detect.ParseStrictness(a.cfg.Detect.Strictness)
	if err != nil {
		return nil, cli.NewConfigError("detect.strictness", err.Error())
	}
	return detect.New(strictness, a.logger), nil
}

// openHistory opens the history store. It returns nil when history is
// disabled.
func (a *app) openHistory() (history.Store, error) {
	if a.history != nil || !a.cfg.History.Enabled {
		return a.history, nil
	}
	store, err := history.Open(a.cfg.History, a.logger)
	if err != nil {
		return nil, err
	}
	a.history = store
	a.closers = append(a.closers, store.Close)
	return store, nil
}

// requireHistory is openHistory for commands that cannot work without it.
func (a *app) requireHistory() (history.Store, error) {
	store, err := a.openHistory()
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, cli.NewConfigError("history.enabled", "history is disabled")
	}
	return store, nil
}

// processorOptions tune the batch processor per command.
type processorOptions struct {
	workers int
	onRow   func(done, total int)
}

// processor wires rules, detection, the checker client and history into a
// batch processor.
func (a *app) processor(ctx context.Context, opts processorOptions) (*batch.Processor, error) {
	repo, err := a.rules(ctx)
	if err != nil {
		return nil, err
	}
	det, err := a.detector()
	if err != nil {
		return nil, err
	}
	store, err := a.openHistory()
	if err != nil {
		// history never blocks checking
		a.logger.Warn("history unavailable, runs will not be recorded", "error", err)
		store = nil
	}

	client := checker.NewClient(a.cfg.Checker, checker.Options{Logger: a.logger, Metrics: a.metrics})

	workers := a.cfg.Batch.Workers
	if opts.workers > 0 {
		workers = opts.workers
	}

	return batch.NewProcessor(repo, det, client, batch.Options{
		Workers:          workers,
		ProgressInterval: a.cfg.Batch.ProgressInterval,
		Spec: batch.TextSpec{
			IDColumn:       a.cfg.Batch.IDColumn,
			ContentColumns: a.cfg.Batch.ContentColumns,
			SkipColumns:    []string{a.cfg.Batch.ResultColumn, a.cfg.Batch.ConclusionColumn},
		},
		Logger:  a.logger,
		Metrics: a.metrics,
		History: store,
		OnRow:   opts.onRow,
	}), nil
}

// runner builds a job runner. The sheets store is attached only when a
// bucket is configured; remote jobs report the missing bucket otherwise.
func (a *app) runner(ctx context.Context, rule string, opts processorOptions) (*jobs.Runner, error) {
	p, err := a.processor(ctx, opts)
	if err != nil {
		return nil, err
	}

	var sheets objectstore.Store
	store, err := a.sheetsStore(ctx)
	var cfgErr *objectstore.ConfigError
	switch {
	case err == nil:
		sheets = store
	case !errors.As(err, &cfgErr):
		return nil, err
	}

	return jobs.NewRunner(p, jobs.Options{
		Rule:         rule,
		Batch:        a.cfg.Batch,
		Sheets:       sheets,
		InputPrefix:  a.cfg.Remote.InputPrefix,
		OutputPrefix: a.cfg.Remote.OutputPrefix,
		Logger:       a.logger,
	}), nil
}

// ruleName returns name or the configured default rule.
func (a *app) ruleName(name string) string {
	if name != "" {
		return name
	}
	return a.cfg.Rules.DefaultRule
}

// withApp runs fn with a fresh app and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	if err := fn(ctx, a); err != nil {
		return cli.NewCommandError(cmd.CommandPath(), err)
	}
	return nil
}

