package resolver

import (
	"context"
	"log/slog"
)

// Recorder receives per-tier lookup outcomes. *metrics.Collector implements it.
type Recorder interface {
	RecordResolve(tier, result string)
	RecordBackfill(tier string)
}

// Options configures a Resolver.
type Options struct {
	// Logger defaults to slog.Default()
	Logger *slog.Logger

	// Metrics is optional
	Metrics Recorder
}

// Resolver looks content up through an ordered list of tiers. It is safe for
// concurrent use as long as its tiers are.
type Resolver struct {
	layers  []Layer
	logger  *slog.Logger
	metrics Recorder
}

// New creates a Resolver that consults layers in the given order. Any number
// of layers, including zero, is accepted.
func New(opts Options, layers ...Layer) *Resolver {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		layers:  layers,
		logger:  logger.With("component", "resolver"),
		metrics: opts.Metrics,
	}
}

// Tiers returns the names of the configured tiers in resolution order.
func (r *Resolver) Tiers() []string {
	names := make([]string, len(r.layers))
	for i, l := range r.layers {
		names[i] = l.Tier.Name()
	}
	return names
}

// Resolve returns the content for key from the first tier that has it.
// A hit on a backfill tier is written into every earlier tier; write
// failures are logged and ignored. Unavailable tiers are skipped.
func (r *Resolver) Resolve(ctx context.Context, key string) (string, error) {
	for i, layer := range r.layers {
		name := layer.Tier.Name()

		content, ok, err := layer.Tier.Get(ctx, key)
		if err != nil {
			r.record(name, "error")
			r.logger.WarnContext(ctx, "tier unavailable, trying next",
				"tier", name,
				"key", key,
				"error", err,
			)
			continue
		}
		if !ok {
			r.record(name, "miss")
			continue
		}

		r.record(name, "hit")
		r.logger.DebugContext(ctx, "content resolved", "tier", name, "key", key)

		if layer.Backfill {
			r.backfill(ctx, r.layers[:i], key, content)
		}
		return content, nil
	}

	return "", &NotFoundError{Key: key, Tiers: r.Tiers()}
}

func (r *Resolver) backfill(ctx context.Context, earlier []Layer, key, content string) {
	for _, layer := range earlier {
		name := layer.Tier.Name()
		if err := layer.Tier.Set(ctx, key, content); err != nil {
			r.logger.WarnContext(ctx, "backfill failed",
				"tier", name,
				"key", key,
				"error", err,
			)
			continue
		}
		if r.metrics != nil {
			r.metrics.RecordBackfill(name)
		}
	}
}

func (r *Resolver) record(tier, result string) {
	if r.metrics != nil {
		r.metrics.RecordResolve(tier, result)
	}
}
