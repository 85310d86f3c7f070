package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Pruner removes runs older than the retention period.
type Pruner struct {
	store         Store
	retentionDays int
	logger        *slog.Logger
	now           func() time.Time
}

// NewPruner creates a pruner. retentionDays of 0 keeps runs forever.
func NewPruner(store Store, retentionDays int, logger *slog.Logger) *Pruner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pruner{
		store:         store,
		retentionDays: retentionDays,
		logger:        logger.With("component", "history.retention"),
		now:           time.Now,
	}
}

// Cutoff returns the start time before which runs are pruned, and false
// when retention is unlimited.
func (p *Pruner) Cutoff() (time.Time, bool) {
	if p.retentionDays <= 0 {
		return time.Time{}, false
	}
	return p.now().AddDate(0, 0, -p.retentionDays), true
}

// Prune deletes runs older than the retention period and returns how many
// were removed.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	cutoff, ok := p.Cutoff()
	if !ok {
		p.logger.Debug("retention unlimited, nothing pruned")
		return 0, nil
	}

	deleted, err := p.store.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune runs before %s: %w", cutoff.Format(time.RFC3339), err)
	}

	if deleted > 0 {
		p.logger.Info("pruned history runs",
			"deleted_count", deleted,
			"retention_days", p.retentionDays,
			"cutoff", cutoff,
		)
	} else {
		p.logger.Debug("no history runs pruned", "retention_days", p.retentionDays)
	}
	return deleted, nil
}
