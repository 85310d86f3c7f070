package batch

import (
	"context"
	"time"

	"mercator-hq/copycheck/pkg/checker"
	"mercator-hq/copycheck/pkg/history"
	"mercator-hq/copycheck/pkg/verdict"
)

// Fixed result texts of rows that never reach the checker.
const (
	SkippedMessage = "(空行)"
	NoDataMessage  = "チェック対象のデータがありません（識別列のみ）"
	errorPrefix    = "エラー: "
)

// RowOutcome is the result of one row. It is set once per row and placed at
// the row's original position.
type RowOutcome struct {
	Index      int                `json:"index"`
	Result     string             `json:"result"`
	Conclusion verdict.Conclusion `json:"conclusion"`
	Keywords   []string           `json:"keywords,omitempty"`
	Usage      checker.Usage      `json:"usage"`
	Latency    time.Duration      `json:"latency"`
}

func (o RowOutcome) historyRow() history.Row {
	return history.Row{
		Index:        o.Index,
		Conclusion:   o.Conclusion,
		Result:       o.Result,
		Keywords:     o.Keywords,
		InputTokens:  o.Usage.Input,
		OutputTokens: o.Usage.Output,
		Latency:      o.Latency,
	}
}

// Counts tallies outcomes by conclusion.
func Counts(outcomes []RowOutcome) history.Counts {
	counts := make(history.Counts, len(verdict.Conclusions))
	for _, o := range outcomes {
		counts[o.Conclusion]++
	}
	return counts
}

type triggerKey struct{}

// Trigger names recorded with runs.
const (
	TriggerCLI      = "cli"
	TriggerWatch    = "watch"
	TriggerSchedule = "schedule"
	TriggerRemote   = "remote"
)

// WithTrigger records what started the run.
func WithTrigger(ctx context.Context, trigger string) context.Context {
	return context.WithValue(ctx, triggerKey{}, trigger)
}

// TriggerFrom returns the trigger stored in ctx, TriggerCLI when unset.
func TriggerFrom(ctx context.Context) string {
	if t, ok := ctx.Value(triggerKey{}).(string); ok && t != "" {
		return t
	}
	return TriggerCLI
}
