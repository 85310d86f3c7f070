package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"mercator-hq/copycheck/pkg/checker"
	"mercator-hq/copycheck/pkg/detect"
	"mercator-hq/copycheck/pkg/history"
	"mercator-hq/copycheck/pkg/prompt"
	"mercator-hq/copycheck/pkg/rules"
	"mercator-hq/copycheck/pkg/telemetry/logging"
	"mercator-hq/copycheck/pkg/verdict"
)

// ErrEmptyText is returned by CheckText for blank input.
var ErrEmptyText = errors.New("text is empty")

// RuleSource looks rules up by name. *rules.Repository implements it.
type RuleSource interface {
	Rule(name string) (*rules.Rule, error)
}

// Recorder receives row and batch metrics. *metrics.Collector implements it.
type Recorder interface {
	RecordRow(rule, conclusion string)
	RecordBatch(trigger, status string, duration time.Duration)
}

// Options configures a Processor.
type Options struct {
	// Workers is the number of rows checked concurrently.
	// Default: 1 (sequential)
	Workers int

	// ProgressInterval is the row count between progress log lines. The
	// first row is always logged.
	// Default: 100
	ProgressInterval int

	// Spec selects the columns of the checked text.
	Spec TextSpec

	// Logger defaults to slog.Default()
	Logger *slog.Logger

	// Metrics is optional
	Metrics Recorder

	// History is optional. Recording failures are logged only.
	History history.Store

	// OnRow is called after each row with the number of finished rows.
	// It may be called from several goroutines.
	OnRow func(done, total int)
}

// Processor checks rows against a rule. It is safe for concurrent use.
type Processor struct {
	rules    RuleSource
	detector *detect.Detector
	checker  checker.Checker
	opts     Options
	logger   *slog.Logger
}

// NewProcessor creates a Processor.
func NewProcessor(source RuleSource, detector *detect.Detector, c checker.Checker, opts Options) *Processor {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = 100
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		rules:    source,
		detector: detector,
		checker:  c,
		opts:     opts,
		logger:   logger.With("component", "batch"),
	}
}

// Process checks every row against ruleName and returns one outcome per row
// in input order. The error is non-nil only when nothing was processed
// (unknown rule). Row failures become ERROR outcomes, and cancelling ctx
// turns the remaining rows into ERROR outcomes rather than aborting.
func (p *Processor) Process(ctx context.Context, rows []Row, ruleName string) ([]RowOutcome, error) {
	rule, err := p.rules.Rule(ruleName)
	if err != nil {
		return nil, err
	}

	runID := logging.GetRunID(ctx)
	if runID == "" {
		runID = uuid.NewString()
		ctx = logging.WithRunID(ctx, runID)
	}
	ctx = logging.WithRule(ctx, rule.Name)
	trigger := TriggerFrom(ctx)

	total := len(rows)
	started := time.Now()
	p.logger.InfoContext(ctx, "batch started", "rows", total, "workers", p.opts.Workers, "trigger", trigger)

	outcomes := make([]RowOutcome, total)
	var seen, done atomic.Int64

	var g errgroup.Group
	g.SetLimit(p.opts.Workers)
	for i, row := range rows {
		i, row := i, row
		g.Go(func() error {
			n := seen.Add(1)
			if n == 1 || n%int64(p.opts.ProgressInterval) == 0 {
				p.logger.InfoContext(ctx, "batch progress", "processing", n, "total", total)
			}
			outcomes[i] = p.processRow(logging.WithRow(ctx, i+1), rule, i, row)
			if p.opts.OnRow != nil {
				p.opts.OnRow(int(done.Add(1)), total)
			}
			return nil
		})
	}
	_ = g.Wait()

	finished := time.Now()
	counts := Counts(outcomes)

	status := "completed"
	if ctx.Err() != nil {
		status = "canceled"
	}
	if p.opts.Metrics != nil {
		for _, o := range outcomes {
			p.opts.Metrics.RecordRow(rule.Name, string(o.Conclusion))
		}
		p.opts.Metrics.RecordBatch(trigger, status, finished.Sub(started))
	}

	attrs := []any{"rows", total, "status", status, "duration", finished.Sub(started)}
	for _, c := range verdict.Conclusions {
		attrs = append(attrs, strings.ToLower(string(c)), counts[c])
	}
	p.logger.InfoContext(ctx, "batch completed", attrs...)

	historyRows := make([]history.Row, total)
	for i, o := range outcomes {
		historyRows[i] = o.historyRow()
	}
	p.record(ctx, &history.Run{
		ID:         runID,
		Rule:       rule.Name,
		Source:     logging.GetSource(ctx),
		Trigger:    trigger,
		Mode:       prompt.ModeDynamic.String(),
		StartedAt:  started,
		FinishedAt: finished,
		Total:      total,
		Counts:     counts,
		Rows:       historyRows,
	})

	return outcomes, nil
}

func (p *Processor) processRow(ctx context.Context, rule *rules.Rule, index int, row Row) RowOutcome {
	out := RowOutcome{Index: index}

	text, hasContent := p.opts.Spec.Build(row)
	switch {
	case strings.TrimSpace(text) == "":
		p.logger.WarnContext(ctx, "row skipped (blank)")
		out.Result, out.Conclusion = SkippedMessage, verdict.Skipped
		return out
	case !hasContent:
		p.logger.WarnContext(ctx, "row has no checkable data")
		out.Result, out.Conclusion = NoDataMessage, verdict.NoData
		return out
	}

	if err := ctx.Err(); err != nil {
		return errorOutcome(out, err)
	}

	detected := p.detector.Detect(rule, text)
	out.Keywords = detected.Sorted()

	resp, latency, err := p.call(ctx, prompt.Dynamic(rule, detected), text)
	out.Latency = latency
	if err != nil {
		p.logger.ErrorContext(ctx, "row check failed", "error", err)
		return errorOutcome(out, err)
	}

	out.Result = resp.Text
	out.Usage = resp.Usage
	out.Conclusion = verdict.Extract(resp.Text)
	if out.Conclusion == verdict.Unknown {
		p.logger.WarnContext(ctx, "row conclusion unknown")
		p.logger.DebugContext(ctx, "unknown conclusion detail",
			"text", truncate(text, 100),
			"response", truncate(resp.Text, 200),
		)
	}
	return out
}

func (p *Processor) call(ctx context.Context, instructions, content string) (*checker.Response, time.Duration, error) {
	start := time.Now()
	resp, err := p.checker.Check(ctx, checker.Request{Instructions: instructions, Content: content})
	latency := time.Since(start)
	if err == nil && resp == nil {
		err = &checker.RequestError{Kind: checker.KindParse, Message: "checker returned no response"}
	}
	return resp, latency, err
}

func errorOutcome(out RowOutcome, err error) RowOutcome {
	out.Result = errorPrefix + err.Error()
	out.Conclusion = verdict.Error
	return out
}

// Result is the outcome of a single check.
type Result struct {
	RunID      string             `json:"run_id"`
	Rule       string             `json:"rule"`
	Mode       string             `json:"mode"`
	Conclusion verdict.Conclusion `json:"conclusion"`
	Text       string             `json:"result"`
	Keywords   []string           `json:"keywords,omitempty"`
	Model      string             `json:"model,omitempty"`
	Usage      checker.Usage      `json:"usage"`
	Latency    time.Duration      `json:"latency"`
}

// CheckText checks a single text against ruleName. ModeFull sends every
// reference; ModeDynamic sends only detected ones. Checker failures are
// returned as *checker.RequestError.
func (p *Processor) CheckText(ctx context.Context, ruleName, text string, mode prompt.Mode) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	rule, err := p.rules.Rule(ruleName)
	if err != nil {
		return nil, err
	}

	runID := logging.GetRunID(ctx)
	if runID == "" {
		runID = uuid.NewString()
		ctx = logging.WithRunID(ctx, runID)
	}
	ctx = logging.WithRule(ctx, rule.Name)

	detected := p.detector.Detect(rule, text)
	started := time.Now()
	resp, latency, err := p.call(ctx, prompt.Compose(mode, rule, detected), text)
	if err != nil {
		p.logger.ErrorContext(ctx, "check failed", "mode", mode.String(), "error", err)
		return nil, fmt.Errorf("check text: %w", err)
	}

	res := &Result{
		RunID:      runID,
		Rule:       rule.Name,
		Mode:       mode.String(),
		Conclusion: verdict.Extract(resp.Text),
		Text:       resp.Text,
		Keywords:   detected.Sorted(),
		Model:      resp.Model,
		Usage:      resp.Usage,
		Latency:    latency,
	}
	p.logger.InfoContext(ctx, "check completed",
		"mode", res.Mode,
		"conclusion", res.Conclusion,
		"keywords", len(res.Keywords),
		"latency", latency,
	)

	if p.opts.Metrics != nil {
		p.opts.Metrics.RecordRow(rule.Name, string(res.Conclusion))
	}

	row := RowOutcome{Conclusion: res.Conclusion, Result: res.Text, Keywords: res.Keywords, Usage: res.Usage, Latency: latency}
	p.record(ctx, &history.Run{
		ID:         runID,
		Rule:       rule.Name,
		Source:     logging.GetSource(ctx),
		Trigger:    TriggerFrom(ctx),
		Mode:       res.Mode,
		StartedAt:  started,
		FinishedAt: time.Now(),
		Total:      1,
		Counts:     history.Counts{res.Conclusion: 1},
		Rows:       []history.Row{row.historyRow()},
	})
	return res, nil
}

func (p *Processor) record(ctx context.Context, run *history.Run) {
	if p.opts.History == nil {
		return
	}
	if err := p.opts.History.SaveRun(context.WithoutCancel(ctx), run); err != nil {
		p.logger.WarnContext(ctx, "failed to record run history", "error", err)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
