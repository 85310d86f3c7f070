package jobs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"mercator-hq/copycheck/pkg/batch"
	"mercator-hq/copycheck/pkg/config"
	"mercator-hq/copycheck/pkg/history"
	"mercator-hq/copycheck/pkg/objectstore"
	"mercator-hq/copycheck/pkg/sheet"
	"mercator-hq/copycheck/pkg/telemetry/logging"
)

// ErrNoInput is returned by RunLatestRemote when the input prefix holds no
// sheet.
var ErrNoInput = errors.New("no input sheet found")

// SheetExtensions are the workbook extensions accepted as input.
var SheetExtensions = []string{".xlsx", ".xlsm"}

// Processor runs a batch. *batch.Processor implements it.
type Processor interface {
	Process(ctx context.Context, rows []batch.Row, ruleName string) ([]batch.RowOutcome, error)
}

// Options configures a Runner.
type Options struct {
	// Rule is the rule every job checks against.
	Rule string

	// Batch selects the input sheet, identifying column and output columns.
	Batch config.BatchConfig

	// Sheets is the remote store for input and output sheets. Nil makes
	// remote jobs fail with *objectstore.ConfigError.
	Sheets objectstore.Store

	// InputPrefix and OutputPrefix locate remote sheets.
	InputPrefix  string
	OutputPrefix string

	// Logger defaults to slog.Default()
	Logger *slog.Logger
}

// Report summarises a finished job.
type Report struct {
	RunID    string         `json:"run_id"`
	Rule     string         `json:"rule"`
	Input    string         `json:"input"`
	Output   string         `json:"output"`
	Rows     int            `json:"rows"`
	Counts   history.Counts `json:"counts"`
	Duration time.Duration  `json:"duration"`
}

// Runner moves sheets through a batch: read, process, write.
type Runner struct {
	processor Processor
	opts      Options
	logger    *slog.Logger
	now       func() time.Time
}

// NewRunner creates a Runner.
func NewRunner(p Processor, opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		processor: p,
		opts:      opts,
		logger:    logger.With("component", "jobs.runner"),
		now:       time.Now,
	}
}

// RunFile checks the workbook at in and writes the result workbook to out.
func (r *Runner) RunFile(ctx context.Context, in, out string) (*Report, error) {
	ctx = logging.WithSource(ctx, in)

	f, err := os.Open(in)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	table, err := sheet.Read(f, r.readOptions())
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", in, err)
	}

	body, report, err := r.run(ctx, table, in)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(out, body, 0o644); err != nil {
		return nil, fmt.Errorf("write output: %w", err)
	}
	report.Output = out

	r.logger.InfoContext(ctx, "job completed", "output", out, "rows", report.Rows)
	return report, nil
}

// RunLatestRemote checks the most recently modified sheet under the input
// prefix and uploads the result under the output prefix.
func (r *Runner) RunLatestRemote(ctx context.Context) (*Report, error) {
	store, err := r.sheets()
	if err != nil {
		return nil, err
	}

	entries, err := store.List(ctx, r.opts.InputPrefix)
	if err != nil {
		return nil, fmt.Errorf("list input sheets: %w", err)
	}
	latest, ok := objectstore.Latest(entries, SheetExtensions...)
	if !ok {
		r.logger.WarnContext(ctx, "no input sheet found", "prefix", r.opts.InputPrefix)
		return nil, ErrNoInput
	}

	r.logger.InfoContext(ctx, "latest input sheet found", "key", latest.Key, "modified", latest.LastModified)
	return r.RunRemoteKey(ctx, latest.Key)
}

// RunRemoteKey checks the remote sheet at key and uploads the result under
// the output prefix.
func (r *Runner) RunRemoteKey(ctx context.Context, key string) (*Report, error) {
	store, err := r.sheets()
	if err != nil {
		return nil, err
	}
	ctx = logging.WithSource(ctx, key)

	body, err := store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", key, err)
	}
	table, err := sheet.Read(bytes.NewReader(body), r.readOptions())
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}

	result, report, err := r.run(ctx, table, key)
	if err != nil {
		return nil, err
	}

	stored, err := store.Put(ctx, OutputKey(r.opts.OutputPrefix, key, r.now()), result, objectstore.ContentTypeXLSX)
	if err != nil {
		return nil, fmt.Errorf("upload result: %w", err)
	}
	report.Output = stored

	r.logger.InfoContext(ctx, "job completed", "output", stored, "rows", report.Rows)
	return report, nil
}

func (r *Runner) run(ctx context.Context, table *sheet.Table, input string) ([]byte, *Report, error) {
	runID := logging.GetRunID(ctx)
	if runID == "" {
		runID = uuid.NewString()
		ctx = logging.WithRunID(ctx, runID)
	}

	started := time.Now()
	outcomes, err := r.processor.Process(ctx, table.Rows, r.opts.Rule)
	if err != nil {
		return nil, nil, err
	}

	var buf bytes.Buffer
	if err := sheet.Write(&buf, table, outcomes, sheet.WriteOptions{
		Sheet:            r.opts.Batch.OutputSheet,
		ResultColumn:     r.opts.Batch.ResultColumn,
		ConclusionColumn: r.opts.Batch.ConclusionColumn,
	}); err != nil {
		return nil, nil, fmt.Errorf("write result sheet: %w", err)
	}

	return buf.Bytes(), &Report{
		RunID:    runID,
		Rule:     r.opts.Rule,
		Input:    input,
		Rows:     len(outcomes),
		Counts:   batch.Counts(outcomes),
		Duration: time.Since(started),
	}, nil
}

func (r *Runner) readOptions() sheet.ReadOptions {
	return sheet.ReadOptions{
		Sheet:           r.opts.Batch.SheetName,
		RequiredColumns: []string{r.opts.Batch.IDColumn},
	}
}

func (r *Runner) sheets() (objectstore.Store, error) {
	if r.opts.Sheets == nil {
		return nil, &objectstore.ConfigError{Field: "remote.sheets_bucket"}
	}
	return r.opts.Sheets, nil
}

// OutputKey names the result of input: "<prefix>/<base>_checked_<YYYYMMDD_HHMMSS>.xlsx".
func OutputKey(prefix, input string, t time.Time) string {
	return path.Join(prefix, OutputName(input, t))
}

const outputMarker = "_checked_"

// OutputName is the file name of the result of input.
func OutputName(input string, t time.Time) string {
	base := path.Base(filepath.ToSlash(input))
	base = strings.TrimSuffix(base, path.Ext(base))
	return base + outputMarker + t.Format("20060102_150405") + ".xlsx"
}

// IsOutputName reports whether name looks like a result written by OutputName.
func IsOutputName(name string) bool {
	return strings.Contains(path.Base(filepath.ToSlash(name)), outputMarker)
}
