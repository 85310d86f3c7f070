package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/copycheck/pkg/batch"
	"mercator-hq/copycheck/pkg/cli"
	"mercator-hq/copycheck/pkg/history"
	"mercator-hq/copycheck/pkg/jobs"
	"mercator-hq/copycheck/pkg/verdict"
)

var batchFlags struct {
	rule      string
	out       string
	sheet     string
	workers   int
	latest    bool
	remoteKey string
	url       time.Duration
	quiet     bool
}

var batchCmd = &cobra.Command{
	Use:   "batch [input.xlsx]",
	Short: "Check every row of a workbook",
	Long: `Check every row of a workbook and write a result workbook.

The result contains the input rows followed by a rationale column and a
conclusion column (OK, NG, UNKNOWN, SKIPPED, NO_DATA or ERROR). A failing
row never stops the batch.

Local workbooks are written next to the input unless --out is given. With
--latest or --remote-key the input is read from the sheets bucket and the
result is uploaded under the output prefix.

Examples:
  # Check a local workbook with four workers
  copycheck batch products.xlsx --workers 4

  # Check the newest workbook in the sheets bucket
  copycheck batch --latest

  # Check a specific remote workbook and print a download link
  copycheck batch --remote-key input/products.xlsx --url 1h`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVarP(&batchFlags.rule, "rule", "r", "", "rule name (default from config)")
	batchCmd.Flags().StringVar(&batchFlags.out, "out", "", "result workbook path (default: <input>_checked_<timestamp>.xlsx)")
	batchCmd.Flags().StringVar(&batchFlags.sheet, "sheet", "", "input sheet name (default from config, else the first sheet)")
	batchCmd.Flags().IntVarP(&batchFlags.workers, "workers", "w", 0, "rows checked concurrently (default from config)")
	batchCmd.Flags().BoolVar(&batchFlags.latest, "latest", false, "check the newest workbook under the remote input prefix")
	batchCmd.Flags().StringVar(&batchFlags.remoteKey, "remote-key", "", "check the remote workbook at this key")
	batchCmd.Flags().DurationVar(&batchFlags.url, "url", 0, "print a presigned download URL for the remote result, valid this long")
	batchCmd.Flags().BoolVarP(&batchFlags.quiet, "quiet", "q", false, "no progress bar")
}

func runBatch(cmd *cobra.Command, args []string) error {
	remote := batchFlags.latest || batchFlags.remoteKey != ""
	switch {
	case batchFlags.latest && batchFlags.remoteKey != "":
		return cli.Usagef("--latest and --remote-key are mutually exclusive")
	case remote && len(args) > 0:
		return cli.Usagef("an input file cannot be combined with --latest or --remote-key")
	case !remote && len(args) == 0:
		return cli.Usagef("an input workbook is required")
	case !remote && batchFlags.url > 0:
		return cli.Usagef("--url needs --latest or --remote-key")
	case batchFlags.workers < 0:
		return cli.Usagef("--workers must not be negative")
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		if batchFlags.sheet != "" {
			a.cfg.Batch.SheetName = batchFlags.sheet
		}

		opts := processorOptions{workers: batchFlags.workers}
		if !batchFlags.quiet {
			opts.onRow = progressFunc(cli.NewProgressReporter(cmd.ErrOrStderr()))
		}

		runner, err := a.runner(ctx, a.ruleName(batchFlags.rule), opts)
		if err != nil {
			return err
		}

		var report *jobs.Report
		switch {
		case batchFlags.latest:
			report, err = runner.RunLatestRemote(batch.WithTrigger(ctx, batch.TriggerRemote))
		case batchFlags.remoteKey != "":
			report, err = runner.RunRemoteKey(batch.WithTrigger(ctx, batch.TriggerRemote), batchFlags.remoteKey)
		default:
			in := args[0]
			out := batchFlags.out
			if out == "" {
				out = filepath.Join(filepath.Dir(in), jobs.OutputName(in, time.Now()))
			}
			report, err = runner.RunFile(batch.WithTrigger(ctx, batch.TriggerCLI), in, out)
		}
		if err != nil {
			return err
		}

		if batchFlags.url > 0 {
			store, err := a.sheetsStore(ctx)
			if err != nil {
				return err
			}
			link, err := store.PresignGet(ctx, report.Output, batchFlags.url)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "download:", link)
		}

		if outputFormat == string(cli.FormatJSON) {
			return printResult(cmd, report)
		}
		return printResult(cmd, reportTable(report))
	})
}

// progressFunc adapts a progress reporter to the processor's row callback.
func progressFunc(p cli.ProgressReporter) func(done, total int) {
	var once sync.Once
	return func(done, total int) {
		once.Do(func() { p.Start(int64(total)) })
		p.Update(int64(done))
		if done == total {
			p.Finish()
		}
	}
}

func reportTable(r *jobs.Report) *cli.Table {
	t := &cli.Table{Columns: []string{"FIELD", "VALUE"}}
	t.Append("run", r.RunID)
	t.Append("rule", r.Rule)
	t.Append("input", r.Input)
	t.Append("output", r.Output)
	t.Append("rows", strconv.Itoa(r.Rows))
	appendCounts(t, r.Counts)
	t.Append("duration", r.Duration.Round(time.Millisecond).String())
	return t
}

// appendCounts adds one line per conclusion with a non-zero count.
func appendCounts(t *cli.Table, counts history.Counts) {
	for _, c := range verdict.Conclusions {
		if n := counts[c]; n > 0 {
			t.Append(string(c), strconv.Itoa(n))
		}
	}
}
