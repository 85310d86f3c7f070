package main

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"mercator-hq/copycheck/pkg/batch"
	"mercator-hq/copycheck/pkg/cli"
	"mercator-hq/copycheck/pkg/jobs"
)

var serveFlags struct {
	rule        string
	workers     int
	metricsAddr string
	inputDir    string
	outputDir   string
	cron        string
	runOnStart  bool
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Check workbooks dropped into the input directory",
	Long: `Watch the input directory and check every workbook written to it.

Results are written to the output directory as
<name>_checked_<YYYYMMDD_HHMMSS>.xlsx. A file is processed once it has been
quiet for the debounce interval. Hidden files and Excel lock files (~$...)
are ignored.

Examples:
  copycheck watch
  copycheck watch --input-dir inbox --output-dir outbox --metrics-addr :9090`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Check the newest remote workbook on a cron schedule",
	Long: `Check the newest workbook under the remote input prefix on a cron
schedule and upload the result under the output prefix. A run that is still
in progress when the next one is due causes that one to be skipped.

Examples:
  # Every weekday at 07:00
  copycheck schedule --cron "0 7 * * 1-5"

  # Run once immediately, then hourly
  copycheck schedule --cron "@hourly" --run-on-start`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(watchCmd, scheduleCmd)

	for _, cmd := range []*cobra.Command{watchCmd, scheduleCmd} {
		cmd.Flags().StringVarP(&serveFlags.rule, "rule", "r", "", "rule name (default from config)")
		cmd.Flags().IntVarP(&serveFlags.workers, "workers", "w", 0, "rows checked concurrently (default from config)")
		cmd.Flags().StringVar(&serveFlags.metricsAddr, "metrics-addr", "", "serve metrics and health on this address, e.g. :9090")
	}

	watchCmd.Flags().StringVar(&serveFlags.inputDir, "input-dir", "", "directory to watch (default from config)")
	watchCmd.Flags().StringVar(&serveFlags.outputDir, "output-dir", "", "directory for result workbooks (default from config)")

	scheduleCmd.Flags().StringVar(&serveFlags.cron, "cron", "", "cron expression (default from config)")
	scheduleCmd.Flags().BoolVar(&serveFlags.runOnStart, "run-on-start", false, "run once at startup")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if serveFlags.workers < 0 {
		return cli.Usagef("--workers must not be negative")
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		if serveFlags.inputDir != "" {
			a.cfg.Watch.InputDir = serveFlags.inputDir
		}
		if serveFlags.outputDir != "" {
			a.cfg.Watch.OutputDir = serveFlags.outputDir
		}

		runner, err := a.runner(ctx, a.ruleName(serveFlags.rule), processorOptions{workers: serveFlags.workers})
		if err != nil {
			return err
		}

		watcher, err := jobs.NewWatcher(jobs.WatcherConfig{
			Dir:              a.cfg.Watch.InputDir,
			DebounceInterval: a.cfg.Watch.DebounceInterval,
			Extensions:       a.cfg.Watch.Extensions,
		}, a.logger)
		if err != nil {
			return err
		}
		defer watcher.Stop()

		g, ctx := errgroup.WithContext(ctx)
		svc, err := startServices(ctx, g, a, serveFlags.metricsAddr)
		if err != nil {
			return err
		}
		defer svc.stop()

		outDir := a.cfg.Watch.OutputDir
		g.Go(func() error {
			return watcher.Watch(ctx, func(ctx context.Context, path string) error {
				out := filepath.Join(outDir, jobs.OutputName(path, time.Now()))
				_, err := runner.RunFile(batch.WithTrigger(ctx, batch.TriggerWatch), path, out)
				return err
			})
		})

		a.logger.Info("watching for workbooks", "input_dir", a.cfg.Watch.InputDir, "output_dir", outDir)
		return ignoreCanceled(g.Wait())
	})
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	if serveFlags.workers < 0 {
		return cli.Usagef("--workers must not be negative")
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		if serveFlags.cron != "" {
			a.cfg.Schedule.Cron = serveFlags.cron
		}
		if cmd.Flags().Changed("run-on-start") {
			a.cfg.Schedule.RunOnStart = serveFlags.runOnStart
		}
		if a.cfg.Schedule.Cron == "" {
			return cli.NewConfigError("schedule.cron", "no cron expression configured")
		}

		runner, err := a.runner(ctx, a.ruleName(serveFlags.rule), processorOptions{workers: serveFlags.workers})
		if err != nil {
			return err
		}
		// Fail fast: scheduled runs need the sheets bucket.
		if _, err := a.sheetsStore(ctx); err != nil {
			return err
		}

		g, ctx := errgroup.WithContext(ctx)
		svc, err := startServices(ctx, g, a, serveFlags.metricsAddr)
		if err != nil {
			return err
		}
		defer svc.stop()

		scheduler := jobs.NewScheduler(runner, a.cfg.Schedule.Cron, a.cfg.Schedule.RunOnStart, a.logger)
		if err := scheduler.Start(ctx); err != nil {
			return cli.NewConfigError("schedule.cron", err.Error())
		}
		defer scheduler.Stop()

		if next := scheduler.NextRun(); next != nil {
			a.logger.Info("schedule started", "cron", a.cfg.Schedule.Cron, "next_run", next.Format(time.RFC3339))
		}

		g.Go(func() error {
			<-ctx.Done()
			return nil
		})
		return ignoreCanceled(g.Wait())
	})
}

// ignoreCanceled treats shutdown by signal as success.
func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
