package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/copycheck/pkg/cli"
	"mercator-hq/copycheck/pkg/history"
	"mercator-hq/copycheck/pkg/verdict"
)

var historyFlags struct {
	rule  string
	since string
	limit int
	days  int
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query recorded check runs",
	Long: `Query recorded check runs.

Every batch and single check is recorded with its rule, source, trigger,
per-conclusion counts and per-row outcomes.

Subcommands:
  list  - List runs, newest first
  show  - Show one run with its rows
  prune - Delete runs older than the retention period`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List runs, newest first",
	Long: `List runs, newest first.

--since accepts an RFC3339 timestamp, a date (2006-01-02) or a duration
such as 24h or 7d.

Examples:
  copycheck history list --since 7d
  copycheck history list --rule 商品コピーチェック --limit 5 -o json`,
	Args: cobra.NoArgs,
	RunE: runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run with its rows",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete runs older than the retention period",
	Args:  cobra.NoArgs,
	RunE:  runHistoryPrune,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyPruneCmd)

	historyListCmd.Flags().StringVar(&historyFlags.rule, "rule", "", "only runs of this rule")
	historyListCmd.Flags().StringVar(&historyFlags.since, "since", "", "only runs started after this time")
	historyListCmd.Flags().IntVar(&historyFlags.limit, "limit", 20, "max results (0 for all)")

	historyPruneCmd.Flags().IntVar(&historyFlags.days, "days", 0, "retention in days (default from config)")
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	since, err := parseSince(historyFlags.since, time.Now())
	if err != nil {
		return cli.Usagef("invalid --since: %v", err)
	}
	if historyFlags.limit < 0 {
		return cli.Usagef("--limit must not be negative")
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		store, err := a.requireHistory()
		if err != nil {
			return err
		}
		runs, err := store.ListRuns(ctx, history.Filter{
			Rule:  historyFlags.rule,
			Since: since,
			Limit: historyFlags.limit,
		})
		if err != nil {
			return err
		}
		if outputFormat == string(cli.FormatJSON) {
			return printResult(cmd, runs)
		}
		return printResult(cmd, runsTable(runs))
	})
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		store, err := a.requireHistory()
		if err != nil {
			return err
		}
		run, err := store.GetRun(ctx, args[0])
		if err != nil {
			return err
		}
		if outputFormat == string(cli.FormatJSON) {
			return printResult(cmd, run)
		}

		if outputFormat == string(cli.FormatText) {
			fmt.Fprintf(cmd.OutOrStdout(), "run %s  rule=%s  source=%s  trigger=%s  mode=%s\nstarted %s  took %s  %s\n\n",
				run.ID, run.Rule, run.Source, run.Trigger, run.Mode,
				run.StartedAt.Local().Format(time.DateTime),
				run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond),
				countsSummary(run.Counts))
		}
		return printResult(cmd, rowsTable(run.Rows))
	})
}

func runHistoryPrune(cmd *cobra.Command, _ []string) error {
	if historyFlags.days < 0 {
		return cli.Usagef("--days must not be negative")
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		store, err := a.requireHistory()
		if err != nil {
			return err
		}

		days := a.cfg.History.RetentionDays
		if historyFlags.days > 0 {
			days = historyFlags.days
		}
		pruner := history.NewPruner(store, days, a.logger)
		cutoff, ok := pruner.Cutoff()
		if !ok {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "retention is unlimited, nothing to prune")
			return err
		}

		n, err := pruner.Prune(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted %d runs started before %s\n", n, cutoff.Local().Format(time.DateTime))
		return err
	})
}

// parseSince accepts RFC3339, a date, a Go duration or a day count like
// "7d". Durations are subtracted from now.
func parseSince(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, time.Local); err == nil {
		return t, nil
	}
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return time.Time{}, fmt.Errorf("%q is not a day count", s)
		}
		return now.AddDate(0, 0, -n), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not a time, date or duration", s)
	}
	if d < 0 {
		return time.Time{}, fmt.Errorf("%q is negative", s)
	}
	return now.Add(-d), nil
}

func runsTable(runs []*history.Run) *cli.Table {
	t := &cli.Table{Columns: []string{"ID", "STARTED", "RULE", "TRIGGER", "SOURCE", "ROWS", "COUNTS"}}
	for _, run := range runs {
		t.Append(run.ID,
			run.StartedAt.Local().Format(time.DateTime),
			run.Rule,
			run.Trigger,
			run.Source,
			strconv.Itoa(run.Total),
			countsSummary(run.Counts),
		)
	}
	return t
}

func rowsTable(rows []history.Row) *cli.Table {
	t := &cli.Table{Columns: []string{"ROW", "CONCLUSION", "KEYWORDS", "TOKENS", "LATENCY", "RESULT"}}
	for _, row := range rows {
		t.Append(strconv.Itoa(row.Index+1),
			string(row.Conclusion),
			strings.Join(row.Keywords, ","),
			fmt.Sprintf("%d/%d", row.InputTokens, row.OutputTokens),
			row.Latency.Round(time.Millisecond).String(),
			firstLine(row.Result, 60),
		)
	}
	return t
}

// countsSummary renders counts as "OK=3 NG=1".
func countsSummary(counts history.Counts) string {
	var parts []string
	for _, c := range verdict.Conclusions {
		if n := counts[c]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", c, n))
		}
	}
	return strings.Join(parts, " ")
}

func firstLine(s string, n int) string {
	s, _, _ = strings.Cut(strings.TrimSpace(s), "\n")
	r := []rune(s)
	if len(r) > n {
		return string(r[:n]) + "..."
	}
	return s
}
