package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mercator-hq/copycheck/pkg/cli"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Administer the rule content cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

var cacheFlushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Delete every cached document",
	Args:  cobra.NoArgs,
	RunE:  runCacheFlush,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd, cacheFlushCmd)
}

func runCacheStats(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		guard, err := a.openCache(ctx)
		if err != nil {
			return err
		}
		if guard == nil {
			return cli.NewConfigError("cache.backend", "cache is disabled")
		}

		stats, err := guard.Stats(ctx)
		if err != nil {
			return err
		}
		if outputFormat == string(cli.FormatJSON) {
			return printResult(cmd, stats)
		}

		t := &cli.Table{Columns: []string{"FIELD", "VALUE"}}
		t.Append("backend", stats.Backend)
		t.Append("enabled", strconv.FormatBool(stats.Enabled))
		t.Append("keys", strconv.FormatInt(stats.Keys, 10))
		t.Append("hits", strconv.FormatInt(stats.Hits, 10))
		t.Append("misses", strconv.FormatInt(stats.Misses, 10))
		if stats.TTL != "" {
			t.Append("ttl", stats.TTL)
		}
		return printResult(cmd, t)
	})
}

func runCacheFlush(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		guard, err := a.openCache(ctx)
		if err != nil {
			return err
		}
		if guard == nil {
			return cli.NewConfigError("cache.backend", "cache is disabled")
		}

		n, err := guard.Flush(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted %d cached entries\n", n)
		return err
	})
}
