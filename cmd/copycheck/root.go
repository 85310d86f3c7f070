package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/copycheck/pkg/cli"
)

var (
	// Global flags
	cfgFile      string
	verbose      bool
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "copycheck",
	Short: "copycheck - compliance checks for product copy",
	Long: `copycheck checks product copy against keyword-driven compliance rules.

For every text it detects which reference keywords of a rule occur, composes
instructions from the rule body and the matching reference documents, asks
the configured checker for a verdict and extracts an OK/NG conclusion.

Rule documents are resolved through a cache, a remote object store and the
local rule directory, in that order.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "output format (text, json, csv)")
}

// configExplicit reports whether --config was given on the command line.
func configExplicit(cmd *cobra.Command) bool {
	f := cmd.Flags().Lookup("config")
	return f != nil && f.Changed
}

// printResult writes data to stdout in the selected output format.
func printResult(cmd *cobra.Command, data any) error {
	format, err := cli.ParseOutputFormat(outputFormat)
	if err != nil {
		return err
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), data)
}
