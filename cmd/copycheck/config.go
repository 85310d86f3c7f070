package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"mercator-hq/copycheck/pkg/cli"
	"mercator-hq/copycheck/pkg/config"
	"mercator-hq/copycheck/pkg/telemetry/logging"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Load the configuration file, apply defaults and COPYCHECK_* environment
overrides, and report every invalid field. Exits with status 2 when the
configuration is invalid.`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with secrets redacted",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd, configShowCmd)
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	if _, err := config.Load(cfgFile, configExplicit(cmd)); err != nil {
		return err
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: configuration is valid\n", cfgFile)
	return err
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile, configExplicit(cmd))
	if err != nil {
		return err
	}
	redacted := *cfg
	redacted.Checker.APIKey = logging.RedactAPIKey(cfg.Checker.APIKey)
	if cfg.Cache.Redis.Password != "" {
		redacted.Cache.Redis.Password = "[REDACTED]"
	}

	if outputFormat == string(cli.FormatJSON) {
		return printResult(cmd, redacted)
	}
	out, err := yaml.Marshal(redacted)
	if err != nil {
		return fmt.Errorf("encode configuration: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
