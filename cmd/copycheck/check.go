package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/copycheck/pkg/batch"
	"mercator-hq/copycheck/pkg/cli"
	"mercator-hq/copycheck/pkg/prompt"
	"mercator-hq/copycheck/pkg/telemetry/logging"
)

var checkFlags struct {
	rule string
	mode string
	text string
	file string
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check a single text",
	Long: `Check a single text against a rule and print the verdict.

The text is taken from --text, from --file, or from standard input.

Modes:
  full     send every reference document of the rule
  dynamic  send only the references whose keywords occur in the text

Examples:
  # Check a text with the default rule
  copycheck check --text "シミが消える美白クリーム"

  # Check a file with only the detected references
  copycheck check --rule 商品コピーチェック --mode dynamic --file copy.txt`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkFlags.rule, "rule", "r", "", "rule name (default from config)")
	checkCmd.Flags().StringVarP(&checkFlags.mode, "mode", "m", "full", "prompt mode: full, dynamic")
	checkCmd.Flags().StringVarP(&checkFlags.text, "text", "t", "", "text to check")
	checkCmd.Flags().StringVarP(&checkFlags.file, "file", "f", "", "read the text from a file")
}

func runCheck(cmd *cobra.Command, _ []string) error {
	mode, err := prompt.ParseMode(checkFlags.mode)
	if err != nil {
		return cli.Usagef("%v", err)
	}
	if checkFlags.text != "" && checkFlags.file != "" {
		return cli.Usagef("--text and --file are mutually exclusive")
	}

	text, err := readCheckText(cmd.InOrStdin())
	if err != nil {
		return err
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		p, err := a.processor(ctx, processorOptions{})
		if err != nil {
			return err
		}

		ctx = batch.WithTrigger(ctx, batch.TriggerCLI)
		ctx = logging.WithSource(ctx, checkSource())

		res, err := p.CheckText(ctx, a.ruleName(checkFlags.rule), text, mode)
		if err != nil {
			return err
		}
		if outputFormat == string(cli.FormatText) {
			return printCheckResult(cmd.OutOrStdout(), res)
		}
		return printResult(cmd, res)
	})
}

func readCheckText(stdin io.Reader) (string, error) {
	switch {
	case checkFlags.text != "":
		return checkFlags.text, nil
	case checkFlags.file != "":
		data, err := os.ReadFile(checkFlags.file)
		if err != nil {
			return "", fmt.Errorf("read text file: %w", err)
		}
		return string(data), nil
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read standard input: %w", err)
		}
		return string(data), nil
	}
}

func checkSource() string {
	switch {
	case checkFlags.file != "":
		return checkFlags.file
	case checkFlags.text != "":
		return "text"
	default:
		return "stdin"
	}
}

func printCheckResult(w io.Writer, res *batch.Result) error {
	keywords := "-"
	if len(res.Keywords) > 0 {
		keywords = strings.Join(res.Keywords, ", ")
	}
	_, err := fmt.Fprintf(w, "結論: %s\nキーワード: %s\nrun: %s (%s, %s, %d/%d tokens)\n\n%s\n",
		res.Conclusion, keywords, res.RunID, res.Mode, res.Latency.Round(time.Millisecond),
		res.Usage.Input, res.Usage.Output, strings.TrimSpace(res.Text))
	return err
}
