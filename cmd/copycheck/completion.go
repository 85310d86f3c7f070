package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/copycheck/pkg/config"
	"mercator-hq/copycheck/pkg/rules"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion script for copycheck.

Rule names are completed from the local rule directory.

To load completions:

Bash:
  $ source <(copycheck completion bash)
  # To load permanently:
  $ copycheck completion bash > /etc/bash_completion.d/copycheck

Zsh:
  $ copycheck completion zsh > "${fpath[1]}/_copycheck"
  $ compinit

Fish:
  $ copycheck completion fish | source

PowerShell:
  PS> copycheck completion powershell | Out-String | Invoke-Expression
`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletionV2(out, true)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(out)
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)

	for _, cmd := range []*cobra.Command{rulesShowCmd, rulesPromptCmd, rulesDetectCmd} {
		cmd.ValidArgsFunction = completeRuleArg
	}
	for _, cmd := range []*cobra.Command{checkCmd, batchCmd, watchCmd, scheduleCmd} {
		_ = cmd.RegisterFlagCompletionFunc("rule", completeRuleNames)
	}
}

// completeRuleNames lists rules of the local corpus. Only local files are
// read; completion never reaches the cache or the remote store.
func completeRuleNames(cmd *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := config.Load(cfgFile, configExplicit(cmd))
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	repo := rules.NewRepository(cfg.Rules.Dir, rules.Layout{
		DefinitionFile: cfg.Rules.DefinitionFile,
		ReferencesDir:  cfg.Rules.ReferencesDir,
		Extension:      cfg.Rules.Extension,
	}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := repo.Load(ctx); err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var names []string
	for _, s := range repo.List() {
		if strings.HasPrefix(s.Name, toComplete) {
			names = append(names, s.Name+"\t"+s.Description)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

func completeRuleArg(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return completeRuleNames(cmd, args, toComplete)
}
