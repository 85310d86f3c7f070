package main

import (
	"context"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/copycheck/pkg/cache"
	"mercator-hq/copycheck/pkg/cli"
	"mercator-hq/copycheck/pkg/objectstore"
	"mercator-hq/copycheck/pkg/prompt"
	"mercator-hq/copycheck/pkg/rules"
)

var rulesFlags struct {
	text   string
	master string
	out    string
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and manage the rule corpus",
	Long: `Inspect and manage the rule corpus.

Subcommands:
  list     - List loaded rules
  show     - Show a rule and its reference keywords
  prompt   - Print the instructions sent to the checker
  detect   - Print the reference keywords found in a text
  sync     - Upload the local corpus to the rules bucket
  remote   - List the corpus stored in the rules bucket
  gen-refs - Generate reference documents from a master sheet`,
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List loaded rules",
	Args:  cobra.NoArgs,
	RunE:  runRulesList,
}

var rulesShowCmd = &cobra.Command{
	Use:   "show <rule>",
	Short: "Show a rule and its reference keywords",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesShow,
}

var rulesPromptCmd = &cobra.Command{
	Use:   "prompt <rule>",
	Short: "Print the instructions sent to the checker",
	Long: `Print the instructions sent to the checker.

Without --text every reference document is included. With --text only the
references whose keywords occur in the text are included.`,
	Args: cobra.ExactArgs(1),
	RunE: runRulesPrompt,
}

var rulesDetectCmd = &cobra.Command{
	Use:   "detect <rule>",
	Short: "Print the reference keywords found in a text",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesDetect,
}

var rulesSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Upload the local corpus to the rules bucket",
	Long: `Upload every document of the local rule directory to the rules bucket
under the configured rules prefix. Cached copies of the uploaded documents
are dropped so the next load reads the new versions.`,
	Args: cobra.NoArgs,
	RunE: runRulesSync,
}

var rulesRemoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "List the corpus stored in the rules bucket",
	Args:  cobra.NoArgs,
	RunE:  runRulesRemote,
}

var rulesGenRefsCmd = &cobra.Command{
	Use:   "gen-refs",
	Short: "Generate reference documents from a master sheet",
	Long: `Generate one reference document per keyword from a tab-separated master
sheet. The keyword column is "` + rules.KeywordColumn + `"; slashes in keywords
are written as full-width slashes.

Example:
  copycheck rules gen-refs --master master.tsv --out skills/商品コピーチェック/references`,
	Args: cobra.NoArgs,
	RunE: runRulesGenRefs,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd, rulesShowCmd, rulesPromptCmd, rulesDetectCmd,
		rulesSyncCmd, rulesRemoteCmd, rulesGenRefsCmd)

	rulesPromptCmd.Flags().StringVarP(&rulesFlags.text, "text", "t", "", "compose for this text (dynamic mode)")
	rulesDetectCmd.Flags().StringVarP(&rulesFlags.text, "text", "t", "", "text to scan")
	_ = rulesDetectCmd.MarkFlagRequired("text")

	rulesGenRefsCmd.Flags().StringVar(&rulesFlags.master, "master", "", "tab-separated master sheet")
	rulesGenRefsCmd.Flags().StringVar(&rulesFlags.out, "out", "", "output directory")
	_ = rulesGenRefsCmd.MarkFlagRequired("master")
	_ = rulesGenRefsCmd.MarkFlagRequired("out")
}

func runRulesList(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		repo, err := a.rules(ctx)
		if err != nil {
			return err
		}
		if outputFormat == string(cli.FormatJSON) {
			return printResult(cmd, repo.List())
		}

		t := &cli.Table{Columns: []string{"NAME", "REFERENCES", "DESCRIPTION"}}
		for _, rule := range repo.Rules() {
			t.Append(rule.Name, strconv.Itoa(len(rule.References)), rule.Description)
		}
		return printResult(cmd, t)
	})
}

func runRulesShow(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		rule, err := loadRule(ctx, a, args[0])
		if err != nil {
			return err
		}
		if outputFormat == string(cli.FormatJSON) {
			return printResult(cmd, map[string]any{
				"name":        rule.Name,
				"description": rule.Description,
				"dir":         rule.Dir,
				"keywords":    rule.Keywords(),
			})
		}

		t := &cli.Table{Columns: []string{"KEYWORD", "KEY", "SIZE"}}
		for _, kw := range rule.Keywords() {
			ref := rule.References[kw]
			t.Append(kw, ref.Key, strconv.Itoa(len(ref.Document)))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n\n", rule.Name, rule.Description)
		return printResult(cmd, t)
	})
}

func runRulesPrompt(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		rule, err := loadRule(ctx, a, args[0])
		if err != nil {
			return err
		}

		if rulesFlags.text == "" {
			_, err = fmt.Fprintln(cmd.OutOrStdout(), prompt.Full(rule))
			return err
		}
		det, err := a.detector()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), prompt.Dynamic(rule, det.Detect(rule, rulesFlags.text)))
		return err
	})
}

func runRulesDetect(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		rule, err := loadRule(ctx, a, args[0])
		if err != nil {
			return err
		}
		det, err := a.detector()
		if err != nil {
			return err
		}

		found := det.Detect(rule, rulesFlags.text).Sorted()
		if outputFormat == string(cli.FormatJSON) {
			return printResult(cmd, map[string]any{
				"rule":       rule.Name,
				"strictness": det.Strictness().String(),
				"keywords":   found,
			})
		}
		t := &cli.Table{Columns: []string{"KEYWORD"}}
		for _, kw := range found {
			t.Append(kw)
		}
		return printResult(cmd, t)
	})
}

func runRulesSync(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		store, err := a.rulesStore(ctx)
		if err != nil {
			return err
		}

		prefix := a.cfg.Remote.RulesPrefix
		keys, err := objectstore.UploadDir(ctx, store, a.cfg.Rules.Dir, prefix)
		if err != nil {
			return err
		}
		a.logger.InfoContext(ctx, "rule corpus uploaded", "bucket", store.Bucket(), "objects", len(keys))

		guard, err := a.openCache(ctx)
		if err != nil {
			return err
		}
		dropped := 0
		if guard != nil {
			for _, key := range keys {
				ok, err := guard.Delete(ctx, cache.Namespace, contentKey(prefix, key))
				if err != nil {
					a.logger.WarnContext(ctx, "cache invalidation failed", "key", key, "error", err)
					break
				}
				if ok {
					dropped++
				}
			}
		}

		t := &cli.Table{Columns: []string{"KEY"}}
		for _, key := range keys {
			t.Append(key)
		}
		if err := printResult(cmd, t); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "uploaded %d objects to %s, dropped %d cached entries\n", len(keys), store.Bucket(), dropped)
		return nil
	})
}

func runRulesRemote(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		store, err := a.rulesStore(ctx)
		if err != nil {
			return err
		}
		entries, err := store.List(ctx, a.cfg.Remote.RulesPrefix)
		if err != nil {
			return err
		}
		if outputFormat == string(cli.FormatJSON) {
			return printResult(cmd, entries)
		}

		t := &cli.Table{Columns: []string{"KEY", "SIZE", "MODIFIED"}}
		for _, e := range entries {
			t.Append(e.Key, strconv.FormatInt(e.Size, 10), e.LastModified.Local().Format("2006-01-02 15:04:05"))
		}
		return printResult(cmd, t)
	})
}

func runRulesGenRefs(cmd *cobra.Command, _ []string) error {
	f, err := os.Open(rulesFlags.master)
	if err != nil {
		return cli.NewCommandError(cmd.CommandPath(), err)
	}
	defer f.Close()

	n, err := rules.GenerateReferences(f, rulesFlags.out, rules.DefaultLayout.Extension)
	if err != nil {
		return cli.NewCommandError(cmd.CommandPath(), err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "generated %d reference documents in %s\n", n, rulesFlags.out)
	return nil
}

func loadRule(ctx context.Context, a *app, name string) (*rules.Rule, error) {
	repo, err := a.rules(ctx)
	if err != nil {
		return nil, err
	}
	return repo.Rule(a.ruleName(name))
}

// contentKey strips the rules prefix from a stored key.
func contentKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return strings.TrimPrefix(key, path.Clean(prefix)+"/")
}
