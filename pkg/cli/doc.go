/*
Package cli provides command-line helpers shared by the copycheck commands.

Output Formatting:

Command results are printed as text, JSON or CSV. Values implementing
Tabular render as aligned columns in text mode and as records in CSV mode:

	t := &cli.Table{Columns: []string{"NAME", "DESCRIPTION"}}
	t.Append("商品コピーチェック", "薬機法・景表法チェック")
	if err := cli.NewFormatter(cli.FormatText).FormatTo(os.Stdout, t); err != nil {
		return err
	}

Progress Reporting:

Batch commands draw a progress bar of checked rows on stderr:

	progress := cli.NewProgressReporter(os.Stderr)
	progress.Start(int64(len(rows)))
	...
	progress.Finish()

Signal Handling:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()

Errors:

ExitCode maps errors to process exit codes; configuration problems exit
with ExitConfig.
*/
package cli
