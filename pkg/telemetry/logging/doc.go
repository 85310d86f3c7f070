// Package logging builds the structured loggers used across copycheck.
//
// Loggers are plain *slog.Logger values. The handler chain adds the run ID,
// rule name, row number and input source stored in a context, and masks
// credentials (API keys, bearer tokens, passwords) before they are written.
//
//	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging, os.Stderr))
//	slog.SetDefault(logger)
//
//	ctx = logging.WithRunID(ctx, runID)
//	slog.InfoContext(ctx, "batch started", "rows", n) // includes run_id
package logging
