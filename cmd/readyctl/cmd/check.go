package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/readyctl/internal/config"
	rcerrors "github.com/Aman-CERP/readyctl/internal/errors"
	"github.com/Aman-CERP/readyctl/internal/history"
	"github.com/Aman-CERP/readyctl/internal/output"
	"github.com/Aman-CERP/readyctl/internal/preflight"
	"github.com/Aman-CERP/readyctl/internal/probe"
	"github.com/Aman-CERP/readyctl/internal/report"
	"github.com/Aman-CERP/readyctl/internal/runlock"
	"github.com/Aman-CERP/readyctl/pkg/version"
)

type checkOptions struct {
	categories []string
	format     string
	verbose    bool
	noColor    bool
	noHistory  bool
}

func newCheckCmd() *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:     "check",
		Aliases: []string{"doctor"},
		Short:   "Run the readiness checks",
		Long: `Run the readiness checks category by category and print a go/no-go decision.

Categories, in run order:
  runtime        container runtime installed and daemon responding (fail-fast)
  orchestration  compose installed and recent enough (fail-fast)
  resources      free disk, available memory, CPU cores, open file limit
  tools          required and optional command-line tools
  network        outbound reachability and free local ports (never fails)
  permissions    scratch directory writable, runtime usable without sudo

A failure in a fail-fast category skips every later category.
Exit status is 0 when the host is READY and 1 otherwise.`,
		Example: `  # Check everything
  readyctl check

  # Only resources and network, with details
  readyctl check --category resources --category network --verbose

  # Machine-readable output for CI
  readyctl check --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, opts)
		},
	}

	addCheckFlags(cmd, opts)
	return cmd
}

func addCheckFlags(cmd *cobra.Command, opts *checkOptions) {
	f := cmd.Flags()
	f.StringSliceVarP(&opts.categories, "category", "c", nil, "Only run these categories (repeatable or comma-separated)")
	f.StringVarP(&opts.format, "format", "f", string(report.FormatAuto), "Output format: auto, text, tui, json")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Show probe details and durations")
	f.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	f.BoolVar(&opts.noHistory, "no-history", false, "Do not record this run in the history database")
}

func runCheck(cmd *cobra.Command, opts *checkOptions) error {
	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return rcerrors.New(rcerrors.ErrCodeUnknownFormat, err.Error(), nil)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, cleanup := setupLogging(cfg, cmd.ErrOrStderr())
	defer cleanup()

	timeout, err := cfg.ProbeTimeout()
	if err != nil {
		return rcerrors.ConfigError(err.Error(), err)
	}

	plan, err := planFor(cfg)
	if err != nil {
		return rcerrors.ConfigError(err.Error(), err)
	}
	categories := opts.categories
	if len(categories) == 0 {
		categories = cfg.Run.Categories
	}
	plan, err = probe.Select(plan, categories)
	if err != nil {
		return err
	}

	lock := runlock.New(config.StateDir())
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	// Cancel the run on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// The TUI reads Ctrl+C as a key press, so it cancels the run directly.
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	reporter, err := report.New(format, cmd.OutOrStdout(),
		report.WithVerbose(opts.verbose),
		report.WithNoColor(opts.noColor),
		report.WithTitle(fmt.Sprintf("readyctl %s on %s/%s", version.Version, runtime.GOOS, runtime.GOARCH)),
		report.WithInterrupt(cancel),
	)
	if err != nil {
		return err
	}
	if err := reporter.Start(runCtx); err != nil {
		return fmt.Errorf("failed to start reporter: %w", err)
	}

	logger.Info("check started",
		slog.String("categories", strings.Join(categoryNames(plan), ",")),
		slog.Int("probes", plan.ProbeCount()))

	out := preflight.NewRunner(
		preflight.WithObserver(reporter),
		preflight.WithLogger(logger),
		preflight.WithProbeTimeout(timeout),
	).Run(runCtx, plan)

	reportErr := reporter.Stop()

	logger.Info("check completed",
		slog.Bool("ready", out.Ready()),
		slog.Int("passed", out.Summary.Passed),
		slog.Int("warned", out.Summary.Warned),
		slog.Int("failed", out.Summary.Failed),
		slog.Duration("duration", out.Duration))

	if cfg.History.Enabled && !opts.noHistory {
		recordRun(cmd, cfg, out, logger)
	}

	if reportErr != nil {
		return reportErr
	}
	if !out.Ready() {
		return rcerrors.New(rcerrors.ErrCodeNotReady, "host is not ready", nil)
	}
	return nil
}

// recordRun saves the outcome and prunes old runs. Failures are reported
// on stderr but never change the verdict.
func recordRun(cmd *cobra.Command, cfg *config.Config, out preflight.Outcome, logger *slog.Logger) {
	warn := output.New(cmd.ErrOrStderr())

	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		logger.Warn("history unavailable", slog.String("error", err.Error()))
		warn.Warningf("run not recorded: %v", err)
		return
	}
	defer func() { _ = store.Close() }()

	host, _ := os.Hostname()
	id, err := store.Save(cmd.Context(), out, history.Meta{Host: host, Version: version.Version})
	if err != nil {
		logger.Warn("failed to record run", slog.String("error", err.Error()))
		warn.Warningf("run not recorded: %v", err)
		return
	}
	logger.Debug("run recorded", slog.Int64("run_id", id), slog.String("path", store.Path()))

	if removed, err := store.Prune(cmd.Context(), cfg.History.Retain); err != nil {
		logger.Warn("failed to prune history", slog.String("error", err.Error()))
	} else if removed > 0 {
		logger.Debug("history pruned", slog.Int64("removed", removed))
	}
}

func categoryNames(plan *preflight.Plan) []string {
	ids := plan.IDs()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}
	return names
}
