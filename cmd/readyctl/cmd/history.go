package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	rcerrors "github.com/Aman-CERP/readyctl/internal/errors"
	"github.com/Aman-CERP/readyctl/internal/history"
	"github.com/Aman-CERP/readyctl/internal/output"
	"github.com/Aman-CERP/readyctl/internal/preflight"
	"github.com/Aman-CERP/readyctl/internal/probe"
	"github.com/Aman-CERP/readyctl/internal/report"
)

// now is replaced in tests so relative times are stable.
var now = time.Now

func newHistoryCmd() *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past readiness runs",
		Long: `List readiness runs recorded in the history database, newest first.

Runs are recorded by 'readyctl check' unless --no-history is given or
history.enabled is false. The newest history.retain runs are kept.`,
		Example: `  # Last 20 runs
  readyctl history

  # Last 5 runs as JSON
  readyctl history --limit 5 --json

  # Results of run 12
  readyctl history show 12`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistoryList(cmd, limit, jsonOutput)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	cmd.AddCommand(newHistoryShowCmd())
	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	var (
		jsonOutput bool
		verbose    bool
		noColor    bool
	)

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the stored results of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryShow(cmd, args[0], jsonOutput, verbose, noColor)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show probe details and durations")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	return cmd
}

func openHistory() (*history.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return history.Open(cfg.HistoryPath())
}

func runHistoryList(cmd *cobra.Command, limit int, jsonOutput bool) error {
	if limit < 1 {
		return rcerrors.ValidationError(fmt.Sprintf("--limit must be at least 1, got %d", limit), nil)
	}

	store, err := openHistory()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	runs, err := store.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		if runs == nil {
			runs = []history.Run{}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	out := output.New(cmd.OutOrStdout())
	if len(runs) == 0 {
		out.Status("", "No runs recorded yet. Run 'readyctl check' first.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			humanize.RelTime(r.StartedAt, now(), "ago", "from now"),
			verdict(r.Ready),
			strconv.Itoa(r.Summary.Passed),
			strconv.Itoa(r.Summary.Warned),
			strconv.Itoa(r.Summary.Failed),
			runNote(r),
		})
	}
	out.Table([]string{"ID", "STARTED", "VERDICT", "PASS", "WARN", "FAIL", "NOTE"}, rows)
	return nil
}

func runHistoryShow(cmd *cobra.Command, arg string, jsonOutput, verbose, noColor bool) error {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id < 1 {
		return rcerrors.ValidationError(fmt.Sprintf("invalid run id %q", arg), err).
			WithSuggestion("list run ids with 'readyctl history'")
	}

	store, err := openHistory()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	run, results, err := store.Get(cmd.Context(), id)
	if err != nil {
		return err
	}

	outcome := preflight.Outcome{
		Results:     results,
		Summary:     preflight.Summarize(results),
		AbortedBy:   run.AbortedBy,
		Skipped:     run.Skipped,
		Interrupted: run.Interrupted,
		StartedAt:   run.StartedAt,
		Duration:    run.Duration,
	}

	if jsonOutput {
		j := report.NewJSON(report.NewConfig(cmd.OutOrStdout()))
		report.Replay(j, outcome, probe.Titles)
		return j.Stop()
	}

	title := fmt.Sprintf("Run %d, %s", run.ID, run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	if run.Host != "" {
		title += " on " + run.Host
	}
	if run.Version != "" {
		title += " (readyctl " + run.Version + ")"
	}
	text := report.NewText(report.NewConfig(cmd.OutOrStdout(),
		report.WithTitle(title),
		report.WithVerbose(verbose),
		report.WithNoColor(noColor),
	))
	report.Replay(text, outcome, probe.Titles)
	return nil
}

func verdict(ready bool) string {
	if ready {
		return "ready"
	}
	return "not ready"
}

func runNote(r history.Run) string {
	var notes []string
	if r.AbortedBy != "" {
		notes = append(notes, "aborted by "+string(r.AbortedBy))
	}
	if r.Interrupted {
		notes = append(notes, "interrupted")
	}
	return strings.Join(notes, ", ")
}
