// Package cmd provides the CLI commands for readyctl.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/readyctl/internal/config"
	rcerrors "github.com/Aman-CERP/readyctl/internal/errors"
	"github.com/Aman-CERP/readyctl/internal/logging"
	"github.com/Aman-CERP/readyctl/internal/preflight"
	"github.com/Aman-CERP/readyctl/internal/probe"
	"github.com/Aman-CERP/readyctl/internal/profiling"
	"github.com/Aman-CERP/readyctl/pkg/version"
)

// Persistent flags
var (
	configPath  string
	debugMode   bool
	profileOpts profiling.Options
	profiler    *profiling.Session
)

// planFor builds the readiness plan for cfg against the real host.
// Tests replace it with a fixed plan.
var planFor = func(cfg *config.Config) (*preflight.Plan, error) {
	return probe.DefaultPlan(cfg, probe.DefaultEnv())
}

// NewRootCmd creates the root command for readyctl CLI.
// Running it without a subcommand performs the readiness check.
func NewRootCmd() *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "readyctl",
		Short: "Check whether this host is ready to run containerized workloads",
		Long: `readyctl inspects the local host before a container deployment and
reports a go/no-go decision.

It checks the container runtime and compose, disk, memory, CPU and open
file limits, required tooling, network reachability and local ports, and
filesystem and runtime permissions. Every check is PASS, WARN or FAIL;
the host is READY when nothing fails.

Running 'readyctl' with no subcommand is the same as 'readyctl check'.`,
		Version:       version.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, opts)
		},
	}

	cmd.SetVersionTemplate("readyctl version {{.Version}}\n")
	addCheckFlags(cmd, opts)

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Use this config file instead of .readyctl.yaml")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.readyctl/logs/")

	cmd.PersistentFlags().StringVar(&profileOpts.CPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&profileOpts.Heap, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&profileOpts.Trace, "profile-trace", "", "Write execution trace to file")
	for _, name := range []string{"profile-cpu", "profile-mem", "profile-trace"} {
		_ = cmd.PersistentFlags().MarkHidden(name)
	}

	cmd.PersistentPreRunE = startProfiling

	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newMCPCmd())
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command and prints any error with its hint and
// code. A not-ready verdict has already been reported and is not
// printed again.
func Execute() error {
	err := NewRootCmd().Execute()
	if perr := stopProfiling(); perr != nil && err == nil {
		err = perr
	}
	if err != nil && rcerrors.GetCode(err) != rcerrors.ErrCodeNotReady {
		fmt.Fprint(os.Stderr, rcerrors.FormatForCLI(err))
	}
	return err
}

func startProfiling(_ *cobra.Command, _ []string) error {
	if !profileOpts.Enabled() || profiler != nil {
		return nil
	}
	s, err := profiling.Start(profileOpts)
	if err != nil {
		return err
	}
	profiler = s
	return nil
}

func stopProfiling() error {
	if profiler == nil {
		return nil
	}
	err := profiler.Stop()
	profiler = nil
	if err != nil {
		return fmt.Errorf("failed to write profiles: %w", err)
	}
	return nil
}

// loadConfig loads the layered configuration for the working directory.
func loadConfig() (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	cfg, err := config.Load(wd, configPath)
	if err != nil {
		return nil, rcerrors.New(rcerrors.ErrCodeConfigInvalid, err.Error(), err).
			WithSuggestion("fix the file, or regenerate it with 'readyctl config init --force'")
	}
	return cfg, nil
}

// setupLogging enables file logging when --debug is set or the config
// names a level. Otherwise logs are discarded so the report owns the
// terminal.
func setupLogging(cfg *config.Config, stderr io.Writer) (*slog.Logger, func()) {
	logCfg, ok := logging.Resolve(debugMode, cfg.Logging.Level)
	if !ok {
		return logging.Discard(), func() {}
	}

	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "warning: logging disabled: %v\n", err)
		return logging.Discard(), func() {}
	}
	prev := slog.Default()
	slog.SetDefault(logger)
	logger.Info("Logging enabled",
		slog.String("log_file", logCfg.FilePath),
		slog.String("level", logCfg.Level),
		slog.String("version", version.Version))
	return logger, func() {
		slog.SetDefault(prev)
		cleanup()
	}
}
