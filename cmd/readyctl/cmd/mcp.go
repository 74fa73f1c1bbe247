package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/readyctl/internal/config"
	"github.com/Aman-CERP/readyctl/internal/history"
	"github.com/Aman-CERP/readyctl/internal/logging"
	"github.com/Aman-CERP/readyctl/internal/mcp"
	"github.com/Aman-CERP/readyctl/internal/preflight"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve readiness checks to AI assistants over MCP (stdio)",
		Long: `Run a Model Context Protocol server on stdin/stdout.

Tools:
  check_readiness    run the checks, optionally for some categories
  readiness_history  list recent runs

stdout carries JSON-RPC only; logs go to ~/.readyctl/logs/readyctl.log.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMCP(cmd)
		},
	}
}

func runMCP(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	level := cfg.Logging.Level
	if debugMode {
		level = "debug"
	}
	logger, cleanup, err := logging.SetupMCPMode(level)
	if err != nil {
		logger = logging.Discard()
		cleanup = func() {}
	}
	defer cleanup()

	opts := []mcp.Option{
		mcp.WithLogger(logger),
		mcp.WithLockDir(config.StateDir()),
	}
	if cfg.History.Enabled {
		store, err := history.Open(cfg.HistoryPath())
		if err != nil {
			logger.Warn("history unavailable, serving without it", slog.String("error", err.Error()))
		} else {
			defer func() { _ = store.Close() }()
			opts = append(opts, mcp.WithHistory(store))
		}
	}

	srv, err := mcp.NewServer(cfg, func() (*preflight.Plan, error) { return planFor(cfg) }, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Serve(ctx)
}
