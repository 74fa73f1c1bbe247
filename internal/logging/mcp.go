package logging

import (
	"log/slog"
)

// SetupMCPMode initializes logging for `readyctl mcp`.
//
// stdout carries JSON-RPC exclusively, so records go to the log file only,
// never to stdout or stderr. An empty level means debug.
func SetupMCPMode(level string) (*slog.Logger, func(), error) {
	if level == "" {
		level = "debug"
	}
	cfg := DefaultConfig()
	cfg.Level = level
	cfg.WriteToStderr = false

	logger, cleanup, err := Setup(cfg)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("MCP mode logging initialized",
		slog.String("log_file", cfg.FilePath),
		slog.String("level", cfg.Level))

	return logger, cleanup, nil
}
