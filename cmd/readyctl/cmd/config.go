package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/readyctl/configs"
	"github.com/Aman-CERP/readyctl/internal/config"
	rcerrors "github.com/Aman-CERP/readyctl/internal/errors"
	"github.com/Aman-CERP/readyctl/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage readyctl configuration.

Configuration precedence (lowest to highest):
  1. Built-in defaults
  2. User config (~/.config/readyctl/config.yaml)
  3. Project config (.readyctl.yaml), or the file given with --config
  4. Environment variables (READYCTL_*)`,
		Example: `  # Create user config from template
  readyctl config init

  # Create .readyctl.yaml in the current directory
  readyctl config init --project

  # Show effective configuration
  readyctl config show`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		force   bool
		project bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented configuration file",
		Long: `Write a commented configuration file with every default spelled out.

By default the file is the user config (~/.config/readyctl/config.yaml,
or $XDG_CONFIG_HOME/readyctl/config.yaml). With --project it is
.readyctl.yaml in the current directory. An existing file is only
replaced with --force, and a timestamped backup is kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, force, project)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file (keeps a backup)")
	cmd.Flags().BoolVar(&project, "project", false, "Write .readyctl.yaml in the current directory")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Long:  `Show the configuration after merging defaults, config files and environment variables.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print configuration file paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "user:    %s\n", config.GetUserConfigPath())
			wd, _ := os.Getwd()
			if p := config.ProjectConfigPath(wd); p != "" {
				fmt.Fprintf(out, "project: %s\n", p)
			}
			if configPath != "" {
				fmt.Fprintf(out, "explicit: %s\n", configPath)
			}
			fmt.Fprintf(out, "state:   %s\n", config.StateDir())
			return nil
		},
	}
}

func runConfigInit(cmd *cobra.Command, force, project bool) error {
	out := output.New(cmd.OutOrStdout())

	target := config.GetUserConfigPath()
	if project {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		target = filepath.Join(wd, ".readyctl.yaml")
	}

	var backupPath string
	if _, err := os.Stat(target); err == nil {
		if !force {
			return rcerrors.New(rcerrors.ErrCodeConfigExists, "configuration already exists at "+target, nil).
				WithDetail("path", target).
				WithSuggestion("use --force to overwrite it (a backup is kept)")
		}
		backupPath, err = config.BackupFile(target)
		if err != nil {
			return fmt.Errorf("failed to backup config: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(target, []byte(configs.ConfigTemplate), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out.Successf("Wrote configuration to %s", target)
	if backupPath != "" {
		out.Statusf("", "Backup: %s", backupPath)
	}
	out.Status("", "Edit thresholds and targets, then run 'readyctl config show' to verify.")
	return nil
}

func runConfigShow(cmd *cobra.Command, jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}
