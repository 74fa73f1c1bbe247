package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/readyctl/internal/logging"
)

func newLogsCmd() *cobra.Command {
	var (
		lines    int
		pathOnly bool
		file     string
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the end of the diagnostic log",
		Long: `Print the last lines of the readyctl log file.

Logs are written only when --debug is given or logging.level is set.`,
		Example: `  # Last 50 lines
  readyctl logs

  # Where is the log?
  readyctl logs --path`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := logging.FindLogFile(file)
			if err != nil {
				return err
			}
			if pathOnly {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), path)
				return err
			}
			return tailFile(cmd, path, lines)
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of lines to print")
	cmd.Flags().BoolVar(&pathOnly, "path", false, "Print the log file path only")
	cmd.Flags().StringVar(&file, "file", "", "Read this log file instead of the default")

	return cmd
}

func tailFile(cmd *cobra.Command, path string, n int) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if n < 1 {
		n = 1
	}
	ring := make([]string, 0, n)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if len(ring) == n {
			ring = ring[1:]
		}
		ring = append(ring, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read log file: %w", err)
	}

	w := cmd.OutOrStdout()
	for _, line := range ring {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
