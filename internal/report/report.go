// Package report renders readiness runs for people and machines.
//
// Every reporter is a preflight.Observer, so output streams while the
// runner works: Text writes lines, TUI animates the running probe, and
// JSON emits one document when the run ends.
package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/Aman-CERP/readyctl/internal/preflight"
)

// Format selects a reporter.
type Format string

const (
	// FormatAuto picks TUI on an interactive terminal and Text elsewhere.
	FormatAuto Format = "auto"
	// FormatText streams plain lines, colored on a terminal.
	FormatText Format = "text"
	// FormatTUI animates progress with bubbletea.
	FormatTUI Format = "tui"
	// FormatJSON writes one JSON document at the end of the run.
	FormatJSON Format = "json"
)

// Formats lists the accepted format names.
var Formats = []Format{FormatAuto, FormatText, FormatTUI, FormatJSON}

// ParseFormat parses a --format value.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatAuto, nil
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	names := make([]string, len(Formats))
	for i, known := range Formats {
		names[i] = string(known)
	}
	return "", fmt.Errorf("unknown format %q (use: %s)", s, strings.Join(names, ", "))
}

// Reporter observes a run and renders it.
type Reporter interface {
	preflight.Observer

	// Start prepares the reporter before the run begins.
	Start(ctx context.Context) error

	// Stop flushes output and releases the terminal.
	Stop() error
}

// Config configures a reporter.
type Config struct {
	Output  io.Writer
	Verbose bool
	NoColor bool
	// Title is printed above the first category, e.g. "readyctl 1.2.0 on linux".
	Title string
	// OnInterrupt is called when the user presses Ctrl+C inside the TUI,
	// which swallows the signal.
	OnInterrupt func()
}

// Option modifies Config.
type Option func(*Config)

// WithVerbose shows probe details and durations.
func WithVerbose(verbose bool) Option {
	return func(c *Config) {
		c.Verbose = verbose
	}
}

// WithNoColor disables color output.
func WithNoColor(noColor bool) Option {
	return func(c *Config) {
		c.NoColor = noColor
	}
}

// WithTitle sets the report title.
func WithTitle(title string) Option {
	return func(c *Config) {
		c.Title = title
	}
}

// WithInterrupt sets the Ctrl+C callback used by the TUI.
func WithInterrupt(fn func()) Option {
	return func(c *Config) {
		c.OnInterrupt = fn
	}
}

// NewConfig creates a Config writing to output.
func NewConfig(output io.Writer, opts ...Option) Config {
	cfg := Config{Output: output}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// New creates the reporter for format.
// Auto uses the TUI for interactive terminals and falls back to Text for
// CI environments, pipes and files.
func New(format Format, output io.Writer, opts ...Option) (Reporter, error) {
	cfg := NewConfig(output, opts...)

	switch format {
	case FormatText:
		return NewText(cfg), nil
	case FormatJSON:
		return NewJSON(cfg), nil
	case FormatTUI:
		return NewTUI(cfg)
	case FormatAuto, "":
		if !IsTTY(output) || DetectCI() {
			return NewText(cfg), nil
		}
		tui, err := NewTUI(cfg)
		if err != nil {
			return NewText(cfg), nil
		}
		return tui, nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// IsTTY checks if output is a terminal.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// DetectNoColor checks if the NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// DetectCI checks if running in a CI environment.
func DetectCI() bool {
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS", "BUILDKITE"}
	for _, v := range ciVars {
		if _, exists := os.LookupEnv(v); exists {
			return true
		}
	}
	return false
}

// useColor reports whether cfg's output should be styled.
func useColor(cfg Config) bool {
	return !cfg.NoColor && !DetectNoColor() && IsTTY(cfg.Output)
}
