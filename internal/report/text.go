package report

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/Aman-CERP/readyctl/internal/preflight"
)

// Text streams the report line by line. It is the reporter for CI and pipes.
type Text struct {
	mu     sync.Mutex
	out    io.Writer
	title  string
	lines  lines
	opened bool
}

// NewText creates a text reporter.
func NewText(cfg Config) *Text {
	return &Text{
		out:   cfg.Output,
		title: cfg.Title,
		lines: lines{styles: GetStyles(!useColor(cfg)), verbose: cfg.Verbose},
	}
}

// Start implements Reporter.
func (t *Text) Start(context.Context) error {
	return nil
}

// OnCategoryStart implements preflight.Observer.
func (t *Text) OnCategoryStart(c preflight.Category) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.opened && t.title != "" {
		t.println(t.lines.styles.Label.Render(t.title))
	}
	if t.opened || t.title != "" {
		t.println("")
	}
	t.opened = true
	t.println(t.lines.category(c))
}

// OnProbeStart implements preflight.Observer.
func (t *Text) OnProbeStart(preflight.Probe) {}

// OnProbeResult implements preflight.Observer.
func (t *Text) OnProbeResult(r preflight.CheckResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.println(t.lines.result(r))
}

// OnCategoryEnd implements preflight.Observer.
func (t *Text) OnCategoryEnd(c preflight.Category, s preflight.Summary, worst preflight.Severity) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.println(t.lines.categoryEnd(c, s, worst))
}

// OnSummary implements preflight.Observer.
func (t *Text) OnSummary(o preflight.Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.println("")
	t.println(t.lines.summary(o))
}

// Stop implements Reporter.
func (t *Text) Stop() error {
	return nil
}

func (t *Text) println(s string) {
	_, _ = fmt.Fprintln(t.out, s)
}

var _ Reporter = (*Text)(nil)
