package report

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Aman-CERP/readyctl/internal/preflight"
)

// TUI shows a spinner on the running probe and prints each finished line
// above it, so the terminal keeps the full report when the run ends.
type TUI struct {
	mu      sync.Mutex
	cfg     Config
	model   *runModel
	program *tea.Program
	started bool
	done    chan struct{}
}

// NewTUI creates a TUI reporter.
// Returns an error if the output is not a terminal.
func NewTUI(cfg Config) (*TUI, error) {
	if !IsTTY(cfg.Output) {
		return nil, fmt.Errorf("output is not a TTY")
	}

	return &TUI{
		cfg:   cfg,
		model: newRunModel(useColor(cfg), cfg.Verbose, cfg.OnInterrupt),
		done:  make(chan struct{}),
	}, nil
}

// Start implements Reporter. The program outlives ctx so the summary of
// an interrupted run is still printed.
func (r *TUI) Start(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return nil
	}

	r.program = tea.NewProgram(r.model, tea.WithOutput(r.cfg.Output))
	r.started = true

	go func() {
		defer close(r.done)
		_, _ = r.program.Run()
	}()

	if r.cfg.Title != "" {
		r.program.Send(printMsg(r.model.lines.styles.Label.Render(r.cfg.Title)))
	}
	return nil
}

// OnCategoryStart implements preflight.Observer.
func (r *TUI) OnCategoryStart(c preflight.Category) {
	r.send(categoryStartMsg(c))
}

// OnProbeStart implements preflight.Observer.
func (r *TUI) OnProbeStart(p preflight.Probe) {
	r.send(probeStartMsg(p.Name))
}

// OnProbeResult implements preflight.Observer.
func (r *TUI) OnProbeResult(res preflight.CheckResult) {
	r.send(printMsg(r.model.lines.result(res)))
}

// OnCategoryEnd implements preflight.Observer.
func (r *TUI) OnCategoryEnd(c preflight.Category, s preflight.Summary, worst preflight.Severity) {
	r.send(printMsg(r.model.lines.categoryEnd(c, s, worst)))
}

// OnSummary implements preflight.Observer.
func (r *TUI) OnSummary(o preflight.Outcome) {
	r.send(finishMsg("\n" + r.model.lines.summary(o)))
}

// Stop implements Reporter.
func (r *TUI) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.program == nil {
		return nil
	}

	// The program quits on its own after the summary; give it time to
	// flush before forcing it.
	select {
	case <-r.done:
		return nil
	case <-time.After(2 * time.Second):
	}

	r.program.Quit()
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
	}
	return nil
}

func (r *TUI) send(msg tea.Msg) {
	r.mu.Lock()
	p := r.program
	r.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// Message types for bubbletea
type categoryStartMsg preflight.Category
type probeStartMsg string
type printMsg string
type finishMsg string

// runModel is the bubbletea model for a readiness run.
type runModel struct {
	lines       lines
	spinner     spinner.Model
	category    string
	probe       string
	started     bool
	finished    bool
	interrupted bool
	onInterrupt func()
}

func newRunModel(color, verbose bool, onInterrupt func()) *runModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	if color {
		s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime))
	}

	return &runModel{
		lines:       lines{styles: GetStyles(!color), verbose: verbose},
		spinner:     s,
		onInterrupt: onInterrupt,
	}
}

// Init implements tea.Model.
func (m *runModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m *runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() != "ctrl+c" {
			return m, nil
		}
		if m.interrupted {
			// Second Ctrl+C: stop waiting for the runner.
			return m, tea.Quit
		}
		m.interrupted = true
		if m.onInterrupt != nil {
			m.onInterrupt()
		}
		return m, nil

	case categoryStartMsg:
		c := preflight.Category(msg)
		m.category = c.Title
		m.probe = ""
		header := m.lines.category(c)
		if m.started {
			header = "\n" + header
		}
		m.started = true
		return m, tea.Println(header)

	case probeStartMsg:
		m.probe = string(msg)
		return m, nil

	case printMsg:
		return m, tea.Println(string(msg))

	case finishMsg:
		m.finished = true
		m.probe = ""
		return m, tea.Sequence(tea.Println(string(msg)), tea.Quit)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m *runModel) View() string {
	if m.finished {
		return ""
	}

	status := "starting"
	if m.probe != "" {
		status = m.lines.styles.Label.Render(m.category+":") + " " + m.lines.styles.Active.Render(m.probe)
	}
	view := m.spinner.View() + " " + status
	if m.interrupted {
		view += m.lines.styles.Warn.Render("  (interrupting...)")
	}
	return view + "\n"
}

var _ Reporter = (*TUI)(nil)
