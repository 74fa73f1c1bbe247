package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/Aman-CERP/readyctl/internal/preflight"
)

// Document is the machine-readable form of a run.
type Document struct {
	Ready    bool `json:"ready"`
	ExitCode int  `json:"exit_code"`
	preflight.Outcome
}

// NewDocument wraps an outcome with its decision.
func NewDocument(o preflight.Outcome) Document {
	return Document{Ready: o.Ready(), ExitCode: o.ExitCode(), Outcome: o}
}

// JSON writes a single Document when the run ends.
type JSON struct {
	preflight.NopObserver

	mu  sync.Mutex
	out io.Writer
	err error
}

// NewJSON creates a JSON reporter.
func NewJSON(cfg Config) *JSON {
	return &JSON{out: cfg.Output}
}

// Start implements Reporter.
func (j *JSON) Start(context.Context) error {
	return nil
}

// OnSummary implements preflight.Observer.
func (j *JSON) OnSummary(o preflight.Outcome) {
	j.mu.Lock()
	defer j.mu.Unlock()

	enc := json.NewEncoder(j.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(o)); err != nil {
		j.err = fmt.Errorf("write json report: %w", err)
	}
}

// Stop implements Reporter. It returns the error from writing the document.
func (j *JSON) Stop() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

var _ Reporter = (*JSON)(nil)
