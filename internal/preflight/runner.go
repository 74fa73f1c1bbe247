package preflight

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// DefaultProbeTimeout bounds a single probe when no timeout is configured.
const DefaultProbeTimeout = 30 * time.Second

// Outcome is the result of one run.
type Outcome struct {
	Results []CheckResult `json:"results"`
	Summary Summary       `json:"summary"`
	// AbortedBy is the fail-fast category that halted the run, if any.
	AbortedBy CategoryID `json:"aborted_by,omitempty"`
	// Skipped lists categories that never ran because of an abort or
	// interruption. Skipped categories have no results.
	Skipped     []CategoryID  `json:"skipped,omitempty"`
	Interrupted bool          `json:"interrupted,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration_ns"`
}

// Ready reports the go/no-go decision: no failures, and the run was
// neither aborted nor interrupted.
func (o Outcome) Ready() bool {
	return o.Summary.Ready() && o.AbortedBy == "" && !o.Interrupted
}

// ExitCode returns the process exit status for the outcome.
func (o Outcome) ExitCode() int {
	if o.Ready() {
		return 0
	}
	return 1
}

// Runner executes a Plan sequentially.
type Runner struct {
	observer     Observer
	logger       *slog.Logger
	probeTimeout time.Duration
	now          func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithObserver sets the observer notified of run progress.
func WithObserver(o Observer) Option {
	return func(r *Runner) {
		if o != nil {
			r.observer = o
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithProbeTimeout bounds each probe's measurement.
func WithProbeTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.probeTimeout = d
		}
	}
}

// WithClock overrides the time source (for tests).
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRunner creates a Runner with the given options.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		observer:     NopObserver{},
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		probeTimeout: DefaultProbeTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes every category of plan in order and returns the outcome.
// Probe errors never abort the run; only a Fail inside a fail-fast
// category or cancellation of ctx stops it early.
func (r *Runner) Run(ctx context.Context, plan *Plan) Outcome {
	started := r.now()
	agg := NewAggregator()
	out := Outcome{StartedAt: started}

	categories := plan.Categories()
	r.logger.Info("readiness run started",
		slog.Int("categories", len(categories)),
		slog.Int("probes", plan.ProbeCount()))

run:
	for i, c := range categories {
		if ctx.Err() != nil {
			out.Interrupted = true
			out.Skipped = remaining(categories[i:])
			break
		}

		r.observer.OnCategoryStart(c)
		for _, p := range c.Probes {
			r.observer.OnProbeStart(p)
			res, interrupted := r.runProbe(ctx, p)
			if interrupted {
				r.logger.Warn("readiness run interrupted", slog.String("probe", p.Name))
				out.Interrupted = true
				out.Skipped = remaining(categories[i+1:])
				break run
			}
			agg.Record(res)
			r.observer.OnProbeResult(res)
		}

		catSummary := agg.CategorySummary(c.ID)
		worst, _ := agg.CategorySeverity(c.ID)
		r.observer.OnCategoryEnd(c, catSummary, worst)

		if c.FailFast && catSummary.Failed > 0 {
			out.AbortedBy = c.ID
			out.Skipped = remaining(categories[i+1:])
			r.logger.Warn("fail-fast category failed, aborting run",
				slog.String("category", string(c.ID)),
				slog.Int("skipped", len(out.Skipped)))
			break
		}
	}

	out.Results = agg.Results()
	out.Summary = agg.Summary()
	out.Duration = r.now().Sub(started)

	r.logger.Info("readiness run finished",
		slog.Bool("ready", out.Ready()),
		slog.Int("passed", out.Summary.Passed),
		slog.Int("warned", out.Summary.Warned),
		slog.Int("failed", out.Summary.Failed),
		slog.Duration("duration", out.Duration))

	r.observer.OnSummary(out)
	return out
}

// runProbe measures and classifies one probe. interrupted is true when
// the parent context was cancelled while the probe ran; no result is
// produced in that case.
func (r *Runner) runProbe(ctx context.Context, p Probe) (res CheckResult, interrupted bool) {
	start := r.now()

	probeCtx, cancel := context.WithTimeout(ctx, r.probeTimeout)
	defer cancel()

	m, err := measure(probeCtx, p)
	if ctx.Err() != nil {
		return CheckResult{}, true
	}

	res = CheckResult{
		Probe:    p.Name,
		Category: p.Category,
		Duration: r.now().Sub(start),
	}

	if err != nil {
		pe := asProbeError(p.Name, err)
		res.Severity = SeverityWarn
		res.Message = "check could not run"
		switch {
		case probeCtx.Err() != nil:
			res.Message = fmt.Sprintf("check timed out after %s", r.probeTimeout)
		case errors.Is(err, context.DeadlineExceeded):
			res.Message = "check timed out"
		}
		res.Detail = pe.Err.Error()
		res.Hint = p.Policy.Hint
		r.logger.Warn("probe error",
			slog.String("probe", p.Name),
			slog.String("error", pe.Err.Error()))
		return res, false
	}

	res.Severity, res.Message = Classify(m, p.Policy)
	if res.Severity != SeverityPass {
		res.Hint = p.Policy.Hint
	}

	r.logger.Debug("probe completed",
		slog.String("probe", p.Name),
		slog.String("category", string(p.Category)),
		slog.String("severity", res.Severity.String()),
		slog.Duration("duration", res.Duration))
	return res, false
}

// measure invokes the probe, converting a panic into a ProbeError.
func measure(ctx context.Context, p Probe) (m Measurement, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &ProbeError{Probe: p.Name, Err: fmt.Errorf("panic: %v", rec)}
		}
	}()
	return p.Measure(ctx)
}

func remaining(categories []Category) []CategoryID {
	if len(categories) == 0 {
		return nil
	}
	ids := make([]CategoryID, len(categories))
	for i, c := range categories {
		ids[i] = c.ID
	}
	return ids
}
