// Package preflight is the check-execution-and-aggregation engine behind
// readyctl.
//
// A Plan is an ordered list of categories, each holding probes. The
// Runner executes the plan in a single sequential pass:
//
//   - each probe's MeasureFunc produces a Measurement, or an error when
//     the probe itself could not run (always reported as Warn);
//   - Classify maps the measurement and the probe's Policy to a Severity;
//   - the result is appended to the run's Aggregator and handed to the
//     Observer immediately;
//   - after a FailFast category records a Fail, the remaining categories
//     are skipped.
//
// The decision is Outcome.Ready: no Fail results and no early stop.
// Warnings never block.
//
//	plan, _ := preflight.NewPlan(categories...)
//	out := preflight.NewRunner(preflight.WithObserver(reporter)).Run(ctx, plan)
//	os.Exit(out.ExitCode())
package preflight
