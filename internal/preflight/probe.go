package preflight

import (
	"context"
	"errors"
	"fmt"
)

// CategoryID identifies a category of probes within a Plan.
type CategoryID string

// MeasureFunc performs the host introspection for a probe.
// A non-nil error means the probe could not execute at all; it is
// reported as a Warn result, never as a Fail.
type MeasureFunc func(ctx context.Context) (Measurement, error)

// Probe is a single atomic test of one environmental fact.
// Probes must not depend on the side effects of other probes.
type Probe struct {
	Name     string
	Category CategoryID
	Policy   Policy
	Measure  MeasureFunc
}

// Rule selects how the Classifier treats a measurement.
type Rule int

const (
	// RuleRequired fails when the measured thing is absent or denied.
	RuleRequired Rule = iota
	// RuleOptional warns when the measured thing is absent.
	RuleOptional
	// RuleBestEffort warns on a negative observation and never fails.
	// Connectivity probes use it.
	RuleBestEffort
	// RuleThreshold compares a quantity or version with Required and
	// Recommended minimums. A missing value fails.
	RuleThreshold
)

// String returns the rule name.
func (r Rule) String() string {
	switch r {
	case RuleRequired:
		return "required"
	case RuleOptional:
		return "optional"
	case RuleBestEffort:
		return "best-effort"
	case RuleThreshold:
		return "threshold"
	default:
		return "unknown"
	}
}

// Policy is the threshold policy applied to a probe's measurement.
type Policy struct {
	Rule Rule

	// Required and Recommended are minimums for quantity measurements.
	// A zero Recommended defaults to Required.
	Required    float64
	Recommended float64

	// RequiredVersion and RecommendedVersion are minimums for version
	// measurements. An empty RecommendedVersion defaults to RequiredVersion.
	RequiredVersion    string
	RecommendedVersion string

	// Hint is a remediation hint shown for Warn and Fail results.
	Hint string
}

// ProbeError reports that a probe could not perform its measurement.
type ProbeError struct {
	Probe string
	Err   error
}

// Error implements the error interface.
func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s: %v", e.Probe, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ProbeError) Unwrap() error {
	return e.Err
}

// ErrUnsupported is returned by probes whose measurement is not available
// on the current operating system.
var ErrUnsupported = errors.New("not supported on this platform")

// asProbeError normalizes any measurement error into a *ProbeError.
func asProbeError(name string, err error) *ProbeError {
	var pe *ProbeError
	if errors.As(err, &pe) {
		return pe
	}
	return &ProbeError{Probe: name, Err: err}
}
