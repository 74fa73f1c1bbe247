package preflight

import (
	"fmt"
	"math"

	"github.com/hashicorp/go-version"
)

// Classify maps a measurement to a severity and message using policy.
// It is pure: the same inputs always produce the same outputs and the
// host is never consulted.
func Classify(m Measurement, p Policy) (Severity, string) {
	switch p.Rule {
	case RuleRequired:
		return classifyPresence(m, SeverityFail)
	case RuleOptional, RuleBestEffort:
		return classifyPresence(m, SeverityWarn)
	case RuleThreshold:
		if !m.Present {
			return SeverityFail, describe(m)
		}
		switch m.Kind {
		case KindQuantity:
			return classifyQuantity(m, p)
		case KindVersion:
			return classifyVersion(m, p)
		default:
			return SeverityWarn, fmt.Sprintf("cannot compare %s measurement against a threshold", m.Kind)
		}
	default:
		return SeverityWarn, fmt.Sprintf("unknown classification rule %d", p.Rule)
	}
}

func classifyPresence(m Measurement, absent Severity) (Severity, string) {
	if m.Present {
		return SeverityPass, describe(m)
	}
	return absent, describe(m)
}

func classifyQuantity(m Measurement, p Policy) (Severity, string) {
	if math.IsNaN(m.Value) || math.IsInf(m.Value, 0) {
		return SeverityWarn, "invalid measurement"
	}

	required := p.Required
	recommended := p.Recommended
	if recommended == 0 {
		recommended = required
	}

	value := describe(m)
	switch {
	case m.Value < required:
		return SeverityFail, fmt.Sprintf("%s, below required %s",
			value, FormatQuantity(required, m.Unit))
	case m.Value < recommended:
		return SeverityWarn, fmt.Sprintf("%s, below recommended %s (required %s)",
			value, FormatQuantity(recommended, m.Unit), FormatQuantity(required, m.Unit))
	default:
		return SeverityPass, fmt.Sprintf("%s (required %s, recommended %s)",
			value, FormatQuantity(required, m.Unit), FormatQuantity(recommended, m.Unit))
	}
}

func classifyVersion(m Measurement, p Policy) (Severity, string) {
	if p.RequiredVersion == "" && p.RecommendedVersion == "" {
		return SeverityPass, describe(m)
	}

	got, err := version.NewVersion(m.Version)
	if err != nil {
		return SeverityWarn, fmt.Sprintf("unrecognized version %q", m.Version)
	}
	got = got.Core()

	requiredStr := p.RequiredVersion
	recommendedStr := p.RecommendedVersion
	if recommendedStr == "" {
		recommendedStr = requiredStr
	}
	if requiredStr == "" {
		requiredStr = recommendedStr
	}

	required, err := version.NewVersion(requiredStr)
	if err != nil {
		return SeverityWarn, fmt.Sprintf("invalid required version %q", requiredStr)
	}
	recommended, err := version.NewVersion(recommendedStr)
	if err != nil {
		return SeverityWarn, fmt.Sprintf("invalid recommended version %q", recommendedStr)
	}

	value := describe(m)
	switch {
	case got.LessThan(required):
		return SeverityFail, fmt.Sprintf("%s, below required %s", value, required)
	case got.LessThan(recommended):
		return SeverityWarn, fmt.Sprintf("%s, below recommended %s (required %s)", value, recommended, required)
	default:
		return SeverityPass, fmt.Sprintf("%s (required %s, recommended %s)", value, required, recommended)
	}
}

// describe renders the measurement and its note as one phrase.
func describe(m Measurement) string {
	if m.Kind == KindPresence {
		if m.Note != "" {
			return m.Note
		}
		return m.String()
	}
	if m.Note == "" {
		return m.String()
	}
	return m.String() + " " + m.Note
}
