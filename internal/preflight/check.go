package preflight

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Severity is the classification outcome of a single probe.
// The zero value is SeverityPass. Severities are totally ordered:
// SeverityFail > SeverityWarn > SeverityPass.
type Severity int

const (
	// SeverityPass indicates the check passed.
	SeverityPass Severity = iota
	// SeverityWarn indicates a non-blocking problem.
	SeverityWarn
	// SeverityFail indicates a blocking problem.
	SeverityFail
)

// String returns the string representation of a Severity.
func (s Severity) String() string {
	switch s {
	case SeverityPass:
		return "PASS"
	case SeverityWarn:
		return "WARN"
	case SeverityFail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// MarshalJSON encodes the severity as a lowercase string.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.ToLower(s.String()))
}

// UnmarshalJSON decodes a lowercase severity string.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseSeverity(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSeverity parses "pass", "warn" or "fail" (case-insensitive).
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pass":
		return SeverityPass, nil
	case "warn":
		return SeverityWarn, nil
	case "fail":
		return SeverityFail, nil
	default:
		return SeverityPass, fmt.Errorf("unknown severity %q", s)
	}
}

// Worst returns the more severe of a and b.
func Worst(a, b Severity) Severity {
	if b > a {
		return b
	}
	return a
}

// CheckResult holds the result of a single probe invocation.
// It is created once by the Runner and never modified afterwards.
type CheckResult struct {
	Probe    string        `json:"probe"`
	Category CategoryID    `json:"category"`
	Severity Severity      `json:"severity"`
	Message  string        `json:"message"`
	Detail   string        `json:"detail,omitempty"`
	Hint     string        `json:"hint,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// IsBlocking returns true if this result prevents a ready decision.
func (r CheckResult) IsBlocking() bool {
	return r.Severity == SeverityFail
}
