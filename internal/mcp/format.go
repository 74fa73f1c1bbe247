package mcp

import (
	"fmt"
	"strings"
	"time"

	"github.com/Aman-CERP/readyctl/internal/history"
	"github.com/Aman-CERP/readyctl/internal/preflight"
)

// ToCheckOutput converts a run outcome to the tool output schema.
func ToCheckOutput(out preflight.Outcome, runID int64) CheckOutput {
	o := CheckOutput{
		Ready:       out.Ready(),
		ExitCode:    out.ExitCode(),
		Summary:     toSummary(out.Summary),
		AbortedBy:   string(out.AbortedBy),
		Interrupted: out.Interrupted,
		RunID:       runID,
		DurationMS:  out.Duration.Milliseconds(),
		Results:     make([]ResultOutput, 0, len(out.Results)),
	}
	for _, id := range out.Skipped {
		o.Skipped = append(o.Skipped, string(id))
	}
	for _, r := range out.Results {
		o.Results = append(o.Results, ResultOutput{
			Probe:      r.Probe,
			Category:   string(r.Category),
			Severity:   severityName(r.Severity),
			Message:    r.Message,
			Detail:     r.Detail,
			Hint:       r.Hint,
			DurationMS: r.Duration.Milliseconds(),
		})
	}
	return o
}

// ToHistoryOutput converts stored runs to the tool output schema.
func ToHistoryOutput(runs []history.Run) HistoryOutput {
	o := HistoryOutput{Runs: make([]RunOutput, 0, len(runs))}
	for _, r := range runs {
		o.Runs = append(o.Runs, RunOutput{
			ID:          r.ID,
			StartedAt:   r.StartedAt.UTC().Format(time.RFC3339),
			Ready:       r.Ready,
			Summary:     toSummary(r.Summary),
			AbortedBy:   string(r.AbortedBy),
			Interrupted: r.Interrupted,
			Host:        r.Host,
			DurationMS:  r.Duration.Milliseconds(),
		})
	}
	return o
}

func toSummary(s preflight.Summary) SummaryOutput {
	return SummaryOutput{Total: s.Total, Passed: s.Passed, Warned: s.Warned, Failed: s.Failed}
}

// severityName is the lowercase wire name used in tool output.
func severityName(s preflight.Severity) string {
	return strings.ToLower(s.String())
}

// FormatCheck renders a check outcome as markdown for the tool's text content.
func FormatCheck(o CheckOutput) string {
	var sb strings.Builder

	verdict := "NOT READY"
	if o.Ready {
		verdict = "READY"
	}
	sb.WriteString(fmt.Sprintf("## Readiness: %s\n\n", verdict))
	sb.WriteString(fmt.Sprintf("%d checks: %d passed, %d warned, %d failed\n",
		o.Summary.Total, o.Summary.Passed, o.Summary.Warned, o.Summary.Failed))
	if o.AbortedBy != "" {
		sb.WriteString(fmt.Sprintf("\nAborted by **%s**; skipped: %s\n", o.AbortedBy, strings.Join(o.Skipped, ", ")))
	}
	if o.Interrupted {
		sb.WriteString("\nRun was interrupted.\n")
	}

	var attention []ResultOutput
	for _, r := range o.Results {
		if r.Severity != "pass" {
			attention = append(attention, r)
		}
	}
	if len(attention) == 0 {
		return sb.String()
	}

	sb.WriteString("\n### Needs attention\n\n")
	for _, r := range attention {
		sb.WriteString(fmt.Sprintf("- **%s** `%s` (%s): %s\n", strings.ToUpper(r.Severity), r.Probe, r.Category, r.Message))
		if r.Hint != "" {
			sb.WriteString(fmt.Sprintf("  - Hint: %s\n", r.Hint))
		}
	}
	return sb.String()
}

// FormatHistory renders recorded runs as a markdown table.
func FormatHistory(o HistoryOutput) string {
	if len(o.Runs) == 0 {
		return "No recorded runs."
	}

	var sb strings.Builder
	sb.WriteString("| ID | Started | Verdict | Pass | Warn | Fail |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")
	for _, r := range o.Runs {
		verdict := "not ready"
		if r.Ready {
			verdict = "ready"
		}
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %d | %d | %d |\n",
			r.ID, r.StartedAt, verdict, r.Summary.Passed, r.Summary.Warned, r.Summary.Failed))
	}
	return sb.String()
}
