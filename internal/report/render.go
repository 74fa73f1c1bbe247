package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/Aman-CERP/readyctl/internal/preflight"
)

// lines renders observer events as text. Text and TUI share it so both
// print the same report.
type lines struct {
	styles  Styles
	verbose bool
}

func (l lines) category(c preflight.Category) string {
	return l.styles.Header.Render(c.Title)
}

func (l lines) result(r preflight.CheckResult) string {
	var sb strings.Builder

	tag := l.styles.Severity(r.Severity).Render("[" + r.Severity.String() + "]")
	fmt.Fprintf(&sb, "  %s %s: %s", tag, r.Probe, r.Message)
	if l.verbose {
		sb.WriteString(l.styles.Dim.Render(fmt.Sprintf(" (%s)", formatDuration(r.Duration))))
	}

	if r.Severity != preflight.SeverityPass && r.Hint != "" {
		sb.WriteString("\n         " + l.styles.Label.Render("hint: "+r.Hint))
	}
	if l.verbose && r.Detail != "" {
		sb.WriteString("\n         " + l.styles.Dim.Render("detail: "+r.Detail))
	}
	return sb.String()
}

func (l lines) categoryEnd(c preflight.Category, s preflight.Summary, worst preflight.Severity) string {
	if s.Total == 0 {
		return l.styles.Dim.Render("  (no checks)")
	}
	return fmt.Sprintf("  %s %s (%s)",
		l.styles.Dim.Render("=>"),
		l.styles.Severity(worst).Render(worst.String()),
		tally(s))
}

func (l lines) summary(o preflight.Outcome) string {
	var out []string

	out = append(out, fmt.Sprintf("%s %d checks: %s in %s",
		l.styles.Header.Render("Summary:"), o.Summary.Total, tally(o.Summary), formatDuration(o.Duration)))

	if o.AbortedBy != "" {
		out = append(out, l.styles.Fail.Render(fmt.Sprintf("Aborted: %s failed, skipped %s",
			o.AbortedBy, joinIDs(o.Skipped))))
	}
	if o.Interrupted {
		msg := "Interrupted"
		if len(o.Skipped) > 0 {
			msg += ", skipped " + joinIDs(o.Skipped)
		}
		out = append(out, l.styles.Warn.Render(msg))
	}

	if o.Ready() {
		out = append(out, l.styles.Ready.Render("READY"))
	} else {
		out = append(out, l.styles.NotReady.Render("NOT READY"))
	}
	return strings.Join(out, "\n")
}

func tally(s preflight.Summary) string {
	return fmt.Sprintf("%d passed, %d warned, %d failed", s.Passed, s.Warned, s.Failed)
}

func joinIDs(ids []preflight.CategoryID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ", ")
}

// formatDuration formats a duration in a human-friendly way.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return "<1ms"
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	d = d.Round(time.Second)
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	if s == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dm %ds", m, s)
}
