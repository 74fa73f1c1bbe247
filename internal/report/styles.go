package report

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Aman-CERP/readyctl/internal/preflight"
)

// Color palette: one lime accent plus status colors.
const (
	ColorLime     = "154"
	ColorLimeDim  = "106"
	ColorGray     = "245"
	ColorDarkGray = "238"
	ColorRed      = "196"
	ColorYellow   = "220"
)

// Styles holds the styles used by the Text and TUI reporters.
type Styles struct {
	Header   lipgloss.Style
	Pass     lipgloss.Style
	Warn     lipgloss.Style
	Fail     lipgloss.Style
	Dim      lipgloss.Style
	Label    lipgloss.Style
	Active   lipgloss.Style
	Ready    lipgloss.Style
	NotReady lipgloss.Style
}

// DefaultStyles returns colored styles for terminals.
func DefaultStyles() Styles {
	return Styles{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
		Pass:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime)),
		Warn:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Fail:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorRed)),
		Dim:      lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
		Label:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Active:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLimeDim)),
		Ready:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
		NotReady: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorRed)),
	}
}

// NoColorStyles returns unstyled components for plain output.
func NoColorStyles() Styles {
	return Styles{
		Header:   lipgloss.NewStyle(),
		Pass:     lipgloss.NewStyle(),
		Warn:     lipgloss.NewStyle(),
		Fail:     lipgloss.NewStyle(),
		Dim:      lipgloss.NewStyle(),
		Label:    lipgloss.NewStyle(),
		Active:   lipgloss.NewStyle(),
		Ready:    lipgloss.NewStyle(),
		NotReady: lipgloss.NewStyle(),
	}
}

// GetStyles returns the appropriate styles based on color preference.
func GetStyles(noColor bool) Styles {
	if noColor {
		return NoColorStyles()
	}
	return DefaultStyles()
}

// Severity returns the style for a severity.
func (s Styles) Severity(sev preflight.Severity) lipgloss.Style {
	switch sev {
	case preflight.SeverityPass:
		return s.Pass
	case preflight.SeverityWarn:
		return s.Warn
	default:
		return s.Fail
	}
}
