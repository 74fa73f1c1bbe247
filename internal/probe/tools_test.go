package probe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Aman-CERP/readyctl/internal/preflight"
)

func TestTool(t *testing.T) {
	tests := []struct {
		name     string
		tool     string
		required bool
		severity preflight.Severity
		message  string
	}{
		{name: "present", tool: "git", severity: preflight.SeverityPass, message: "/usr/bin/git"},
		{name: "optional missing", tool: "make", severity: preflight.SeverityWarn, message: "make not found on PATH"},
		{name: "required missing", tool: "make", required: true, severity: preflight.SeverityFail, message: "make not found on PATH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Tool(Env{LookPath: lookPath("git")}, tt.tool, tt.required)

			sev, msg := classify(t, p)

			assert.Equal(t, "tool_"+tt.tool, p.Name)
			assert.Equal(t, tt.severity, sev)
			assert.Equal(t, tt.message, msg)
		})
	}
}

func TestTool_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Tool(Env{LookPath: lookPath("git")}, "git", false).Measure(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}
