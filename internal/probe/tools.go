package probe

import (
	"context"
	"fmt"

	"github.com/Aman-CERP/readyctl/internal/preflight"
)

// ToolName returns the probe name for a tool.
func ToolName(tool string) string {
	return "tool_" + tool
}

// Tool checks that tool is on PATH. A missing required tool fails;
// a missing optional one warns.
func Tool(env Env, tool string, required bool) preflight.Probe {
	rule := preflight.RuleOptional
	if required {
		rule = preflight.RuleRequired
	}
	return preflight.Probe{
		Name: ToolName(tool),
		Policy: preflight.Policy{
			Rule: rule,
			Hint: fmt.Sprintf("install %s and make sure it is on PATH", tool),
		},
		Measure: func(ctx context.Context) (preflight.Measurement, error) {
			if err := ctx.Err(); err != nil {
				return preflight.Measurement{}, err
			}
			path, err := env.LookPath(tool)
			if err != nil {
				return preflight.Presence(false, tool+" not found on PATH"), nil
			}
			return preflight.Presence(true, path), nil
		},
	}
}
