package report

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Aman-CERP/readyctl/internal/preflight"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func probe(name string, m preflight.Measurement, rule preflight.Rule, hint string) preflight.Probe {
	return preflight.Probe{
		Name:   name,
		Policy: preflight.Policy{Rule: rule, Hint: hint},
		Measure: func(context.Context) (preflight.Measurement, error) {
			return m, nil
		},
	}
}

// samplePlan has a passing runtime category and a resources category
// with one warning.
func samplePlan(t *testing.T) *preflight.Plan {
	t.Helper()
	plan, err := preflight.NewPlan(
		preflight.Category{ID: "runtime", Title: "Container runtime", FailFast: true, Probes: []preflight.Probe{
			probe("runtime_installed", preflight.Presence(true, "Docker version 27.3.1"), preflight.RuleRequired, ""),
		}},
		preflight.Category{ID: "tools", Title: "Tooling", Probes: []preflight.Probe{
			probe("tool_git", preflight.Presence(false, "git not found on PATH"), preflight.RuleOptional, "install git"),
		}},
	)
	require.NoError(t, err)
	return plan
}

func failingPlan(t *testing.T) *preflight.Plan {
	t.Helper()
	plan, err := preflight.NewPlan(
		preflight.Category{ID: "runtime", Title: "Container runtime", FailFast: true, Probes: []preflight.Probe{
			probe("runtime_installed", preflight.Presence(false, "docker not found on PATH"), preflight.RuleRequired, "install docker"),
		}},
		preflight.Category{ID: "resources", Title: "System resources"},
	)
	require.NoError(t, err)
	return plan
}

func run(t *testing.T, r Reporter, plan *preflight.Plan) preflight.Outcome {
	t.Helper()
	require.NoError(t, r.Start(context.Background()))
	out := preflight.NewRunner(preflight.WithObserver(r)).Run(context.Background(), plan)
	require.NoError(t, r.Stop())
	return out
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatAuto},
		{in: "auto", want: FormatAuto},
		{in: "TEXT", want: FormatText},
		{in: " tui ", want: FormatTUI},
		{in: "json", want: FormatJSON},
		{in: "yaml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorContains(t, err, "use: auto, text, tui, json")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_PicksReporter(t *testing.T) {
	buf := &bytes.Buffer{}

	tests := []struct {
		format Format
		want   any
	}{
		{FormatAuto, &Text{}},
		{FormatText, &Text{}},
		{FormatJSON, &JSON{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			r, err := New(tt.format, buf)
			require.NoError(t, err)
			assert.IsType(t, tt.want, r)
		})
	}
}

func TestNew_TUIRequiresTerminal(t *testing.T) {
	_, err := New(FormatTUI, &bytes.Buffer{})
	assert.ErrorContains(t, err, "not a TTY")

	_, err = New("xml", &bytes.Buffer{})
	assert.Error(t, err)
}

func TestIsTTY_NonFile(t *testing.T) {
	assert.False(t, IsTTY(&bytes.Buffer{}))
	assert.False(t, IsTTY(nil))
}

func TestDetectCI(t *testing.T) {
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS", "BUILDKITE"} {
		t.Setenv(v, "")
	}
	// t.Setenv cannot unset, so only the positive case is deterministic
	assert.True(t, DetectCI())
}

func TestDetectNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.True(t, DetectNoColor())
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Microsecond, "<1ms"},
		{42 * time.Millisecond, "42ms"},
		{1500 * time.Millisecond, "1.5s"},
		{2 * time.Minute, "2m"},
		{125 * time.Second, "2m 5s"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDuration(tt.d))
		})
	}
}

func TestLines_NoANSIWithoutColor(t *testing.T) {
	// Given: unstyled lines
	l := lines{styles: NoColorStyles(), verbose: true}

	// When: rendering a failing result
	s := l.result(preflight.CheckResult{
		Probe: "disk_free", Severity: preflight.SeverityFail,
		Message: "8.0 GB free on /", Hint: "free up space", Detail: "statfs",
	})

	// Then: plain text with hint and detail
	assert.NotContains(t, s, "\x1b[")
	assert.Equal(t, "  [FAIL] disk_free: 8.0 GB free on / (<1ms)\n"+
		"         hint: free up space\n"+
		"         detail: statfs", s)
}

func TestLines_PassHidesHint(t *testing.T) {
	l := lines{styles: NoColorStyles()}

	s := l.result(preflight.CheckResult{
		Probe: "tool_git", Severity: preflight.SeverityPass, Message: "/usr/bin/git", Hint: "install git",
	})

	assert.Equal(t, "  [PASS] tool_git: /usr/bin/git", s)
}

func TestLines_Summary(t *testing.T) {
	l := lines{styles: NoColorStyles()}

	tests := []struct {
		name string
		out  preflight.Outcome
		want []string
	}{
		{
			name: "ready",
			out:  preflight.Outcome{Summary: preflight.Summary{Total: 2, Passed: 1, Warned: 1}},
			want: []string{"Summary: 2 checks: 1 passed, 1 warned, 0 failed", "READY"},
		},
		{
			name: "aborted",
			out: preflight.Outcome{
				Summary:   preflight.Summary{Total: 1, Failed: 1},
				AbortedBy: "runtime",
				Skipped:   []preflight.CategoryID{"orchestration", "resources"},
			},
			want: []string{"Aborted: runtime failed, skipped orchestration, resources", "NOT READY"},
		},
		{
			name: "interrupted",
			out: preflight.Outcome{
				Interrupted: true,
				Skipped:     []preflight.CategoryID{"network"},
			},
			want: []string{"Interrupted, skipped network", "NOT READY"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := l.summary(tt.out)
			for _, w := range tt.want {
				assert.Contains(t, s, w)
			}
			if tt.out.Ready() {
				assert.NotContains(t, s, "NOT READY")
			}
		})
	}
}

func TestText_StreamsReport(t *testing.T) {
	// Given: a text reporter on a buffer
	buf := &bytes.Buffer{}
	r := NewText(NewConfig(buf, WithTitle("readyctl test on linux")))

	// When: running a plan with a warning
	out := run(t, r, samplePlan(t))

	// Then: categories, results, footers and decision in order
	assert.True(t, out.Ready())
	want := strings.Join([]string{
		"readyctl test on linux",
		"",
		"Container runtime",
		"  [PASS] runtime_installed: Docker version 27.3.1",
		"  => PASS (1 passed, 0 warned, 0 failed)",
		"",
		"Tooling",
		"  [WARN] tool_git: git not found on PATH",
		"         hint: install git",
		"  => WARN (0 passed, 1 warned, 0 failed)",
		"",
	}, "\n")
	assert.True(t, strings.HasPrefix(buf.String(), want), buf.String())
	assert.True(t, strings.HasSuffix(buf.String(), "READY\n"))
}

func TestText_NotReady(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewText(NewConfig(buf))

	out := run(t, r, failingPlan(t))

	assert.Equal(t, 1, out.ExitCode())
	assert.Contains(t, buf.String(), "[FAIL] runtime_installed: docker not found on PATH")
	assert.Contains(t, buf.String(), "Aborted: runtime failed, skipped resources")
	assert.True(t, strings.HasSuffix(buf.String(), "NOT READY\n"))
	assert.NotContains(t, buf.String(), "System resources")
}
