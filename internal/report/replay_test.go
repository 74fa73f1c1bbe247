package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Aman-CERP/readyctl/internal/preflight"
)

func TestReplay_MatchesLiveOutput(t *testing.T) {
	// Given: a live text report of a run
	var live bytes.Buffer
	out := run(t, NewText(NewConfig(&live, WithNoColor(true))), samplePlan(t))

	// When: replaying the stored outcome
	var replayed bytes.Buffer
	Replay(NewText(NewConfig(&replayed, WithNoColor(true))), out, map[preflight.CategoryID]string{
		"runtime": "Container runtime",
		"tools":   "Tooling",
	})

	// Then: the output is identical
	assert.Equal(t, live.String(), replayed.String())
}

func TestReplay_UnknownTitleFallsBackToID(t *testing.T) {
	var buf bytes.Buffer
	out := preflight.Outcome{Results: []preflight.CheckResult{
		{Probe: "gpu_present", Category: "gpu", Severity: preflight.SeverityFail, Message: "no GPU"},
	}}

	Replay(NewText(NewConfig(&buf, WithNoColor(true))), out, nil)

	assert.Contains(t, buf.String(), "gpu\n")
	assert.Contains(t, buf.String(), "=> FAIL (0 passed, 0 warned, 1 failed)")
}

func TestReplay_NoResultsStillSummarizes(t *testing.T) {
	var buf bytes.Buffer

	Replay(NewJSON(NewConfig(&buf)), preflight.Outcome{AbortedBy: "runtime"}, nil)

	assert.Contains(t, buf.String(), `"aborted_by": "runtime"`)
}
