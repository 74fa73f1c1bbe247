package preflight

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	results := []CheckResult{
		{Severity: SeverityPass},
		{Severity: SeverityPass},
		{Severity: SeverityWarn},
		{Severity: SeverityFail},
	}

	s := Summarize(results)

	assert.Equal(t, Summary{Total: 4, Passed: 2, Warned: 1, Failed: 1}, s)
	assert.Equal(t, s.Total, s.Passed+s.Warned+s.Failed)
	assert.False(t, s.Ready())
}

func TestSummary_WarningsNeverBlock(t *testing.T) {
	s := Summarize([]CheckResult{{Severity: SeverityWarn}, {Severity: SeverityWarn}})
	assert.True(t, s.Ready())
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, Summary{}, s)
	assert.True(t, s.Ready())
}

func TestAggregator_PerCategory(t *testing.T) {
	// Given: results across two categories
	agg := NewAggregator()
	agg.Record(CheckResult{Probe: "a", Category: "runtime", Severity: SeverityPass})
	agg.Record(CheckResult{Probe: "b", Category: "resources", Severity: SeverityWarn})
	agg.Record(CheckResult{Probe: "c", Category: "resources", Severity: SeverityPass})

	// When/Then: category tallies are independent
	assert.Equal(t, Summary{Total: 1, Passed: 1}, agg.CategorySummary("runtime"))
	assert.Equal(t, Summary{Total: 2, Passed: 1, Warned: 1}, agg.CategorySummary("resources"))
	assert.Equal(t, Summary{}, agg.CategorySummary("network"))

	worst, ok := agg.CategorySeverity("resources")
	assert.True(t, ok)
	assert.Equal(t, SeverityWarn, worst)

	_, ok = agg.CategorySeverity("network")
	assert.False(t, ok)

	assert.Equal(t, Summary{Total: 3, Passed: 2, Warned: 1}, agg.Summary())
}

func TestAggregator_ResultsIsCopyInOrder(t *testing.T) {
	agg := NewAggregator()
	agg.Record(CheckResult{Probe: "first"})
	agg.Record(CheckResult{Probe: "second"})

	results := agg.Results()
	results[0].Probe = "mutated"

	got := agg.Results()
	assert.Equal(t, "first", got[0].Probe)
	assert.Equal(t, "second", got[1].Probe)
}
