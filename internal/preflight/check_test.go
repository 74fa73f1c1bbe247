package preflight

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityPass, "PASS"},
		{SeverityWarn, "WARN"},
		{SeverityFail, "FAIL"},
		{Severity(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.severity.String())
		})
	}
}

func TestSeverity_Order(t *testing.T) {
	assert.Equal(t, SeverityFail, Worst(SeverityPass, SeverityFail))
	assert.Equal(t, SeverityFail, Worst(SeverityFail, SeverityWarn))
	assert.Equal(t, SeverityWarn, Worst(SeverityWarn, SeverityPass))
	assert.Equal(t, SeverityPass, Worst(SeverityPass, SeverityPass))
}

func TestSeverity_JSON(t *testing.T) {
	// Given: a result with a warn severity
	r := CheckResult{Probe: "memory_available", Category: "resources", Severity: SeverityWarn, Message: "low"}

	// When: encoding it
	data, err := json.Marshal(r)
	require.NoError(t, err)

	// Then: severity is a lowercase string
	assert.Contains(t, string(data), `"severity":"warn"`)

	// And: it decodes back
	var decoded CheckResult
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, SeverityWarn, decoded.Severity)
}

func TestParseSeverity_Unknown(t *testing.T) {
	_, err := ParseSeverity("fatal")
	assert.Error(t, err)
}

func TestCheckResult_IsBlocking(t *testing.T) {
	assert.True(t, CheckResult{Severity: SeverityFail}.IsBlocking())
	assert.False(t, CheckResult{Severity: SeverityWarn}.IsBlocking())
	assert.False(t, CheckResult{Severity: SeverityPass}.IsBlocking())
}
