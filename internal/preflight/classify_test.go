package preflight

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const gb = 1e9

func TestClassify_Presence(t *testing.T) {
	tests := []struct {
		name string
		m    Measurement
		rule Rule
		want Severity
	}{
		{"required present", Presence(true, "found"), RuleRequired, SeverityPass},
		{"required absent", Presence(false, "not found"), RuleRequired, SeverityFail},
		{"optional present", Presence(true, ""), RuleOptional, SeverityPass},
		{"optional absent", Presence(false, ""), RuleOptional, SeverityWarn},
		{"best effort reachable", Presence(true, ""), RuleBestEffort, SeverityPass},
		{"best effort unreachable", Presence(false, "timeout"), RuleBestEffort, SeverityWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := Classify(tt.m, Policy{Rule: tt.rule})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_PresenceMessageUsesNote(t *testing.T) {
	_, msg := Classify(Presence(false, "docker not found on PATH"), Policy{Rule: RuleRequired})
	assert.Equal(t, "docker not found on PATH", msg)

	_, msg = Classify(Presence(true, ""), Policy{Rule: RuleRequired})
	assert.Equal(t, "present", msg)
}

func TestClassify_Quantity(t *testing.T) {
	policy := Policy{Rule: RuleThreshold, Required: 4 * gb, Recommended: 8 * gb}

	tests := []struct {
		name  string
		value float64
		want  Severity
	}{
		{"above recommended", 16 * gb, SeverityPass},
		{"exactly recommended", 8 * gb, SeverityPass},
		{"between", 6 * gb, SeverityWarn},
		{"exactly required", 4 * gb, SeverityWarn},
		{"below required", 2 * gb, SeverityFail},
		{"zero", 0, SeverityFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := Classify(Quantity(tt.value, UnitBytes), policy)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_ScenarioDiskPass(t *testing.T) {
	// Given: 15 GB free, required 10 GB, recommended 10 GB
	m := Quantity(15*gb, UnitBytes)
	p := Policy{Rule: RuleThreshold, Required: 10 * gb, Recommended: 10 * gb}

	// When: classifying
	sev, msg := Classify(m, p)

	// Then: passes
	assert.Equal(t, SeverityPass, sev)
	assert.Contains(t, msg, "15 GB")
	assert.Contains(t, msg, "required 10 GB")
}

func TestClassify_ScenarioMemoryWarn(t *testing.T) {
	// Given: 6 GB available, required 4 GB, recommended 8 GB
	m := Quantity(6*gb, UnitBytes)
	p := Policy{Rule: RuleThreshold, Required: 4 * gb, Recommended: 8 * gb}

	// When: classifying
	sev, msg := Classify(m, p)

	// Then: warns, naming the recommended minimum
	assert.Equal(t, SeverityWarn, sev)
	assert.Contains(t, msg, "below recommended 8.0 GB")
}

func TestClassify_RecommendedDefaultsToRequired(t *testing.T) {
	p := Policy{Rule: RuleThreshold, Required: 2}

	sev, _ := Classify(Quantity(2, UnitCores), p)
	assert.Equal(t, SeverityPass, sev)

	sev, _ = Classify(Quantity(1, UnitCores), p)
	assert.Equal(t, SeverityFail, sev)
}

func TestClassify_QuantityMonotonic(t *testing.T) {
	// Decreasing the measurement never improves the severity.
	policy := Policy{Rule: RuleThreshold, Required: 1024, Recommended: 4096}

	prev := SeverityPass
	for v := 8192.0; v >= 0; v -= 128 {
		got, _ := Classify(Quantity(v, UnitCount), policy)
		assert.GreaterOrEqual(t, int(got), int(prev), "value %v improved severity", v)
		prev = got
	}
	assert.Equal(t, SeverityFail, prev)
}

func TestClassify_Idempotent(t *testing.T) {
	m := Quantity(6*gb, UnitBytes)
	p := Policy{Rule: RuleThreshold, Required: 4 * gb, Recommended: 8 * gb}

	sev1, msg1 := Classify(m, p)
	sev2, msg2 := Classify(m, p)

	assert.Equal(t, sev1, sev2)
	assert.Equal(t, msg1, msg2)
}

func TestClassify_InvalidQuantity(t *testing.T) {
	sev, _ := Classify(Quantity(math.NaN(), UnitBytes), Policy{Rule: RuleThreshold, Required: 1})
	assert.Equal(t, SeverityWarn, sev)
}

func TestClassify_Version(t *testing.T) {
	policy := Policy{Rule: RuleThreshold, RequiredVersion: "2.0.0", RecommendedVersion: "2.20.0"}

	tests := []struct {
		name    string
		version string
		want    Severity
	}{
		{"current", "2.24.6", SeverityPass},
		{"v prefix", "v2.27.0", SeverityPass},
		{"desktop build suffix", "2.20.0-desktop.1", SeverityPass},
		{"old plugin", "2.12.2", SeverityWarn},
		{"legacy v1", "1.29.2", SeverityFail},
		{"not found", "", SeverityFail},
		{"garbage", "unknown-build", SeverityWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := Classify(Version(tt.version, ""), policy)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_VersionWithoutThresholds(t *testing.T) {
	sev, msg := Classify(Version("24.0.7", "(docker)"), Policy{Rule: RuleThreshold})
	assert.Equal(t, SeverityPass, sev)
	assert.Equal(t, "24.0.7 (docker)", msg)
}

func TestClassify_KindMismatch(t *testing.T) {
	sev, _ := Classify(Presence(true, ""), Policy{Rule: RuleThreshold, Required: 1})
	assert.Equal(t, SeverityWarn, sev)
}

func TestClassify_UnknownRule(t *testing.T) {
	sev, _ := Classify(Presence(true, ""), Policy{Rule: Rule(99)})
	assert.Equal(t, SeverityWarn, sev)
}
