package mcp

// CheckInput defines the input schema for the check_readiness tool.
type CheckInput struct {
	Categories []string `json:"categories,omitempty" jsonschema:"category IDs to check, in any order; empty runs every category"`
}

// CheckOutput defines the output schema for the check_readiness tool.
type CheckOutput struct {
	Ready       bool           `json:"ready" jsonschema:"true when the host may proceed with deployment"`
	ExitCode    int            `json:"exit_code" jsonschema:"process exit status the CLI would return"`
	Summary     SummaryOutput  `json:"summary"`
	AbortedBy   string         `json:"aborted_by,omitempty" jsonschema:"fail-fast category that halted the run"`
	Skipped     []string       `json:"skipped,omitempty" jsonschema:"categories that never ran"`
	Interrupted bool           `json:"interrupted,omitempty"`
	RunID       int64          `json:"run_id,omitempty" jsonschema:"history ID when the run was recorded"`
	DurationMS  int64          `json:"duration_ms"`
	Results     []ResultOutput `json:"results"`
}

// SummaryOutput holds the per-severity tallies.
type SummaryOutput struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Warned int `json:"warned"`
	Failed int `json:"failed"`
}

// ResultOutput is one probe result.
type ResultOutput struct {
	Probe      string `json:"probe"`
	Category   string `json:"category"`
	Severity   string `json:"severity" jsonschema:"pass, warn or fail"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	Hint       string `json:"hint,omitempty" jsonschema:"remediation for warn and fail results"`
	DurationMS int64  `json:"duration_ms"`
}

// HistoryInput defines the input schema for the readiness_history tool.
type HistoryInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of runs, default 10"`
}

// HistoryOutput defines the output schema for the readiness_history tool.
type HistoryOutput struct {
	Runs []RunOutput `json:"runs"`
}

// RunOutput is one recorded run, newest first.
type RunOutput struct {
	ID          int64         `json:"id"`
	StartedAt   string        `json:"started_at" jsonschema:"RFC 3339 start time"`
	Ready       bool          `json:"ready"`
	Summary     SummaryOutput `json:"summary"`
	AbortedBy   string        `json:"aborted_by,omitempty"`
	Interrupted bool          `json:"interrupted,omitempty"`
	Host        string        `json:"host,omitempty"`
	DurationMS  int64         `json:"duration_ms"`
}
