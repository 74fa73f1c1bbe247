package probe

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}

	tests := []struct {
		name     string
		script   string
		stdout   string
		stderr   string
		exitCode int
	}{
		{name: "success", script: "echo hello", stdout: "hello\n"},
		{name: "non-zero exit", script: "echo oops >&2; exit 3", stderr: "oops\n", exitCode: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, code, err := ExecRunner{}.Run(context.Background(), "sh", "-c", tt.script)
			require.NoError(t, err)
			assert.Equal(t, tt.stdout, stdout)
			assert.Equal(t, tt.stderr, stderr)
			assert.Equal(t, tt.exitCode, code)
		})
	}
}

func TestExecRunner_MissingBinary(t *testing.T) {
	_, _, code, err := ExecRunner{}.Run(context.Background(), "readyctl-no-such-binary")

	require.Error(t, err)
	assert.Equal(t, -1, code)
}

func TestExecRunner_Timeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}

	// Given: a command that outlives its context
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// When: running it
	_, _, _, err := ExecRunner{}.Run(ctx, "sh", "-c", "sleep 5")

	// Then: the deadline surfaces as an error, not an exit code
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "second", firstLine("\n  \n second \nthird"))
	assert.Empty(t, firstLine(""))
}
