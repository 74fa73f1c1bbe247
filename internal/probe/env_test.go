package probe

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTool(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\nexit 0\n"), 0o755))
}

func TestDefaultEnv_LookPathSearchesPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script tools")
	}
	// Given: a tool in a directory on PATH
	bin := t.TempDir()
	writeTool(t, bin, "readyctl-fake-tool")
	t.Setenv("PATH", bin)

	// When: resolving it
	path, err := DefaultEnv().LookPath("readyctl-fake-tool")

	// Then: the PATH entry is returned
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(bin, "readyctl-fake-tool"), path)
}

func TestDefaultEnv_LookPathIgnoresWorkingDirectory(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script tools")
	}
	// Given: a tool only in the working directory
	work := t.TempDir()
	writeTool(t, work, "readyctl-fake-tool")
	t.Chdir(work)
	t.Setenv("PATH", t.TempDir())

	// When: resolving it
	_, err := DefaultEnv().LookPath("readyctl-fake-tool")

	// Then: it is not found
	assert.Error(t, err)
}
