//go:build linux

package hostmetrics

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCPUCores_CgroupQuotaLowersCount(t *testing.T) {
	// Given: 8 CPUs and a 1.5 core quota
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, cgroupV2CPUMax, []byte("150000 100000\n"), 0o644))
	h := newTestHost(8, fs)

	// When: reading cores
	cores, err := h.CPUCores(context.Background())

	// Then: the quota wins
	require.NoError(t, err)
	assert.InDelta(t, 1.5, cores, 1e-9)
}

func TestCPUCores_QuotaAboveCPUsIgnored(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, cgroupV2CPUMax, []byte("1600000 100000\n"), 0o644))
	h := newTestHost(4, fs)

	cores, err := h.CPUCores(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 4.0, cores)
}

func TestCPUCores_NoCgroup(t *testing.T) {
	h := newTestHost(6, afero.NewMemMapFs())

	cores, err := h.CPUCores(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 6.0, cores)
}

func TestCPUCores_CorruptQuotaIsError(t *testing.T) {
	// Given: a corrupt cpu.max
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, cgroupV2CPUMax, []byte("nonsense"), 0o644))
	h := newTestHost(4, fs)

	// When/Then: an error, never a silent default
	_, err := h.CPUCores(context.Background())
	assert.Error(t, err)
}
