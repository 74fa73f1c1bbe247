package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/readyctl/configs"
)

// isolate points every config lookup at temp directories.
func isolate(t *testing.T) (userDir, projectDir string) {
	t.Helper()
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("READYCTL_HOME", t.TempDir())
	for _, key := range []string{
		"READYCTL_RUNTIME", "READYCTL_DISK_PATH", "READYCTL_SCRATCH_DIR",
		"READYCTL_PROBE_TIMEOUT", "READYCTL_NETWORK_TIMEOUT", "READYCTL_CATEGORIES",
		"READYCTL_HISTORY", "READYCTL_HISTORY_PATH", "READYCTL_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
	userDir = filepath.Join(xdg, "readyctl")
	require.NoError(t, os.MkdirAll(userDir, 0755))
	return userDir, t.TempDir()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// =============================================================================
// Defaults
// =============================================================================

func TestNewConfig_ReturnsDefaults(t *testing.T) {
	// Given: no configuration file exists
	cfg := NewConfig()

	// Then: all defaults should be applied
	require.NotNil(t, cfg)
	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "docker", cfg.Runtime.Binary)
	assert.Equal(t, "2.0.0", cfg.Runtime.ComposeRequired)
	assert.Equal(t, "2.20.0", cfg.Runtime.ComposeRecommended)
	assert.Equal(t, "10GB", cfg.Resources.DiskRequired)
	assert.Equal(t, "8GB", cfg.Resources.MemoryRecommended)
	assert.Equal(t, 2.0, cfg.Resources.CPURequired)
	assert.Equal(t, 1024, cfg.Resources.FDRequired)
	assert.Equal(t, []string{"git"}, cfg.Tools.Optional)
	assert.Empty(t, cfg.Tools.Required)
	assert.Equal(t, []int{80, 443}, cfg.Network.Ports)
	assert.True(t, cfg.History.Enabled)
	assert.Empty(t, cfg.Logging.Level)

	require.NoError(t, cfg.Validate())
}

func TestConfig_ParsedDefaults(t *testing.T) {
	cfg := NewConfig()

	req, rec, err := cfg.Resources.DiskBytes()
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000_000_000), req)
	assert.Equal(t, uint64(20_000_000_000), rec)

	req, rec, err = cfg.Resources.MemoryBytes()
	require.NoError(t, err)
	assert.Equal(t, uint64(4_000_000_000), req)
	assert.Equal(t, uint64(8_000_000_000), rec)

	d, err := cfg.ProbeTimeout()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, d)

	d, err = cfg.NetworkTimeout()
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, d)

	d, err = cfg.CommandTimeout()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, d)
}

func TestConfig_BinaryUnitsAccepted(t *testing.T) {
	cfg := NewConfig()
	cfg.Resources.MemoryRequired = "2GiB"
	cfg.Resources.MemoryRecommended = ""

	req, rec, err := cfg.Resources.MemoryBytes()

	require.NoError(t, err)
	assert.Equal(t, uint64(2<<30), req)
	assert.Zero(t, rec)
}

// =============================================================================
// Load precedence
// =============================================================================

func TestLoad_NoFilesUsesDefaults(t *testing.T) {
	_, projectDir := isolate(t)

	cfg, err := Load(projectDir, "")

	require.NoError(t, err)
	assert.Equal(t, NewConfig(), cfg)
}

func TestLoad_ProjectOverridesUser(t *testing.T) {
	// Given: a user config and a project config
	userDir, projectDir := isolate(t)
	writeFile(t, filepath.Join(userDir, "config.yaml"), `
runtime:
  binary: podman
resources:
  disk_required: 5GB
tools:
  required: [make]
`)
	writeFile(t, filepath.Join(projectDir, ".readyctl.yaml"), `
resources:
  disk_required: 15GB
history:
  enabled: false
`)

	// When: loading
	cfg, err := Load(projectDir, "")

	// Then: project wins where set, user elsewhere, defaults for the rest
	require.NoError(t, err)
	assert.Equal(t, "podman", cfg.Runtime.Binary)
	assert.Equal(t, "15GB", cfg.Resources.DiskRequired)
	assert.Equal(t, "20GB", cfg.Resources.DiskRecommended)
	assert.Equal(t, []string{"make"}, cfg.Tools.Required)
	assert.Equal(t, []string{"git"}, cfg.Tools.Optional)
	assert.False(t, cfg.History.Enabled)
}

func TestLoad_YmlFallback(t *testing.T) {
	_, projectDir := isolate(t)
	writeFile(t, filepath.Join(projectDir, ".readyctl.yml"), "network:\n  ports: [5432]\n")

	cfg, err := Load(projectDir, "")

	require.NoError(t, err)
	assert.Equal(t, []int{5432}, cfg.Network.Ports)
}

func TestLoad_ExplicitFileReplacesProjectLookup(t *testing.T) {
	_, projectDir := isolate(t)
	writeFile(t, filepath.Join(projectDir, ".readyctl.yaml"), "runtime:\n  binary: podman\n")
	explicit := filepath.Join(t.TempDir(), "ci.yaml")
	writeFile(t, explicit, "network:\n  retries: 5\n")

	cfg, err := Load(projectDir, explicit)

	require.NoError(t, err)
	assert.Equal(t, "docker", cfg.Runtime.Binary)
	assert.Equal(t, 5, cfg.Network.Retries)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, projectDir := isolate(t)

	_, err := Load(projectDir, filepath.Join(projectDir, "nope.yaml"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_EnvOverridesFiles(t *testing.T) {
	// Given: a project file and environment overrides
	_, projectDir := isolate(t)
	writeFile(t, filepath.Join(projectDir, ".readyctl.yaml"), "runtime:\n  binary: podman\n")
	t.Setenv("READYCTL_RUNTIME", "nerdctl")
	t.Setenv("READYCTL_CATEGORIES", "runtime, resources,,")
	t.Setenv("READYCTL_HISTORY", "false")
	t.Setenv("READYCTL_LOG_LEVEL", "debug")
	t.Setenv("READYCTL_PROBE_TIMEOUT", "5s")

	// When: loading
	cfg, err := Load(projectDir, "")

	// Then: env wins
	require.NoError(t, err)
	assert.Equal(t, "nerdctl", cfg.Runtime.Binary)
	assert.Equal(t, []string{"runtime", "resources"}, cfg.Run.Categories)
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "5s", cfg.Run.ProbeTimeout)
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	_, projectDir := isolate(t)
	writeFile(t, filepath.Join(projectDir, ".readyctl.yaml"), "resources:\n  disk_requried: 5GB\n")

	_, err := Load(projectDir, "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoad_EmptyFileIsFine(t *testing.T) {
	_, projectDir := isolate(t)
	writeFile(t, filepath.Join(projectDir, ".readyctl.yaml"), "")

	cfg, err := Load(projectDir, "")

	require.NoError(t, err)
	assert.Equal(t, "docker", cfg.Runtime.Binary)
}

func TestLoad_InvalidConfigurationReported(t *testing.T) {
	_, projectDir := isolate(t)
	writeFile(t, filepath.Join(projectDir, ".readyctl.yaml"), "network:\n  ports: [0]\n")

	_, err := Load(projectDir, "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

// =============================================================================
// Validation
// =============================================================================

func TestValidate_CollectsAllProblems(t *testing.T) {
	// Given: several independent mistakes
	cfg := NewConfig()
	cfg.Runtime.Binary = " "
	cfg.Resources.DiskRequired = "lots"
	cfg.Network.Targets = []string{"example.com"}
	cfg.Network.Ports = []int{70000}
	cfg.Run.ProbeTimeout = "-1s"
	cfg.Logging.Level = "verbose"

	// When: validating
	err := cfg.Validate()

	// Then: every problem is reported
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "6 errors occurred")
	assert.Contains(t, msg, "runtime.binary")
	assert.Contains(t, msg, `invalid size "lots"`)
	assert.Contains(t, msg, `"example.com" is not host:port`)
	assert.Contains(t, msg, "70000 is out of range")
	assert.Contains(t, msg, "run.probe_timeout must be positive")
	assert.Contains(t, msg, "logging.level")
}

func TestValidate_RecommendedBelowRequired(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name: "memory",
			mutate: func(c *Config) {
				c.Resources.MemoryRequired = "8GB"
				c.Resources.MemoryRecommended = "4GB"
			},
			want: "resources.memory_recommended (4GB) is below resources.memory_required (8GB)",
		},
		{
			name:   "cpu",
			mutate: func(c *Config) { c.Resources.CPURecommended = 1 },
			want:   "cpu_recommended (1) is below cpu_required (2)",
		},
		{
			name:   "fd",
			mutate: func(c *Config) { c.Resources.FDRecommended = 512 },
			want:   "fd_recommended (512) is below fd_required (1024)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)

			err := cfg.Validate()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

// =============================================================================
// Paths and writing
// =============================================================================

func TestPaths(t *testing.T) {
	isolate(t)

	assert.Equal(t, filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "readyctl", "config.yaml"), GetUserConfigPath())
	assert.Equal(t, os.Getenv("READYCTL_HOME"), StateDir())

	cfg := NewConfig()
	assert.Equal(t, filepath.Join(StateDir(), "history.db"), cfg.HistoryPath())
	cfg.History.Path = "/var/lib/readyctl.db"
	assert.Equal(t, "/var/lib/readyctl.db", cfg.HistoryPath())
}

func TestWriteYAML_RoundTripsThroughLoad(t *testing.T) {
	_, projectDir := isolate(t)
	cfg := NewConfig()
	cfg.Tools.Required = []string{"make", "jq"}
	cfg.History.Enabled = false

	require.NoError(t, cfg.WriteYAML(filepath.Join(projectDir, ".readyctl.yaml")))
	loaded, err := Load(projectDir, "")

	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestBackupFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	t.Run("missing file is not backed up", func(t *testing.T) {
		backup, err := BackupFile(path)
		require.NoError(t, err)
		assert.Empty(t, backup)
	})

	t.Run("keeps only the newest backups", func(t *testing.T) {
		writeFile(t, path, "version: 1\n")
		var made []string
		for i := 0; i < MaxBackups+2; i++ {
			backup, err := BackupFile(path)
			require.NoError(t, err)
			made = append(made, backup)
			time.Sleep(2 * time.Millisecond)
		}

		backups, err := ListBackups(path)
		require.NoError(t, err)
		assert.Len(t, backups, MaxBackups)
		assert.Equal(t, made[len(made)-1], backups[0])

		data, err := os.ReadFile(backups[0])
		require.NoError(t, err)
		assert.Equal(t, "version: 1\n", string(data))
	})
}

func TestConfigTemplate_MatchesDefaults(t *testing.T) {
	// Given: the embedded template written by config init
	_, projectDir := isolate(t)
	writeFile(t, filepath.Join(projectDir, ".readyctl.yaml"), configs.ConfigTemplate)

	// When: loading it
	cfg, err := Load(projectDir, "")

	// Then: it parses with known keys only and documents the defaults
	require.NoError(t, err)
	assert.Equal(t, NewConfig(), cfg)
}
