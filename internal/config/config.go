package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

// Defaults for a multi-service container deployment.
const (
	DefaultRuntime            = "docker"
	DefaultComposeRequired    = "2.0.0"
	DefaultComposeRecommended = "2.20.0"
	DefaultCommandTimeout     = "10s"

	DefaultDiskRequired      = "10GB"
	DefaultDiskRecommended   = "20GB"
	DefaultMemoryRequired    = "4GB"
	DefaultMemoryRecommended = "8GB"
	DefaultCPURequired       = 2
	DefaultCPURecommended    = 4
	DefaultFDRequired        = 1024
	DefaultFDRecommended     = 4096

	DefaultNetworkTimeout = "3s"
	DefaultNetworkRetries = 2
	DefaultProbeTimeout   = "30s"
	DefaultHistoryRetain  = 100

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "READYCTL_"
)

// Config represents the complete readyctl configuration.
type Config struct {
	Version     int               `yaml:"version" json:"version"`
	Runtime     RuntimeConfig     `yaml:"runtime" json:"runtime"`
	Resources   ResourcesConfig   `yaml:"resources" json:"resources"`
	Tools       ToolsConfig       `yaml:"tools" json:"tools"`
	Network     NetworkConfig     `yaml:"network" json:"network"`
	Permissions PermissionsConfig `yaml:"permissions" json:"permissions"`
	Run         RunConfig         `yaml:"run" json:"run"`
	History     HistoryConfig     `yaml:"history" json:"history"`
	Logging     LoggingConfig     `yaml:"logging" json:"logging"`
}

// RuntimeConfig configures the container runtime and compose checks.
type RuntimeConfig struct {
	// Binary is the runtime CLI on PATH (docker, podman).
	Binary             string `yaml:"binary" json:"binary"`
	ComposeRequired    string `yaml:"compose_required" json:"compose_required"`
	ComposeRecommended string `yaml:"compose_recommended" json:"compose_recommended"`
	// CommandTimeout bounds each runtime CLI invocation (e.g. "10s").
	CommandTimeout string `yaml:"command_timeout" json:"command_timeout"`
}

// ResourcesConfig holds capacity thresholds. Byte sizes are human strings
// such as "10GB" or "512MiB".
type ResourcesConfig struct {
	// DiskPath is the filesystem checked for free space. Empty means the
	// current working directory.
	DiskPath          string  `yaml:"disk_path" json:"disk_path"`
	DiskRequired      string  `yaml:"disk_required" json:"disk_required"`
	DiskRecommended   string  `yaml:"disk_recommended" json:"disk_recommended"`
	MemoryRequired    string  `yaml:"memory_required" json:"memory_required"`
	MemoryRecommended string  `yaml:"memory_recommended" json:"memory_recommended"`
	CPURequired       float64 `yaml:"cpu_required" json:"cpu_required"`
	CPURecommended    float64 `yaml:"cpu_recommended" json:"cpu_recommended"`
	FDRequired        int     `yaml:"fd_required" json:"fd_required"`
	FDRecommended     int     `yaml:"fd_recommended" json:"fd_recommended"`
}

// ToolsConfig lists command-line tools that must or should be on PATH.
type ToolsConfig struct {
	Required []string `yaml:"required,omitempty" json:"required"`
	Optional []string `yaml:"optional" json:"optional"`
}

// NetworkConfig configures connectivity probes.
type NetworkConfig struct {
	// Targets are host:port pairs that must be reachable outbound.
	Targets []string `yaml:"targets" json:"targets"`
	// Ports are local ports the deployment will bind.
	Ports   []int  `yaml:"ports" json:"ports"`
	Timeout string `yaml:"timeout" json:"timeout"`
	Retries int    `yaml:"retries" json:"retries"`
}

// PermissionsConfig configures permission probes.
type PermissionsConfig struct {
	// ScratchDir is where the write probe creates its temporary file.
	// Empty means the OS temp directory.
	ScratchDir string `yaml:"scratch_dir" json:"scratch_dir"`
}

// RunConfig configures the runner.
type RunConfig struct {
	ProbeTimeout string `yaml:"probe_timeout" json:"probe_timeout"`
	// Categories restricts the default run to these category IDs.
	Categories []string `yaml:"categories,omitempty" json:"categories,omitempty"`
}

// HistoryConfig configures the run history database.
type HistoryConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Path defaults to ~/.readyctl/history.db.
	Path string `yaml:"path" json:"path"`
	// Retain is the number of runs kept; older runs are pruned.
	Retain int `yaml:"retain" json:"retain"`
}

// LoggingConfig configures the diagnostic log file.
type LoggingConfig struct {
	// Level enables file logging at debug, info, warn or error.
	// Empty disables logging unless --debug is given.
	Level string `yaml:"level" json:"level"`
}

// NewConfig creates a new Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Runtime: RuntimeConfig{
			Binary:             DefaultRuntime,
			ComposeRequired:    DefaultComposeRequired,
			ComposeRecommended: DefaultComposeRecommended,
			CommandTimeout:     DefaultCommandTimeout,
		},
		Resources: ResourcesConfig{
			DiskRequired:      DefaultDiskRequired,
			DiskRecommended:   DefaultDiskRecommended,
			MemoryRequired:    DefaultMemoryRequired,
			MemoryRecommended: DefaultMemoryRecommended,
			CPURequired:       DefaultCPURequired,
			CPURecommended:    DefaultCPURecommended,
			FDRequired:        DefaultFDRequired,
			FDRecommended:     DefaultFDRecommended,
		},
		Tools: ToolsConfig{
			Optional: []string{"git"},
		},
		Network: NetworkConfig{
			Targets: []string{"registry-1.docker.io:443"},
			Ports:   []int{80, 443},
			Timeout: DefaultNetworkTimeout,
			Retries: DefaultNetworkRetries,
		},
		Run: RunConfig{
			ProbeTimeout: DefaultProbeTimeout,
		},
		History: HistoryConfig{
			Enabled: true,
			Retain:  DefaultHistoryRetain,
		},
	}
}

// StateDir returns the directory holding logs, the run lock and history.
// READYCTL_HOME overrides the default ~/.readyctl.
func StateDir() string {
	if dir := os.Getenv(EnvPrefix + "HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".readyctl")
	}
	return filepath.Join(home, ".readyctl")
}

// GetUserConfigPath returns the path to the user/global configuration file.
// It follows XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/readyctl/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/readyctl/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "readyctl", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "readyctl", "config.yaml")
	}
	return filepath.Join(home, ".config", "readyctl", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// Load loads configuration for a run started in dir.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User/global config (~/.config/readyctl/config.yaml)
//  3. Project config (.readyctl.yaml in dir), or explicitPath when set
//  4. Environment variables (READYCTL_*)
//
// An explicitPath that does not exist is an error; the other files are
// optional.
func Load(dir, explicitPath string) (*Config, error) {
	cfg := NewConfig()

	if userPath := GetUserConfigPath(); fileExists(userPath) {
		if err := cfg.loadYAML(userPath); err != nil {
			return nil, fmt.Errorf("failed to load user config: %w", err)
		}
	}

	if explicitPath != "" {
		if err := cfg.loadYAML(explicitPath); err != nil {
			return nil, err
		}
	} else if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// ProjectConfigPath returns the project config file in dir, or "" if none.
func ProjectConfigPath(dir string) string {
	for _, name := range []string{".readyctl.yaml", ".readyctl.yml"} {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// loadFromFile loads .readyctl.yaml or .readyctl.yml from dir when present.
func (c *Config) loadFromFile(dir string) error {
	if path := ProjectConfigPath(dir); path != "" {
		return c.loadYAML(path)
	}
	return nil
}

// loadYAML decodes a YAML file over the current values. Keys absent from
// the file keep their current value; unknown keys are rejected.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	next := *c
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&next); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	*c = next
	return nil
}

// applyEnvOverrides applies READYCTL_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(EnvPrefix + "RUNTIME"); v != "" {
		c.Runtime.Binary = v
	}
	if v := os.Getenv(EnvPrefix + "DISK_PATH"); v != "" {
		c.Resources.DiskPath = v
	}
	if v := os.Getenv(EnvPrefix + "SCRATCH_DIR"); v != "" {
		c.Permissions.ScratchDir = v
	}
	if v := os.Getenv(EnvPrefix + "PROBE_TIMEOUT"); v != "" {
		c.Run.ProbeTimeout = v
	}
	if v := os.Getenv(EnvPrefix + "NETWORK_TIMEOUT"); v != "" {
		c.Network.Timeout = v
	}
	if v := os.Getenv(EnvPrefix + "CATEGORIES"); v != "" {
		c.Run.Categories = splitList(v)
	}
	if v := os.Getenv(EnvPrefix + "HISTORY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.History.Enabled = b
		}
	}
	if v := os.Getenv(EnvPrefix + "HISTORY_PATH"); v != "" {
		c.History.Path = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate reports every problem in the configuration at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if strings.TrimSpace(c.Runtime.Binary) == "" {
		result = multierror.Append(result, errors.New("runtime.binary must not be empty"))
	}
	if _, err := c.CommandTimeout(); err != nil {
		result = multierror.Append(result, err)
	}

	if _, _, err := c.Resources.DiskBytes(); err != nil {
		result = multierror.Append(result, err)
	}
	if _, _, err := c.Resources.MemoryBytes(); err != nil {
		result = multierror.Append(result, err)
	}
	if c.Resources.CPURequired < 0 || c.Resources.CPURecommended < 0 {
		result = multierror.Append(result, errors.New("resources.cpu thresholds must be non-negative"))
	}
	if c.Resources.CPURecommended != 0 && c.Resources.CPURecommended < c.Resources.CPURequired {
		result = multierror.Append(result, fmt.Errorf("resources.cpu_recommended (%g) is below cpu_required (%g)",
			c.Resources.CPURecommended, c.Resources.CPURequired))
	}
	if c.Resources.FDRequired < 0 || c.Resources.FDRecommended < 0 {
		result = multierror.Append(result, errors.New("resources.fd thresholds must be non-negative"))
	}
	if c.Resources.FDRecommended != 0 && c.Resources.FDRecommended < c.Resources.FDRequired {
		result = multierror.Append(result, fmt.Errorf("resources.fd_recommended (%d) is below fd_required (%d)",
			c.Resources.FDRecommended, c.Resources.FDRequired))
	}

	for _, target := range c.Network.Targets {
		if _, port, err := net.SplitHostPort(target); err != nil || port == "" {
			result = multierror.Append(result, fmt.Errorf("network.targets: %q is not host:port", target))
		}
	}
	for _, port := range c.Network.Ports {
		if port < 1 || port > 65535 {
			result = multierror.Append(result, fmt.Errorf("network.ports: %d is out of range", port))
		}
	}
	if _, err := c.NetworkTimeout(); err != nil {
		result = multierror.Append(result, err)
	}
	if c.Network.Retries < 0 {
		result = multierror.Append(result, fmt.Errorf("network.retries must be non-negative, got %d", c.Network.Retries))
	}

	if _, err := c.ProbeTimeout(); err != nil {
		result = multierror.Append(result, err)
	}
	if c.History.Retain < 0 {
		result = multierror.Append(result, fmt.Errorf("history.retain must be non-negative, got %d", c.History.Retain))
	}

	if c.Logging.Level != "" {
		validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
		if !validLevels[strings.ToLower(c.Logging.Level)] {
			result = multierror.Append(result, fmt.Errorf("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level))
		}
	}

	return result.ErrorOrNil()
}

// DiskBytes returns the parsed disk thresholds.
func (r ResourcesConfig) DiskBytes() (required, recommended uint64, err error) {
	return parseThresholds("resources.disk", r.DiskRequired, r.DiskRecommended)
}

// MemoryBytes returns the parsed memory thresholds.
func (r ResourcesConfig) MemoryBytes() (required, recommended uint64, err error) {
	return parseThresholds("resources.memory", r.MemoryRequired, r.MemoryRecommended)
}

func parseThresholds(name, requiredStr, recommendedStr string) (uint64, uint64, error) {
	required, err := parseBytes(requiredStr)
	if err != nil {
		return 0, 0, fmt.Errorf("%s_required: %w", name, err)
	}
	recommended, err := parseBytes(recommendedStr)
	if err != nil {
		return 0, 0, fmt.Errorf("%s_recommended: %w", name, err)
	}
	if recommended != 0 && recommended < required {
		return 0, 0, fmt.Errorf("%s_recommended (%s) is below %s_required (%s)",
			name, recommendedStr, name, requiredStr)
	}
	return required, recommended, nil
}

func parseBytes(s string) (uint64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	return n, nil
}

// CommandTimeout returns the parsed runtime command timeout.
func (c *Config) CommandTimeout() (time.Duration, error) {
	return parseDuration("runtime.command_timeout", c.Runtime.CommandTimeout, DefaultCommandTimeout)
}

// NetworkTimeout returns the parsed dial timeout.
func (c *Config) NetworkTimeout() (time.Duration, error) {
	return parseDuration("network.timeout", c.Network.Timeout, DefaultNetworkTimeout)
}

// ProbeTimeout returns the parsed per-probe timeout.
func (c *Config) ProbeTimeout() (time.Duration, error) {
	return parseDuration("run.probe_timeout", c.Run.ProbeTimeout, DefaultProbeTimeout)
}

func parseDuration(name, value, def string) (time.Duration, error) {
	if value == "" {
		value = def
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", name, value)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", name, value)
	}
	return d, nil
}

// HistoryPath returns the history database path.
func (c *Config) HistoryPath() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	return filepath.Join(StateDir(), "history.db")
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
