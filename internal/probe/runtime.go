package probe

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Aman-CERP/readyctl/internal/preflight"
)

// Probe names for the runtime and orchestration categories.
const (
	NameRuntimeInstalled = "runtime_installed"
	NameRuntimeDaemon    = "runtime_daemon"
	NameComposeInstalled = "compose_installed"
)

var versionPattern = regexp.MustCompile(`v?(\d+\.\d+(?:\.\d+)?)`)

// RuntimeInstalled checks that the runtime binary is on PATH and answers
// `<binary> --version`.
func RuntimeInstalled(env Env, binary string, timeout time.Duration) preflight.Probe {
	return preflight.Probe{
		Name: NameRuntimeInstalled,
		Policy: preflight.Policy{
			Rule: preflight.RuleRequired,
			Hint: fmt.Sprintf("install %s or set runtime.binary in .readyctl.yaml", binary),
		},
		Measure: func(ctx context.Context) (preflight.Measurement, error) {
			path, err := env.LookPath(binary)
			if err != nil {
				return preflight.Presence(false, binary+" not found on PATH"), nil
			}

			stdout, stderr, code, err := env.run(ctx, timeout, path, "--version")
			if unresponsive(ctx, err) {
				return preflight.Presence(false, fmt.Sprintf("%s --version did not respond within %s", binary, timeout)), nil
			}
			if err != nil {
				return preflight.Measurement{}, err
			}
			if code != 0 {
				return preflight.Presence(false, fmt.Sprintf("%s --version exited with status %d: %s",
					binary, code, firstLine(stderr))), nil
			}

			note := path
			if v := firstLine(stdout); v != "" {
				note = fmt.Sprintf("%s (%s)", v, path)
			}
			return preflight.Presence(true, note), nil
		},
	}
}

// RuntimeDaemon checks that the runtime daemon answers `<binary> info`.
func RuntimeDaemon(env Env, binary string, timeout time.Duration) preflight.Probe {
	return preflight.Probe{
		Name: NameRuntimeDaemon,
		Policy: preflight.Policy{
			Rule: preflight.RuleRequired,
			Hint: fmt.Sprintf("start the %s daemon (for example 'sudo systemctl start %s')", binary, binary),
		},
		Measure: func(ctx context.Context) (preflight.Measurement, error) {
			path, err := env.LookPath(binary)
			if err != nil {
				return preflight.Presence(false, binary+" not installed"), nil
			}

			_, stderr, code, err := env.run(ctx, timeout, path, "info")
			if unresponsive(ctx, err) {
				return preflight.Presence(false, fmt.Sprintf("%s info did not respond within %s", binary, timeout)), nil
			}
			if err != nil {
				return preflight.Measurement{}, err
			}
			if code != 0 {
				reason := firstLine(stderr)
				if reason == "" {
					reason = fmt.Sprintf("exit status %d", code)
				}
				return preflight.Presence(false, "daemon not responding: "+reason), nil
			}
			return preflight.Presence(true, "daemon responding"), nil
		},
	}
}

// ComposeInstalled measures the compose version, trying the
// `<binary> compose` plugin first and a standalone docker-compose second.
func ComposeInstalled(env Env, binary, required, recommended string, timeout time.Duration) preflight.Probe {
	return preflight.Probe{
		Name: NameComposeInstalled,
		Policy: preflight.Policy{
			Rule:               preflight.RuleThreshold,
			RequiredVersion:    required,
			RecommendedVersion: recommended,
			Hint:               "install or upgrade the Docker Compose v2 plugin",
		},
		Measure: func(ctx context.Context) (preflight.Measurement, error) {
			if path, err := env.LookPath(binary); err == nil {
				stdout, _, code, err := env.run(ctx, timeout, path, "compose", "version", "--short")
				if unresponsive(ctx, err) {
					return preflight.Version("", fmt.Sprintf("(%s compose did not respond within %s)", binary, timeout)), nil
				}
				if err != nil {
					return preflight.Measurement{}, err
				}
				if code == 0 {
					return composeVersion(stdout, binary+" compose"), nil
				}
			}

			if path, err := env.LookPath("docker-compose"); err == nil {
				stdout, _, code, err := env.run(ctx, timeout, path, "version", "--short")
				if unresponsive(ctx, err) {
					return preflight.Version("", fmt.Sprintf("(docker-compose did not respond within %s)", timeout)), nil
				}
				if err != nil {
					return preflight.Measurement{}, err
				}
				if code == 0 {
					return composeVersion(stdout, "docker-compose"), nil
				}
			}

			return preflight.Version("", fmt.Sprintf("(tried '%s compose' and docker-compose)", binary)), nil
		},
	}
}

// unresponsive reports whether a command hit its own timeout while the
// caller's context is still live. A hung required dependency is absent.
func unresponsive(ctx context.Context, err error) bool {
	return errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil
}

// composeVersion extracts a dotted version from command output.
// Output without one is kept verbatim and classifies as unrecognized.
func composeVersion(output, via string) preflight.Measurement {
	line := firstLine(output)
	if m := versionPattern.FindStringSubmatch(line); m != nil {
		return preflight.Version(m[1], "via "+via)
	}
	return preflight.Version(strings.TrimSpace(line), "via "+via)
}
