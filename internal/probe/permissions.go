package probe

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/afero"

	rcerrors "github.com/Aman-CERP/readyctl/internal/errors"
	"github.com/Aman-CERP/readyctl/internal/preflight"
)

// Probe names for the permissions category.
const (
	NameScratchWrite        = "scratch_write"
	NameRuntimeUnprivileged = "runtime_unprivileged"
)

var scratchPayload = []byte("readyctl scratch probe\n")

// ScratchWrite creates, writes, reads back and removes a temporary file in
// dir. The file is removed on every exit path.
func ScratchWrite(env Env, dir string) preflight.Probe {
	if dir == "" {
		dir = env.TempDir
	}
	return preflight.Probe{
		Name: NameScratchWrite,
		Policy: preflight.Policy{
			Rule: preflight.RuleRequired,
			Hint: fmt.Sprintf("make %s writable or set permissions.scratch_dir", dir),
		},
		Measure: func(ctx context.Context) (preflight.Measurement, error) {
			if err := ctx.Err(); err != nil {
				return preflight.Measurement{}, err
			}

			f, err := afero.TempFile(env.Fs, dir, "readyctl-scratch-*")
			if err != nil {
				if denied(err) {
					return preflight.Presence(false, "cannot create files in "+dir), nil
				}
				return preflight.Measurement{}, rcerrors.New(rcerrors.ErrCodeFilePermission,
					"cannot create scratch file", err).WithDetail("dir", dir)
			}
			name := f.Name()
			defer func() {
				_ = f.Close()
				_ = env.Fs.Remove(name)
			}()

			if _, err := f.Write(scratchPayload); err != nil {
				if denied(err) {
					return preflight.Presence(false, "cannot write to "+dir), nil
				}
				return preflight.Measurement{}, fmt.Errorf("write scratch file: %w", err)
			}
			if err := f.Close(); err != nil {
				return preflight.Measurement{}, fmt.Errorf("close scratch file: %w", err)
			}

			got, err := afero.ReadFile(env.Fs, name)
			if err != nil {
				return preflight.Measurement{}, fmt.Errorf("read scratch file: %w", err)
			}
			if !bytes.Equal(got, scratchPayload) {
				return preflight.Presence(false, "scratch file read back corrupted in "+dir), nil
			}
			return preflight.Presence(true, dir+" is writable"), nil
		},
	}
}

// denied reports whether err means the directory refuses writes.
func denied(err error) bool {
	return stderrors.Is(err, fs.ErrPermission) ||
		stderrors.Is(err, fs.ErrNotExist) ||
		strings.Contains(strings.ToLower(err.Error()), "read-only file system")
}

// RuntimeUnprivileged checks that the runtime can be used without sudo.
// A daemon that is down says nothing about privileges and is reported as
// a probe error.
func RuntimeUnprivileged(env Env, binary string, timeout time.Duration) preflight.Probe {
	return preflight.Probe{
		Name: NameRuntimeUnprivileged,
		Policy: preflight.Policy{
			Rule: preflight.RuleRequired,
			Hint: fmt.Sprintf("add your user to the %s group or configure rootless mode", binary),
		},
		Measure: func(ctx context.Context) (preflight.Measurement, error) {
			if env.Euid != nil && env.Euid() == 0 {
				return preflight.Presence(true, "running as root"), nil
			}

			path, err := env.LookPath(binary)
			if err != nil {
				return preflight.Measurement{}, fmt.Errorf("%s not found on PATH", binary)
			}

			_, stderr, code, err := env.run(ctx, timeout, path, "info")
			if err != nil {
				return preflight.Measurement{}, err
			}
			if code == 0 {
				return preflight.Presence(true, binary+" usable without elevated privileges"), nil
			}
			if strings.Contains(strings.ToLower(stderr), "permission denied") {
				return preflight.Presence(false, binary+" requires elevated privileges: "+firstLine(stderr)), nil
			}
			return preflight.Measurement{}, fmt.Errorf("%s info exited with status %d: %s", binary, code, firstLine(stderr))
		},
	}
}
