package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"syscall"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	rcerrors "github.com/Aman-CERP/readyctl/internal/errors"
	"github.com/Aman-CERP/readyctl/internal/preflight"
)

type response struct {
	stdout string
	stderr string
	code   int
	err    error
}

// fakeRunner answers commands keyed by "name arg1 arg2".
type fakeRunner struct {
	mu        sync.Mutex
	responses map[string]response
	calls     []string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (string, string, int, error) {
	key := strings.Join(append([]string{name}, args...), " ")
	f.mu.Lock()
	f.calls = append(f.calls, key)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", "", -1, err
	}
	r, ok := f.responses[key]
	if !ok {
		return "", "unknown command: " + key, 127, nil
	}
	return r.stdout, r.stderr, r.code, r.err
}

// lookPath resolves only the listed binaries, to /usr/bin/<name>.
func lookPath(found ...string) func(string) (string, error) {
	return func(file string) (string, error) {
		for _, f := range found {
			if f == file {
				return "/usr/bin/" + file, nil
			}
		}
		return "", fmt.Errorf("exec: %q: executable file not found in $PATH", file)
	}
}

type fakeMetrics struct {
	disk, memory, fds uint64
	cores             float64
	err               error
}

func (f fakeMetrics) OS() string { return "linux" }

func (f fakeMetrics) DiskFree(context.Context, string) (uint64, error) { return f.disk, f.err }

func (f fakeMetrics) MemoryAvailable(context.Context) (uint64, error) { return f.memory, f.err }

func (f fakeMetrics) CPUCores(context.Context) (float64, error) { return f.cores, f.err }

func (f fakeMetrics) FileDescriptorLimit(context.Context) (uint64, error) { return f.fds, f.err }

// fakeDialer fails addresses listed in errs and connects everything else.
type fakeDialer struct {
	mu    sync.Mutex
	errs  map[string]error
	dials map[string]int
}

func (d *fakeDialer) DialContext(ctx context.Context, _, address string) (net.Conn, error) {
	d.mu.Lock()
	if d.dials == nil {
		d.dials = make(map[string]int)
	}
	d.dials[address]++
	d.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := d.errs[address]; ok {
		return nil, err
	}
	client, server := net.Pipe()
	_ = server.Close()
	return client, nil
}

func refused() error {
	return &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}
}

// healthyEnv is a host where everything is in order.
func healthyEnv() Env {
	return Env{
		Metrics: fakeMetrics{disk: 50e9, memory: 16e9, fds: 65536, cores: 8},
		Runner: &fakeRunner{responses: map[string]response{
			"/usr/bin/docker --version":                {stdout: "Docker version 27.3.1, build ce12230\n"},
			"/usr/bin/docker info":                     {stdout: "Server Version: 27.3.1\n"},
			"/usr/bin/docker compose version --short": {stdout: "2.29.7\n"},
		}},
		Fs:       afero.NewMemMapFs(),
		Dialer:   &fakeDialer{errs: map[string]error{"127.0.0.1:80": refused(), "127.0.0.1:443": refused()}},
		LookPath: lookPath("docker", "git"),
		Euid:     func() int { return 1000 },
		TempDir:  "/tmp",
		Retry:    rcerrors.RetryConfig{RetryIf: rcerrors.IsRetryable},
	}
}

// classify measures p and classifies the measurement.
func classify(t *testing.T, p preflight.Probe) (preflight.Severity, string) {
	t.Helper()
	m, err := p.Measure(context.Background())
	require.NoError(t, err)
	return preflight.Classify(m, p.Policy)
}

var errBoom = errors.New("boom")
