package probe

import (
	"context"
	"net"
	"os"
	"time"

	"github.com/cli/safeexec"
	"github.com/spf13/afero"

	rcerrors "github.com/Aman-CERP/readyctl/internal/errors"
	"github.com/Aman-CERP/readyctl/internal/hostmetrics"
)

// Dialer opens network connections. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Env is everything a probe may touch on the host.
type Env struct {
	Metrics  hostmetrics.Metrics
	Runner   CommandRunner
	Fs       afero.Fs
	Dialer   Dialer
	// LookPath resolves a binary on PATH, never from the working directory.
	LookPath func(file string) (string, error)
	// Euid returns the effective user id, or -1 where there is none.
	Euid func() int
	// TempDir is the scratch directory used when none is configured.
	TempDir string
	// Retry is the backoff used by reachability probes. MaxRetries is
	// taken from the network configuration.
	Retry rcerrors.RetryConfig
}

// DefaultEnv returns an Env backed by the real host.
func DefaultEnv() Env {
	return Env{
		Metrics:  hostmetrics.New(),
		Runner:   ExecRunner{},
		Fs:       afero.NewOsFs(),
		Dialer:   &net.Dialer{KeepAlive: -1},
		LookPath: safeexec.LookPath,
		Euid:     os.Geteuid,
		TempDir:  os.TempDir(),
		Retry:    rcerrors.DefaultRetryConfig(),
	}
}

// run executes a command bounded by timeout.
func (e Env) run(ctx context.Context, timeout time.Duration, name string, args ...string) (string, string, int, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return e.Runner.Run(ctx, name, args...)
}
