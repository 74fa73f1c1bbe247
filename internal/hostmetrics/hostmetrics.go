// Package hostmetrics reads host capacity figures behind one interface.
// The implementation for the running operating system is chosen by New;
// probes never branch on GOOS themselves.
package hostmetrics

import (
	"context"
	"fmt"
	"runtime"

	"github.com/elastic/go-sysinfo"
	"github.com/spf13/afero"
)

// Metrics is the host capability interface used by resource probes.
// Every method returns an error when the figure cannot be read; callers
// treat that as unknown, not as zero.
type Metrics interface {
	// OS returns the operating system name (runtime.GOOS).
	OS() string
	// DiskFree returns the bytes available to an unprivileged user on the
	// filesystem holding path.
	DiskFree(ctx context.Context, path string) (uint64, error)
	// MemoryAvailable returns the bytes of memory available for new
	// workloads without swapping.
	MemoryAvailable(ctx context.Context) (uint64, error)
	// CPUCores returns the usable CPU cores, honoring a container CPU quota.
	CPUCores(ctx context.Context) (float64, error)
	// FileDescriptorLimit returns the soft limit on open files.
	FileDescriptorLimit(ctx context.Context) (uint64, error)
}

// Host is the Metrics implementation for the running operating system.
type Host struct {
	fs     afero.Fs
	nproc  int
	memory func() (uint64, error)
}

// Option configures a Host.
type Option func(*Host)

// WithFS sets the filesystem used for cgroup reads.
func WithFS(fs afero.Fs) Option {
	return func(h *Host) {
		h.fs = fs
	}
}

// New returns the Metrics implementation for runtime.GOOS.
func New(opts ...Option) *Host {
	h := &Host{
		fs:     afero.NewReadOnlyFs(afero.NewOsFs()),
		nproc:  runtime.NumCPU(),
		memory: sysinfoMemory,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// OS implements Metrics.
func (h *Host) OS() string {
	return runtime.GOOS
}

// DiskFree implements Metrics.
func (h *Host) DiskFree(ctx context.Context, path string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	free, err := diskFree(path)
	if err != nil {
		return 0, fmt.Errorf("disk free for %s: %w", path, err)
	}
	return free, nil
}

// MemoryAvailable implements Metrics.
func (h *Host) MemoryAvailable(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	avail, err := h.memory()
	if err != nil {
		return 0, fmt.Errorf("available memory: %w", err)
	}
	return avail, nil
}

// CPUCores implements Metrics. A CPU quota (cgroup v2 cpu.max on Linux)
// lowers the count below the number of online CPUs.
func (h *Host) CPUCores(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if h.nproc <= 0 {
		return 0, fmt.Errorf("cpu count unavailable")
	}
	cores := float64(h.nproc)
	quota, ok, err := cpuQuota(h.fs)
	if err != nil {
		return 0, fmt.Errorf("cpu quota: %w", err)
	}
	if ok && quota < cores {
		cores = quota
	}
	return cores, nil
}

// FileDescriptorLimit implements Metrics.
func (h *Host) FileDescriptorLimit(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	limit, err := fileDescriptorLimit()
	if err != nil {
		return 0, fmt.Errorf("file descriptor limit: %w", err)
	}
	return limit, nil
}

func sysinfoMemory() (uint64, error) {
	hi, err := sysinfo.Host()
	if err != nil {
		return 0, fmt.Errorf("get host info: %w", err)
	}
	hm, err := hi.Memory()
	if err != nil {
		return 0, fmt.Errorf("get memory info: %w", err)
	}
	return hm.Available, nil
}
