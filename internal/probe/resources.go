package probe

import (
	"context"
	"fmt"

	"github.com/Aman-CERP/readyctl/internal/preflight"
)

// Probe names for the resources category.
const (
	NameDiskFree        = "disk_free"
	NameMemoryAvailable = "memory_available"
	NameCPUCores        = "cpu_cores"
	NameFileDescriptors = "file_descriptors"
)

// DiskFree measures free space on the filesystem holding path.
// An empty path means the working directory.
func DiskFree(env Env, path string, required, recommended uint64) preflight.Probe {
	if path == "" {
		path = "."
	}
	return preflight.Probe{
		Name: NameDiskFree,
		Policy: preflight.Policy{
			Rule:        preflight.RuleThreshold,
			Required:    float64(required),
			Recommended: float64(recommended),
			Hint:        fmt.Sprintf("free up space on %s or point resources.disk_path at a larger volume", path),
		},
		Measure: func(ctx context.Context) (preflight.Measurement, error) {
			free, err := env.Metrics.DiskFree(ctx, path)
			if err != nil {
				return preflight.Measurement{}, err
			}
			m := preflight.Quantity(float64(free), preflight.UnitBytes)
			m.Note = "free on " + path
			return m, nil
		},
	}
}

// MemoryAvailable measures memory available for new workloads.
func MemoryAvailable(env Env, required, recommended uint64) preflight.Probe {
	return preflight.Probe{
		Name: NameMemoryAvailable,
		Policy: preflight.Policy{
			Rule:        preflight.RuleThreshold,
			Required:    float64(required),
			Recommended: float64(recommended),
			Hint:        "stop memory-hungry processes or add memory to this host",
		},
		Measure: func(ctx context.Context) (preflight.Measurement, error) {
			avail, err := env.Metrics.MemoryAvailable(ctx)
			if err != nil {
				return preflight.Measurement{}, err
			}
			m := preflight.Quantity(float64(avail), preflight.UnitBytes)
			m.Note = "available"
			return m, nil
		},
	}
}

// CPUCores measures usable CPU cores. An unreadable count is a probe
// error and reports as Warn, never as a pass.
func CPUCores(env Env, required, recommended float64) preflight.Probe {
	return preflight.Probe{
		Name: NameCPUCores,
		Policy: preflight.Policy{
			Rule:        preflight.RuleThreshold,
			Required:    required,
			Recommended: recommended,
			Hint:        "allocate more CPUs to this host or VM",
		},
		Measure: func(ctx context.Context) (preflight.Measurement, error) {
			cores, err := env.Metrics.CPUCores(ctx)
			if err != nil {
				return preflight.Measurement{}, err
			}
			return preflight.Quantity(cores, preflight.UnitCores), nil
		},
	}
}

// FileDescriptors measures the soft open-file limit.
func FileDescriptors(env Env, required, recommended int) preflight.Probe {
	return preflight.Probe{
		Name: NameFileDescriptors,
		Policy: preflight.Policy{
			Rule:        preflight.RuleThreshold,
			Required:    float64(required),
			Recommended: float64(recommended),
			Hint:        fmt.Sprintf("raise the open file limit (ulimit -n %d)", max(required, recommended)),
		},
		Measure: func(ctx context.Context) (preflight.Measurement, error) {
			limit, err := env.Metrics.FileDescriptorLimit(ctx)
			if err != nil {
				return preflight.Measurement{}, err
			}
			m := preflight.Quantity(float64(limit), preflight.UnitCount)
			m.Note = "open files (soft limit)"
			return m, nil
		},
	}
}
