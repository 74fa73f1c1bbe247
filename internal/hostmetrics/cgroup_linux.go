//go:build linux

package hostmetrics

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/afero"
)

const cgroupV2CPUMax = "/sys/fs/cgroup/cpu.max"

// cpuQuota returns the CPU quota in cores from cgroup v2 cpu.max.
// ok is false when there is no cgroup v2 hierarchy or no quota is set.
func cpuQuota(fsys afero.Fs) (cores float64, ok bool, err error) {
	data, err := afero.ReadFile(fsys, cgroupV2CPUMax)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("read %s: %w", cgroupV2CPUMax, err)
	}
	return parseCPUMax(string(data))
}
