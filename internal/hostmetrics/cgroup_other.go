//go:build !linux

package hostmetrics

import "github.com/spf13/afero"

// cpuQuota reports no quota: only Linux exposes one through cgroups.
func cpuQuota(afero.Fs) (float64, bool, error) {
	return 0, false, nil
}
