//go:build !linux && !darwin && !freebsd && !windows

package hostmetrics

import "github.com/Aman-CERP/readyctl/internal/preflight"

func diskFree(string) (uint64, error) {
	return 0, preflight.ErrUnsupported
}

func fileDescriptorLimit() (uint64, error) {
	return 0, preflight.ErrUnsupported
}
