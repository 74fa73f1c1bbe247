//go:build windows

package hostmetrics

import (
	"golang.org/x/sys/windows"

	"github.com/Aman-CERP/readyctl/internal/preflight"
)

// diskFree returns the bytes available to the caller. An empty path
// defaults to C:\.
func diskFree(path string) (uint64, error) {
	if path == "" {
		path = `C:\`
	}
	pathPtr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, err
	}
	var availBytes, totalBytes, freeBytes uint64
	if err := windows.GetDiskFreeSpaceEx(pathPtr, &availBytes, &totalBytes, &freeBytes); err != nil {
		return 0, err
	}
	return availBytes, nil
}

// Windows has no per-process descriptor rlimit.
func fileDescriptorLimit() (uint64, error) {
	return 0, preflight.ErrUnsupported
}
