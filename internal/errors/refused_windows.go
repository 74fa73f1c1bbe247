//go:build windows

package errors

import (
	stderrors "errors"
	"syscall"

	"golang.org/x/sys/windows"
)

// isConnRefused matches Winsock's refusal, which the net package reports
// as WSAECONNREFUSED rather than the ECONNREFUSED compatibility constant.
func isConnRefused(err error) bool {
	return stderrors.Is(err, windows.WSAECONNREFUSED) || stderrors.Is(err, syscall.ECONNREFUSED)
}
