//go:build !windows

package errors

import (
	stderrors "errors"
	"syscall"
)

func isConnRefused(err error) bool {
	return stderrors.Is(err, syscall.ECONNREFUSED)
}
