// Package mcp exposes the readiness check over the Model Context Protocol.
package mcp

import (
	"context"
	"errors"
	"fmt"

	rcerrors "github.com/Aman-CERP/readyctl/internal/errors"
)

// Custom MCP error codes for readyctl.
const (
	// ErrCodeRunLocked indicates another run holds the host run lock.
	ErrCodeRunLocked = -32001

	// ErrCodeHistoryUnavailable indicates the history database is missing or unreadable.
	ErrCodeHistoryUnavailable = -32002

	// ErrCodeTimeout indicates the request timed out or was canceled.
	ErrCodeTimeout = -32003

	// Standard JSON-RPC error codes.
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// ErrHistoryDisabled is returned by readiness_history when the server has no store.
var ErrHistoryDisabled = errors.New("run history is disabled")

// MCPError represents an MCP protocol error with code and message.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// MapError converts internal errors to MCP errors.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var mcpErr *MCPError
	if errors.As(err, &mcpErr) {
		return mcpErr
	}

	var rcErr *rcerrors.Error
	if errors.As(err, &rcErr) {
		return mapReadyError(rcErr)
	}

	switch {
	case errors.Is(err, ErrHistoryDisabled):
		return &MCPError{
			Code:    ErrCodeHistoryUnavailable,
			Message: "Run history is disabled. Set history.enabled in the config.",
		}
	case errors.Is(err, context.DeadlineExceeded):
		return &MCPError{
			Code:    ErrCodeTimeout,
			Message: "Request timed out.",
		}
	case errors.Is(err, context.Canceled):
		return &MCPError{
			Code:    ErrCodeTimeout,
			Message: "Request was canceled.",
		}
	default:
		return &MCPError{
			Code:    ErrCodeInternalError,
			Message: "Internal server error.",
		}
	}
}

// NewInvalidParamsError creates an error for invalid parameters with a custom message.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{
		Code:    ErrCodeInvalidParams,
		Message: msg,
	}
}

// NewMethodNotFoundError creates an error for unknown tools.
func NewMethodNotFoundError(name string) *MCPError {
	return &MCPError{
		Code:    ErrCodeMethodNotFound,
		Message: fmt.Sprintf("Tool '%s' not found.", name),
	}
}

func mapReadyError(re *rcerrors.Error) *MCPError {
	message := re.Message
	if re.Suggestion != "" {
		message = fmt.Sprintf("%s. %s", re.Message, re.Suggestion)
	}

	switch re.Code {
	case rcerrors.ErrCodeRunLocked:
		return &MCPError{Code: ErrCodeRunLocked, Message: message}
	case rcerrors.ErrCodeHistoryUnavailable:
		return &MCPError{Code: ErrCodeHistoryUnavailable, Message: message}
	}

	switch re.Category {
	case rcerrors.CategoryValidation:
		return &MCPError{Code: ErrCodeInvalidParams, Message: message}
	case rcerrors.CategoryNetwork:
		return &MCPError{Code: ErrCodeTimeout, Message: message}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: message}
	}
}
