package dispatch

import (
	"errors"
	"fmt"

	"github.com/tributary-ai/route-gateway/internal/provider"
	"github.com/tributary-ai/route-gateway/internal/routing"
	"github.com/tributary-ai/route-gateway/internal/types"
)

// ErrorCode identifies a dispatcher failure class in the output
// envelope.
type ErrorCode string

const (
	CodeRateLimitExceeded ErrorCode = "rate_limit_exceeded"
	CodeInvalidArgument   ErrorCode = "invalid_argument"
	CodeUnknownTool       ErrorCode = "unknown_tool"
	CodeInvalidInput      ErrorCode = "invalid_input"
	CodeInternal          ErrorCode = "internal_error"
)

// Error is a dispatcher-level failure.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// toToolError maps any handler failure onto the stable envelope error.
// Provider errors keep their kind as a provider_ prefixed code so
// callers can distinguish quota exhaustion from bad locations without
// parsing messages.
func toToolError(err error) *types.ToolError {
	var dispatchErr *Error
	if errors.As(err, &dispatchErr) {
		return &types.ToolError{Code: string(dispatchErr.Code), Message: dispatchErr.Message}
	}

	var providerErr *provider.Error
	if errors.As(err, &providerErr) {
		return &types.ToolError{Code: "provider_" + string(providerErr.Kind), Message: providerErr.Message}
	}

	var inputErr *routing.InvalidInputError
	if errors.As(err, &inputErr) {
		return &types.ToolError{Code: string(CodeInvalidInput), Message: inputErr.Message}
	}

	return &types.ToolError{Code: string(CodeInternal), Message: err.Error()}
}
