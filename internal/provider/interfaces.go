package provider

import (
	"context"
	"fmt"

	"github.com/tributary-ai/route-gateway/internal/types"
)

// RouteProvider is the capability the gateway requires of an upstream
// mapping provider: resolve two location strings plus options into a
// single route description, or fail with a classified Error.
type RouteProvider interface {
	FetchRoute(ctx context.Context, req *types.RouteRequest) (*types.Route, error)
	GetProviderName() string
}

// ErrorKind classifies upstream failures. The dispatcher only ever
// inspects these kinds, never provider-native status codes.
type ErrorKind string

const (
	ErrNoResults        ErrorKind = "no_results"
	ErrLocationNotFound ErrorKind = "location_not_found"
	ErrQuotaExceeded    ErrorKind = "quota_exceeded"
	ErrRequestDenied    ErrorKind = "request_denied"
	ErrUnknown          ErrorKind = "unknown"
)

// Error is a classified upstream failure.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider error (%s): %s", e.Kind, e.Message)
}

// NewError builds a classified provider error.
func NewError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
