package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tributary-ai/route-gateway/internal/provider"
	"github.com/tributary-ai/route-gateway/internal/security"
	"github.com/tributary-ai/route-gateway/internal/types"
)

// Dispatcher routes incoming named tool calls to the correct handler.
// Every call passes the same gates in order: admission, tool lookup,
// argument validation, handler, output shaping. Any gate failure is
// shaped into the uniform result envelope; the transport never sees a
// fault.
type Dispatcher struct {
	provider provider.RouteProvider
	limiter  *security.RateLimiter
	audit    *security.AuditLogger
	logger   *logrus.Logger

	catalog []ToolDefinition
	tools   map[string]*ToolDefinition
}

// NewDispatcher creates a dispatcher over the given provider, limiter
// and audit trail.
func NewDispatcher(routeProvider provider.RouteProvider, limiter *security.RateLimiter, audit *security.AuditLogger, logger *logrus.Logger) *Dispatcher {
	catalog := Catalog()
	tools := make(map[string]*ToolDefinition, len(catalog))
	for i := range catalog {
		tools[catalog[i].Name] = &catalog[i]
	}

	return &Dispatcher{
		provider: routeProvider,
		limiter:  limiter,
		audit:    audit,
		logger:   logger,
		catalog:  catalog,
		tools:    tools,
	}
}

// Tools returns the published tool catalog in order.
func (d *Dispatcher) Tools() []ToolDefinition {
	return d.catalog
}

// Invoke runs one tool call for the given caller identity. The returned
// envelope always carries a success flag, a timestamp and the echoed
// parameters; failures are carried inside it, never returned as errors.
func (d *Dispatcher) Invoke(ctx context.Context, identity, toolName string, args map[string]interface{}) *types.ToolResult {
	start := time.Now()

	result := d.invoke(ctx, identity, toolName, args)
	result.Metadata = types.ToolMetadata{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Tool:       toolName,
		Parameters: args,
	}

	entry := d.logger.WithFields(logrus.Fields{
		"tool":        toolName,
		"identity":    identity,
		"success":     result.Success,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	if result.Success {
		entry.Info("Tool call dispatched")
	} else {
		entry.WithField("error_code", result.Error.Code).Info("Tool call failed")
	}

	return result
}

func (d *Dispatcher) invoke(ctx context.Context, identity, toolName string, args map[string]interface{}) *types.ToolResult {
	// Admission comes before tool lookup: an unknown tool still charges
	// the caller's window.
	if !d.limiter.Admit(identity) {
		d.audit.LogEvent(security.RateLimitExceeded, identity, toolName,
			"tool call denied by rate limiter", nil)
		return failure(newError(CodeRateLimitExceeded,
			"rate limit exceeded for %s; the window resets within the hour", identity))
	}

	tool, exists := d.tools[toolName]
	if !exists {
		d.audit.LogEvent(security.ValidationFailure, identity, toolName, "unknown tool requested", nil)
		return failure(newError(CodeUnknownTool, "unknown tool %q", toolName))
	}

	if err := tool.Schema.VisitJSON(map[string]interface{}(args)); err != nil {
		d.audit.LogEvent(security.ValidationFailure, identity, toolName, err.Error(), nil)
		return failure(newError(CodeInvalidArgument, "invalid arguments: %v", err))
	}

	var (
		payload interface{}
		err     error
	)
	switch toolName {
	case ToolCalculateRoute:
		payload, err = d.handleCalculateRoute(ctx, args)
	case ToolCompareRoutes:
		payload, err = d.handleCompareRoutes(ctx, args)
	case ToolGetLiveTraffic:
		payload, err = d.handleGetLiveTraffic(ctx, args)
	case ToolEstimateCosts:
		payload, err = d.handleEstimateCosts(ctx, args)
	}
	if err != nil {
		d.auditFailure(identity, toolName, err)
		return failure(err)
	}

	d.audit.LogEvent(security.ToolInvocation, identity, toolName, "tool call completed", nil)
	return &types.ToolResult{Success: true, Data: payload}
}

func (d *Dispatcher) auditFailure(identity, toolName string, err error) {
	toolErr := toToolError(err)
	eventType := security.ValidationFailure
	if providerFailed(err) {
		eventType = security.ProviderFailure
	}
	d.audit.LogEvent(eventType, identity, toolName, toolErr.Message,
		map[string]interface{}{"error_code": toolErr.Code})
}

func providerFailed(err error) bool {
	var providerErr *provider.Error
	return errors.As(err, &providerErr)
}

func failure(err error) *types.ToolResult {
	return &types.ToolResult{Success: false, Error: toToolError(err)}
}
