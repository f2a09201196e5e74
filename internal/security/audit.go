package security

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// AuditEventType represents the kinds of gateway events recorded on the
// audit trail.
type AuditEventType string

const (
	ToolInvocation    AuditEventType = "tool_invocation"
	RateLimitExceeded AuditEventType = "rate_limit_exceeded"
	ValidationFailure AuditEventType = "validation_failure"
	ProviderFailure   AuditEventType = "provider_failure"
)

// AuditEvent is one recorded gateway event.
type AuditEvent struct {
	ID        string                 `json:"id"`
	Timestamp time.Time              `json:"timestamp"`
	EventType AuditEventType         `json:"event_type"`
	Identity  string                 `json:"identity"`
	Tool      string                 `json:"tool,omitempty"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Severity  string                 `json:"severity"`
}

// AuditConfig holds audit trail configuration.
type AuditConfig struct {
	Enabled       bool          `yaml:"enabled"`
	BufferSize    int           `yaml:"buffer_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// AuditLogger records tool invocations and denials on a buffered
// channel and flushes them to the structured log asynchronously, so
// auditing never blocks a tool call. When the buffer is full events
// are dropped with a warning.
type AuditLogger struct {
	config *AuditConfig
	logger *logrus.Logger

	buffer   chan *AuditEvent
	stopChan chan struct{}
	wg       sync.WaitGroup

	mu         sync.RWMutex
	eventCount int64
	stopped    bool
}

// NewAuditLogger creates an audit logger and, when enabled, starts its
// flush goroutine.
func NewAuditLogger(config *AuditConfig, logger *logrus.Logger) *AuditLogger {
	if config.BufferSize == 0 {
		config.BufferSize = 1000
	}
	if config.FlushInterval == 0 {
		config.FlushInterval = 10 * time.Second
	}

	a := &AuditLogger{
		config:   config,
		logger:   logger,
		buffer:   make(chan *AuditEvent, config.BufferSize),
		stopChan: make(chan struct{}),
	}

	if config.Enabled {
		a.wg.Add(1)
		go a.eventProcessor()
	}

	return a
}

// LogEvent records a gateway audit event.
func (a *AuditLogger) LogEvent(eventType AuditEventType, identity, tool, message string, details map[string]interface{}) {
	a.mu.RLock()
	enabled := a.config.Enabled && !a.stopped
	a.mu.RUnlock()
	if !enabled {
		return
	}

	event := &AuditEvent{
		ID:        fmt.Sprintf("audit_%d_%d", time.Now().Unix(), time.Now().Nanosecond()),
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Identity:  identity,
		Tool:      tool,
		Message:   message,
		Details:   details,
		Severity:  severityFor(eventType),
	}

	select {
	case a.buffer <- event:
		a.mu.Lock()
		a.eventCount++
		a.mu.Unlock()
	default:
		a.logger.Warn("Audit buffer full, dropping event")
	}
}

// EventCount returns the number of events accepted onto the trail.
func (a *AuditLogger) EventCount() int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.eventCount
}

// Stop stops the flush goroutine and drains buffered events.
func (a *AuditLogger) Stop() {
	a.mu.Lock()
	if !a.config.Enabled || a.stopped {
		a.mu.Unlock()
		return
	}
	a.stopped = true
	a.mu.Unlock()

	close(a.stopChan)
	a.wg.Wait()
	close(a.buffer)

	for event := range a.buffer {
		a.writeEvent(event)
	}
}

func (a *AuditLogger) eventProcessor() {
	defer a.wg.Done()

	ticker := time.NewTicker(a.config.FlushInterval)
	defer ticker.Stop()

	events := make([]*AuditEvent, 0, 100)

	for {
		select {
		case event := <-a.buffer:
			events = append(events, event)
			if len(events) >= 100 {
				a.flushEvents(events)
				events = events[:0]
			}

		case <-ticker.C:
			if len(events) > 0 {
				a.flushEvents(events)
				events = events[:0]
			}

		case <-a.stopChan:
			if len(events) > 0 {
				a.flushEvents(events)
			}
			return
		}
	}
}

func (a *AuditLogger) flushEvents(events []*AuditEvent) {
	for _, event := range events {
		a.writeEvent(event)
	}
}

func (a *AuditLogger) writeEvent(event *AuditEvent) {
	fields := logrus.Fields{
		"audit_event": true,
		"event_type":  event.EventType,
		"event_id":    event.ID,
		"identity":    event.Identity,
		"tool":        event.Tool,
		"severity":    event.Severity,
		"timestamp":   event.Timestamp,
	}
	for key, value := range event.Details {
		fields[fmt.Sprintf("detail_%s", key)] = value
	}

	entry := a.logger.WithFields(fields)
	switch event.Severity {
	case "high":
		entry.Warn(event.Message)
	case "medium":
		entry.Info(event.Message)
	default:
		entry.Debug(event.Message)
	}
}

func severityFor(eventType AuditEventType) string {
	switch eventType {
	case ProviderFailure:
		return "high"
	case RateLimitExceeded, ValidationFailure:
		return "medium"
	default:
		return "low"
	}
}
