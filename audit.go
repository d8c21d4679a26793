package portalauth

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

const (
	auditEventLoginSuccess   = "login_success"
	auditEventLoginFailure   = "login_failure"
	auditEventVerifySuccess  = "otp_verify_success"
	auditEventVerifyFailure  = "otp_verify_failure"
	auditEventRegisterOwner  = "owner_registered"
	auditEventAgencyCreated  = "agency_created"
	auditEventAgencyFailure  = "agency_creation_failure"
	auditEventLogout         = "logout"
	auditEventSessionExpired = "session_expired"
	auditEventRoleOverride   = "role_override"
	auditEventStaleDiscarded = "stale_login_discarded"
)

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent struct {
	EventID   string            `json:"event_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	UserID    string            `json:"user_id,omitempty"`
	AgencyID  string            `json:"agency_id,omitempty"`
	Portal    string            `json:"portal,omitempty"`
	IP        string            `json:"ip,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink interface {
	Emit(ctx context.Context, event AuditEvent)
}

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink struct{}

// Emit implements [AuditSink].
func (NoOpSink) Emit(context.Context, AuditEvent) {}

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink struct {
	events chan AuditEvent
}

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan AuditEvent, buffer),
	}
}

// Emit implements [AuditSink].
func (s *ChannelSink) Emit(ctx context.Context, event AuditEvent) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

// Events exposes the sink's channel for consumers.
func (s *ChannelSink) Events() <-chan AuditEvent {
	return s.events
}

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer], one per line.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

// Emit implements [AuditSink].
func (s *JSONWriterSink) Emit(_ context.Context, event AuditEvent) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}
