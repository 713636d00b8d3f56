package authclient

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

const (
	eventLoginSuccess           = "login_success"
	eventLoginFailure           = "login_failure"
	eventRegisterSuccess        = "register_success"
	eventRegisterFailure        = "register_failure"
	eventVerifySuccess          = "verify_success"
	eventVerifyFailure          = "verify_failure"
	eventLogout                 = "logout"
	eventSessionInvalidated     = "session_invalidated"
	eventUserUpdated            = "user_updated"
	eventRequestRetry           = "request_retry"
	eventPasswordResetRequested = "password_reset_requested"
	eventPasswordResetConfirmed = "password_reset_confirmed"
)

// SessionEvent is a structured record of a session lifecycle transition or a
// transport anomaly.
type SessionEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	Route     string            `json:"route,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	UserID    string            `json:"user_id,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// EventSink receives [SessionEvent] values from the manager's dispatcher.
type EventSink interface {
	Emit(ctx context.Context, event SessionEvent)
}

// NoOpSink drops session events.
type NoOpSink struct{}

// Emit describes the emit operation and its observable behavior.
//
// Emit does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (NoOpSink) Emit(context.Context, SessionEvent) {}

// ChannelSink writes session events into a buffered channel.
type ChannelSink struct {
	events chan SessionEvent
}

// NewChannelSink describes the newchannelsink operation and its observable behavior.
//
// NewChannelSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan SessionEvent, buffer),
	}
}

// Emit describes the emit operation and its observable behavior.
//
// Emit does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *ChannelSink) Emit(ctx context.Context, event SessionEvent) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

// Events describes the events operation and its observable behavior.
//
// Events does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *ChannelSink) Events() <-chan SessionEvent {
	return s.events
}

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

// NewJSONWriterSink describes the newjsonwritersink operation and its observable behavior.
//
// NewJSONWriterSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

// Emit describes the emit operation and its observable behavior.
//
// Emit does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *JSONWriterSink) Emit(ctx context.Context, event SessionEvent) {
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
