// Package telemetry defines the auth service's telemetry event shape and the
// emitter contract used to export it.
package telemetry

import (
	"context"
	"time"
)

// Event is one telemetry event (request-scoped, optional user/session).
type Event struct {
	UserID    int64  // 0 if not authenticated
	SessionID string // empty if not authenticated
	EventType string
	Source    string
	Metadata  []byte // JSON
	CreatedAt time.Time
}

// EventEmitter emits telemetry events (e.g. to OTel Logs). Best-effort;
// callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *Event) error
}
