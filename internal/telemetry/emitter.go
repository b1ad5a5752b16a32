// Package telemetry defines the event emitter used to mirror audit events
// to an observability backend.
package telemetry

import (
	"context"
	"time"
)

// Event is a structured security event emitted alongside the audit trail.
type Event struct {
	AccountID string
	Kind      string
	Metadata  string
	CreatedAt time.Time
}

// EventEmitter emits events (e.g. to OTel Logs). Best-effort; callers log
// and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *Event) error
}
