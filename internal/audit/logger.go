// Package audit records security-relevant events: successful
// authentications and administrative credential changes.
package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"keai-wms/backend/internal/audit/domain"
	auditrepo "keai-wms/backend/internal/audit/repository"
	"keai-wms/backend/internal/telemetry"
)

// Logger writes a single audit event per call. LogEvent is best-effort:
// failures are logged and do not affect the caller.
type Logger interface {
	LogEvent(ctx context.Context, accountID, kind, metadata string)
}

// EventLogger implements Logger using the audit repository and an optional
// telemetry emitter.
type EventLogger struct {
	repo    auditrepo.Repository
	emitter telemetry.EventEmitter
}

// NewLogger returns a Logger that persists to repo and mirrors events to
// emitter. Either may be nil; a nil repo skips persistence, a nil emitter
// skips telemetry.
func NewLogger(repo auditrepo.Repository, emitter telemetry.EventEmitter) *EventLogger {
	return &EventLogger{repo: repo, emitter: emitter}
}

// LogEvent writes one audit event. Best-effort: errors are logged and not
// returned.
func (l *EventLogger) LogEvent(ctx context.Context, accountID, kind, metadata string) {
	now := time.Now().UTC()
	if l.repo != nil {
		e := &domain.Event{
			ID:        uuid.New().String(),
			AccountID: accountID,
			Kind:      kind,
			Metadata:  metadata,
			CreatedAt: now,
		}
		if err := l.repo.Create(ctx, e); err != nil {
			log.Printf("audit: failed to record %s for %s: %v", kind, accountID, err)
		}
	}
	if l.emitter != nil {
		ev := &telemetry.Event{AccountID: accountID, Kind: kind, Metadata: metadata, CreatedAt: now}
		if err := l.emitter.Emit(ctx, ev); err != nil {
			log.Printf("audit: failed to emit %s for %s: %v", kind, accountID, err)
		}
	}
}
