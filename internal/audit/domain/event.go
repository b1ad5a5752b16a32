package domain

import "time"

// Event represents an audit event: who, what kind, when.
type Event struct {
	ID        string
	AccountID string
	Kind      string
	Metadata  string
	CreatedAt time.Time
}

// Event kinds emitted by the login core.
const (
	KindAuthSuccess       = "authentication.success"
	KindAccountCreated    = "account.created"
	KindAccountUpdated    = "account.updated"
	KindPasswordReset     = "password.reset"
	KindSessionIdleNotice = "session.idle_notice"
	KindSessionTimeout    = "session.timeout"
)
