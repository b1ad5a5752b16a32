package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Handle is an established session: the account it belongs to and its idle
// monitor. The monitor owns the last-activity clock.
type Handle struct {
	ID        string
	AccountID string
	CreatedAt time.Time
	monitor   *IdleMonitor
}

// Registry tracks active sessions and enforces one monitor per session.
// Starting a session for a given handle always stops any prior monitor
// before creating the next, so stale timers never fire after a re-login.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Handle
	timeout  time.Duration
	poll     time.Duration
	// onExpired is called with (sessionID, accountID) after a session times
	// out, once the session is already removed.
	onExpired func(sessionID, accountID string)
}

// NewRegistry returns a Registry creating monitors with the given timeout
// and poll interval. onExpired may be nil.
func NewRegistry(timeout, poll time.Duration, onExpired func(sessionID, accountID string)) *Registry {
	return &Registry{
		sessions:  make(map[string]*Handle),
		timeout:   timeout,
		poll:      poll,
		onExpired: onExpired,
	}
}

// Start establishes a session for the account and returns its handle.
// notify is the one-time idle notice hook, called with the session and
// account IDs when the idle threshold is crossed; may be nil.
func (r *Registry) Start(accountID string, notify func(sessionID, accountID string)) *Handle {
	h := &Handle{
		ID:        uuid.New().String(),
		AccountID: accountID,
		CreatedAt: time.Now().UTC(),
	}
	var notice func()
	if notify != nil {
		notice = func() { notify(h.ID, h.AccountID) }
	}
	expire := func() {
		r.remove(h.ID)
		if r.onExpired != nil {
			r.onExpired(h.ID, h.AccountID)
		}
	}
	h.monitor = NewIdleMonitor(r.timeout, r.poll, notice, expire)

	r.mu.Lock()
	r.sessions[h.ID] = h
	r.mu.Unlock()
	return h
}

// Get returns the session handle, or nil if the session is gone (logged out
// or expired).
func (r *Registry) Get(sessionID string) *Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[sessionID]
}

// Touch records activity on the session. Returns false if the session is
// gone, which callers surface as an expired session.
func (r *Registry) Touch(sessionID string) bool {
	h := r.Get(sessionID)
	if h == nil {
		return false
	}
	h.monitor.Touch()
	return true
}

// Stop tears the session down without notice (explicit logout). Safe to
// call for unknown sessions.
func (r *Registry) Stop(sessionID string) {
	h := r.Get(sessionID)
	if h == nil {
		return
	}
	h.monitor.Stop()
	r.remove(sessionID)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) remove(sessionID string) {
	r.mu.Lock()
	delete(r.sessions, sessionID)
	r.mu.Unlock()
}
