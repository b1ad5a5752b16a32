// Package lockout tracks consecutive authentication failures per identity
// and applies a timed lock once a threshold is reached. State is process
// local; a restart clears all lockouts.
package lockout

import (
	"sync"
	"time"
)

const (
	// DefaultThreshold is the number of consecutive failures that sets a lock.
	DefaultThreshold = 5
	// DefaultWindow is how long a lock stays active once set.
	DefaultWindow = 5 * time.Minute
)

type state struct {
	failures    int
	lockedUntil time.Time // zero when never locked
}

// Tracker counts failures and timed locks per normalized identity. Safe for
// concurrent use; each instance owns its own state, so tests and hosts get
// isolated trackers rather than a process-wide singleton.
type Tracker struct {
	mu        sync.Mutex
	states    map[string]*state
	threshold int
	window    time.Duration
	nowF      func() time.Time
}

// NewTracker returns a Tracker with the given threshold and lock window.
// Non-positive arguments fall back to the defaults.
func NewTracker(threshold int, window time.Duration) *Tracker {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Tracker{
		states:    make(map[string]*state),
		threshold: threshold,
		window:    window,
		nowF:      time.Now,
	}
}

// IsLocked reports whether identity has an active lock: a lock timestamp
// exists and the current time is strictly before it.
func (t *Tracker) IsLocked(identity string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.states[identity]
	if !ok || s.lockedUntil.IsZero() {
		return false
	}
	return t.nowF().Before(s.lockedUntil)
}

// RecordFailure increments the failure counter for identity and sets a lock
// once the counter reaches the threshold. The counter survives natural lock
// expiry: only RecordSuccess clears it, so a failure after the lock window
// re-locks immediately rather than granting a fresh run of attempts.
func (t *Tracker) RecordFailure(identity string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.states[identity]
	if !ok {
		s = &state{}
		t.states[identity] = s
	}
	s.failures++
	if s.failures >= t.threshold {
		s.lockedUntil = t.nowF().Add(t.window)
	}
}

// RecordSuccess clears both the failure counter and any lock for identity.
func (t *Tracker) RecordSuccess(identity string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.states, identity)
}

// Failures returns the current failure count for identity. Debug helper.
func (t *Tracker) Failures(identity string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.states[identity]; ok {
		return s.failures
	}
	return 0
}
