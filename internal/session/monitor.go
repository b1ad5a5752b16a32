// Package session enforces idle expiry on authenticated sessions. Each
// session owns one IdleMonitor; a Registry guarantees the one-monitor-per-
// session invariant.
package session

import (
	"sync"
	"time"
)

// State is the idle monitor's lifecycle state.
type State int

const (
	// StateActive means the session is live and the recurring idle check runs.
	StateActive State = iota
	// StateExpiredPendingNotify means the idle threshold was crossed and the
	// one-time notice is being delivered.
	StateExpiredPendingNotify
	// StateTerminated means the monitor is done: expired, or stopped by an
	// explicit logout. No further checks fire.
	StateTerminated
)

const (
	// DefaultTimeout is the idle duration after which a session expires.
	DefaultTimeout = 300 * time.Second
	// DefaultPollInterval is how often the idle check runs.
	DefaultPollInterval = time.Second
)

// IdleMonitor watches a single session's activity clock and tears the
// session down after a period with no observed activity. The notify hook
// fires once when the threshold is crossed; onTimeout fires once afterwards
// and returns control to the pre-authentication entry point.
type IdleMonitor struct {
	mu        sync.Mutex
	state     State
	last      time.Time
	timeout   time.Duration
	poll      time.Duration
	notify    func()
	onTimeout func()
	timer     *time.Timer
	nowF      func() time.Time
}

// NewIdleMonitor returns a monitor in StateActive with the idle clock based
// at now and the first check scheduled. notify and onTimeout may be nil.
// Non-positive timeout or poll fall back to the defaults.
func NewIdleMonitor(timeout, poll time.Duration, notify, onTimeout func()) *IdleMonitor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	m := &IdleMonitor{
		state:     StateActive,
		timeout:   timeout,
		poll:      poll,
		notify:    notify,
		onTimeout: onTimeout,
		nowF:      time.Now,
	}
	m.last = m.nowF()
	m.timer = time.AfterFunc(m.poll, m.tick)
	return m
}

// State returns the monitor's current state.
func (m *IdleMonitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Touch records observed user activity, re-basing the idle clock. Only
// meaningful in StateActive; a no-op otherwise.
func (m *IdleMonitor) Touch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateActive {
		return
	}
	m.last = m.nowF()
}

// ResetNow re-bases the idle clock, identical to Touch. Kept as a separate
// name for callers that reset programmatically rather than from an input
// event.
func (m *IdleMonitor) ResetNow() {
	m.Touch()
}

// Stop terminates the monitor without notice (explicit logout) and cancels
// the pending check so no timer fires after teardown. Safe to call from any
// state, any number of times.
func (m *IdleMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateTerminated {
		return
	}
	m.state = StateTerminated
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// tick runs one idle check. If the threshold is crossed it walks the
// Active → ExpiredPendingNotify → Terminated path, invoking notify and then
// onTimeout exactly once, outside the lock. Otherwise it reschedules itself.
func (m *IdleMonitor) tick() {
	m.mu.Lock()
	if m.state != StateActive {
		m.mu.Unlock()
		return
	}
	if m.nowF().Sub(m.last) >= m.timeout {
		m.state = StateExpiredPendingNotify
		m.timer = nil
		notify := m.notify
		onTimeout := m.onTimeout
		m.mu.Unlock()

		if notify != nil {
			notify()
		}

		m.mu.Lock()
		m.state = StateTerminated
		m.mu.Unlock()

		if onTimeout != nil {
			onTimeout()
		}
		return
	}
	m.timer = time.AfterFunc(m.poll, m.tick)
	m.mu.Unlock()
}
