package lockout

import (
	"sync"
	"testing"
	"time"
)

func newTestTracker() (*Tracker, *time.Time) {
	tr := NewTracker(5, 5*time.Minute)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tr.nowF = func() time.Time { return now }
	return tr, &now
}

func TestTracker_LocksAtThreshold(t *testing.T) {
	tr, _ := newTestTracker()
	for i := 0; i < 4; i++ {
		tr.RecordFailure("a@example.com")
		if tr.IsLocked("a@example.com") {
			t.Fatalf("locked after %d failures, want unlocked below threshold", i+1)
		}
	}
	tr.RecordFailure("a@example.com")
	if !tr.IsLocked("a@example.com") {
		t.Fatal("5th failure should set a lock")
	}
}

func TestTracker_LockExpiresNaturally(t *testing.T) {
	tr, now := newTestTracker()
	for i := 0; i < 5; i++ {
		tr.RecordFailure("a@example.com")
	}
	*now = now.Add(5*time.Minute - time.Second)
	if !tr.IsLocked("a@example.com") {
		t.Error("lock should still be active just before the window ends")
	}
	*now = now.Add(2 * time.Second)
	if tr.IsLocked("a@example.com") {
		t.Error("lock should expire once the window has passed")
	}
}

func TestTracker_CounterSurvivesExpiry(t *testing.T) {
	tr, now := newTestTracker()
	for i := 0; i < 5; i++ {
		tr.RecordFailure("a@example.com")
	}
	*now = now.Add(6 * time.Minute)
	if tr.IsLocked("a@example.com") {
		t.Fatal("lock should have expired")
	}
	// No intervening success: the very next failure re-locks.
	tr.RecordFailure("a@example.com")
	if !tr.IsLocked("a@example.com") {
		t.Error("failure after natural expiry should re-lock immediately")
	}
}

func TestTracker_SuccessClears(t *testing.T) {
	tr, _ := newTestTracker()
	for i := 0; i < 5; i++ {
		tr.RecordFailure("a@example.com")
	}
	tr.RecordSuccess("a@example.com")
	if tr.IsLocked("a@example.com") {
		t.Error("success should clear the lock")
	}
	if tr.Failures("a@example.com") != 0 {
		t.Error("success should clear the failure counter")
	}
}

func TestTracker_IdentitiesIndependent(t *testing.T) {
	tr, _ := newTestTracker()
	for i := 0; i < 5; i++ {
		tr.RecordFailure("a@example.com")
	}
	if tr.IsLocked("b@example.com") {
		t.Error("lock on one identity must not affect another")
	}
}

func TestTracker_ConcurrentFailures(t *testing.T) {
	tr := NewTracker(5, 5*time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.RecordFailure("a@example.com")
		}()
	}
	wg.Wait()
	if got := tr.Failures("a@example.com"); got != 20 {
		t.Errorf("Failures = %d, want 20", got)
	}
	if !tr.IsLocked("a@example.com") {
		t.Error("20 concurrent failures should leave the identity locked")
	}
}
