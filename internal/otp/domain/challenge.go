package domain

import "time"

// Challenge represents a one-time-password challenge issued after the
// password factor passes. The plaintext code is never stored; only its
// bcrypt hash.
type Challenge struct {
	ID           string
	AccountID    string
	CodeHash     string
	IssuedAt     time.Time
	ExpiresAt    time.Time
	AttemptCount int
	Consumed     bool
}

// Active reports whether the challenge can still be verified at now:
// unconsumed and not past its expiry.
func (c *Challenge) Active(now time.Time) bool {
	return c != nil && !c.Consumed && now.Before(c.ExpiresAt)
}
