// Package identity defines the normalized email form used as the key for
// credential lookup, lockout buckets, and OTP challenges.
package identity

import (
	"errors"
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Normalize trims surrounding whitespace and lower-cases an email address.
// Idempotent: Normalize(Normalize(e)) == Normalize(e). Every entry point
// that keys on an email must go through this first.
func Normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks the normalized email against a simple format rule.
// Used on account create/update, not on login (login fails closed on lookup).
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	if !emailRe.MatchString(email) {
		return errors.New("invalid email format")
	}
	return nil
}
