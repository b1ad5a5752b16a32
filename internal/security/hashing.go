package security

import (
	"golang.org/x/crypto/bcrypt"
)

// CredentialCost is the bcrypt cost used for every newly stored secret
// (account passwords and OTP code hashes). Fixed above the bcrypt default;
// interactive login tolerates the latency and stored hashes outlive policy.
const CredentialCost = 14

// Hasher hashes and verifies secrets using bcrypt. Callers must not log or
// persist plaintext passwords or OTP codes.
type Hasher struct {
	Cost int
}

// NewHasher returns a Hasher with the given bcrypt cost (4–31). Cost 0 or
// below falls back to CredentialCost.
func NewHasher(cost int) *Hasher {
	if cost <= 0 {
		cost = CredentialCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &Hasher{Cost: cost}
}

// Hash produces a bcrypt hash of secret. Returns the hash as a string
// suitable for storage.
func (h *Hasher) Hash(secret []byte) (string, error) {
	b, err := bcrypt.GenerateFromPassword(secret, h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare verifies secret against the stored hash using constant-time
// comparison. Returns nil if they match; returns an error (including
// bcrypt.ErrMismatchedHashAndPassword) if they do not or on invalid hash.
func (h *Hasher) Compare(hash string, secret []byte) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), secret)
}
