package security

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// VerifyOutcome reports how a credential verification attempt ended. Both
// failure outcomes collapse to "no match" for callers; the distinction exists
// so the internal log can separate a wrong password from a stored hash the
// current pipeline cannot read.
type VerifyOutcome int

const (
	// OutcomeMatched means the password matched under one of the schemes.
	OutcomeMatched VerifyOutcome = iota
	// OutcomeMismatched means both schemes ran and neither matched.
	OutcomeMismatched
	// OutcomeMalformed means the stored hash could not be evaluated under
	// either scheme (truncated, wrong prefix, impossible cost).
	OutcomeMalformed
)

// Verifier checks a plaintext password against a stored bcrypt hash,
// accepting both the current scheme and the legacy scheme. It never creates
// hashes; new credentials always go through Hasher at CredentialCost.
//
// Current scheme: bcrypt over the UTF-8 bytes of the password.
// Legacy scheme: bcrypt over base64(sha256(password)), kept verify-only for
// accounts created under the superseded hashing pipeline.
type Verifier struct{}

// Verify returns true iff password matches stored under either scheme.
// Internal bcrypt errors are treated as a failed attempt for that scheme and
// never propagated, so a malformed hash is indistinguishable from a wrong
// password to the caller.
func (Verifier) Verify(password, stored string) bool {
	out := Verifier{}.VerifyDetail(password, stored)
	return out == OutcomeMatched
}

// VerifyDetail is Verify with the outcome preserved for internal logging.
func (Verifier) VerifyDetail(password, stored string) VerifyOutcome {
	hash := []byte(stored)

	errCurrent := bcrypt.CompareHashAndPassword(hash, []byte(password))
	if errCurrent == nil {
		return OutcomeMatched
	}

	legacy := legacyDigest(password)
	errLegacy := bcrypt.CompareHashAndPassword(hash, legacy)
	if errLegacy == nil {
		return OutcomeMatched
	}

	if isMismatch(errCurrent) || isMismatch(errLegacy) {
		return OutcomeMismatched
	}
	return OutcomeMalformed
}

// legacyDigest computes the legacy bcrypt preimage: base64 of the SHA-256
// digest of the password bytes.
func legacyDigest(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}

func isMismatch(err error) bool {
	return errors.Is(err, bcrypt.ErrMismatchedHashAndPassword)
}
