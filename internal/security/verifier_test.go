package security

import (
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func currentHash(t *testing.T, password string) string {
	t.Helper()
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(b)
}

func legacyHash(t *testing.T, password string) string {
	t.Helper()
	sum := sha256.Sum256([]byte(password))
	pre := base64.StdEncoding.EncodeToString(sum[:])
	b, err := bcrypt.GenerateFromPassword([]byte(pre), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(b)
}

func TestVerifier_CurrentScheme(t *testing.T) {
	v := Verifier{}
	stored := currentHash(t, "correct horse")
	if !v.Verify("correct horse", stored) {
		t.Error("current-scheme hash should verify")
	}
	if v.Verify("wrong horse", stored) {
		t.Error("wrong password should not verify")
	}
}

func TestVerifier_LegacyScheme(t *testing.T) {
	v := Verifier{}
	stored := legacyHash(t, "correct horse")
	if !v.Verify("correct horse", stored) {
		t.Error("legacy-scheme hash should verify")
	}
	if v.Verify("wrong horse", stored) {
		t.Error("wrong password should not verify under legacy scheme")
	}
}

func TestVerifier_SamePlaintextBothSchemes(t *testing.T) {
	v := Verifier{}
	if !v.Verify("pw", currentHash(t, "pw")) {
		t.Error("current hash of same plaintext should verify")
	}
	if !v.Verify("pw", legacyHash(t, "pw")) {
		t.Error("legacy hash of same plaintext should verify")
	}
}

func TestVerifier_MalformedHash(t *testing.T) {
	v := Verifier{}
	for _, stored := range []string{"", "not-a-bcrypt-hash", "$2a$xx$garbage"} {
		if v.Verify("anything", stored) {
			t.Errorf("malformed hash %q must not verify", stored)
		}
		if out := v.VerifyDetail("anything", stored); out != OutcomeMalformed {
			t.Errorf("VerifyDetail(%q) = %v, want OutcomeMalformed", stored, out)
		}
	}
}

func TestVerifier_DetailMismatch(t *testing.T) {
	v := Verifier{}
	stored := currentHash(t, "right")
	if out := v.VerifyDetail("wrong", stored); out != OutcomeMismatched {
		t.Errorf("VerifyDetail = %v, want OutcomeMismatched", out)
	}
	if out := v.VerifyDetail("right", stored); out != OutcomeMatched {
		t.Errorf("VerifyDetail = %v, want OutcomeMatched", out)
	}
}
