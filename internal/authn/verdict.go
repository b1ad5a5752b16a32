package authn

// Verdict is the only authentication outcome shape exposed to presentation:
// an enum, never raw internal state. Handlers map non-success verdicts to
// generic messages so callers cannot distinguish account-absent from
// wrong-password.
type Verdict int

const (
	VerdictSuccess Verdict = iota
	VerdictInvalidCredentials
	VerdictLockedOut
	VerdictOtpExpired
	VerdictOtpInvalid
	VerdictOtpAttemptsExceeded
	VerdictSessionExpired
)

func (v Verdict) String() string {
	switch v {
	case VerdictSuccess:
		return "success"
	case VerdictInvalidCredentials:
		return "invalid_credentials"
	case VerdictLockedOut:
		return "locked_out"
	case VerdictOtpExpired:
		return "otp_expired"
	case VerdictOtpInvalid:
		return "otp_invalid"
	case VerdictOtpAttemptsExceeded:
		return "otp_attempts_exceeded"
	case VerdictSessionExpired:
		return "session_expired"
	default:
		return "unknown"
	}
}
