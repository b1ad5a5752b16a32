// Package authn orchestrates the login flow: lockout gate, credential
// verification, OTP second factor, and session establishment.
package authn

import (
	"context"
	"log"
	"time"

	accountdomain "keai-wms/backend/internal/account/domain"
	"keai-wms/backend/internal/audit"
	auditdomain "keai-wms/backend/internal/audit/domain"
	"keai-wms/backend/internal/identity"
	"keai-wms/backend/internal/lockout"
	"keai-wms/backend/internal/metrics"
	"keai-wms/backend/internal/otp"
	"keai-wms/backend/internal/security"
	"keai-wms/backend/internal/session"
)

// AccountRepo is the minimal account lookup the auth service needs.
type AccountRepo interface {
	GetByEmail(ctx context.Context, email string) (*accountdomain.Account, error)
}

// LoginResult is the outcome of the password stage. On VerdictSuccess an OTP
// challenge has been issued and ChallengeID references it.
type LoginResult struct {
	Verdict     Verdict
	ChallengeID string
}

// SessionResult is the outcome of the OTP stage. On VerdictSuccess a session
// exists and Token carries its bearer credential.
type SessionResult struct {
	Verdict   Verdict
	SessionID string
	Token     string
	ExpiresAt time.Time
}

// Service implements the authentication flow over its collaborators. All
// lockout and OTP state lives in the injected instances, not in package
// globals, so hosts and tests each own an isolated service.
type Service struct {
	accounts AccountRepo
	tracker  *lockout.Tracker
	verifier security.Verifier
	otp      *otp.Service
	sessions *session.Registry
	tokens   *security.TokenProvider
	audit    audit.Logger
	metrics  *metrics.Collector
}

// NewService returns an auth Service. audit and metrics may be nil.
func NewService(
	accounts AccountRepo,
	tracker *lockout.Tracker,
	otpService *otp.Service,
	sessions *session.Registry,
	tokens *security.TokenProvider,
	auditLogger audit.Logger,
	collector *metrics.Collector,
) *Service {
	return &Service{
		accounts: accounts,
		tracker:  tracker,
		otp:      otpService,
		sessions: sessions,
		tokens:   tokens,
		audit:    auditLogger,
		metrics:  collector,
	}
}

// Authenticate verifies email+password with lockout bookkeeping. Returns
// true only when the password matches a stored credential and the linked
// account resolves. The error return is reserved for storage failures; a
// storage failure is never reported as success.
func (s *Service) Authenticate(ctx context.Context, email, password string) (bool, error) {
	email = identity.Normalize(email)
	// Fail closed on empty input, with no lockout bookkeeping.
	if email == "" || password == "" {
		return false, nil
	}

	// The lockout gate runs before any credential work so a locked identity
	// observes the same timing whether or not the password is right.
	if s.tracker.IsLocked(email) {
		s.metrics.RecordLockedReject()
		return false, nil
	}

	a, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if a == nil {
		s.recordFailure(email)
		return false, nil
	}

	switch s.verifier.VerifyDetail(password, a.PasswordHash) {
	case security.OutcomeMatched:
	case security.OutcomeMalformed:
		log.Printf("authn: unreadable stored hash for account %s", a.ID)
		s.recordFailure(email)
		return false, nil
	default:
		s.recordFailure(email)
		return false, nil
	}

	// Data inconsistency: a credential row without an account id. Never
	// succeed on partial state.
	if a.ID == "" {
		s.recordFailure(email)
		return false, nil
	}

	s.tracker.RecordSuccess(email)
	s.metrics.RecordAuthSuccess()
	if s.audit != nil {
		s.audit.LogEvent(ctx, a.ID, auditdomain.KindAuthSuccess, "")
	}
	return true, nil
}

// Login runs the password stage and, on success, issues the OTP second
// factor. The returned challenge ID is an opaque reference for the verify
// step; the code itself travels only through the delivery collaborator.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	norm := identity.Normalize(email)
	if norm != "" && s.tracker.IsLocked(norm) {
		s.metrics.RecordLockedReject()
		return &LoginResult{Verdict: VerdictLockedOut}, nil
	}

	ok, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &LoginResult{Verdict: VerdictInvalidCredentials}, nil
	}

	a, err := s.accounts.GetByEmail(ctx, norm)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return &LoginResult{Verdict: VerdictInvalidCredentials}, nil
	}
	challengeID, err := s.otp.Issue(ctx, a.ID, a.Email)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordOTPIssued()
	return &LoginResult{Verdict: VerdictSuccess, ChallengeID: challengeID}, nil
}

// VerifyOTP runs the OTP stage for the identity and, on success,
// establishes the session and returns its token.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) (*SessionResult, error) {
	email = identity.Normalize(email)
	if email == "" || code == "" {
		return &SessionResult{Verdict: VerdictOtpInvalid}, nil
	}
	a, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if a == nil {
		// No account: indistinguishable from a dead challenge.
		return &SessionResult{Verdict: VerdictOtpExpired}, nil
	}

	res, err := s.otp.Verify(ctx, a.ID, code)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordOTPVerdict(res.String())
	switch res {
	case otp.ResultSuccess:
	case otp.ResultInvalid:
		return &SessionResult{Verdict: VerdictOtpInvalid}, nil
	case otp.ResultAttemptsExceeded:
		return &SessionResult{Verdict: VerdictOtpAttemptsExceeded}, nil
	default:
		return &SessionResult{Verdict: VerdictOtpExpired}, nil
	}

	h := s.sessions.Start(a.ID, s.notifyIdle)
	token, expiresAt, err := s.tokens.Issue(h.ID, a.ID)
	if err != nil {
		s.sessions.Stop(h.ID)
		return nil, err
	}
	return &SessionResult{
		Verdict:   VerdictSuccess,
		SessionID: h.ID,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Heartbeat records activity on the session. Returns VerdictSessionExpired
// when the session is gone (idle-expired or logged out).
func (s *Service) Heartbeat(sessionID string) Verdict {
	if s.sessions.Touch(sessionID) {
		return VerdictSuccess
	}
	return VerdictSessionExpired
}

// Logout tears the session down without notice. Safe for unknown sessions.
func (s *Service) Logout(sessionID string) {
	s.sessions.Stop(sessionID)
}

// notifyIdle delivers the one-time idle notice. Over HTTP the client learns
// of the expiry from its next heartbeat, so the notice surfaces server-side
// as a log line and an audit event carrying the session ID.
func (s *Service) notifyIdle(sessionID, accountID string) {
	log.Printf("authn: session %s for account %s crossed the idle threshold", sessionID, accountID)
	if s.audit != nil {
		s.audit.LogEvent(context.Background(), accountID, auditdomain.KindSessionIdleNotice, sessionID)
	}
}

func (s *Service) recordFailure(email string) {
	wasLocked := s.tracker.IsLocked(email)
	s.tracker.RecordFailure(email)
	s.metrics.RecordAuthFailure()
	if !wasLocked && s.tracker.IsLocked(email) {
		s.metrics.RecordLockoutActivation()
	}
}
