package otp

import (
	"context"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"keai-wms/backend/internal/devotp"
	"keai-wms/backend/internal/otp/domain"
	"keai-wms/backend/internal/security"
)

type memChallengeRepo struct {
	mu sync.Mutex
	m  map[string]*domain.Challenge
}

func newMemChallengeRepo() *memChallengeRepo {
	return &memChallengeRepo{m: make(map[string]*domain.Challenge)}
}

func (r *memChallengeRepo) Create(ctx context.Context, c *domain.Challenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c2 := *c
	r.m[c.ID] = &c2
	return nil
}

func (r *memChallengeRepo) LatestByAccount(ctx context.Context, accountID string) (*domain.Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *domain.Challenge
	for _, c := range r.m {
		if c.AccountID != accountID || c.Consumed {
			continue
		}
		if latest == nil || c.IssuedAt.After(latest.IssuedAt) {
			latest = c
		}
	}
	if latest == nil {
		return nil, nil
	}
	c2 := *latest
	return &c2, nil
}

func (r *memChallengeRepo) IncrementAttempts(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.m[id]; ok {
		c.AttemptCount++
	}
	return nil
}

func (r *memChallengeRepo) MarkConsumed(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.m[id]; ok && !c.Consumed {
		c.Consumed = true
		return true, nil
	}
	return false, nil
}

func (r *memChallengeRepo) DeleteExpired(ctx context.Context, accountID string, cutoff time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.m {
		if c.AccountID == accountID && !c.ExpiresAt.After(cutoff) {
			delete(r.m, id)
		}
	}
	return nil
}

// chanSender hands delivered codes to the test over a channel, since Issue
// delivers from a goroutine.
type chanSender struct {
	ch chan string
}

func (s *chanSender) SendCode(ctx context.Context, email, code string) error {
	s.ch <- code
	return nil
}

func newTestService(t *testing.T) (*Service, *memChallengeRepo, *chanSender, *time.Time) {
	t.Helper()
	repo := newMemChallengeRepo()
	sender := &chanSender{ch: make(chan string, 1)}
	svc := NewService(repo, security.NewHasher(bcrypt.MinCost), sender, nil, 300*time.Second)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.nowF = func() time.Time { return now }
	return svc, repo, sender, &now
}

func issueAndCode(t *testing.T, svc *Service, sender *chanSender, accountID string) (string, string) {
	t.Helper()
	id, err := svc.Issue(context.Background(), accountID, accountID+"@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	select {
	case code := <-sender.ch:
		return id, code
	case <-time.After(time.Second):
		t.Fatal("delivery did not happen")
		return "", ""
	}
}

func TestGenerateCode_SixDigits(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatalf("GenerateCode: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("code length = %d, want 6", len(code))
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("code contains non-digit: %q", code)
			}
		}
	}
}

func TestVerify_CorrectCode(t *testing.T) {
	svc, _, sender, _ := newTestService(t)
	_, code := issueAndCode(t, svc, sender, "acct-1")

	res, err := svc.Verify(context.Background(), "acct-1", code)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if res != ResultSuccess {
		t.Errorf("Verify = %v, want ResultSuccess", res)
	}
}

func TestVerify_SingleUse(t *testing.T) {
	svc, _, sender, _ := newTestService(t)
	_, code := issueAndCode(t, svc, sender, "acct-1")

	if res, _ := svc.Verify(context.Background(), "acct-1", code); res != ResultSuccess {
		t.Fatalf("first Verify = %v, want ResultSuccess", res)
	}
	res, err := svc.Verify(context.Background(), "acct-1", code)
	if err != nil {
		t.Fatalf("second Verify: %v", err)
	}
	if res == ResultSuccess {
		t.Error("a consumed challenge must never verify again")
	}
	if res != ResultExpired {
		t.Errorf("second Verify = %v, want ResultExpired", res)
	}
}

// gatedReadRepo holds every LatestByAccount response until all expected
// readers have arrived, so concurrent verifications each see the challenge
// before any of them writes.
type gatedReadRepo struct {
	*memChallengeRepo
	barrier *sync.WaitGroup
}

func (r *gatedReadRepo) LatestByAccount(ctx context.Context, accountID string) (*domain.Challenge, error) {
	c, err := r.memChallengeRepo.LatestByAccount(ctx, accountID)
	r.barrier.Done()
	r.barrier.Wait()
	return c, err
}

func TestVerify_ConcurrentSubmissionsConsumeOnce(t *testing.T) {
	var barrier sync.WaitGroup
	barrier.Add(2)
	repo := &gatedReadRepo{memChallengeRepo: newMemChallengeRepo(), barrier: &barrier}
	sender := &chanSender{ch: make(chan string, 1)}
	svc := NewService(repo, security.NewHasher(bcrypt.MinCost), sender, nil, 300*time.Second)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.nowF = func() time.Time { return now }
	_, code := issueAndCode(t, svc, sender, "acct-1")

	results := make(chan Result, 2)
	for i := 0; i < 2; i++ {
		go func() {
			res, err := svc.Verify(context.Background(), "acct-1", code)
			if err != nil {
				t.Errorf("Verify: %v", err)
			}
			results <- res
		}()
	}

	var successes, expired int
	for i := 0; i < 2; i++ {
		switch res := <-results; res {
		case ResultSuccess:
			successes++
		case ResultExpired:
			expired++
		default:
			t.Errorf("Verify = %v, want ResultSuccess or ResultExpired", res)
		}
	}
	if successes != 1 {
		t.Errorf("successes = %d, want exactly 1", successes)
	}
	if expired != 1 {
		t.Errorf("expired = %d, want exactly 1", expired)
	}
}

func TestVerify_ExpiryBoundary(t *testing.T) {
	svc, _, sender, now := newTestService(t)
	_, code := issueAndCode(t, svc, sender, "acct-1")

	*now = now.Add(299 * time.Second)
	if res, _ := svc.Verify(context.Background(), "acct-1", code); res != ResultSuccess {
		t.Errorf("Verify at T+299s = %v, want ResultSuccess", res)
	}

	_, code = issueAndCode(t, svc, sender, "acct-1")
	*now = now.Add(301 * time.Second)
	if res, _ := svc.Verify(context.Background(), "acct-1", code); res != ResultExpired {
		t.Errorf("Verify at T+301s = %v, want ResultExpired even with the correct code", res)
	}
}

func TestVerify_NoChallenge(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	res, err := svc.Verify(context.Background(), "acct-1", "123456")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if res != ResultExpired {
		t.Errorf("Verify with no challenge = %v, want ResultExpired", res)
	}
}

func TestVerify_AttemptCap(t *testing.T) {
	svc, _, sender, _ := newTestService(t)
	_, code := issueAndCode(t, svc, sender, "acct-1")

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	ctx := context.Background()
	if res, _ := svc.Verify(ctx, "acct-1", wrong); res != ResultInvalid {
		t.Fatalf("1st wrong code = %v, want ResultInvalid", res)
	}
	if res, _ := svc.Verify(ctx, "acct-1", wrong); res != ResultInvalid {
		t.Fatalf("2nd wrong code = %v, want ResultInvalid", res)
	}
	// The rejection that reaches the cap reports exhaustion, not invalid.
	if res, _ := svc.Verify(ctx, "acct-1", wrong); res != ResultAttemptsExceeded {
		t.Fatalf("3rd wrong code = %v, want ResultAttemptsExceeded", res)
	}
	// A correct submission after exhaustion still fails.
	if res, _ := svc.Verify(ctx, "acct-1", code); res == ResultSuccess {
		t.Error("correct code after attempt cap must not succeed")
	}
}

func TestVerify_TargetsLatestChallenge(t *testing.T) {
	svc, _, sender, now := newTestService(t)
	_, oldCode := issueAndCode(t, svc, sender, "acct-1")
	*now = now.Add(10 * time.Second)
	_, newCode := issueAndCode(t, svc, sender, "acct-1")

	if oldCode == newCode {
		t.Skip("codes collided; nothing to distinguish")
	}
	ctx := context.Background()
	if res, _ := svc.Verify(ctx, "acct-1", oldCode); res == ResultSuccess {
		t.Error("verification must target the most-recently-issued challenge")
	}
	// The miss above consumed an attempt on the latest challenge.
	if res, _ := svc.Verify(ctx, "acct-1", newCode); res != ResultSuccess {
		t.Errorf("latest code = %v, want ResultSuccess", res)
	}
}

func TestIssue_DevStoreReceivesCode(t *testing.T) {
	repo := newMemChallengeRepo()
	sender := &chanSender{ch: make(chan string, 1)}
	dev := devotp.NewMemoryStore()
	svc := NewService(repo, security.NewHasher(bcrypt.MinCost), sender, dev, 300*time.Second)

	id, err := svc.Issue(context.Background(), "acct-1", "op@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	delivered := <-sender.ch
	stored, ok := dev.Get(context.Background(), id)
	if !ok {
		t.Fatal("dev store should hold the plaintext code")
	}
	if stored != delivered {
		t.Errorf("dev store code %q != delivered code %q", stored, delivered)
	}
}

func TestIssue_GCsExpiredChallenges(t *testing.T) {
	svc, repo, sender, now := newTestService(t)
	issueAndCode(t, svc, sender, "acct-1")

	*now = now.Add(10 * time.Minute)
	issueAndCode(t, svc, sender, "acct-1")

	repo.mu.Lock()
	count := 0
	for _, c := range repo.m {
		if c.AccountID == "acct-1" {
			count++
		}
	}
	repo.mu.Unlock()
	if count != 1 {
		t.Errorf("expired challenge should be GCed on issue; %d rows remain", count)
	}
}
