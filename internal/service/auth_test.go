package service

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/nazirsaif/nexus-sub000/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// captureMailer records outgoing mail so tests can read OTP codes and
// verification links.
type captureMailer struct {
	mu       sync.Mutex
	messages []string
}

func (m *captureMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, body)
	return nil
}

func (m *captureMailer) last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.messages) == 0 {
		return ""
	}
	return m.messages[len(m.messages)-1]
}

var (
	otpPattern        = regexp.MustCompile(`\b(\d{6})\b`)
	emailTokenPattern = regexp.MustCompile(`token=(\S+)`)
)

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserRepo, *fakeOTPRepo, *captureMailer) {
	t.Helper()
	cfg := testConfig()
	users := newFakeUserRepo()
	otps := newFakeOTPRepo()
	mailer := &captureMailer{}
	tokens := NewTokenService(cfg, newFakeRefreshRepo())
	svc := NewAuthService(cfg, users, otps, newFakeEmailTokenRepo(), tokens, mailer)
	return svc, users, otps, mailer
}

func register(t *testing.T, svc *AuthService) (*model.User, *model.TokenPair) {
	t.Helper()
	user, pair, err := svc.Register(context.Background(), &model.RegisterRequest{
		Name:     "Ada",
		Email:    "Ada@Example.com",
		Password: "correct-horse",
		Role:     model.RoleEntrepreneur,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return user, pair
}

func TestRegisterNormalizesEmail(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)
	user, pair := register(t, svc)

	if user.Email != "ada@example.com" {
		t.Errorf("email = %q, want lowercased", user.Email)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("expected a full token pair on registration")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)
	register(t, svc)

	_, _, err := svc.Register(context.Background(), &model.RegisterRequest{
		Name:     "Imposter",
		Email:    "ada@example.com",
		Password: "correct-horse",
		Role:     model.RoleInvestor,
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)

	_, _, err := svc.Register(context.Background(), &model.RegisterRequest{
		Name:     "Eve",
		Email:    "eve@example.com",
		Password: "correct-horse",
		Role:     model.RoleAdmin,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)
	register(t, svc)
	ctx := context.Background()

	result, err := svc.Login(ctx, &model.LoginRequest{Email: "ada@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.TwoFactorRequired {
		t.Fatal("2FA unexpectedly required")
	}
	if result.Tokens == nil || result.Tokens.AccessToken == "" {
		t.Fatal("expected tokens on login")
	}

	if _, err := svc.Login(ctx, &model.LoginRequest{Email: "ada@example.com", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, &model.LoginRequest{Email: "nobody@example.com", Password: "correct-horse"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user err = %v, want ErrInvalidCredentials", err)
	}
}

func loginWith2FA(t *testing.T, svc *AuthService, user *model.User, mailer *captureMailer) (challengeID, code string) {
	t.Helper()
	ctx := context.Background()
	if err := svc.SetTwoFactor(ctx, user.ID, true); err != nil {
		t.Fatalf("SetTwoFactor: %v", err)
	}
	result, err := svc.Login(ctx, &model.LoginRequest{Email: user.Email, Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !result.TwoFactorRequired || result.ChallengeID == "" {
		t.Fatal("expected a 2FA challenge")
	}
	if result.Tokens != nil {
		t.Fatal("tokens must not be issued before the challenge is answered")
	}
	m := otpPattern.FindStringSubmatch(mailer.last())
	if m == nil {
		t.Fatalf("no OTP code in mail body %q", mailer.last())
	}
	return result.ChallengeID, m[1]
}

func TestTwoFactorLogin(t *testing.T) {
	svc, _, _, mailer := newAuthFixture(t)
	user, _ := register(t, svc)
	ctx := context.Background()

	challengeID, code := loginWith2FA(t, svc, user, mailer)

	pair, got, err := svc.VerifyOTP(ctx, &model.VerifyOTPRequest{ChallengeID: challengeID, Code: code})
	if err != nil {
		t.Fatalf("VerifyOTP: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("user = %s, want %s", got.ID.Hex(), user.ID.Hex())
	}
	if pair.AccessToken == "" {
		t.Error("expected tokens after OTP verification")
	}

	// A consumed challenge cannot be replayed.
	if _, _, err := svc.VerifyOTP(ctx, &model.VerifyOTPRequest{ChallengeID: challengeID, Code: code}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("replay err = %v, want ErrNotFound", err)
	}
}

func TestOTPAttemptsExceeded(t *testing.T) {
	svc, _, _, mailer := newAuthFixture(t)
	user, _ := register(t, svc)
	ctx := context.Background()

	challengeID, code := loginWith2FA(t, svc, user, mailer)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	for i := 0; i < 3; i++ {
		if _, _, err := svc.VerifyOTP(ctx, &model.VerifyOTPRequest{ChallengeID: challengeID, Code: wrong}); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("attempt %d err = %v, want ErrUnauthorized", i+1, err)
		}
	}
	// Even the right code is refused once the attempt budget is spent.
	if _, _, err := svc.VerifyOTP(ctx, &model.VerifyOTPRequest{ChallengeID: challengeID, Code: code}); !errors.Is(err, ErrOTPAttemptsExceeded) {
		t.Fatalf("err = %v, want ErrOTPAttemptsExceeded", err)
	}
}

func TestOTPExpired(t *testing.T) {
	svc, _, otps, mailer := newAuthFixture(t)
	user, _ := register(t, svc)
	ctx := context.Background()

	challengeID, code := loginWith2FA(t, svc, user, mailer)

	id, err := primitive.ObjectIDFromHex(challengeID)
	if err != nil {
		t.Fatalf("bad challenge id: %v", err)
	}
	otps.mu.Lock()
	otps.challenges[id].ExpiresAt = time.Now().Add(-time.Minute)
	otps.mu.Unlock()

	if _, _, err := svc.VerifyOTP(ctx, &model.VerifyOTPRequest{ChallengeID: challengeID, Code: code}); !errors.Is(err, ErrOTPExpired) {
		t.Fatalf("err = %v, want ErrOTPExpired", err)
	}
}

func TestResendOTPResetsAttempts(t *testing.T) {
	svc, _, otps, mailer := newAuthFixture(t)
	user, _ := register(t, svc)
	ctx := context.Background()

	challengeID, code := loginWith2FA(t, svc, user, mailer)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	if _, _, err := svc.VerifyOTP(ctx, &model.VerifyOTPRequest{ChallengeID: challengeID, Code: wrong}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}

	if err := svc.ResendOTP(ctx, challengeID); err != nil {
		t.Fatalf("ResendOTP: %v", err)
	}

	id, _ := primitive.ObjectIDFromHex(challengeID)
	otps.mu.Lock()
	attempts := otps.challenges[id].Attempts
	otps.mu.Unlock()
	if attempts != 0 {
		t.Errorf("attempts = %d after resend, want 0", attempts)
	}

	m := otpPattern.FindStringSubmatch(mailer.last())
	if m == nil {
		t.Fatalf("no OTP code in resend mail")
	}
	if _, _, err := svc.VerifyOTP(ctx, &model.VerifyOTPRequest{ChallengeID: challengeID, Code: m[1]}); err != nil {
		t.Fatalf("VerifyOTP with resent code: %v", err)
	}
}

func TestVerifyEmail(t *testing.T) {
	svc, users, _, mailer := newAuthFixture(t)
	user, _ := register(t, svc)
	ctx := context.Background()

	m := emailTokenPattern.FindStringSubmatch(mailer.last())
	if m == nil {
		t.Fatalf("no verification token in mail body %q", mailer.last())
	}

	if err := svc.VerifyEmail(ctx, m[1]); err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}
	stored, _ := users.FindByID(ctx, user.ID)
	if !stored.EmailVerified {
		t.Error("user not marked verified")
	}

	// Single use.
	if err := svc.VerifyEmail(ctx, m[1]); !errors.Is(err, ErrNotFound) {
		t.Fatalf("reuse err = %v, want ErrNotFound", err)
	}
}

func TestRefreshAndLogout(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)
	_, pair := register(t, svc)
	ctx := context.Background()

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Fatal("refresh returned the same token")
	}

	if err := svc.Logout(ctx, next.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := svc.Refresh(ctx, next.RefreshToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("refresh after logout err = %v, want ErrUnauthorized", err)
	}
}
