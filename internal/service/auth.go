package service

import (
	"context"
	"fmt"
	"time"

	"github.com/nazirsaif/nexus-sub000/internal/config"
	"github.com/nazirsaif/nexus-sub000/internal/model"
	"github.com/nazirsaif/nexus-sub000/internal/repository"
	"github.com/nazirsaif/nexus-sub000/pkg/util"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration, login, two-factor challenges and the
// email-verification flow.
type AuthService struct {
	cfg         *config.Config
	users       repository.IUserRepository
	otps        repository.IOTPRepository
	emailTokens repository.IEmailTokenRepository
	tokens      *TokenService
	mailer      Mailer
}

func NewAuthService(cfg *config.Config, users repository.IUserRepository, otps repository.IOTPRepository, emailTokens repository.IEmailTokenRepository, tokens *TokenService, mailer Mailer) *AuthService {
	return &AuthService{
		cfg:         cfg,
		users:       users,
		otps:        otps,
		emailTokens: emailTokens,
		tokens:      tokens,
		mailer:      mailer,
	}
}

// Register creates a user, sends the verification mail and returns the user
// with a fresh token pair.
func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, *model.TokenPair, error) {
	email := util.NormalizeEmail(req.Email)
	if err := util.ValidateEmail(email); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	if err := util.ValidatePassword(req.Password); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	if !model.ValidRole(req.Role) {
		return nil, nil, fmt.Errorf("%w: role must be entrepreneur or investor", ErrInvalidInput)
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		return nil, nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), util.BCryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(ctx, &model.User{
		Name:     req.Name,
		Email:    email,
		Password: string(hash),
		Role:     req.Role,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.sendVerificationMail(ctx, user); err != nil {
		// Registration still succeeds; the mail can be re-requested.
		logrus.WithError(err).WithField("userId", user.ID.Hex()).Warn("failed to send verification mail")
	}

	pair, err := s.tokens.IssuePair(ctx, user.ID, user.Role)
	if err != nil {
		return nil, nil, err
	}

	logrus.WithFields(logrus.Fields{
		"userId": user.ID.Hex(),
		"role":   user.Role,
	}).Info("user registered")
	return user, pair, nil
}

// Login verifies credentials. When the account has two-factor enabled, an OTP
// challenge is issued instead of tokens.
func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, util.NormalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if user.TwoFactorEnabled {
		challenge, err := s.issueChallenge(ctx, user)
		if err != nil {
			return nil, err
		}
		return &model.LoginResult{
			TwoFactorRequired: true,
			ChallengeID:       challenge.ID.Hex(),
		}, nil
	}

	pair, err := s.tokens.IssuePair(ctx, user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &model.LoginResult{Tokens: pair, User: user}, nil
}

func (s *AuthService) issueChallenge(ctx context.Context, user *model.User) (*model.OTPChallenge, error) {
	code, err := util.GenerateOTPCode()
	if err != nil {
		return nil, err
	}
	hash, err := util.HashSecret(code)
	if err != nil {
		return nil, err
	}

	challenge, err := s.otps.Create(ctx, &model.OTPChallenge{
		UserID:    user.ID,
		CodeHash:  hash,
		ExpiresAt: time.Now().Add(time.Duration(s.cfg.Auth.OTPTTLMin) * time.Minute),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store otp challenge: %w", err)
	}

	body := fmt.Sprintf("Your Nexus verification code is %s. It expires in %d minutes.",
		code, s.cfg.Auth.OTPTTLMin)
	if err := s.mailer.Send(user.Email, "Your verification code", body); err != nil {
		logrus.WithError(err).WithField("userId", user.ID.Hex()).Warn("failed to send otp mail")
	}
	return challenge, nil
}

// VerifyOTP answers a two-factor challenge and returns a token pair on success.
func (s *AuthService) VerifyOTP(ctx context.Context, req *model.VerifyOTPRequest) (*model.TokenPair, *model.User, error) {
	challengeID, err := util.ParseObjectID(req.ChallengeID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	challenge, err := s.otps.FindByID(ctx, challengeID)
	if err != nil {
		return nil, nil, err
	}
	if challenge == nil || challenge.Consumed {
		return nil, nil, ErrNotFound
	}
	if time.Now().After(challenge.ExpiresAt) {
		return nil, nil, ErrOTPExpired
	}
	if challenge.Attempts >= s.cfg.Auth.OTPMaxAttempts {
		return nil, nil, ErrOTPAttemptsExceeded
	}

	if !util.VerifySecret(req.Code, challenge.CodeHash) {
		if err := s.otps.IncrementAttempts(ctx, challenge.ID); err != nil {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%w: incorrect code", ErrUnauthorized)
	}

	if err := s.otps.Consume(ctx, challenge.ID); err != nil {
		return nil, nil, err
	}

	user, err := s.users.FindByID(ctx, challenge.UserID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrNotFound
	}

	pair, err := s.tokens.IssuePair(ctx, user.ID, user.Role)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// ResendOTP reissues the code for a live challenge, invalidating the previous
// one and resetting the attempt count.
func (s *AuthService) ResendOTP(ctx context.Context, challengeIDHex string) error {
	challengeID, err := util.ParseObjectID(challengeIDHex)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	challenge, err := s.otps.FindByID(ctx, challengeID)
	if err != nil {
		return err
	}
	if challenge == nil || challenge.Consumed {
		return ErrNotFound
	}

	user, err := s.users.FindByID(ctx, challenge.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}

	code, err := util.GenerateOTPCode()
	if err != nil {
		return err
	}
	hash, err := util.HashSecret(code)
	if err != nil {
		return err
	}
	expiresAt := time.Now().Add(time.Duration(s.cfg.Auth.OTPTTLMin) * time.Minute)
	if err := s.otps.ResetCode(ctx, challenge.ID, hash, expiresAt); err != nil {
		return err
	}

	body := fmt.Sprintf("Your Nexus verification code is %s. It expires in %d minutes.",
		code, s.cfg.Auth.OTPTTLMin)
	if err := s.mailer.Send(user.Email, "Your verification code", body); err != nil {
		logrus.WithError(err).WithField("userId", user.ID.Hex()).Warn("failed to send otp mail")
	}
	return nil
}

// Refresh rotates a refresh token into a fresh pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	userID, familyID, err := s.tokens.Rotate(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthorized
	}
	return s.tokens.IssuePairForFamily(ctx, user.ID, user.Role, familyID)
}

// Logout revokes the presented refresh token.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.tokens.Revoke(ctx, refreshToken)
}

func (s *AuthService) sendVerificationMail(ctx context.Context, user *model.User) error {
	token, err := util.GenerateSecret("ev")
	if err != nil {
		return err
	}
	_, err = s.emailTokens.Create(ctx, &model.EmailToken{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(time.Duration(s.cfg.Auth.EmailTokenTTLHrs) * time.Hour),
		CreatedAt: time.Now(),
	})
	if err != nil {
		return err
	}

	body := fmt.Sprintf("Welcome to Nexus. Verify your email by opening:\n\n/api/auth/verify-email?token=%s", token)
	return s.mailer.Send(user.Email, "Verify your email", body)
}

// VerifyEmail consumes a verification token and marks the user verified.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("%w: token is required", ErrInvalidInput)
	}
	et, err := s.emailTokens.FindByToken(ctx, token)
	if err != nil {
		return err
	}
	if et == nil || et.Used {
		return ErrNotFound
	}
	if time.Now().After(et.ExpiresAt) {
		return fmt.Errorf("%w: token expired", ErrInvalidInput)
	}
	if err := s.emailTokens.MarkUsed(ctx, et.ID); err != nil {
		return err
	}
	return s.users.Update(ctx, et.UserID, bson.M{"emailVerified": true})
}

// SetTwoFactor toggles the OTP requirement for the user's logins.
func (s *AuthService) SetTwoFactor(ctx context.Context, userID primitive.ObjectID, enabled bool) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}
	return s.users.Update(ctx, userID, bson.M{"twoFactorEnabled": enabled})
}

// Me returns the authenticated user.
func (s *AuthService) Me(ctx context.Context, userID primitive.ObjectID) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}
