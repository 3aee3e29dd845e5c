package service

import (
	"context"
	"fmt"
	"time"

	"github.com/nazirsaif/nexus-sub000/internal/config"
	"github.com/nazirsaif/nexus-sub000/internal/model"
	"github.com/nazirsaif/nexus-sub000/internal/repository"
	"github.com/nazirsaif/nexus-sub000/pkg/util"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Claims carried in access tokens.
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues access tokens and manages refresh-token families.
type TokenService struct {
	cfg     *config.Config
	refresh repository.IRefreshTokenRepository
	secret  []byte
}

func NewTokenService(cfg *config.Config, refresh repository.IRefreshTokenRepository) *TokenService {
	return &TokenService{cfg: cfg, refresh: refresh, secret: []byte(cfg.Auth.JWTSecret)}
}

// AccessTTL returns the configured access-token lifetime.
func (s *TokenService) AccessTTL() time.Duration {
	return time.Duration(s.cfg.Auth.AccessTTLMin) * time.Minute
}

func (s *TokenService) refreshTTL() time.Duration {
	return time.Duration(s.cfg.Auth.RefreshTTLHours) * time.Hour
}

// IssueAccessToken signs a short-lived HS256 access token.
func (s *TokenService) IssueAccessToken(userID primitive.ObjectID, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID.Hex(),
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.AccessTTL())),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   userID.Hex(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseAccessToken validates a token string and returns its claims.
func (s *TokenService) ParseAccessToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrUnauthorized
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

// IssuePair issues an access token and starts a new refresh-token family.
func (s *TokenService) IssuePair(ctx context.Context, userID primitive.ObjectID, role string) (*model.TokenPair, error) {
	return s.issuePair(ctx, userID, role, uuid.NewString())
}

func (s *TokenService) issuePair(ctx context.Context, userID primitive.ObjectID, role, familyID string) (*model.TokenPair, error) {
	access, err := s.IssueAccessToken(userID, role)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	plain, err := util.GenerateSecret(util.RefreshTokenPrefix)
	if err != nil {
		return nil, err
	}

	_, err = s.refresh.Create(ctx, &model.RefreshToken{
		UserID:    userID,
		FamilyID:  familyID,
		TokenHash: util.HashLookupToken(plain),
		ExpiresAt: time.Now().Add(s.refreshTTL()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &model.TokenPair{
		AccessToken:  access,
		RefreshToken: plain,
		ExpiresIn:    int64(s.AccessTTL().Seconds()),
	}, nil
}

// Rotate validates a presented refresh token and retires it, returning the
// owning user and token family so the caller can issue the replacement pair.
// Presenting a token that was already rotated is treated as theft and revokes
// the whole family.
func (s *TokenService) Rotate(ctx context.Context, plain string) (primitive.ObjectID, string, error) {
	stored, err := s.refresh.FindByHash(ctx, util.HashLookupToken(plain))
	if err != nil {
		return primitive.NilObjectID, "", err
	}
	if stored == nil || time.Now().After(stored.ExpiresAt) {
		return primitive.NilObjectID, "", ErrUnauthorized
	}
	if stored.Rotated {
		logrus.WithFields(logrus.Fields{
			"userId": stored.UserID.Hex(),
			"family": stored.FamilyID,
		}).Warn("refresh token reuse detected, revoking family")
		if err := s.refresh.RevokeFamily(ctx, stored.FamilyID); err != nil {
			return primitive.NilObjectID, "", err
		}
		return primitive.NilObjectID, "", ErrUnauthorized
	}
	if stored.Revoked {
		return primitive.NilObjectID, "", ErrUnauthorized
	}

	if err := s.refresh.MarkRotated(ctx, stored.ID); err != nil {
		return primitive.NilObjectID, "", err
	}
	return stored.UserID, stored.FamilyID, nil
}

// IssuePairForFamily issues a pair continuing an existing token family.
func (s *TokenService) IssuePairForFamily(ctx context.Context, userID primitive.ObjectID, role, familyID string) (*model.TokenPair, error) {
	return s.issuePair(ctx, userID, role, familyID)
}

// Revoke invalidates the presented refresh token (logout).
func (s *TokenService) Revoke(ctx context.Context, plain string) error {
	stored, err := s.refresh.FindByHash(ctx, util.HashLookupToken(plain))
	if err != nil {
		return err
	}
	if stored == nil {
		return nil // already gone, logout is idempotent
	}
	return s.refresh.Revoke(ctx, stored.ID)
}

// PurgeExpired removes refresh tokens past their expiry.
func (s *TokenService) PurgeExpired(ctx context.Context) error {
	n, err := s.refresh.DeleteExpired(ctx, time.Now())
	if err != nil {
		return err
	}
	if n > 0 {
		logrus.WithField("count", n).Debug("purged expired refresh tokens")
	}
	return nil
}
