package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RefreshToken is one member of a refresh-token family. Tokens are stored as
// SHA-256 hashes so they can be looked up directly; the plaintext never hits
// the database. Rotation revokes the old token and links it to the new one;
// presenting an already-rotated token revokes the whole family.
type RefreshToken struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	FamilyID  string             `bson:"familyId" json:"familyId"`
	TokenHash string             `bson:"tokenHash" json:"-"`
	ExpiresAt time.Time          `bson:"expiresAt" json:"expiresAt"`
	Revoked   bool               `bson:"revoked" json:"revoked"`
	Rotated   bool               `bson:"rotated" json:"rotated"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// OTPChallenge is a pending two-factor challenge. The code is stored
// bcrypt-hashed; attempts count toward a configured maximum.
type OTPChallenge struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	CodeHash  string             `bson:"codeHash" json:"-"`
	Attempts  int                `bson:"attempts" json:"attempts"`
	Consumed  bool               `bson:"consumed" json:"consumed"`
	ExpiresAt time.Time          `bson:"expiresAt" json:"expiresAt"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// EmailToken is a single-use email-verification token.
type EmailToken struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Token     string             `bson:"token" json:"-"`
	ExpiresAt time.Time          `bson:"expiresAt" json:"expiresAt"`
	Used      bool               `bson:"used" json:"used"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// TokenPair is the issued access + refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"` // access token lifetime, seconds
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=entrepreneur investor"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResult is returned from login: either a token pair, or a 2FA challenge
// the client must answer via /verify-otp.
type LoginResult struct {
	TwoFactorRequired bool       `json:"twoFactorRequired"`
	ChallengeID       string     `json:"challengeId,omitempty"`
	Tokens            *TokenPair `json:"tokens,omitempty"`
	User              *User      `json:"user,omitempty"`
}

// VerifyOTPRequest is the body of POST /api/auth/verify-otp.
type VerifyOTPRequest struct {
	ChallengeID string `json:"challengeId" binding:"required"`
	Code        string `json:"code" binding:"required,len=6"`
}

// ResendOTPRequest is the body of POST /api/auth/resend-otp.
type ResendOTPRequest struct {
	ChallengeID string `json:"challengeId" binding:"required"`
}

// RefreshRequest is the body of POST /api/auth/refresh and /logout.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}
