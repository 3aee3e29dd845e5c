package util

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

const (
	// RefreshTokenPrefix is the prefix for refresh tokens
	RefreshTokenPrefix = "rt"
	// SecretLength is the length of the random part in bytes
	SecretLength = 32
	// BCryptCost is the cost factor for bcrypt hashing
	BCryptCost = 12
	// OTPDigits is the number of digits in a one-time code
	OTPDigits = 6
)

// GenerateSecret generates a new secure random token with format: <prefix>_<random_base64>
func GenerateSecret(prefix string) (string, error) {
	randomBytes := make([]byte, SecretLength)
	_, err := rand.Read(randomBytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	// Use URL-safe base64 encoding without padding for cleaner tokens
	randomPart := base64.RawURLEncoding.EncodeToString(randomBytes)
	return fmt.Sprintf("%s_%s", prefix, randomPart), nil
}

// HashSecret hashes a secret using bcrypt
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), BCryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(hash), nil
}

// VerifySecret compares a provided secret with its bcrypt hash
func VerifySecret(provided, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(provided))
	return err == nil
}

// HashLookupToken returns the SHA-256 hex digest of a token. Used where the
// hash must be queryable by value (refresh tokens); bcrypt hashes cannot be
// looked up directly.
func HashLookupToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// GenerateOTPCode generates a zero-padded numeric one-time code.
func GenerateOTPCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < OTPDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", OTPDigits, n), nil
}
