package util

import (
	"strings"
	"testing"
)

func TestGenerateSecret(t *testing.T) {
	a, err := GenerateSecret(RefreshTokenPrefix)
	if err != nil {
		t.Fatalf("GenerateSecret: %v", err)
	}
	if !strings.HasPrefix(a, RefreshTokenPrefix+"_") {
		t.Errorf("secret %q missing prefix", a)
	}

	b, err := GenerateSecret(RefreshTokenPrefix)
	if err != nil {
		t.Fatalf("GenerateSecret: %v", err)
	}
	if a == b {
		t.Error("two secrets are identical")
	}
}

func TestHashAndVerifySecret(t *testing.T) {
	hash, err := HashSecret("123456")
	if err != nil {
		t.Fatalf("HashSecret: %v", err)
	}
	if hash == "123456" {
		t.Fatal("hash equals plaintext")
	}
	if !VerifySecret("123456", hash) {
		t.Error("correct secret rejected")
	}
	if VerifySecret("654321", hash) {
		t.Error("wrong secret accepted")
	}
}

func TestHashLookupTokenDeterministic(t *testing.T) {
	a := HashLookupToken("rt_abc")
	b := HashLookupToken("rt_abc")
	if a != b {
		t.Error("lookup hash is not deterministic")
	}
	if a == HashLookupToken("rt_abd") {
		t.Error("different tokens hash identically")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
}

func TestGenerateOTPCode(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := GenerateOTPCode()
		if err != nil {
			t.Fatalf("GenerateOTPCode: %v", err)
		}
		if len(code) != OTPDigits {
			t.Fatalf("code %q length = %d, want %d", code, len(code), OTPDigits)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("code %q contains non-digit", code)
			}
		}
	}
}
