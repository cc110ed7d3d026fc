package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func init() {
	SetJWTSecret("test-secret-key-for-testing")
}

func TestGenerateAndParseToken(t *testing.T) {
	sub := uuid.NewString()
	token, err := GenerateToken(sub, "ana@example.com", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.UserID() != sub {
		t.Errorf("UserID() = %q, expected %q", claims.UserID(), sub)
	}
	if claims.Email != "ana@example.com" {
		t.Errorf("Email = %q", claims.Email)
	}
}

func TestParseToken_InvalidToken(t *testing.T) {
	invalidTokens := []string{
		"",
		"invalid",
		"not.a.token",
		"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.invalid.signature",
	}

	for _, token := range invalidTokens {
		if _, err := ParseToken(token); err == nil {
			t.Errorf("ParseToken(%q) should return error", token)
		}
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	SetJWTSecret("original-secret")
	token, _ := GenerateToken(uuid.NewString(), "a@b.c", time.Hour)

	SetJWTSecret("different-secret")
	_, err := ParseToken(token)
	SetJWTSecret("test-secret-key-for-testing")

	if err == nil {
		t.Error("ParseToken() should fail with wrong secret")
	}
}

func TestParseToken_Expired(t *testing.T) {
	token, _ := GenerateToken(uuid.NewString(), "a@b.c", -time.Minute)
	if _, err := ParseToken(token); err == nil {
		t.Error("expired token should be rejected")
	}
}

func TestParseToken_SubjectMustBeUUID(t *testing.T) {
	token, _ := GenerateToken("42", "a@b.c", time.Hour)
	if _, err := ParseToken(token); err == nil {
		t.Error("non-UUID subject should be rejected")
	}
}

func TestParseToken_RejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret-key-for-testing"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseToken(token); err == nil {
		t.Error("HS512 token should be rejected")
	}
}

func TestParseToken_IssuerAndAudience(t *testing.T) {
	SetJWTExpectations("https://auth.example.com", "authenticated")
	defer SetJWTExpectations("", "")

	token, _ := GenerateToken(uuid.NewString(), "a@b.c", time.Hour)
	if _, err := ParseToken(token); err != nil {
		t.Fatalf("matching issuer/audience rejected: %v", err)
	}

	SetJWTExpectations("https://other.example.com", "authenticated")
	if _, err := ParseToken(token); err == nil {
		t.Error("wrong issuer should be rejected")
	}
}
