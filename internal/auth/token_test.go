// ABOUTME: Tests for JWT token generation and verification
// ABOUTME: Covers valid tokens, expiration, wrong secrets, and malformed input

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWTVerifier_RoundTrip(t *testing.T) {
	verifier := NewJWTVerifier([]byte("test-secret-test-secret-test-sec"))

	token, err := verifier.Generate("alice", time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	username, err := verifier.Verify(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if username != "alice" {
		t.Errorf("username = %q, want alice", username)
	}
}

func TestJWTVerifier_Expired(t *testing.T) {
	verifier := NewJWTVerifier([]byte("test-secret-test-secret-test-sec"))

	token, err := verifier.Generate("alice", -time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = verifier.Verify(token)
	if err != ErrExpiredToken {
		t.Errorf("error = %v, want ErrExpiredToken", err)
	}
}

func TestJWTVerifier_WrongSecret(t *testing.T) {
	verifier := NewJWTVerifier([]byte("test-secret-test-secret-test-sec"))
	other := NewJWTVerifier([]byte("other-secret-other-secret-other-"))

	token, err := verifier.Generate("alice", time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := other.Verify(token); err == nil {
		t.Error("expected error verifying with wrong secret")
	}
}

func TestJWTVerifier_MissingSubject(t *testing.T) {
	secret := []byte("test-secret-test-secret-test-sec")
	verifier := NewJWTVerifier(secret)

	// A correctly signed token carrying no "sub" claim
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := verifier.Verify(signed); !errors.Is(err, ErrMissingClaim) {
		t.Errorf("error = %v, want ErrMissingClaim", err)
	}
}

func TestJWTVerifier_RejectsOtherSigningMethods(t *testing.T) {
	secret := []byte("test-secret-test-secret-test-sec")
	verifier := NewJWTVerifier(secret)

	// HS512 is signed with the same secret but must still be rejected
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := verifier.Verify(signed); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("error = %v, want ErrInvalidToken", err)
	}
}

func TestJWTVerifier_Malformed(t *testing.T) {
	verifier := NewJWTVerifier([]byte("test-secret-test-secret-test-sec"))

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		if _, err := verifier.Verify(tok); err == nil {
			t.Errorf("expected error for token %q", tok)
		}
	}
}
