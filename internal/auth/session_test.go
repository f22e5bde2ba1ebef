package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("unexpected error signing token: %v", err)
	}
	return token
}

func TestNewVerifierRequiresSecret(t *testing.T) {
	if _, err := NewVerifier("   ", ""); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestVerifyTokenReturnsSubject(t *testing.T) {
	v, err := NewVerifier("test-secret", "identity-provider")
	if err != nil {
		t.Fatalf("unexpected error creating verifier: %v", err)
	}

	token := signToken(t, "test-secret", jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user_2abc",
		Issuer:    "identity-provider",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	subject, err := v.VerifyToken(token)
	if err != nil {
		t.Fatalf("unexpected error verifying token: %v", err)
	}
	if subject != "user_2abc" {
		t.Fatalf("expected subject %q, got %q", "user_2abc", subject)
	}
}

func TestVerifyTokenRejections(t *testing.T) {
	v, err := NewVerifier("test-secret", "identity-provider")
	if err != nil {
		t.Fatalf("unexpected error creating verifier: %v", err)
	}

	future := jwt.NewNumericDate(time.Now().Add(time.Hour))

	tests := []struct {
		name  string
		token string
	}{
		{
			name: "wrong secret",
			token: signToken(t, "other-secret", jwt.SigningMethodHS256, jwt.RegisteredClaims{
				Subject: "user_2abc", Issuer: "identity-provider", ExpiresAt: future,
			}),
		},
		{
			name: "wrong issuer",
			token: signToken(t, "test-secret", jwt.SigningMethodHS256, jwt.RegisteredClaims{
				Subject: "user_2abc", Issuer: "someone-else", ExpiresAt: future,
			}),
		},
		{
			name: "expired",
			token: signToken(t, "test-secret", jwt.SigningMethodHS256, jwt.RegisteredClaims{
				Subject: "user_2abc", Issuer: "identity-provider",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			}),
		},
		{
			name: "unexpected signing method",
			token: signToken(t, "test-secret", jwt.SigningMethodHS512, jwt.RegisteredClaims{
				Subject: "user_2abc", Issuer: "identity-provider", ExpiresAt: future,
			}),
		},
		{
			name: "missing subject",
			token: signToken(t, "test-secret", jwt.SigningMethodHS256, jwt.RegisteredClaims{
				Issuer: "identity-provider", ExpiresAt: future,
			}),
		},
		{
			name:  "garbage",
			token: "not.a.token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := v.VerifyToken(tt.token); err == nil {
				t.Fatal("expected verification error")
			}
		})
	}
}

func TestVerifyTokenIssuerCheckDisabled(t *testing.T) {
	v, err := NewVerifier("test-secret", "")
	if err != nil {
		t.Fatalf("unexpected error creating verifier: %v", err)
	}

	token := signToken(t, "test-secret", jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user_2abc",
		Issuer:    "anything",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	subject, err := v.VerifyToken(token)
	if err != nil {
		t.Fatalf("unexpected error verifying token: %v", err)
	}
	if subject != "user_2abc" {
		t.Fatalf("expected subject %q, got %q", "user_2abc", subject)
	}
}
