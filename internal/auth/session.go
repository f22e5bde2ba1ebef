package auth

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims are the claims carried by an identity-provider session token.
// The subject is the provider's stable user id.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// Verifier validates identity-provider session tokens. Tokens are issued by
// the provider; this service only verifies them and extracts the subject.
type Verifier struct {
	secret []byte
	issuer string
}

// NewVerifier creates a session token verifier. An empty issuer disables the
// issuer check.
func NewVerifier(secret, issuer string) (*Verifier, error) {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return nil, errors.New("session secret must not be empty")
	}
	return &Verifier{
		secret: []byte(trimmed),
		issuer: strings.TrimSpace(issuer),
	}, nil
}

// VerifyToken validates the token and returns the subject id.
func (v *Verifier) VerifyToken(tokenString string) (string, error) {
	if v == nil {
		return "", errors.New("verifier is nil")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	parser := jwt.NewParser(opts...)

	token, err := parser.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token claims")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}
