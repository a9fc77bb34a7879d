// Package auth provides JWT session tokens, password hashing, and the HTTP
// middleware that gates every protected route.
//
// A session token is a signed HS256 JWT carrying the user ID in the "sub"
// claim plus issued-at and expiry instants. Validity is purely cryptographic
// and time-based; there is no server-side session store, so a token cannot
// be revoked before its natural expiry. Clients discard tokens at logout or
// when the server rejects one.
package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shaunstone0/stone-budget/internal/apperror"
)

// DefaultTokenLifetime is how long an issued token stays valid.
const DefaultTokenLifetime = 7 * 24 * time.Hour

const issuer = "stone-budget"

// fallbackSecret is used when no JWT secret is configured. It is a known
// weak default: NewTokenService logs a warning whenever it is in effect.
const fallbackSecret = "fallback-secret-key"

// TokenService signs and verifies session tokens.
//
// The signing algorithm is fixed to HS256. Verification pins the algorithm
// with jwt.WithValidMethods, so a token claiming any other scheme ("none"
// included) is rejected outright.
type TokenService struct {
	secret   []byte
	lifetime time.Duration
}

// NewTokenService creates a TokenService with the given symmetric secret and
// token lifetime. An empty secret falls back to a fixed constant and logs a
// warning: weak, but never silent. A non-positive lifetime uses
// DefaultTokenLifetime.
func NewTokenService(secret string, lifetime time.Duration, logger *slog.Logger) *TokenService {
	if secret == "" {
		logger.Warn("JWT_SECRET not set, using fallback secret; do not run this in production")
		secret = fallbackSecret
	}
	if lifetime <= 0 {
		lifetime = DefaultTokenLifetime
	}
	return &TokenService{secret: []byte(secret), lifetime: lifetime}
}

// claims embeds jwt.RegisteredClaims; the user ID travels in "sub".
type claims struct {
	jwt.RegisteredClaims
}

// Issue creates and signs a session token for the given user ID.
func (s *TokenService) Issue(userID string) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// IssueWithLifetime creates a token with a custom expiry. Used by tests to
// mint already-expired tokens.
func (s *TokenService) IssueWithLifetime(userID string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Verify parses and checks a token string and returns the user ID it was
// issued for. Failures are distinguished into exactly three outcomes:
//
//   - apperror.ErrTokenExpired: signature valid, expiry in the past
//   - apperror.ErrTokenInvalid: signature or structure invalid, wrong
//     algorithm, wrong issuer, or empty subject
//   - apperror.ErrTokenVerification: anything else
func (s *TokenService) Verify(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", apperror.TokenExpired()
		case errors.Is(err, jwt.ErrTokenMalformed),
			errors.Is(err, jwt.ErrTokenSignatureInvalid),
			errors.Is(err, jwt.ErrTokenUnverifiable),
			errors.Is(err, jwt.ErrTokenInvalidIssuer):
			return "", apperror.TokenInvalid()
		default:
			return "", apperror.TokenVerification()
		}
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", apperror.TokenInvalid()
	}

	if c.Subject == "" {
		return "", apperror.TokenInvalid()
	}

	return c.Subject, nil
}
