// Package auth provides session tokens, password hashing and the
// authorization rules of the bulletin board API.
//
// AUTHENTICATION FLOW OVERVIEW:
//  1. POST /api/users registers an account, POST /api/users/login checks the
//     password. Both return a signed token alongside the user record.
//  2. The client keeps the token and sends it on every protected call as
//     "Authorization: Bearer <token>".
//  3. RequireAuth extracts the bearer token, asks a Verifier to validate it
//     and reload the user, and stores the resulting Identity in the request
//     context.
//  4. Services receive the Identity and apply the owner-or-admin and
//     admin-only rules from guard.go.
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: {"alg":"HS256","typ":"JWT"}
//	- Payload: {"user_id":"...","is_admin":false,"iat":...,"exp":...}
//	- Signature: HMAC-SHA256(header+"."+payload, secretKey)
//
// The is_admin claim is informational. Verification always reloads the user
// and trusts the stored flag.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the lifetime of a session token: seven days.
const DefaultTokenTTL = 7 * 24 * time.Hour

const issuer = "vgb"

var (
	ErrTokenExpired = errors.New("auth: token expired")
	ErrInvalidToken = errors.New("auth: invalid token")
)

// TokenService handles JWT creation and validation.
//
// It holds the HMAC secret used to sign and verify tokens, and the lifetime
// given to new tokens. There is no revocation list: a token is valid until
// it expires.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given secret and token
// lifetime. A non-positive ttl selects DefaultTokenTTL.
// Example: VGB_AUTH_JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// Claims is the JWT payload: the user id, the admin flag at issue time and
// the registered iat/exp/iss fields.
type Claims struct {
	UserID  string `json:"user_id"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// TTL returns the lifetime given to new tokens.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Generate creates and signs a token for the user with the configured
// lifetime.
func (s *TokenService) Generate(userID string, isAdmin bool) (string, error) {
	return s.GenerateWithDuration(userID, isAdmin, s.ttl)
}

// GenerateWithDuration creates a token with a custom expiry duration.
// Used in tests to mint already-expired tokens.
func (s *TokenService) GenerateWithDuration(userID string, isAdmin bool, d time.Duration) (string, error) {
	now := time.Now()

	c := Claims{
		UserID:  userID,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
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

// Validate parses and verifies a JWT string and returns its claims.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid for this service's secret
//   - Token is not expired and carries an expiry at all
//   - Issuer is "vgb"
//   - Algorithm is HS256, so "none" and RS/HS confusion are rejected
//
// Errors wrap ErrTokenExpired or ErrInvalidToken.
func (s *TokenService) Validate(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
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
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: bad claims", ErrInvalidToken)
	}

	if c.UserID == "" {
		return nil, fmt.Errorf("%w: token has no user_id", ErrInvalidToken)
	}

	return c, nil
}
