package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTLs. Short-lived access tokens paired with week-long
// refresh tokens; both can be overridden per service via config.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// KindAccess marks a JWT as a short-lived access credential. Refresh
// credentials are opaque and never appear as JWTs, so a verifier that
// insists on this kind can never be satisfied by anything else we mint.
const KindAccess = "access"

// Claims are the access-token claims shared between this service and
// the portfolio API that consumes its tokens.
type Claims struct {
	jwt.RegisteredClaims

	// Kind discriminates credential types ("access").
	Kind string `json:"kind,omitempty"`

	// Email of the authenticated principal, for display and audit.
	Email string `json:"email,omitempty"`

	// Role is the principal's role name ("admin" or "user").
	Role string `json:"role,omitempty"`
}

// NewAccessClaims builds minimally-correct claims for an access token.
func NewAccessClaims(
	subject, email, role string,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Kind:  KindAccess,
		Email: email,
		Role:  role,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks the issuer claim when an expectation is set.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateKind rejects tokens presented for the wrong purpose.
func (c *Claims) ValidateKind(expected string) error {
	if c.Kind != expected {
		return ErrWrongKind
	}
	return nil
}

// ValidateExpiry ensures the token is inside its [nbf, exp) window.
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}
	return nil
}
