package domain

import "time"

// TokenPair is what a successful login or refresh returns: the
// short-lived access token (JWT) and the opaque refresh token.
type TokenPair struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type,omitempty"` // typically "Bearer"
	ExpiresIn    time.Duration `json:"expires_in"`           // seconds until expiry

	// Principal the pair was issued for. Never serialized here; the
	// HTTP layer decides which responses echo it.
	Principal *Principal `json:"-"`
}

// RefreshToken models the stored refresh token record. Only the
// fingerprint of the opaque token is persisted, never the token.
type RefreshToken struct {
	ID          string
	PrincipalID string
	TokenHash   string // deterministic fingerprint (base64url SHA-256)
	ExpiresAt   time.Time
	Revoked     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
