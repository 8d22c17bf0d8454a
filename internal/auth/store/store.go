package store

import (
	"context"
	"errors"

	"github.com/foliolab/folio/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement this. It exposes sub-repositories to keep
// concerns tidy and testable, and to stop callers from accidentally
// opening transactions within transactions.
type Store interface {
	Principals() Principals
	RefreshTokens() RefreshTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// Use it for multi-step operations that must be atomic (e.g.,
	// refresh rotation). The caller MUST call Commit() or Rollback().
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error
	// the transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Principals interface {
	// GetPrincipalByID returns a principal by id.
	GetPrincipalByID(ctx context.Context, id string) (domain.Principal, error)

	// GetPrincipalByEmail looks up by email; callers pass the email
	// already lowercased.
	GetPrincipalByEmail(ctx context.Context, email string) (domain.Principal, error)

	// CreatePrincipal inserts a new principal (id is provided by app via ULID).
	CreatePrincipal(ctx context.Context, p domain.Principal) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, principalID string, newHash string) error

	// SetActive toggles whether the principal may authenticate.
	SetActive(ctx context.Context, principalID string, active bool) error

	// RecordLogin stamps last_login_at. Best-effort from the caller's
	// point of view; a failure here must not fail the login.
	RecordLogin(ctx context.Context, principalID string) error

	// DeletePrincipal cascades to refresh_tokens (per schema).
	DeletePrincipal(ctx context.Context, principalID string) error

	// IsEmpty returns true if there are no principals.
	IsEmpty(ctx context.Context) (bool, error)
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the token by its fingerprint.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// RevokeRefreshToken flips revoked, sets updated_at. Revoking an
	// already-revoked or unknown token is not an error.
	RevokeRefreshToken(ctx context.Context, hash string) error

	// RevokeAllForPrincipal bulk revocation (e.g., password change).
	RevokeAllForPrincipal(ctx context.Context, principalID string) error

	// DeleteExpiredRefreshTokens is housekeeping.
	DeleteExpiredRefreshTokens(ctx context.Context) error
}
