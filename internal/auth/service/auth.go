package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/foliolab/folio/internal/auth/domain"
	"github.com/foliolab/folio/internal/auth/store"
	"github.com/foliolab/folio/pkg/cryptox"
	"github.com/foliolab/folio/pkg/idx"
	"github.com/foliolab/folio/pkg/jwtx"
	"github.com/foliolab/folio/pkg/slogx"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrForbidden          = errors.New("forbidden")
)

// AuthService owns the session lifecycle: login, refresh, logout.
type AuthService struct {
	KeyManager *jwtx.KeyManager
	Store      store.Store
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// RotateRefresh controls whether a refresh revokes the presented
	// token and issues a replacement. With it off the same opaque
	// token stays valid until expiry or logout.
	RotateRefresh bool
}

// Login authenticates an email+password pair and issues a token pair.
//
// Every failure path returns ErrInvalidCredentials: unknown email,
// wrong password, and deactivated accounts are indistinguishable to
// the caller. The unknown-email path still burns an argon2
// verification against a decoy hash so response timing does not
// reveal whether the email exists.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	p, err := s.Store.Principals().GetPrincipalByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = cryptox.VerifyPassword(password, cryptox.DecoyHash())
			l.Info("login failed", slog.String("reason", "unknown_email"))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := cryptox.VerifyPassword(password, p.PasswordHash); err != nil {
		l.Info("login failed", slog.String("reason", "bad_password"), slog.String("principal_id", p.ID))
		return nil, ErrInvalidCredentials
	}

	if !p.Active {
		l.Info("login failed", slog.String("reason", "inactive"), slog.String("principal_id", p.ID))
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issuePair(ctx, p, now)
	if err != nil {
		return nil, err
	}

	// Best-effort; a failed stamp must not fail the login.
	if err := s.Store.Principals().RecordLogin(ctx, p.ID); err != nil {
		l.Warn("failed to record login", slog.Any("error", err), slog.String("principal_id", p.ID))
	}

	l.Info("login succeeded", slog.String("principal_id", p.ID), slog.String("role", p.Role.String()))
	return pair, nil
}

// Refresh exchanges a valid opaque refresh token for a new access
// token. When rotation is on, the presented token is revoked and a
// replacement issued in the same transaction; otherwise the original
// token is returned unchanged.
//
// Expired, revoked, unknown and malformed tokens all map to
// ErrInvalidToken.
func (s *AuthService) Refresh(ctx context.Context, refreshOpaque string) (*domain.TokenPair, error) {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)

	refreshOpaque = strings.TrimSpace(refreshOpaque)
	if refreshOpaque == "" {
		return nil, ErrInvalidToken
	}

	fp := cryptox.FingerprintToken(refreshOpaque)

	var result *domain.TokenPair

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		rt, err := tx.RefreshTokens().GetRefreshTokenByHash(ctx, fp)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidToken
			}
			return err
		}

		// The SQL could filter these, but double-check here so the
		// decision is visible in one place.
		if rt.Revoked || now.After(rt.ExpiresAt) {
			return ErrInvalidToken
		}

		p, err := tx.Principals().GetPrincipalByID(ctx, rt.PrincipalID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidToken
			}
			return err
		}
		if !p.Active {
			return ErrInvalidToken
		}

		accessToken, err := s.signAccess(p, now)
		if err != nil {
			return err
		}

		nextOpaque := refreshOpaque
		if s.RotateRefresh {
			nextOpaque, err = cryptox.GenerateToken(cryptox.TokenSize256)
			if err != nil {
				return err
			}

			if err := tx.RefreshTokens().RevokeRefreshToken(ctx, fp); err != nil {
				return err
			}
			// The replacement inherits the original expiry so a chain
			// of refreshes cannot extend the session forever.
			if err := tx.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
				ID:          idx.New().String(),
				PrincipalID: p.ID,
				TokenHash:   cryptox.FingerprintToken(nextOpaque),
				ExpiresAt:   rt.ExpiresAt,
				CreatedAt:   now,
				UpdatedAt:   now,
			}); err != nil {
				return err
			}
		}

		result = &domain.TokenPair{
			AccessToken:  accessToken,
			RefreshToken: nextOpaque,
			TokenType:    "Bearer",
			ExpiresIn:    s.AccessTTL,
			Principal:    &p,
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrInvalidToken) {
			l.Error("refresh failed", slog.Any("error", err))
		}
		return nil, err
	}

	return result, nil
}

// Verify checks an access token and returns its claims. Every failure
// (bad signature, expiry, wrong kind, unknown key) maps to
// ErrInvalidToken.
func (s *AuthService) Verify(accessToken string) (jwtx.Claims, error) {
	v := jwtx.NewVerifierEdDSA(s.KeyManager.KeySet(), s.Issuer)
	claims, err := v.Verify(accessToken)
	if err != nil {
		return jwtx.Claims{}, ErrInvalidToken
	}
	return claims, nil
}

// RequireRole checks verified claims against an allowed role set.
func RequireRole(claims jwtx.Claims, allowed ...domain.Role) error {
	for _, role := range allowed {
		if claims.Role == role.String() {
			return nil
		}
	}
	return ErrForbidden
}

// Logout revokes the presented refresh token. It is idempotent:
// revoking an unknown, expired or already-revoked token succeeds
// without leaking whether the token ever existed.
func (s *AuthService) Logout(ctx context.Context, refreshOpaque string) error {
	refreshOpaque = strings.TrimSpace(refreshOpaque)
	if refreshOpaque == "" {
		return nil
	}

	fp := cryptox.FingerprintToken(refreshOpaque)
	return s.Store.RefreshTokens().RevokeRefreshToken(ctx, fp)
}

// issuePair signs an access token and persists a fresh refresh token.
func (s *AuthService) issuePair(ctx context.Context, p domain.Principal, now time.Time) (*domain.TokenPair, error) {
	accessToken, err := s.signAccess(p, now)
	if err != nil {
		return nil, err
	}

	refreshOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	if err := s.Store.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
		ID:          idx.New().String(),
		PrincipalID: p.ID,
		TokenHash:   cryptox.FingerprintToken(refreshOpaque),
		ExpiresAt:   now.Add(s.RefreshTTL),
		CreatedAt:   now,
		UpdatedAt:   now,
	}); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshOpaque,
		TokenType:    "Bearer",
		ExpiresIn:    s.AccessTTL,
		Principal:    &p,
	}, nil
}

func (s *AuthService) signAccess(p domain.Principal, now time.Time) (string, error) {
	claims := jwtx.NewAccessClaims(p.ID, p.Email, p.Role.String(), s.AccessTTL, s.Issuer, now)
	return s.KeyManager.Signer().Sign(claims)
}
