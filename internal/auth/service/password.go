package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/foliolab/folio/internal/auth/store"
	"github.com/foliolab/folio/pkg/cryptox"
	"github.com/foliolab/folio/pkg/slogx"
)

// MinPasswordLength keeps obviously weak passwords out without
// imposing composition rules.
const MinPasswordLength = 8

var ErrWeakPassword = errors.New("password too short")

// ChangePassword verifies the current password, swaps in the new hash,
// and revokes every outstanding refresh token for the principal so
// stolen sessions die with the old credential.
func (s *AuthService) ChangePassword(ctx context.Context, principalID, current, next string) error {
	l := slogx.FromContext(ctx)

	if len(next) < MinPasswordLength {
		return ErrWeakPassword
	}

	p, err := s.Store.Principals().GetPrincipalByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}

	if err := cryptox.VerifyPassword(current, p.PasswordHash); err != nil {
		l.Info("password change rejected", slog.String("principal_id", principalID))
		return ErrInvalidCredentials
	}

	newHash, err := cryptox.HashPassword(next)
	if err != nil {
		return err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Principals().UpdatePasswordHash(ctx, principalID, newHash); err != nil {
			return err
		}
		return tx.RefreshTokens().RevokeAllForPrincipal(ctx, principalID)
	})
	if err != nil {
		return err
	}

	l.Info("password changed", slog.String("principal_id", principalID))
	return nil
}
