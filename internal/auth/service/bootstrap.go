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
	"github.com/foliolab/folio/pkg/slogx"
)

var (
	ErrBootstrapAlready      = errors.New("system already bootstrapped")
	ErrBootstrapUnauthorized = errors.New("unauthorized bootstrap attempt")
	ErrBootstrapInvalid      = errors.New("invalid bootstrap data")
)

// BootstrapService seeds the first admin account into an empty store.
// Once any principal exists, bootstrap refuses to run again.
type BootstrapService struct {
	Store store.Store
	Token string // Pre-configured bootstrap token
}

func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	empty, err := s.Store.Principals().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	return !empty, nil
}

// Bootstrap creates the initial admin principal. The caller must
// present the pre-configured bootstrap token.
func (s *BootstrapService) Bootstrap(ctx context.Context, token string, data domain.BootstrapData) (domain.Principal, error) {
	l := slogx.FromContext(ctx)

	if s.Token == "" || token != s.Token {
		l.Warn("bootstrap attempt with bad token")
		return domain.Principal{}, ErrBootstrapUnauthorized
	}

	email := strings.ToLower(strings.TrimSpace(data.AdminEmail))
	if email == "" || len(data.AdminPassword) < MinPasswordLength {
		return domain.Principal{}, ErrBootstrapInvalid
	}

	done, err := s.IsBootstrapped(ctx)
	if err != nil {
		return domain.Principal{}, err
	}
	if done {
		return domain.Principal{}, ErrBootstrapAlready
	}

	hash, err := cryptox.HashPassword(data.AdminPassword)
	if err != nil {
		return domain.Principal{}, err
	}

	now := time.Now().UTC()
	admin := domain.Principal{
		ID:           idx.New().String(),
		Email:        email,
		DisplayName:  data.AdminDisplayName,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// Re-check inside the transaction so two concurrent bootstrap
		// calls cannot both succeed.
		empty, err := tx.Principals().IsEmpty(ctx)
		if err != nil {
			return err
		}
		if !empty {
			return ErrBootstrapAlready
		}
		return tx.Principals().CreatePrincipal(ctx, admin)
	})
	if err != nil {
		return domain.Principal{}, err
	}

	l.Info("bootstrap complete", slog.String("admin_id", admin.ID))
	return admin, nil
}
