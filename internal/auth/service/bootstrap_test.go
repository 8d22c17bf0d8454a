package service

import (
	"context"
	"testing"

	"github.com/foliolab/folio/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestBootstrapSeedsAdminOnce(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	bs := &BootstrapService{Store: e.store, Token: "setup-token"}

	done, err := bs.IsBootstrapped(ctx)
	require.NoError(t, err)
	require.False(t, done)

	data := domain.BootstrapData{
		AdminEmail:       "Admin@Example.com",
		AdminDisplayName: "Admin",
		AdminPassword:    "bootstrap-pass",
	}

	_, err = bs.Bootstrap(ctx, "wrong-token", data)
	require.ErrorIs(t, err, ErrBootstrapUnauthorized)

	admin, err := bs.Bootstrap(ctx, "setup-token", data)
	require.NoError(t, err)
	require.Equal(t, "admin@example.com", admin.Email)
	require.Equal(t, domain.RoleAdmin, admin.Role)

	done, err = bs.IsBootstrapped(ctx)
	require.NoError(t, err)
	require.True(t, done)

	_, err = bs.Bootstrap(ctx, "setup-token", data)
	require.ErrorIs(t, err, ErrBootstrapAlready)

	// The seeded admin can log in.
	_, err = e.svc.Login(ctx, "admin@example.com", "bootstrap-pass")
	require.NoError(t, err)
}

func TestBootstrapRejectsBadData(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	bs := &BootstrapService{Store: e.store, Token: "setup-token"}

	_, err := bs.Bootstrap(ctx, "setup-token", domain.BootstrapData{
		AdminEmail: "", AdminPassword: "bootstrap-pass",
	})
	require.ErrorIs(t, err, ErrBootstrapInvalid)

	_, err = bs.Bootstrap(ctx, "setup-token", domain.BootstrapData{
		AdminEmail: "a@example.com", AdminPassword: "short",
	})
	require.ErrorIs(t, err, ErrBootstrapInvalid)
}

func TestBootstrapDisabledWithoutToken(t *testing.T) {
	e := newTestEnv(t)

	bs := &BootstrapService{Store: e.store, Token: ""}
	_, err := bs.Bootstrap(context.Background(), "", domain.BootstrapData{
		AdminEmail: "a@example.com", AdminPassword: "bootstrap-pass",
	})
	require.ErrorIs(t, err, ErrBootstrapUnauthorized)
}
