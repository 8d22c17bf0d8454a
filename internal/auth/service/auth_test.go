package service

import (
	"context"
	"testing"
	"time"

	"github.com/foliolab/folio/internal/auth/domain"
	"github.com/foliolab/folio/internal/auth/store"
	"github.com/foliolab/folio/internal/auth/store/drivers/sqlite"
	"github.com/foliolab/folio/pkg/cryptox"
	"github.com/foliolab/folio/pkg/idx"
	"github.com/foliolab/folio/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testIssuer = "https://auth.test"

type testEnv struct {
	store    store.Store
	svc      *AuthService
	verifier jwtx.Verifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cryptox.SetPepperPath(t.TempDir() + "/pepper")

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })

	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{NumKeys: 1})
	require.NoError(t, err)

	return &testEnv{
		store: s,
		svc: &AuthService{
			KeyManager:    km,
			Store:         s,
			Issuer:        testIssuer,
			AccessTTL:     jwtx.DefaultAccessTokenTTL,
			RefreshTTL:    jwtx.DefaultRefreshTokenTTL,
			RotateRefresh: true,
		},
		verifier: jwtx.NewVerifierEdDSA(km.KeySet(), testIssuer),
	}
}

func (e *testEnv) createPrincipal(t *testing.T, email, password string, role domain.Role) domain.Principal {
	t.Helper()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	now := time.Now().UTC()
	p := domain.Principal{
		ID:           idx.New().String(),
		Email:        email,
		DisplayName:  "Test",
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, e.store.Principals().CreatePrincipal(context.Background(), p))
	return p
}

func TestLoginIssuesVerifiableTokenPair(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	p := e.createPrincipal(t, "admin@example.com", "correct horse", domain.RoleAdmin)

	pair, err := e.svc.Login(ctx, "admin@example.com", "correct horse")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, "Bearer", pair.TokenType)

	claims, err := e.verifier.Verify(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, p.ID, claims.Subject)
	require.Equal(t, "admin@example.com", claims.Email)
	require.Equal(t, "admin", claims.Role)

	// Login stamps last_login_at.
	got, err := e.store.Principals().GetPrincipalByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)
}

func TestVerifyAndRequireRole(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.createPrincipal(t, "user@example.com", "correct horse", domain.RoleUser)

	pair, err := e.svc.Login(ctx, "user@example.com", "correct horse")
	require.NoError(t, err)

	claims, err := e.svc.Verify(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "user", claims.Role)

	require.NoError(t, RequireRole(claims, domain.RoleUser))
	require.NoError(t, RequireRole(claims, domain.RoleAdmin, domain.RoleUser))
	require.ErrorIs(t, RequireRole(claims, domain.RoleAdmin), ErrForbidden)

	// A flipped signature byte fails verification outright.
	tampered := pair.AccessToken[:len(pair.AccessToken)-2] + "xx"
	_, err = e.svc.Verify(tampered)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = e.svc.Verify(pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestLoginEmailIsCaseInsensitive(t *testing.T) {
	e := newTestEnv(t)
	e.createPrincipal(t, "admin@example.com", "correct horse", domain.RoleAdmin)

	_, err := e.svc.Login(context.Background(), "  Admin@Example.COM ", "correct horse")
	require.NoError(t, err)
}

func TestLoginFailuresAreUniform(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	p := e.createPrincipal(t, "user@example.com", "correct horse", domain.RoleUser)

	// Unknown email, wrong password and deactivated account all come
	// back as the same error.
	_, err := e.svc.Login(ctx, "nobody@example.com", "whatever")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = e.svc.Login(ctx, "user@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, e.store.Principals().SetActive(ctx, p.ID, false))
	_, err = e.svc.Login(ctx, "user@example.com", "correct horse")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = e.svc.Login(ctx, "", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshRotatesToken(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.createPrincipal(t, "user@example.com", "correct horse", domain.RoleUser)

	pair, err := e.svc.Login(ctx, "user@example.com", "correct horse")
	require.NoError(t, err)

	next, err := e.svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	_, err = e.verifier.Verify(next.AccessToken)
	require.NoError(t, err)

	// The old token died with the rotation.
	_, err = e.svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)

	// The replacement still works.
	_, err = e.svc.Refresh(ctx, next.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshWithoutRotationKeepsToken(t *testing.T) {
	e := newTestEnv(t)
	e.svc.RotateRefresh = false
	ctx := context.Background()
	e.createPrincipal(t, "user@example.com", "correct horse", domain.RoleUser)

	pair, err := e.svc.Login(ctx, "user@example.com", "correct horse")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		next, err := e.svc.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		require.Equal(t, pair.RefreshToken, next.RefreshToken)
	}
}

func TestRefreshRejectsBadTokens(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	p := e.createPrincipal(t, "user@example.com", "correct horse", domain.RoleUser)

	_, err := e.svc.Refresh(ctx, "")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = e.svc.Refresh(ctx, "never-issued-token")
	require.ErrorIs(t, err, ErrInvalidToken)

	// Tampering with an issued token changes its fingerprint.
	pair, err := e.svc.Login(ctx, "user@example.com", "correct horse")
	require.NoError(t, err)
	_, err = e.svc.Refresh(ctx, pair.RefreshToken+"x")
	require.ErrorIs(t, err, ErrInvalidToken)

	// An access token is the wrong kind of credential entirely.
	_, err = e.svc.Refresh(ctx, pair.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)

	// Deactivating the principal invalidates outstanding refreshes.
	require.NoError(t, e.store.Principals().SetActive(ctx, p.ID, false))
	_, err = e.svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	e := newTestEnv(t)
	e.svc.RefreshTTL = -time.Minute // issued already expired
	ctx := context.Background()
	e.createPrincipal(t, "user@example.com", "correct horse", domain.RoleUser)

	pair, err := e.svc.Login(ctx, "user@example.com", "correct horse")
	require.NoError(t, err)

	_, err = e.svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRotatedTokenInheritsExpiry(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.createPrincipal(t, "user@example.com", "correct horse", domain.RoleUser)

	pair, err := e.svc.Login(ctx, "user@example.com", "correct horse")
	require.NoError(t, err)

	orig, err := e.store.RefreshTokens().GetRefreshTokenByHash(ctx, cryptox.FingerprintToken(pair.RefreshToken))
	require.NoError(t, err)

	next, err := e.svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	rotated, err := e.store.RefreshTokens().GetRefreshTokenByHash(ctx, cryptox.FingerprintToken(next.RefreshToken))
	require.NoError(t, err)
	require.WithinDuration(t, orig.ExpiresAt, rotated.ExpiresAt, time.Second)
}

func TestLogoutRevokesAndIsIdempotent(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.createPrincipal(t, "user@example.com", "correct horse", domain.RoleUser)

	pair, err := e.svc.Login(ctx, "user@example.com", "correct horse")
	require.NoError(t, err)

	require.NoError(t, e.svc.Logout(ctx, pair.RefreshToken))

	_, err = e.svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)

	// Logging out again, or with garbage, still succeeds.
	require.NoError(t, e.svc.Logout(ctx, pair.RefreshToken))
	require.NoError(t, e.svc.Logout(ctx, "never-issued"))
	require.NoError(t, e.svc.Logout(ctx, ""))
}

func TestLogoutDoesNotKillOtherSessions(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.createPrincipal(t, "user@example.com", "correct horse", domain.RoleUser)

	first, err := e.svc.Login(ctx, "user@example.com", "correct horse")
	require.NoError(t, err)
	second, err := e.svc.Login(ctx, "user@example.com", "correct horse")
	require.NoError(t, err)

	require.NoError(t, e.svc.Logout(ctx, first.RefreshToken))

	_, err = e.svc.Refresh(ctx, second.RefreshToken)
	require.NoError(t, err)
}

func TestExpiredAccessTokenFailsVerificationButRefreshRecovers(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.createPrincipal(t, "user@example.com", "correct horse", domain.RoleUser)

	// Issue with an already-elapsed access TTL, then recover.
	e.svc.AccessTTL = -time.Minute
	pair, err := e.svc.Login(ctx, "user@example.com", "correct horse")
	require.NoError(t, err)

	_, err = e.verifier.Verify(pair.AccessToken)
	require.Error(t, err)

	e.svc.AccessTTL = jwtx.DefaultAccessTokenTTL
	next, err := e.svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	_, err = e.verifier.Verify(next.AccessToken)
	require.NoError(t, err)
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	p := e.createPrincipal(t, "user@example.com", "correct horse", domain.RoleUser)

	pair, err := e.svc.Login(ctx, "user@example.com", "correct horse")
	require.NoError(t, err)

	require.ErrorIs(t, e.svc.ChangePassword(ctx, p.ID, "wrong", "new password!"), ErrInvalidCredentials)
	require.ErrorIs(t, e.svc.ChangePassword(ctx, p.ID, "correct horse", "short"), ErrWeakPassword)

	require.NoError(t, e.svc.ChangePassword(ctx, p.ID, "correct horse", "new password!"))

	// Old refresh token is dead, old password no longer works.
	_, err = e.svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)
	_, err = e.svc.Login(ctx, "user@example.com", "correct horse")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = e.svc.Login(ctx, "user@example.com", "new password!")
	require.NoError(t, err)
}
