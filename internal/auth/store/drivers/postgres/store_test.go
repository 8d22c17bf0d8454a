package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/foliolab/folio/internal/auth/domain"
	"github.com/foliolab/folio/internal/auth/store"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewStoreFromDB(db), mock
}

func principalRows(p domain.Principal) *sqlmock.Rows {
	var lastLogin sql.NullTime
	if p.LastLoginAt != nil {
		lastLogin = sql.NullTime{Time: *p.LastLoginAt, Valid: true}
	}
	return sqlmock.NewRows([]string{
		"id", "email", "display_name", "password_hash", "role",
		"active", "last_login_at", "created_at", "updated_at",
	}).AddRow(p.ID, p.Email, p.DisplayName, p.PasswordHash, p.Role.String(),
		p.Active, lastLogin, p.CreatedAt, p.UpdatedAt)
}

func TestGetPrincipalByEmail(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now().UTC()

	want := domain.Principal{
		ID:           "01HYQ",
		Email:        "admin@example.com",
		DisplayName:  "Admin",
		PasswordHash: "$argon2id$...",
		Role:         domain.RoleAdmin,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	mock.ExpectQuery(`SELECT .+ FROM principals WHERE email = \$1`).
		WithArgs("admin@example.com").
		WillReturnRows(principalRows(want))

	got, err := s.Principals().GetPrincipalByEmail(context.Background(), "admin@example.com")
	require.NoError(t, err)
	require.Equal(t, want.ID, got.ID)
	require.Equal(t, domain.RoleAdmin, got.Role)
	require.Nil(t, got.LastLoginAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPrincipalByEmailNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .+ FROM principals WHERE email = \$1`).
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := s.Principals().GetPrincipalByEmail(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPrincipalRejectsUnknownRole(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now().UTC()

	bad := domain.Principal{
		ID: "01HYQ", Email: "x@example.com", PasswordHash: "h",
		Role: "superuser", Active: true, CreatedAt: now, UpdatedAt: now,
	}
	mock.ExpectQuery(`SELECT .+ FROM principals WHERE id = \$1`).
		WithArgs("01HYQ").
		WillReturnRows(principalRows(bad))

	_, err := s.Principals().GetPrincipalByID(context.Background(), "01HYQ")
	require.Error(t, err)
}

func TestRevokeRefreshTokenIsBlindUpdate(t *testing.T) {
	s, mock := newMockStore(t)

	// Zero rows affected must not be an error.
	mock.ExpectExec(`UPDATE refresh_tokens SET revoked = TRUE`).
		WithArgs(sqlmock.AnyArg(), "unknown-fingerprint").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.RefreshTokens().RevokeRefreshToken(context.Background(), "unknown-fingerprint")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePasswordHashNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE principals SET password_hash = \$1`).
		WithArgs("newhash", sqlmock.AnyArg(), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.Principals().UpdatePasswordHash(context.Background(), "missing", "newhash")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTxCommit(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE refresh_tokens SET revoked = TRUE`).
		WithArgs(sqlmock.AnyArg(), "fp").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.WithTx(context.Background(), func(tx store.Tx) error {
		return tx.RefreshTokens().RevokeRefreshToken(context.Background(), "fp")
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxRollbackOnError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := s.WithTx(context.Background(), func(tx store.Tx) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}
