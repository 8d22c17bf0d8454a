package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/foliolab/folio/internal/auth/domain"
	"github.com/foliolab/folio/internal/auth/store"
)

type principalsRepo struct {
	db dbtx
}

const principalColumns = `id, email, display_name, password_hash, role, active, last_login_at, created_at, updated_at`

func scanPrincipal(row *sql.Row) (domain.Principal, error) {
	var (
		p         domain.Principal
		role      string
		lastLogin sql.NullTime
	)
	err := row.Scan(&p.ID, &p.Email, &p.DisplayName, &p.PasswordHash,
		&role, &p.Active, &lastLogin, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Principal{}, mapNotFound(err)
	}

	p.Role, err = domain.ParseRole(role)
	if err != nil {
		return domain.Principal{}, err
	}
	p.LastLoginAt = mapNullTimePtr(lastLogin)
	return p, nil
}

func (r *principalsRepo) GetPrincipalByID(ctx context.Context, id string) (domain.Principal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+principalColumns+` FROM principals WHERE id = $1`, id)
	return scanPrincipal(row)
}

func (r *principalsRepo) GetPrincipalByEmail(ctx context.Context, email string) (domain.Principal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+principalColumns+` FROM principals WHERE email = $1`, email)
	return scanPrincipal(row)
}

func (r *principalsRepo) CreatePrincipal(ctx context.Context, p domain.Principal) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO principals (id, email, display_name, password_hash, role, active, last_login_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.Email, p.DisplayName, p.PasswordHash, p.Role.String(),
		p.Active, p.LastLoginAt, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *principalsRepo) UpdatePasswordHash(ctx context.Context, principalID string, newHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE principals SET password_hash = $1, updated_at = $2 WHERE id = $3`,
		newHash, time.Now().UTC(), principalID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *principalsRepo) SetActive(ctx context.Context, principalID string, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE principals SET active = $1, updated_at = $2 WHERE id = $3`,
		active, time.Now().UTC(), principalID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *principalsRepo) RecordLogin(ctx context.Context, principalID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE principals SET last_login_at = $1 WHERE id = $2`,
		time.Now().UTC(), principalID)
	return err
}

func (r *principalsRepo) DeletePrincipal(ctx context.Context, principalID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM principals WHERE id = $1`, principalID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *principalsRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM principals`).Scan(&count)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// requireRow turns "0 rows affected" into ErrNotFound for updates and
// deletes that target a single row by ID.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
