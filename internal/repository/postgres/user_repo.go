package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/andresfq/mercadito/internal/errs"
	"github.com/andresfq/mercadito/internal/model"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

// CreateWithProfile inserts the auth row and the profile row in one transaction.
func (r *UserRepo) CreateWithProfile(ctx context.Context, u *model.User, p *model.Profile) (err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	const insUser = `
INSERT INTO users (id, email, pwd_hash, salt_auth)
VALUES ($1, $2, $3, $4)`
	if _, err = tx.Exec(ctx, insUser, u.ID, u.Email, u.PwdHash, u.SaltAuth); err != nil {
		if isUniqueViolation(err) {
			err = errs.ErrAlreadyExists
		}
		return err
	}

	const insProfile = `
INSERT INTO profiles (id, email, user_type, nombre, negocio, descripcion)
VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err = tx.Exec(ctx, insProfile,
		p.ID, p.Email, string(p.UserType), p.Nombre, p.Negocio, p.Descripcion); err != nil {
		return err
	}
	return nil
}

// GetByEmail selects a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `
SELECT id, email, pwd_hash, salt_auth, created_at
FROM users WHERE email=$1`
	row := r.db.Pool.QueryRow(ctx, q, email)
	var u model.User
	if err := row.Scan(&u.ID, &u.Email, &u.PwdHash, &u.SaltAuth, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
