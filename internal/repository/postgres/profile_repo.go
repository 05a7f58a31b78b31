package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/andresfq/mercadito/internal/errs"
	"github.com/andresfq/mercadito/internal/model"
)

// ProfileRepo implements ProfileRepository using PostgreSQL.
type ProfileRepo struct{ db *DB }

// NewProfileRepo constructs a profile repository.
func NewProfileRepo(db *DB) *ProfileRepo { return &ProfileRepo{db: db} }

// GetByID selects a profile with counters.
func (r *ProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	const q = `
SELECT id, email, user_type, nombre, negocio, descripcion,
       productos_publicados, productos_vendidos, objetos_comprados, created_at
FROM profiles WHERE id=$1`
	row := r.db.Pool.QueryRow(ctx, q, id)
	var p model.Profile
	var userType string
	if err := row.Scan(&p.ID, &p.Email, &userType, &p.Nombre, &p.Negocio, &p.Descripcion,
		&p.ProductosPublicados, &p.ProductosVendidos, &p.ObjetosComprados, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	p.UserType = model.UserType(userType)
	return &p, nil
}

// UpdateComprador updates buyer display fields; blank values keep the stored ones.
func (r *ProfileRepo) UpdateComprador(ctx context.Context, id uuid.UUID, nombre, descripcion string) error {
	const q = `
UPDATE profiles
SET nombre = COALESCE(NULLIF($2, ''), nombre),
    descripcion = COALESCE(NULLIF($3, ''), descripcion)
WHERE id = $1`
	tag, err := r.db.Pool.Exec(ctx, q, id, nombre, descripcion)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
