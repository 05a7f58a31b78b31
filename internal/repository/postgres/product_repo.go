package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/andresfq/mercadito/internal/errs"
	"github.com/andresfq/mercadito/internal/model"
)

// ProductRepo implements ProductRepository using PostgreSQL.
type ProductRepo struct{ db *DB }

// NewProductRepo constructs a product repository.
func NewProductRepo(db *DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `
p.id, p.vendedor_id, p.nombre, p.descripcion, p.precio, p.imagen_url,
p.created_at, p.updated_at, pr.nombre, pr.negocio`

func scanProduct(row pgx.Row, withEmail bool) (*model.Product, error) {
	var p model.Product
	dest := []any{&p.ID, &p.VendedorID, &p.Nombre, &p.Descripcion, &p.Precio, &p.ImagenURL,
		&p.CreatedAt, &p.UpdatedAt, &p.Vendedor.Nombre, &p.Vendedor.Negocio}
	if withEmail {
		dest = append(dest, &p.Vendedor.Email)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPublished returns all products with seller display fields, newest first.
func (r *ProductRepo) ListPublished(ctx context.Context) ([]model.Product, error) {
	const q = `
SELECT` + productCols + `
FROM productos p
JOIN profiles pr ON pr.id = p.vendedor_id
ORDER BY p.created_at DESC`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Product
	for rows.Next() {
		p, err := scanProduct(rows, false)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Get returns one product including the seller contact email for the detail view.
func (r *ProductRepo) Get(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	const q = `
SELECT` + productCols + `, pr.email
FROM productos p
JOIN profiles pr ON pr.id = p.vendedor_id
WHERE p.id = $1`
	p, err := scanProduct(r.db.Pool.QueryRow(ctx, q, id), true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// ListByVendedor returns the seller's own products, newest first.
func (r *ProductRepo) ListByVendedor(ctx context.Context, vendedorID uuid.UUID) ([]model.Product, error) {
	const q = `
SELECT` + productCols + `
FROM productos p
JOIN profiles pr ON pr.id = p.vendedor_id
WHERE p.vendedor_id = $1
ORDER BY p.created_at DESC`
	rows, err := r.db.Pool.Query(ctx, q, vendedorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Product
	for rows.Next() {
		p, err := scanProduct(rows, false)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Create inserts the product and bumps productos_publicados in one transaction.
func (r *ProductRepo) Create(ctx context.Context, p *model.Product) (err error) {
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

	const ins = `
INSERT INTO productos (id, vendedor_id, nombre, descripcion, precio, imagen_url)
VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err = tx.Exec(ctx, ins,
		p.ID, p.VendedorID, p.Nombre, p.Descripcion, p.Precio, p.ImagenURL); err != nil {
		return err
	}

	const bump = `
UPDATE profiles SET productos_publicados = productos_publicados + 1 WHERE id = $1`
	if _, err = tx.Exec(ctx, bump, p.VendedorID); err != nil {
		return err
	}
	return nil
}

// Update rewrites editable fields of a product owned by vendedorID.
func (r *ProductRepo) Update(ctx context.Context, vendedorID uuid.UUID, p *model.Product) error {
	const q = `
UPDATE productos
SET nombre=$3, descripcion=$4, precio=$5,
    imagen_url = COALESCE(NULLIF($6, ''), imagen_url),
    updated_at = now()
WHERE id=$1 AND vendedor_id=$2`
	tag, err := r.db.Pool.Exec(ctx, q,
		p.ID, vendedorID, p.Nombre, p.Descripcion, p.Precio, p.ImagenURL)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Delete removes an owned product and decrements the published counter,
// floored at zero, in one transaction.
func (r *ProductRepo) Delete(ctx context.Context, vendedorID, id uuid.UUID) (err error) {
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

	const del = `DELETE FROM productos WHERE id=$1 AND vendedor_id=$2`
	tag, err := tx.Exec(ctx, del, id, vendedorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}

	const drop = `
UPDATE profiles
SET productos_publicados = GREATEST(productos_publicados - 1, 0)
WHERE id = $1`
	if _, err = tx.Exec(ctx, drop, vendedorID); err != nil {
		return err
	}
	return nil
}
