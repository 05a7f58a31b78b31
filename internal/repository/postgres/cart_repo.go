package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/andresfq/mercadito/internal/errs"
	"github.com/andresfq/mercadito/internal/model"
)

// CartRepo implements CartRepository using PostgreSQL.
type CartRepo struct{ db *DB }

// NewCartRepo constructs a cart repository.
func NewCartRepo(db *DB) *CartRepo { return &CartRepo{db: db} }

const cartCols = `
c.id, c.user_id, c.producto_id, c.cantidad,
p.nombre, p.precio, p.imagen_url, p.vendedor_id`

func scanCartLine(row pgx.Row) (*model.CartLine, error) {
	var l model.CartLine
	if err := row.Scan(&l.ID, &l.UserID, &l.ProductoID, &l.Cantidad,
		&l.Producto.Nombre, &l.Producto.Precio, &l.Producto.ImagenURL,
		&l.Producto.VendedorID); err != nil {
		return nil, err
	}
	return &l, nil
}

// ListByUser returns cart lines with product snapshots, in insertion order.
func (r *CartRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.CartLine, error) {
	const q = `
SELECT` + cartCols + `
FROM carrito c
JOIN productos p ON p.id = c.producto_id
WHERE c.user_id = $1
ORDER BY c.created_at ASC`
	rows, err := r.db.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.CartLine
	for rows.Next() {
		l, err := scanCartLine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

// FindByProduct returns the (user, product) line or ErrNotFound. The caller
// treats ErrNotFound as the expected negative of the uniqueness probe.
func (r *CartRepo) FindByProduct(ctx context.Context, userID, productoID uuid.UUID) (*model.CartLine, error) {
	const q = `
SELECT` + cartCols + `
FROM carrito c
JOIN productos p ON p.id = c.producto_id
WHERE c.user_id = $1 AND c.producto_id = $2`
	l, err := scanCartLine(r.db.Pool.QueryRow(ctx, q, userID, productoID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

// GetLine returns one of the buyer's lines by id.
func (r *CartRepo) GetLine(ctx context.Context, userID, lineID uuid.UUID) (*model.CartLine, error) {
	const q = `
SELECT` + cartCols + `
FROM carrito c
JOIN productos p ON p.id = c.producto_id
WHERE c.id = $1 AND c.user_id = $2`
	l, err := scanCartLine(r.db.Pool.QueryRow(ctx, q, lineID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

// Insert adds a new line.
func (r *CartRepo) Insert(ctx context.Context, line *model.CartLine) error {
	const q = `
INSERT INTO carrito (id, user_id, producto_id, cantidad)
VALUES ($1, $2, $3, $4)`
	_, err := r.db.Pool.Exec(ctx, q, line.ID, line.UserID, line.ProductoID, line.Cantidad)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// UpdateCantidad persists a new quantity for the buyer's line.
func (r *CartRepo) UpdateCantidad(ctx context.Context, userID, lineID uuid.UUID, cantidad int) error {
	const q = `UPDATE carrito SET cantidad=$3 WHERE id=$1 AND user_id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, lineID, userID, cantidad)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Delete removes one of the buyer's lines.
func (r *CartRepo) Delete(ctx context.Context, userID, lineID uuid.UUID) error {
	const q = `DELETE FROM carrito WHERE id=$1 AND user_id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, lineID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// DeleteAll removes every line for the buyer.
func (r *CartRepo) DeleteAll(ctx context.Context, userID uuid.UUID) error {
	const q = `DELETE FROM carrito WHERE user_id=$1`
	_, err := r.db.Pool.Exec(ctx, q, userID)
	return err
}
