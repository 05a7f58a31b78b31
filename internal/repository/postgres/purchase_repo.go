package postgres

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/andresfq/mercadito/internal/model"
)

// PurchaseRepo implements PurchaseRepository using PostgreSQL.
type PurchaseRepo struct{ db *DB }

// NewPurchaseRepo constructs a purchase repository.
func NewPurchaseRepo(db *DB) *PurchaseRepo { return &PurchaseRepo{db: db} }

// Checkout persists the whole purchase in one transaction: a compras row per
// line, the buyer's objetos_comprados and each seller's productos_vendidos
// increments, then clears the buyer's cart. Any failure rolls everything back,
// leaving the cart populated for retry.
func (r *PurchaseRepo) Checkout(
	ctx context.Context, compradorID uuid.UUID, lines []model.CartLine,
) (purchases []model.Purchase, err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
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
INSERT INTO compras (id, comprador_id, producto_id, cantidad, total)
VALUES ($1, $2, $3, $4, $5)
RETURNING fecha_compra`
	const bumpComprador = `
UPDATE profiles SET objetos_comprados = objetos_comprados + $2 WHERE id = $1`
	const bumpVendedor = `
UPDATE profiles SET productos_vendidos = productos_vendidos + $2 WHERE id = $1`

	purchases = make([]model.Purchase, 0, len(lines))
	for _, l := range lines {
		id, uerr := uuid.NewV4()
		if uerr != nil {
			err = uerr
			return nil, err
		}
		p := model.Purchase{
			ID:          id,
			CompradorID: compradorID,
			ProductoID:  l.ProductoID,
			Cantidad:    l.Cantidad,
			Total:       l.Subtotal(),
			Producto:    l.Producto,
		}
		if err = tx.QueryRow(ctx, ins,
			p.ID, p.CompradorID, p.ProductoID, p.Cantidad, p.Total).Scan(&p.FechaCompra); err != nil {
			return nil, err
		}
		if _, err = tx.Exec(ctx, bumpComprador, compradorID, l.Cantidad); err != nil {
			return nil, err
		}
		if _, err = tx.Exec(ctx, bumpVendedor, l.Producto.VendedorID, l.Cantidad); err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}

	const clear = `DELETE FROM carrito WHERE user_id=$1`
	if _, err = tx.Exec(ctx, clear, compradorID); err != nil {
		return nil, err
	}
	return purchases, nil
}

// ListByComprador returns the buyer's purchases, newest first. The product
// snapshot is joined at read time; purchases of deleted products come back
// with empty snapshot fields.
func (r *PurchaseRepo) ListByComprador(ctx context.Context, compradorID uuid.UUID) ([]model.Purchase, error) {
	const q = `
SELECT co.id, co.comprador_id, co.producto_id, co.cantidad, co.total, co.fecha_compra,
       COALESCE(p.nombre, ''), COALESCE(p.precio, 0), COALESCE(p.imagen_url, ''),
       COALESCE(p.vendedor_id, '00000000-0000-0000-0000-000000000000'::uuid)
FROM compras co
LEFT JOIN productos p ON p.id = co.producto_id
WHERE co.comprador_id = $1
ORDER BY co.fecha_compra DESC`
	rows, err := r.db.Pool.Query(ctx, q, compradorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Purchase
	for rows.Next() {
		var p model.Purchase
		if err := rows.Scan(&p.ID, &p.CompradorID, &p.ProductoID, &p.Cantidad, &p.Total,
			&p.FechaCompra, &p.Producto.Nombre, &p.Producto.Precio, &p.Producto.ImagenURL,
			&p.Producto.VendedorID); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
