package repository

import (
	"context"

	"github.com/andresfq/mercadito/internal/model"
	"github.com/gofrs/uuid/v5"
)

// ProductRepository stores the catalog. Create and Delete also maintain the
// owner's productos_publicados counter in the same transaction.
type ProductRepository interface {
	// ListPublished returns all products with seller display fields, newest first.
	ListPublished(ctx context.Context) ([]model.Product, error)
	// Get returns one product with seller display fields including contact email.
	Get(ctx context.Context, id uuid.UUID) (*model.Product, error)
	// ListByVendedor returns the seller's own products, newest first.
	ListByVendedor(ctx context.Context, vendedorID uuid.UUID) ([]model.Product, error)
	// Create inserts a product and increments the owner's published counter.
	Create(ctx context.Context, p *model.Product) error
	// Update rewrites editable fields of a product owned by vendedorID.
	Update(ctx context.Context, vendedorID uuid.UUID, p *model.Product) error
	// Delete removes a product owned by vendedorID and decrements the
	// published counter, floored at zero.
	Delete(ctx context.Context, vendedorID, id uuid.UUID) error
}
