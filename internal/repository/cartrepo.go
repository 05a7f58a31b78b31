package repository

import (
	"context"

	"github.com/andresfq/mercadito/internal/model"
	"github.com/gofrs/uuid/v5"
)

// CartRepository stores pending cart lines. At most one line exists per
// (user, product); callers probe with FindByProduct before inserting.
type CartRepository interface {
	// ListByUser returns the buyer's lines with product snapshots, in
	// insertion order.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.CartLine, error)
	// FindByProduct returns the line for (user, product) or ErrNotFound.
	FindByProduct(ctx context.Context, userID, productoID uuid.UUID) (*model.CartLine, error)
	// GetLine returns one of the buyer's lines by id.
	GetLine(ctx context.Context, userID, lineID uuid.UUID) (*model.CartLine, error)
	// Insert adds a new line.
	Insert(ctx context.Context, line *model.CartLine) error
	// UpdateCantidad persists a new quantity (callers guarantee >= 1).
	UpdateCantidad(ctx context.Context, userID, lineID uuid.UUID, cantidad int) error
	// Delete removes one of the buyer's lines.
	Delete(ctx context.Context, userID, lineID uuid.UUID) error
	// DeleteAll removes every line for the buyer.
	DeleteAll(ctx context.Context, userID uuid.UUID) error
}
