package repository

import (
	"context"

	"github.com/andresfq/mercadito/internal/model"
	"github.com/gofrs/uuid/v5"
)

// PurchaseRepository appends the purchase log and serves history reads.
type PurchaseRepository interface {
	// Checkout persists the whole purchase atomically: one compras row per
	// cart line, buyer and seller counter increments, and cart clearing all
	// commit together or not at all.
	Checkout(ctx context.Context, compradorID uuid.UUID, lines []model.CartLine) ([]model.Purchase, error)
	// ListByComprador returns the buyer's purchases with product snapshots,
	// newest first.
	ListByComprador(ctx context.Context, compradorID uuid.UUID) ([]model.Purchase, error)
}
