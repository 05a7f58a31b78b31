package service

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"

	"github.com/andresfq/mercadito/internal/errs"
	"github.com/andresfq/mercadito/internal/model"
	"github.com/andresfq/mercadito/internal/repository"
)

// CheckoutService turns the cart into purchase records. The whole checkout is
// one transactional repository call: records, counter increments and cart
// clearing commit together or not at all, so a failed checkout leaves the
// cart populated for retry with nothing double-counted.
type CheckoutService interface {
	Checkout(ctx context.Context, buyerID uuid.UUID) ([]model.Purchase, error)
}

type CheckoutServiceImpl struct {
	cart      repository.CartRepository
	purchases repository.PurchaseRepository
}

// NewCheckoutService constructs CheckoutService.
func NewCheckoutService(cart repository.CartRepository, purchases repository.PurchaseRepository) *CheckoutServiceImpl {
	return &CheckoutServiceImpl{cart: cart, purchases: purchases}
}

// Checkout validates preconditions and delegates the atomic write. An empty
// cart refuses with ErrEmptyCart before any backend write.
func (s *CheckoutServiceImpl) Checkout(ctx context.Context, buyerID uuid.UUID) ([]model.Purchase, error) {
	if buyerID == uuid.Nil {
		return nil, errors.New("validation: empty buyer id")
	}
	lines, err := s.cart.ListByUser(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, errs.ErrEmptyCart
	}
	return s.purchases.Checkout(ctx, buyerID, lines)
}
