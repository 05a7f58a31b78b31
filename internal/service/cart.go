package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/andresfq/mercadito/internal/errs"
	"github.com/andresfq/mercadito/internal/model"
	"github.com/andresfq/mercadito/internal/repository"
)

// CartService defines the buyer's cart operations. Mutations return the
// refreshed line list so callers re-derive the line display, the summary
// total and the badge count from one source.
type CartService interface {
	// AddOrIncrement adds a product to the cart, or bumps its quantity by one
	// when a line for (buyer, product) already exists.
	AddOrIncrement(ctx context.Context, buyerID, productoID uuid.UUID) (*model.CartLine, error)
	// ChangeQuantity applies delta (+1 or -1); a result below 1 deletes the line.
	ChangeQuantity(ctx context.Context, buyerID, lineID uuid.UUID, delta int) ([]model.CartLine, error)
	// Remove deletes one line.
	Remove(ctx context.Context, buyerID, lineID uuid.UUID) ([]model.CartLine, error)
	// Clear deletes every line for the buyer.
	Clear(ctx context.Context, buyerID uuid.UUID) error
	// List returns the buyer's lines with product snapshots, in insertion order.
	List(ctx context.Context, buyerID uuid.UUID) ([]model.CartLine, error)
}

// Summary is the cart total: Σ(cantidad × precio) over the given lines.
// Zero lines means the summary is hidden, not rendered as 0.
func Summary(lines []model.CartLine) int64 {
	var total int64
	for _, l := range lines {
		total += l.Subtotal()
	}
	return total
}

type CartServiceImpl struct {
	cart     repository.CartRepository
	products repository.ProductRepository
}

// NewCartService constructs CartService.
func NewCartService(cart repository.CartRepository, products repository.ProductRepository) *CartServiceImpl {
	return &CartServiceImpl{cart: cart, products: products}
}

// AddOrIncrement probes for an existing (buyer, product) line first; the
// probe's ErrNotFound is the expected negative, not a failure.
func (s *CartServiceImpl) AddOrIncrement(ctx context.Context, buyerID, productoID uuid.UUID) (*model.CartLine, error) {
	if buyerID == uuid.Nil || productoID == uuid.Nil {
		return nil, errors.New("validation: empty buyer/product id")
	}

	p, err := s.products.Get(ctx, productoID)
	if err != nil {
		return nil, err
	}

	existing, err := s.cart.FindByProduct(ctx, buyerID, productoID)
	switch {
	case err == nil:
		existing.Cantidad++
		if err := s.cart.UpdateCantidad(ctx, buyerID, existing.ID, existing.Cantidad); err != nil {
			return nil, err
		}
		return existing, nil
	case errors.Is(err, errs.ErrNotFound):
		id, uerr := uuid.NewV4()
		if uerr != nil {
			return nil, uerr
		}
		line := &model.CartLine{
			ID:         id,
			UserID:     buyerID,
			ProductoID: productoID,
			Cantidad:   1,
			Producto: model.ProductSnapshot{
				Nombre:     p.Nombre,
				Precio:     p.Precio,
				ImagenURL:  p.ImagenURL,
				VendedorID: p.VendedorID,
			},
		}
		if err := s.cart.Insert(ctx, line); err != nil {
			return nil, err
		}
		return line, nil
	default:
		return nil, err
	}
}

// ChangeQuantity applies delta to one line; dropping below 1 removes it.
func (s *CartServiceImpl) ChangeQuantity(ctx context.Context, buyerID, lineID uuid.UUID, delta int) ([]model.CartLine, error) {
	if buyerID == uuid.Nil || lineID == uuid.Nil {
		return nil, errors.New("validation: empty buyer/line id")
	}
	if delta != 1 && delta != -1 {
		return nil, fmt.Errorf("validation: delta %d out of range", delta)
	}

	line, err := s.cart.GetLine(ctx, buyerID, lineID)
	if err != nil {
		return nil, err
	}

	next := line.Cantidad + delta
	if next < 1 {
		if err := s.cart.Delete(ctx, buyerID, lineID); err != nil {
			return nil, err
		}
	} else if err := s.cart.UpdateCantidad(ctx, buyerID, lineID, next); err != nil {
		return nil, err
	}
	return s.cart.ListByUser(ctx, buyerID)
}

// Remove deletes one line and returns the refreshed list.
func (s *CartServiceImpl) Remove(ctx context.Context, buyerID, lineID uuid.UUID) ([]model.CartLine, error) {
	if buyerID == uuid.Nil || lineID == uuid.Nil {
		return nil, errors.New("validation: empty buyer/line id")
	}
	if err := s.cart.Delete(ctx, buyerID, lineID); err != nil {
		return nil, err
	}
	return s.cart.ListByUser(ctx, buyerID)
}

// Clear deletes every line for the buyer.
func (s *CartServiceImpl) Clear(ctx context.Context, buyerID uuid.UUID) error {
	if buyerID == uuid.Nil {
		return errors.New("validation: empty buyer id")
	}
	return s.cart.DeleteAll(ctx, buyerID)
}

// List returns the buyer's lines in insertion order.
func (s *CartServiceImpl) List(ctx context.Context, buyerID uuid.UUID) ([]model.CartLine, error) {
	if buyerID == uuid.Nil {
		return nil, errors.New("validation: empty buyer id")
	}
	return s.cart.ListByUser(ctx, buyerID)
}
