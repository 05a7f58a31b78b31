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

// ProductInput carries the product form for publish and edit.
type ProductInput struct {
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion"`
	Precio      int64  `json:"precio"`
	ImagenURL   string `json:"imagen_url"`
}

func (in ProductInput) validate() error {
	if in.Nombre == "" {
		return errors.New("validation: empty nombre")
	}
	if in.Precio < 0 {
		return fmt.Errorf("validation: negative precio %d", in.Precio)
	}
	return nil
}

// CatalogCache caches the published catalog. Implementations must treat a
// miss and a backend outage the same way: (nil, error or nil) never fails
// a catalog read.
type CatalogCache interface {
	Get(ctx context.Context) ([]model.Product, error)
	Set(ctx context.Context, products []model.Product) error
	Invalidate(ctx context.Context) error
}

// ProductService defines catalog reads and seller-side product management.
type ProductService interface {
	// Catalog returns all published products, newest first.
	Catalog(ctx context.Context) ([]model.Product, error)
	// Get returns the detail view of one product.
	Get(ctx context.Context, id uuid.UUID) (*model.Product, error)
	// ListByVendedor returns the seller's own products, newest first.
	ListByVendedor(ctx context.Context, vendedorID uuid.UUID) ([]model.Product, error)
	// Publish creates a product owned by the seller.
	Publish(ctx context.Context, vendedorID uuid.UUID, in ProductInput) (*model.Product, error)
	// Update edits an owned product.
	Update(ctx context.Context, vendedorID, id uuid.UUID, in ProductInput) (*model.Product, error)
	// Delete removes an owned product.
	Delete(ctx context.Context, vendedorID, id uuid.UUID) error
}

type ProductServiceImpl struct {
	products repository.ProductRepository
	profiles repository.ProfileRepository
	cache    CatalogCache // nil disables caching
}

// NewProductService constructs ProductService. cache may be nil.
func NewProductService(
	products repository.ProductRepository,
	profiles repository.ProfileRepository,
	cache CatalogCache,
) *ProductServiceImpl {
	return &ProductServiceImpl{products: products, profiles: profiles, cache: cache}
}

// Catalog serves from the cache when possible and falls back to the store.
// Cache failures degrade to a straight read.
func (s *ProductServiceImpl) Catalog(ctx context.Context) ([]model.Product, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}
	products, err := s.products.ListPublished(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, products)
	}
	return products, nil
}

// Get returns one product with seller contact fields.
func (s *ProductServiceImpl) Get(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	if id == uuid.Nil {
		return nil, errors.New("validation: empty product id")
	}
	return s.products.Get(ctx, id)
}

// ListByVendedor returns the seller's own products.
func (s *ProductServiceImpl) ListByVendedor(ctx context.Context, vendedorID uuid.UUID) ([]model.Product, error) {
	if vendedorID == uuid.Nil {
		return nil, errors.New("validation: empty vendedor id")
	}
	return s.products.ListByVendedor(ctx, vendedorID)
}

// requireVendedor loads the profile and checks the seller role.
func (s *ProductServiceImpl) requireVendedor(ctx context.Context, id uuid.UUID) error {
	prof, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if prof.UserType != model.UserTypeVendedor {
		return errs.ErrForbidden
	}
	return nil
}

// Publish creates a product and invalidates the catalog cache.
func (s *ProductServiceImpl) Publish(ctx context.Context, vendedorID uuid.UUID, in ProductInput) (*model.Product, error) {
	if vendedorID == uuid.Nil {
		return nil, errors.New("validation: empty vendedor id")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.requireVendedor(ctx, vendedorID); err != nil {
		return nil, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	p := &model.Product{
		ID:          id,
		VendedorID:  vendedorID,
		Nombre:      in.Nombre,
		Descripcion: in.Descripcion,
		Precio:      in.Precio,
		ImagenURL:   in.ImagenURL,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return p, nil
}

// Update edits an owned product and invalidates the catalog cache.
func (s *ProductServiceImpl) Update(ctx context.Context, vendedorID, id uuid.UUID, in ProductInput) (*model.Product, error) {
	if vendedorID == uuid.Nil || id == uuid.Nil {
		return nil, errors.New("validation: empty vendedor/product id")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	p := &model.Product{
		ID:          id,
		VendedorID:  vendedorID,
		Nombre:      in.Nombre,
		Descripcion: in.Descripcion,
		Precio:      in.Precio,
		ImagenURL:   in.ImagenURL,
	}
	if err := s.products.Update(ctx, vendedorID, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.products.Get(ctx, id)
}

// Delete removes an owned product and invalidates the catalog cache.
func (s *ProductServiceImpl) Delete(ctx context.Context, vendedorID, id uuid.UUID) error {
	if vendedorID == uuid.Nil || id == uuid.Nil {
		return errors.New("validation: empty vendedor/product id")
	}
	if err := s.products.Delete(ctx, vendedorID, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *ProductServiceImpl) invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx)
	}
}
